package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"vidshare/media-api/config"
	"vidshare/media-api/db"
	"vidshare/media-api/internal"
	"vidshare/media-api/internal/model"
	"vidshare/media-api/internal/storage"
	"vidshare/media-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var (
	mp4Bytes = append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypisom\x00\x00\x02\x00isomiso2avc1mp41")...)
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
)

func newTestRouter(t *testing.T) (*gin.Engine, *internal.Deps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()

	cfg := &config.Config{
		App:  config.App{LogLevel: "error"},
		Host: config.Host{Port: 8080, Domain: "localhost", CORSOrigins: []string{"*"}},
		Security: config.Security{
			SessionSecret: "test-secret",
			SessionTTL:    time.Hour,
		},
		DB:      config.DB{Driver: "sqlite", DSN: filepath.Join(dir, "test.db")},
		Storage: config.Storage{Type: "disk", MediaRoot: filepath.Join(dir, "media")},
		Upload:  config.Upload{MaxSize: 50 << 20},
	}

	gdb, err := db.New(cfg)
	require.NoError(t, err)

	store, err := storage.NewDisk(cfg.Storage.MediaRoot)
	require.NoError(t, err)

	d := &internal.Deps{
		Cfg:   cfg,
		DB:    gdb,
		Argon: security.New(),
		Store: store,
	}

	return NewRouter(d), d
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res
}

func decode(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	return out
}

func register(t *testing.T, r *gin.Engine, username, password, email string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, r, http.MethodPost, "/register/", gin.H{
		"username": username,
		"password": password,
		"email":    email,
	})
}

func login(t *testing.T, r *gin.Engine, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, r, http.MethodPost, "/login/", gin.H{
		"username": username,
		"password": password,
	})
}

func sessionCookie(t *testing.T, res *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, ck := range res.Result().Cookies() {
		if ck.Name == security.SessionCookie {
			return ck
		}
	}

	t.Fatal("no session cookie in response")
	return nil
}

type filePart struct {
	field, name string
	content     []byte
}

func doUpload(t *testing.T, r *gin.Engine, cookie *http.Cookie, title string, parts ...filePart) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if title != "" {
		require.NoError(t, w.WriteField("title", title))
	}
	for _, p := range parts {
		fw, err := w.CreateFormFile(p.field, p.name)
		require.NoError(t, err)
		_, err = fw.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/videos/upload/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}

	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res
}

func videoCount(t *testing.T, d *internal.Deps) int64 {
	t.Helper()

	var n int64
	require.NoError(t, d.DB.Model(&model.Video{}).Count(&n).Error)
	return n
}

func TestHeartbeat(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodHead, "/heartbeat", nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
}

func TestRegister(t *testing.T) {
	r, _ := newTestRouter(t)

	res := register(t, r, "alice", "pw12345", "a@x.com")
	require.Equal(t, http.StatusCreated, res.Code)

	body := decode(t, res)
	require.Equal(t, "alice", body["username"])
	require.Equal(t, "a@x.com", body["email"])

	// The password must not leak on any output path
	require.NotContains(t, res.Body.String(), "pw12345")
	require.NotContains(t, body, "password")
}

func TestRegisterFieldErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	res := register(t, r, "", "", "not-an-email")
	require.Equal(t, http.StatusBadRequest, res.Code)

	errs, ok := decode(t, res)["errors"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, errs, "username")
	require.Contains(t, errs, "password")
	require.Contains(t, errs, "email")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r, d := newTestRouter(t)

	require.Equal(t, http.StatusCreated, register(t, r, "alice", "pw12345", "a@x.com").Code)

	res := register(t, r, "alice", "other-pw", "b@x.com")
	require.Equal(t, http.StatusBadRequest, res.Code)

	errs, ok := decode(t, res)["errors"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, errs, "username")

	var n int64
	require.NoError(t, d.DB.Model(&model.User{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestLogin(t *testing.T) {
	r, _ := newTestRouter(t)
	register(t, r, "alice", "pw12345", "a@x.com")

	res := login(t, r, "alice", "pw12345")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "Login successful", decode(t, res)["message"])

	ck := sessionCookie(t, res)
	require.True(t, ck.HttpOnly)
	require.NotEmpty(t, ck.Value)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	r, _ := newTestRouter(t)
	register(t, r, "alice", "pw12345", "a@x.com")

	wrongPw := login(t, r, "alice", "wrong")
	noUser := login(t, r, "mallory", "wrong")

	require.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	require.Equal(t, http.StatusUnauthorized, noUser.Code)
	require.Equal(t,
		decode(t, wrongPw)["error"],
		decode(t, noUser)["error"])
	require.Equal(t, "Invalid credentials", decode(t, wrongPw)["error"])
}

func TestLoginMissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	res := doJSON(t, r, http.MethodPost, "/login/", gin.H{"username": "alice"})
	require.Equal(t, http.StatusBadRequest, res.Code)

	errs, ok := decode(t, res)["errors"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, errs, "password")
}

func TestProtectedEndpointsRequireSession(t *testing.T) {
	r, d := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/videos/", nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	require.Equal(t, http.StatusUnauthorized, res.Code)

	res = doUpload(t, r, nil, "clip1", filePart{"video_file", "clip.mp4", mp4Bytes})
	require.Equal(t, http.StatusUnauthorized, res.Code)

	// Nothing may be written before the auth check
	require.EqualValues(t, 0, videoCount(t, d))
}

func TestUploadWithoutVideoFile(t *testing.T) {
	r, d := newTestRouter(t)
	register(t, r, "alice", "pw12345", "a@x.com")
	ck := sessionCookie(t, login(t, r, "alice", "pw12345"))

	res := doUpload(t, r, ck, "clip1")
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "No video file provided", decode(t, res)["error"])

	require.EqualValues(t, 0, videoCount(t, d))
}

func TestUploadRejectsNonVideo(t *testing.T) {
	r, d := newTestRouter(t)
	register(t, r, "alice", "pw12345", "a@x.com")
	ck := sessionCookie(t, login(t, r, "alice", "pw12345"))

	res := doUpload(t, r, ck, "clip1", filePart{"video_file", "clip.mp4", []byte("plain text")})
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.EqualValues(t, 0, videoCount(t, d))
}

func TestUploadAndList(t *testing.T) {
	r, _ := newTestRouter(t)

	register(t, r, "alice", "pw12345", "a@x.com")
	register(t, r, "bob", "pw67890", "b@x.com")
	aliceCk := sessionCookie(t, login(t, r, "alice", "pw12345"))
	bobCk := sessionCookie(t, login(t, r, "bob", "pw67890"))

	// Upload without a thumbnail
	res := doUpload(t, r, aliceCk, "clip1", filePart{"video_file", "clip.mp4", mp4Bytes})
	require.Equal(t, http.StatusCreated, res.Code)

	created := decode(t, res)
	require.Equal(t, "clip1", created["title"])
	require.NotEmpty(t, created["id"])
	require.Contains(t, created["videoUrl"], "/media/videos/")
	require.Nil(t, created["thumbnailUrl"])
	require.NotEmpty(t, created["created_at"])

	// Alice sees exactly her one video
	req := httptest.NewRequest(http.MethodGet, "/videos/", nil)
	req.AddCookie(aliceCk)
	listRes := httptest.NewRecorder()
	r.ServeHTTP(listRes, req)
	require.Equal(t, http.StatusOK, listRes.Code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(listRes.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	require.Equal(t, "clip1", entries[0]["title"])
	require.NotEmpty(t, entries[0]["video_url"])
	require.Nil(t, entries[0]["thumbnail_url"])

	// Bob's list is unaffected
	req = httptest.NewRequest(http.MethodGet, "/videos/", nil)
	req.AddCookie(bobCk)
	listRes = httptest.NewRecorder()
	r.ServeHTTP(listRes, req)
	require.Equal(t, http.StatusOK, listRes.Code)

	require.NoError(t, json.Unmarshal(listRes.Body.Bytes(), &entries))
	require.Empty(t, entries)
}

func TestUploadWithThumbnail(t *testing.T) {
	r, _ := newTestRouter(t)
	register(t, r, "alice", "pw12345", "a@x.com")
	ck := sessionCookie(t, login(t, r, "alice", "pw12345"))

	res := doUpload(t, r, ck, "clip2",
		filePart{"video_file", "clip.mp4", mp4Bytes},
		filePart{"thumbnail", "thumb.png", pngBytes},
	)
	require.Equal(t, http.StatusCreated, res.Code)

	created := decode(t, res)
	require.Contains(t, created["thumbnailUrl"], "/media/thumbnails/")
}

func TestUploadedBlobIsServed(t *testing.T) {
	r, _ := newTestRouter(t)
	register(t, r, "alice", "pw12345", "a@x.com")
	ck := sessionCookie(t, login(t, r, "alice", "pw12345"))

	res := doUpload(t, r, ck, "clip1", filePart{"video_file", "clip.mp4", mp4Bytes})
	require.Equal(t, http.StatusCreated, res.Code)

	videoURL, ok := decode(t, res)["videoUrl"].(string)
	require.True(t, ok)

	// Strip scheme and host, the path is what the router serves
	idx := bytes.Index([]byte(videoURL), []byte("/media/"))
	require.GreaterOrEqual(t, idx, 0)

	req := httptest.NewRequest(http.MethodGet, videoURL[idx:], nil)
	mediaRes := httptest.NewRecorder()
	r.ServeHTTP(mediaRes, req)

	require.Equal(t, http.StatusOK, mediaRes.Code)
	body, err := io.ReadAll(mediaRes.Body)
	require.NoError(t, err)
	require.Equal(t, mp4Bytes, body)
}

func TestMediaRejectsTraversal(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/media/videos/%2E%2E/secret", nil)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestListNewestFirst(t *testing.T) {
	r, d := newTestRouter(t)
	register(t, r, "alice", "pw12345", "a@x.com")
	ck := sessionCookie(t, login(t, r, "alice", "pw12345"))

	for i := range 3 {
		res := doUpload(t, r, ck, fmt.Sprintf("clip%d", i), filePart{"video_file", "clip.mp4", mp4Bytes})
		require.Equal(t, http.StatusCreated, res.Code)
	}

	// sqlite timestamps aren't granular enough to order sub-millisecond
	// inserts, spread them out by hand
	var videos []model.Video
	require.NoError(t, d.DB.Order("id asc").Find(&videos).Error)
	for i := range videos {
		ts := time.Now().Add(time.Duration(i-len(videos)) * time.Minute)
		require.NoError(t, d.DB.Model(&videos[i]).UpdateColumn("created_at", ts).Error)
	}

	req := httptest.NewRequest(http.MethodGet, "/videos/", nil)
	req.AddCookie(ck)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &entries))
	require.Len(t, entries, 3)
	require.Equal(t, "clip2", entries[0]["title"])
	require.Equal(t, "clip0", entries[2]["title"])
}
