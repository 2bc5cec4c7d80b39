package serializer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidshare/media-api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, host string, headers map[string]string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/videos/", nil)
	c.Request.Host = host
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}

	return c
}

func TestAbsoluteMediaURL(t *testing.T) {
	c := testContext(t, "example.com:8080", nil)
	require.Equal(t,
		"http://example.com:8080/media/videos/u1/a.mp4",
		AbsoluteMediaURL(c, "videos/u1/a.mp4"))

	c = testContext(t, "example.com", map[string]string{"X-Forwarded-Proto": "https"})
	require.Equal(t,
		"https://example.com/media/videos/u1/a.mp4",
		AbsoluteMediaURL(c, "videos/u1/a.mp4"))
}

func TestVideoOutNullThumbnail(t *testing.T) {
	c := testContext(t, "example.com", nil)

	v := &model.Video{ID: 7, Title: "clip1", VideoKey: "videos/u1/a.mp4"}
	out := VideoOut(c, v)

	require.Equal(t, "clip1", out["title"])
	require.Equal(t, "http://example.com/media/videos/u1/a.mp4", out["video_url"])
	require.Nil(t, out["thumbnail_url"])

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"thumbnail_url":null`)
}

func TestVideoCreatedOutUsesCamelCase(t *testing.T) {
	c := testContext(t, "example.com", nil)

	thumb := "thumbnails/u1/a.png"
	v := &model.Video{ID: 7, Title: "clip1", VideoKey: "videos/u1/a.mp4", ThumbKey: &thumb}
	out := VideoCreatedOut(c, v)

	require.Equal(t, "http://example.com/media/videos/u1/a.mp4", out["videoUrl"])
	require.Equal(t, "http://example.com/media/thumbnails/u1/a.png", out["thumbnailUrl"])
	require.NotContains(t, out, "video_url")
}

func TestUserOutNeverContainsPassword(t *testing.T) {
	u := &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "$argon2id$..."}
	out := UserOut(u)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "password")
	require.NotContains(t, string(raw), "argon2id")
	require.Equal(t, "alice", out["username"])
	require.Equal(t, "a@x.com", out["email"])
}

func TestRegisterInputValidate(t *testing.T) {
	in := RegisterInput{Username: "alice", Password: "pw12345", Email: "a@x.com"}
	require.Nil(t, in.Validate())

	in = RegisterInput{}
	errs := in.Validate()
	require.Len(t, errs, 3)
	require.Contains(t, errs, "username")
	require.Contains(t, errs, "password")
	require.Contains(t, errs, "email")

	in = RegisterInput{Username: "has spaces", Password: "pw12345", Email: "a@x.com"}
	errs = in.Validate()
	require.Len(t, errs, 1)
	require.Contains(t, errs, "username")
}
