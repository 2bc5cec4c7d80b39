package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrNotAVideo       = errors.New("file is not a video")
	ErrNotAnImage      = errors.New("file is not an image")
	ErrFileNameTooLong = errors.New("file name is too long")
)

const maxFileNameLen = 255

// VideoFileValidator checks a multipart video part before it gets anywhere
// near storage. Headers are easy to spoof so the actual content is sniffed.
// The returned file is rewound and ready for reading
func VideoFileValidator(fh *multipart.FileHeader, maxSize int64) (int, multipart.File, string, error) {
	return sniffFile(fh, maxSize, "video/", ErrNotAVideo)
}

// ThumbnailValidator does the same for the optional thumbnail part, which
// has to be an image
func ThumbnailValidator(fh *multipart.FileHeader, maxSize int64) (int, multipart.File, string, error) {
	return sniffFile(fh, maxSize, "image/", ErrNotAnImage)
}

func sniffFile(fh *multipart.FileHeader, maxSize int64, wantPrefix string, wantErr error) (int, multipart.File, string, error) {
	if len(fh.Filename) > maxFileNameLen {
		return http.StatusBadRequest, nil, "", ErrFileNameTooLong
	}

	if maxSize > 0 && fh.Size > maxSize {
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, "", err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	if !strings.HasPrefix(mime.String(), wantPrefix) {
		f.Close()
		return http.StatusBadRequest, nil, "", wantErr
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	return 0, f, mime.String(), nil
}
