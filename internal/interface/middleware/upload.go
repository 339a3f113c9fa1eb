package middleware

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/six-cities-api/internal/infrastructure/filestore"
	"github.com/oksasatya/six-cities-api/pkg/response"
)

const (
	ctxUploadKey = "upload_url"

	// DefaultUploadMaxBytes caps a single uploaded file.
	DefaultUploadMaxBytes int64 = 5 << 20
	// multipartOverhead leaves room for boundaries and headers around the file.
	multipartOverhead int64 = 64 << 10
)

var (
	ImageTypes  = []string{"image/jpeg", "image/png", "image/gif"}
	AvatarTypes = []string{"image/jpeg", "image/png"}
)

type UploadOptions struct {
	Field    string   // multipart field carrying the file
	Dir      string   // filestore.DirAvatars or filestore.DirOffers
	Allowed  []string // accepted MIME types, sniffed from the content
	MaxBytes int64
}

var (
	errTooLarge   = errors.New("file too large")
	errNoFile     = errors.New("file is required")
	errBadContent = errors.New("unsupported file type")
)

// Upload streams the file in opts.Field into the store's temp directory,
// stopping as soon as MaxBytes is exceeded, checks its sniffed type and
// hands it to the store. The resulting URL is available via UploadedURL.
func Upload(store filestore.Store, opts UploadOptions, logger *logrus.Logger) gin.HandlerFunc {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultUploadMaxBytes
	}
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, opts.MaxBytes+multipartOverhead)
		mr, err := c.Request.MultipartReader()
		if err != nil {
			response.Abort(c, http.StatusBadRequest, "multipart/form-data body expected", nil)
			return
		}

		url, err := receive(c, store, mr, opts)
		if err != nil {
			var maxErr *http.MaxBytesError
			switch {
			case errors.Is(err, errTooLarge), errors.As(err, &maxErr):
				c.Header("Connection", "close")
				response.Abort(c, http.StatusBadRequest, fmt.Sprintf("file upload error: file exceeds %d bytes", opts.MaxBytes), nil)
			case errors.Is(err, errNoFile):
				response.Abort(c, http.StatusBadRequest, fmt.Sprintf("file upload error: %s %s", opts.Field, errNoFile), nil)
			case errors.Is(err, errBadContent):
				response.Abort(c, http.StatusBadRequest, err.Error(), nil)
			default:
				var perr *os.PathError
				if errors.As(err, &perr) {
					logger.WithError(err).WithField("request_id", c.GetString(ctxRequestIDKey)).Error("store upload failed")
					response.Abort(c, http.StatusInternalServerError, "internal server error", nil)
					return
				}
				response.Abort(c, http.StatusBadRequest, "file upload error: malformed multipart body", nil)
			}
			return
		}
		c.Set(ctxUploadKey, url)
		c.Next()
	}
}

// UploadedURL returns the URL stored by Upload.
func UploadedURL(c *gin.Context) string {
	return c.GetString(ctxUploadKey)
}

func receive(c *gin.Context, store filestore.Store, mr *multipart.Reader, opts UploadOptions) (string, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return "", errNoFile
		}
		if err != nil {
			return "", err
		}
		if part.FormName() != opts.Field || part.FileName() == "" {
			_ = part.Close()
			continue
		}
		url, err := storePart(c, store, part, opts)
		_ = part.Close()
		return url, err
	}
}

func storePart(c *gin.Context, store filestore.Store, part *multipart.Part, opts UploadOptions) (string, error) {
	tmp, err := os.CreateTemp(store.TempDir(), "upload-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(part, opts.MaxBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}
	if n > opts.MaxBytes {
		return "", errTooLarge
	}

	mt, err := mimetype.DetectFile(tmpPath)
	if err != nil {
		return "", err
	}
	if !allowedType(mt, opts.Allowed) {
		return "", fmt.Errorf("%w: %s. Allowed types: %s", errBadContent, mt.String(), strings.Join(opts.Allowed, ", "))
	}

	name := uuid.NewString() + mt.Extension()
	url, err := store.Save(c.Request.Context(), opts.Dir, name, mt.String(), tmpPath)
	if err != nil {
		return "", &os.PathError{Op: "save", Path: name, Err: err}
	}
	keep = true
	return url, nil
}

func allowedType(mt *mimetype.MIME, allowed []string) bool {
	for _, a := range allowed {
		if mt.Is(a) {
			return true
		}
	}
	return false
}
