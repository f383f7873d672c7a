package handler

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"realty-api/internal/core/storage"
	httpez "realty-api/internal/transport/http/ez"
)

const maxUploadFiles = 10

// Uploads 房源图片上传；Store 为 nil 时接口返回 503
type Uploads struct {
	Store storage.Uploader
	Log   *zap.Logger
}

func (Uploads) Priority() int { return 50 }

func (h Uploads) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api.Group("/agent"), h.Log)
	httpez.POSTFILES(ez, "/uploads", "files", maxUploadFiles, func(c *gin.Context, files []*multipart.FileHeader) (any, error) {
		if h.Store == nil {
			return nil, httpez.Unavailable("Image storage is not configured")
		}
		for _, fh := range files {
			if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
				return nil, httpez.Invalid(map[string]string{"files": fmt.Sprintf("%s is not an image", fh.Filename)})
			}
		}
		urls := make([]string, 0, len(files))
		for _, fh := range files {
			u, err := h.put(c, fh)
			if err != nil {
				return nil, httpez.Internal("Failed to upload image", err)
			}
			urls = append(urls, u)
		}
		return gin.H{"urls": urls}, nil
	})
}

func (h Uploads) put(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return h.Store.Upload(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), f, fh.Size)
}
