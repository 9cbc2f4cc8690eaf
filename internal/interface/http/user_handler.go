package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ineedllc/ineed-api/internal/application"
	"github.com/ineedllc/ineed-api/internal/interface/middleware"
	"github.com/ineedllc/ineed-api/pkg/helpers"
	"github.com/ineedllc/ineed-api/pkg/response"
)

const maxImageSize = 5 << 20 // 5 MiB

type UserHandler struct {
	Svc    *application.AuthService
	GCS    *storage.Client
	Bucket string
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.AuthService, gcs *storage.Client, bucket string, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, GCS: gcs, Bucket: bucket, Logger: logger}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userView(u), "profile", nil)
}

// UploadProfileImage accepts a multipart "image" file, stores it in the
// bucket, and saves the resulting URL on the account.
func (h *UserHandler) UploadProfileImage(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	url, ok := h.storeImage(c, "profiles/"+uid)
	if !ok {
		return
	}
	u, err := h.Svc.UpdateProfileImage(c.Request.Context(), uid, url)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, userView(u), "profile_image_updated", nil)
}

// storeImage validates and uploads the multipart "image" field, writing the
// error response itself when something is wrong.
func (h *UserHandler) storeImage(c *gin.Context, prefix string) (string, bool) {
	if h.GCS == nil || h.Bucket == "" {
		response.Error[any](c, http.StatusServiceUnavailable, "storage_unavailable", nil)
		return "", false
	}
	fh, err := c.FormFile("image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", map[string]string{"image": "is required"})
		return "", false
	}
	if fh.Size > maxImageSize {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", map[string]string{"image": "must be at most 5MB"})
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType := mimeForExt(ext)
	if contentType == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", map[string]string{"image": "must be jpg, png, or webp"})
		return "", false
	}

	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid_payload", map[string]string{"image": "could not read file"})
		return "", false
	}
	defer func() { _ = f.Close() }()

	object := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)
	url, err := helpers.UploadObject(c.Request.Context(), h.GCS, h.Bucket, object, contentType, f)
	if err != nil {
		h.Logger.WithError(err).Error("image upload failed")
		response.Error[any](c, http.StatusBadGateway, "upload_failed", nil)
		return "", false
	}
	return url, true
}

func mimeForExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	}
	return ""
}
