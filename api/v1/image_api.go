package v1

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"pixshelf/api/v1/request"
	"pixshelf/internal/metrics"
	"pixshelf/internal/storage"
	"pixshelf/middleware"
	"pixshelf/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultTitle = "Untitled"

// ImageAPI exposes the gallery HTTP handlers. Uploaded bytes go straight to
// the object store; only the returned URL reaches the image service.
type ImageAPI struct {
	service *service.ImageService
	store   storage.ObjectStore
}

// NewImageAPI wires the image service and the object store into the handlers.
func NewImageAPI(s *service.ImageService, store storage.ObjectStore) *ImageAPI {
	return &ImageAPI{service: s, store: store}
}

// Upload accepts multipart files under "images" plus a "titles" JSON array
// aligned with the file order. Missing titles fall back to a default.
func (a *ImageAPI) Upload(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		metrics.IncUpload("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		metrics.IncUpload("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}

	var titles []string
	if raw := c.PostForm("titles"); raw != "" {
		// A malformed array degrades to default titles rather than failing
		// the whole upload.
		_ = json.Unmarshal([]byte(raw), &titles)
	}

	items := make([]service.ImageInput, 0, len(files))
	for i, file := range files {
		url, err := a.storeFile(c, file)
		if err != nil {
			metrics.IncUpload("storage_error")
			logrus.WithError(err).Error("image upload to object store failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload images"})
			return
		}
		title := defaultTitle
		if i < len(titles) && titles[i] != "" {
			title = titles[i]
		}
		items = append(items, service.ImageInput{Title: title, ImageURL: url})
	}

	images, err := a.service.UploadImages(id.UserID, items)
	if err != nil {
		metrics.IncUpload("internal_error")
		logrus.WithError(err).Error("image batch insert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload images"})
		return
	}
	metrics.IncUpload("success")
	c.JSON(http.StatusCreated, images)
}

// List returns the caller's gallery in display order.
func (a *ImageAPI) List(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	images, err := a.service.GetUserImages(id.UserID)
	if err != nil {
		logrus.WithError(err).Error("gallery listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch images"})
		return
	}
	c.JSON(http.StatusOK, images)
}

// Update patches an image's title and/or replaces its file. At least one of
// the two must be present.
func (a *ImageAPI) Update(c *gin.Context) {
	imageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	var patch service.ImagePatch
	if title := c.PostForm("title"); title != "" {
		patch.Title = &title
	}
	if file, err := c.FormFile("image"); err == nil && file != nil {
		url, err := a.storeFile(c, file)
		if err != nil {
			logrus.WithError(err).Error("replacement upload to object store failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update image"})
			return
		}
		patch.ImageURL = &url
	}
	if patch.Title == nil && patch.ImageURL == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Update data required"})
		return
	}

	img, err := a.service.UpdateImage(imageID, patch)
	if err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		logrus.WithError(err).Error("image update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update image"})
		return
	}
	c.JSON(http.StatusOK, img)
}

// Reorder rewrites gallery positions from a batch of {id, order} pairs.
func (a *ImageAPI) Reorder(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req request.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncReorder("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.service.ReorderImages(id.UserID, req.Updates); err != nil {
		metrics.IncReorder("internal_error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder images"})
		return
	}
	metrics.IncReorder("success")
	c.JSON(http.StatusOK, gin.H{"message": "Images reordered"})
}

// Delete removes one image record. The stored blob stays with the object
// store.
func (a *ImageAPI) Delete(c *gin.Context) {
	imageID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	found, err := a.service.DeleteImage(imageID)
	if err != nil {
		logrus.WithError(err).Error("image delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete image"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}

// storeFile streams one multipart file into the object store.
func (a *ImageAPI) storeFile(c *gin.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := storage.ObjectKey(file.Filename)
	return a.store.Put(c.Request.Context(), key, contentType, src, file.Size)
}
