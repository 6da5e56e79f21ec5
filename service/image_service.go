package service

import (
	"errors"

	"pixshelf/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ImageStore is the slice of the image store the image service needs.
// *dao.ImageDAO satisfies it.
type ImageStore interface {
	CreateBatch(images []*model.Image) error
	FindByID(id uint64) (*model.Image, error)
	FindByUser(userID uint64) ([]model.Image, error)
	Update(id uint64, updates map[string]interface{}) (*model.Image, error)
	UpdatePosition(userID, id uint64, position int) error
	DeleteByID(id uint64) (bool, error)
}

// ImageService implements the gallery operations: upload, update, reorder,
// list and delete.
type ImageService struct {
	store ImageStore
}

// NewImageService creates a new ImageService instance.
func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

// ImageInput is one item of an upload batch; the URL already points at the
// object store.
type ImageInput struct {
	Title    string
	ImageURL string
}

// PositionUpdate names one image and its new position within the gallery.
type PositionUpdate struct {
	ID       uint64 `json:"id" binding:"required"`
	Position int    `json:"order" binding:"min=0"`
}

// UploadImages appends a batch of images to the owner's gallery. Positions
// continue from the current maximum (starting at 0 for an empty gallery) in
// input order, and the whole batch is persisted with one insert.
func (s *ImageService) UploadImages(userID uint64, items []ImageInput) ([]model.Image, error) {
	existing, err := s.store.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	maxPos := -1
	for _, img := range existing {
		if img.Position > maxPos {
			maxPos = img.Position
		}
	}

	images := make([]*model.Image, 0, len(items))
	for _, item := range items {
		maxPos++
		images = append(images, &model.Image{
			UserID:   userID,
			Title:    item.Title,
			ImageURL: item.ImageURL,
			Position: maxPos,
		})
	}

	if err := s.store.CreateBatch(images); err != nil {
		return nil, err
	}

	created := make([]model.Image, len(images))
	for i, img := range images {
		created[i] = *img
	}
	return created, nil
}

// ImagePatch is a sparse update; nil fields are left untouched.
type ImagePatch struct {
	Title    *string
	ImageURL *string
}

// UpdateImage applies a sparse patch to one image. Replacing the URL does not
// touch the previous blob; the object store owns that lifecycle.
func (s *ImageService) UpdateImage(id uint64, patch ImagePatch) (*model.Image, error) {
	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}

	img, err := s.store.Update(id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return img, nil
}

// ReorderImages overwrites the position of each named image. Every update is
// scoped to (userID, id), so ids belonging to another user match nothing.
// The batch is not atomic: a mid-batch failure leaves earlier updates
// applied, and no rollback is attempted.
func (s *ImageService) ReorderImages(userID uint64, updates []PositionUpdate) error {
	for _, u := range updates {
		if err := s.store.UpdatePosition(userID, u.ID, u.Position); err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,
				"image_id": u.ID,
			}).WithError(err).Error("reorder aborted mid-batch")
			return err
		}
	}
	return nil
}

// GetUserImages returns the owner's gallery sorted by ascending position.
// Ties are broken arbitrarily; the sort order is the sole contract.
func (s *ImageService) GetUserImages(userID uint64) ([]model.Image, error) {
	return s.store.FindByUser(userID)
}

// DeleteImage removes the record and reports whether it existed. Remaining
// positions are not renumbered; gaps are fine, positions are a rank.
func (s *ImageService) DeleteImage(id uint64) (bool, error) {
	return s.store.DeleteByID(id)
}
