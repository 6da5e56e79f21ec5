package dao

import (
	"pixshelf/model"

	"gorm.io/gorm"
)

type ImageDAO struct {
	db *gorm.DB
}

// NewImageDAO creates a new ImageDAO instance.
func NewImageDAO(db *gorm.DB) *ImageDAO {
	return &ImageDAO{db: db}
}

// CreateBatch inserts all records in one statement.
func (dao *ImageDAO) CreateBatch(images []*model.Image) error {
	return dao.db.Create(images).Error
}

// FindByID fetches a single image record.
func (dao *ImageDAO) FindByID(id uint64) (*model.Image, error) {
	var img model.Image
	err := dao.db.First(&img, id).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// FindByUser returns all of a user's images ordered by ascending position.
func (dao *ImageDAO) FindByUser(userID uint64) ([]model.Image, error) {
	var images []model.Image
	err := dao.db.Where("user_id = ?", userID).Order("position asc").Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

// Update applies a sparse column patch and returns the updated record.
// Returns gorm.ErrRecordNotFound when no record matches the id.
func (dao *ImageDAO) Update(id uint64, updates map[string]interface{}) (*model.Image, error) {
	var img model.Image
	if err := dao.db.First(&img, id).Error; err != nil {
		return nil, err
	}
	if err := dao.db.Model(&img).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

// UpdatePosition overwrites one image's position, scoped to the owning user.
// A mismatched owner matches zero rows and is not an error.
func (dao *ImageDAO) UpdatePosition(userID, id uint64, position int) error {
	return dao.db.Model(&model.Image{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("position", position).Error
}

// DeleteByID removes the record and reports whether anything was deleted.
func (dao *ImageDAO) DeleteByID(id uint64) (bool, error) {
	res := dao.db.Delete(&model.Image{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
