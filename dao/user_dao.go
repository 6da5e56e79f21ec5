package dao

import (
	"pixshelf/model"

	"gorm.io/gorm"
)

type UserDAO struct {
	db *gorm.DB
}

// NewUserDAO creates a new UserDAO instance.
func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

// CreateUser persists a new user record.
func (dao *UserDAO) CreateUser(user *model.User) error {
	return dao.db.Create(user).Error
}

// FindByEmail looks a user up by email address.
func (dao *UserDAO) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := dao.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByPhone looks a user up by phone number.
func (dao *UserDAO) FindByPhone(phone uint64) (*model.User, error) {
	var user model.User
	err := dao.db.Where("phone = ?", phone).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername looks a user up by username.
func (dao *UserDAO) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := dao.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePasswordByEmail overwrites the stored hash for the matching email and
// reports how many rows changed.
func (dao *UserDAO) UpdatePasswordByEmail(email, hash string) (int64, error) {
	res := dao.db.Model(&model.User{}).Where("email = ?", email).Update("password_hash", hash)
	return res.RowsAffected, res.Error
}

// UpdatePasswordByPhone overwrites the stored hash for the matching phone and
// reports how many rows changed.
func (dao *UserDAO) UpdatePasswordByPhone(phone uint64, hash string) (int64, error) {
	res := dao.db.Model(&model.User{}).Where("phone = ?", phone).Update("password_hash", hash)
	return res.RowsAffected, res.Error
}
