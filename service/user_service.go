package service

import (
	"errors"
	"strconv"
	"strings"

	"pixshelf/internal/auth"
	"pixshelf/model"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

// UserStore is the slice of the credential store the user service needs.
// *dao.UserDAO satisfies it.
type UserStore interface {
	CreateUser(user *model.User) error
	FindByEmail(email string) (*model.User, error)
	FindByPhone(phone uint64) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	UpdatePasswordByEmail(email, hash string) (int64, error)
	UpdatePasswordByPhone(phone uint64, hash string) (int64, error)
}

// UserService implements registration, login, identity verification and
// password reset over the credential store.
type UserService struct {
	store UserStore
}

// NewUserService creates a new UserService instance.
func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// RegisterInput carries the raw registration fields. Email and Phone are
// optional but at least one must be set.
type RegisterInput struct {
	Username string
	Email    string
	Phone    *uint64
	Password string
}

// Register validates the input, hashes the password and persists the user.
// Uniqueness of email, phone and username is checked independently before
// any write, each with its own conflict error.
func (s *UserService) Register(in RegisterInput) error {
	if in.Email == "" && in.Phone == nil {
		return ErrEmailOrPhoneRequired
	}

	if in.Email != "" {
		if existing, err := s.lookup(s.store.FindByEmail, in.Email); err != nil {
			return err
		} else if existing != nil {
			return ErrEmailExists
		}
	}

	if in.Phone != nil {
		if existing, err := s.lookupPhone(*in.Phone); err != nil {
			return err
		} else if existing != nil {
			return ErrPhoneExists
		}
	}

	if existing, err := s.lookup(s.store.FindByUsername, in.Username); err != nil {
		return err
	} else if existing != nil {
		return ErrUsernameTaken
	}

	if in.Password == "" {
		return ErrPasswordRequired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return err
	}

	user := &model.User{
		Username:     in.Username,
		Phone:        in.Phone,
		PasswordHash: string(hashed),
	}
	if in.Email != "" {
		user.Email = &in.Email
	}

	if err := s.store.CreateUser(user); err != nil {
		// Backstop for races the existence checks above cannot see.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// Login resolves the identifier (email when it contains '@', phone when it
// is all digits, otherwise no lookup happens), checks the password and
// issues a signed session token. The returned user has its hash stripped.
func (s *UserService) Login(identifier, password string) (*model.User, string, error) {
	var user *model.User
	var err error

	if strings.Contains(identifier, "@") {
		user, err = s.lookup(s.store.FindByEmail, identifier)
	} else if phone, perr := strconv.ParseUint(identifier, 10, 64); perr == nil {
		user, err = s.lookupPhone(phone)
	}
	if err != nil {
		return nil, "", err
	}

	if user == nil || user.PasswordHash == "" {
		logrus.WithField("identifier", identifier).Warn("login failed: no matching user")
		return nil, "", ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		logrus.WithField("user_id", user.ID).Warn("login failed: password mismatch")
		return nil, "", ErrInvalidPassword
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	user.PasswordHash = ""
	return user, token, nil
}

// VerifyIdentity reports whether a user exists for the given email or phone
// identifier. It is the first step of password reset and ignores passwords.
func (s *UserService) VerifyIdentity(identifier string) (bool, error) {
	user, err := s.resolveIdentifier(identifier)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// ResetPassword re-hashes and overwrites the stored password for the matched
// identifier. Returns true iff a record was actually modified.
func (s *UserService) ResetPassword(identifier, password string) (bool, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return false, err
	}

	var affected int64
	if phone, perr := strconv.ParseUint(identifier, 10, 64); perr == nil && !strings.Contains(identifier, "@") {
		affected, err = s.store.UpdatePasswordByPhone(phone, string(hashed))
	} else {
		affected, err = s.store.UpdatePasswordByEmail(identifier, string(hashed))
	}
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *UserService) resolveIdentifier(identifier string) (*model.User, error) {
	if phone, err := strconv.ParseUint(identifier, 10, 64); err == nil && !strings.Contains(identifier, "@") {
		return s.lookupPhone(phone)
	}
	return s.lookup(s.store.FindByEmail, identifier)
}

// lookup normalizes gorm's not-found error into a nil user.
func (s *UserService) lookup(find func(string) (*model.User, error), key string) (*model.User, error) {
	user, err := find(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) lookupPhone(phone uint64) (*model.User, error) {
	user, err := s.store.FindByPhone(phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
