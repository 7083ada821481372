package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "bukukas/internal/errors"
	"bukukas/internal/logger"
	"bukukas/internal/models"
	"bukukas/internal/policy"
	"bukukas/internal/storage"
)

// ProfilePictureDir is the storage directory for profile pictures.
const ProfilePictureDir = "profile-pictures"

// allowedPictureTypes maps accepted image MIME types to stored extensions.
var allowedPictureTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// userService handles user-related business logic.
type userService struct {
	db             *gorm.DB
	store          storage.FileStore
	maxUploadBytes int64
}

// NewUserService creates a new UserServicer. Profile pictures larger than
// maxUploadBytes are refused.
func NewUserService(db *gorm.DB, store storage.FileStore, maxUploadBytes int64) UserServicer {
	return &userService{db: db, store: store, maxUploadBytes: maxUploadBytes}
}

// AttemptLogin verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("LOWER(email) = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	return findByID[models.User](s.db, id, apperrors.ErrUserNotFound)
}

// RevokeTokens invalidates every token issued to the user so far.
func (s *userService) RevokeTokens(userID string) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// ListUsers returns all users ordered by name, optionally restricted to one role.
func (s *userService) ListUsers(role *models.Role) ([]models.User, error) {
	q := s.db.Order("name ASC")
	if role != nil {
		q = q.Where("role = ?", *role)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// CreateUser registers a new user with an optional profile picture.
func (s *userService) CreateUser(input UserInput, picture *Upload) (*models.User, error) {
	email := normalizeEmail(input.Email)
	if err := s.ensureEmailAvailable(email, ""); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Name:              strings.TrimSpace(input.Name),
		Email:             email,
		Password:          string(hash),
		Role:              role,
		BankName:          input.BankName,
		AccountNumber:     input.AccountNumber,
		AccountHolderName: input.AccountHolderName,
	}

	if picture != nil {
		path, err := s.savePicture(picture)
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = path
	}

	if err := s.db.Create(user).Error; err != nil {
		s.discardPicture(user.ProfilePicture)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// UpdateUser changes a user's profile. Actors may not change their own role.
// A new picture replaces the old one, which is removed once the row is saved.
func (s *userService) UpdateUser(actor policy.Actor, id string, input UserInput, picture *Upload) (*models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = user.Role
	}
	if err := policy.CanChangeRole(actor, user.ID, user.Role, role); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	if err := s.ensureEmailAvailable(email, user.ID); err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(input.Name)
	user.Email = email
	user.Role = role
	user.BankName = input.BankName
	user.AccountNumber = input.AccountNumber
	user.AccountHolderName = input.AccountHolderName

	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		user.Password = string(hash)
	}

	previous := user.ProfilePicture
	if picture != nil {
		path, err := s.savePicture(picture)
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = path
	}

	if err := s.db.Save(user).Error; err != nil {
		if picture != nil {
			s.discardPicture(user.ProfilePicture)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if picture != nil && previous != "" {
		s.discardPicture(previous)
	}
	return user, nil
}

func (s *userService) ensureEmailAvailable(email, exceptID string) error {
	q := s.db.Model(&models.User{}).Where("LOWER(email) = ?", email)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.Field("email", "The email has already been taken.")
	}
	return nil
}

// savePicture checks the size and sniffed type of an upload before storing it.
func (s *userService) savePicture(picture *Upload) (string, error) {
	invalidType := apperrors.Field("profile_picture", "The profile picture must be a file of type: jpeg, png, jpg, gif.")
	tooLarge := apperrors.Field("profile_picture", fmt.Sprintf("The profile picture may not be greater than %d kilobytes.", s.maxUploadBytes/1024))

	if picture.Size > s.maxUploadBytes {
		return "", tooLarge
	}
	data, err := io.ReadAll(io.LimitReader(picture.Content, s.maxUploadBytes+1))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return "", tooLarge
	}

	ext, ok := allowedPictureTypes[mimetype.Detect(data).String()]
	if !ok {
		return "", invalidType
	}

	path, err := s.store.Save(ProfilePictureDir, ext, bytes.NewReader(data))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return path, nil
}

func (s *userService) discardPicture(path string) {
	if path == "" {
		return
	}
	if err := s.store.Delete(path); err != nil {
		logger.Get().Warnw("failed to delete profile picture", "path", path, "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
