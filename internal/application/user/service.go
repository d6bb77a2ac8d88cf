package user

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-account-api/internal/domain"
	s3infra "github.com/go-account-api/internal/infrastructure/s3"
	"github.com/go-account-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldFirstName       = "first_name"
	fieldLastName        = "last_name"
	fieldDateOfBirth     = "date_of_birth"
	fieldMaritalStatus   = "marital_status"
	fieldProfession      = "profession"
	fieldGender          = "gender"
	fieldAddress         = "address"
	fieldProfileImageKey = "profile_image_key"
)

const (
	maxImageBytes = 5 << 20
	imageURLTTL   = time.Hour
)

var dataURLPrefix = regexp.MustCompile(`^data:image/(jpeg|jpg|png|gif|webp);base64,`)

var (
	ErrInvalidImage  = domain.NewError(domain.ErrBadRequest, "INVALID_IMAGE", "image must be a base64 data URL (jpeg, png, gif or webp)")
	ErrImageTooLarge = domain.NewError(domain.ErrBadRequest, "IMAGE_TOO_LARGE", "image must be 5MB or smaller")
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
	CompleteSignup(ctx context.Context, userID string, req domain.CompleteSignupRequest) (*domain.User, error)
	UploadImage(ctx context.Context, userID, dataURL string) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
}

type imageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo   userStore
	images imageStore
}

type ServiceDeps struct {
	UserRepo userStore
	Images   imageStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo, images: deps.Images}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.ProfileImageKey != "" {
		url, err := s.images.PresignedURL(ctx, u.ProfileImageKey, imageURLTTL)
		if err != nil {
			slog.Warn("failed to presign profile image", "user_id", userID, "err", err)
		} else {
			u.ProfileImageURL = url
		}
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates[fieldFirstName] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates[fieldLastName] = strings.TrimSpace(*req.LastName)
	}
	if req.MaritalStatus != nil {
		updates[fieldMaritalStatus] = strings.ToLower(*req.MaritalStatus)
	}
	if req.Profession != nil {
		updates[fieldProfession] = strings.TrimSpace(*req.Profession)
	}
	if len(updates) == 0 {
		return s.Get(ctx, userID)
	}
	if err := s.update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *service) CompleteSignup(ctx context.Context, userID string, req domain.CompleteSignupRequest) (*domain.User, error) {
	if _, err := time.Parse("2006-01-02", req.DateOfBirth); err != nil {
		return nil, fmt.Errorf("date_of_birth must be in YYYY-MM-DD format: %w", domain.ErrBadRequest)
	}
	err := s.update(ctx, userID, map[string]interface{}{
		fieldDateOfBirth:   req.DateOfBirth,
		fieldFirstName:     strings.TrimSpace(req.FirstName),
		fieldLastName:      strings.TrimSpace(req.LastName),
		fieldMaritalStatus: strings.ToLower(req.MaritalStatus),
		fieldProfession:    strings.TrimSpace(req.Profession),
		fieldGender:        strings.ToLower(req.Gender),
		fieldAddress:       strings.TrimSpace(req.Address),
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// UploadImage stores a new profile picture under a fresh key and removes the
// previous object once the user row points at the new one.
func (s *service) UploadImage(ctx context.Context, userID, dataURL string) (*domain.User, error) {
	loc := dataURLPrefix.FindStringSubmatchIndex(dataURL)
	if loc == nil {
		return nil, ErrInvalidImage
	}
	ext := dataURL[loc[2]:loc[3]]
	payload := dataURL[loc[1]:]
	if base64.StdEncoding.DecodedLen(len(payload)) > maxImageBytes+3 {
		return nil, ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidImage
	}
	if len(data) > maxImageBytes {
		return nil, ErrImageTooLarge
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("profile-images/%s/%s.%s", userID, id.New(), ext)
	if err := s.images.Put(ctx, key, data, s3infra.DetectContentType(key)); err != nil {
		return nil, err
	}
	if err := s.update(ctx, userID, map[string]interface{}{fieldProfileImageKey: key}); err != nil {
		if derr := s.images.Delete(ctx, key); derr != nil {
			slog.Warn("failed to remove orphaned profile image", "key", key, "err", derr)
		}
		return nil, err
	}
	if u.ProfileImageKey != "" {
		if err := s.images.Delete(ctx, u.ProfileImageKey); err != nil {
			slog.Warn("failed to delete previous profile image", "key", u.ProfileImageKey, "err", err)
		}
	}
	return s.Get(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID string) error {
	if err := s.repo.SoftDelete(ctx, userID); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *service) load(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (s *service) update(ctx context.Context, userID string, updates map[string]interface{}) error {
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return notFound(err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrUserNotFound
	}
	return err
}
