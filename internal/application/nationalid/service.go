package nationalid

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-account-api/internal/domain"
)

var (
	ErrOCRUnconfigured   = domain.NewError(domain.ErrUnconfigured, "OCR_UNCONFIGURED", "national id extraction is not configured")
	ErrExtractionFailed  = domain.NewError(domain.ErrInvalid, "NATIONAL_ID_EXTRACTION_FAILED", "Failed to extract ID data from images")
	errMissingCardImages = domain.NewError(domain.ErrBadRequest, "NATIONAL_ID_IMAGES_REQUIRED", "front_base64 and back_base64 are required")
)

// NationalID is the profile data read off an identity card.
type NationalID struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	DateOfBirth   string `json:"date_of_birth"`
	Gender        string `json:"gender"`
	Address       string `json:"address"`
	Profession    string `json:"profession"`
	MaritalStatus string `json:"marital_status"`
}

type Service interface {
	Extract(ctx context.Context, frontBase64, backBase64 string) (*NationalID, error)
}

type fieldExtractor interface {
	Extract(ctx context.Context, frontBase64, backBase64 string) (map[string]string, error)
}

type service struct {
	ocr fieldExtractor
}

type ServiceDeps struct {
	OCR fieldExtractor // nil when no endpoint is configured
}

func NewService(deps ServiceDeps) Service {
	return &service{ocr: deps.OCR}
}

func (s *service) Extract(ctx context.Context, frontBase64, backBase64 string) (*NationalID, error) {
	if s.ocr == nil {
		return nil, ErrOCRUnconfigured
	}
	if strings.TrimSpace(frontBase64) == "" || strings.TrimSpace(backBase64) == "" {
		return nil, errMissingCardImages
	}
	fields, err := s.ocr.Extract(ctx, frontBase64, backBase64)
	if err != nil {
		slog.Warn("national id extraction failed", "err", err)
		return nil, ErrExtractionFailed
	}
	if len(fields) == 0 {
		return nil, ErrExtractionFailed
	}
	return fromFields(fields), nil
}

func fromFields(f map[string]string) *NationalID {
	id := &NationalID{
		DateOfBirth:   f["date_of_birth"],
		Gender:        strings.ToLower(f["gender"]),
		Address:       f["address"],
		Profession:    f["profession"],
		MaritalStatus: strings.ToLower(f["marital_status"]),
	}
	if names := strings.Fields(f["full_name"]); len(names) > 0 {
		id.FirstName = names[0]
		if len(names) > 1 {
			id.LastName = names[len(names)-1]
		}
	}
	return id
}
