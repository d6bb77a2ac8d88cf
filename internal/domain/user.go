package domain

import (
	"fmt"
	"time"
)

type User struct {
	UserID          string     `json:"id" dynamodbav:"user_id"`
	Email           string     `json:"email" dynamodbav:"email"`
	PasswordHash    string     `json:"-" dynamodbav:"password_hash"`
	Role            string     `json:"role" dynamodbav:"role"`
	FirstName       string     `json:"first_name,omitempty" dynamodbav:"first_name"`
	LastName        string     `json:"last_name,omitempty" dynamodbav:"last_name"`
	DateOfBirth     string     `json:"date_of_birth,omitempty" dynamodbav:"date_of_birth"` // YYYY-MM-DD
	MaritalStatus   string     `json:"marital_status,omitempty" dynamodbav:"marital_status"`
	Profession      string     `json:"profession,omitempty" dynamodbav:"profession"`
	Gender          string     `json:"gender,omitempty" dynamodbav:"gender"`
	Address         string     `json:"address,omitempty" dynamodbav:"address"`
	ProfileImageKey string     `json:"-" dynamodbav:"profile_image_key"`
	ProfileImageURL string     `json:"profile_image_url,omitempty" dynamodbav:"-"`
	IsDeleted       bool       `json:"-" dynamodbav:"is_deleted"`
	DeletedAt       *time.Time `json:"-" dynamodbav:"deleted_at"`
	CreatedAt       time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// NewUser builds a regular account. passwordHash must already be hashed.
func NewUser(id, email, passwordHash string, now time.Time) (*User, error) {
	email = NormalizeEmail(email)
	switch {
	case id == "":
		return nil, fmt.Errorf("user id required: %w", ErrBadRequest)
	case email == "":
		return nil, fmt.Errorf("user email required: %w", ErrBadRequest)
	case passwordHash == "":
		return nil, fmt.Errorf("user password hash required: %w", ErrBadRequest)
	}
	now = now.UTC()
	return &User{
		UserID:       id,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// UpdateProfileRequest carries the editable profile fields; nil means unchanged.
type UpdateProfileRequest struct {
	FirstName     *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName      *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	MaritalStatus *string `json:"marital_status" validate:"omitempty,maritalstatus"`
	Profession    *string `json:"profession" validate:"omitempty,max=100"`
}

// CompleteSignupRequest fills the profile right after account creation.
type CompleteSignupRequest struct {
	DateOfBirth   string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	FirstName     string `json:"first_name" validate:"required,max=100"`
	LastName      string `json:"last_name" validate:"required,max=100"`
	MaritalStatus string `json:"marital_status" validate:"required,maritalstatus"`
	Profession    string `json:"profession" validate:"required,max=100"`
	Gender        string `json:"gender" validate:"required,oneof=male female other"`
	Address       string `json:"address" validate:"required,min=5,max=200"`
}
