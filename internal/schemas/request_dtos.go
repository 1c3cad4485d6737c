// Package schemas defines the request structures for various operations in the application.
package schemas

// RegistrationRequest is a struct that represents a registration request
// Username is required and must be less than 20 characters
// Email is required and must be a valid email
// Password is required and must be at least 8 characters
// FullName is optional and must be less than 100 characters
type RegistrationRequest struct {
	Username string `json:"username" validate:"required,max=20,username_validation"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password_validation"`
	FullName string `json:"full_name" validate:"max=100"`
}

// LoginRequest is a struct that represents a login request
// Username is required and must be less than 20 characters
// Password is required and must be at least 8 characters
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=20,username_validation"`
	Password string `json:"password" validate:"required,min=8,password_validation"`
}

// RefreshTokenRequest is a struct that represents a RefreshToken request
// RefreshToken is required and must be a valid refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// VerificationRequest is a struct that represents a mail verification request
// Token is required and must be a 6-digit number
type VerificationRequest struct {
	Token string `json:"token" validate:"required,numeric,len=6"`
}

// ChangePasswordRequest is a struct that represents a PasswordChange request
// OldPassword is required and must be at least 8 characters
// NewPassword is required and must be at least 8 characters
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required,min=8,password_validation"`
	NewPassword string `json:"newPassword" validate:"required,min=8,password_validation"`
}

// UpdateProfileRequest is a struct that represents a profile update request
// FullName is optional and must be less than 100 characters
// Bio is optional and must be less than 500 characters
// AvatarURL is optional and must be less than 256 characters
type UpdateProfileRequest struct {
	FullName  string `json:"full_name" validate:"max=100"`
	Bio       string `json:"bio" validate:"max=500"`
	AvatarURL string `json:"avatar_url" validate:"max=256"`
}

// CreateItemRequest is a struct that represents an item listing request
// Title is required and must be less than 100 characters
// Category and Condition are required and validated against their closed sets
// PricePoints must not be negative
type CreateItemRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Category    string `json:"category" validate:"required,category_validation"`
	Condition   string `json:"condition" validate:"required,condition_validation"`
	Size        string `json:"size" validate:"max=20"`
	Brand       string `json:"brand" validate:"max=50"`
	Color       string `json:"color" validate:"max=30"`
	Material    string `json:"material" validate:"max=50"`
	PricePoints int    `json:"price_points" validate:"min=0"`
}

// UpdateItemRequest is a struct that represents an item update request
// All fields are optional; absent fields keep their current value
type UpdateItemRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Category    *string `json:"category" validate:"omitempty,category_validation"`
	Condition   *string `json:"condition" validate:"omitempty,condition_validation"`
	Size        *string `json:"size" validate:"omitempty,max=20"`
	Brand       *string `json:"brand" validate:"omitempty,max=50"`
	Color       *string `json:"color" validate:"omitempty,max=30"`
	Material    *string `json:"material" validate:"omitempty,max=50"`
	PricePoints *int    `json:"price_points" validate:"omitempty,min=0"`
	IsAvailable *bool   `json:"is_available"`
}

// CreateExchangeRequest is a struct that represents an exchange proposal
// ItemID is required and must be a UUID
// ExchangeType is required and must be direct_swap or points_exchange
// Message is optional and must be less than 500 characters
type CreateExchangeRequest struct {
	ItemID       string `json:"item_id" validate:"required,uuid4"`
	ExchangeType string `json:"exchange_type" validate:"required,oneof=direct_swap points_exchange"`
	Message      string `json:"message" validate:"max=500"`
}

// ChatMessageRequest is a struct that represents a chat message to the assistant
// Message is required and must be less than 1000 characters
type ChatMessageRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}
