package schemas

import "github.com/google/uuid"

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
type ErrorDTO struct {
	Error CustomError `json:"error"`
}

// MetadataDTO is a struct that represents the version metadata of the API
type MetadataDTO struct {
	ApiVersion string `json:"apiVersion"`
	ApiName    string `json:"apiName"`
}

// UserDTO is a struct that represents a user response
// Username is the username of the user
// Email is the email of the user
// FullName is the display name of the user
type UserDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// TokenPairDTO is a struct that represents a token response
// Token is the main JWT token used for auth
// RefreshToken is the refresh token used to get a new token
type TokenPairDTO struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// UserProfileDTO is a struct that represents the caller's own account
// Points is the current balance, Items is the number of listed items
type UserProfileDTO struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Bio        string    `json:"bio"`
	AvatarURL  string    `json:"avatar_url"`
	Points     int       `json:"points"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  string    `json:"created_at"`
}

// PublicProfileDTO is a struct that represents another user's public profile
// It omits email and points balance
type PublicProfileDTO struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
	Items     int    `json:"items"`
}

// OwnerDTO is a struct that represents the owner snippet embedded in item responses
type OwnerDTO struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// ItemDTO is a struct that represents an item response
type ItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Size        string    `json:"size"`
	Brand       string    `json:"brand"`
	Color       string    `json:"color"`
	Material    string    `json:"material"`
	PricePoints int       `json:"price_points"`
	ImageURLs   []string  `json:"image_urls"`
	IsAvailable bool      `json:"is_available"`
	IsFeatured  bool      `json:"is_featured"`
	CreatedAt   string    `json:"created_at"`
	Owner       OwnerDTO  `json:"owner"`
}

// ImageUploadDTO is a struct that represents the stored reference of an uploaded image
type ImageUploadDTO struct {
	ImageURL string `json:"image_url"`
}

// ExchangeDTO is a struct that represents an exchange response
type ExchangeDTO struct {
	ID              uuid.UUID `json:"id"`
	ItemID          uuid.UUID `json:"item_id"`
	ItemTitle       string    `json:"item_title"`
	OfferingUser    string    `json:"offering_user"`
	RequestingUser  string    `json:"requesting_user"`
	ExchangeType    string    `json:"exchange_type"`
	Status          string    `json:"status"`
	Message         string    `json:"message"`
	PointsExchanged int       `json:"points_exchanged"`
	CreatedAt       string    `json:"created_at"`
}

// ChatMessageDTO is a struct that represents a stored chat message with its response
type ChatMessageDTO struct {
	ID           uuid.UUID `json:"id"`
	Message      string    `json:"message"`
	Response     string    `json:"response"`
	IsAIResponse bool      `json:"is_ai_response"`
	CreatedAt    string    `json:"created_at"`
}

// PaginatedResponse is a struct that represents a paginated response
// Records is the records of the response
// Pagination is the pagination of the response
type PaginatedResponse struct {
	Records    interface{} `json:"records"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination is a struct that represents a pagination
// Offset is the given offset of the pagination
// Limit is the given limit of the pagination
// Records is the total records of the pagination
type Pagination struct {
	Offset  int `json:"offset"`
	Limit   int `json:"limit"`
	Records int `json:"records"`
}
