// Package schemas defines the data structures
package schemas

import (
	"github.com/google/uuid"
	"time"
)

// User represents the data model for a user in the system.
type User struct {
	ID         *uuid.UUID `json:"id"`          // Unique identifier for the user.
	Username   string     `json:"username"`    // Username of the user.
	Email      string     `json:"email"`       // Email address of the user.
	Password   string     `json:"-"`           // Password hash of the user, never serialized.
	FullName   string     `json:"full_name"`   // Display name of the user.
	Bio        string     `json:"bio"`         // Short profile text.
	AvatarURL  string     `json:"avatar_url"`  // Reference to the user's avatar image.
	Points     int        `json:"points"`      // Current points balance, never negative.
	IsActive   bool       `json:"is_active"`   // Whether the account is active.
	IsVerified bool       `json:"is_verified"` // Whether the email address has been verified.
	CreatedAt  *time.Time `json:"created_at"`  // Timestamp when the user was created.
	UpdatedAt  *time.Time `json:"updated_at"`  // Timestamp of the last profile change.
}

// VerificationToken represents a mail verification code associated with a user.
type VerificationToken struct {
	ID        *uuid.UUID `json:"id"`         // Unique identifier for the verification token.
	UserID    *uuid.UUID `json:"user_id"`    // Identifier of the user associated with this token.
	Token     string     `json:"token"`      // Six-digit code sent by mail.
	ExpiresAt *time.Time `json:"expires_at"` // Timestamp when the token expires.
}

// Item represents a clothing item listed for exchange.
type Item struct {
	ID          *uuid.UUID    `json:"id"`           // Unique identifier for the item.
	OwnerID     *uuid.UUID    `json:"owner_id"`     // Identifier of the owning user.
	Title       string        `json:"title"`        // Title of the listing.
	Description string        `json:"description"`  // Optional free-text description.
	Category    ItemCategory  `json:"category"`     // Clothing category.
	Condition   ItemCondition `json:"condition"`    // Wear condition.
	Size        string        `json:"size"`         // Optional size label.
	Brand       string        `json:"brand"`        // Optional brand name.
	Color       string        `json:"color"`        // Optional color.
	Material    string        `json:"material"`     // Optional material.
	PricePoints int           `json:"price_points"` // Points required for a points exchange.
	ImageURLs   []string      `json:"image_urls"`   // Ordered image references.
	IsAvailable bool          `json:"is_available"` // Whether the item can still be exchanged.
	IsFeatured  bool          `json:"is_featured"`  // Whether the item is featured on the landing page.
	CreatedAt   *time.Time    `json:"created_at"`   // Timestamp when the item was listed.
	UpdatedAt   *time.Time    `json:"updated_at"`   // Timestamp of the last change.
}

// Exchange represents a swap proposal binding one item, its owner and a requesting user.
type Exchange struct {
	ID               *uuid.UUID     `json:"id"`                 // Unique identifier for the exchange.
	ItemID           *uuid.UUID     `json:"item_id"`            // Identifier of the item being exchanged.
	OfferingUserID   *uuid.UUID     `json:"offering_user_id"`   // The item owner.
	RequestingUserID *uuid.UUID     `json:"requesting_user_id"` // The user requesting the item.
	ExchangeType     ExchangeType   `json:"exchange_type"`      // Direct swap or points exchange.
	Status           ExchangeStatus `json:"status"`             // Current lifecycle state.
	Message          string         `json:"message"`            // Optional message from the requester.
	PointsExchanged  int            `json:"points_exchanged"`   // Points moved on acceptance, fixed after propose.
	CreatedAt        *time.Time     `json:"created_at"`         // Timestamp when the exchange was proposed.
	UpdatedAt        *time.Time     `json:"updated_at"`         // Timestamp of the last transition.
}

// ChatMessage represents a user's message to the assistant and the stored response.
type ChatMessage struct {
	ID           *uuid.UUID `json:"id"`             // Unique identifier for the message.
	UserID       *uuid.UUID `json:"user_id"`        // Identifier of the authoring user.
	Message      string     `json:"message"`        // The user's message.
	Response     string     `json:"response"`       // The stored response.
	IsAIResponse bool       `json:"is_ai_response"` // Whether the response was generated automatically.
	CreatedAt    *time.Time `json:"created_at"`     // Timestamp when the message was stored.
}
