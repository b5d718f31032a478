package transport

import (
	"time"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	UserID      string
	Email       string
	IsAdmin     bool
	AccessToken string
	AccessExp   time.Time
}

type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	Country   string `json:"country"`
	// IsAdmin is only honoured on the admin create route.
	IsAdmin bool `json:"isAdmin"`
}

type CategoryRequest struct {
	Name  *string `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

// CreateProductForm is bound from a multipart body; the image part is read
// separately by the handler.
type CreateProductForm struct {
	Name            string  `form:"name"`
	Description     string  `form:"description"`
	RichDescription string  `form:"richDescription"`
	Brand           string  `form:"brand"`
	Price           float64 `form:"price"`
	Category        string  `form:"category"`
	CountInStock    int     `form:"countInStock"`
	Rating          float64 `form:"rating"`
	NumReviews      int     `form:"numReviews"`
	IsFeatured      bool    `form:"isFeatured"`
}

type PatchProductRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	RichDescription *string  `json:"richDescription"`
	Image           *string  `json:"image"`
	Brand           *string  `json:"brand"`
	Price           *float64 `json:"price"`
	Category        *string  `json:"category"`
	CountInStock    *int     `json:"countInStock"`
	Rating          *float64 `json:"rating"`
	NumReviews      *int     `json:"numReviews"`
	IsFeatured      *bool    `json:"isFeatured"`

	CategoryID *uuid.UUID `json:"-"`
}

// Upload is an image payload detached from the HTTP layer.
type Upload struct {
	Filename    string
	ContentType string
	Body        []byte
}

type SearchResult[T any] struct {
	Total int64 `json:"total"`
	Items []T   `json:"items"`
}
