package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"    json:"id"`
	Name         string    `gorm:"not null"                json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"    json:"email"`
	PasswordHash string    `gorm:"not null"                json:"-"`
	Phone        string    `json:"phone"`
	IsAdmin      bool      `gorm:"not null;default:false"  json:"isAdmin"`
	Street       string    `json:"street"`
	Apartment    string    `json:"apartment"`
	Zip          string    `json:"zip"`
	City         string    `json:"city"`
	Country      string    `json:"country"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Category struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"not null"             json:"name"`
	Icon  string    `json:"icon"`
	Color string    `json:"color"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"           json:"id"`
	Name            string    `gorm:"not null"                       json:"name"`
	Description     string    `gorm:"not null"                       json:"description"`
	RichDescription string    `json:"richDescription"`
	Image           string    `json:"image"`
	Images          []string  `gorm:"type:text;serializer:json"      json:"images"`
	Brand           string    `json:"brand"`
	Price           float64   `gorm:"not null;default:0"             json:"price"`
	CategoryID      uuid.UUID `gorm:"type:uuid;not null;index"       json:"categoryId"`
	Category        *Category `gorm:"foreignKey:CategoryID"          json:"category,omitempty"`
	CountInStock    int       `gorm:"not null"                       json:"countInStock"`
	Rating          float64   `gorm:"default:0"                      json:"rating"`
	NumReviews      int       `gorm:"default:0"                      json:"numReviews"`
	IsFeatured      bool      `gorm:"default:false;index"            json:"isFeatured"`
	DateCreated     time.Time `gorm:"autoCreateTime"                 json:"dateCreated"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return nil
}

// All lists every model the schema migration has to know about.
func All() []any {
	return []any{&User{}, &Category{}, &Product{}}
}
