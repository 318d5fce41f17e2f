// SPDX-License-Identifier: MIT
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultAppBg is the background color of a freshly created theme.
const DefaultAppBg = "#400810"

// Localized is a language tag to text map stored as a JSON column.
type Localized map[string]string

// Value implements driver.Valuer
func (l Localized) Value() (driver.Value, error) {
	if l == nil {
		return "{}", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *Localized) Scan(src interface{}) error {
	var raw []byte
	switch s := src.(type) {
	case nil:
		*l = Localized{}
		return nil
	case string:
		raw = []byte(s)
	case []byte:
		raw = s
	default:
		return fmt.Errorf("cannot scan %T into Localized", src)
	}
	if len(raw) == 0 {
		*l = Localized{}
		return nil
	}
	return json.Unmarshal(raw, l)
}

// Restaurant is a tenant with its own storefront and admin portal
type Restaurant struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`
	Name            string         `gorm:"not null" json:"name"`
	PINHash         string         `json:"-"`
	DefaultLanguage string         `gorm:"default:en" json:"defaultLanguage"`
	BrandColors     string         `gorm:"type:text" json:"-"` // JSON document, see themes.Branding
	NotifyEmail     string         `json:"notifyEmail,omitempty"`
	Tagline         Localized      `gorm:"type:text" json:"tagline"`
	LogoMediaID     *string        `gorm:"size:36" json:"logoMediaId"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Sections []Section `gorm:"foreignKey:RestaurantID" json:"-"`
}

// Section is the top level of a menu, e.g. "Food" or "Drinks"
type Section struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurantId"`
	Name         Localized `gorm:"type:text" json:"name"`
	Position     int       `gorm:"not null;default:0" json:"position"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Categories []Category `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
}

// Category groups items inside a section
type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurantId"`
	SectionID    uint      `gorm:"not null;index" json:"sectionId"`
	Name         Localized `gorm:"type:text" json:"name"`
	Description  Localized `gorm:"type:text" json:"description"`
	Position     int       `gorm:"not null;default:0" json:"position"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Items []Item `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// Item is a single dish or drink
type Item struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurantId"`
	CategoryID   uint      `gorm:"not null;index" json:"categoryId"`
	Name         Localized `gorm:"type:text" json:"name"`
	Description  Localized `gorm:"type:text" json:"description"`
	PriceCents   int       `gorm:"not null;default:0" json:"priceCents"`
	ImageMediaID *string   `gorm:"size:36;index" json:"imageMediaId"`
	Available    bool      `gorm:"not null;default:true" json:"available"`
	Position     int       `gorm:"not null;default:0" json:"position"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Media is an uploaded image stored as a database blob
type Media struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"` // uuid
	RestaurantID uint      `gorm:"not null;index" json:"restaurantId"`
	Filename     string    `json:"filename"`
	MimeType     string    `gorm:"not null" json:"mimeType"`
	Size         int64     `json:"size"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Data         []byte    `json:"-"`
	Thumbnail    []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Feedback is a guest submission from the storefront form
type Feedback struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurantId"`
	Rating       int       `gorm:"not null" json:"rating"`
	Name         string    `json:"name"`
	Message      string    `gorm:"type:text" json:"message"`
	Language     string    `json:"language"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Theme is the persisted background of a restaurant. There is at most one
// row per restaurant.
type Theme struct {
	ID                     uint      `gorm:"primaryKey" json:"-"`
	RestaurantID           uint      `gorm:"uniqueIndex;not null" json:"-"`
	AppBg                  string    `gorm:"not null;default:#400810" json:"appBg"`
	BackgroundImageMediaID *string   `gorm:"size:36" json:"backgroundImageMediaId"`
	CreatedAt              time.Time `json:"-"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// UISettings holds font sizes in pixels. There is at most one row per
// restaurant.
type UISettings struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	RestaurantID        uint      `gorm:"uniqueIndex;not null" json:"-"`
	SectionTitleSize    int       `gorm:"not null;default:22" json:"sectionTitleSize" validate:"min=10,max=40"`
	CategoryTitleSize   int       `gorm:"not null;default:18" json:"categoryTitleSize" validate:"min=10,max=40"`
	ItemTitleSize       int       `gorm:"not null;default:16" json:"itemTitleSize" validate:"min=10,max=40"`
	ItemDescriptionSize int       `gorm:"not null;default:14" json:"itemDescriptionSize" validate:"min=10,max=40"`
	ItemPriceSize       int       `gorm:"not null;default:16" json:"itemPriceSize" validate:"min=10,max=40"`
	HeaderLogoSize      int       `gorm:"not null;default:32" json:"headerLogoSize" validate:"min=16,max=80"`
	BottomNavLabelSize  int       `gorm:"not null;default:11" json:"bottomNavLabelSize" validate:"min=10,max=40"`
	WelcomeTitleSize    int       `gorm:"not null;default:28" json:"welcomeTitleSize" validate:"min=10,max=40"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// DefaultUISettings returns the settings used when a restaurant has none.
func DefaultUISettings(restaurantID uint) UISettings {
	return UISettings{
		RestaurantID:        restaurantID,
		SectionTitleSize:    22,
		CategoryTitleSize:   18,
		ItemTitleSize:       16,
		ItemDescriptionSize: 14,
		ItemPriceSize:       16,
		HeaderLogoSize:      32,
		BottomNavLabelSize:  11,
		WelcomeTitleSize:    28,
	}
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Restaurant{},
		&Section{},
		&Category{},
		&Item{},
		&Media{},
		&Feedback{},
		&Theme{},
		&UISettings{},
	}
}

// TableName overrides for consistent naming
func (Restaurant) TableName() string {
	return "restaurants"
}

func (Section) TableName() string {
	return "sections"
}

func (Category) TableName() string {
	return "categories"
}

func (Item) TableName() string {
	return "items"
}

func (Media) TableName() string {
	return "media"
}

func (Feedback) TableName() string {
	return "feedback"
}

func (Theme) TableName() string {
	return "themes"
}

func (UISettings) TableName() string {
	return "ui_settings"
}
