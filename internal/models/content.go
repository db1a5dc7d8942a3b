package models

import "time"

// BundleUnlimited is the hardcoded all-access bundle sold at a fixed price.
const BundleUnlimited = "PACKAGE_UNLIMITED"

// ContentItem is a paid resource in the content library.
type ContentItem struct {
	ID          int     `gorm:"primaryKey" json:"id"`
	Title       string  `gorm:"not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	SubjectID   int     `gorm:"index" json:"subject_id"`
	Subject     Subject `gorm:"foreignKey:SubjectID" json:"subject"`
	UploaderID  int     `json:"uploader_id"`

	PriceCents int    `gorm:"not null" json:"price_cents"`
	Currency   string `gorm:"default:usd" json:"currency"`

	FilePath      string `json:"-"` // content_files/...
	ThumbnailPath string `json:"thumbnail_path"` // content_thumbnails/...

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Purchase grants a user access to one content item, or to everything when
// ContentItemID is nil and Bundle is set.
type Purchase struct {
	ID            int         `gorm:"primaryKey" json:"id"`
	UserID        int         `gorm:"uniqueIndex:idx_user_purchase;not null" json:"user_id"`
	ContentItemID *int        `gorm:"uniqueIndex:idx_user_purchase" json:"content_item_id,omitempty"`
	ContentItem   ContentItem `gorm:"foreignKey:ContentItemID" json:"content_item"`
	Bundle        string      `json:"bundle,omitempty"`

	Provider    string `gorm:"not null;uniqueIndex:idx_provider_ref" json:"provider"` // "stripe" or "razorpay"
	ProviderRef string `gorm:"uniqueIndex:idx_provider_ref" json:"provider_ref"`     // consumed once per provider
	Receipt     string `json:"receipt"`
	AmountCents int    `json:"amount_cents"`
	Currency    string `json:"currency"`

	CreatedAt time.Time `json:"created_at"`
}
