package models

import "time"

// ShortURLGroup collects all short links owned by one user. At most one per user.
type ShortURLGroup struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    *uint          `gorm:"uniqueIndex" json:"user_id"`
	User      *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Pairs     []ShortURLPair `gorm:"foreignKey:ShortURLID" json:"pairs,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (ShortURLGroup) TableName() string {
	return "short_urls"
}

// ShortURLPair records one original URL and the short URL the provider issued for it.
type ShortURLPair struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OriginalURL string    `gorm:"not null" json:"original_url"`
	ShortURL    string    `gorm:"not null;index" json:"short_url"`
	ShortURLID  uint      `gorm:"not null;index" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ShortURLPair) TableName() string {
	return "short_url_pairs"
}
