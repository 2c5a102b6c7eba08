// Package models contains the persisted domain types and the application error taxonomy.
package models

import "time"

// User is a registered account. Created on registration and never updated.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:9;uniqueIndex;not null;check:chk_users_username_length,length(username) >= 5 AND length(username) <= 9" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Name         string    `gorm:"type:text" json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName pins the table name used by the schema.
func (User) TableName() string {
	return "users"
}

// DisplayName is the name shown in page greetings.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
