package models

import "time"

// Account represents a capital-contributing account in the pool.
// Capital is never consumed by trades; trades only move Profit.
type Account struct {
	UserID    string    `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Capital   float64   `gorm:"not null" json:"capital"`
	Profit    float64   `gorm:"not null;default:0" json:"profit"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
