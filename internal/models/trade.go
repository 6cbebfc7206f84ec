package models

import "time"

// Trade statuses. A closed trade keeps its last pre-exit quantity for audit;
// Status is the authoritative signal that no further fills or exits are allowed.
const (
	StatusActive = "Active"
	StatusClosed = "Closed"
)

// Fill is one quantity@price entry in a trade's position log.
type Fill struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Trade represents a jointly funded position. AvgPrice is a blended cost
// basis recomputed on every fill, never a market quote. Accounts is the
// ordered set of linked account IDs, fixed at creation.
type Trade struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Symbol    string    `gorm:"not null;index" json:"symbol"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	AvgPrice  float64   `gorm:"not null" json:"avg_price"`
	TotalFees float64   `gorm:"not null;default:0" json:"total_fees"`
	Strategy  string    `gorm:"not null" json:"strategy"`
	Date      time.Time `gorm:"not null" json:"date"`
	Accounts  []string  `gorm:"serializer:json;not null" json:"accounts"`
	Status    string    `gorm:"not null;default:Active;index" json:"status"`
	Fills     []Fill    `gorm:"serializer:json" json:"fills"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Active reports whether the trade still accepts fills and exits.
func (t *Trade) Active() bool {
	return t.Status == StatusActive
}

// Linked reports whether the given account funds this trade.
func (t *Trade) Linked(userID string) bool {
	for _, id := range t.Accounts {
		if id == userID {
			return true
		}
	}
	return false
}
