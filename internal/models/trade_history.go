package models

import "time"

// TradeHistory is an immutable record of one exit action (full or partial).
// EntryPrice is the trade's cost basis at exit time; Accounts is a snapshot
// of the linked accounts when the exit was applied. Rows are appended once
// per exit and never amended.
type TradeHistory struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TradeID    string    `gorm:"not null;index" json:"trade_id"`
	Symbol     string    `gorm:"not null" json:"symbol"`
	ExitQty    int       `gorm:"not null" json:"exit_qty"`
	EntryPrice float64   `gorm:"not null" json:"entry_price"`
	ExitPrice  float64   `gorm:"not null" json:"exit_price"`
	NetPnL     float64   `gorm:"not null" json:"net_pnl"`
	Date       time.Time `gorm:"not null" json:"date"`
	Accounts   []string  `gorm:"serializer:json;not null" json:"accounts"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName keeps the historical table name used by earlier deployments.
func (TradeHistory) TableName() string {
	return "trade_history"
}
