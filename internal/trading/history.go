package trading

import (
	"go.uber.org/zap"

	"tradepool/internal/errs"
	"tradepool/internal/guard"
	"tradepool/internal/models"
	"tradepool/internal/money"
)

// History returns all exit records, newest first.
func (m *Manager) History() ([]models.TradeHistory, error) {
	var records []models.TradeHistory
	if err := m.db.Order("id desc").Find(&records).Error; err != nil {
		return nil, errs.Persistence("history list", err)
	}
	return records, nil
}

// HistorySummary aggregates the exit records of all trades.
type HistorySummary struct {
	TotalExits int     `json:"total_exits"`
	Profitable int     `json:"profitable"`
	Losing     int     `json:"losing"`
	TotalPnL   float64 `json:"total_pnl"`
	MaxProfit  float64 `json:"max_profit"`
	MaxLoss    float64 `json:"max_loss"`
}

// Summary computes aggregate statistics over the full trade history.
func (m *Manager) Summary() (*HistorySummary, error) {
	records, err := m.History()
	if err != nil {
		return nil, err
	}

	s := &HistorySummary{TotalExits: len(records)}
	for i, r := range records {
		s.TotalPnL += r.NetPnL
		if r.NetPnL > 0 {
			s.Profitable++
		} else if r.NetPnL < 0 {
			s.Losing++
		}
		if i == 0 || r.NetPnL > s.MaxProfit {
			s.MaxProfit = r.NetPnL
		}
		if i == 0 || r.NetPnL < s.MaxLoss {
			s.MaxLoss = r.NetPnL
		}
	}
	s.TotalPnL = money.Round2(s.TotalPnL)
	return s, nil
}

// PurgeHistory bulk-deletes every exit record behind the guard's bulk
// confirmation phrase. Trades and distributed profit are untouched.
func (m *Manager) PurgeHistory(confirm string) (int64, error) {
	if err := guard.ConfirmBulkPurge(confirm); err != nil {
		return 0, err
	}

	res := m.db.Where("1 = 1").Delete(&models.TradeHistory{})
	if res.Error != nil {
		return 0, errs.Persistence("history purge", res.Error)
	}

	m.logger.Info("Trade history purged", zap.Int64("deleted", res.RowsAffected))
	return res.RowsAffected, nil
}
