package trading

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tradepool/internal/errs"
	"tradepool/internal/guard"
	"tradepool/internal/ledger"
	"tradepool/internal/models"
	"tradepool/internal/money"
)

// Manager owns trade state transitions: Active on open, Active on
// add-position, Active or Closed on exit depending on the remaining
// quantity, and hard deletion from either state behind a confirmation
// phrase. All writes for one exit happen in a single transaction.
type Manager struct {
	db     *gorm.DB
	logger *zap.Logger
	ledger *ledger.Ledger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a new trade lifecycle manager.
func NewManager(logger *zap.Logger, db *gorm.DB, l *ledger.Ledger) *Manager {
	return &Manager{
		db:     db,
		logger: logger,
		ledger: l,
		locks:  make(map[string]*sync.Mutex),
	}
}

// tradeLock returns the mutex serializing mutations of one trade, so two
// concurrent exits cannot both read the same pre-exit quantity.
func (m *Manager) tradeLock(tradeID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[tradeID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[tradeID] = lock
	}
	return lock
}

// OpenParams are the inputs for creating a new trade.
type OpenParams struct {
	Symbol   string
	Quantity int
	Price    float64
	Fees     float64
	Strategy string
	Date     time.Time
	Accounts []string
}

// Open creates a new Active trade with a single fill. The linked account
// set is fixed for the life of the trade.
func (m *Manager) Open(p OpenParams) (*models.Trade, error) {
	symbol := strings.ToUpper(strings.TrimSpace(p.Symbol))
	strategy := strings.TrimSpace(p.Strategy)

	if symbol == "" {
		return nil, errs.Validationf("symbol is required")
	}
	if strategy == "" {
		return nil, errs.Validationf("strategy name is required")
	}
	if p.Quantity <= 0 {
		return nil, errs.Validationf("quantity must be positive")
	}
	if p.Price <= 0 {
		return nil, errs.Validationf("price must be positive")
	}
	if p.Fees < 0 {
		return nil, errs.Validationf("fees must not be negative")
	}
	if len(p.Accounts) == 0 {
		return nil, errs.Validationf("at least one account must be linked")
	}

	// The linked accounts form an ordered set. A duplicate would double-count
	// its capital in the share total and collect one payout per occurrence.
	seen := make(map[string]struct{}, len(p.Accounts))
	for _, id := range p.Accounts {
		if _, dup := seen[id]; dup {
			return nil, errs.Validationf("account %s is linked more than once", id)
		}
		seen[id] = struct{}{}
		if _, err := m.ledger.Get(id); err != nil {
			return nil, err
		}
	}

	date := p.Date
	if date.IsZero() {
		date = time.Now()
	}

	trade := models.Trade{
		ID:        generateTradeID(),
		Symbol:    symbol,
		Quantity:  p.Quantity,
		AvgPrice:  money.Round2(p.Price),
		TotalFees: money.Round2(p.Fees),
		Strategy:  strategy,
		Date:      date,
		Accounts:  p.Accounts,
		Status:    models.StatusActive,
		Fills:     []models.Fill{{Quantity: p.Quantity, Price: money.Round2(p.Price)}},
	}
	if err := m.db.Create(&trade).Error; err != nil {
		return nil, errs.Persistence("trade create", err)
	}

	m.logger.Info("Trade opened",
		zap.String("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.Int("quantity", trade.Quantity),
		zap.Float64("avg_price", trade.AvgPrice),
		zap.Strings("accounts", trade.Accounts))
	return &trade, nil
}

// Get returns one trade by id.
func (m *Manager) Get(tradeID string) (*models.Trade, error) {
	return m.getTrade(m.db, tradeID)
}

// List returns all trades, newest first.
func (m *Manager) List() ([]models.Trade, error) {
	var trades []models.Trade
	if err := m.db.Order("created_at desc").Find(&trades).Error; err != nil {
		return nil, errs.Persistence("trade list", err)
	}
	return trades, nil
}

func (m *Manager) getTrade(tx *gorm.DB, tradeID string) (*models.Trade, error) {
	var trade models.Trade
	err := tx.First(&trade, "id = ?", tradeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errs.NotFoundError{Kind: "trade", ID: tradeID}
	}
	if err != nil {
		return nil, errs.Persistence("trade read", err)
	}
	return &trade, nil
}

// AddPosition blends an additional fill into an Active trade and appends it
// to the position log.
func (m *Manager) AddPosition(tradeID string, qty int, price, fees float64) (*models.Trade, error) {
	if qty <= 0 {
		return nil, errs.Validationf("quantity must be positive")
	}
	if price <= 0 {
		return nil, errs.Validationf("price must be positive")
	}
	if fees < 0 {
		return nil, errs.Validationf("fees must not be negative")
	}

	lock := m.tradeLock(tradeID)
	lock.Lock()
	defer lock.Unlock()

	var updated *models.Trade
	err := m.db.Transaction(func(tx *gorm.DB) error {
		trade, err := m.getTrade(tx, tradeID)
		if err != nil {
			return err
		}
		if !trade.Active() {
			return &errs.InvalidStateError{TradeID: tradeID, Status: trade.Status, Op: "add position to"}
		}

		newQty, avgPrice, totalFees := Average(trade.Quantity, trade.AvgPrice, qty, price, trade.TotalFees, fees)
		trade.Quantity = newQty
		trade.AvgPrice = avgPrice
		trade.TotalFees = totalFees
		trade.Fills = append(trade.Fills, models.Fill{Quantity: qty, Price: money.Round2(price)})

		if err := tx.Save(trade).Error; err != nil {
			return errs.Persistence("trade update", err)
		}
		updated = trade
		return nil
	})
	if err != nil {
		return nil, errs.Persistence("add position", err)
	}

	m.logger.Info("Position added",
		zap.String("trade_id", tradeID),
		zap.Int("added_quantity", qty),
		zap.Int("quantity", updated.Quantity),
		zap.Float64("avg_price", updated.AvgPrice))
	return updated, nil
}

// ExitPreview is the result of computing an exit: gross and net P&L, the
// capital share of each linked account, and the rounded per-account amounts
// that distribution would credit.
type ExitPreview struct {
	TradeID      string             `json:"trade_id"`
	Symbol       string             `json:"symbol"`
	ExitQty      int                `json:"exit_qty"`
	EntryPrice   float64            `json:"entry_price"`
	ExitPrice    float64            `json:"exit_price"`
	GrossPnL     float64            `json:"gross_pnl"`
	NetPnL       float64            `json:"net_pnl"`
	Shares       map[string]float64 `json:"shares"`
	Distribution map[string]float64 `json:"distribution"`
}

func (m *Manager) previewExit(tx *gorm.DB, trade *models.Trade, exitQty int, exitPrice, exitFees float64) (*ExitPreview, error) {
	if exitQty < 1 || exitQty > trade.Quantity {
		return nil, errs.Validationf("exit quantity %d out of range 1..%d for trade %s",
			exitQty, trade.Quantity, trade.ID)
	}
	if exitPrice <= 0 {
		return nil, errs.Validationf("exit price must be positive")
	}
	if exitFees < 0 {
		return nil, errs.Validationf("exit fees must not be negative")
	}

	// Shares use the current capital balances, read in the same transaction
	// as the rest of the exit so a concurrent deposit cannot split them.
	capital := make(map[string]float64, len(trade.Accounts))
	for _, id := range trade.Accounts {
		var account models.Account
		err := tx.First(&account, "user_id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &errs.NotFoundError{Kind: "account", ID: id}
		}
		if err != nil {
			return nil, errs.Persistence("account read", err)
		}
		capital[id] = account.Capital
	}
	shares := Shares(trade.Accounts, capital)

	grossPnL := decimal.NewFromFloat(exitPrice).Sub(decimal.NewFromFloat(trade.AvgPrice)).
		Mul(decimal.NewFromInt(int64(exitQty))).Round(2).InexactFloat64()
	netPnL := money.Round2(grossPnL - exitFees)

	distribution := make(map[string]float64, len(shares))
	for id, share := range shares {
		distribution[id] = money.Mul(netPnL, share)
	}

	return &ExitPreview{
		TradeID:      trade.ID,
		Symbol:       trade.Symbol,
		ExitQty:      exitQty,
		EntryPrice:   trade.AvgPrice,
		ExitPrice:    money.Round2(exitPrice),
		GrossPnL:     grossPnL,
		NetPnL:       netPnL,
		Shares:       shares,
		Distribution: distribution,
	}, nil
}

// ComputeExit previews the P&L and profit distribution of an exit without
// mutating anything.
func (m *Manager) ComputeExit(tradeID string, exitQty int, exitPrice, exitFees float64) (*ExitPreview, error) {
	trade, err := m.getTrade(m.db, tradeID)
	if err != nil {
		return nil, err
	}
	if !trade.Active() {
		return nil, &errs.InvalidStateError{TradeID: tradeID, Status: trade.Status, Op: "exit"}
	}
	return m.previewExit(m.db, trade, exitQty, exitPrice, exitFees)
}

// ApplyExit executes an exit: it re-derives the same P&L and shares as
// ComputeExit inside one transaction, credits each linked account's profit,
// appends one immutable history record, and either closes the trade (full
// exit, quantity kept at its pre-exit value for audit) or decrements the
// remaining quantity (partial exit).
func (m *Manager) ApplyExit(tradeID string, exitQty int, exitPrice, exitFees float64, date time.Time) (*ExitPreview, error) {
	lock := m.tradeLock(tradeID)
	lock.Lock()
	defer lock.Unlock()

	if date.IsZero() {
		date = time.Now()
	}

	var preview *ExitPreview
	var closed bool
	err := m.db.Transaction(func(tx *gorm.DB) error {
		trade, err := m.getTrade(tx, tradeID)
		if err != nil {
			return err
		}
		if !trade.Active() {
			return &errs.InvalidStateError{TradeID: tradeID, Status: trade.Status, Op: "exit"}
		}

		preview, err = m.previewExit(tx, trade, exitQty, exitPrice, exitFees)
		if err != nil {
			return err
		}

		for _, id := range trade.Accounts {
			if err := m.ledger.AddProfit(tx, id, preview.Distribution[id]); err != nil {
				return err
			}
		}

		record := models.TradeHistory{
			TradeID:    trade.ID,
			Symbol:     trade.Symbol,
			ExitQty:    exitQty,
			EntryPrice: trade.AvgPrice,
			ExitPrice:  preview.ExitPrice,
			NetPnL:     preview.NetPnL,
			Date:       date,
			Accounts:   trade.Accounts,
		}
		if err := tx.Create(&record).Error; err != nil {
			return errs.Persistence("history append", err)
		}

		closed = exitQty == trade.Quantity
		if closed {
			if err := tx.Model(trade).Update("status", models.StatusClosed).Error; err != nil {
				return errs.Persistence("trade close", err)
			}
		} else {
			if err := tx.Model(trade).Update("quantity", trade.Quantity-exitQty).Error; err != nil {
				return errs.Persistence("trade update", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errs.Persistence("apply exit", err)
	}

	m.logger.Info("Exit applied",
		zap.String("trade_id", tradeID),
		zap.Int("exit_qty", exitQty),
		zap.Float64("net_pnl", preview.NetPnL),
		zap.Bool("closed", closed))
	return preview, nil
}

// Delete permanently removes a trade and all its history records. The
// confirmation phrase must match guard.DeletionPhrase exactly. Profit
// already distributed to accounts is deliberately not reversed: deletion is
// a data-hygiene operation, not an undo.
func (m *Manager) Delete(tradeID, confirm string) error {
	if err := guard.ConfirmTradeDeletion(tradeID, confirm); err != nil {
		return err
	}

	lock := m.tradeLock(tradeID)
	lock.Lock()
	defer lock.Unlock()

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if _, err := m.getTrade(tx, tradeID); err != nil {
			return err
		}
		if err := tx.Delete(&models.TradeHistory{}, "trade_id = ?", tradeID).Error; err != nil {
			return errs.Persistence("history delete", err)
		}
		if err := tx.Delete(&models.Trade{}, "id = ?", tradeID).Error; err != nil {
			return errs.Persistence("trade delete", err)
		}
		return nil
	})
	if err != nil {
		return errs.Persistence("trade delete", err)
	}

	m.logger.Info("Trade deleted", zap.String("trade_id", tradeID))
	return nil
}

func generateTradeID() string {
	return "TRD-" + strings.ToUpper(uuid.NewString()[:8])
}
