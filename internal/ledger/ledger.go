// Package ledger owns account capital and accumulated profit. Capital moves
// only through deposits and withdrawals; profit moves only through the
// trading engine's exit distribution.
package ledger

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tradepool/internal/errs"
	"tradepool/internal/guard"
	"tradepool/internal/models"
	"tradepool/internal/money"
)

// Ledger provides account capital and profit mutations.
type Ledger struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLedger creates a new account ledger.
func NewLedger(logger *zap.Logger, db *gorm.DB) *Ledger {
	return &Ledger{db: db, logger: logger}
}

// Create registers a new account with its initial capital.
func (l *Ledger) Create(userID, name, email string, initialCapital float64) (*models.Account, error) {
	userID = strings.TrimSpace(userID)
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if userID == "" {
		return nil, errs.Validationf("account id is required")
	}
	if name == "" {
		return nil, errs.Validationf("account name is required")
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return nil, errs.Validationf("invalid email address %q", email)
	}
	if initialCapital < 0 {
		return nil, errs.Validationf("initial capital must not be negative")
	}

	var count int64
	if err := l.db.Model(&models.Account{}).
		Where("user_id = ? OR email = ?", userID, email).
		Count(&count).Error; err != nil {
		return nil, errs.Persistence("account lookup", err)
	}
	if count > 0 {
		return nil, errs.Conflictf("account with id %s or email %s already exists", userID, email)
	}

	account := models.Account{
		UserID:  userID,
		Name:    name,
		Email:   email,
		Capital: money.Round2(initialCapital),
		Profit:  0,
	}
	if err := l.db.Create(&account).Error; err != nil {
		return nil, errs.Persistence("account create", err)
	}

	l.logger.Info("Account created",
		zap.String("user_id", account.UserID),
		zap.Float64("capital", account.Capital))
	return &account, nil
}

// Get returns one account by id.
func (l *Ledger) Get(userID string) (*models.Account, error) {
	var account models.Account
	err := l.db.First(&account, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &errs.NotFoundError{Kind: "account", ID: userID}
	}
	if err != nil {
		return nil, errs.Persistence("account read", err)
	}
	return &account, nil
}

// List returns all accounts ordered by id.
func (l *Ledger) List() ([]models.Account, error) {
	var accounts []models.Account
	if err := l.db.Order("user_id").Find(&accounts).Error; err != nil {
		return nil, errs.Persistence("account list", err)
	}
	return accounts, nil
}

// AddCapital deposits amount into the account. The increment is applied
// against the stored balance, like AddProfit, so concurrent deposits cannot
// lose an update.
func (l *Ledger) AddCapital(userID string, amount float64) (*models.Account, error) {
	if amount <= 0 {
		return nil, errs.Validationf("deposit amount must be positive")
	}

	res := l.db.Model(&models.Account{}).
		Where("user_id = ?", userID).
		Update("capital", gorm.Expr("round(capital + ?, 2)", amount))
	if res.Error != nil {
		return nil, errs.Persistence("capital update", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &errs.NotFoundError{Kind: "account", ID: userID}
	}

	account, err := l.Get(userID)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Capital added",
		zap.String("user_id", userID),
		zap.Float64("amount", amount),
		zap.Float64("capital", account.Capital))
	return account, nil
}

// WithdrawCapital removes amount from the account. Capital never goes
// negative: the decrement is conditional on the stored balance covering the
// amount, so two concurrent withdrawals cannot both pass the limit check.
func (l *Ledger) WithdrawCapital(userID string, amount float64) (*models.Account, error) {
	if amount <= 0 {
		return nil, errs.Validationf("withdrawal amount must be positive")
	}

	account, err := l.Get(userID)
	if err != nil {
		return nil, err
	}

	res := l.db.Model(&models.Account{}).
		Where("user_id = ? AND capital >= ?", userID, amount).
		Update("capital", gorm.Expr("round(capital - ?, 2)", amount))
	if res.Error != nil {
		return nil, errs.Persistence("capital update", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errs.Validationf("withdrawal of %.2f exceeds capital %.2f for account %s",
			amount, account.Capital, userID)
	}

	account, err = l.Get(userID)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Capital withdrawn",
		zap.String("user_id", userID),
		zap.Float64("amount", amount),
		zap.Float64("capital", account.Capital))
	return account, nil
}

// AddProfit adds delta (which may be negative) to the account's accumulated
// profit on the given transaction handle. It is called only by the trading
// engine's exit distribution so the update joins the exit's transaction.
func (l *Ledger) AddProfit(tx *gorm.DB, userID string, delta float64) error {
	res := tx.Model(&models.Account{}).
		Where("user_id = ?", userID).
		Update("profit", gorm.Expr("round(profit + ?, 2)", delta))
	if res.Error != nil {
		return errs.Persistence("profit update", res.Error)
	}
	if res.RowsAffected == 0 {
		return &errs.NotFoundError{Kind: "account", ID: userID}
	}
	return nil
}

// Delete removes an account. The integrity guard rejects the deletion while
// any trade or history record still references the account; check and delete
// share one transaction so a trade opened in between cannot slip past the
// guard.
func (l *Ledger) Delete(userID string) error {
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var account models.Account
		err := tx.First(&account, "user_id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &errs.NotFoundError{Kind: "account", ID: userID}
		}
		if err != nil {
			return errs.Persistence("account read", err)
		}
		if err := guard.CanDeleteAccount(tx, userID); err != nil {
			return err
		}
		if err := tx.Delete(&models.Account{}, "user_id = ?", userID).Error; err != nil {
			return errs.Persistence("account delete", err)
		}
		return nil
	})
	if err != nil {
		return errs.Persistence("account delete", err)
	}

	l.logger.Info("Account deleted", zap.String("user_id", userID))
	return nil
}
