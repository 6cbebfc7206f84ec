package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tradepool/internal/database"
	"tradepool/internal/errs"
	"tradepool/internal/models"
)

func setupTest(t *testing.T) (*gorm.DB, *Ledger) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, database.AutoMigrate(db))

	return db, NewLedger(zap.NewNop(), db)
}

func TestCreate(t *testing.T) {
	_, l := setupTest(t)

	account, err := l.Create("ACC1", "Asha", "asha@example.com", 2500.505)

	assert.NoError(t, err)
	assert.Equal(t, "ACC1", account.UserID)
	assert.Equal(t, 2500.51, account.Capital) // rounded half away from zero
	assert.Equal(t, 0.00, account.Profit)
}

func TestCreate_DuplicateIDOrEmail(t *testing.T) {
	_, l := setupTest(t)
	_, err := l.Create("ACC1", "Asha", "asha@example.com", 100)
	assert.NoError(t, err)

	var conflict *errs.ConflictError

	_, err = l.Create("ACC1", "Other", "other@example.com", 100)
	assert.ErrorAs(t, err, &conflict)

	_, err = l.Create("ACC2", "Other", "asha@example.com", 100)
	assert.ErrorAs(t, err, &conflict)
}

func TestCreate_Validation(t *testing.T) {
	_, l := setupTest(t)

	var validation *errs.ValidationError

	_, err := l.Create("", "Asha", "asha@example.com", 100)
	assert.ErrorAs(t, err, &validation)

	_, err = l.Create("ACC1", "", "asha@example.com", 100)
	assert.ErrorAs(t, err, &validation)

	_, err = l.Create("ACC1", "Asha", "not-an-email", 100)
	assert.ErrorAs(t, err, &validation)

	_, err = l.Create("ACC1", "Asha", "asha@example.com", -5)
	assert.ErrorAs(t, err, &validation)
}

func TestAddCapital(t *testing.T) {
	_, l := setupTest(t)
	_, err := l.Create("ACC1", "Asha", "asha@example.com", 100.00)
	assert.NoError(t, err)

	account, err := l.AddCapital("ACC1", 49.99)

	assert.NoError(t, err)
	assert.Equal(t, 149.99, account.Capital)

	// Deposits are additive increments against the stored balance, so
	// repeated calls accumulate without one overwriting the other.
	_, err = l.AddCapital("ACC1", 0.01)
	assert.NoError(t, err)
	account, err = l.Get("ACC1")
	assert.NoError(t, err)
	assert.Equal(t, 150.00, account.Capital)

	var validation *errs.ValidationError
	_, err = l.AddCapital("ACC1", 0)
	assert.ErrorAs(t, err, &validation)

	var notFound *errs.NotFoundError
	_, err = l.AddCapital("GHOST", 10)
	assert.ErrorAs(t, err, &notFound)
}

func TestWithdrawCapital(t *testing.T) {
	_, l := setupTest(t)
	_, err := l.Create("ACC1", "Asha", "asha@example.com", 100.00)
	assert.NoError(t, err)

	account, err := l.WithdrawCapital("ACC1", 40.00)
	assert.NoError(t, err)
	assert.Equal(t, 60.00, account.Capital)

	// Capital never goes negative: the decrement only applies when the
	// stored balance covers the amount, and a rejected withdrawal leaves
	// the stored balance untouched.
	var validation *errs.ValidationError
	_, err = l.WithdrawCapital("ACC1", 60.01)
	assert.ErrorAs(t, err, &validation)
	account, err = l.Get("ACC1")
	assert.NoError(t, err)
	assert.Equal(t, 60.00, account.Capital)

	account, err = l.WithdrawCapital("ACC1", 60.00)
	assert.NoError(t, err)
	assert.Equal(t, 0.00, account.Capital)
}

func TestAddProfit(t *testing.T) {
	db, l := setupTest(t)
	_, err := l.Create("ACC1", "Asha", "asha@example.com", 100.00)
	assert.NoError(t, err)

	assert.NoError(t, l.AddProfit(db, "ACC1", 25.50))
	assert.NoError(t, l.AddProfit(db, "ACC1", -40.00))

	account, err := l.Get("ACC1")
	assert.NoError(t, err)
	assert.Equal(t, -14.50, account.Profit)

	var notFound *errs.NotFoundError
	assert.ErrorAs(t, l.AddProfit(db, "GHOST", 1.00), &notFound)
}

func TestDelete_Unreferenced(t *testing.T) {
	_, l := setupTest(t)
	_, err := l.Create("ACC1", "Asha", "asha@example.com", 100.00)
	assert.NoError(t, err)

	assert.NoError(t, l.Delete("ACC1"))

	var notFound *errs.NotFoundError
	_, err = l.Get("ACC1")
	assert.ErrorAs(t, err, &notFound)
}

func TestDelete_ReferencedByTrade(t *testing.T) {
	db, l := setupTest(t)
	_, err := l.Create("ACC1", "Asha", "asha@example.com", 100.00)
	assert.NoError(t, err)

	trade := models.Trade{
		ID: "TRD-TEST0001", Symbol: "NIFTY", Quantity: 5, AvgPrice: 10,
		Strategy: "swing", Accounts: []string{"ACC1"}, Status: models.StatusActive,
	}
	assert.NoError(t, db.Create(&trade).Error)

	var conflict *errs.ConflictError
	assert.ErrorAs(t, l.Delete("ACC1"), &conflict)

	// Still present after the rejected delete.
	_, err = l.Get("ACC1")
	assert.NoError(t, err)
}

func TestDelete_ReferencedByHistory(t *testing.T) {
	db, l := setupTest(t)
	_, err := l.Create("ACC1", "Asha", "asha@example.com", 100.00)
	assert.NoError(t, err)

	record := models.TradeHistory{
		TradeID: "TRD-GONE0001", Symbol: "NIFTY", ExitQty: 5,
		EntryPrice: 10, ExitPrice: 12, NetPnL: 10, Accounts: []string{"ACC1"},
	}
	assert.NoError(t, db.Create(&record).Error)

	var conflict *errs.ConflictError
	assert.ErrorAs(t, l.Delete("ACC1"), &conflict)
}

func TestDelete_UnknownAccount(t *testing.T) {
	_, l := setupTest(t)

	var notFound *errs.NotFoundError
	assert.ErrorAs(t, l.Delete("GHOST"), &notFound)
}
