// Package guard enforces deletion preconditions. Accounts may only be
// deleted when no trade or history row references them; trades may only be
// deleted with an exact confirmation phrase.
package guard

import (
	"gorm.io/gorm"

	"tradepool/internal/errs"
	"tradepool/internal/models"
)

// BulkPurgePhrase must be supplied verbatim to bulk-delete trade history.
const BulkPurgePhrase = "DELETE ALL"

// DeletionPhrase returns the phrase that must be supplied verbatim to delete
// the given trade. Embedding the trade ID prevents accidental scripted
// deletion with a reused token.
func DeletionPhrase(tradeID string) string {
	return "DELETE " + tradeID
}

// ConfirmTradeDeletion checks the confirmation phrase for a trade delete.
// Referential integrity is not checked: deleting a trade does not orphan
// accounts, and already-distributed profit stands.
func ConfirmTradeDeletion(tradeID, confirm string) error {
	if confirm != DeletionPhrase(tradeID) {
		return errs.Validationf("confirmation phrase does not match, type %q to delete trade %s",
			DeletionPhrase(tradeID), tradeID)
	}
	return nil
}

// ConfirmBulkPurge checks the confirmation phrase for a bulk history delete.
func ConfirmBulkPurge(confirm string) error {
	if confirm != BulkPurgePhrase {
		return errs.Validationf("confirmation phrase does not match, type %q to purge trade history",
			BulkPurgePhrase)
	}
	return nil
}

// CanDeleteAccount permits deletion only when no trade or trade history row
// links the account. The linked-account lists are stored as JSON, so the
// reference counts are taken by scanning rows rather than by SQL join.
func CanDeleteAccount(db *gorm.DB, userID string) error {
	var trades []models.Trade
	if err := db.Find(&trades).Error; err != nil {
		return errs.Persistence("account reference check", err)
	}
	tradeRefs := 0
	for i := range trades {
		if trades[i].Linked(userID) {
			tradeRefs++
		}
	}

	var history []models.TradeHistory
	if err := db.Find(&history).Error; err != nil {
		return errs.Persistence("account reference check", err)
	}
	historyRefs := 0
	for i := range history {
		for _, id := range history[i].Accounts {
			if id == userID {
				historyRefs++
				break
			}
		}
	}

	if tradeRefs > 0 || historyRefs > 0 {
		return errs.Conflictf("cannot delete account %s: %d trades and %d history records reference it, exit or delete those trades first",
			userID, tradeRefs, historyRefs)
	}
	return nil
}
