package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rkhatri/munim/internal/storage"
)

// Recalculate recomputes the running balance of every entry in a party's
// ledger from scratch and writes the party's cached balance, all inside
// the caller's transaction.
//
// Entries fold in (date, seq) order: seq is the creation sequence, so
// same-day entries replay in the order they were recorded and the result
// is reproducible regardless of insertion, edit or delete history. The
// derived column is rewritten in full, which makes this safe to call
// on demand as a repair tool. No other code path may write a party's
// balance, except the guarded permanent-entry edit which is itself
// followed by a call here.
func Recalculate(tx storage.Tx, partyID string) (decimal.Decimal, error) {
	if partyID == "" {
		return decimal.Zero, fmt.Errorf("recalculate: day-book entries carry no running balance")
	}

	entries, err := tx.EntriesByParty(partyID)
	if err != nil {
		return decimal.Zero, err
	}

	running := decimal.Zero
	for i := range entries {
		running = running.Add(entries[i].Signed())
		entries[i].RunningBalance = running
		if err := tx.UpdateEntry(&entries[i]); err != nil {
			return decimal.Zero, err
		}
	}

	party, err := tx.PartyByID(partyID)
	if err != nil {
		return decimal.Zero, err
	}
	party.Balance = running
	if err := tx.UpdateParty(party); err != nil {
		return decimal.Zero, err
	}
	return running, nil
}
