package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/rkhatri/munim/internal/models"
)

// EntryResult is the outcome of one entry in a bulk batch. Exactly one
// of Inserted and Skipped is set.
type EntryResult struct {
	// Inserted is the stored entry, with ID, seq and running balance.
	Inserted *models.LedgerEntry `json:"inserted,omitempty"`

	// Skipped carries the duplicate comparison when the entry already
	// existed. In bulk import a duplicate is a skip, not an error, so
	// re-importing the same block is idempotent.
	Skipped *models.DuplicateMatch `json:"skipped,omitempty"`
}

// BatchOutcome reports a bulk application: per-entry results parallel to
// the input order, counters, and the target party's final balance.
type BatchOutcome struct {
	Results      []EntryResult   `json:"results"`
	Inserted     int             `json:"inserted"`
	Skipped      int             `json:"skipped"`
	FinalBalance decimal.Decimal `json:"final_balance"`
}
