package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party represents a counterparty ledger (e.g., a manufacturer).
// Bills raise the balance owed to the party, payments lower it.
type Party struct {
	// ID is the unique identifier for the party (UUID format).
	ID string `json:"id"`

	// Name is the display name of the party. Unique across all parties;
	// shorthand input resolves party references against it.
	Name string `json:"name"`

	// CreditLimit is the maximum balance the business allows to accrue
	// with this party. Zero means no limit. Informational only; the
	// mutator does not reject entries that exceed it.
	CreditLimit decimal.Decimal `json:"credit_limit"`

	// Balance is the cached current balance, always equal to the running
	// balance of the chronologically last ledger entry. Rewritten by the
	// recalculator after every mutation; never a source of truth.
	Balance decimal.Decimal `json:"balance"`

	// CreatedAt is when the party was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the party record last changed.
	UpdatedAt time.Time `json:"updated_at"`
}
