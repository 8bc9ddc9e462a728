package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies a ledger entry by its effect on balances.
type EntryKind string

const (
	// KindBill increases the balance owed to a party.
	KindBill EntryKind = "bill"

	// KindPayment decreases the balance owed to a party. Payments are
	// recorded under CategoryPartyPayment so expense reports can tell
	// them apart from operating expenses.
	KindPayment EntryKind = "payment"

	// KindSale is a day-book sale with no party ledger effect.
	KindSale EntryKind = "sale"

	// KindExpense is a day-book operating expense with no party ledger effect.
	KindExpense EntryKind = "expense"
)

// IsValid reports whether k is a known entry kind.
func (k EntryKind) IsValid() bool {
	switch k {
	case KindBill, KindPayment, KindSale, KindExpense:
		return true
	}
	return false
}

// CategoryPartyPayment is the reserved expense category that marks a
// payment entry as a party payment.
const CategoryPartyPayment = "party-payment"

// gstDivisor converts a GST-inclusive amount to its base amount (3% GST).
var gstDivisor = decimal.NewFromFloat(1.03)

// LedgerEntry is a single dated row in a party's ledger or the day book.
type LedgerEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string `json:"id"`

	// PartyID is the owning party, or empty for day-book entries
	// (sales and general expenses).
	PartyID string `json:"party_id,omitempty"`

	// Date is the calendar date of the entry. No time component.
	Date Date `json:"date"`

	// Kind determines the signed effect of Amount on the running balance.
	Kind EntryKind `json:"kind"`

	// Amount is the entry amount. Always positive, currency scale.
	Amount decimal.Decimal `json:"amount"`

	// HasGST marks the amount as GST-inclusive. The base/GST split is
	// derived via BaseAmount and GSTAmount, never stored.
	HasGST bool `json:"has_gst"`

	// RefNo is the optional bill or reference number. For bills this is
	// the supplier's bill number; duplicate detection keys on it.
	RefNo string `json:"ref_no,omitempty"`

	// Category is the expense category for expense and payment entries
	// (payments always use CategoryPartyPayment).
	Category string `json:"category,omitempty"`

	// Description is optional free text ("GR: 302", "Ramesh sal", ...).
	Description string `json:"description,omitempty"`

	// Mode is how a sale was settled (cash, digital, credit). Empty for
	// non-sale kinds.
	Mode PaymentMode `json:"mode,omitempty"`

	// SaleNo is the serial from a numbered-sale line. Zero for non-sale kinds.
	SaleNo int `json:"sale_no,omitempty"`

	// RunningBalance is the cumulative party balance up to and including
	// this entry. Derived; rewritten in full by the recalculator.
	RunningBalance decimal.Decimal `json:"running_balance"`

	// IsPermanent protects the entry (typically an opening balance) from
	// deletion and from unguarded edits.
	IsPermanent bool `json:"is_permanent"`

	// Seq is the creation sequence assigned by the store on insert. It is
	// the tiebreak for same-day ordering: recalculation must be
	// reproducible even though IDs are randomly generated.
	Seq int64 `json:"seq"`

	// CreatedAt is when the entry was first recorded.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the entry last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// Signed returns the entry's effect on a party balance: +Amount for a
// bill, -Amount for a payment, zero for day-book kinds.
func (e *LedgerEntry) Signed() decimal.Decimal {
	switch e.Kind {
	case KindBill:
		return e.Amount
	case KindPayment:
		return e.Amount.Neg()
	}
	return decimal.Zero
}

// BaseAmount returns the pre-GST amount: round(amount / 1.03, 2) when the
// entry is GST-inclusive, the full amount otherwise.
func (e *LedgerEntry) BaseAmount() decimal.Decimal {
	if !e.HasGST {
		return e.Amount
	}
	return e.Amount.Div(gstDivisor).Round(2)
}

// GSTAmount returns the GST portion of the amount (amount - base).
func (e *LedgerEntry) GSTAmount() decimal.Decimal {
	return e.Amount.Sub(e.BaseAmount())
}
