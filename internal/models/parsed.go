package models

import "github.com/shopspring/decimal"

// PaymentMode is how a day-book sale was settled.
type PaymentMode string

const (
	ModeCash    PaymentMode = "cash"
	ModeDigital PaymentMode = "digital"
	ModeCredit  PaymentMode = "credit"
)

// ParsedEntry is the typed result of parsing one line of shorthand input.
// It carries everything the mutator needs to build a LedgerEntry, plus
// parse-time context (the raw party name, whether it resolved) that the
// caller may surface for manual resolution.
type ParsedEntry struct {
	// Kind is the entry classification the grammar form produced.
	Kind EntryKind `json:"kind"`

	// PartyName is the raw party name as written, for bill, payment and
	// credit-sale forms.
	PartyName string `json:"party_name,omitempty"`

	// PartyID is the resolved party, when PartyName matched the directory.
	PartyID string `json:"party_id,omitempty"`

	// IsValidParty reports whether PartyName resolved. Bill forms accept
	// unknown names (flagged false for manual resolution); payment and
	// credit-sale forms reject them at parse time.
	IsValidParty bool `json:"is_valid_party"`

	// Date is the entry date: parsed from the line when a date token is
	// present, otherwise the caller-supplied context date.
	Date Date `json:"date"`

	// Amount is the positive entry amount.
	Amount decimal.Decimal `json:"amount"`

	// HasGST is set when the literal "GST" appears anywhere in the line.
	HasGST bool `json:"has_gst"`

	// RefNo is the bill number (bill forms) or payment reference.
	RefNo string `json:"ref_no,omitempty"`

	// Category is the expense category for expense entries.
	Category string `json:"category,omitempty"`

	// Description is derived free text ("GR: 302", "Ramesh sal", ...).
	Description string `json:"description,omitempty"`

	// SaleNumber is the serial from a numbered-sale line ("7. 21506").
	SaleNumber int `json:"sale_number,omitempty"`

	// Mode is the payment mode for sale entries.
	Mode PaymentMode `json:"mode,omitempty"`

	// Note is trailing free text after a sale's "net" marker.
	Note string `json:"note,omitempty"`
}
