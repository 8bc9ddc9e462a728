package models

import (
	"errors"
	"fmt"
)

// ErrPartyNotFound is returned when a party ID does not exist.
var ErrPartyNotFound = errors.New("party not found")

// ErrEntryNotFound is returned when an entry ID does not exist.
var ErrEntryNotFound = errors.New("entry not found")

// ErrPermanentEntry is returned when a delete or unguarded edit targets a
// protected opening-balance entry.
var ErrPermanentEntry = errors.New("entry is permanent")

// ParseError reports a malformed shorthand line. Parse errors are
// collected per line, never fatal to a batch.
type ParseError struct {
	Line string // the offending input line, trimmed
	Msg  string // what went wrong, naming the bad token where possible
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Line, e.Msg)
}

// UnknownPartyError reports a grammar form that mandates a known party
// name but encountered one that does not resolve.
type UnknownPartyError struct {
	Name string
}

func (e *UnknownPartyError) Error() string {
	return fmt.Sprintf("unknown party %q", e.Name)
}

// DuplicateReason identifies which matching rule flagged a candidate.
// More specific reasons take priority over less specific ones.
type DuplicateReason string

const (
	// ReasonExactMatch: same date, kind, amount (±0.01) and, when the
	// candidate carries one, the same bill number.
	ReasonExactMatch DuplicateReason = "EXACT_MATCH"

	// ReasonAmountDateParty: same party, date and amount (±0.01),
	// regardless of kind or bill number.
	ReasonAmountDateParty DuplicateReason = "AMOUNT_DATE_ACCOUNT"

	// ReasonRefNo: same party and same non-empty bill number, regardless
	// of date or amount.
	ReasonRefNo DuplicateReason = "BILL_NUMBER"
)

// DuplicateMatch pairs a candidate with the existing entry it collided
// with, so callers can render a side-by-side comparison.
type DuplicateMatch struct {
	Existing  LedgerEntry     `json:"existing"`
	Candidate ParsedEntry     `json:"candidate"`
	Reason    DuplicateReason `json:"reason"`
}

// DuplicateError is raised by the single-entry add path when a duplicate
// exists; the caller must explicitly confirm before retrying as a forced
// insert. Bulk import degrades the same condition to a silent skip.
type DuplicateError struct {
	Match *DuplicateMatch
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate entry (%s)", e.Match.Reason)
}
