// Package ledger implements the transaction pipeline: duplicate
// detection, the atomic multi-row mutation protocol, and deterministic
// balance recalculation.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/rkhatri/munim/internal/models"
)

// amountTolerance is the absolute tolerance for amount comparison in
// duplicate detection.
var amountTolerance = decimal.New(1, -2) // 0.01

// FindDuplicate checks a candidate against one party's existing entries
// (the day book, when the candidate carries no party). Three matching
// rules run in order, first hit wins; more specific reasons take priority
// over less specific ones. It never mutates state; a nil return means the
// candidate is safe to insert.
func FindDuplicate(existing []models.LedgerEntry, candidate *models.ParsedEntry) *models.DuplicateMatch {
	// Rule 1: same date, kind, amount and (when the candidate has one)
	// the same bill number.
	for i := range existing {
		e := &existing[i]
		if e.Date != candidate.Date || e.Kind != candidate.Kind {
			continue
		}
		if !amountsClose(e.Amount, candidate.Amount) {
			continue
		}
		if candidate.RefNo != "" && e.RefNo != candidate.RefNo {
			continue
		}
		return &models.DuplicateMatch{Existing: *e, Candidate: *candidate, Reason: models.ReasonExactMatch}
	}

	// Rule 2: same date and amount within this party, regardless of kind
	// or bill number.
	for i := range existing {
		e := &existing[i]
		if e.Date == candidate.Date && amountsClose(e.Amount, candidate.Amount) {
			return &models.DuplicateMatch{Existing: *e, Candidate: *candidate, Reason: models.ReasonAmountDateParty}
		}
	}

	// Rule 3: same non-empty bill number within this party.
	if candidate.RefNo != "" {
		for i := range existing {
			e := &existing[i]
			if e.RefNo == candidate.RefNo {
				return &models.DuplicateMatch{Existing: *e, Candidate: *candidate, Reason: models.ReasonRefNo}
			}
		}
	}

	return nil
}

func amountsClose(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(amountTolerance)
}
