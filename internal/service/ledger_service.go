// Package service orchestrates the ledger pipeline behind the JSON API:
// shorthand parsing, batch application, party management and backup.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rkhatri/munim/internal/directory"
	"github.com/rkhatri/munim/internal/ledger"
	"github.com/rkhatri/munim/internal/metrics"
	"github.com/rkhatri/munim/internal/models"
	"github.com/rkhatri/munim/internal/shorthand"
	"github.com/rkhatri/munim/internal/storage"
)

// Line statuses reported per batch line.
const (
	StatusInserted         = "inserted"
	StatusSkippedDuplicate = "skipped_duplicate"
	StatusParseFailed      = "parse_failed"
)

// LineOutcome is the per-line result of a shorthand batch, parallel to
// the non-blank input lines.
type LineOutcome struct {
	Line      string                 `json:"line"`
	Status    string                 `json:"status"`
	Entry     *models.LedgerEntry    `json:"entry,omitempty"`
	Duplicate *models.DuplicateMatch `json:"duplicate,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// BatchResult is what a shorthand batch returns to the caller: ordered
// per-line outcomes plus summary counts and the final balance of the
// target party.
type BatchResult struct {
	Lines        []LineOutcome   `json:"lines"`
	Inserted     int             `json:"inserted"`
	Skipped      int             `json:"skipped"`
	Failed       int             `json:"failed"`
	FinalBalance decimal.Decimal `json:"final_balance"`
}

// LedgerService wires the parser, mutator and directory together.
type LedgerService struct {
	store   storage.Store
	dir     *directory.Directory
	parser  *shorthand.Parser
	mutator *ledger.Mutator
}

// NewLedgerService creates a LedgerService over the given storage backend.
func NewLedgerService(store storage.Store) *LedgerService {
	dir := directory.New(store)
	return &LedgerService{
		store:   store,
		dir:     dir,
		parser:  shorthand.New(dir),
		mutator: ledger.NewMutator(store),
	}
}

// Mutator exposes the underlying mutator so the process lifecycle can
// register its commit hook.
func (s *LedgerService) Mutator() *ledger.Mutator { return s.mutator }

// ApplyText parses a shorthand block and applies it as one atomic batch.
// Parse failures are collected per line and never abort the rest; the
// mutation itself is all-or-nothing.
func (s *LedgerService) ApplyText(ctx context.Context, partyID, text string, contextDate models.Date) (*BatchResult, error) {
	start := time.Now()
	if contextDate.IsZero() {
		contextDate = models.Today()
	}

	parsed := s.parser.ParseBlock(ctx, text, contextDate)

	var (
		entries []models.ParsedEntry
		indexes []int // position of each parsed entry in the line results
	)
	result := &BatchResult{Lines: make([]LineOutcome, len(parsed))}
	for i, lr := range parsed {
		if lr.Err != nil {
			result.Lines[i] = LineOutcome{Line: lr.Line, Status: StatusParseFailed, Error: lr.Err.Error()}
			result.Failed++
			continue
		}
		entries = append(entries, *lr.Entry)
		indexes = append(indexes, i)
		result.Lines[i] = LineOutcome{Line: lr.Line}
	}

	if len(entries) > 0 {
		outcome, err := s.mutator.ApplyBatch(ctx, partyID, entries)
		if err != nil {
			return nil, err
		}
		for j, res := range outcome.Results {
			i := indexes[j]
			if res.Inserted != nil {
				result.Lines[i].Status = StatusInserted
				result.Lines[i].Entry = res.Inserted
			} else {
				result.Lines[i].Status = StatusSkippedDuplicate
				result.Lines[i].Duplicate = res.Skipped
			}
		}
		result.Inserted = outcome.Inserted
		result.Skipped = outcome.Skipped
		result.FinalBalance = outcome.FinalBalance
	} else if partyID != "" {
		party, err := s.store.PartyByID(ctx, partyID)
		if err != nil {
			return nil, err
		}
		result.FinalBalance = party.Balance
	}

	metrics.EntriesInserted.Add(float64(result.Inserted))
	metrics.EntriesSkipped.Add(float64(result.Skipped))
	metrics.LinesFailed.Add(float64(result.Failed))
	metrics.BatchDuration.Observe(time.Since(start).Seconds())
	return result, nil
}

// AddLine parses a single shorthand line and inserts it. A duplicate is
// a DuplicateError unless force is set (the confirmed retry).
func (s *LedgerService) AddLine(ctx context.Context, partyID, line string, contextDate models.Date, force bool) (*models.LedgerEntry, error) {
	if contextDate.IsZero() {
		contextDate = models.Today()
	}
	parsed, err := s.parser.Parse(ctx, line, contextDate)
	if err != nil {
		metrics.LinesFailed.Inc()
		return nil, err
	}
	entry, err := s.insertParsed(ctx, partyID, parsed, force)
	if err != nil {
		return nil, err
	}
	metrics.EntriesInserted.Inc()
	return entry, nil
}

// AddPaymentLine parses a line from a party's payment screen
// ([D/M/YY] amount [GST] [ref]) and records the payment.
func (s *LedgerService) AddPaymentLine(ctx context.Context, partyID, line string, contextDate models.Date, force bool) (*models.LedgerEntry, error) {
	if contextDate.IsZero() {
		contextDate = models.Today()
	}
	parsed, err := s.parser.ParsePaymentLine(line, contextDate)
	if err != nil {
		metrics.LinesFailed.Inc()
		return nil, err
	}
	entry, err := s.insertParsed(ctx, partyID, parsed, force)
	if err != nil {
		return nil, err
	}
	metrics.EntriesInserted.Inc()
	return entry, nil
}

func (s *LedgerService) insertParsed(ctx context.Context, partyID string, parsed *models.ParsedEntry, force bool) (*models.LedgerEntry, error) {
	if force {
		return s.mutator.ForceAddEntry(ctx, partyID, parsed)
	}
	return s.mutator.AddEntry(ctx, partyID, parsed)
}

// EditEntry applies field changes; see ledger.Mutator.EditEntry.
func (s *LedgerService) EditEntry(ctx context.Context, id string, changes ledger.EntryChanges, confirmPermanent bool) (*models.LedgerEntry, error) {
	return s.mutator.EditEntry(ctx, id, changes, confirmPermanent)
}

// DeleteEntry removes an entry; permanent entries are refused.
func (s *LedgerService) DeleteEntry(ctx context.Context, id string) error {
	return s.mutator.DeleteEntry(ctx, id)
}

// Recalculate re-derives one party's running balances on demand.
func (s *LedgerService) Recalculate(ctx context.Context, partyID string) (decimal.Decimal, error) {
	balance, err := s.mutator.RecalculateParty(ctx, partyID)
	if err != nil {
		return decimal.Zero, err
	}
	slog.Info("ledger recalculated", "party_id", partyID, "balance", balance)
	return balance, nil
}
