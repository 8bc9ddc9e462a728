package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rkhatri/munim/internal/models"
	"github.com/rkhatri/munim/internal/storage"
)

// Mutator applies entries to ledgers. Every top-level operation is one
// all-or-nothing unit of work: mutation and recalculation commit
// together or not at all, so no observer sees updated entries with a
// stale cached balance.
//
// Mutating operations are serialized per party: recalculation reads the
// entire current ledger, so two interleaved batches on the same party
// would silently overwrite each other's recomputation.
type Mutator struct {
	store storage.Store

	mapMu sync.Mutex
	muMap map[string]*sync.Mutex

	hookMu   sync.Mutex
	onCommit func()
}

// NewMutator creates a Mutator over the given store.
func NewMutator(store storage.Store) *Mutator {
	return &Mutator{
		store: store,
		muMap: make(map[string]*sync.Mutex),
	}
}

// OnCommit registers a hook invoked after every successful mutating
// commit. The background exporter uses it; the hook must not block.
func (m *Mutator) OnCommit(fn func()) {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()
	m.onCommit = fn
}

func (m *Mutator) notifyCommit() {
	m.hookMu.Lock()
	fn := m.onCommit
	m.hookMu.Unlock()
	if fn != nil {
		fn()
	}
}

func (m *Mutator) partyLock(partyID string) *sync.Mutex {
	m.mapMu.Lock()
	defer m.mapMu.Unlock()
	if _, exists := m.muMap[partyID]; !exists {
		m.muMap[partyID] = &sync.Mutex{}
	}
	return m.muMap[partyID]
}

// lockParties acquires the per-party mutexes for the given IDs in sorted
// order (avoids deadlocks between overlapping batches) and returns the
// release function.
func (m *Mutator) lockParties(partyIDs ...string) func() {
	seen := make(map[string]bool, len(partyIDs))
	var ids []string
	for _, id := range partyIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	locks := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		mu := m.partyLock(id)
		mu.Lock()
		locks = append(locks, mu)
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// entryFromParsed builds a storable entry from a parsed one. partyID is
// the resolved target: bills and payments land on a party ledger, sales
// and expenses on the day book.
func entryFromParsed(p *models.ParsedEntry, partyID string) *models.LedgerEntry {
	desc := p.Description
	if p.Note != "" {
		if desc != "" {
			desc += " "
		}
		desc += p.Note
	}
	return &models.LedgerEntry{
		PartyID:     partyID,
		Date:        p.Date,
		Kind:        p.Kind,
		Amount:      p.Amount,
		HasGST:      p.HasGST,
		RefNo:       p.RefNo,
		Category:    p.Category,
		Description: desc,
		Mode:        p.Mode,
		SaleNo:      p.SaleNumber,
	}
}

// targetParty picks the ledger an entry lands on. Bills and payments go
// to their resolved party, or to the batch's default party when the name
// did not resolve (manual-resolution flow on a party's own page). Sales
// and expenses always go to the day book.
func targetParty(p *models.ParsedEntry, defaultPartyID string) string {
	switch p.Kind {
	case models.KindBill, models.KindPayment:
		if p.PartyID != "" {
			return p.PartyID
		}
		return defaultPartyID
	}
	return ""
}

// ApplyBatch applies parsed entries as one atomic unit of work.
//
// The batch is processed in date order (stable, ties keep input order)
// because balance computation is order-sensitive: a partially failed
// out-of-order application would leave valid-looking but misleading
// intermediate balances. Each entry runs duplicate detection first; a
// match is recorded as skipped, not an error, so re-importing the same
// block is idempotent. Every touched party ledger is recalculated before
// the commit. Any storage failure rolls back the entire batch.
func (m *Mutator) ApplyBatch(ctx context.Context, defaultPartyID string, parsed []models.ParsedEntry) (*BatchOutcome, error) {
	targets := make([]string, len(parsed))
	for i := range parsed {
		targets[i] = targetParty(&parsed[i], defaultPartyID)
	}
	unlock := m.lockParties(append(targets, defaultPartyID)...)
	defer unlock()

	// Stable date sort over indices; results stay parallel to the input.
	order := make([]int, len(parsed))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return parsed[order[a]].Date.Before(parsed[order[b]].Date)
	})

	tx, err := m.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	outcome := &BatchOutcome{Results: make([]EntryResult, len(parsed))}
	touched := make(map[string]bool)

	for _, idx := range order {
		p := &parsed[idx]
		target := targets[idx]

		existing, err := tx.EntriesByParty(target)
		if err != nil {
			return nil, err
		}
		if match := FindDuplicate(existing, p); match != nil {
			outcome.Results[idx] = EntryResult{Skipped: match}
			outcome.Skipped++
			continue
		}

		entry := entryFromParsed(p, target)
		if err := tx.InsertEntry(entry); err != nil {
			return nil, err
		}
		outcome.Results[idx] = EntryResult{Inserted: entry}
		outcome.Inserted++
		if target != "" {
			touched[target] = true
		}
	}

	final := decimal.Zero
	for partyID := range touched {
		balance, err := Recalculate(tx, partyID)
		if err != nil {
			return nil, err
		}
		if partyID == defaultPartyID {
			final = balance
		}
	}
	// Running balances settle only at recalculation; refresh inserted
	// snapshots so callers see the stored values.
	for i := range outcome.Results {
		if e := outcome.Results[i].Inserted; e != nil && e.PartyID != "" {
			stored, err := tx.EntryByID(e.ID)
			if err != nil {
				return nil, err
			}
			*e = *stored
		}
	}
	if defaultPartyID != "" && !touched[defaultPartyID] {
		party, err := tx.PartyByID(defaultPartyID)
		if err != nil {
			return nil, err
		}
		final = party.Balance
	}
	outcome.FinalBalance = final

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	m.notifyCommit()
	slog.Info("batch applied",
		"party_id", defaultPartyID,
		"inserted", outcome.Inserted,
		"skipped", outcome.Skipped,
		"final_balance", outcome.FinalBalance,
	)
	return outcome, nil
}

// AddEntry inserts a single entry. Unlike bulk import, a duplicate here
// is an error: the caller must confirm before retrying with ForceAddEntry.
func (m *Mutator) AddEntry(ctx context.Context, defaultPartyID string, p *models.ParsedEntry) (*models.LedgerEntry, error) {
	return m.addEntry(ctx, defaultPartyID, p, true)
}

// ForceAddEntry inserts a single entry bypassing duplicate detection.
// It is the confirmed retry after a DuplicateError.
func (m *Mutator) ForceAddEntry(ctx context.Context, defaultPartyID string, p *models.ParsedEntry) (*models.LedgerEntry, error) {
	return m.addEntry(ctx, defaultPartyID, p, false)
}

func (m *Mutator) addEntry(ctx context.Context, defaultPartyID string, p *models.ParsedEntry, checkDuplicate bool) (*models.LedgerEntry, error) {
	target := targetParty(p, defaultPartyID)
	unlock := m.lockParties(target)
	defer unlock()

	tx, err := m.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if checkDuplicate {
		existing, err := tx.EntriesByParty(target)
		if err != nil {
			return nil, err
		}
		if match := FindDuplicate(existing, p); match != nil {
			return nil, &models.DuplicateError{Match: match}
		}
	}

	entry := entryFromParsed(p, target)
	if err := tx.InsertEntry(entry); err != nil {
		return nil, err
	}
	if target != "" {
		if _, err := Recalculate(tx, target); err != nil {
			return nil, err
		}
		stored, err := tx.EntryByID(entry.ID)
		if err != nil {
			return nil, err
		}
		entry = stored
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	m.notifyCommit()
	return entry, nil
}

// EntryChanges is the set of editable fields; nil means unchanged.
type EntryChanges struct {
	Date        *models.Date
	Amount      *decimal.Decimal
	RefNo       *string
	Description *string
	HasGST      *bool
}

// EditEntry applies field changes to an entry and recalculates its
// ledger. Editing a permanent (opening-balance) entry requires
// confirmPermanent: that path additionally adjusts the party's cached
// balance by the signed amount delta before recalculation.
func (m *Mutator) EditEntry(ctx context.Context, id string, changes EntryChanges, confirmPermanent bool) (*models.LedgerEntry, error) {
	current, err := m.store.EntryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock := m.lockParties(current.PartyID)
	defer unlock()

	tx, err := m.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	entry, err := tx.EntryByID(id)
	if err != nil {
		return nil, err
	}
	if entry.IsPermanent && !confirmPermanent {
		return nil, models.ErrPermanentEntry
	}

	oldAmount := entry.Amount
	if changes.Date != nil {
		entry.Date = *changes.Date
	}
	if changes.Amount != nil {
		if !changes.Amount.IsPositive() {
			return nil, fmt.Errorf("amount must be positive")
		}
		entry.Amount = *changes.Amount
	}
	if changes.RefNo != nil {
		entry.RefNo = *changes.RefNo
	}
	if changes.Description != nil {
		entry.Description = *changes.Description
	}
	if changes.HasGST != nil {
		entry.HasGST = *changes.HasGST
	}
	if err := tx.UpdateEntry(entry); err != nil {
		return nil, err
	}

	if entry.IsPermanent && entry.PartyID != "" {
		// Opening-balance adjustment: shift the cached balance by the
		// signed delta. Recalculation below re-derives it from the
		// ledger; the explicit adjustment keeps the two paths honest.
		delta := entry.Amount.Sub(oldAmount)
		if entry.Kind == models.KindPayment {
			delta = delta.Neg()
		}
		party, err := tx.PartyByID(entry.PartyID)
		if err != nil {
			return nil, err
		}
		party.Balance = party.Balance.Add(delta)
		if err := tx.UpdateParty(party); err != nil {
			return nil, err
		}
	}

	if entry.PartyID != "" {
		if _, err := Recalculate(tx, entry.PartyID); err != nil {
			return nil, err
		}
		stored, err := tx.EntryByID(id)
		if err != nil {
			return nil, err
		}
		entry = stored
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	m.notifyCommit()
	return entry, nil
}

// DeleteEntry removes an entry and recalculates its ledger. Permanent
// entries can never be deleted.
func (m *Mutator) DeleteEntry(ctx context.Context, id string) error {
	current, err := m.store.EntryByID(ctx, id)
	if err != nil {
		return err
	}
	unlock := m.lockParties(current.PartyID)
	defer unlock()

	tx, err := m.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	entry, err := tx.EntryByID(id)
	if err != nil {
		return err
	}
	if entry.IsPermanent {
		return models.ErrPermanentEntry
	}
	if err := tx.DeleteEntry(id); err != nil {
		return err
	}
	if entry.PartyID != "" {
		if _, err := Recalculate(tx, entry.PartyID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	m.notifyCommit()
	return nil
}

// CreateParty creates a party with balance 0 and, when openingBalance is
// non-zero, one permanent opening-balance entry dated today. A negative
// opening balance (we owe the party less than nothing of the usual
// direction) is recorded as a permanent payment entry.
func (m *Mutator) CreateParty(ctx context.Context, name string, creditLimit, openingBalance decimal.Decimal) (*models.Party, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("party name is required")
	}

	parties, err := m.store.Parties(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range parties {
		if strings.EqualFold(p.Name, name) {
			return nil, fmt.Errorf("party %q already exists", p.Name)
		}
	}

	tx, err := m.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	party := &models.Party{
		Name:        name,
		CreditLimit: creditLimit,
		Balance:     decimal.Zero,
	}
	if err := tx.InsertParty(party); err != nil {
		return nil, err
	}

	if !openingBalance.IsZero() {
		kind := models.KindBill
		if openingBalance.IsNegative() {
			kind = models.KindPayment
		}
		opening := &models.LedgerEntry{
			PartyID:     party.ID,
			Date:        models.Today(),
			Kind:        kind,
			Amount:      openingBalance.Abs(),
			Description: "Opening balance",
			IsPermanent: true,
		}
		if kind == models.KindPayment {
			opening.Category = models.CategoryPartyPayment
		}
		if err := tx.InsertEntry(opening); err != nil {
			return nil, err
		}
		if _, err := Recalculate(tx, party.ID); err != nil {
			return nil, err
		}
		stored, err := tx.PartyByID(party.ID)
		if err != nil {
			return nil, err
		}
		party = stored
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	m.notifyCommit()
	slog.Info("party created", "party_id", party.ID, "name", party.Name)
	return party, nil
}

// DeleteParty removes a party by cascading deletion of all its entries
// first, in one transaction. The cascade ignores entry permanence: the
// protection guards individual entries of a live ledger, not the ledger
// being torn down.
func (m *Mutator) DeleteParty(ctx context.Context, id string) error {
	unlock := m.lockParties(id)
	defer unlock()

	tx, err := m.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	entries, err := tx.EntriesByParty(id)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := tx.DeleteEntry(e.ID); err != nil {
			return err
		}
	}
	if err := tx.DeleteParty(id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	m.notifyCommit()
	slog.Info("party deleted", "party_id", id, "entries_removed", len(entries))
	return nil
}

// RecalculateParty recomputes a party's ledger on demand, as a repair
// operation, in its own transaction.
func (m *Mutator) RecalculateParty(ctx context.Context, partyID string) (decimal.Decimal, error) {
	unlock := m.lockParties(partyID)
	defer unlock()

	tx, err := m.store.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	balance, err := Recalculate(tx, partyID)
	if err != nil {
		return decimal.Zero, err
	}
	if err := tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	m.notifyCommit()
	return balance, nil
}
