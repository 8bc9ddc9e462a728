// Package memory provides an in-memory implementation of storage.Store.
// It backs unit tests: a Tx works on a private copy of the state and
// Commit swaps it in atomically, so Rollback is a true no-op on shared
// state.
//
// Because Commit replaces the whole state with the transaction's copy,
// two write transactions must not run concurrently: the second Commit
// would discard the first one's writes even on disjoint rows. The
// SQLite store does not share this limitation; its single connection
// serializes transactions. Tests drive this store from one writer at a
// time. A read-only Tx overlapping a write is fine: it just sees the
// pre-commit state.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rkhatri/munim/internal/models"
	"github.com/rkhatri/munim/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store is an in-memory storage.Store.
type Store struct {
	mu      sync.Mutex
	parties map[string]models.Party
	entries map[string]models.LedgerEntry
	nextSeq int64

	// FailWith, when non-nil, makes every write inside a Tx return this
	// error. Tests use it to exercise rollback paths.
	FailWith error
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		parties: make(map[string]models.Party),
		entries: make(map[string]models.LedgerEntry),
	}
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// Begin opens a transaction over a copy of the current state.
func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:   s,
		parties: make(map[string]models.Party, len(s.parties)),
		entries: make(map[string]models.LedgerEntry, len(s.entries)),
		nextSeq: s.nextSeq,
	}
	for id, p := range s.parties {
		tx.parties[id] = p
	}
	for id, e := range s.entries {
		tx.entries[id] = e
	}
	return tx, nil
}

// Parties returns all parties ordered by name.
func (s *Store) Parties(ctx context.Context) ([]models.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parties := make([]models.Party, 0, len(s.parties))
	for _, p := range s.parties {
		parties = append(parties, p)
	}
	sort.Slice(parties, func(i, j int) bool { return parties[i].Name < parties[j].Name })
	return parties, nil
}

// PartyByID retrieves a single party.
func (s *Store) PartyByID(ctx context.Context, id string) (*models.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.parties[id]
	if !ok {
		return nil, models.ErrPartyNotFound
	}
	return &p, nil
}

// EntriesByParty returns a party's entries ordered by (date, seq).
func (s *Store) EntriesByParty(ctx context.Context, partyID string) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entriesByParty(s.entries, partyID), nil
}

// EntryByID retrieves a single entry.
func (s *Store) EntryByID(ctx context.Context, id string) (*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, models.ErrEntryNotFound
	}
	return &e, nil
}

// AllEntries returns every entry ordered by (date, seq).
func (s *Store) AllEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]models.LedgerEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}

func entriesByParty(all map[string]models.LedgerEntry, partyID string) []models.LedgerEntry {
	var entries []models.LedgerEntry
	for _, e := range all {
		if e.PartyID == partyID {
			entries = append(entries, e)
		}
	}
	sortEntries(entries)
	return entries
}

func sortEntries(entries []models.LedgerEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].Date.Compare(entries[j].Date); c != 0 {
			return c < 0
		}
		return entries[i].Seq < entries[j].Seq
	})
}

// memTx is a transaction over a private copy of the store state.
type memTx struct {
	store   *Store
	parties map[string]models.Party
	entries map[string]models.LedgerEntry
	nextSeq int64
}

var _ storage.Tx = (*memTx)(nil)

func (t *memTx) Commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	t.store.parties = t.parties
	t.store.entries = t.entries
	t.store.nextSeq = t.nextSeq
	return nil
}

func (t *memTx) Rollback() error {
	return nil
}

func (t *memTx) InsertParty(p *models.Party) error {
	if err := t.store.FailWith; err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	t.parties[p.ID] = *p
	return nil
}

func (t *memTx) UpdateParty(p *models.Party) error {
	if err := t.store.FailWith; err != nil {
		return err
	}
	if _, ok := t.parties[p.ID]; !ok {
		return models.ErrPartyNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	t.parties[p.ID] = *p
	return nil
}

func (t *memTx) DeleteParty(id string) error {
	if err := t.store.FailWith; err != nil {
		return err
	}
	if _, ok := t.parties[id]; !ok {
		return models.ErrPartyNotFound
	}
	delete(t.parties, id)
	return nil
}

func (t *memTx) PartyByID(id string) (*models.Party, error) {
	p, ok := t.parties[id]
	if !ok {
		return nil, models.ErrPartyNotFound
	}
	return &p, nil
}

func (t *memTx) InsertEntry(e *models.LedgerEntry) error {
	if err := t.store.FailWith; err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	if e.Seq == 0 {
		t.nextSeq++
		e.Seq = t.nextSeq
	} else if e.Seq > t.nextSeq {
		t.nextSeq = e.Seq
	}
	t.entries[e.ID] = *e
	return nil
}

func (t *memTx) UpdateEntry(e *models.LedgerEntry) error {
	if err := t.store.FailWith; err != nil {
		return err
	}
	if _, ok := t.entries[e.ID]; !ok {
		return models.ErrEntryNotFound
	}
	e.UpdatedAt = time.Now().UTC()
	t.entries[e.ID] = *e
	return nil
}

func (t *memTx) DeleteEntry(id string) error {
	if err := t.store.FailWith; err != nil {
		return err
	}
	if _, ok := t.entries[id]; !ok {
		return models.ErrEntryNotFound
	}
	delete(t.entries, id)
	return nil
}

func (t *memTx) EntryByID(id string) (*models.LedgerEntry, error) {
	e, ok := t.entries[id]
	if !ok {
		return nil, models.ErrEntryNotFound
	}
	return &e, nil
}

func (t *memTx) EntriesByParty(partyID string) ([]models.LedgerEntry, error) {
	return entriesByParty(t.entries, partyID), nil
}

func (t *memTx) Parties() ([]models.Party, error) {
	parties := make([]models.Party, 0, len(t.parties))
	for _, p := range t.parties {
		parties = append(parties, p)
	}
	sort.Slice(parties, func(i, j int) bool { return parties[i].Name < parties[j].Name })
	return parties, nil
}

func (t *memTx) AllEntries() ([]models.LedgerEntry, error) {
	entries := make([]models.LedgerEntry, 0, len(t.entries))
	for _, e := range t.entries {
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}

func (t *memTx) ReplaceAll(parties []models.Party, entries []models.LedgerEntry) error {
	if err := t.store.FailWith; err != nil {
		return err
	}
	t.parties = make(map[string]models.Party, len(parties))
	t.entries = make(map[string]models.LedgerEntry, len(entries))
	t.nextSeq = 0
	for i := range parties {
		if err := t.InsertParty(&parties[i]); err != nil {
			return err
		}
	}
	for i := range entries {
		if err := t.InsertEntry(&entries[i]); err != nil {
			return err
		}
	}
	return nil
}
