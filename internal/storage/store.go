// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/rkhatri/munim/internal/models"
)

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, in-memory)
// without changing the ledger or service layers.
//
// Reads outside a transaction see the last committed state. All writes go
// through a Tx so a mutating operation is one all-or-nothing unit of work.
type Store interface {
	// Begin opens a transaction. The caller must end it with Commit or
	// Rollback; the idiom is `defer tx.Rollback()` immediately after Begin.
	Begin(ctx context.Context) (Tx, error)

	// Parties returns all parties ordered by name.
	Parties(ctx context.Context) ([]models.Party, error)

	// PartyByID retrieves a party. Returns models.ErrPartyNotFound if absent.
	PartyByID(ctx context.Context, id string) (*models.Party, error)

	// EntriesByParty returns a party's entries ordered by (date, seq).
	// An empty partyID selects the day book (sales and general expenses).
	EntriesByParty(ctx context.Context, partyID string) ([]models.LedgerEntry, error)

	// EntryByID retrieves an entry. Returns models.ErrEntryNotFound if absent.
	EntryByID(ctx context.Context, id string) (*models.LedgerEntry, error)

	// AllEntries returns every entry ordered by (date, seq), for export.
	AllEntries(ctx context.Context) ([]models.LedgerEntry, error)

	// Close releases any resources held by the store.
	Close() error
}

// Tx is one atomic unit of work. Reads inside a Tx observe the Tx's own
// uncommitted writes, which duplicate detection and recalculation rely on.
type Tx interface {
	Commit() error

	// Rollback discards the transaction. Calling it after Commit is a
	// no-op so it is safe to defer.
	Rollback() error

	// InsertParty persists a new party, assigning ID and timestamps if unset.
	InsertParty(p *models.Party) error

	// UpdateParty rewrites a party's mutable fields (name, credit limit,
	// balance) and bumps UpdatedAt.
	UpdateParty(p *models.Party) error

	// DeleteParty removes a party row. Entries must be deleted first.
	DeleteParty(id string) error

	PartyByID(id string) (*models.Party, error)

	// InsertEntry persists a new entry, assigning ID, Seq and timestamps.
	InsertEntry(e *models.LedgerEntry) error

	// UpdateEntry rewrites an entry's stored fields and bumps UpdatedAt.
	UpdateEntry(e *models.LedgerEntry) error

	// DeleteEntry removes an entry row.
	DeleteEntry(id string) error

	EntryByID(id string) (*models.LedgerEntry, error)

	// EntriesByParty returns a party's entries ordered by (date, seq).
	EntriesByParty(partyID string) ([]models.LedgerEntry, error)

	// Parties returns all parties ordered by name.
	Parties() ([]models.Party, error)

	// AllEntries returns every entry ordered by (date, seq). Together
	// with Parties it gives backup export a consistent snapshot.
	AllEntries() ([]models.LedgerEntry, error)

	// ReplaceAll deletes every row and installs the given snapshot.
	// Used by backup import; the whole replacement is part of this Tx.
	ReplaceAll(parties []models.Party, entries []models.LedgerEntry) error
}
