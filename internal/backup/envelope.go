// Package backup implements the versioned export envelope and the
// debounced background exporter.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rkhatri/munim/internal/ledger"
	"github.com/rkhatri/munim/internal/models"
	"github.com/rkhatri/munim/internal/storage"
)

// Version is the current envelope format version.
const Version = 1

// Envelope is the backup format: a versioned wrapper around full table
// dumps.
type Envelope struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Tables    Tables    `json:"tables"`
}

// Tables holds the row dumps, keyed by table name in the JSON encoding.
type Tables struct {
	Parties []models.Party       `json:"parties"`
	Entries []models.LedgerEntry `json:"entries"`
}

// Snapshot reads a consistent copy of all tables inside one transaction.
func Snapshot(ctx context.Context, store storage.Store) (*Envelope, error) {
	tx, err := store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	parties, err := tx.Parties()
	if err != nil {
		return nil, err
	}
	entries, err := tx.AllEntries()
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Version:   Version,
		Timestamp: time.Now().UTC(),
		Tables:    Tables{Parties: parties, Entries: entries},
	}, nil
}

// Decode parses and structurally validates an envelope. Validation runs
// before any data is touched: required tables must be present (empty is
// fine, absent is not) and every entry kind must be within the known
// enumeration.
func Decode(data []byte) (*Envelope, error) {
	// Presence check first: a typed unmarshal cannot tell a missing
	// table from an empty one.
	var raw struct {
		Version   int                        `json:"version"`
		Timestamp time.Time                  `json:"timestamp"`
		Tables    map[string]json.RawMessage `json:"tables"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid backup: %w", err)
	}
	if raw.Version != Version {
		return nil, fmt.Errorf("unsupported backup version %d, want %d", raw.Version, Version)
	}
	for _, table := range []string{"parties", "entries"} {
		if _, ok := raw.Tables[table]; !ok {
			return nil, fmt.Errorf("backup is missing required table %q", table)
		}
	}

	env := &Envelope{Version: raw.Version, Timestamp: raw.Timestamp}
	if err := json.Unmarshal(raw.Tables["parties"], &env.Tables.Parties); err != nil {
		return nil, fmt.Errorf("invalid parties table: %w", err)
	}
	if err := json.Unmarshal(raw.Tables["entries"], &env.Tables.Entries); err != nil {
		return nil, fmt.Errorf("invalid entries table: %w", err)
	}

	partyIDs := make(map[string]bool, len(env.Tables.Parties))
	for _, p := range env.Tables.Parties {
		partyIDs[p.ID] = true
	}
	for _, e := range env.Tables.Entries {
		if !e.Kind.IsValid() {
			return nil, fmt.Errorf("entry %s has unknown kind %q", e.ID, e.Kind)
		}
		if !e.Amount.IsPositive() {
			return nil, fmt.Errorf("entry %s has non-positive amount", e.ID)
		}
		if e.PartyID != "" && !partyIDs[e.PartyID] {
			return nil, fmt.Errorf("entry %s references unknown party %s", e.ID, e.PartyID)
		}
	}
	return env, nil
}

// Import replaces all data with the envelope's rows inside one
// transaction, then recalculates every party ledger so running balances
// are re-derived rather than trusted. Any row-level failure rolls the
// whole import back.
func Import(ctx context.Context, store storage.Store, env *Envelope) error {
	tx, err := store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.ReplaceAll(env.Tables.Parties, env.Tables.Entries); err != nil {
		return err
	}
	for _, p := range env.Tables.Parties {
		if _, err := ledger.Recalculate(tx, p.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
