package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rkhatri/munim/internal/models"
	"github.com/rkhatri/munim/internal/storage"
)

// Ensure sqliteTx implements storage.Tx
var _ storage.Tx = (*sqliteTx)(nil)

// sqliteTx wraps a *sql.Tx with the typed row operations of storage.Tx.
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *sqliteTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func (t *sqliteTx) InsertParty(p *models.Party) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := t.tx.Exec(
		"INSERT INTO parties (id, name, credit_limit, balance, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.CreditLimit.String(), p.Balance.String(),
		p.CreatedAt.Unix(), p.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert party: %w", err)
	}
	return nil
}

func (t *sqliteTx) UpdateParty(p *models.Party) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := t.tx.Exec(
		"UPDATE parties SET name = ?, credit_limit = ?, balance = ?, updated_at = ? WHERE id = ?",
		p.Name, p.CreditLimit.String(), p.Balance.String(), p.UpdatedAt.Unix(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update party: %w", err)
	}
	return requireRow(res, models.ErrPartyNotFound)
}

func (t *sqliteTx) DeleteParty(id string) error {
	res, err := t.tx.Exec("DELETE FROM parties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete party: %w", err)
	}
	return requireRow(res, models.ErrPartyNotFound)
}

func (t *sqliteTx) PartyByID(id string) (*models.Party, error) {
	row := t.tx.QueryRow("SELECT "+partyColumns+" FROM parties WHERE id = ?", id)
	return scanParty(row)
}

func (t *sqliteTx) InsertEntry(e *models.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	// Creation sequence: same-day entries recalculate in insertion order.
	// Single-writer process, so MAX+1 inside the Tx cannot race.
	if e.Seq == 0 {
		row := t.tx.QueryRow("SELECT COALESCE(MAX(seq), 0) + 1 FROM entries")
		if err := row.Scan(&e.Seq); err != nil {
			return fmt.Errorf("failed to assign entry seq: %w", err)
		}
	}

	_, err := t.tx.Exec(
		"INSERT INTO entries (id, party_id, date, kind, amount, has_gst, ref_no, category, description, mode, sale_no, running_balance, is_permanent, seq, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.PartyID, e.Date.String(), string(e.Kind), e.Amount.String(),
		boolInt(e.HasGST), e.RefNo, e.Category, e.Description,
		string(e.Mode), e.SaleNo,
		e.RunningBalance.String(), boolInt(e.IsPermanent), e.Seq,
		e.CreatedAt.Unix(), e.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (t *sqliteTx) UpdateEntry(e *models.LedgerEntry) error {
	e.UpdatedAt = time.Now().UTC()
	res, err := t.tx.Exec(
		"UPDATE entries SET party_id = ?, date = ?, kind = ?, amount = ?, has_gst = ?, ref_no = ?, category = ?, description = ?, mode = ?, sale_no = ?, running_balance = ?, is_permanent = ?, updated_at = ? WHERE id = ?",
		e.PartyID, e.Date.String(), string(e.Kind), e.Amount.String(),
		boolInt(e.HasGST), e.RefNo, e.Category, e.Description,
		string(e.Mode), e.SaleNo,
		e.RunningBalance.String(), boolInt(e.IsPermanent), e.UpdatedAt.Unix(), e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return requireRow(res, models.ErrEntryNotFound)
}

func (t *sqliteTx) DeleteEntry(id string) error {
	res, err := t.tx.Exec("DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return requireRow(res, models.ErrEntryNotFound)
}

func (t *sqliteTx) EntryByID(id string) (*models.LedgerEntry, error) {
	row := t.tx.QueryRow("SELECT "+entryColumns+" FROM entries WHERE id = ?", id)
	return scanEntry(row)
}

func (t *sqliteTx) EntriesByParty(partyID string) ([]models.LedgerEntry, error) {
	rows, err := t.tx.Query(
		"SELECT "+entryColumns+" FROM entries WHERE party_id = ? ORDER BY date, seq", partyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (t *sqliteTx) Parties() ([]models.Party, error) {
	rows, err := t.tx.Query("SELECT " + partyColumns + " FROM parties ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query parties: %w", err)
	}
	defer rows.Close()
	return scanParties(rows)
}

func (t *sqliteTx) AllEntries() ([]models.LedgerEntry, error) {
	rows, err := t.tx.Query("SELECT " + entryColumns + " FROM entries ORDER BY date, seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (t *sqliteTx) ReplaceAll(parties []models.Party, entries []models.LedgerEntry) error {
	if _, err := t.tx.Exec("DELETE FROM entries"); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}
	if _, err := t.tx.Exec("DELETE FROM parties"); err != nil {
		return fmt.Errorf("failed to clear parties: %w", err)
	}
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

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return missing
	}
	return nil
}
