package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rkhatri/munim/internal/models"
)

const partyColumns = "id, name, credit_limit, balance, created_at, updated_at"

const entryColumns = "id, party_id, date, kind, amount, has_gst, ref_no, category, " +
	"description, mode, sale_no, running_balance, is_permanent, seq, created_at, updated_at"

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPartyInto(sc rowScanner) (*models.Party, error) {
	var (
		p                    models.Party
		creditLimit, balance string
		createdAt, updatedAt int64
	)
	if err := sc.Scan(&p.ID, &p.Name, &creditLimit, &balance, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.CreditLimit, err = decimal.NewFromString(creditLimit); err != nil {
		return nil, fmt.Errorf("bad credit_limit for party %s: %w", p.ID, err)
	}
	if p.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("bad balance for party %s: %w", p.ID, err)
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &p, nil
}

func scanParty(row *sql.Row) (*models.Party, error) {
	p, err := scanPartyInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPartyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan party: %w", err)
	}
	return p, nil
}

func scanParties(rows *sql.Rows) ([]models.Party, error) {
	var parties []models.Party
	for rows.Next() {
		p, err := scanPartyInto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan party: %w", err)
		}
		parties = append(parties, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parties: %w", err)
	}
	return parties, nil
}

func scanEntryInto(sc rowScanner) (*models.LedgerEntry, error) {
	var (
		e                     models.LedgerEntry
		date, amount, running string
		hasGST, isPermanent   int
		createdAt, updatedAt  int64
	)
	if err := sc.Scan(&e.ID, &e.PartyID, &date, &e.Kind, &amount, &hasGST, &e.RefNo,
		&e.Category, &e.Description, &e.Mode, &e.SaleNo, &running, &isPermanent, &e.Seq,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if e.Date, err = models.ParseDate(date); err != nil {
		return nil, fmt.Errorf("bad date for entry %s: %w", e.ID, err)
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("bad amount for entry %s: %w", e.ID, err)
	}
	if e.RunningBalance, err = decimal.NewFromString(running); err != nil {
		return nil, fmt.Errorf("bad running_balance for entry %s: %w", e.ID, err)
	}
	e.HasGST = hasGST != 0
	e.IsPermanent = isPermanent != 0
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	e.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &e, nil
}

func scanEntry(row *sql.Row) (*models.LedgerEntry, error) {
	e, err := scanEntryInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}
	return e, nil
}

func scanEntries(rows *sql.Rows) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	for rows.Next() {
		e, err := scanEntryInto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
