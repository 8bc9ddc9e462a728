package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rkhatri/munim/internal/models"
)

// PartySummary is a party together with its full ledger, running
// balances included.
type PartySummary struct {
	Party   models.Party         `json:"party"`
	Entries []models.LedgerEntry `json:"entries"`
}

// CreateParty creates a party, optionally seeding a permanent
// opening-balance entry, and refreshes the name directory.
func (s *LedgerService) CreateParty(ctx context.Context, name string, creditLimit, openingBalance decimal.Decimal) (*models.Party, error) {
	party, err := s.mutator.CreateParty(ctx, name, creditLimit, openingBalance)
	if err != nil {
		return nil, err
	}
	s.dir.Invalidate()
	return party, nil
}

// Parties lists all parties ordered by name.
func (s *LedgerService) Parties(ctx context.Context) ([]models.Party, error) {
	return s.store.Parties(ctx)
}

// PartySummary returns one party with its entries in ledger order.
func (s *LedgerService) PartySummary(ctx context.Context, id string) (*PartySummary, error) {
	party, err := s.store.PartyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.EntriesByParty(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PartySummary{Party: *party, Entries: entries}, nil
}

// DeleteParty cascades deletion of the party's entries and the party,
// then refreshes the name directory.
func (s *LedgerService) DeleteParty(ctx context.Context, id string) error {
	if err := s.mutator.DeleteParty(ctx, id); err != nil {
		return err
	}
	s.dir.Invalidate()
	return nil
}
