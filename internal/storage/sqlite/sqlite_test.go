package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rkhatri/munim/internal/models"
	"github.com/rkhatri/munim/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func commit(t *testing.T, store *SQLiteStore, fn func(tx storage.Tx)) {
	t.Helper()
	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	fn(tx)
	require.NoError(t, tx.Commit())
}

func TestPartyRoundTrip(t *testing.T) {
	store := newTestStore(t)

	party := &models.Party{
		Name:        "Sharma Traders",
		CreditLimit: decimal.NewFromInt(50000),
		Balance:     decimal.RequireFromString("1234.56"),
	}
	commit(t, store, func(tx storage.Tx) {
		require.NoError(t, tx.InsertParty(party))
	})
	require.NotEmpty(t, party.ID)
	require.False(t, party.CreatedAt.IsZero())

	got, err := store.PartyByID(context.Background(), party.ID)
	require.NoError(t, err)
	require.Equal(t, "Sharma Traders", got.Name)
	require.True(t, got.CreditLimit.Equal(party.CreditLimit))
	require.True(t, got.Balance.Equal(party.Balance))

	got.Balance = decimal.NewFromInt(-500)
	commit(t, store, func(tx storage.Tx) {
		require.NoError(t, tx.UpdateParty(got))
	})
	updated, err := store.PartyByID(context.Background(), party.ID)
	require.NoError(t, err)
	require.True(t, updated.Balance.Equal(decimal.NewFromInt(-500)))

	commit(t, store, func(tx storage.Tx) {
		require.NoError(t, tx.DeleteParty(party.ID))
	})
	_, err = store.PartyByID(context.Background(), party.ID)
	require.ErrorIs(t, err, models.ErrPartyNotFound)
}

func TestEntryRoundTrip(t *testing.T) {
	store := newTestStore(t)

	party := &models.Party{Name: "Sharma Traders"}
	commit(t, store, func(tx storage.Tx) {
		require.NoError(t, tx.InsertParty(party))
	})

	entry := &models.LedgerEntry{
		PartyID:     party.ID,
		Date:        models.NewDate(2025, time.March, 10),
		Kind:        models.KindSale,
		Amount:      decimal.RequireFromString("1800.50"),
		HasGST:      true,
		RefNo:       "B-1",
		Category:    "petty",
		Description: "GR: 42",
		Mode:        models.ModeDigital,
		SaleNo:      7,
		IsPermanent: true,
	}
	commit(t, store, func(tx storage.Tx) {
		require.NoError(t, tx.InsertEntry(entry))
	})
	require.NotEmpty(t, entry.ID)
	require.NotZero(t, entry.Seq)

	got, err := store.EntryByID(context.Background(), entry.ID)
	require.NoError(t, err)
	require.Equal(t, entry.PartyID, got.PartyID)
	require.Equal(t, entry.Date, got.Date)
	require.Equal(t, models.KindSale, got.Kind)
	require.True(t, got.Amount.Equal(entry.Amount))
	require.True(t, got.HasGST)
	require.Equal(t, "B-1", got.RefNo)
	require.Equal(t, "petty", got.Category)
	require.Equal(t, "GR: 42", got.Description)
	require.Equal(t, models.ModeDigital, got.Mode)
	require.Equal(t, 7, got.SaleNo)
	require.True(t, got.IsPermanent)
	require.Equal(t, entry.Seq, got.Seq)

	got.Description = "edited"
	got.HasGST = false
	commit(t, store, func(tx storage.Tx) {
		require.NoError(t, tx.UpdateEntry(got))
	})
	updated, err := store.EntryByID(context.Background(), entry.ID)
	require.NoError(t, err)
	require.Equal(t, "edited", updated.Description)
	require.False(t, updated.HasGST)

	commit(t, store, func(tx storage.Tx) {
		require.NoError(t, tx.DeleteEntry(entry.ID))
	})
	_, err = store.EntryByID(context.Background(), entry.ID)
	require.ErrorIs(t, err, models.ErrEntryNotFound)
}

func TestSeqAssignmentIsMonotonic(t *testing.T) {
	store := newTestStore(t)

	var seqs []int64
	commit(t, store, func(tx storage.Tx) {
		for i := 0; i < 3; i++ {
			e := &models.LedgerEntry{
				Date:   models.NewDate(2025, time.March, 10),
				Kind:   models.KindSale,
				Amount: decimal.NewFromInt(int64(100 + i)),
			}
			require.NoError(t, tx.InsertEntry(e))
			seqs = append(seqs, e.Seq)
		}
	})

	require.Equal(t, []int64{1, 2, 3}, seqs)
}

func TestEntriesByPartyOrder(t *testing.T) {
	store := newTestStore(t)

	party := &models.Party{Name: "Sharma Traders"}
	commit(t, store, func(tx storage.Tx) {
		require.NoError(t, tx.InsertParty(party))
	})

	// Insert the later date first; same-day entries tiebreak on seq.
	dates := []models.Date{
		models.NewDate(2025, time.March, 20),
		models.NewDate(2025, time.March, 10),
		models.NewDate(2025, time.March, 10),
	}
	commit(t, store, func(tx storage.Tx) {
		for i, date := range dates {
			require.NoError(t, tx.InsertEntry(&models.LedgerEntry{
				PartyID: party.ID,
				Date:    date,
				Kind:    models.KindBill,
				Amount:  decimal.NewFromInt(int64(100 + i)),
			}))
		}
	})

	entries, err := store.EntriesByParty(context.Background(), party.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "101", entries[0].Amount.String())
	require.Equal(t, "102", entries[1].Amount.String())
	require.Equal(t, "100", entries[2].Amount.String())
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := newTestStore(t)

	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	party := &models.Party{Name: "Sharma Traders"}
	require.NoError(t, tx.InsertParty(party))
	require.NoError(t, tx.Rollback())

	_, err = store.PartyByID(context.Background(), party.ID)
	require.ErrorIs(t, err, models.ErrPartyNotFound)
}

func TestRollbackAfterCommitIsNoop(t *testing.T) {
	store := newTestStore(t)

	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.InsertParty(&models.Party{Name: "Sharma Traders"}))
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Rollback())
}

func TestTxReadsSeeUncommittedWrites(t *testing.T) {
	store := newTestStore(t)

	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	party := &models.Party{Name: "Sharma Traders"}
	require.NoError(t, tx.InsertParty(party))
	entry := &models.LedgerEntry{
		PartyID: party.ID,
		Date:    models.NewDate(2025, time.March, 10),
		Kind:    models.KindBill,
		Amount:  decimal.NewFromInt(5000),
	}
	require.NoError(t, tx.InsertEntry(entry))

	// Duplicate detection and recalculation read through the Tx and must
	// see rows inserted earlier in the same Tx.
	entries, err := tx.EntriesByParty(party.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestUpdateMissingRows(t *testing.T) {
	store := newTestStore(t)

	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	err = tx.UpdateParty(&models.Party{ID: "ghost", Name: "x"})
	require.ErrorIs(t, err, models.ErrPartyNotFound)
	err = tx.UpdateEntry(&models.LedgerEntry{ID: "ghost", Kind: models.KindBill, Amount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, models.ErrEntryNotFound)
	require.ErrorIs(t, tx.DeleteEntry("ghost"), models.ErrEntryNotFound)
}

func TestReplaceAll(t *testing.T) {
	store := newTestStore(t)

	old := &models.Party{Name: "Old Party"}
	commit(t, store, func(tx storage.Tx) {
		require.NoError(t, tx.InsertParty(old))
		require.NoError(t, tx.InsertEntry(&models.LedgerEntry{
			PartyID: old.ID,
			Date:    models.NewDate(2025, time.January, 1),
			Kind:    models.KindBill,
			Amount:  decimal.NewFromInt(100),
		}))
	})

	replacement := models.Party{ID: "p-new", Name: "New Party"}
	commit(t, store, func(tx storage.Tx) {
		require.NoError(t, tx.ReplaceAll(
			[]models.Party{replacement},
			[]models.LedgerEntry{{
				ID:      "e-new",
				PartyID: "p-new",
				Date:    models.NewDate(2025, time.February, 2),
				Kind:    models.KindPayment,
				Amount:  decimal.NewFromInt(200),
			}},
		))
	})

	parties, err := store.Parties(context.Background())
	require.NoError(t, err)
	require.Len(t, parties, 1)
	require.Equal(t, "New Party", parties[0].Name)

	entries, err := store.AllEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "e-new", entries[0].ID)
}
