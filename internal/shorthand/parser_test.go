package shorthand

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rkhatri/munim/internal/models"
)

// fakeResolver resolves names against a fixed map, case-insensitively.
type fakeResolver struct {
	parties map[string]models.Party
}

func (r fakeResolver) Resolve(_ context.Context, name string) (*models.Party, bool) {
	p, ok := r.parties[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return &p, true
}

func newTestParser() *Parser {
	return New(fakeResolver{parties: map[string]models.Party{
		"sharma traders": {ID: "party-1", Name: "Sharma Traders"},
		"gupta & sons":   {ID: "party-2", Name: "Gupta & Sons"},
	}})
}

var testDate = models.NewDate(2025, time.January, 15)

func mustParse(t *testing.T, line string) *models.ParsedEntry {
	t.Helper()
	entry, err := newTestParser().Parse(context.Background(), line, testDate)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", line, err)
	}
	return entry
}

func TestParseBillWithRef(t *testing.T) {
	entry := mustParse(t, "Sharma Traders (13/12/24) INV-101 5000 GR 42 GST")

	if entry.Kind != models.KindBill {
		t.Errorf("kind = %q, want bill", entry.Kind)
	}
	if !entry.IsValidParty || entry.PartyID != "party-1" {
		t.Errorf("party not resolved: %+v", entry)
	}
	if got, want := entry.Date, models.NewDate(2024, time.December, 13); got != want {
		t.Errorf("date = %v, want %v", got, want)
	}
	if entry.RefNo != "INV-101" {
		t.Errorf("ref = %q, want INV-101", entry.RefNo)
	}
	if !entry.Amount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("amount = %v, want 5000", entry.Amount)
	}
	if entry.Description != "GR: 42" {
		t.Errorf("description = %q, want \"GR: 42\"", entry.Description)
	}
	if !entry.HasGST {
		t.Error("expected GST flag")
	}
}

func TestParseBillUnknownPartyIsAdvisory(t *testing.T) {
	entry := mustParse(t, "Santosh Tops (25/1/25) SV2029 73173 GR 302 GST")

	if entry.IsValidParty {
		t.Error("unknown bill party must be flagged, not resolved")
	}
	if entry.PartyName != "Santosh Tops" {
		t.Errorf("party name = %q", entry.PartyName)
	}
	if entry.PartyID != "" {
		t.Errorf("party id = %q, want empty", entry.PartyID)
	}
	if got, want := entry.Date, models.NewDate(2025, time.January, 25); got != want {
		t.Errorf("date = %v, want %v", got, want)
	}
	if entry.RefNo != "SV2029" {
		t.Errorf("ref = %q, want SV2029", entry.RefNo)
	}
	if !entry.Amount.Equal(decimal.NewFromInt(73173)) {
		t.Errorf("amount = %v, want 73173", entry.Amount)
	}
	if entry.Description != "GR: 302" || !entry.HasGST {
		t.Errorf("got %+v", entry)
	}
}

func TestParseBillSimple(t *testing.T) {
	entry := mustParse(t, "Gupta & Sons (date: 5/1/25) 1200")

	if entry.Kind != models.KindBill {
		t.Errorf("kind = %q, want bill", entry.Kind)
	}
	if entry.PartyID != "party-2" {
		t.Errorf("party id = %q, want party-2", entry.PartyID)
	}
	if got, want := entry.Date, models.NewDate(2025, time.January, 5); got != want {
		t.Errorf("date = %v, want %v", got, want)
	}
	if entry.RefNo != "" {
		t.Errorf("ref = %q, want empty", entry.RefNo)
	}
}

func TestParseNumberedSale(t *testing.T) {
	t.Run("cash by default", func(t *testing.T) {
		entry := mustParse(t, "7. 2500")
		if entry.Kind != models.KindSale || entry.SaleNumber != 7 {
			t.Fatalf("got %+v", entry)
		}
		if entry.Mode != models.ModeCash {
			t.Errorf("mode = %q, want cash", entry.Mode)
		}
		if entry.Date != testDate {
			t.Errorf("date = %v, want context date %v", entry.Date, testDate)
		}
	})

	t.Run("net is digital with note", func(t *testing.T) {
		entry := mustParse(t, "8. 1800 net gpay")
		if entry.Mode != models.ModeDigital {
			t.Errorf("mode = %q, want digital", entry.Mode)
		}
		if entry.Note != "gpay" {
			t.Errorf("note = %q, want gpay", entry.Note)
		}
	})

	t.Run("trailer is a credit party", func(t *testing.T) {
		entry := mustParse(t, "9. 900 (Sharma Traders)")
		if entry.Mode != models.ModeCredit {
			t.Errorf("mode = %q, want credit", entry.Mode)
		}
		if entry.PartyID != "party-1" {
			t.Errorf("party id = %q, want party-1", entry.PartyID)
		}
	})

	t.Run("unknown credit party is an error", func(t *testing.T) {
		_, err := newTestParser().Parse(context.Background(), "9. 900 (Nobody)", testDate)
		var unknownErr *models.UnknownPartyError
		if !errors.As(err, &unknownErr) {
			t.Fatalf("want UnknownPartyError, got %v", err)
		}
		if unknownErr.Name != "Nobody" {
			t.Errorf("name = %q, want Nobody", unknownErr.Name)
		}
	})
}

func TestParseStaffPayroll(t *testing.T) {
	entry := mustParse(t, "ramesh sal 8000")

	if entry.Kind != models.KindExpense || entry.Category != "salary" {
		t.Fatalf("got %+v", entry)
	}
	if entry.Description != "ramesh sal" {
		t.Errorf("description = %q", entry.Description)
	}

	adv := mustParse(t, "suresh adv 500")
	if adv.Description != "suresh adv" {
		t.Errorf("description = %q", adv.Description)
	}
}

func TestParsePartyPayment(t *testing.T) {
	entry := mustParse(t, "Sharma Traders 3000 party GST")

	if entry.Kind != models.KindPayment {
		t.Fatalf("kind = %q, want payment", entry.Kind)
	}
	if entry.Category != models.CategoryPartyPayment {
		t.Errorf("category = %q", entry.Category)
	}
	if entry.PartyID != "party-1" || !entry.IsValidParty {
		t.Errorf("party not resolved: %+v", entry)
	}
	if !entry.HasGST {
		t.Error("expected GST flag")
	}

	_, err := newTestParser().Parse(context.Background(), "Nobody 3000 party", testDate)
	var unknownErr *models.UnknownPartyError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("payment form must require a known party, got %v", err)
	}
}

func TestParseCategoryExpense(t *testing.T) {
	entry := mustParse(t, "petty 150 chai GST")

	if entry.Kind != models.KindExpense || entry.Category != "petty" {
		t.Fatalf("got %+v", entry)
	}
	if entry.Description != "chai" {
		t.Errorf("description = %q, want chai (GST token excluded)", entry.Description)
	}
	if !entry.HasGST {
		t.Error("expected GST flag")
	}

	freight := mustParse(t, "Freight 700")
	if freight.Category != "freight" {
		t.Errorf("category = %q, want freight", freight.Category)
	}
}

func TestParseFallback(t *testing.T) {
	t.Run("resolved label is a payment", func(t *testing.T) {
		entry := mustParse(t, "Sharma Traders 4000")
		if entry.Kind != models.KindPayment {
			t.Errorf("kind = %q, want payment", entry.Kind)
		}
		if entry.PartyID != "party-1" {
			t.Errorf("party id = %q", entry.PartyID)
		}
	})

	t.Run("unresolved label degrades to petty expense", func(t *testing.T) {
		entry := mustParse(t, "stationery 250")
		if entry.Kind != models.KindExpense || entry.Category != "petty" {
			t.Fatalf("got %+v", entry)
		}
		if entry.Description != "stationery" {
			t.Errorf("description = %q", entry.Description)
		}
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"no amount", "hello world", "no amount found"},
		{"month out of range", "Sharma Traders (5/13/24) B1 100", "invalid month"},
		{"day out of range", "Sharma Traders (32/1/24) B1 100", "invalid day"},
		{"sale without amount", "7. net", "no amount found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestParser().Parse(context.Background(), tt.line, testDate)
			var parseErr *models.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("want ParseError, got %v", err)
			}
			if !strings.Contains(parseErr.Msg, tt.want) {
				t.Errorf("error %q does not mention %q", parseErr.Msg, tt.want)
			}
		})
	}
}

func TestParsePaymentLine(t *testing.T) {
	p := newTestParser()

	t.Run("full form", func(t *testing.T) {
		entry, err := p.ParsePaymentLine("13/12/24 20000 GST 1234", testDate)
		if err != nil {
			t.Fatal(err)
		}
		if entry.Kind != models.KindPayment {
			t.Errorf("kind = %q, want payment", entry.Kind)
		}
		if got, want := entry.Date, models.NewDate(2024, time.December, 13); got != want {
			t.Errorf("date = %v, want %v", got, want)
		}
		if !entry.Amount.Equal(decimal.NewFromInt(20000)) {
			t.Errorf("amount = %v, want 20000", entry.Amount)
		}
		if !entry.HasGST {
			t.Error("expected GST flag")
		}
		if entry.RefNo != "1234" {
			t.Errorf("ref = %q, want 1234", entry.RefNo)
		}
	})

	t.Run("amount only uses context date", func(t *testing.T) {
		entry, err := p.ParsePaymentLine("500", testDate)
		if err != nil {
			t.Fatal(err)
		}
		if entry.Date != testDate {
			t.Errorf("date = %v, want %v", entry.Date, testDate)
		}
		if entry.RefNo != "" || entry.HasGST {
			t.Errorf("got %+v", entry)
		}
	})

	t.Run("bad month is rejected", func(t *testing.T) {
		_, err := p.ParsePaymentLine("13/13/24 100", testDate)
		var parseErr *models.ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("want ParseError, got %v", err)
		}
	})

	t.Run("empty line", func(t *testing.T) {
		if _, err := p.ParsePaymentLine("   ", testDate); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestParseBlock(t *testing.T) {
	text := "7. 2500\n\n  \nbad line with no numbers\npetty 150 chai"
	results := newTestParser().ParseBlock(context.Background(), text, testDate)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3 (blanks skipped)", len(results))
	}
	if results[0].Err != nil || results[0].Entry.Kind != models.KindSale {
		t.Errorf("line 0: %+v", results[0])
	}
	if results[1].Err == nil {
		t.Error("line 1 should fail to parse")
	}
	if results[2].Err != nil || results[2].Entry.Category != "petty" {
		t.Errorf("line 2: %+v", results[2])
	}
}

func TestRenderRoundTrip(t *testing.T) {
	lines := []string{
		"Sharma Traders (13/12/24) INV-101 5000 GR 42 GST",
		"Gupta & Sons (date: 5/1/25) 1200",
		"7. 2500",
		"8. 1800 net gpay",
		"9. 900 (Sharma Traders)",
		"Sharma Traders 3000 party GST",
		"petty 150 chai",
		"ramesh sal 8000",
	}
	p := newTestParser()
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			first, err := p.Parse(context.Background(), line, testDate)
			if err != nil {
				t.Fatal(err)
			}
			rendered := Render(first)
			second, err := p.Parse(context.Background(), rendered, first.Date)
			if err != nil {
				t.Fatalf("re-parse of %q failed: %v", rendered, err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Errorf("round trip diverged:\n first: %+v\nsecond: %+v\nrendered: %q", first, second, rendered)
			}
		})
	}
}
