package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSigned(t *testing.T) {
	amount := decimal.NewFromInt(1000)
	tests := []struct {
		kind EntryKind
		want string
	}{
		{KindBill, "1000"},
		{KindPayment, "-1000"},
		{KindSale, "0"},
		{KindExpense, "0"},
	}
	for _, tt := range tests {
		e := LedgerEntry{Kind: tt.kind, Amount: amount}
		if got := e.Signed().String(); got != tt.want {
			t.Errorf("Signed(%s) = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestGSTSplit(t *testing.T) {
	tests := []struct {
		amount   string
		hasGST   bool
		wantBase string
		wantGST  string
	}{
		{"103", true, "100", "3"},
		{"20000", true, "19417.48", "582.52"},
		{"1800.50", true, "1748.06", "52.44"},
		{"103", false, "103", "0"},
	}
	for _, tt := range tests {
		e := LedgerEntry{Amount: decimal.RequireFromString(tt.amount), HasGST: tt.hasGST}
		if got := e.BaseAmount().String(); got != tt.wantBase {
			t.Errorf("BaseAmount(%s, gst=%v) = %s, want %s", tt.amount, tt.hasGST, got, tt.wantBase)
		}
		if got := e.GSTAmount().String(); got != tt.wantGST {
			t.Errorf("GSTAmount(%s, gst=%v) = %s, want %s", tt.amount, tt.hasGST, got, tt.wantGST)
		}
		// The split always reassembles exactly.
		if sum := e.BaseAmount().Add(e.GSTAmount()); !sum.Equal(e.Amount) {
			t.Errorf("base + gst = %s, want %s", sum, e.Amount)
		}
	}
}

func TestEntryKindIsValid(t *testing.T) {
	for _, k := range []EntryKind{KindBill, KindPayment, KindSale, KindExpense} {
		if !k.IsValid() {
			t.Errorf("%q should be valid", k)
		}
	}
	if EntryKind("refund").IsValid() {
		t.Error("unknown kind accepted")
	}
}
