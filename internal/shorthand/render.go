package shorthand

import (
	"fmt"
	"strings"

	"github.com/rkhatri/munim/internal/models"
)

// Render writes a parsed entry back to canonical shorthand. Re-parsing
// the rendered line (with the entry's date as context date) yields a
// structurally equal entry; tests rely on this round trip.
func Render(e *models.ParsedEntry) string {
	switch e.Kind {
	case models.KindBill:
		return renderBill(e)
	case models.KindSale:
		return renderSale(e)
	case models.KindPayment:
		return renderPayment(e)
	case models.KindExpense:
		return renderExpense(e)
	}
	return ""
}

func renderBill(e *models.ParsedEntry) string {
	if e.RefNo == "" {
		return fmt.Sprintf("%s (date: %s) %s", e.PartyName, e.Date.Shorthand(), e.Amount.String())
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) %s %s", e.PartyName, e.Date.Shorthand(), e.RefNo, e.Amount.String())
	if gr, ok := strings.CutPrefix(e.Description, "GR: "); ok {
		fmt.Fprintf(&b, " GR %s", gr)
	}
	if e.HasGST {
		b.WriteString(" GST")
	}
	return b.String()
}

func renderSale(e *models.ParsedEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s", e.SaleNumber, e.Amount.String())
	switch e.Mode {
	case models.ModeDigital:
		b.WriteString(" net")
		if e.Note != "" {
			b.WriteString(" " + e.Note)
		}
	case models.ModeCredit:
		fmt.Fprintf(&b, " (%s)", e.PartyName)
	}
	return b.String()
}

func renderPayment(e *models.ParsedEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s party", e.PartyName, e.Amount.String())
	if e.HasGST {
		b.WriteString(" GST")
	}
	return b.String()
}

func renderExpense(e *models.ParsedEntry) string {
	// Salary and fallback expenses carry their form in the description;
	// vocabulary expenses render their category token.
	var b strings.Builder
	switch {
	case e.Category == "salary":
		fmt.Fprintf(&b, "%s %s", e.Description, e.Amount.String())
	case e.Category == "petty" && e.Description != "" && categories[strings.ToLower(strings.Fields(e.Description)[0])] == "":
		fmt.Fprintf(&b, "%s %s", e.Description, e.Amount.String())
	default:
		fmt.Fprintf(&b, "%s %s", categoryTokens[e.Category], e.Amount.String())
		if e.Description != "" {
			b.WriteString(" " + e.Description)
		}
	}
	if e.Category != "salary" && e.HasGST {
		b.WriteString(" GST")
	}
	return b.String()
}
