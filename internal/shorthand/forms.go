package shorthand

import (
	"context"
	"regexp"
	"strings"

	"github.com/rkhatri/munim/internal/models"
)

var (
	// <party> (<D/M/YY>) <bill-no> <amount> [GR <gr>] [GST]
	billWithRefRe = regexp.MustCompile(`^(.+?)\s*\((\d{1,2}/\d{1,2}/\d{2})\)\s+([A-Za-z0-9][A-Za-z0-9/-]*)\s+(\d+(?:\.\d+)?)(\s+.*)?$`)

	// <party> (date: <D/M/YY>) <amount>
	billSimpleRe = regexp.MustCompile(`(?i)^(.+?)\s*\(date:\s*(\d{1,2}/\d{1,2}/\d{2})\)\s+(\d+(?:\.\d+)?)\s*$`)
)

// categories maps a leading expense token to its canonical category.
var categories = map[string]string{
	"home":    "home",
	"rent":    "rent",
	"petty":   "petty",
	"poly":    "poly",
	"food":    "food",
	"gp":      "gp",
	"tea":     "tea",
	"freight": "freight",
}

// categoryTokens renders a canonical category back to its input token.
var categoryTokens = map[string]string{
	"home":    "Home",
	"rent":    "Rent",
	"petty":   "Petty",
	"poly":    "Poly",
	"food":    "Food",
	"gp":      "GP",
	"tea":     "Tea",
	"freight": "Freight",
}

// matchBillWithRef handles form 1:
//
//	<party-name> (<D/M/YY>) <bill-no> <amount> [GR <gr>] [GST]
//
// An unknown party name is accepted but flagged for manual resolution.
func matchBillWithRef(p *Parser, ctx context.Context, line string, _ models.Date) (*models.ParsedEntry, bool, error) {
	m := billWithRefRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false, nil
	}

	date, err := parseShortDate(m[2])
	if err != nil {
		return nil, true, &models.ParseError{Line: line, Msg: err.Error()}
	}
	amount, err := parseAmount(m[4])
	if err != nil {
		return nil, true, &models.ParseError{Line: line, Msg: err.Error()}
	}

	entry := &models.ParsedEntry{
		Kind:      models.KindBill,
		PartyName: strings.TrimSpace(m[1]),
		Date:      date,
		Amount:    amount,
		RefNo:     m[3],
		HasGST:    hasGST(line),
	}
	if party, found := p.resolver.Resolve(ctx, entry.PartyName); found {
		entry.PartyID = party.ID
		entry.PartyName = party.Name
		entry.IsValidParty = true
	}

	rest := strings.Fields(m[5])
	for i := 0; i < len(rest); i++ {
		if strings.EqualFold(rest[i], "GR") && i+1 < len(rest) {
			entry.Description = "GR: " + rest[i+1]
			i++
		}
	}
	return entry, true, nil
}

// matchBillSimple handles form 2: <party-name> (date: <D/M/YY>) <amount>.
func matchBillSimple(p *Parser, ctx context.Context, line string, _ models.Date) (*models.ParsedEntry, bool, error) {
	m := billSimpleRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false, nil
	}

	date, err := parseShortDate(m[2])
	if err != nil {
		return nil, true, &models.ParseError{Line: line, Msg: err.Error()}
	}
	amount, err := parseAmount(m[3])
	if err != nil {
		return nil, true, &models.ParseError{Line: line, Msg: err.Error()}
	}

	entry := &models.ParsedEntry{
		Kind:      models.KindBill,
		PartyName: strings.TrimSpace(m[1]),
		Date:      date,
		Amount:    amount,
	}
	if party, found := p.resolver.Resolve(ctx, entry.PartyName); found {
		entry.PartyID = party.ID
		entry.PartyName = party.Name
		entry.IsValidParty = true
	}
	return entry, true, nil
}

// matchNumberedSale handles form 3: a serial token like "7." starts the
// line. Default mode is cash; a trailing "net" switches to digital with
// everything after it as a note; any other trailer is a credit-party
// reference that must resolve.
func matchNumberedSale(p *Parser, ctx context.Context, line string, date models.Date) (*models.ParsedEntry, bool, error) {
	tokens := strings.Fields(line)
	serial, ok := saleNumber(tokens[0])
	if !ok {
		return nil, false, nil
	}

	if len(tokens) < 2 || !isAmount(tokens[1]) {
		return nil, true, &models.ParseError{Line: line, Msg: "no amount found in sale line"}
	}
	amount, err := parseAmount(tokens[1])
	if err != nil {
		return nil, true, &models.ParseError{Line: line, Msg: err.Error()}
	}

	entry := &models.ParsedEntry{
		Kind:       models.KindSale,
		SaleNumber: serial,
		Date:       date,
		Amount:     amount,
		Mode:       models.ModeCash,
	}

	trailing := tokens[2:]
	if len(trailing) == 0 {
		return entry, true, nil
	}
	if strings.EqualFold(trailing[0], "net") {
		entry.Mode = models.ModeDigital
		entry.Note = strings.Join(trailing[1:], " ")
		return entry, true, nil
	}

	ref := strings.Join(trailing, " ")
	ref = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(ref, "("), ")"))
	party, found := p.resolver.Resolve(ctx, ref)
	if !found {
		return nil, true, &models.UnknownPartyError{Name: ref}
	}
	entry.Mode = models.ModeCredit
	entry.PartyName = party.Name
	entry.PartyID = party.ID
	entry.IsValidParty = true
	return entry, true, nil
}

// matchStaffPayroll handles form 4: <staff-name> <sal|adv> <amount>.
func matchStaffPayroll(_ *Parser, _ context.Context, line string, date models.Date) (*models.ParsedEntry, bool, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 3 {
		return nil, false, nil
	}
	mode := strings.ToLower(tokens[1])
	if mode != "sal" && mode != "adv" {
		return nil, false, nil
	}
	if !isAmount(tokens[2]) {
		return nil, false, nil
	}
	amount, err := parseAmount(tokens[2])
	if err != nil {
		return nil, true, &models.ParseError{Line: line, Msg: err.Error()}
	}

	return &models.ParsedEntry{
		Kind:        models.KindExpense,
		Category:    "salary",
		Date:        date,
		Amount:      amount,
		Description: tokens[0] + " " + mode,
	}, true, nil
}

// matchPartyPayment handles form 5: <party-name> <amount> party [GST].
// The party name must resolve; this form never degrades to an expense.
func matchPartyPayment(p *Parser, ctx context.Context, line string, date models.Date) (*models.ParsedEntry, bool, error) {
	tokens := strings.Fields(line)
	if len(tokens) > 0 && strings.EqualFold(tokens[len(tokens)-1], "GST") {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) < 3 || !strings.EqualFold(tokens[len(tokens)-1], "party") || !isAmount(tokens[len(tokens)-2]) {
		return nil, false, nil
	}

	amount, err := parseAmount(tokens[len(tokens)-2])
	if err != nil {
		return nil, true, &models.ParseError{Line: line, Msg: err.Error()}
	}
	name := strings.Join(tokens[:len(tokens)-2], " ")
	party, found := p.resolver.Resolve(ctx, name)
	if !found {
		return nil, true, &models.UnknownPartyError{Name: name}
	}

	return &models.ParsedEntry{
		Kind:         models.KindPayment,
		Category:     models.CategoryPartyPayment,
		PartyName:    party.Name,
		PartyID:      party.ID,
		IsValidParty: true,
		Date:         date,
		Amount:       amount,
		HasGST:       hasGST(line),
	}, true, nil
}

// matchCategoryExpense handles form 6: a fixed category vocabulary token
// followed by an amount, with optional trailing description.
func matchCategoryExpense(_ *Parser, _ context.Context, line string, date models.Date) (*models.ParsedEntry, bool, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return nil, false, nil
	}
	category, ok := categories[strings.ToLower(tokens[0])]
	if !ok || !isAmount(tokens[1]) {
		return nil, false, nil
	}
	amount, err := parseAmount(tokens[1])
	if err != nil {
		return nil, true, &models.ParseError{Line: line, Msg: err.Error()}
	}

	var desc []string
	for _, tok := range tokens[2:] {
		if strings.EqualFold(tok, "GST") {
			continue
		}
		desc = append(desc, tok)
	}

	return &models.ParsedEntry{
		Kind:        models.KindExpense,
		Category:    category,
		Date:        date,
		Amount:      amount,
		Description: strings.Join(desc, " "),
		HasGST:      hasGST(line),
	}, true, nil
}

// matchFallback handles form 7: split the line at its first numeric
// token. A label that resolves against the party directory yields a
// payment; anything else degrades to a generic petty expense with the
// label as description. No numeric token means the line is unparseable.
func matchFallback(p *Parser, ctx context.Context, line string, date models.Date) (*models.ParsedEntry, bool, error) {
	tokens := strings.Fields(line)
	idx := -1
	for i, tok := range tokens {
		if isAmount(tok) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false, nil
	}

	amount, err := parseAmount(tokens[idx])
	if err != nil {
		return nil, true, &models.ParseError{Line: line, Msg: err.Error()}
	}
	label := strings.Join(tokens[:idx], " ")

	if party, found := p.resolver.Resolve(ctx, label); found {
		return &models.ParsedEntry{
			Kind:         models.KindPayment,
			Category:     models.CategoryPartyPayment,
			PartyName:    party.Name,
			PartyID:      party.ID,
			IsValidParty: true,
			Date:         date,
			Amount:       amount,
			HasGST:       hasGST(line),
		}, true, nil
	}

	return &models.ParsedEntry{
		Kind:        models.KindExpense,
		Category:    "petty",
		Date:        date,
		Amount:      amount,
		Description: label,
		HasGST:      hasGST(line),
	}, true, nil
}
