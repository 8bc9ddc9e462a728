// Package shorthand parses the line-oriented free-text entry grammar.
//
// One line is one entry. Eight forms are recognized, tried in priority
// order; the first matching form wins. A line that matches no form and
// carries no numeric token is a parse error, never a fatal one: block
// parsing collects errors per line so the caller can present all of them
// at once.
package shorthand

import (
	"context"
	"strings"

	"github.com/rkhatri/munim/internal/models"
)

// PartyResolver resolves a display name to a party. Resolution is
// advisory for bill forms and mandatory for payment and credit-sale forms.
type PartyResolver interface {
	Resolve(ctx context.Context, name string) (*models.Party, bool)
}

// Parser turns shorthand lines into typed entries. It holds no mutable
// state and is safe for concurrent use.
type Parser struct {
	resolver PartyResolver
}

// New creates a Parser resolving party names through the given resolver.
func New(resolver PartyResolver) *Parser {
	return &Parser{resolver: resolver}
}

// matcher tries one grammar form against a trimmed line.
// ok reports whether the form claimed the line; with ok set, a non-nil
// error means the form matched but the line is invalid (bad date, unknown
// mandatory party), and no later form is tried.
type matcher func(p *Parser, ctx context.Context, line string, date models.Date) (entry *models.ParsedEntry, ok bool, err error)

// matchers is the grammar dispatch table, in priority order.
var matchers = []matcher{
	matchBillWithRef,
	matchBillSimple,
	matchNumberedSale,
	matchStaffPayroll,
	matchPartyPayment,
	matchCategoryExpense,
	matchFallback,
}

// Parse parses a single trimmed, non-empty line. contextDate supplies the
// entry date for forms without a date token.
func (p *Parser) Parse(ctx context.Context, line string, contextDate models.Date) (*models.ParsedEntry, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, &models.ParseError{Line: line, Msg: "empty line"}
	}

	for _, m := range matchers {
		entry, ok, err := m(p, ctx, line, contextDate)
		if !ok {
			continue
		}
		if err != nil {
			return nil, err
		}
		return entry, nil
	}
	return nil, &models.ParseError{Line: line, Msg: "no amount found"}
}

// LineResult is the outcome of parsing one non-blank line of a block.
// Exactly one of Entry and Err is set.
type LineResult struct {
	Line  string
	Entry *models.ParsedEntry
	Err   error
}

// ParseBlock parses a multi-line block independently per line. Blank
// lines are skipped; one line's failure never aborts the rest. The result
// is ordered parallel to the non-blank input lines.
func (p *Parser) ParseBlock(ctx context.Context, text string, contextDate models.Date) []LineResult {
	var results []LineResult
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		entry, err := p.Parse(ctx, line, contextDate)
		results = append(results, LineResult{Line: line, Entry: entry, Err: err})
	}
	return results
}

// ParsePaymentLine parses one line from a party's payment screen:
//
//	[D/M/YY] <amount> [GST] [ref-no]
//
// The owning party comes from the screen context, so the line never names
// one. A leading date token overrides contextDate.
func (p *Parser) ParsePaymentLine(line string, contextDate models.Date) (*models.ParsedEntry, error) {
	line = strings.TrimSpace(line)
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, &models.ParseError{Line: line, Msg: "empty line"}
	}

	date := contextDate
	if looksLikeDate(tokens[0]) {
		parsed, err := parseShortDate(tokens[0])
		if err != nil {
			return nil, &models.ParseError{Line: line, Msg: err.Error()}
		}
		date = parsed
		tokens = tokens[1:]
	}

	if len(tokens) == 0 || !isAmount(tokens[0]) {
		return nil, &models.ParseError{Line: line, Msg: "no amount found"}
	}
	amount, err := parseAmount(tokens[0])
	if err != nil {
		return nil, &models.ParseError{Line: line, Msg: err.Error()}
	}

	entry := &models.ParsedEntry{
		Kind:     models.KindPayment,
		Category: models.CategoryPartyPayment,
		Date:     date,
		Amount:   amount,
		HasGST:   hasGST(line),
	}
	for _, tok := range tokens[1:] {
		if strings.EqualFold(tok, "GST") {
			continue
		}
		entry.RefNo = tok
		break
	}
	return entry, nil
}

// hasGST reports whether the literal "GST" appears anywhere in the line.
// It is an orthogonal flag, not part of any form's grammar.
func hasGST(line string) bool {
	return strings.Contains(strings.ToUpper(line), "GST")
}
