package wizard

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/quotedesk/quotedesk/internal/auth"
	"github.com/quotedesk/quotedesk/internal/backend"
	"github.com/quotedesk/quotedesk/internal/catalog"
)

// ParseSource tags which strategy produced the items, so callers and
// tests can tell the paths apart instead of inferring from side
// effects.
type ParseSource string

const (
	// ParseSourceRemote means the AI service answered.
	ParseSourceRemote ParseSource = "remote"
	// ParseSourceLocal means the deterministic fallback parser ran.
	ParseSourceLocal ParseSource = "local_fallback"
	// ParseSourceFailed means neither strategy yielded items.
	ParseSourceFailed ParseSource = "failed"
)

// ParseOutcome is the tagged result of a free-text parse.
type ParseOutcome struct {
	Source        ParseSource
	Items         []LineItem
	CustomerName  string
	CustomerPhone string
}

// AIBackend is the remote text-to-items collaborator.
type AIBackend interface {
	Process(ctx context.Context, rawText string) (*backend.AIParseResult, error)
}

// Parser turns raw free text into line items. The AI service is an
// enhancement, not a requirement: any remote failure degrades to the
// local parser without surfacing an error to the user.
type Parser struct {
	ai     AIBackend
	logger *slog.Logger
}

// NewParser constructs a Parser. A nil AI backend skips straight to
// the local strategy.
func NewParser(ai AIBackend, logger *slog.Logger) *Parser {
	return &Parser{ai: ai, logger: logger}
}

// leadingQuantity strips a leading count and optional unit word from a
// candidate line: "100 bags cement" -> qty 100, "cement".
var leadingQuantity = regexp.MustCompile(`(?i)^(\d+)\s*(?:bags?|pcs?|pieces?|kg|units?|boxes?|sets?)?\s*(.+)$`)

// Parse runs the two-tier strategy: remote first, local fallback on
// any remote failure. The only error it returns is a backend 401 —
// that is a session problem, not a parse problem, and must not be
// swallowed.
func (p *Parser) Parse(ctx context.Context, rawText string, entries []catalog.Entry) (ParseOutcome, error) {
	lines := splitCandidates(rawText)
	if len(lines) == 0 {
		return ParseOutcome{Source: ParseSourceFailed}, nil
	}

	if p.ai != nil {
		result, err := p.ai.Process(ctx, rawText)
		switch {
		case err == nil && len(result.LstItems) > 0:
			return remoteOutcome(result), nil
		case auth.IsUnauthorized(err):
			return ParseOutcome{}, err
		default:
			if p.logger != nil {
				p.logger.Info("ai parse unavailable, using local fallback", slog.Any("error", err))
			}
		}
	}

	items := localParse(lines, entries)
	if len(items) == 0 {
		return ParseOutcome{Source: ParseSourceFailed}, nil
	}
	return ParseOutcome{Source: ParseSourceLocal, Items: items}, nil
}

func remoteOutcome(result *backend.AIParseResult) ParseOutcome {
	items := make([]LineItem, 0, len(result.LstItems))
	for _, raw := range result.LstItems {
		item := LineItem{
			ID:        newItemID(),
			Name:      raw.StrItemName,
			Quantity:  raw.DblQuantity,
			UnitPrice: raw.DblUnitPrice,
			Unit:      raw.StrUnit,
			IsCustom:  raw.IntInventoryID == nil,
		}
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		if item.Unit == "" {
			item.Unit = "piece"
		}
		if raw.IntInventoryID != nil {
			ref := &InventoryRef{ID: *raw.IntInventoryID}
			if raw.StrItemCode != nil {
				ref.Code = *raw.StrItemCode
			}
			item.InventoryRef = ref
		}
		items = append(items, item)
	}
	return ParseOutcome{
		Source:        ParseSourceRemote,
		Items:         items,
		CustomerName:  result.StrCustomerName,
		CustomerPhone: result.StrCustomerPhone,
	}
}

func localParse(lines []string, entries []catalog.Entry) []LineItem {
	items := make([]LineItem, 0, len(lines))
	for _, line := range lines {
		quantity := 1.0
		description := line
		if match := leadingQuantity.FindStringSubmatch(line); match != nil {
			if parsed, err := strconv.ParseFloat(match[1], 64); err == nil && parsed > 0 {
				quantity = parsed
				description = strings.TrimSpace(match[2])
			}
		}

		item := LineItem{
			ID:       newItemID(),
			Name:     description,
			Quantity: quantity,
			Unit:     "piece",
			IsCustom: true,
		}
		if entry, ok := catalog.Match(entries, description); ok {
			item.UnitPrice = entry.UnitPrice
			item.IsCustom = false
			item.InventoryRef = &InventoryRef{ID: entry.ID, Code: entry.Code}
			if entry.Unit != "" {
				item.Unit = entry.Unit
			}
		}
		items = append(items, item)
	}
	return items
}

// splitCandidates breaks raw text on commas and newlines, trims each
// piece and drops empties.
func splitCandidates(rawText string) []string {
	parts := strings.FieldsFunc(rawText, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
