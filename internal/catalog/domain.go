// Package catalog caches the read-only inventory catalog per wizard
// session and answers search and price-lookup queries against it.
package catalog

import "strings"

// Entry is one inventory catalog row. Entries are reference data: the
// wizard reads prices and names from them but never mutates them.
type Entry struct {
	ID            int64   `json:"id"`
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	UnitPrice     float64 `json:"unitPrice"`
	Unit          string  `json:"unit"`
	StockQuantity int     `json:"stockQuantity"`
}

// Search returns entries whose name or code contains the query,
// case-insensitively. An empty query matches everything. Results are
// capped at limit when limit is positive.
func Search(entries []Entry, query string, limit int) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	matched := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if q == "" ||
			strings.Contains(strings.ToLower(entry.Name), q) ||
			strings.Contains(strings.ToLower(entry.Code), q) {
			matched = append(matched, entry)
			if limit > 0 && len(matched) >= limit {
				break
			}
		}
	}
	return matched
}

// Match finds the first entry whose name or code overlaps the given
// description, case-insensitively, in either direction. Used by the
// local free-text fallback parser to seed prices.
func Match(entries []Entry, description string) (Entry, bool) {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return Entry{}, false
	}
	for _, entry := range entries {
		name := strings.ToLower(entry.Name)
		code := strings.ToLower(entry.Code)
		if strings.Contains(name, desc) || strings.Contains(desc, name) ||
			(code != "" && strings.Contains(desc, code)) {
			return entry, true
		}
	}
	return Entry{}, false
}

// ByID finds an entry by catalog id.
func ByID(entries []Entry, id int64) (Entry, bool) {
	for _, entry := range entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return Entry{}, false
}
