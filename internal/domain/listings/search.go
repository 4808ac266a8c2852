package listings

import (
	"strings"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 200
)

// SearchParams describe catalog filters. Results are always newest first.
type SearchParams struct {
	Owner         OwnerID
	Text          string
	Category      Category
	PriceMin      int64
	PriceMax      int64
	OnlyAvailable bool
	Limit         int
	Offset        int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.Text = strings.TrimSpace(normalized.Text)
	normalized.Category = Category(strings.ToLower(strings.TrimSpace(string(normalized.Category))))
	if normalized.PriceMin < 0 {
		normalized.PriceMin = 0
	}
	if normalized.PriceMax > 0 && normalized.PriceMax < normalized.PriceMin {
		normalized.PriceMax = 0
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	return normalized
}

// Matches applies the filters in memory; the text filter is a case-insensitive
// substring test over title, description and category.
func (p SearchParams) Matches(l *Listing) bool {
	if l == nil {
		return false
	}
	if p.Owner != "" && l.Owner != p.Owner {
		return false
	}
	if p.Category != "" && l.Category != p.Category {
		return false
	}
	if p.OnlyAvailable && !l.IsAvailable {
		return false
	}
	if p.PriceMin > 0 && l.PricePerDay.Amount < p.PriceMin {
		return false
	}
	if p.PriceMax > 0 && l.PricePerDay.Amount > p.PriceMax {
		return false
	}
	if p.Text != "" {
		haystack := strings.ToLower(strings.Join([]string{l.Title, l.Description, string(l.Category)}, " "))
		for _, word := range strings.Fields(strings.ToLower(p.Text)) {
			if strings.Contains(haystack, word) {
				return true
			}
		}
		return false
	}
	return true
}
