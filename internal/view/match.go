package view

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// BestMatchIndex picks the row the cursor should land on after a filter edit:
// exact name, then prefix, then substring, then the closest fuzzy match.
func BestMatchIndex(rows []Row, query string) int {
	trimmed := strings.TrimSpace(query)
	if len(rows) == 0 {
		return -1
	}
	if trimmed == "" {
		return 0
	}
	lower := strings.ToLower(trimmed)
	for i, row := range rows {
		if strings.EqualFold(row.Unit.Name, trimmed) {
			return i
		}
	}
	for i, row := range rows {
		if strings.HasPrefix(strings.ToLower(row.Unit.Name), lower) {
			return i
		}
	}
	for i, row := range rows {
		if strings.Contains(strings.ToLower(row.Unit.Name), lower) {
			return i
		}
	}
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.Unit.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, names)
	if len(ranks) == 0 {
		return 0
	}
	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance {
			best = rank
			continue
		}
		if rank.Distance == best.Distance && rank.OriginalIndex < best.OriginalIndex {
			best = rank
		}
	}
	if best.OriginalIndex < 0 || best.OriginalIndex >= len(rows) {
		return 0
	}
	return best.OriginalIndex
}
