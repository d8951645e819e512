package service

import (
	"sort"

	"luckydraw/models"
)

type summaryKey struct {
	rank int
	name string
}

// SummarizeBatch groups results by (rank, name) and sorts the groups by rank.
// Groups with equal rank keep first-seen order.
func SummarizeBatch(results []models.DrawnResult) []models.SummaryEntry {
	index := make(map[summaryKey]int)
	summary := make([]models.SummaryEntry, 0)

	for _, r := range results {
		key := summaryKey{rank: r.Rank, name: r.Name}
		if i, ok := index[key]; ok {
			summary[i].Count++
			continue
		}
		index[key] = len(summary)
		summary = append(summary, models.SummaryEntry{
			Rank:             r.Rank,
			Name:             r.Name,
			RequiresShipping: r.RequiresShipping,
			Count:            1,
		})
	}

	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].Rank < summary[j].Rank
	})
	return summary
}

// NeedsShipping reports whether any summary entry requires shipping
func NeedsShipping(summary []models.SummaryEntry) bool {
	for _, entry := range summary {
		if entry.RequiresShipping {
			return true
		}
	}
	return false
}
