package service

import (
	"math/rand"
	"testing"

	"luckydraw/models"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeBatch_Scenario(t *testing.T) {
	results := []models.DrawnResult{
		{Rank: 1, Name: "A"},
		{Rank: 1, Name: "A"},
		{Rank: 3, Name: "C"},
	}

	summary := SummarizeBatch(results)

	assert.Equal(t, []models.SummaryEntry{
		{Rank: 1, Name: "A", Count: 2},
		{Rank: 3, Name: "C", Count: 1},
	}, summary)
}

func TestSummarizeBatch_SortsByRankStable(t *testing.T) {
	results := []models.DrawnResult{
		{Rank: 3, Name: "C"},
		{Rank: 2, Name: "Y", RequiresShipping: true},
		{Rank: 2, Name: "X"},
		{Rank: 1, Name: "A", RequiresShipping: true},
		{Rank: 2, Name: "Y", RequiresShipping: true},
	}

	summary := SummarizeBatch(results)

	assert.Equal(t, []models.SummaryEntry{
		{Rank: 1, Name: "A", RequiresShipping: true, Count: 1},
		{Rank: 2, Name: "Y", RequiresShipping: true, Count: 2},
		{Rank: 2, Name: "X", Count: 1},
		{Rank: 3, Name: "C", Count: 1},
	}, summary)
}

func TestSummarizeBatch_CountsMatchBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	names := []string{"A", "B", "C", "D", "E"}

	for trial := 0; trial < 50; trial++ {
		results := make([]models.DrawnResult, rng.Intn(100))
		for i := range results {
			rank := 1 + rng.Intn(len(names))
			results[i] = models.DrawnResult{Rank: rank, Name: names[rank-1]}
		}

		summary := SummarizeBatch(results)

		total := 0
		for i, entry := range summary {
			total += entry.Count
			if i > 0 {
				assert.LessOrEqual(t, summary[i-1].Rank, entry.Rank)
			}
		}
		assert.Equal(t, len(results), total)
	}
}

func TestSummarizeBatch_Empty(t *testing.T) {
	summary := SummarizeBatch(nil)
	assert.NotNil(t, summary)
	assert.Empty(t, summary)
	assert.False(t, NeedsShipping(summary))
}

func TestNeedsShipping(t *testing.T) {
	assert.False(t, NeedsShipping([]models.SummaryEntry{{Rank: 3, Count: 2}}))
	assert.True(t, NeedsShipping([]models.SummaryEntry{{Rank: 3, Count: 2}, {Rank: 1, RequiresShipping: true, Count: 1}}))
}
