package service

import (
	"fmt"
	"math/rand"
	"sort"

	"luckydraw/models"

	log "github.com/sirupsen/logrus"
)

// RandomSource yields uniform integers in [0, n)
type RandomSource interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int {
	return rand.Intn(n)
}

// DrawEngine samples prizes without replacement
type DrawEngine struct {
	rng RandomSource
}

// NewDrawEngine creates a draw engine; a nil source uses math/rand
func NewDrawEngine(rng RandomSource) *DrawEngine {
	if rng == nil {
		rng = globalRand{}
	}
	return &DrawEngine{rng: rng}
}

// BuildPool expands the prizes into a flat pool where each rank appears once per remaining unit.
// A fresh slice is returned on every call.
func BuildPool(prizes []*models.Prize) []int {
	pool := make([]int, 0, TotalRemaining(prizes))
	for _, p := range prizes {
		if p == nil {
			continue
		}
		for i := 0; i < p.Remaining; i++ {
			pool = append(pool, p.Rank)
		}
	}
	return pool
}

// TotalRemaining sums the remaining counts
func TotalRemaining(prizes []*models.Prize) int {
	total := 0
	for _, p := range prizes {
		if p != nil && p.Remaining > 0 {
			total += p.Remaining
		}
	}
	return total
}

// Draw picks n units from the prizes, decrementing each picked prize by one.
// The prizes are mutated in place only when the whole draw can be satisfied.
// Results are returned in draw order.
func (e *DrawEngine) Draw(prizes []*models.Prize, n int) ([]models.DrawnResult, error) {
	if n < 1 {
		return nil, ErrInvalidDrawCount
	}

	total := TotalRemaining(prizes)
	if n > total {
		return nil, &InsufficientInventoryError{Requested: n, Available: total}
	}

	snapshot := models.ClonePrizes(prizes)

	ranks := make([]int, 0, n)
	for i := 0; i < n; i++ {
		prize := e.pick(prizes, total)
		ranks = append(ranks, prize.Rank)
		prize.Remaining--
		total--
	}

	return ResolveResults(snapshot, ranks), nil
}

// pick selects one prize with probability remaining/total.
// Equivalent to a uniform index into the expanded pool without building it.
func (e *DrawEngine) pick(prizes []*models.Prize, total int) *models.Prize {
	candidates := make([]*models.Prize, 0, len(prizes))
	cumulative := make([]int, 0, len(prizes))
	running := 0
	for _, p := range prizes {
		if p == nil || p.Remaining <= 0 {
			continue
		}
		running += p.Remaining
		candidates = append(candidates, p)
		cumulative = append(cumulative, running)
	}

	target := e.rng.Intn(total)
	idx := sort.Search(len(cumulative), func(i int) bool {
		return cumulative[i] > target
	})
	return candidates[idx]
}

// ResolveResults turns drawn ranks into results using the prize snapshot.
// Ranks missing from the snapshot are logged and skipped.
func ResolveResults(prizes []*models.Prize, ranks []int) []models.DrawnResult {
	byRank := make(map[int]*models.Prize, len(prizes))
	for _, p := range prizes {
		if p != nil {
			byRank[p.Rank] = p
		}
	}

	results := make([]models.DrawnResult, 0, len(ranks))
	for _, rank := range ranks {
		prize, ok := byRank[rank]
		if !ok {
			log.WithFields(log.Fields{
				"rank":  rank,
				"error": fmt.Errorf("%w: %d", ErrUnknownRank, rank),
			}).Warn("Skipping drawn rank missing from prize list")
			continue
		}
		results = append(results, models.DrawnResult{
			Rank:             prize.Rank,
			Name:             prize.Name,
			RequiresShipping: prize.RequiresShipping,
		})
	}
	return results
}
