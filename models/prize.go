package models

import (
	"time"
)

// Prize represents one prize tier in the draw inventory
type Prize struct {
	Rank             int       `db:"rank"`
	Name             string    `db:"name"`
	Remaining        int       `db:"remaining"`
	RequiresShipping bool      `db:"requires_shipping"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// IsHighRank reports whether the rank belongs to the top prizes (rank 1 or 2)
func IsHighRank(rank int) bool {
	return rank == 1 || rank == 2
}

// ClonePrizes returns a deep copy of the prize list
func ClonePrizes(prizes []*Prize) []*Prize {
	cloned := make([]*Prize, 0, len(prizes))
	for _, p := range prizes {
		if p == nil {
			continue
		}
		c := *p
		cloned = append(cloned, &c)
	}
	return cloned
}

// DrawnResult is a copy of the prize fields taken at draw time.
// Later inventory changes never alter an announced result.
type DrawnResult struct {
	Rank             int
	Name             string
	RequiresShipping bool
}

// IsHighRank reports whether the result needs the suspense reveal
func (r DrawnResult) IsHighRank() bool {
	return IsHighRank(r.Rank)
}

// SummaryEntry is one (rank, name) group of a draw batch
type SummaryEntry struct {
	Rank             int
	Name             string
	RequiresShipping bool
	Count            int
}

// DrawOutcome is returned to the caller after a successful draw
type DrawOutcome struct {
	Results        []DrawnResult
	Prizes         []*Prize // post-draw snapshot
	TotalRemaining int
}
