package testutil

import (
	"time"

	"luckydraw/models"
)

// CreateTestPrize creates a prize with default values
func CreateTestPrize(rank int, name string, remaining int) *models.Prize {
	now := time.Now()
	return &models.Prize{
		Rank:      rank,
		Name:      name,
		Remaining: remaining,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateShippedTestPrize creates a prize that must be shipped to the winner
func CreateShippedTestPrize(rank int, name string, remaining int) *models.Prize {
	prize := CreateTestPrize(rank, name, remaining)
	prize.RequiresShipping = true
	return prize
}

// CreateTestInventory returns a three-rank inventory of 100 units
func CreateTestInventory() []*models.Prize {
	return []*models.Prize{
		CreateShippedTestPrize(1, "Grand Prize", 2),
		CreateShippedTestPrize(2, "Tablet", 3),
		CreateTestPrize(3, "Sticker", 95),
	}
}
