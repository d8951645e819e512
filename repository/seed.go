package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"luckydraw/database"
	"luckydraw/models"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// ReadPrizesCSV parses rank,name,remaining,requires_shipping rows.
// A header row and malformed rows are skipped; a later row for the same rank wins.
func ReadPrizesCSV(r io.Reader) ([]*models.Prize, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	byRank := make(map[int]*models.Prize)
	var order []int
	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line++

		prize, err := parsePrizeRecord(record)
		if err != nil {
			if line == 1 {
				continue // header
			}
			log.WithFields(log.Fields{
				"line":   line,
				"record": record,
				"error":  err,
			}).Warn("Skipping malformed prize row")
			continue
		}

		if _, seen := byRank[prize.Rank]; !seen {
			order = append(order, prize.Rank)
		}
		byRank[prize.Rank] = prize
	}

	prizes := make([]*models.Prize, 0, len(order))
	for _, rank := range order {
		prizes = append(prizes, byRank[rank])
	}
	return prizes, nil
}

func parsePrizeRecord(record []string) (*models.Prize, error) {
	if len(record) < 3 || len(record) > 4 {
		return nil, fmt.Errorf("expected 3 or 4 fields, got %d", len(record))
	}

	rank, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil || rank < 1 {
		return nil, fmt.Errorf("invalid rank %q", record[0])
	}

	name := strings.TrimSpace(record[1])
	if name == "" {
		return nil, errors.New("empty prize name")
	}

	remaining, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil || remaining < 0 {
		return nil, fmt.Errorf("invalid remaining count %q", record[2])
	}

	requiresShipping := false
	if len(record) == 4 && strings.TrimSpace(record[3]) != "" {
		requiresShipping, err = strconv.ParseBool(strings.TrimSpace(record[3]))
		if err != nil {
			return nil, fmt.Errorf("invalid requires_shipping %q", record[3])
		}
	}

	return &models.Prize{
		Rank:             rank,
		Name:             name,
		Remaining:        remaining,
		RequiresShipping: requiresShipping,
	}, nil
}

// SeedPrizes upserts prizes in one transaction. With replace, prizes missing
// from the list are deleted.
func SeedPrizes(ctx context.Context, db *database.DB, prizes []*models.Prize, replace bool) error {
	return db.WithTransaction(ctx, func(tx pgx.Tx) error {
		repo := newPrizeRepositoryWithTx(tx)

		ranks := make([]int, 0, len(prizes))
		for _, prize := range prizes {
			if err := repo.Upsert(ctx, prize); err != nil {
				return err
			}
			ranks = append(ranks, prize.Rank)
		}

		if replace {
			deleted, err := repo.DeleteExcept(ctx, ranks)
			if err != nil {
				return err
			}
			if deleted > 0 {
				log.Infof("Removed %d prizes not present in the seed file", deleted)
			}
		}

		log.WithFields(log.Fields{
			"prizeCount": len(prizes),
			"replace":    replace,
		}).Info("Seeded prize inventory")
		return nil
	})
}
