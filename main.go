package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"luckydraw/cmd"
	"luckydraw/database"
	"luckydraw/repository"

	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(); err != nil {
				log.Fatal("Migration error: ", err)
			}
			return
		case "seed":
			if err := handleSeedCommand(); err != nil {
				log.Fatal("Seed error: ", err)
			}
			return
		}
	}

	// Normal bot operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// Run the application
	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: luckydraw migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleSeedCommand loads prize inventory from a CSV file:
// luckydraw seed <file.csv> [--replace]
// Stop the bot first. A running bot saves its in-memory counts after every
// draw and would overwrite the seeded values.
func handleSeedCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: luckydraw seed <file.csv> [--replace] (stop the bot before seeding)")
	}

	path := os.Args[2]
	replace := false
	for _, arg := range os.Args[3:] {
		switch arg {
		case "--replace":
			replace = true
		default:
			return fmt.Errorf("unknown seed flag: %s", arg)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	prizes, err := repository.ReadPrizesCSV(file)
	if err != nil {
		return err
	}
	if len(prizes) == 0 {
		return fmt.Errorf("%s contains no valid prize rows", path)
	}

	log.Warn("Seeding while the bot is running is unsupported: its next draw overwrites the seeded counts")

	ctx := context.Background()
	databaseURL := database.ConstructDatabaseURL(os.Getenv("DATABASE_URL"), os.Getenv("DATABASE_NAME"))
	if err := database.RunMigrationsWithURL(databaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := repository.SeedPrizes(ctx, db, prizes, replace); err != nil {
		return err
	}

	total := 0
	for _, p := range prizes {
		total += p.Remaining
	}
	log.WithFields(log.Fields{
		"file":    path,
		"prizes":  len(prizes),
		"units":   total,
		"replace": replace,
	}).Info("Prize inventory seeded")
	return nil
}
