package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"cinelist/config"
	"cinelist/internal/database"
	"cinelist/models"
	"cinelist/services/metadata"
)

// Fills in genres for watchlist entries saved without them, so they count
// towards genre-based recommendations.
func main() {
	limit := flag.Int("limit", 0, "maximum number of entries to update (0 = all)")
	dryRun := flag.Bool("dry-run", false, "log lookups without writing")
	flag.Parse()

	if err := run(*limit, *dryRun); err != nil {
		log.Fatalf("Backfill failed: %v", err)
	}
}

func run(limit int, dryRun bool) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Parse(os.LookupEnv)
	if err != nil {
		return err
	}
	if err := cfg.ValidateProvider(); err != nil {
		return err
	}

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		return err
	}
	defer db.Close()

	rps := cfg.Provider.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	repo := database.NewWatchlistRepository(db.Connection())
	svc := metadata.NewService(metadata.NewClient(metadata.Config{
		BaseURL:           cfg.Provider.BaseURL,
		APIKey:            cfg.Provider.APIKey,
		Timeout:           cfg.Provider.Timeout,
		RetryAttempts:     cfg.Provider.RetryAttempts,
		RetryDelay:        cfg.Provider.RetryDelay,
		RequestsPerSecond: rps,
		CacheTTL:          -1,
	}))

	ctx := context.Background()
	entries, err := repo.ListMissingGenres(ctx, limit)
	if err != nil {
		return err
	}

	updated := 0
	for _, entry := range entries {
		lookupType := entry.MediaType
		if lookupType == models.MediaTypeEpisode {
			lookupType = ""
		}

		reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		details, err := svc.Details(reqCtx, entry.ExternalID, lookupType)
		cancel()
		if err != nil {
			log.Printf("Entry %s (%s): lookup failed: %v", entry.ID, entry.ExternalID, err)
			continue
		}
		if len(details.Genres) == 0 {
			log.Printf("Entry %s (%s): provider has no genres, skipping", entry.ID, entry.ExternalID)
			continue
		}

		if dryRun {
			log.Printf("Entry %s (%s): would set genres %v", entry.ID, entry.ExternalID, details.Genres)
			continue
		}
		if err := repo.UpdateGenres(ctx, entry.ID, details.Genres); err != nil {
			log.Printf("Entry %s (%s): update failed: %v", entry.ID, entry.ExternalID, err)
			continue
		}
		updated++
		log.Printf("Entry %s (%s): set genres %v", entry.ID, entry.ExternalID, details.Genres)
	}

	log.Printf("Backfill complete: updated %d of %d entries", updated, len(entries))
	return nil
}
