package main

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"propharvest"
	"propharvest/internal/adapters/observability"
	"propharvest/internal/app"
	"propharvest/internal/domain"
	"propharvest/internal/shared"
	mysqlrepo "propharvest/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("workers", cfg.Workers).
		Strs("locations", cfg.Locations).
		Strs("sites", cfg.Sites).
		Str("listing_type", cfg.ListingType).
		Msg("harvester starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	sites, listingType, err := propharvest.ValidateRequest(cfg.Sites, cfg.ListingType)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid harvest configuration")
	}
	clients, err := propharvest.NewSiteClients(cfg.SiteRPS, cfg.Proxy)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize site clients")
	}
	collector := app.NewCollector(clients)

	siteNames := make([]string, 0, len(sites))
	for _, s := range sites {
		siteNames = append(siteNames, string(s))
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, location := range cfg.Locations {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(location string) {
			defer wg.Done()
			defer sem.Release(1)

			res, err := collector.Collect(ctx, domain.SearchInput{
				Location:    location,
				ListingType: listingType,
			}, sites)
			if err != nil {
				log.Warn().Str("location", location).Err(err).Msg("harvest failed")
				return
			}
			for site, serr := range res.SourceErrors {
				log.Warn().Str("location", location).Str("site", string(site)).Err(serr).Msg("source skipped")
			}

			ds := domain.Dataset{
				ID:          uuid.NewString(),
				Location:    location,
				ListingType: listingType,
				Sites:       siteNames,
				Table:       res.Table,
				RowCount:    len(res.Table.Rows),
				CreatedAt:   time.Now().UTC(),
			}
			if err := repo.SaveDataset(ctx, ds); err != nil {
				log.Error().Str("location", location).Err(err).Msg("save dataset failed")
				return
			}
			log.Info().
				Str("location", location).
				Str("dataset", ds.ID).
				Int("rows", len(res.Table.Rows)).
				Int("skipped_records", res.Skipped).
				Msg("harvest ok")
		}(location)
	}

	wg.Wait()
	log.Info().Msg("harvest completed")
}
