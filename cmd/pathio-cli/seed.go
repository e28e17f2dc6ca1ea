// Package main provides the seed command.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/triptech-ai/pathio-guide/internal/storage"
)

// newSeedCmd creates the seed subcommand.
func newSeedCmd() *cobra.Command {
	var (
		file string
		wipe bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the place store from a JSON dataset",
		Long: `Seed creates the places table if missing and loads records from a JSON
file: an array of objects with name, tambon, category, description,
highlight, latitude, longitude, image_url and image_urls fields. Only name
and tambon are required.

With --wipe the table is emptied first; otherwise records are appended.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read dataset: %w", err)
			}

			var places []storage.Place
			if err := json.Unmarshal(data, &places); err != nil {
				return fmt.Errorf("parse dataset: %w", err)
			}
			if len(places) == 0 {
				return fmt.Errorf("dataset is empty")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			db, err := storage.Open(cfg.Database.Driver, cfg.DatabaseDSN(), storage.OpenOptions{})
			if err != nil {
				return fmt.Errorf("open place store: %w", err)
			}
			defer db.Close()

			if err := storage.EnsureSchema(ctx, db, cfg.Database.Driver); err != nil {
				return err
			}

			if wipe {
				if _, err := db.ExecContext(ctx, "DELETE FROM places"); err != nil {
					return fmt.Errorf("wipe places: %w", err)
				}
				logger.Info().Msg("Cleared existing places")
			}

			bar := progressbar.NewOptions(len(places),
				progressbar.OptionSetDescription("seeding places"),
				progressbar.OptionShowCount(),
			)

			inserted := 0
			for i := range places {
				if places[i].Name == "" {
					logger.Warn().Int("index", i).Msg("Skipping record without a name")
					_ = bar.Add(1)
					continue
				}
				if err := storage.InsertPlace(ctx, db, places[i]); err != nil {
					return fmt.Errorf("insert %q: %w", places[i].Name, err)
				}
				inserted++
				_ = bar.Add(1)
			}
			fmt.Println()

			logger.Info().Int("inserted", inserted).Int("total", len(places)).Msg("Seed complete")
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the JSON dataset (required)")
	cmd.Flags().BoolVar(&wipe, "wipe", false, "empty the places table before seeding")
	return cmd
}
