package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/shortlinks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/shortlinks/pkg/config"
	"github.com/wadjakorntonsri/shortlinks/pkg/core/domain"
	"github.com/wadjakorntonsri/shortlinks/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbURL string

	root := &cobra.Command{
		Use:          "shortlinks",
		Short:        "Maintenance commands for the links database",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			logger.InitWithWriter(cfg.AppEnv, cfg.LogLevel, cmd.ErrOrStderr())
			if dbURL == "" {
				dbURL = cfg.DatabaseURL
			}
		},
	}
	root.PersistentFlags().StringVar(&dbURL, "db", "", "database URL (defaults to DATABASE_URL)")

	openRepo := func() (*sqlite.SQLiteRepository, error) {
		repo, err := sqlite.NewSQLiteRepository(dbURL)
		if err != nil {
			return nil, fmt.Errorf("connect to db: %w", err)
		}
		return repo, nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Write every link as JSON to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()
			return doExport(cmd.Context(), repo, cmd.OutOrStdout())
		},
	})

	var importFile string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Restore links from a JSON export, keeping ids and counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(importFile)
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer file.Close()

			repo, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			count, err := doImport(cmd.Context(), repo, file)
			if err != nil {
				return err
			}
			logger.Info().Int("imported", count).Msg("Import finished")
			return nil
		},
	}
	importCmd.Flags().StringVar(&importFile, "file", "", "JSON file to import")
	_ = importCmd.MarkFlagRequired("file")
	root.AddCommand(importCmd)

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the links table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepo()
			if err != nil {
				return err
			}
			logger.Info().Msg("Database schema is up to date")
			return repo.Close()
		},
	})

	return root
}

func doExport(ctx context.Context, repo *sqlite.SQLiteRepository, w io.Writer) error {
	links, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(links); err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}
	return nil
}

func doImport(ctx context.Context, repo *sqlite.SQLiteRepository, r io.Reader) (int, error) {
	var links []domain.Link
	if err := json.NewDecoder(r).Decode(&links); err != nil {
		return 0, fmt.Errorf("decode failed: %w", err)
	}

	count := 0
	for i := range links {
		l := &links[i]

		// Records without an id get a fresh one
		if l.ID <= 0 {
			if err := repo.Create(ctx, l); err != nil {
				logger.Warn().Err(err).Str("name", l.Name).Msg("Failed to import link")
				continue
			}
			count++
			continue
		}

		inserted, err := repo.Restore(ctx, l)
		if err != nil {
			logger.Warn().Err(err).Int64("id", l.ID).Msg("Failed to import link")
			continue
		}
		if !inserted {
			logger.Info().Int64("id", l.ID).Msg("Skipping existing id")
			continue
		}
		count++
	}
	return count, nil
}
