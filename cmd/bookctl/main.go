package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/book"
	bookrepo "github.com/ovaphlow/pitchfork/service-bookshelf/internal/book/repo"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/schema"
	"github.com/ovaphlow/pitchfork/service-bookshelf/pkg/database"
	"github.com/ovaphlow/pitchfork/service-bookshelf/pkg/utilities"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "bookctl",
		Short:        "Maintenance commands for the bookshelf database",
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the users and books tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := schema.Ensure(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Import books from a JSON file in one transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			books, err := book.LoadSeedFile(path)
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ids, err := utilities.NewIDGeneratorFromEnv()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			if err := schema.Ensure(ctx, db); err != nil {
				return err
			}
			svc := book.NewService(bookrepo.NewBookRepo(db, ids), nil)
			n, err := svc.Import(ctx, books)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d books from %s\n", n, path)
			return nil
		},
	}
	seedCmd.Flags().String("file", "scripts/data.json", "path to the JSON array of books")

	rootCmd.AddCommand(migrateCmd, seedCmd)
	return rootCmd
}

func openDB() (*sqlx.DB, error) {
	cfg := database.ConfigFromEnv()
	sqlDB, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return sqlx.NewDb(sqlDB, cfg.Driver), nil
}
