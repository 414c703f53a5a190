package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"battlebrain-service/internal/config"
	"battlebrain-service/internal/domain"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// bankFile is the on-disk seed format: one entry per class/subject bank.
type bankFile []struct {
	Class     string            `json:"class"`
	Subject   string            `json:"subject"`
	Questions []domain.Question `json:"questions"`
}

// NewSeedCmd loads question banks from a JSON file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var bankPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load question banks into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, bankPath)
		},
	}
	cmd.Flags().StringVar(&bankPath, "banks", "config/banks.json", "path to the question bank JSON file")
	return cmd
}

func runSeed(ctx context.Context, configPath, bankPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	raw, err := os.ReadFile(bankPath)
	if err != nil {
		return err
	}
	var banks bankFile
	if err := json.Unmarshal(raw, &banks); err != nil {
		return fmt.Errorf("parse bank file: %w", err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	for _, bank := range banks {
		data, err := json.Marshal(bank.Questions)
		if err != nil {
			return fmt.Errorf("marshal bank %s/%s: %w", bank.Class, bank.Subject, err)
		}
		_, err = db.ExecContext(ctx,
			`INSERT INTO question_banks (class, subject, data) VALUES (?, ?, ?::jsonb)
			 ON CONFLICT (class, subject) DO UPDATE SET data = EXCLUDED.data`,
			bank.Class, bank.Subject, string(data))
		if err != nil {
			return fmt.Errorf("upsert bank %s/%s: %w", bank.Class, bank.Subject, err)
		}
		log.Printf("seeded bank %s/%s (%d questions)", bank.Class, bank.Subject, len(bank.Questions))
	}
	return nil
}
