package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"domus/internal/config"
	"domus/internal/core"
	"domus/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "domus-admin",
		Short: "Administrative tasks for the domus database",
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage schema migrations",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
					return err
				}
				fmt.Println("migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := storage.RollbackMigration(cfg.SQLiteDBPath); err != nil {
					return err
				}
				fmt.Println("rolled back one migration")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := storage.MigrationVersion(cfg.SQLiteDBPath)
				if err != nil {
					return err
				}
				fmt.Printf("version: %d dirty: %v\n", version, dirty)
				return nil
			},
		},
	)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a small demo portfolio for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(cmd.Context(), cfg.SQLiteDBPath)
		},
	}

	rootCmd.AddCommand(migrateCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, dbPath string) error {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer repo.Close()

	houseID, err := repo.CreateHouse(ctx, core.House{
		Name:    "Villa Nord",
		Address: "12 Rue des Manguiers",
	})
	if err != nil {
		return fmt.Errorf("seed house: %w", err)
	}

	roomID, tenantID, err := repo.CreateTenantWithRoom(ctx,
		core.Room{HouseID: houseID, Name: "Room 1", Type: "single"},
		core.Tenant{
			HouseID:   houseID,
			FirstName: "Awa",
			LastName:  "Diop",
			Phone:     "+221770000001",
			EntryDate: core.NewDate(time.Now().Year()-1, time.September, 1),
			Frequency: core.Monthly,
			Rent:      core.Money{Cents: 45000},
		})
	if err != nil {
		return fmt.Errorf("seed tenant: %w", err)
	}

	paymentID, err := repo.CreatePayment(ctx, core.Payment{
		TenantID: tenantID,
		Month:    core.MonthOf(time.Now()),
		Amount:   core.Money{Cents: 45000},
		Notes:    "seed",
	})
	if err != nil {
		return fmt.Errorf("seed payment: %w", err)
	}

	fmt.Printf("seeded house=%d room=%d tenant=%d payment=%d\n",
		houseID, roomID, tenantID, paymentID)
	return nil
}
