package main

import (
	"context"
	"fmt"
	"os"

	"serenecare/cmd/bootstrap"
	"serenecare/config"
	"serenecare/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "serenecare",
		Short:         "SereneCare appointment scheduling API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	bootstrap.SetupLogger(cfg)
	logrus.Info("Configuration loaded successfully")
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Initialize application with all dependencies
			app, err := bootstrap.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			return app.Run()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return database.MigrateUp(cfg.DB)
		},
	}
	cmd.AddCommand(upCmd)

	// migrate down
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return database.MigrateDown(cfg.DB, steps)
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(downCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed bootstrap data",
	}

	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Create the admin account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			name, _ := cmd.Flags().GetString("name")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			admin, created, err := bootstrap.SeedAdmin(context.Background(), cfg, email, password, name)
			if err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			if !created {
				fmt.Printf("Admin %s already exists, nothing to do.\n", email)
				return nil
			}

			fmt.Printf("Admin %s created with id %s.\n", admin.Email, admin.ID)
			return nil
		},
	}
	adminCmd.Flags().String("email", "", "Admin email address")
	adminCmd.Flags().String("password", "", "Admin password")
	adminCmd.Flags().String("name", "Administrator", "Admin full name")
	_ = adminCmd.MarkFlagRequired("email")
	_ = adminCmd.MarkFlagRequired("password")
	cmd.AddCommand(adminCmd)

	return cmd
}
