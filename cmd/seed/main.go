package main

import (
	"fmt"
	"os"

	"github.com/anonto42/kratos-hub/backend/internal/repositories"
	"github.com/anonto42/kratos-hub/backend/internal/seed"
	"github.com/anonto42/kratos-hub/backend/pkg/config"
	"github.com/spf13/cobra"
)

func main() {
	var opts seed.Options
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Fill the databases with fake users, posts and likes",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := config.NewLogger(cfg)

			db, err := config.InitDB(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize databases: %w", err)
			}
			defer db.CloseDB()

			ctx := cmd.Context()
			if err := db.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			seeder := seed.NewSeeder(
				repositories.NewPostgresUserRepository(db.Postgres),
				repositories.NewMongoPostRepository(db.MongoDB),
				repositories.NewPostgresLikeRepository(db.Postgres),
				logger,
			)
			_, err = seeder.Run(ctx, opts)
			return err
		},
	}
	cmd.Flags().IntVar(&opts.Users, "users", 10, "number of users to create")
	cmd.Flags().IntVar(&opts.PostsPerUser, "posts", 5, "posts per user")
	cmd.Flags().IntVar(&opts.LikeChance, "like-chance", 30, "chance (0-100) that a user likes a post")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 picks one)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
