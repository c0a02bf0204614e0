package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wyfcoding/pensiondb/internal/pension/application"
	"github.com/wyfcoding/pensiondb/internal/pension/domain"
	"github.com/wyfcoding/pensiondb/internal/pension/infrastructure/persistence"
	"github.com/wyfcoding/pensiondb/pkg/cache"
	"github.com/wyfcoding/pensiondb/pkg/db"
)

var (
	errConfirmReset     = errors.New("seed deletes every fixture table; re-run with --yes to confirm")
	errMigrateInProd    = errors.New("--migrate is not allowed in production")
	errFixtureLoginFail = errors.New("one or more fixture credentials failed verification")
)

func seedOptions(rt *runEnv) application.SeedOptions {
	return application.SeedOptions{
		BcryptCost:             rt.cfg.Seed.BcryptCost,
		PaymentMonths:          rt.cfg.Seed.PaymentMonths,
		TransactionsPerAccount: rt.cfg.Seed.TransactionsPerAccount,
		Production:             rt.cfg.IsProduction(),
	}
}

// migrate 仅用于开发方便
func migrate(ctx context.Context, rt *runEnv, d *db.DB) error {
	if rt.cfg.IsProduction() {
		return errMigrateInProd
	}
	if err := d.WithContext(ctx).AutoMigrate(domain.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	rt.logger.InfoContext(ctx, "schema migrated")
	return nil
}

func (a *app) seedCmd() *cobra.Command {
	var confirmed, autoMigrate bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Delete every fixture table and insert the full fixture set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, rt *runEnv) error {
				if !confirmed {
					return errConfirmReset
				}
				return db.WithSession(ctx, rt.cfg.Database, rt.logger, func(ctx context.Context, d *db.DB) error {
					if autoMigrate {
						if err := migrate(ctx, rt, d); err != nil {
							return err
						}
					}
					seeder := application.NewSeeder(d, persistence.NewFixtureRepository, application.DefaultFixtures(), seedOptions(rt), rt.logger)
					res, err := seeder.Seed(ctx)
					if err != nil {
						return err
					}
					for table, n := range res.Deleted {
						rt.metrics.RecordDeleted(table, n)
					}
					recordInserted(rt, res)
					return res.Render(a.stdout)
				})
			})
		},
	}
	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "confirm deleting existing fixture data")
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "create missing tables before seeding (non-production only)")
	return cmd
}

func (a *app) topUpCmd() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "topup",
		Short: "Insert only the fixture rows that are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, rt *runEnv) error {
				return db.WithSession(ctx, rt.cfg.Database, rt.logger, func(ctx context.Context, d *db.DB) error {
					if autoMigrate {
						if err := migrate(ctx, rt, d); err != nil {
							return err
						}
					}
					topUp := application.NewTopUp(d, persistence.NewFixtureRepository, application.DefaultFixtures(), seedOptions(rt), rt.logger)
					res, err := topUp.Run(ctx)
					if err != nil {
						return err
					}
					recordInserted(rt, res)
					return res.Render(a.stdout)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "create missing tables first (non-production only)")
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print table counts and sample queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, rt *runEnv) error {
				return db.WithSession(ctx, rt.cfg.Database, rt.logger, func(ctx context.Context, d *db.DB) error {
					report, err := application.NewReporter(persistence.NewReportRepository(d.DB), rt.logger).Collect(ctx)
					if err != nil {
						return err
					}
					rt.metrics.MissingTables.Set(float64(len(report.Missing())))
					return report.Render(a.stdout)
				})
			})
		},
	}
}

func (a *app) usersCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List login-capable users and verify the fixture credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, rt *runEnv) error {
				return db.WithSession(ctx, rt.cfg.Database, rt.logger, func(ctx context.Context, d *db.DB) error {
					checker := application.NewLoginChecker(persistence.NewReportRepository(d.DB), application.DefaultFixtures().Users, rt.logger)
					report, err := checker.Check(ctx)
					if err != nil {
						return err
					}
					if err := report.Render(a.stdout); err != nil {
						return err
					}
					if strict && !report.OK() {
						return errFixtureLoginFail
					}
					return nil
				})
			})
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit 1 when any fixture credential is not OK")
	return cmd
}

func (a *app) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check database (and optional cache) connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, rt *runEnv) error {
				rt.metrics.ProbeUp.Set(0)
				err := db.WithSession(ctx, rt.cfg.Database, rt.logger, func(ctx context.Context, d *db.DB) error {
					var pinger application.CachePinger
					if rt.cfg.Redis.Enabled {
						rc := cache.New(rt.cfg.Redis)
						defer rc.Close()
						pinger = rc
					}
					res, err := application.NewProber(d, persistence.NewReportRepository(d.DB), pinger, rt.logger).Probe(ctx)
					if err != nil {
						return err
					}
					return res.Render(a.stdout)
				})
				if err != nil {
					fmt.Fprintln(a.stdout, "database: FAILED")
					if !errors.Is(err, application.ErrProbeFailed) {
						err = fmt.Errorf("%w: %w", application.ErrProbeFailed, err)
					}
					return err
				}
				rt.metrics.ProbeUp.Set(1)
				return nil
			})
		},
	}
}

func recordInserted(rt *runEnv, res *application.SeedResult) {
	for table, n := range res.Inserted {
		rt.metrics.RecordInserted(table, n)
	}
}
