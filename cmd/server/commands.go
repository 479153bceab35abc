package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warp/hr-engine/api"
	"github.com/warp/hr-engine/award"
)

const shutdownTimeout = 30 * time.Second

var (
	flagYear     int
	flagForce    bool
	flagScenario string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the award scheduler",
	RunE:  runServe,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one year's awards and print the result",
	RunE:  runGenerate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the database and load a demo scenario",
	RunE:  runSeed,
}

// =============================================================================
// SERVE
// =============================================================================

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	scheduler := award.NewScheduler(a.generator, a.logger)
	scheduler.Enabled = cfg.SchedulerEnabled
	scheduler.CheckInterval = cfg.SchedulerInterval
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.NewRouter(a.handler, cfg.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server starting", zap.String("addr", cfg.Addr), zap.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}

// =============================================================================
// GENERATE
// =============================================================================

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	year := flagYear
	if year == 0 {
		year = time.Now().Year() - 1
	}
	res, err := a.generator.Generate(ctx, award.GenerateRequest{Year: year, Force: flagForce})
	if err != nil {
		return err
	}

	type awardLine struct {
		Rank       int    `json:"rank"`
		EmployeeID string `json:"employeeId"`
		Score      int64  `json:"finalScore"`
		Level      string `json:"awardLevel"`
		Bonus      int64  `json:"bonusAmount"`
	}
	summary := struct {
		Year       int              `json:"year"`
		Statistics award.Statistics `json:"statistics"`
		Replaced   int              `json:"replaced"`
		Awards     []awardLine      `json:"awards"`
	}{Year: res.Year, Statistics: res.Statistics, Replaced: res.Replaced}
	for _, r := range res.Records {
		summary.Awards = append(summary.Awards, awardLine{r.Rank, r.EmployeeID, r.FinalScore, string(r.Level), r.BonusAmount})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// =============================================================================
// SEED
// =============================================================================

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.handler.ApplyScenario(ctx, flagScenario); err != nil {
		if errors.Is(err, api.ErrUnknownScenario) {
			list, _ := api.Scenarios()
			ids := make([]string, len(list))
			for i, s := range list {
				ids[i] = s.ID
			}
			a.logger.Error("unknown scenario", zap.String("scenario", flagScenario), zap.Strings("available", ids))
		}
		return err
	}
	cmd.Printf("scenario %q loaded into %s\n", flagScenario, cfg.DBPath)
	return nil
}
