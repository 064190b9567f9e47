package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/wordflash/internal/api"
	"github.com/vytor/wordflash/internal/config"
	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/maintenance"
	"github.com/vytor/wordflash/internal/scheduler"
	"github.com/vytor/wordflash/internal/services"
	"github.com/vytor/wordflash/internal/worker"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func retryPolicy(cfg config.Config) services.RetryPolicy {
	p := services.DefaultRetryPolicy
	p.Attempts = cfg.RetryAttempts
	return p
}

func newStudyService(cfg config.Config, st *store) services.StudyService {
	policy := scheduler.NewPolicy(
		scheduler.WithAlpha(cfg.Alpha),
		scheduler.WithUnseenOffset(cfg.UnseenOffset),
		scheduler.WithJitterCeiling(cfg.JitterCeiling),
	)
	options := scheduler.NewOptionGenerator(policy.Rand(), cfg.OptionCount)
	return services.NewStudyService(st.words, st.users, st.progress, policy, options, services.StudyConfig{
		ExcludeLast: cfg.ExcludeLast,
		Retry:       retryPolicy(cfg),
	})
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", a.v.GetString("addr"), "listen address")
	_ = a.v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func (a *app) serve(parent context.Context) error {
	cfg, log := a.cfg, a.log

	log.Info("===========================================")
	log.Info("WordFlash Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_driver=%s", cfg.DBDriver)
	log.Debug("exclude_last=%d, alpha=%.2f, option_count=%d", cfg.ExcludeLast, cfg.Alpha, cfg.OptionCount)
	log.Debug("worker_count=%d, queue_size=%d", cfg.WorkerCount, cfg.QueueSize)
	log.Debug("reconcile_cron=%q", cfg.ReconcileCron)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		log.Debug("closing database connection")
		st.close()
	}()

	reconcile := services.NewReconcileService(st.reconcile, retryPolicy(cfg))

	pool := worker.NewPool(cfg.WorkerCount, cfg.QueueSize)
	pool.Start(context.WithoutCancel(ctx))
	queue := jobs.NewWorkerQueue(pool, reconcile, nil)

	cron := maintenance.New(queue)
	if err := cron.ScheduleReconcile(cfg.ReconcileCron); err != nil {
		pool.Stop()
		return err
	}
	cron.Start()

	srv := &api.Server{
		Study:      newStudyService(cfg, st),
		Reconcile:  reconcile,
		Users:      st.users,
		Jobs:       queue,
		Ready:      st.ready,
		Limiter:    api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		AdminToken: cfg.AdminToken,
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Debug("stopping scheduler")
		cron.Stop()
		log.Debug("shutting down HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error: %v", err)
		}
		log.Debug("stopping worker pool")
		pool.Stop()
		return nil
	})

	err = g.Wait()

	log.Info("===========================================")
	log.Info("WordFlash Server Stopped")
	log.Info("===========================================")
	return err
}
