package main

import (
	"context"
	"os"
	_ "time/tzdata"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	zlog "github.com/rs/zerolog/log"

	"panchayattax/authz"
	"panchayattax/billing"
	"panchayattax/collections"
	"panchayattax/config"
	"panchayattax/handlers"
	"panchayattax/jobs"
	"panchayattax/logger"
	"panchayattax/services"
	"panchayattax/storage"
	"panchayattax/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.New(cfg.App.Env, cfg.App.LogLevel)

	app := pocketbase.New()
	app.RootCmd.AddCommand(jobs.NewReconcileCommand(app, log))

	var scheduler *jobs.Scheduler

	// Create collections, seed data and fix drifted statuses on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		if err := collections.Setup(app); err != nil {
			return err
		}
		if err := collections.Seed(app); err != nil {
			log.Warn("seed data failed", map[string]interface{}{"error": err.Error()})
		}
		if fixed, err := collections.ReconcilePaymentStatuses(app); err != nil {
			log.Warn("payment status migration failed", map[string]interface{}{"error": err.Error()})
		} else if fixed > 0 {
			log.Info("payment status migration corrected records", map[string]interface{}{"fixed": fixed})
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		ctx := context.Background()

		objects, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		if m, ok := objects.(*storage.MinioStore); ok {
			if err := m.EnsureBucket(ctx); err != nil {
				return err
			}
		}

		renderer, err := services.NewBillRenderer(cfg.Billing.FontDir)
		if err != nil {
			return err
		}
		if !renderer.SupportsHindi() {
			log.Warn("devanagari fonts not found; hindi bills fall back to english labels", map[string]interface{}{
				"font_dir": cfg.Billing.FontDir,
			})
		}

		st := store.New(app)
		policy := authz.NewPolicy(cfg.Auth.SuperAdminEmail)
		deps := &handlers.Deps{
			Store:    st,
			Renderer: renderer,
			Policy:   policy,
			Log:      log,
			DueDays:  cfg.Billing.DueDays,
			Billing: billing.NewService(st, renderer, objects, policy, log, billing.Options{
				Prefix:        cfg.Billing.Prefix,
				VerifyBaseURL: cfg.Billing.VerifyBaseURL,
				DueDays:       cfg.Billing.DueDays,
				SignedURLTTL:  cfg.Storage.SignedURLTTL,
			}),
		}

		if cfg.RateLimit.Enabled {
			limits := &app.Settings().RateLimits
			limits.Enabled = true
			limits.Rules = append(limits.Rules, core.RateLimitRule{
				Label:       "POST /api/bills/generate",
				MaxRequests: cfg.RateLimit.BillsPerMinute,
				Duration:    60,
			})
		}

		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))
		handlers.Register(se, deps)

		scheduler, err = jobs.NewScheduler(jobs.NewReconciler(app, log), cfg.Jobs.ReconcileSchedule, cfg.Jobs.Timezone, log)
		if err != nil {
			return err
		}
		scheduler.Start()

		return se.Next()
	})

	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		if scheduler != nil {
			scheduler.Stop()
		}
		return e.Next()
	})

	if err := app.Start(); err != nil {
		log.Error("server stopped", err, nil)
		os.Exit(1)
	}
}
