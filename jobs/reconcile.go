// Package jobs runs background maintenance on the tax records.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"panchayattax/collections"
	"panchayattax/logger"
	"panchayattax/services"
)

// Reconciler corrects stored payment statuses that disagree with amounts.
type Reconciler struct {
	app core.App
	log *logger.Logger
}

// NewReconciler returns a Reconciler for app.
func NewReconciler(app core.App, log *logger.Logger) *Reconciler {
	return &Reconciler{app: app, log: log}
}

// Run performs one reconciliation pass and returns the number of records fixed.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	started := time.Now()
	fixed, err := collections.ReconcilePaymentStatuses(r.app)
	if err != nil {
		r.log.Error("payment status reconciliation failed", err, nil)
		return 0, err
	}
	r.log.Info("payment status reconciliation finished", map[string]interface{}{
		"fixed":    fixed,
		"duration": time.Since(started).String(),
	})
	return fixed, nil
}

// Scheduler runs the reconciler on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

// NewScheduler registers r on schedule, evaluated in timezone.
func NewScheduler(r *Reconciler, schedule, timezone string, log *logger.Logger) (*Scheduler, error) {
	loc, err := scheduleLocation(timezone)
	if err != nil {
		return nil, err
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(schedule, func() {
		log.Info("starting payment status reconciliation", map[string]interface{}{
			"at": time.Now().In(loc).Format(time.RFC3339),
		})
		// Errors are logged by Run.
		_, _ = r.Run(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("unable to schedule reconciliation %q: %w", schedule, err)
	}

	return &Scheduler{cron: c, log: log}, nil
}

// scheduleLocation resolves timezone. India's zones map to the fixed IST
// zone so the host needs no tzdata for the default schedule.
func scheduleLocation(timezone string) (*time.Location, error) {
	switch timezone {
	case "Asia/Kolkata", "Asia/Calcutta", "IST":
		return services.IST, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("reconciliation scheduler started", map[string]interface{}{
		"entries": len(s.cron.Entries()),
	})
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Next reports when the reconciler runs next. It is zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// NewReconcileCommand returns the "reconcile" CLI subcommand.
func NewReconcileCommand(app core.App, log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Fix tax record payment statuses that disagree with their amounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.IsBootstrapped() {
				if err := app.Bootstrap(); err != nil {
					return fmt.Errorf("bootstrap app: %w", err)
				}
			}
			fixed, err := NewReconciler(app, log).Run(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("corrected %d tax record(s)\n", fixed)
			return nil
		},
	}
}
