package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/civicroom/memberdesk/internal/clock"
	cidomain "github.com/civicroom/memberdesk/internal/contactinfo/domain"
	"github.com/civicroom/memberdesk/internal/jobqueue"
	membershipdomain "github.com/civicroom/memberdesk/internal/membership/domain"
	"github.com/civicroom/memberdesk/internal/notifier"
	obsmetrics "github.com/civicroom/memberdesk/internal/observability/metrics"
	"github.com/civicroom/memberdesk/internal/ratelimit"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependency")

type Params struct {
	fx.In

	Log         *zap.Logger
	Clock       clock.Clock
	ContactRepo cidomain.Repository
	Queue       jobqueue.Queue
	Memberships membershipdomain.Service `optional:"true"`
	Locker      *ratelimit.Locker        `optional:"true"`
	Config      Config                   `optional:"true"`
}

// Scheduler runs the periodic verification jobs: the staleness scan that
// flags contact records, and the sweep that turns flagged records into
// notification tasks.
type Scheduler struct {
	log         *zap.Logger
	cfg         Config
	clock       clock.Clock
	contactRepo cidomain.Repository
	queue       jobqueue.Queue
	memberships membershipdomain.Service
	locker      *ratelimit.Locker

	mu      sync.Mutex
	nextRun map[string]time.Time
}

func ProvideConfig() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SCHEDULER_RUN_INTERVAL", DefaultConfig().RunInterval)
	v.SetDefault("SCHEDULER_SCAN_INTERVAL", DefaultConfig().ScanInterval)
	v.SetDefault("SCHEDULER_NOTIFY_INTERVAL", DefaultConfig().NotifyInterval)
	v.SetDefault("CONTACT_STALE_AFTER", DefaultConfig().StaleAfter)
	v.SetDefault("CONTACT_NOTIFY_COOLDOWN", DefaultConfig().NotifyCooldown)
	v.SetDefault("SCHEDULER_JOB_TIMEOUT", DefaultConfig().JobTimeout)

	return Config{
		RunInterval:    v.GetDuration("SCHEDULER_RUN_INTERVAL"),
		ScanInterval:   v.GetDuration("SCHEDULER_SCAN_INTERVAL"),
		NotifyInterval: v.GetDuration("SCHEDULER_NOTIFY_INTERVAL"),
		StaleAfter:     v.GetDuration("CONTACT_STALE_AFTER"),
		NotifyCooldown: v.GetDuration("CONTACT_NOTIFY_COOLDOWN"),
		JobTimeout:     v.GetDuration("SCHEDULER_JOB_TIMEOUT"),
	}
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.ContactRepo == nil || p.Queue == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:         p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:         p.Config.withDefaults(),
		clock:       p.Clock,
		contactRepo: p.ContactRepo,
		queue:       p.Queue,
		memberships: p.Memberships,
		locker:      p.Locker,
		nextRun:     make(map[string]time.Time),
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))

	// With multiple scheduler instances only one should run a given job per
	// tick. Lock failures fall through to a local run.
	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, "scheduler:job:"+name, s.cfg.JobTimeout)
		if err != nil {
			log.Warn("job lock unavailable, running locally", zap.Error(err))
		} else if !ok {
			log.Info("job held by another instance, skipping")
			return nil
		} else {
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), "scheduler:job:"+name, token); err != nil {
					log.Warn("job lock release failed", zap.Error(err))
				}
			}()
		}
	}

	log.Info("job started")
	obsmetrics.IncJobRun(name)

	err := fn(ctx)
	obsmetrics.ObserveJobDuration(name, time.Since(start))
	log.Info("job finished", zap.Duration("elapsed", time.Since(start)))
	if err == nil {
		return nil
	}

	obsmetrics.IncJobError(name)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out",
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

// claimDue reports whether the named job's cadence has elapsed, and if so
// claims this tick for it. Jobs run immediately on the first call.
func (s *Scheduler) claimDue(name string, every time.Duration) bool {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	next, seen := s.nextRun[name]
	if seen && now.Before(next) {
		return false
	}
	s.nextRun[name] = now.Add(every)
	return true
}

// RunOnce executes every job whose cadence has elapsed. Safe to call as often
// as the run loop likes; each job tracks its own due time.
func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	type job struct {
		Name  string
		Every time.Duration
		Run   func(context.Context) error
	}

	jobs := []job{
		{"flag_stale", s.cfg.ScanInterval, s.FlagStaleJob},
		{"notify_sweep", s.cfg.NotifyInterval, s.NotifySweepJob},
	}
	if s.memberships != nil {
		jobs = append(jobs, job{"membership_ensure", s.cfg.ScanInterval, s.MembershipEnsureJob})
	}

	for _, job := range jobs {
		if !s.claimDue(job.Name, job.Every) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, job.Name, job.Run))
	}

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// FlagStaleJob marks records of active organisations that have gone
// unconfirmed past the staleness window, or that are missing a generic or
// invoice email. A single set-based update keeps the job idempotent.
func (s *Scheduler) FlagStaleJob(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.cfg.StaleAfter)
	flagged, err := s.contactRepo.FlagStale(ctx, cutoff)
	if err != nil {
		return err
	}
	obsmetrics.AddRecordsFlagged(flagged)
	s.log.Info("stale contact records flagged",
		zap.Int64("flagged", flagged),
		zap.Time("modified_before", cutoff),
	)
	return nil
}

// MembershipEnsureJob backfills the one-membership-row-per-year invariant
// for active organisations. Idempotent, so running it daily is harmless.
func (s *Scheduler) MembershipEnsureJob(ctx context.Context) error {
	_, err := s.memberships.EnsureYear(ctx, s.clock.Now().Year(), false)
	return err
}

// NotifySweepJob enqueues a verification email task for every flagged record
// that has somewhere to send it, then reports the organisations that cannot
// be reached about invoicing because their invoice email is empty. Records
// flagged or edited within the cool-down window are skipped, which also
// spaces out repeat reminders.
func (s *Scheduler) NotifySweepJob(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.cfg.NotifyCooldown)
	due, err := s.contactRepo.ListDue(ctx, cutoff)
	if err != nil {
		return err
	}

	var jobErr error
	enqueued := 0
	missingInvoiceEmail := make([]string, 0)

	for _, record := range due {
		if record.InvoiceEmail == "" {
			missingInvoiceEmail = append(missingInvoiceEmail, fmt.Sprintf("%s @ %s", record.OrgTitle, record.OrgHost))
		}
		if record.GenericEmail == "" {
			continue
		}
		task := jobqueue.NewTask(notifier.TaskCheckEmail, record.ID.String())
		if err := s.queue.Enqueue(ctx, task); err != nil {
			jobErr = errors.Join(jobErr, err)
			s.log.Error("enqueue notify task failed",
				zap.String("record_id", record.ID.String()),
				zap.String("org_id", record.OrgID.String()),
				zap.Error(err),
			)
			continue
		}
		enqueued++
	}

	obsmetrics.AddNotifyTasksEnqueued(enqueued)
	s.log.Info("notify sweep completed",
		zap.Int("due", len(due)),
		zap.Int("enqueued", enqueued),
	)
	if len(missingInvoiceEmail) > 0 {
		s.log.Warn("organisations missing an invoice email",
			zap.Int("count", len(missingInvoiceEmail)),
			zap.Strings("organisations", missingInvoiceEmail),
		)
	}

	return jobErr
}
