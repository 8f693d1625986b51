// Package watch runs saved searches on a cron schedule. Every run searches each
// watched item code over a trailing validity window and lets the search pipeline
// notify the webhook.
package watch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"arpscout/internal/domain/arp"
	"arpscout/pkg/logger"
)

// Config describes the saved searches.
type Config struct {
	Schedule     string
	ItemCodes    []string
	WindowDays   int
	PageSize     int
	OnlyPositive bool
	WebhookURL   string
}

// Result summarizes one watched item of a run.
type Result struct {
	ItemCode     string
	Rows         int
	TotalRecords int
	Err          error
}

// Runner executes the saved searches.
type Runner struct {
	searcher arp.Searcher
	cfg      Config
	now      func() time.Time

	// Guards against overlapping runs when a run outlasts the schedule interval.
	running sync.Mutex
}

// NewRunner creates a Runner. Blank item codes are dropped.
func NewRunner(searcher arp.Searcher, cfg Config) *Runner {
	codes := make([]string, 0, len(cfg.ItemCodes))
	for _, c := range cfg.ItemCodes {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	cfg.ItemCodes = codes
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = arp.DefaultWindowDays
	}
	return &Runner{searcher: searcher, cfg: cfg, now: time.Now}
}

// RunOnce searches every watched item code in order. One failing item does not
// stop the others; their errors are joined.
func (r *Runner) RunOnce(ctx context.Context) ([]Result, error) {
	if !r.running.TryLock() {
		logger.Warn(ctx, "watch run skipped, previous run still active")
		return nil, nil
	}
	defer r.running.Unlock()

	now := r.now()
	from := now.AddDate(0, 0, -r.cfg.WindowDays).Format(arp.DateLayout)
	to := now.Format(arp.DateLayout)

	results := make([]Result, 0, len(r.cfg.ItemCodes))
	var errs []error
	for _, code := range r.cfg.ItemCodes {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res := Result{ItemCode: code}
		page, err := r.searcher.Search(ctx, arp.SearchFilters{
			Page:         1,
			PageSize:     r.cfg.PageSize,
			ItemCode:     code,
			ValidityFrom: from,
			ValidityTo:   to,
		}, arp.SearchOptions{
			Enrich:       true,
			OnlyPositive: r.cfg.OnlyPositive,
			NotifyURL:    r.cfg.WebhookURL,
		})
		if err != nil {
			res.Err = err
			errs = append(errs, fmt.Errorf("item %s: %w", code, err))
			logger.Error(ctx, "watched search failed", "item_code", code, "error", err)
		} else {
			res.Rows = len(page.Items)
			res.TotalRecords = page.TotalRecords
			logger.Info(ctx, "watched search done", "item_code", code, "rows", res.Rows, "total_records", res.TotalRecords)
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// Scheduler triggers a Runner on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
}

// NewScheduler registers runner under the standard five-field schedule spec.
func NewScheduler(ctx context.Context, runner *Runner) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(runner.cfg.Schedule, func() {
		if _, err := runner.RunOnce(ctx); err != nil {
			logger.Warn(ctx, "watch run finished with errors", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("watch schedule %q: %w", runner.cfg.Schedule, err)
	}
	return &Scheduler{cron: c, runner: runner}, nil
}

// Start begins scheduling in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and returns a context that is done once a running job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Next returns the next activation time, zero when not started.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
