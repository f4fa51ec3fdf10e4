package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SubmitFunc hands a discovered file to the processing queue.
type SubmitFunc func(ctx context.Context, path string) error

// InboxScheduler rescans an inbox directory on a cron schedule and submits
// files whose content has not been submitted before.
type InboxScheduler struct {
	root    string
	exts    []string
	submit  SubmitFunc
	cron    *cron.Cron
	timeout time.Duration
	logger  *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewInboxScheduler(root string, includeExts []string, submit SubmitFunc, logger *slog.Logger) *InboxScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InboxScheduler{
		root:    root,
		exts:    includeExts,
		submit:  submit,
		cron:    cron.New(),
		timeout: 10 * time.Minute,
		logger:  logger,
		seen:    map[string]struct{}{},
	}
}

// ValidateSchedule accepts standard five-field expressions and descriptors
// such as "@every 5m" or "@hourly".
func ValidateSchedule(schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}
	return nil
}

// Start registers the scan and starts the cron loop.
func (s *InboxScheduler) Start(schedule string) error {
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(schedule, s.runScheduled); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("ingest.inbox.scheduler_started", "root", s.root, "schedule", schedule)
	return nil
}

// Stop waits for a running scan to finish.
func (s *InboxScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("ingest.inbox.scheduler_stopped", "root", s.root)
}

func (s *InboxScheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.RunNow(ctx); err != nil {
		s.logger.Error("ingest.inbox.scan_failed", "root", s.root, "error", err)
	}
}

// RunNow scans once and returns how many files were submitted.
func (s *InboxScheduler) RunNow(ctx context.Context) (int, error) {
	results, stats, err := ScanDirectory(ctx, s.root, s.exts, true)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	submitted := 0
	var errs []error
	for _, r := range results {
		if r.Err != "" || r.Deduplicated {
			continue
		}
		if _, ok := s.seen[r.HashHex]; ok {
			continue
		}
		if err := s.submit(ctx, r.Path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Path, err))
			continue
		}
		s.seen[r.HashHex] = struct{}{}
		submitted++
	}
	s.logger.Info("ingest.inbox.scanned",
		"root", s.root,
		"matched", stats.Matched,
		"failed", stats.Failed,
		"submitted", submitted,
	)
	return submitted, errors.Join(errs...)
}

// Forget drops a content hash so the file is submitted again on the next scan.
func (s *InboxScheduler) Forget(contentHash string) {
	s.mu.Lock()
	delete(s.seen, contentHash)
	s.mu.Unlock()
}
