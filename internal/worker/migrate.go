package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/danisampedro/locationapp/internal/mapping"
	"github.com/danisampedro/locationapp/internal/provider/resilience"
	"github.com/danisampedro/locationapp/internal/recce"
)

// Document kinds handled by the migration job.
const (
	KindRecce = "recce"
	KindMap   = "map"
)

// RecceStore is the part of the recce repository the job needs.
type RecceStore interface {
	Scan(ctx context.Context, opts recce.ListOptions) (*recce.ListResult, error)
	Update(ctx context.Context, d *recce.Document) error
}

// MapStore is the part of the map repository the job needs.
type MapStore interface {
	Scan(ctx context.Context, opts mapping.ListOptions) (*mapping.ListResult, error)
	Update(ctx context.Context, m *mapping.Map) error
}

// MigrationJob rewrites documents still stored in a legacy layout: recces
// with separate leg and free-entry lists, and maps with a rectangle work
// area.
type MigrationJob struct {
	config MigrationConfig
	logger zerolog.Logger
	recces RecceStore
	maps   MapStore

	mu      sync.Mutex
	lastRun *MigrationResult
}

// MigrationJobConfig holds configuration for creating a MigrationJob.
type MigrationJobConfig struct {
	Config MigrationConfig
	Logger zerolog.Logger

	// Recces and Maps are optional; a nil store is skipped.
	Recces RecceStore
	Maps   MapStore
}

// NewMigrationJob creates a new migration job.
func NewMigrationJob(cfg MigrationJobConfig) *MigrationJob {
	return &MigrationJob{
		config: cfg.Config.withDefaults(),
		logger: cfg.Logger,
		recces: cfg.Recces,
		maps:   cfg.Maps,
	}
}

// MigrationResult contains the outcome of one run.
type MigrationResult struct {
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"durationNs"`
	DryRun    bool          `json:"dryRun"`

	Scanned  int              `json:"scanned"`
	Legacy   int              `json:"legacy"`
	Migrated int              `json:"migrated"`
	Failed   int              `json:"failed"`
	Errors   []MigrationError `json:"errors,omitempty"`
}

// MigrationError records one document that could not be rewritten.
type MigrationError struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

type rewrite struct {
	kind  string
	id    string
	apply func(ctx context.Context) error
}

type rewriteResult struct {
	rewrite
	err error
}

// Run scans every store and rewrites legacy documents. With dryRun set the
// documents are only counted.
func (j *MigrationJob) Run(ctx context.Context, dryRun bool) (*MigrationResult, error) {
	result := &MigrationResult{StartTime: time.Now(), DryRun: dryRun}

	j.logger.Info().
		Bool("dry_run", dryRun).
		Int("concurrency", j.config.Concurrency).
		Msg("starting content migration")

	tasks := make(chan rewrite)
	results := make(chan rewriteResult)

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.rewriteWorker(ctx, tasks, results)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var undecodable []MigrationError
	scanErr := make(chan error, 1)
	go func() {
		defer close(tasks)
		scanErr <- j.scan(ctx, result, dryRun, tasks, &undecodable)
	}()

	for r := range results {
		if r.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, MigrationError{Kind: r.kind, ID: r.id, Error: r.err.Error()})
			j.logger.Warn().Err(r.err).
				Str("kind", r.kind).
				Str("id", r.id).
				Msg("document rewrite failed")
			continue
		}
		result.Migrated++
	}

	err := <-scanErr
	result.Failed += len(undecodable)
	result.Errors = append(result.Errors, undecodable...)

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	j.mu.Lock()
	j.lastRun = result
	j.mu.Unlock()

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("scanned", result.Scanned).
		Int("legacy", result.Legacy).
		Int("migrated", result.Migrated).
		Int("failed", result.Failed).
		Msg("content migration completed")

	return result, err
}

// LastRun returns the result of the most recent run, or nil.
func (j *MigrationJob) LastRun() *MigrationResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun
}

// scan owns result's scan counters; the collector owns the rest. Rows that
// cannot be decoded are appended to undecodable and do not stop the run.
func (j *MigrationJob) scan(ctx context.Context, result *MigrationResult, dryRun bool, tasks chan<- rewrite, undecodable *[]MigrationError) error {
	var scanned, legacy int
	defer func() {
		result.Scanned, result.Legacy = scanned, legacy
	}()

	skip := func(kind, id string, err error) {
		scanned++
		*undecodable = append(*undecodable, MigrationError{Kind: kind, ID: id, Error: err.Error()})
		j.logger.Warn().Err(err).
			Str("kind", kind).
			Str("id", id).
			Msg("skipping undecodable document")
	}

	send := func(t rewrite) error {
		legacy++
		if dryRun {
			return nil
		}
		select {
		case tasks <- t:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if j.recces != nil {
		cursor := ""
		for {
			page, err := j.recces.Scan(ctx, recce.ListOptions{Limit: j.config.BatchSize, Cursor: cursor})
			if err != nil {
				return fmt.Errorf("scan recces: %w", err)
			}
			for _, bad := range page.Skipped {
				skip(KindRecce, bad.ID, bad.Err)
			}
			for _, d := range page.Items {
				scanned++
				if !d.Legacy {
					continue
				}
				if err := send(j.recceRewrite(d)); err != nil {
					return err
				}
			}
			if page.NextCursor == "" {
				break
			}
			cursor = page.NextCursor
		}
	}

	if j.maps != nil {
		cursor := ""
		for {
			page, err := j.maps.Scan(ctx, mapping.ListOptions{Limit: j.config.BatchSize, Cursor: cursor})
			if err != nil {
				return fmt.Errorf("scan maps: %w", err)
			}
			for _, bad := range page.Skipped {
				skip(KindMap, bad.ID, bad.Err)
			}
			for _, m := range page.Items {
				scanned++
				if !m.Legacy() {
					continue
				}
				if err := send(j.mapRewrite(m)); err != nil {
					return err
				}
			}
			if page.NextCursor == "" {
				break
			}
			cursor = page.NextCursor
		}
	}

	return nil
}

func (j *MigrationJob) recceRewrite(d *recce.Document) rewrite {
	return rewrite{
		kind: KindRecce,
		id:   d.ID,
		apply: func(ctx context.Context) error {
			d.Normalize()
			d.Legacy = false
			err := j.recces.Update(ctx, d)
			if errors.Is(err, recce.ErrRecceNotFound) {
				return resilience.Permanent(err)
			}
			return err
		},
	}
}

func (j *MigrationJob) mapRewrite(m *mapping.Map) rewrite {
	return rewrite{
		kind: KindMap,
		id:   m.ID,
		apply: func(ctx context.Context) error {
			m.WorkArea.Legacy = false
			err := j.maps.Update(ctx, m)
			if errors.Is(err, mapping.ErrMapNotFound) {
				return resilience.Permanent(err)
			}
			return err
		},
	}
}

func (j *MigrationJob) rewriteWorker(ctx context.Context, tasks <-chan rewrite, results chan<- rewriteResult) {
	for t := range tasks {
		taskCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
		err := resilience.Retry(taskCtx, j.config.Retry, func() error {
			return t.apply(taskCtx)
		})
		cancel()

		results <- rewriteResult{rewrite: t, err: err}
	}
}

// RunEvery runs the job on a ticker until ctx is done.
func (j *MigrationJob) RunEvery(ctx context.Context) {
	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		if _, err := j.Run(ctx, false); err != nil && ctx.Err() == nil {
			j.logger.Error().Err(err).Msg("content migration failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
