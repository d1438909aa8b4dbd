package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultCleanTimeout bounds one cleaning job when NewService gets zero.
const DefaultCleanTimeout = 10 * time.Minute

// ErrRunNotFound is returned by RunStore.GetRun for unknown IDs.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is the stored audit entry for one pipeline run.
type RunRecord struct {
	ID        string    `json:"id"`
	FileName  string    `json:"fileName"`
	Profile   string    `json:"profile,omitempty"`
	Source    string    `json:"source,omitempty"`
	ClientIP  string    `json:"clientIp,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Error     string    `json:"error,omitempty"`
	Report    Report    `json:"report"`
}

// RunStore persists run records. Implementations live in internal/history.
type RunStore interface {
	SaveRun(ctx context.Context, rec RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	GetRun(ctx context.Context, id string) (RunRecord, error)
}

// CleanRequest describes one cleaning job.
type CleanRequest struct {
	FileName string
	// Profile names a registered profile whose options are used when set.
	Profile string
	Options Options
	Dataset *Dataset
}

// Service runs cleaning jobs under a concurrency limit and records every
// run in a RunStore.
type Service struct {
	store   RunStore
	limiter *JobLimiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewService creates a Service. A nil limiter means no concurrency limit;
// a non-positive timeout means DefaultCleanTimeout.
func NewService(store RunStore, limiter *JobLimiter, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultCleanTimeout
	}
	return &Service{store: store, limiter: limiter, timeout: timeout, logger: logger}
}

// Profiles returns every registered profile.
func (s *Service) Profiles() []Profile {
	return All()
}

// Clean runs the pipeline for req and stores the run record.
//
// Configuration errors are returned before a slot is taken. A failure to
// store the record is logged and does not fail the job.
func (s *Service) Clean(ctx context.Context, req CleanRequest) (*Dataset, RunRecord, error) {
	opts := req.Options
	if req.Profile != "" {
		p, ok := Get(req.Profile)
		if !ok {
			return nil, RunRecord{}, fmt.Errorf("%w: unknown profile %q", ErrInvalidConfig, req.Profile)
		}
		opts = p.Options
	}
	if req.Dataset == nil {
		return nil, RunRecord{}, fmt.Errorf("%w: nil dataset", ErrInvalidDataset)
	}

	pipeline, err := NewPipeline(opts, s.logger)
	if err != nil {
		return nil, RunRecord{}, err
	}

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, RunRecord{}, err
		}
		defer s.limiter.Release()
	}

	runID := RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = ContextWithRunID(ctx, runID)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec := RunRecord{
		ID:        runID,
		FileName:  req.FileName,
		Profile:   req.Profile,
		Source:    GetSourceFromContext(ctx),
		ClientIP:  GetIPAddressFromContext(ctx),
		CreatedAt: time.Now().UTC(),
	}

	out, report, runErr := pipeline.Run(ctx, req.Dataset)
	if report != nil {
		rec.Report = *report
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	if s.store != nil {
		// Detached so a cancelled request still leaves an audit entry.
		saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := s.store.SaveRun(saveCtx, rec); err != nil {
			s.logger.Warn("failed to store run record", "run_id", rec.ID, "error", err)
		}
		saveCancel()
	}

	if runErr != nil {
		return out, rec, runErr
	}
	return out, rec, nil
}

// Runs lists the most recent runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	if s.store == nil {
		return []RunRecord{}, nil
	}
	return s.store.ListRuns(ctx, limit)
}

// Run returns one stored run.
func (s *Service) Run(ctx context.Context, id string) (RunRecord, error) {
	if s.store == nil {
		return RunRecord{}, ErrRunNotFound
	}
	return s.store.GetRun(ctx, id)
}

// WaitForJobs blocks until running jobs finish or ctx expires.
func (s *Service) WaitForJobs(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.WaitForDrain(ctx)
}

// LimiterStatus reports job slot usage.
func (s *Service) LimiterStatus() JobLimiterStatus {
	if s.limiter == nil {
		return JobLimiterStatus{}
	}
	return s.limiter.Status()
}
