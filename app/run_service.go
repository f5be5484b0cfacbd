package app

import (
	"context"
	"fmt"
	"sync"

	"gobanner/domain/banner"
	"gobanner/domain/core"
	"gobanner/domain/decision"
	"gobanner/domain/run"
	"gobanner/internal"
	"gobanner/internal/errors"
	"gobanner/ports"
)

// RunService drives pipeline runs across suspensions and records them in the run ledger
type RunService struct {
	pipeline *Pipeline
	repo     ports.RunRepository
	logger   *internal.Logger

	mu       sync.Mutex
	sessions map[core.RunID]*session
}

// session keeps what a suspended run needs to resume. mu serialises the
// executions of one run.
type session struct {
	mu      sync.Mutex
	request Request
	ledger  *run.Run
	result  *Result
}

// NewRunService creates a run service
func NewRunService(pipeline *Pipeline, repo ports.RunRepository, logger *internal.Logger) *RunService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RunService{
		pipeline: pipeline,
		repo:     repo,
		logger:   logger,
		sessions: make(map[core.RunID]*session),
	}
}

// Start begins a new run. The run id of req is assigned here.
func (s *RunService) Start(ctx context.Context, req Request) (*Result, error) {
	if req.Dataset == nil {
		return nil, errors.FatalInput(core.ErrEmptyCatalog)
	}
	req.RunID = core.NewRunID()
	sess := &session{
		request: req,
		ledger:  run.NewRun(req.RunID, s.pipeline.config.Title, s.fingerprint(req, req.Banner), req.Dataset.RowCount()),
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.mu.Lock()
	s.sessions[req.RunID] = sess
	s.mu.Unlock()

	return s.execute(ctx, sess)
}

// Resume answers the pending decision of a run and continues it
func (s *RunService) Resume(ctx context.Context, id core.RunID, answer decision.Record) (*Result, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err := answer.Validate(); err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.result != nil && sess.result.Pending != nil && !answer.Answers(sess.result.Pending.Kind) {
		return nil, fmt.Errorf("%w: run %s is waiting for %s", core.ErrDecisionRequired, id, sess.result.Pending.Kind)
	}

	sess.request.Decisions = sess.request.Decisions.Merge(answer)
	return s.execute(ctx, sess)
}

// Result returns the latest in-process result of a run
func (s *RunService) Result(id core.RunID) (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.result == nil {
		return nil, false
	}
	return sess.result, true
}

// Get returns the ledger entry of a run
func (s *RunService) Get(ctx context.Context, id core.RunID) (*run.Run, error) {
	return s.repo.Get(ctx, id)
}

// List returns ledger summaries
func (s *RunService) List(ctx context.Context, filters ports.RunFilters) ([]ports.RunSummary, error) {
	return s.repo.List(ctx, filters)
}

func (s *RunService) execute(ctx context.Context, sess *session) (*Result, error) {
	res, err := s.pipeline.Run(ctx, sess.request)
	ledger := sess.ledger
	ledger.Decisions = sess.request.Decisions

	switch {
	case err != nil:
		ledger.Fail(err)
	case res.Suspended():
		ledger.Suspend(res.Pending)
	default:
		ledger.Fingerprint = s.fingerprint(sess.request, res.Banner)
		ledger.Complete(*res.Table, res.Significance, res.Warnings)
	}

	if saveErr := s.repo.Save(ctx, ledger); saveErr != nil {
		s.logger.Error("[RunService] failed to save run %s: %v", ledger.ID, saveErr)
		if err == nil {
			err = saveErr
		}
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	sess.result = res
	s.mu.Unlock()
	s.logger.Info("[RunService] run %s is %s", ledger.ID, ledger.Status)
	return res, nil
}

func (s *RunService) fingerprint(req Request, spec banner.Spec) run.RunFingerprint {
	settings := s.pipeline.config.forRequest(req).settings()
	settings["skip_empty"] = spec.SkipEmpty
	settings["include_total"] = spec.IncludeTotal
	settings["order"] = spec.Order
	return run.NewRunFingerprint(req.Dataset.Fingerprint(), core.ComputeSettingsHash(settings), spec.Variables, run.CodeVersion)
}
