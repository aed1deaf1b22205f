// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest runs the research digest state machine: collect papers from
// two indexes, merge them, summarize, critique and rewrite up to a fixed
// bound, verify, and compose the final report.
package digest

import (
	"context"
	"fmt"
	"io"

	"github.com/kataras/golog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-digest/internal/generate"
	"github.com/pdiddy/research-digest/internal/search"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Step is one state of the run.
type Step int

const (
	StepStart Step = iota
	StepCollectA
	StepCollectB
	// StepCollect runs both collectors concurrently. It replaces
	// StepCollectA and StepCollectB when parallel collection is enabled.
	StepCollect
	StepMerge
	StepSummarize
	StepCritique
	StepVerify
	StepCompose
	StepDone
	StepFailed
)

func (s Step) String() string {
	switch s {
	case StepStart:
		return "start"
	case StepCollectA:
		return "collect_a"
	case StepCollectB:
		return "collect_b"
	case StepCollect:
		return "collect"
	case StepMerge:
		return "merge"
	case StepSummarize:
		return "summarize"
	case StepCritique:
		return "critique"
	case StepVerify:
		return "verify"
	case StepCompose:
		return "compose"
	case StepDone:
		return "done"
	case StepFailed:
		return "failed"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// transitions holds every unconditional edge. The edge out of StepCritique
// depends on the state and is resolved by next.
var transitions = map[Step]Step{
	StepStart:     StepCollectA,
	StepCollectA:  StepCollectB,
	StepCollectB:  StepMerge,
	StepCollect:   StepMerge,
	StepMerge:     StepSummarize,
	StepSummarize: StepCritique,
	StepVerify:    StepCompose,
	StepCompose:   StepDone,
}

// next returns the step that follows from given the state it produced.
// It returns StepFailed when no edge exists.
func next(from Step, s State, parallel bool) Step {
	switch from {
	case StepStart:
		if parallel {
			return StepCollect
		}
	case StepCritique:
		switch s.Status {
		case StatusNeedsRewrite:
			return StepSummarize
		case StatusApproved:
			return StepVerify
		default:
			return StepFailed
		}
	}
	if to, ok := transitions[from]; ok {
		return to
	}
	return StepFailed
}

// RunError is the single failure shape of a run. Err is the component
// error unchanged, so errors.As reaches *search.CollectorError and
// *generate.GenerationError.
type RunError struct {
	Step Step
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Options tunes a Runner. Zero values select the defaults.
type Options struct {
	// MaxResults is passed to each collector (default 3).
	MaxResults int
	// MaxRewrites bounds the critique loop (default 2). Use NoRewrites to
	// approve the first summary.
	MaxRewrites int
	// Parallel runs both collectors concurrently.
	Parallel bool
	// Logger receives step transitions. Nil discards them.
	Logger *golog.Logger
}

// NoRewrites disables the rewrite loop when set as Options.MaxRewrites.
const NoRewrites = -1

// Runner executes runs. It holds only collaborators that are safe to share,
// so one Runner serves concurrent runs, each with its own State.
type Runner struct {
	collectorA search.Collector
	collectorB search.Collector
	summarizer *Summarizer
	critic     *Critic
	verifier   *Verifier

	maxResults  int
	maxRewrites int
	parallel    bool
	log         *golog.Logger
}

// NewRunner wires the two collectors and the generator shared by the
// summarizer, critic, and verifier.
func NewRunner(a, b search.Collector, gen generate.Generator, opts Options) *Runner {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = search.DefaultMaxResults
	}
	maxRewrites := opts.MaxRewrites
	switch {
	case maxRewrites == 0:
		maxRewrites = DefaultMaxRewrites
	case maxRewrites < 0:
		maxRewrites = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = golog.New()
		logger.SetOutput(io.Discard)
	}

	return &Runner{
		collectorA:  a,
		collectorB:  b,
		summarizer:  &Summarizer{Generator: gen},
		critic:      &Critic{Generator: gen},
		verifier:    &Verifier{Generator: gen},
		maxResults:  maxResults,
		maxRewrites: maxRewrites,
		parallel:    opts.Parallel,
		log:         logger,
	}
}

// Run executes the state machine for query and returns the terminal state.
// Steps run one at a time. The first failing step stops the run and its
// error is returned as a *RunError together with the last good state; no
// partial report is composed.
func (r *Runner) Run(ctx context.Context, query string) (State, error) {
	s := NewState(query)
	r.log.Infof("run %s: started query=%q", s.RunID, query)

	step := StepStart
	for {
		to := next(step, s, r.parallel)
		if to == StepFailed {
			err := &RunError{Step: step, Err: fmt.Errorf("no transition from %s with status %q", step, s.Status)}
			r.log.Errorf("run %s: %v", s.RunID, err)
			return s, err
		}
		if to == StepDone {
			r.log.Infof("run %s: done papers=%d rewrites=%d", s.RunID, len(s.Merged), s.RewriteCount)
			return s, nil
		}

		r.log.Debugf("run %s: %s -> %s", s.RunID, step, to)
		updated, err := r.exec(ctx, to, s)
		if err != nil {
			r.log.Errorf("run %s: %s failed: %v", s.RunID, to, err)
			return s, &RunError{Step: to, Err: err}
		}
		s, step = updated, to
	}
}

// exec runs a single step against a copy of s.
func (r *Runner) exec(ctx context.Context, step Step, s State) (State, error) {
	if err := ctx.Err(); err != nil {
		return s, err
	}

	switch step {
	case StepCollectA:
		res, err := r.collectorA.Collect(ctx, s.Query, r.maxResults)
		if err != nil {
			return s, err
		}
		s.ResultsA = res

	case StepCollectB:
		res, err := r.collectorB.Collect(ctx, s.Query, r.maxResults)
		if err != nil {
			return s, err
		}
		s.ResultsB = res

	case StepCollect:
		a, b, err := r.collectBoth(ctx, s.Query)
		if err != nil {
			return s, err
		}
		s.ResultsA, s.ResultsB = a, b

	case StepMerge:
		s.Merged = search.Merge(s.ResultsA, s.ResultsB)

	case StepSummarize:
		var feedback string
		if s.Status == StatusNeedsRewrite {
			feedback = s.Critique
		}
		summary, err := r.summarizer.Summarize(ctx, s.Merged, feedback)
		if err != nil {
			return s, err
		}
		s.Summary = summary
		s.SummaryAttempts++

	case StepCritique:
		critique, verdict, err := r.critic.Critique(ctx, s.Summary)
		if err != nil {
			return s, err
		}
		s = applyCritique(s, critique, verdict, r.maxRewrites)
		r.log.Debugf("run %s: verdict=%s status=%s rewrites=%d", s.RunID, verdict, s.Status, s.RewriteCount)

	case StepVerify:
		verification, err := r.verifier.Verify(ctx, s.Summary)
		if err != nil {
			return s, err
		}
		s.Verification = verification

	case StepCompose:
		s.FinalOutput = Compose(s.Summary, s.Merged)

	default:
		return s, fmt.Errorf("step %s is not executable", step)
	}
	return s, nil
}

// collectBoth queries both indexes concurrently. Neither result is visible
// to the caller until both have succeeded.
func (r *Runner) collectBoth(ctx context.Context, query string) (a, b []types.PaperRecord, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := r.collectorA.Collect(gctx, query, r.maxResults)
		a = res
		return err
	})
	g.Go(func() error {
		res, err := r.collectorB.Collect(gctx, query, r.maxResults)
		b = res
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
