package pipeline

import (
	"context"
	"fmt"
	"time"

	"letterchain/internal/logging"
)

// EventStatus marks where in a stage's lifecycle an event fires
type EventStatus string

const (
	EventStageStarted   EventStatus = "started"
	EventStageCompleted EventStatus = "completed"
	EventTerminal       EventStatus = "terminal"
)

// Event is one progress notification from a running workflow. The streaming
// endpoint projects these into SSE frames.
type Event struct {
	Stage     Stage       `json:"stage"`
	Status    EventStatus `json:"status"`
	Outcome   string      `json:"outcome,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// EventSink receives workflow events. Sinks must be fast; they run inline
// on the driver loop.
type EventSink func(Event)

// Workflow executes the cover letter pipeline: an explicit transition table
// over the six stages plus two terminals. A Workflow is immutable after
// construction and safe for concurrent Run calls.
type Workflow struct {
	deps         *Deps
	stages       map[Stage]StageFunc
	routers      map[Stage]func(State) Stage
	maxRevisions int
	logger       logging.Logger
}

// maxSteps bounds the driver loop independently of the routing logic. The
// longest legitimate run is 4 fixed stages plus 4 generate/validate rounds
// and a terminal; anything past this is a routing bug.
const maxSteps = 32

// WorkflowOption configures a Workflow
type WorkflowOption func(*Workflow)

// WithMaxRevisions sets how many rejected drafts may be regenerated after
// the first attempt
func WithMaxRevisions(n int) WorkflowOption {
	return func(w *Workflow) {
		if n >= 0 {
			w.maxRevisions = n
		}
	}
}

// NewWorkflow builds the transition table around the given dependencies
func NewWorkflow(deps *Deps, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		deps:         deps,
		maxRevisions: 3,
		logger:       deps.logger(),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.stages = map[Stage]StageFunc{
		StageValidateInput:    deps.validateInput,
		StageParseResume:      deps.parseResume,
		StageParseJob:         deps.parseJob,
		StageMatchExperiences: deps.matchExperiences,
		StageGenerateLetter:   deps.generateLetter,
		StageValidateLetter:   deps.validateLetter,
	}

	w.routers = map[Stage]func(State) Stage{
		StageValidateInput: func(s State) Stage {
			if s.ValidationFailed {
				return StageReject
			}
			return StageParseResume
		},
		StageParseResume: func(s State) Stage {
			if s.ResumeInfo == nil {
				return StageReject
			}
			return StageParseJob
		},
		StageParseJob: func(s State) Stage {
			if s.JobInfo == nil {
				return StageReject
			}
			return StageMatchExperiences
		},
		StageMatchExperiences: func(s State) Stage {
			if s.MatchedExperiences == nil {
				return StageReject
			}
			return StageGenerateLetter
		},
		StageGenerateLetter: func(s State) Stage {
			return StageValidateLetter
		},
		StageValidateLetter: w.routeAfterValidation,
	}

	return w
}

// routeAfterValidation decides between accepting the draft, revising it,
// and giving up. The cap counts generator invocations: one initial draft
// plus maxRevisions revisions. A capped run still finishes with the last
// draft rather than discarding it.
func (w *Workflow) routeAfterValidation(s State) Stage {
	if s.ValidationResult != nil && s.ValidationResult.Valid {
		return StageFinish
	}
	if s.GenerationCount >= 1+w.maxRevisions {
		w.logger.Warn("Max validation attempts reached", map[string]interface{}{
			"generations": s.GenerationCount,
		})
		return StageFinish
	}
	return StageGenerateLetter
}

// Run drives the workflow from input validation to a terminal. It always
// returns a non-nil Result; Err is set only for OutcomeFailed.
func (w *Workflow) Run(ctx context.Context, initial State) (result *Result) {
	return w.run(ctx, initial, nil)
}

// RunWithEvents is Run with a progress sink attached
func (w *Workflow) RunWithEvents(ctx context.Context, initial State, sink EventSink) *Result {
	return w.run(ctx, initial, sink)
}

func (w *Workflow) run(ctx context.Context, initial State, sink EventSink) (result *Result) {
	start := time.Now()
	state := initial

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Workflow panic recovered", map[string]interface{}{"panic": fmt.Sprint(r)})
			result = w.terminal(state, OutcomeFailed, fmt.Errorf("workflow panic: %v", r), start, sink)
		}
	}()

	current := StageValidateInput
	// prev names the stage whose router chose current, so abort messages
	// can point at the stage that left the state incomplete
	prev := current
	for step := 0; step < maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return w.terminal(state, OutcomeFailed, fmt.Errorf("workflow cancelled at %s: %w", current, err), start, sink)
		}

		switch current {
		case StageFinish:
			validationPassed := state.ValidationResult != nil && state.ValidationResult.Valid
			state.Metadata.Iterations = state.GenerationCount
			state.Metadata.ValidationPassed = validationPassed
			w.logger.Info("Workflow completed", map[string]interface{}{
				"iterations":        state.GenerationCount,
				"validation_passed": validationPassed,
				"duration_ms":       time.Since(start).Milliseconds(),
			})
			return w.terminal(state, OutcomeSuccess, nil, start, sink)
		case StageReject:
			if state.ValidationFailed {
				w.logger.Info("Input documents rejected", map[string]interface{}{
					"validation": state.InputValidation,
				})
				return w.terminal(state, OutcomeInputRejected, nil, start, sink)
			}
			return w.terminal(state, OutcomeFailed, fmt.Errorf("workflow aborted: required state missing after %s", prev), start, sink)
		}

		fn, ok := w.stages[current]
		if !ok {
			return w.terminal(state, OutcomeFailed, fmt.Errorf("unknown stage %q", current), start, sink)
		}

		emit(sink, Event{Stage: current, Status: EventStageStarted, Timestamp: time.Now()})
		state = fn(ctx, state)
		emit(sink, Event{Stage: current, Status: EventStageCompleted, Timestamp: time.Now()})

		next := w.routers[current](state)
		w.logger.Debug("Stage transition", map[string]interface{}{
			"from": string(current),
			"to":   string(next),
		})
		prev = current
		current = next
	}

	return w.terminal(state, OutcomeFailed, fmt.Errorf("workflow exceeded %d steps without terminating", maxSteps), start, sink)
}

// terminal stamps duration, emits the terminal event and packages the result
func (w *Workflow) terminal(state State, outcome OutcomeKind, err error, start time.Time, sink EventSink) *Result {
	state.Metadata.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		w.logger.Error("Workflow failed", map[string]interface{}{"error": err.Error()})
	}
	emit(sink, Event{
		Stage:     terminalStage(outcome),
		Status:    EventTerminal,
		Outcome:   outcome.String(),
		Timestamp: time.Now(),
	})
	return &Result{Outcome: outcome, State: state, Err: err}
}

func terminalStage(outcome OutcomeKind) Stage {
	if outcome == OutcomeSuccess {
		return StageFinish
	}
	return StageReject
}

func emit(sink EventSink, ev Event) {
	if sink != nil {
		sink(ev)
	}
}
