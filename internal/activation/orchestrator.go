// Package activation applies selected artifacts to the session environment.
//
// The Orchestrator walks a selection set one artifact at a time through the state
// machine
//
//	Pending -> Checked -> Skipped
//	                   -> Activating -> Activated
//	                                 -> Failed
//
// Each artifact is staged in its own overlay of the Environment, so a failure
// leaves no trace of that artifact while earlier successes stay in place.
package activation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/log"
	"github.com/zjrosen/acquire/internal/pubsub"
	"github.com/zjrosen/acquire/internal/session"
	"github.com/zjrosen/acquire/internal/tracing"
)

var tracer = otel.Tracer("github.com/zjrosen/acquire/internal/activation")

// State is the activation state of one artifact.
type State int

const (
	StatePending State = iota
	StateChecked
	StateSkipped
	StateActivating
	StateActivated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateChecked:
		return "checked"
	case StateSkipped:
		return "skipped"
	case StateActivating:
		return "activating"
	case StateActivated:
		return "activated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateSkipped || s == StateActivated || s == StateFailed
}

// Event is published on every state transition.
type Event struct {
	Index   int
	Name    string
	Version string
	State   State
	Err     error
}

// Outcome is the final state of one artifact.
type Outcome struct {
	Candidate artifact.Candidate
	State     State
	History   []State
	Err       error // *artifact.ActivationError when State is StateFailed
	Replaced  string
}

// Report collects outcomes in input order.
type Report struct {
	Outcomes []Outcome
}

// Succeeded reports whether every artifact was activated or skipped.
func (r *Report) Succeeded() bool {
	for _, o := range r.Outcomes {
		if o.State != StateActivated && o.State != StateSkipped {
			return false
		}
	}
	return true
}

// Count returns how many outcomes ended in state.
func (r *Report) Count(state State) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.State == state {
			n++
		}
	}
	return n
}

// Err joins the errors of failed artifacts; nil when none failed.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// Orchestrator activates selection sets into a session. It holds the session's
// Writer and is the only component that changes the active set.
type Orchestrator struct {
	writer    *session.Writer
	activator Activator
	env       *Environment
	broker    *pubsub.Broker[Event]
	now       func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBroker publishes transitions on b.
func WithBroker(b *pubsub.Broker[Event]) Option {
	return func(o *Orchestrator) { o.broker = b }
}

// WithClock overrides time.Now for handle timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator creates an orchestrator. A nil activator means the
// ExportActivator; a nil env means the process environment.
func NewOrchestrator(w *session.Writer, activator Activator, env *Environment, opts ...Option) *Orchestrator {
	if activator == nil {
		activator = NewExportActivator()
	}
	if env == nil {
		env = ProcessEnvironment()
	}
	o := &Orchestrator{
		writer:    w,
		activator: activator,
		env:       env,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Environment returns the environment the orchestrator writes to.
func (o *Orchestrator) Environment() *Environment { return o.env }

// Activate runs every artifact of set through the state machine, sequentially and
// in input order. A failure marks that artifact Failed and the batch continues;
// nothing already activated is rolled back. The bool is true iff every artifact
// ended Activated or Skipped.
func (o *Orchestrator) Activate(ctx context.Context, set *artifact.SelectionSet, forceReactivate bool, opts Options) (*Report, bool) {
	sess := o.writer.Session()
	ctx, span := tracing.Start(ctx, tracer, tracing.SpanActivate,
		attribute.String(tracing.AttrSessionID, sess.ID()),
		attribute.Int(tracing.AttrSelectCount, set.Len()),
		attribute.Bool(tracing.AttrForce, forceReactivate),
	)

	for _, a := range activationOrder(sess.ActiveArtifacts()) {
		o.env.Adopt(a.Name, a.Handle)
	}

	candidates := set.Artifacts()
	report := &Report{Outcomes: make([]Outcome, len(candidates))}
	for i, c := range candidates {
		report.Outcomes[i] = o.activateOne(ctx, i, c, forceReactivate, opts)
	}

	ok := report.Succeeded()
	if o.broker != nil {
		o.broker.Publish(pubsub.BatchDoneEvent, Event{Index: len(candidates), State: batchState(ok)})
	}
	log.Info(log.CatActivate, "activation finished",
		"session", sess.ID(),
		"activated", report.Count(StateActivated),
		"skipped", report.Count(StateSkipped),
		"failed", report.Count(StateFailed))

	tracing.Finish(span, report.Err())
	return report, ok
}

// activationOrder sorts active artifacts oldest first, so later takeovers win
// when ownership is rebuilt.
func activationOrder(active []artifact.ActiveArtifact) []artifact.ActiveArtifact {
	slices.SortStableFunc(active, func(a, b artifact.ActiveArtifact) int {
		return a.Handle.ActivatedAt.Compare(b.Handle.ActivatedAt)
	})
	return active
}

func batchState(ok bool) State {
	if ok {
		return StateActivated
	}
	return StateFailed
}

func (o *Orchestrator) activateOne(ctx context.Context, index int, c artifact.Candidate, forceReactivate bool, opts Options) (out Outcome) {
	ctx, span := tracing.Start(ctx, tracer, tracing.SpanActivateOne,
		attribute.String(tracing.AttrArtifactName, c.Name()),
		attribute.String(tracing.AttrArtifactVer, c.Version()),
		attribute.String(tracing.AttrRegistry, c.Source),
	)
	defer func() {
		span.SetAttributes(attribute.String(tracing.AttrState, out.State.String()))
		tracing.Finish(span, out.Err)
	}()

	out.Candidate = c
	to := func(s State, err error) {
		out.State = s
		out.History = append(out.History, s)
		span.AddEvent(tracing.EventStateChanged, trace.WithAttributes(attribute.String(tracing.AttrState, s.String())))
		if o.broker != nil {
			o.broker.Publish(pubsub.TransitionEvent, Event{Index: index, Name: c.Name(), Version: c.Version(), State: s, Err: err})
		}
	}
	fail := func(err error) Outcome {
		out.Err = &artifact.ActivationError{Name: c.Name(), Version: c.Version(), Err: err}
		to(StateFailed, out.Err)
		log.ErrorErr(log.CatActivate, "activation failed", err, "artifact", c.Artifact.ID())
		return out
	}

	to(StatePending, nil)
	prev, active := o.writer.Session().Active(c.Name())
	to(StateChecked, nil)

	if active && prev.Version == c.Version() && !forceReactivate {
		log.Debug(log.CatActivate, "already active", "artifact", c.Artifact.ID())
		to(StateSkipped, nil)
		return out
	}

	to(StateActivating, nil)
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	stage := o.env.Stage(c.Name())
	if active {
		stage.Revert(prev.Handle)
		out.Replaced = prev.Version
	}

	if err := o.activator.Activate(ctx, stage, c, opts); err != nil {
		return fail(err)
	}

	entry := artifact.ActiveArtifact{
		Name:      c.Name(),
		Version:   c.Version(),
		Source:    c.Source,
		Languages: c.Artifact.Languages(),
		Handle: artifact.Handle{
			ID:          uuid.NewString(),
			ActivatedAt: o.now(),
			Changes:     stage.Changes(),
		},
	}
	if err := o.writer.Put(ctx, entry); err != nil {
		return fail(fmt.Errorf("record active artifact: %w", err))
	}
	stage.Commit()

	if active {
		log.Info(log.CatActivate, "replaced artifact", "artifact", c.Name(), "from", prev.Version, "to", c.Version())
	} else {
		log.Info(log.CatActivate, "activated artifact", "artifact", c.Artifact.ID(), "changes", len(entry.Handle.Changes))
	}
	to(StateActivated, nil)
	return out
}

// Deactivate reverts every active artifact from the environment and empties the
// session. It returns the artifacts that were active.
func (o *Orchestrator) Deactivate(ctx context.Context) ([]artifact.ActiveArtifact, error) {
	sess := o.writer.Session()
	active := activationOrder(sess.ActiveArtifacts())
	for _, a := range active {
		o.env.Adopt(a.Name, a.Handle)
	}
	if err := o.writer.Clear(ctx); err != nil {
		return nil, err
	}
	for i := len(active) - 1; i >= 0; i-- {
		o.env.Revert(active[i].Handle)
		if o.broker != nil {
			o.broker.Publish(pubsub.TransitionEvent, Event{Index: i, Name: active[i].Name, Version: active[i].Version, State: StatePending})
		}
	}
	log.Info(log.CatActivate, "deactivated session", "session", sess.ID(), "artifacts", len(active))
	return active, nil
}
