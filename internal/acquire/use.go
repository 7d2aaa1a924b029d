// Package acquire implements the use operation: resolve the requested artifacts,
// confirm the selection and activate it into the session.
package acquire

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/acquire/internal/activation"
	"github.com/zjrosen/acquire/internal/config"
	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/log"
	"github.com/zjrosen/acquire/internal/matcher"
	"github.com/zjrosen/acquire/internal/presentation"
	"github.com/zjrosen/acquire/internal/resolver"
	"github.com/zjrosen/acquire/internal/selector"
	"github.com/zjrosen/acquire/internal/session"
	"github.com/zjrosen/acquire/internal/tracing"
	"github.com/zjrosen/acquire/internal/ui/confirm"
)

var tracer = otel.Tracer("github.com/zjrosen/acquire/internal/acquire")

// Messages shown to the user.
const (
	MsgActivating = "Activating individual artifacts"
	MsgDeclined   = "No artifacts are being acquired"
	MsgWhatIf     = "--what-if given, no artifacts were activated"
)

// ResolverBuilder turns project registry definitions into a resolver. baseDir
// resolves relative locations.
type ResolverBuilder func(defs []config.RegistryConfig, baseDir string) (*resolver.Resolver, error)

// Outputs are the files written after activation. Empty paths are skipped.
type Outputs struct {
	Postscript   string // sourced by the parent shell
	Shell        string // postscript dialect; inferred from the file name when empty
	MSBuildProps string
}

// Request is one invocation of use.
type Request struct {
	Inputs   []string
	Versions []string

	// Registries are the project's registries, consulted after the global ones.
	Registries []config.RegistryConfig
	BaseDir    string

	Options activation.Options
	WhatIf  bool
}

// Use wires the components of the use operation.
type Use struct {
	Session       *session.Session
	Orchestrator  *activation.Orchestrator
	BuildResolver ResolverBuilder
	Selector      selector.Selector
	Confirmer     confirm.Confirmer
	Reporter      presentation.Reporter
	Out           io.Writer // selection table and activation report
	Outputs       Outputs

	// JSON prints the selection and the outcomes as JSON instead of tables.
	JSON bool
}

// Run executes the request. It reports true only when every selected artifact is
// active afterwards. Failures are also reported through the Reporter; the
// returned error is for classification.
func (u *Use) Run(ctx context.Context, req Request) (ok bool, err error) {
	ctx, span := tracing.Start(ctx, tracer, tracing.SpanUse,
		attribute.String(tracing.AttrSessionID, u.Session.ID()),
		attribute.StringSlice(tracing.AttrSpecifier, req.Inputs),
	)
	defer func() { tracing.Finish(span, err) }()

	if len(req.Inputs) == 0 {
		u.Reporter.Error(artifact.ErrNoArtifactsSpecified.Error())
		return false, artifact.ErrNoArtifactsSpecified
	}

	if err := selector.ValidateCounts(req.Inputs, req.Versions); err != nil {
		u.Reporter.Error(err.Error())
		return false, err
	}

	res, err := u.resolver(req)
	if err != nil {
		u.Reporter.Error(err.Error())
		return false, err
	}

	filter := matcher.LanguageFilter{Language: req.Options.Language, AllLanguages: req.Options.AllLanguages}
	set, err := u.Selector.Select(ctx, req.Inputs, req.Versions, res, 1, filter)
	u.reportWarnings(res)
	if err != nil {
		reportJoined(u.Reporter, err)
		return false, err
	}

	if err := u.showSelections(set); err != nil {
		return false, fmt.Errorf("show selections: %w", err)
	}

	if req.WhatIf {
		u.Reporter.Info(MsgWhatIf)
		return true, nil
	}

	confirmed, err := u.Confirmer.Confirm(ctx, set)
	if err != nil {
		u.Reporter.Error(err.Error())
		return false, fmt.Errorf("confirm: %w", err)
	}
	if !confirmed {
		u.Reporter.Warn(MsgDeclined)
		return false, artifact.ErrUserDeclined
	}

	report, activated := u.Orchestrator.Activate(ctx, set, false, req.Options)
	if err := u.showReport(report); err != nil {
		return false, fmt.Errorf("show report: %w", err)
	}

	// Earlier successes stay active after a failure, so the outputs are written
	// either way.
	if err := u.writeOutputs(); err != nil {
		u.Reporter.Error(err.Error())
		return false, err
	}

	if !activated {
		return false, report.Err()
	}
	u.Reporter.Info(MsgActivating)
	log.Info(log.CatActivate, "use finished", "session", u.Session.ID(), "artifacts", set.Len())
	return true, nil
}

func (u *Use) resolver(req Request) (*resolver.Resolver, error) {
	global := u.Session.GlobalResolver()
	if len(req.Registries) == 0 || u.BuildResolver == nil {
		return global, nil
	}
	extra, err := u.BuildResolver(req.Registries, req.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("project registries: %w", err)
	}
	return global.With(extra), nil
}

func (u *Use) reportWarnings(res *resolver.Resolver) {
	for _, w := range res.Warnings() {
		u.Reporter.Warn(w.String())
	}
}

func (u *Use) showSelections(set *artifact.SelectionSet) error {
	if u.JSON {
		return presentation.NewFormatter(u.Out).FormatSelections(presentation.FromSelectionSet(set))
	}
	return presentation.ShowSelections(u.Out, set)
}

func (u *Use) showReport(r *activation.Report) error {
	if u.JSON {
		return presentation.NewFormatter(u.Out).FormatOutcomes(presentation.FromReport(r))
	}
	return presentation.ShowReport(u.Out, r)
}

func (u *Use) writeOutputs() error {
	diff := u.Orchestrator.Environment().Diff()
	if path := u.Outputs.Postscript; path != "" {
		shell := activation.ShellFor(path, u.Outputs.Shell)
		if err := activation.WritePostscript(path, shell, diff); err != nil {
			return err
		}
	}
	if path := u.Outputs.MSBuildProps; path != "" {
		if err := activation.WriteMSBuildProps(path, diff); err != nil {
			return err
		}
	}
	return nil
}

// reportJoined reports each line of err separately, so every failure joined by
// the selector gets its own message.
func reportJoined(r presentation.Reporter, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		r.Error(line)
	}
}
