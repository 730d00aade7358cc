// Package reconcile runs the full pipeline for one drawing and one bill of
// quantities: resolve, aggregate, then classify, match, derive and gate each
// line item.
package reconcile

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"yashubustudio/boqmatch/boqio"
	"yashubustudio/boqmatch/classify"
	"yashubustudio/boqmatch/gates"
	"yashubustudio/boqmatch/geometry"
	"yashubustudio/boqmatch/layers"
	"yashubustudio/boqmatch/match"
	"yashubustudio/boqmatch/quantity"
)

// Options configures a Service. Zero values take defaults.
type Options struct {
	Workers     int
	MaxDepth    int
	ArcSegments int
	// UnitScale overrides unit detection when Length is positive.
	UnitScale geometry.UnitScale
	Rules     classify.Rules
	Mapping   match.LayerMapping
	Scoring   match.Scoring
	Quantity  quantity.Options
	Gates     gates.Options
	// Progress, when set, is called after each line item.
	Progress func(done, total int)
}

// Service holds everything that does not depend on the drawing. It is safe
// for concurrent use.
type Service struct {
	opts    Options
	cls     *classify.Classifier
	deriver quantity.Deriver
	gates   *gates.Gates
	log     *zap.Logger
}

// NewService builds the classifiers and thresholds. A nil logger discards.
func NewService(opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Rules.Intents == nil && opts.Rules.Subtypes == nil && opts.Rules.Disciplines == nil {
		opts.Rules = classify.DefaultRules()
	}
	opts.Scoring = opts.Scoring.ApplyDefaults()
	opts.Gates.AcceptThreshold = opts.Scoring.AcceptThreshold
	opts.Gates.UntrustedPatterns = opts.Scoring.UntrustedPatterns

	cls := classify.NewClassifier(opts.Rules)
	return &Service{
		opts:    opts,
		cls:     cls,
		deriver: quantity.NewDeriver(opts.Quantity),
		gates:   gates.New(opts.Gates, cls),
		log:     logger,
	}
}

// Classifier exposes the compiled classifier.
func (s *Service) Classifier() *classify.Classifier { return s.cls }

// Profiled is a resolved and aggregated drawing.
type Profiled struct {
	Source      string
	Scale       geometry.UnitScale
	ScaleSource boqio.ScaleSource
	Resolved    geometry.Result
	Layers      *layers.Set
}

// Profile resolves d into world-space primitives and aggregates them per
// layer. Structural problems become warnings, never errors.
func (s *Service) Profile(d geometry.Drawing) Profiled {
	scale, src := boqio.DetectUnitScale(d, s.opts.UnitScale)
	opts := []geometry.Option{
		geometry.WithUnitScale(scale),
		geometry.WithLogger(s.log),
	}
	if s.opts.MaxDepth > 0 {
		opts = append(opts, geometry.WithMaxDepth(s.opts.MaxDepth))
	}
	if s.opts.ArcSegments > 0 {
		opts = append(opts, geometry.WithArcSegments(s.opts.ArcSegments))
	}
	res := geometry.NewResolver(d.Blocks, opts...).Resolve(d.Entities)
	geometry.SortWarnings(res.Warnings)
	set := layers.Aggregate(res.Primitives)
	s.log.Info("drawing profiled",
		zap.String("source", d.Source),
		zap.String("scale_source", string(src)),
		zap.Float64("scale", scale.Length),
		zap.Int("primitives", len(res.Primitives)),
		zap.Int("layers", set.Len()),
		zap.Int("warnings", len(res.Warnings)))
	return Profiled{Source: d.Source, Scale: scale, ScaleSource: src, Resolved: res, Layers: set}
}

// Run reconciles items against d. Rows come back in input order. The context
// is checked between items only.
func (s *Service) Run(ctx context.Context, d geometry.Drawing, items []boqio.LineItem) (*Report, error) {
	if len(items) == 0 {
		return nil, &StageError{Stage: StageItems, Err: ErrNoItems}
	}
	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageDrawing, Err: err}
	}
	prof := s.Profile(d)
	rows, err := s.MatchAll(ctx, prof.Layers, items)
	if err != nil {
		return nil, err
	}
	rep := &Report{
		RunID:            uuid.NewString(),
		GeneratedAt:      time.Now().UTC(),
		Source:           prof.Source,
		UnitScale:        prof.Scale,
		ScaleSource:      prof.ScaleSource,
		Stats:            prof.Resolved.Stats,
		Profiles:         layers.Snapshots(prof.Layers.Layers()),
		BlockProfiles:    layers.Snapshots(prof.Layers.Blocks()),
		Rows:             rows,
		ResolverWarnings: prof.Resolved.Warnings,
		Summary:          summarize(rows),
	}
	s.log.Info("reconciled",
		zap.String("run_id", rep.RunID),
		zap.Int("items", rep.Summary.Items),
		zap.Int("approved", rep.Summary.Approved),
		zap.Int("pending", rep.Summary.Pending),
		zap.Int("unmatched", rep.Summary.Unmatched),
		zap.Int("type_mismatch", rep.Summary.TypeMismatch))
	return rep, nil
}

// MatchAll stages every item against an aggregated layer set using a bounded
// worker pool.
func (s *Service) MatchAll(ctx context.Context, set *layers.Set, items []boqio.LineItem) ([]StagedRow, error) {
	matcher := match.NewMatcher(set, s.cls,
		match.WithMapping(s.opts.Mapping),
		match.WithScoring(s.opts.Scoring),
		match.WithLogger(s.log))

	rows := make([]StagedRow, len(items))
	total := len(items)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i := range items {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = s.stage(matcher, items[i])
			if s.opts.Progress != nil {
				s.opts.Progress(int(done.Add(1)), total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &StageError{Stage: StageMatch, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageMatch, Err: err}
	}
	return rows, nil
}

// stage runs classifier, matcher, deriver and gates for one item.
func (s *Service) stage(m *match.Matcher, item boqio.LineItem) StagedRow {
	intent := s.cls.Intent(item.DeclaredUnit, item.Description)
	row := StagedRow{
		Item:    item,
		Intent:  intent,
		Method:  intent.Method,
		Subtype: s.cls.Subtype(intent.Kind, item.Description),
	}
	if intent.Ambiguous {
		row.Warnings = append(row.Warnings, fmt.Sprintf("description hints at more than one kind; using %s", intent.Kind))
	}

	if intent.Kind == classify.Service {
		row.Discipline = s.cls.Discipline(item.Section, item.Description, nil)
		row.Derivation = s.deriver.Derive(classify.MethodService, quantity.Evidence{}, item.Description)
		row.FinalQuantity = row.Derivation.Quantity
		row.Confidence = intent.Confidence
		row.MatchReason = "service item, quantity fixed at 1"
		row.Findings = s.gates.Check(gates.Input{
			Intent:           intent,
			Derivation:       row.Derivation,
			Confidence:       row.Confidence,
			DeclaredQuantity: item.DeclaredQuantity,
		})
		row.Status = StatusApproved
		if gates.HasErrors(row.Findings) {
			row.Status = StatusPending
		}
		return s.finish(row)
	}

	res := m.Match(match.Query{
		Description: item.Description,
		Section:     item.Section,
		Kind:        intent.Kind,
		Subtype:     row.Subtype.Name,
	})
	row.Discipline = res.Discipline
	row.Rejections = res.Rejections
	row.Suggestions = res.Suggestions

	if res.Accepted == nil {
		row.Status = StatusUnmatched
		row.RejectionKind = res.RejectionKind
		row.MatchReason = unmatchedReason(res, intent.Kind)
		row.Derivation = quantity.Derivation{Method: intent.Method, Steps: []string{"no geometric evidence"}}
		row.Findings = s.gates.Check(gates.Input{Intent: intent, Match: res})
		return s.finish(row)
	}

	cand := res.Accepted
	row.Candidate = cand
	row.Derivation = s.deriver.Derive(intent.Method, quantity.Evidence{Kind: cand.Evidence, Profile: cand.Profile}, item.Description)
	row.Method = row.Derivation.Method
	row.FinalQuantity = row.Derivation.Quantity
	row.Confidence = cand.Confidence
	if c := row.Derivation.ConfidenceCap; c > 0 && row.Confidence > c {
		row.Confidence = c
	}
	row.MatchReason = matchReason(cand)
	row.Findings = s.gates.Check(gates.Input{
		Intent:           intent,
		Subtype:          row.Subtype.Name,
		Match:            res,
		Derivation:       row.Derivation,
		Confidence:       row.Confidence,
		DeclaredQuantity: item.DeclaredQuantity,
	})

	switch {
	case gates.Has(row.Findings, gates.CodeKindMismatch):
		row.Status = StatusTypeMismatch
		row.FinalQuantity = nil
		row.Confidence = 0
	case gates.HasErrors(row.Findings):
		row.Status = StatusPending
	default:
		row.Status = StatusApproved
	}
	return s.finish(row)
}

func (s *Service) finish(row StagedRow) StagedRow {
	row.Bucket = BucketFor(row.Confidence)
	for _, f := range row.Findings {
		if f.Severity != gates.SeverityError {
			row.Warnings = append(row.Warnings, f.Message)
		}
	}
	s.log.Debug("row staged",
		zap.Int("row", row.Item.RowIndex),
		zap.String("status", string(row.Status)),
		zap.String("layer", row.Layer()),
		zap.Float64("confidence", row.Confidence))
	return row
}
