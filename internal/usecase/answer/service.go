// Package answer orchestrates the full question pipeline: validation,
// deterministic guards, session summarization, mode classification,
// retrieval, and answer generation.
package answer

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/planagent/internal/domain"
	"github.com/kailas-cloud/planagent/internal/logger"
	"github.com/kailas-cloud/planagent/internal/metrics"
	"github.com/kailas-cloud/planagent/internal/usecase/classify"
	"github.com/kailas-cloud/planagent/internal/usecase/guard"
	"github.com/kailas-cloud/planagent/internal/usecase/prompt"
	"github.com/kailas-cloud/planagent/internal/usecase/summary"
)

// Request is one answer invocation: the user question plus the current
// session's drawing objects.
type Request struct {
	Question string
	Objects  []domain.DrawingObject
}

// Result is the finalized outcome of a request, identical for the sync and
// streaming paths.
type Result struct {
	Answer   string
	Mode     domain.QueryMode
	Guard    domain.GuardKind
	Summary  domain.SessionSummary
	Evidence domain.Evidence
}

// Service runs the answer pipeline.
type Service struct {
	summarizer *summary.Service
	retriever  Retriever
	prompts    *prompt.Builder
	generator  Generator
}

// New creates an answer service.
func New(summarizer *summary.Service, retriever Retriever, prompts *prompt.Builder, generator Generator) *Service {
	return &Service{
		summarizer: summarizer,
		retriever:  retriever,
		prompts:    prompts,
		generator:  generator,
	}
}

// Answer resolves a request synchronously. Guard-resolved requests never
// touch the retriever or the generator.
func (s *Service) Answer(ctx context.Context, req Request) (Result, error) {
	state, err := s.prepare(ctx, req)
	if err != nil {
		metrics.AnswersTotal.WithLabelValues(string(classify.Mode(req.Question)), "error").Inc()
		return Result{}, err
	}
	if state.Guard.Triggered() {
		return s.finalize(ctx, state), nil
	}

	if done := s.checkAbsentDefinition(state); !done {
		text, err := s.generator.Complete(ctx, prompt.SystemPrompt, s.prompts.Build(state))
		if err != nil {
			metrics.AnswersTotal.WithLabelValues(string(state.Mode), "error").Inc()
			return Result{}, err
		}
		state.Answer = text
		state.Step = domain.StepGenerated
	}

	return s.finalize(ctx, state), nil
}

// AnswerStream resolves a request while delivering answer fragments through
// emit. The emitted fragments concatenate exactly to the Result answer.
// Guard-resolved requests emit their fixed answer as a single fragment.
func (s *Service) AnswerStream(ctx context.Context, req Request, emit func(fragment string) error) (Result, error) {
	state, err := s.prepare(ctx, req)
	if err != nil {
		metrics.AnswersTotal.WithLabelValues(string(classify.Mode(req.Question)), "error").Inc()
		return Result{}, err
	}

	if state.Guard.Triggered() || s.checkAbsentDefinition(state) {
		if err := s.emitFragment(emit, state.Answer); err != nil {
			return Result{}, err
		}
		return s.finalize(ctx, state), nil
	}

	var accumulated strings.Builder
	final, err := s.generator.Stream(ctx, prompt.SystemPrompt, s.prompts.Build(state), func(fragment string) error {
		accumulated.WriteString(fragment)
		return s.emitFragment(emit, fragment)
	})
	if err != nil {
		metrics.AnswersTotal.WithLabelValues(string(state.Mode), "error").Inc()
		return Result{}, err
	}

	state.Answer, err = s.reconcile(ctx, accumulated.String(), final, emit)
	if err != nil {
		return Result{}, err
	}
	state.Step = domain.StepGenerated

	return s.finalize(ctx, state), nil
}

// prepare runs every pipeline stage up to generation: validate, guard chain,
// summarize, classify, retrieve. A triggered guard returns a finalizable
// state with the guard answer already set.
func (s *Service) prepare(ctx context.Context, req Request) (*domain.AnswerState, error) {
	state := &domain.AnswerState{
		Step:           domain.StepStart,
		Question:       strings.TrimSpace(req.Question),
		SessionObjects: req.Objects,
	}

	if err := domain.ValidateObjects(req.Objects); err != nil {
		return nil, err
	}

	type guardStage struct {
		step domain.Step
		eval func() domain.GuardResult
	}
	stages := []guardStage{
		{domain.StepSmalltalk, func() domain.GuardResult { return guard.Smalltalk(state.Question) }},
		{domain.StepGeometry, func() domain.GuardResult { return guard.MissingGeometry(state.Question, req.Objects) }},
		{domain.StepFollowup, func() domain.GuardResult { return guard.NeedsInput(state.Question, req.Objects) }},
	}
	for _, stage := range stages {
		if res := stage.eval(); res.Triggered() {
			state.Guard = res
			state.Answer = res.Answer
			state.Step = stage.step
			state.Summary = s.summarizer.Summarize(req.Objects)
			state.Mode = classify.Mode(state.Question)
			logger.FromContext(ctx).Info("guard resolved request",
				zap.String("guard", string(res.Kind)),
				zap.Strings("missing_layers", res.MissingLayers),
			)
			metrics.GuardTriggersTotal.WithLabelValues(string(res.Kind)).Inc()
			return state, nil
		}
	}

	state.Summary = s.summarizer.Summarize(req.Objects)
	state.Step = domain.StepSummarized

	state.Mode = classify.Mode(state.Question)
	state.Step = domain.StepClassified

	if state.Mode != domain.ModeJSONOnly {
		chunks, err := s.retriever.Retrieve(ctx, state.Question)
		if err != nil {
			return nil, err
		}
		state.Retrieved = chunks
		metrics.RetrievedChunks.Observe(float64(len(chunks)))
	}
	state.Step = domain.StepRetrieved

	return state, nil
}

// checkAbsentDefinition applies the definition guard on doc-only requests
// after retrieval. Reports whether the guard produced the final answer.
func (s *Service) checkAbsentDefinition(state *domain.AnswerState) bool {
	if state.Mode != domain.ModeDocOnly {
		return false
	}
	res := guard.AbsentDefinition(state.Question, state.Retrieved)
	if !res.Triggered() {
		return false
	}
	state.Guard = res
	state.Answer = res.Answer
	metrics.GuardTriggersTotal.WithLabelValues(string(res.Kind)).Inc()
	return true
}

// reconcile resolves the streamed fragments against the provider's final
// text. When the provider reports more than was streamed, the missing tail
// is emitted so fragments still concatenate to the final answer. Any other
// divergence keeps the longer text and logs a warning.
func (s *Service) reconcile(ctx context.Context, accumulated, final string, emit func(string) error) (string, error) {
	switch {
	case final == accumulated || final == "":
		return accumulated, nil
	case len(final) > len(accumulated) && strings.HasPrefix(final, accumulated):
		tail := final[len(accumulated):]
		if err := s.emitFragment(emit, tail); err != nil {
			return "", err
		}
		return final, nil
	default:
		logger.FromContext(ctx).Warn("streamed fragments diverge from final answer",
			zap.Int("accumulated_len", len(accumulated)),
			zap.Int("final_len", len(final)),
		)
		if len(final) > len(accumulated) {
			return final, nil
		}
		return accumulated, nil
	}
}

func (s *Service) emitFragment(emit func(string) error, fragment string) error {
	if fragment == "" {
		return nil
	}
	metrics.StreamFragmentsTotal.Inc()
	return emit(fragment)
}

// finalize stamps evidence and produces the Result.
func (s *Service) finalize(ctx context.Context, state *domain.AnswerState) Result {
	if !state.Guard.Triggered() {
		state.Evidence = buildEvidence(state)
	}
	state.Step = domain.StepFinalized

	status := "ok"
	if state.Guard.Triggered() {
		status = "guarded"
	}
	metrics.AnswersTotal.WithLabelValues(string(state.Mode), status).Inc()

	logger.FromContext(ctx).Info("answer finalized",
		zap.String("mode", string(state.Mode)),
		zap.String("guard", string(state.Guard.Kind)),
		zap.Int("chunks", len(state.Retrieved)),
		zap.Int("answer_len", len(state.Answer)),
	)

	return Result{
		Answer:   state.Answer,
		Mode:     state.Mode,
		Guard:    state.Guard.Kind,
		Summary:  state.Summary,
		Evidence: state.Evidence,
	}
}

// buildEvidence records what informed the answer: retrieved chunks for the
// document modes, session layers and object positions for the JSON modes.
func buildEvidence(state *domain.AnswerState) domain.Evidence {
	ev := domain.Evidence{DocumentChunks: []domain.ChunkEvidence{}}

	if state.Mode != domain.ModeJSONOnly {
		ev.DocumentChunks = domain.EvidenceFromChunks(state.Retrieved)
	}

	if state.Mode != domain.ModeDocOnly && len(state.SessionObjects) > 0 {
		layerSet := make(map[string]struct{})
		indices := make([]int, 0, len(state.SessionObjects))
		for i, obj := range state.SessionObjects {
			indices = append(indices, i)
			if canonical, ok := summary.MatchKnownLayer(obj.Layer); ok {
				layerSet[canonical] = struct{}{}
			} else if obj.Layer != "" {
				layerSet[obj.Layer] = struct{}{}
			}
		}
		layers := make([]string, 0, len(layerSet))
		for l := range layerSet {
			layers = append(layers, l)
		}
		sort.Strings(layers)
		ev.SessionObjects = &domain.ObjectEvidence{LayersUsed: layers, ObjectIndices: indices}
	}

	return ev
}
