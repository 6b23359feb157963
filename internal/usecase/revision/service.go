package revision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/observability/metrics"
	"draftdesk/internal/observability/tracing"
	"draftdesk/internal/repository"
	"draftdesk/internal/usecase/quality"
	"draftdesk/internal/usecase/strategy"
	"draftdesk/internal/usecase/versioning"
)

const defaultHumanizeStyle = "conversational"

// Request selects the strategy and options of one revision.
type Request struct {
	Strategy           strategy.ID `json:"strategy"`
	CustomInstructions string      `json:"custom_instructions,omitempty"`
	TargetWordCount    int         `json:"target_word_count,omitempty"`
	// Humanize asks for humanization even when the strategy does not require it.
	Humanize bool `json:"humanize,omitempty"`
	// AllowUnhumanized keeps the generated text when humanization required by
	// the strategy fails, instead of failing the revision.
	AllowUnhumanized bool `json:"allow_unhumanized,omitempty"`
}

// Result describes the version produced by a successful revision.
type Result struct {
	ArticleID      int64       `json:"article_id"`
	VersionID      int64       `json:"version_id"`
	VersionNumber  int         `json:"version_number"`
	Strategy       strategy.ID `json:"strategy"`
	Content        string      `json:"content"`
	WordCount      int         `json:"word_count"`
	ChangesSummary string      `json:"changes_summary"`
	Provider       string      `json:"provider"`
	Humanized      bool        `json:"humanized"`
	LinksAdded     bool        `json:"links_added"`
}

// Config tunes provider calls.
type Config struct {
	// ProviderTimeout bounds every single provider call. A timeout counts as a
	// provider failure and moves on to the next provider. Zero means unbounded.
	ProviderTimeout time.Duration
	HumanizeStyle   string
}

// Service orchestrates revisions. Generators and Humanizers are fallback
// chains tried in order; Linker, Locker and Audit are optional.
type Service struct {
	Articles   repository.ArticleRepository
	Audit      repository.AuditRepository
	Versions   *versioning.Service
	Selector   *strategy.Selector
	Generators []Generator
	Humanizers []Humanizer
	Linker     LinkEnricher
	Locker     Locker
	Thresholds quality.Thresholds
	Config     Config
}

// Revise runs one revision of articleID. Progress events are delivered to
// progress (which may be nil) in stage order.
//
// On failure the returned error is a *StageError and the article and its
// version history are left as they were. Canceling ctx before the persisting
// stage abandons the revision without side effects.
func (s *Service) Revise(ctx context.Context, articleID int64, req Request, progress ProgressFunc) (*Result, error) {
	if articleID <= 0 {
		return nil, versioning.ErrInvalidArticleID
	}
	st, err := strategy.Lookup(req.Strategy)
	if err != nil {
		return nil, err
	}

	if s.Locker != nil {
		release, acquired, err := s.Locker.TryLock(ctx, entity.ArticleLockKey(articleID))
		if err != nil {
			return nil, fmt.Errorf("acquire article lock: %w", err)
		}
		if !acquired {
			return nil, fmt.Errorf("article %d: %w", articleID, ErrRevisionInProgress)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				slog.Warn("failed to release article lock",
					slog.Int64("article_id", articleID),
					slog.Any("error", err))
			}
		}()
	}

	ctx, span := tracing.StartSpan(ctx, "revision.Revise",
		attribute.Int64("article_id", articleID),
		attribute.String("strategy", string(st.ID)))
	defer span.End()

	start := time.Now()
	at := &attempt{svc: s, articleID: articleID, strategy: st, req: req, progress: progress}
	res, err := at.run(ctx)
	duration := time.Since(start)

	if err != nil {
		se := &StageError{ArticleID: articleID, Stage: at.stage, Err: err}
		progress.fail(at.stage, se)
		tracing.RecordError(span, se)
		metrics.RecordRevision(string(st.ID), false, string(at.stage), duration)
		s.audit(ctx, articleID, "revision_failed", se.Error())
		slog.Error("revision failed",
			slog.Int64("article_id", articleID),
			slog.String("strategy", string(st.ID)),
			slog.String("stage", string(at.stage)),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return nil, se
	}

	metrics.RecordRevision(string(st.ID), true, "", duration)
	span.SetAttributes(attribute.Int("version_number", res.VersionNumber))
	s.audit(ctx, articleID, "revision_completed",
		fmt.Sprintf("strategy=%s version=%d provider=%s", st.ID, res.VersionNumber, res.Provider))
	slog.Info("revision completed",
		slog.Int64("article_id", articleID),
		slog.String("strategy", string(st.ID)),
		slog.Int64("version_id", res.VersionID),
		slog.Int("version_number", res.VersionNumber),
		slog.String("provider", res.Provider),
		slog.Int("word_count", res.WordCount),
		slog.Duration("duration", duration))
	return res, nil
}

// attempt holds the state of one Revise call.
type attempt struct {
	svc       *Service
	articleID int64
	strategy  strategy.Strategy
	req       Request
	progress  ProgressFunc
	stage     Stage
}

func (at *attempt) enter(stage Stage, msg string) {
	at.stage = stage
	at.progress.report(stage, msg)
}

func (at *attempt) run(ctx context.Context) (*Result, error) {
	s := at.svc

	at.enter(StageFetching, "Loading article")
	article, err := s.Articles.Get(ctx, at.articleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, fmt.Errorf("article %d: %w", at.articleID, entity.ErrNotFound)
	}

	at.enter(StageAnalyzingOriginal, "Analyzing current content")
	selector := s.selector()
	analysis := selector.Analyze(article)
	issues := quality.IdentifyIssues(analysis.Metrics, s.thresholds())

	at.enter(StageBuildingRequest, "Preparing "+at.strategy.Name+" request")
	payload, err := selector.BuildRequest(article, at.strategy.ID, strategy.Options{
		CustomInstructions: at.req.CustomInstructions,
		TargetWordCount:    at.req.TargetWordCount,
		Issues:             issues,
	})
	if err != nil {
		return nil, err
	}

	at.enter(StageGenerating, "Generating revised content")
	gen, provider, err := s.generate(ctx, payload)
	if err != nil {
		return nil, err
	}
	content := gen.Content

	humanized := false
	if at.strategy.RequiresHumanize || at.req.Humanize {
		at.enter(StageHumanizing, "Humanizing generated content")
		out, err := s.humanize(ctx, content)
		switch {
		case err == nil:
			content, humanized = out, true
		case at.strategy.RequiresHumanize && !at.req.AllowUnhumanized:
			return nil, err
		default:
			slog.Warn("humanization failed, keeping generated content",
				slog.Int64("article_id", at.articleID),
				slog.Any("error", err))
		}
	}

	linksAdded := false
	if !at.strategy.PreservesLinks && s.Linker != nil {
		at.enter(StageLinking, "Adding internal links")
		out, err := s.enrich(ctx, content, topicHints(article, gen))
		if err != nil {
			slog.Warn("link enrichment failed, keeping content",
				slog.Int64("article_id", at.articleID),
				slog.Any("error", err))
		} else {
			linksAdded = out != content
			content = out
		}
	}

	at.enter(StagePersisting, "Saving new version")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := s.Versions.CreateRevision(ctx, article, buildSnapshot(article, at.strategy, gen, content), versioning.Metadata{
		RevisionType:   string(at.strategy.ID),
		RevisionPrompt: revisionPrompt(payload),
		ChangesSummary: gen.ChangesSummary,
		Provider:       provider,
	})
	if err != nil {
		return nil, err
	}

	at.enter(StageDone, fmt.Sprintf("Version %d saved", v.VersionNumber))
	return &Result{
		ArticleID:      at.articleID,
		VersionID:      v.ID,
		VersionNumber:  v.VersionNumber,
		Strategy:       at.strategy.ID,
		Content:        v.Content,
		WordCount:      v.WordCount,
		ChangesSummary: v.ChangesSummary,
		Provider:       provider,
		Humanized:      humanized,
		LinksAdded:     linksAdded,
	}, nil
}

func (s *Service) selector() *strategy.Selector {
	if s.Selector == nil {
		return strategy.NewSelector(nil)
	}
	return s.Selector
}

func (s *Service) thresholds() quality.Thresholds {
	if s.Thresholds == (quality.Thresholds{}) {
		return quality.DefaultThresholds()
	}
	return s.Thresholds
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Config.ProviderTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Config.ProviderTimeout)
}

// generate folds over the generator chain and returns the first usable
// generation and the name of the provider that produced it.
func (s *Service) generate(ctx context.Context, req strategy.Request) (*Generation, string, error) {
	var errs ProviderErrors
	for _, g := range s.Generators {
		callCtx, cancel := s.callContext(ctx)
		gen, err := g.Generate(callCtx, req)
		cancel()
		if err == nil && (gen == nil || strings.TrimSpace(gen.Content) == "") {
			err = errEmptyContent
		}
		metrics.RecordProviderCall(g.Name(), "generate", err == nil)
		if err == nil {
			return gen, g.Name(), nil
		}

		slog.Warn("generation provider failed",
			slog.String("provider", g.Name()),
			slog.Any("error", err))
		errs = append(errs, &ProviderError{Provider: g.Name(), Err: err})
		if ctx.Err() != nil {
			break
		}
	}
	return nil, "", fmt.Errorf("%w: %w", ErrGenerationFailed, errs)
}

func (s *Service) humanize(ctx context.Context, content string) (string, error) {
	style := s.Config.HumanizeStyle
	if style == "" {
		style = defaultHumanizeStyle
	}

	var errs ProviderErrors
	for _, h := range s.Humanizers {
		callCtx, cancel := s.callContext(ctx)
		out, err := h.Humanize(callCtx, content, style)
		cancel()
		if err == nil && strings.TrimSpace(out) == "" {
			err = errEmptyContent
		}
		metrics.RecordProviderCall(h.Name(), "humanize", err == nil)
		if err == nil {
			return out, nil
		}

		slog.Warn("humanization provider failed",
			slog.String("provider", h.Name()),
			slog.Any("error", err))
		errs = append(errs, &ProviderError{Provider: h.Name(), Err: err})
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("%w: %w", ErrHumanizationFailed, errs)
}

func (s *Service) enrich(ctx context.Context, content string, hints []string) (string, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	out, err := s.Linker.SuggestLinks(callCtx, content, hints)
	if err == nil && strings.TrimSpace(out) == "" {
		err = errEmptyContent
	}
	metrics.RecordProviderCall("linker", "enrich", err == nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEnrichmentFailed, err)
	}
	return out, nil
}

// audit writes an audit event. Failures are logged and otherwise ignored.
func (s *Service) audit(ctx context.Context, articleID int64, action, detail string) {
	if s.Audit == nil {
		return
	}
	ev := &entity.AuditEvent{ArticleID: articleID, Action: action, Detail: detail}
	if err := s.Audit.Record(context.WithoutCancel(ctx), ev); err != nil {
		slog.Warn("failed to record audit event",
			slog.Int64("article_id", articleID),
			slog.String("action", action),
			slog.Any("error", err))
	}
}

func topicHints(a *entity.Article, gen *Generation) []string {
	var hints []string
	for _, h := range []string{gen.FocusKeyword, a.FocusKeyword, gen.Title, a.Title} {
		if h = strings.TrimSpace(h); h != "" {
			hints = append(hints, h)
		}
	}
	return hints
}

func revisionPrompt(req strategy.Request) string {
	lines := append([]string(nil), req.Instructions...)
	if req.CustomInstructions != "" {
		lines = append(lines, req.CustomInstructions)
	}
	return strings.Join(lines, "\n")
}

// buildSnapshot derives the stored content of the new version. Empty
// generated fields fall back to the article's values; headings and links are
// re-extracted from the final content.
func buildSnapshot(a *entity.Article, st strategy.Strategy, gen *Generation, content string) entity.ContentSnapshot {
	outline := quality.ExtractOutline(content)
	snap := entity.ContentSnapshot{
		Title:            firstNonEmpty(gen.Title, a.Title),
		Content:          content,
		MetaDescription:  firstNonEmpty(gen.MetaDescription, a.MetaDescription),
		FocusKeyword:     firstNonEmpty(gen.FocusKeyword, a.FocusKeyword),
		HeadingStructure: outline.Headings,
		InternalLinks:    outline.InternalLinks,
		ExternalLinks:    outline.ExternalLinks,
	}

	switch {
	case st.PreservesFAQs:
		snap.FAQs = mergeFAQs(a.FAQs, gen.FAQs)
	case len(gen.FAQs) > 0:
		snap.FAQs = append([]entity.FAQ(nil), gen.FAQs...)
	default:
		snap.FAQs = append([]entity.FAQ(nil), a.FAQs...)
	}
	return snap
}

// mergeFAQs keeps every existing FAQ and appends generated ones whose
// question is new (compared case-insensitively).
func mergeFAQs(existing, generated []entity.FAQ) []entity.FAQ {
	out := append([]entity.FAQ(nil), existing...)
	seen := make(map[string]bool, len(existing))
	for _, f := range existing {
		seen[strings.ToLower(strings.TrimSpace(f.Question))] = true
	}
	for _, f := range generated {
		key := strings.ToLower(strings.TrimSpace(f.Question))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
