package autopublish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/observability/metrics"
	"draftdesk/internal/observability/tracing"
	"draftdesk/internal/repository"
)

const (
	defaultConcurrency = 4

	reasonLocked = "article locked by another run"
	noteDisabled = "auto-publish is disabled by policy"
)

// PublishResult is the answer of the publish transport. Success=false with
// Error set is a rejection; transport failures are returned as errors.
type PublishResult struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	ExternalRef string `json:"external_ref,omitempty"`
}

// Publisher delivers an article to the public site.
type Publisher interface {
	Publish(ctx context.Context, a *entity.Article) (*PublishResult, error)
}

// Notifier announces published articles. Failures are logged only.
type Notifier interface {
	NotifyPublished(ctx context.Context, a *entity.Article, externalRef string) error
}

// Locker grants exclusive, expiring ownership of a key.
type Locker interface {
	TryLock(ctx context.Context, key string) (release func(context.Context) error, acquired bool, err error)
}

// Outcome of one article in a cycle.
type Outcome string

const (
	OutcomePublished Outcome = "published"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// ItemDetail records what happened to one article in a cycle.
type ItemDetail struct {
	ArticleID   int64    `json:"article_id"`
	Title       string   `json:"title"`
	Outcome     Outcome  `json:"outcome"`
	Reasons     []string `json:"reasons,omitempty"`
	Error       string   `json:"error,omitempty"`
	ExternalRef string   `json:"external_ref,omitempty"`
}

// CycleResult aggregates one RunCycle call. Details are in candidate order.
type CycleResult struct {
	Checked   int          `json:"checked"`
	Published int          `json:"published"`
	Failed    int          `json:"failed"`
	Skipped   int          `json:"skipped"`
	Details   []ItemDetail `json:"details"`
	Note      string       `json:"note,omitempty"`
}

// Gate evaluates eligibility and publishes eligible articles.
// Validator, Notifier, Locker and Audit are optional.
type Gate struct {
	Articles    repository.ArticleRepository
	Audit       repository.AuditRepository
	Validator   Validator
	Publisher   Publisher
	Notifier    Notifier
	Locker      Locker
	Concurrency int              // articles processed in parallel; 0 means 4
	Clock       func() time.Time // nil means time.Now
}

func (g *Gate) now() time.Time {
	if g.Clock == nil {
		return time.Now()
	}
	return g.Clock()
}

// Check loads an article and evaluates it against p.
func (g *Gate) Check(ctx context.Context, articleID int64, p Policy) (EligibilityResult, error) {
	a, err := g.Articles.Get(ctx, articleID)
	if err != nil {
		return EligibilityResult{}, fmt.Errorf("get article: %w", err)
	}
	if a == nil {
		return EligibilityResult{}, fmt.Errorf("article %d: %w", articleID, entity.ErrNotFound)
	}
	return g.IsEligible(ctx, a, p), nil
}

// MarkReady moves an article to ready_to_publish and, when none is set,
// assigns its auto-publish deadline from p.
func (g *Gate) MarkReady(ctx context.Context, articleID int64, p Policy) (*entity.Article, error) {
	a, err := g.Articles.Get(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("article %d: %w", articleID, entity.ErrNotFound)
	}

	status := entity.StatusReadyToPublish
	patch := repository.ArticlePatch{Status: &status}
	if a.AutopublishDeadline == nil {
		deadline := DeadlineFor(g.now(), p)
		patch.AutopublishDeadline = &deadline
		a.AutopublishDeadline = &deadline
	}
	if err := g.Articles.Save(ctx, articleID, patch); err != nil {
		return nil, fmt.Errorf("save article: %w", err)
	}
	a.Status = status

	g.audit(ctx, articleID, "marked_ready",
		"deadline="+a.AutopublishDeadline.UTC().Format(time.RFC3339))
	return a, nil
}

// RunCycle publishes every eligible candidate under p. One article's failure
// never stops the others; only a failure to list candidates is returned.
func (g *Gate) RunCycle(ctx context.Context, p Policy) (*CycleResult, error) {
	if !p.Enabled {
		slog.Info("auto-publish cycle skipped", slog.String("reason", noteDisabled))
		return &CycleResult{Details: []ItemDetail{}, Note: noteDisabled}, nil
	}

	ctx, span := tracing.StartSpan(ctx, "autopublish.RunCycle")
	defer span.End()
	start := time.Now()

	notReviewed := false
	candidates, err := g.Articles.ListCandidates(ctx, repository.CandidateFilter{
		Status:         entity.StatusReadyToPublish,
		DeadlineBefore: g.now(),
		HumanReviewed:  &notReviewed,
		Limit:          p.MaxArticlesPerRun,
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	details := make([]ItemDetail, len(candidates))
	var eg errgroup.Group
	eg.SetLimit(g.concurrency())
	for i, a := range candidates {
		eg.Go(func() error {
			details[i] = g.process(ctx, a, p)
			return nil
		})
	}
	_ = eg.Wait()

	res := &CycleResult{Checked: len(candidates), Details: details}
	for _, d := range details {
		switch d.Outcome {
		case OutcomePublished:
			res.Published++
		case OutcomeFailed:
			res.Failed++
		case OutcomeSkipped:
			res.Skipped++
		}
	}

	duration := time.Since(start)
	metrics.RecordAutopublishCycle(res.Published, res.Failed, res.Skipped, duration)
	span.SetAttributes(
		attribute.Int("checked", res.Checked),
		attribute.Int("published", res.Published),
		attribute.Int("failed", res.Failed))
	slog.Info("auto-publish cycle completed",
		slog.Int("checked", res.Checked),
		slog.Int("published", res.Published),
		slog.Int("failed", res.Failed),
		slog.Int("skipped", res.Skipped),
		slog.Duration("duration", duration))
	return res, nil
}

func (g *Gate) concurrency() int {
	if g.Concurrency <= 0 {
		return defaultConcurrency
	}
	return g.Concurrency
}

// process handles one candidate. It never returns an error; every failure is
// recorded in the detail.
func (g *Gate) process(ctx context.Context, candidate *entity.Article, p Policy) ItemDetail {
	detail := ItemDetail{ArticleID: candidate.ID, Title: candidate.Title}

	ctx, span := tracing.StartSpan(ctx, "autopublish.process",
		attribute.Int64("article_id", candidate.ID))
	defer span.End()

	if g.Locker != nil {
		release, acquired, err := g.Locker.TryLock(ctx, entity.ArticleLockKey(candidate.ID))
		if err != nil {
			return g.fail(ctx, span, detail, fmt.Errorf("acquire article lock: %w", err))
		}
		if !acquired {
			detail.Outcome = OutcomeSkipped
			detail.Reasons = []string{reasonLocked}
			return detail
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				slog.Warn("failed to release article lock",
					slog.Int64("article_id", candidate.ID),
					slog.Any("error", err))
			}
		}()
	}

	// Re-read under the lock: a concurrent run or a reviewer may have changed it.
	a, err := g.Articles.Get(ctx, candidate.ID)
	if err != nil {
		return g.fail(ctx, span, detail, fmt.Errorf("get article: %w", err))
	}
	if a == nil {
		return g.fail(ctx, span, detail, fmt.Errorf("article %d: %w", candidate.ID, entity.ErrNotFound))
	}

	elig := g.IsEligible(ctx, a, p)
	if !elig.Eligible {
		detail.Outcome = OutcomeSkipped
		detail.Reasons = elig.Reasons
		slog.Info("article not eligible for auto-publish",
			slog.Int64("article_id", a.ID),
			slog.Any("reasons", elig.Reasons))
		return detail
	}

	result, err := g.Publisher.Publish(ctx, a)
	if err != nil {
		return g.fail(ctx, span, detail, fmt.Errorf("publish: %w", err))
	}
	if result == nil {
		return g.fail(ctx, span, detail, errors.New("publisher returned no result"))
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "publisher rejected the article"
		}
		return g.fail(ctx, span, detail, errors.New(msg))
	}

	status := entity.StatusPublished
	publishedAt := g.now()
	ref := result.ExternalRef
	if err := g.Articles.Save(ctx, a.ID, repository.ArticlePatch{
		Status:        &status,
		PublishedAt:   &publishedAt,
		ExternalRef:   &ref,
		ClearDeadline: true,
	}); err != nil {
		return g.fail(ctx, span, detail, fmt.Errorf("published as %q but status update failed: %w", ref, err))
	}

	detail.Outcome = OutcomePublished
	detail.ExternalRef = ref
	g.audit(ctx, a.ID, "auto_published", "external_ref="+ref)
	slog.Info("article auto-published",
		slog.Int64("article_id", a.ID),
		slog.String("external_ref", ref))

	if g.Notifier != nil {
		if err := g.Notifier.NotifyPublished(ctx, a, ref); err != nil {
			slog.Warn("publish notification failed",
				slog.Int64("article_id", a.ID),
				slog.Any("error", err))
		}
	}
	return detail
}

func (g *Gate) fail(ctx context.Context, span trace.Span, detail ItemDetail, err error) ItemDetail {
	tracing.RecordError(span, err)
	detail.Outcome = OutcomeFailed
	detail.Error = err.Error()
	g.audit(ctx, detail.ArticleID, "auto_publish_failed", err.Error())
	slog.Error("auto-publish failed",
		slog.Int64("article_id", detail.ArticleID),
		slog.Any("error", err))
	return detail
}

// audit writes an audit event. Failures are logged and otherwise ignored.
func (g *Gate) audit(ctx context.Context, articleID int64, action, detail string) {
	if g.Audit == nil {
		return
	}
	ev := &entity.AuditEvent{ArticleID: articleID, Action: action, Detail: detail}
	if err := g.Audit.Record(context.WithoutCancel(ctx), ev); err != nil {
		slog.Warn("failed to record audit event",
			slog.Int64("article_id", articleID),
			slog.String("action", action),
			slog.Any("error", err))
	}
}
