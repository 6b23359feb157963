package revision_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftdesk/internal/domain/entity"
	"draftdesk/internal/infra/adapter/persistence/memory"
	"draftdesk/internal/repository"
	"draftdesk/internal/usecase/revision"
	"draftdesk/internal/usecase/strategy"
	"draftdesk/internal/usecase/versioning"
)

/* ───────── stubs ───────── */

type stubGenerator struct {
	name  string
	gen   *revision.Generation
	err   error
	block bool // wait for ctx cancellation
	hook  func()
	calls int
	got   strategy.Request
}

func (g *stubGenerator) Name() string { return g.name }

func (g *stubGenerator) Generate(ctx context.Context, req strategy.Request) (*revision.Generation, error) {
	g.calls++
	g.got = req
	if g.hook != nil {
		g.hook()
	}
	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.err != nil {
		return nil, g.err
	}
	out := *g.gen
	return &out, nil
}

type stubHumanizer struct {
	name  string
	err   error
	calls int
	style string
}

func (h *stubHumanizer) Name() string { return h.name }

func (h *stubHumanizer) Humanize(_ context.Context, content, style string) (string, error) {
	h.calls++
	h.style = style
	if h.err != nil {
		return "", h.err
	}
	return strings.Replace(content, "<p>", "<p>Honestly, ", 1), nil
}

type stubLinker struct {
	err   error
	hints []string
}

func (l *stubLinker) SuggestLinks(_ context.Context, content string, hints []string) (string, error) {
	l.hints = hints
	if l.err != nil {
		return "", l.err
	}
	return content + `<p>Related: <a href="/guides/espresso">espresso guide</a></p>`, nil
}

type stubLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
}

func (l *stubLocker) TryLock(_ context.Context, key string) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released = append(l.released, key)
		return nil
	}, true, nil
}

/* ───────── helpers ───────── */

const originalContent = `<h2>Brewing</h2><p>Coffee is brewed from roasted beans. <a href="/guides/beans">Beans</a> matter.</p>`

func okGeneration() *revision.Generation {
	return &revision.Generation{
		Title:           "Brewing Coffee at Home",
		MetaDescription: "How to brew coffee.",
		Content:         `<h2>Why brew at home</h2><p>Fresh coffee tastes better.</p><h3>Gear</h3><p>Use a <a href="https://example.org/grinder">burr grinder</a> and <a href="/guides/beans">good beans</a>.</p>`,
		FAQs:            []entity.FAQ{{Question: "Which grind?", Answer: "Medium."}},
		ChangesSummary:  "Rewrote the introduction.",
	}
}

type fixture struct {
	store   *memory.Store
	article *entity.Article
	svc     *revision.Service
}

func newFixture(t *testing.T, generators ...revision.Generator) *fixture {
	t.Helper()
	store := memory.New()
	a := &entity.Article{
		ContentSnapshot: entity.ContentSnapshot{
			Title:        "Coffee",
			Content:      originalContent,
			FocusKeyword: "brew coffee",
			FAQs:         []entity.FAQ{{Question: "Is coffee healthy?", Answer: "In moderation."}},
		},
		Status: entity.StatusDrafting,
	}
	require.NoError(t, store.Articles().Create(context.Background(), a))

	return &fixture{
		store:   store,
		article: a,
		svc: &revision.Service{
			Articles:   store.Articles(),
			Audit:      store.Audit(),
			Versions:   &versioning.Service{Articles: store.Articles(), Versions: store.Versions()},
			Generators: generators,
		},
	}
}

func (f *fixture) history(t *testing.T) []*entity.Version {
	t.Helper()
	h, err := f.svc.Versions.History(context.Background(), f.article.ID)
	require.NoError(t, err)
	return h
}

func (f *fixture) reload(t *testing.T) *entity.Article {
	t.Helper()
	a, err := f.store.Articles().Get(context.Background(), f.article.ID)
	require.NoError(t, err)
	require.NotNil(t, a)
	return a
}

func recorder() (*[]revision.Progress, revision.ProgressFunc) {
	var events []revision.Progress
	return &events, func(p revision.Progress) { events = append(events, p) }
}

func stages(events []revision.Progress) []revision.Stage {
	out := make([]revision.Stage, len(events))
	for i, e := range events {
		out[i] = e.Stage
	}
	return out
}

/* ───────── success path ───────── */

func TestRevise_PersistsNewCurrentVersion(t *testing.T) {
	gen := &stubGenerator{name: "claude", gen: okGeneration()}
	f := newFixture(t, gen)
	hum := &stubHumanizer{name: "claude"}
	f.svc.Humanizers = []revision.Humanizer{hum}
	events, progress := recorder()

	res, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.Refresh}, progress)
	require.NoError(t, err)

	assert.Equal(t, 2, res.VersionNumber, "original is version 1")
	assert.Equal(t, "claude", res.Provider)
	assert.True(t, res.Humanized)
	assert.False(t, res.LinksAdded)
	assert.Contains(t, res.Content, "Honestly, ")
	assert.Equal(t, "conversational", hum.style)

	assert.Equal(t, []revision.Stage{
		revision.StageFetching,
		revision.StageAnalyzingOriginal,
		revision.StageBuildingRequest,
		revision.StageGenerating,
		revision.StageHumanizing,
		revision.StagePersisting,
		revision.StageDone,
	}, stages(*events))
	for i := 1; i < len(*events); i++ {
		assert.Greater(t, (*events)[i].Percentage, (*events)[i-1].Percentage)
	}

	history := f.history(t)
	require.Len(t, history, 2)
	assert.Equal(t, entity.VersionAIRevision, history[0].VersionType)
	assert.True(t, history[0].IsCurrent)
	assert.Equal(t, entity.VersionOriginal, history[1].VersionType)
	assert.False(t, history[1].IsCurrent)
	assert.Equal(t, originalContent, history[1].Content)

	stored := history[0]
	assert.Equal(t, "refresh", stored.RevisionType)
	assert.Equal(t, "Rewrote the introduction.", stored.ChangesSummary)
	assert.Contains(t, stored.RevisionPrompt, "Update outdated facts")
	assert.Equal(t, []entity.Heading{{Level: 2, Text: "Why brew at home"}, {Level: 3, Text: "Gear"}}, stored.HeadingStructure)
	assert.Equal(t, []string{"/guides/beans"}, stored.InternalLinks)
	assert.Equal(t, []string{"https://example.org/grinder"}, stored.ExternalLinks)
	assert.Equal(t, "brew coffee", stored.FocusKeyword, "empty generated keyword falls back")
	assert.Equal(t, []entity.FAQ{
		{Question: "Is coffee healthy?", Answer: "In moderation."},
		{Question: "Which grind?", Answer: "Medium."},
	}, stored.FAQs, "refresh keeps existing FAQs")

	a := f.reload(t)
	assert.Equal(t, "Brewing Coffee at Home", a.Title)
	assert.Equal(t, res.Content, a.Content)
	assert.Equal(t, stored.WordCount, a.WordCount)
	require.NotNil(t, a.CurrentVersionID)
	assert.Equal(t, res.VersionID, *a.CurrentVersionID)

	audit, err := f.store.Audit().ListByArticle(context.Background(), f.article.ID, 10)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, "revision_completed", audit[0].Action)
}

func TestRevise_SequentialRevisionsNumberWithoutGaps(t *testing.T) {
	f := newFixture(t, &stubGenerator{name: "claude", gen: okGeneration()})

	for want := 2; want <= 4; want++ {
		res, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.SEOOptimize}, nil)
		require.NoError(t, err)
		assert.Equal(t, want, res.VersionNumber)
	}

	history := f.history(t)
	require.Len(t, history, 4)
	current := 0
	for _, v := range history {
		if v.IsCurrent {
			current++
		}
	}
	assert.Equal(t, 1, current)
}

/* ───────── generation fallback ───────── */

func TestRevise_FallsBackToSecondaryGenerator(t *testing.T) {
	primary := &stubGenerator{name: "claude", err: errors.New("overloaded")}
	secondary := &stubGenerator{name: "openai", gen: okGeneration()}
	f := newFixture(t, primary, secondary)

	res, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.SEOOptimize}, nil)
	require.NoError(t, err)

	assert.Equal(t, "openai", res.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
	assert.Equal(t, primary.got.Prompt(), secondary.got.Prompt(), "both providers receive the same payload")
}

func TestRevise_TimeoutCountsAsProviderFailure(t *testing.T) {
	slow := &stubGenerator{name: "claude", block: true}
	fast := &stubGenerator{name: "openai", gen: okGeneration()}
	f := newFixture(t, slow, fast)
	f.svc.Config.ProviderTimeout = 20 * time.Millisecond

	res, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.SEOOptimize}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", res.Provider)
}

func TestRevise_EmptyGenerationFallsBack(t *testing.T) {
	empty := &stubGenerator{name: "claude", gen: &revision.Generation{Content: "   "}}
	good := &stubGenerator{name: "openai", gen: okGeneration()}
	f := newFixture(t, empty, good)

	res, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.SEOOptimize}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", res.Provider)
}

// update_links with every generator failing leaves the history untouched.
func TestRevise_AllGeneratorsFail_HistoryUnchanged(t *testing.T) {
	primary := &stubGenerator{name: "claude", err: errors.New("503")}
	secondary := &stubGenerator{name: "openai", err: errors.New("quota exceeded")}

	for _, tc := range []struct {
		name         string
		withOriginal bool
	}{
		{"no original yet", false},
		{"original already recorded", true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, primary, secondary)
			f.svc.Linker = &stubLinker{}
			if tc.withOriginal {
				_, err := f.svc.Versions.EnsureOriginal(context.Background(), f.article)
				require.NoError(t, err)
			}
			before := f.history(t)
			articleBefore := f.reload(t)
			events, progress := recorder()

			res, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.UpdateLinks}, progress)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, revision.ErrGenerationFailed)

			var stageErr *revision.StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, revision.StageGenerating, stageErr.Stage)
			assert.Equal(t, f.article.ID, stageErr.ArticleID)

			var providerErrs revision.ProviderErrors
			require.ErrorAs(t, err, &providerErrs)
			require.Len(t, providerErrs, 2)
			assert.Equal(t, "claude", providerErrs[0].Provider)
			assert.Equal(t, "openai", providerErrs[1].Provider)

			assert.Equal(t, before, f.history(t))
			assert.Equal(t, articleBefore, f.reload(t))

			last := (*events)[len(*events)-1]
			assert.Equal(t, revision.StageFailed, last.Stage)
			assert.Equal(t, revision.StageGenerating.Percentage(), last.Percentage)
		})
	}
}

func TestRevise_NoGeneratorsConfigured(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.Refresh}, nil)
	assert.ErrorIs(t, err, revision.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "no providers configured")
}

/* ───────── humanization ───────── */

func TestRevise_RequiredHumanizationFailure(t *testing.T) {
	t.Run("fatal by default", func(t *testing.T) {
		f := newFixture(t, &stubGenerator{name: "claude", gen: okGeneration()})
		f.svc.Humanizers = []revision.Humanizer{
			&stubHumanizer{name: "claude", err: errors.New("boom")},
			&stubHumanizer{name: "openai", err: errors.New("boom")},
		}

		_, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.FullRewrite}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, revision.ErrHumanizationFailed)
		var stageErr *revision.StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, revision.StageHumanizing, stageErr.Stage)
		assert.Empty(t, f.history(t))
	})

	t.Run("caller allows unhumanized result", func(t *testing.T) {
		f := newFixture(t, &stubGenerator{name: "claude", gen: okGeneration()})
		f.svc.Humanizers = []revision.Humanizer{&stubHumanizer{name: "claude", err: errors.New("boom")}}

		res, err := f.svc.Revise(context.Background(), f.article.ID,
			revision.Request{Strategy: strategy.FullRewrite, AllowUnhumanized: true}, nil)
		require.NoError(t, err)
		assert.False(t, res.Humanized)
		assert.Equal(t, okGeneration().Content, res.Content)
	})

	t.Run("fallback humanizer succeeds", func(t *testing.T) {
		f := newFixture(t, &stubGenerator{name: "claude", gen: okGeneration()})
		second := &stubHumanizer{name: "openai"}
		f.svc.Humanizers = []revision.Humanizer{&stubHumanizer{name: "claude", err: errors.New("boom")}, second}

		res, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.FullRewrite}, nil)
		require.NoError(t, err)
		assert.True(t, res.Humanized)
		assert.Equal(t, 1, second.calls)
	})
}

func TestRevise_OptionalHumanizationFailureIsNonFatal(t *testing.T) {
	f := newFixture(t, &stubGenerator{name: "claude", gen: okGeneration()})
	f.svc.Humanizers = []revision.Humanizer{&stubHumanizer{name: "claude", err: errors.New("boom")}}

	res, err := f.svc.Revise(context.Background(), f.article.ID,
		revision.Request{Strategy: strategy.SEOOptimize, Humanize: true}, nil)
	require.NoError(t, err)
	assert.False(t, res.Humanized)
}

func TestRevise_SkipsHumanizationWhenNotRequested(t *testing.T) {
	f := newFixture(t, &stubGenerator{name: "claude", gen: okGeneration()})
	hum := &stubHumanizer{name: "claude"}
	f.svc.Humanizers = []revision.Humanizer{hum}
	events, progress := recorder()

	_, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.SEOOptimize}, progress)
	require.NoError(t, err)
	assert.Zero(t, hum.calls)
	assert.NotContains(t, stages(*events), revision.StageHumanizing)
}

/* ───────── link enrichment ───────── */

func TestRevise_UpdateLinksEnrichesContent(t *testing.T) {
	f := newFixture(t, &stubGenerator{name: "claude", gen: okGeneration()})
	linker := &stubLinker{}
	f.svc.Linker = linker
	events, progress := recorder()

	res, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.UpdateLinks}, progress)
	require.NoError(t, err)

	assert.True(t, res.LinksAdded)
	assert.Contains(t, res.Content, `/guides/espresso`)
	assert.Contains(t, stages(*events), revision.StageLinking)
	assert.Equal(t, []string{"brew coffee", "Brewing Coffee at Home", "Coffee"}, linker.hints)

	history := f.history(t)
	assert.Equal(t, []string{"/guides/beans", "/guides/espresso"}, history[0].InternalLinks)
}

func TestRevise_EnrichmentFailureKeepsContent(t *testing.T) {
	f := newFixture(t, &stubGenerator{name: "claude", gen: okGeneration()})
	f.svc.Linker = &stubLinker{err: errors.New("catalog unavailable")}

	res, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.UpdateLinks}, nil)
	require.NoError(t, err)
	assert.False(t, res.LinksAdded)
	assert.Equal(t, okGeneration().Content, res.Content)
}

func TestRevise_LinkPreservingStrategySkipsEnrichment(t *testing.T) {
	f := newFixture(t, &stubGenerator{name: "claude", gen: okGeneration()})
	linker := &stubLinker{}
	f.svc.Linker = linker

	_, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.SEOOptimize}, nil)
	require.NoError(t, err)
	assert.Nil(t, linker.hints)
}

/* ───────── failures before generation ───────── */

func TestRevise_ArticleNotFound(t *testing.T) {
	f := newFixture(t, &stubGenerator{name: "claude", gen: okGeneration()})

	_, err := f.svc.Revise(context.Background(), 9999, revision.Request{Strategy: strategy.Refresh}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	var stageErr *revision.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, revision.StageFetching, stageErr.Stage)
}

func TestRevise_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Revise(context.Background(), 0, revision.Request{Strategy: strategy.Refresh}, nil)
	assert.ErrorIs(t, err, versioning.ErrInvalidArticleID)

	_, err = f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: "rewrite_everything"}, nil)
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
}

/* ───────── cancellation and locking ───────── */

func TestRevise_CanceledBeforePersistingLeavesNoTrace(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gen := &stubGenerator{name: "claude", gen: okGeneration(), hook: cancel}
	f := newFixture(t, gen)

	_, err := f.svc.Revise(ctx, f.article.ID, revision.Request{Strategy: strategy.SEOOptimize}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	var stageErr *revision.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, revision.StagePersisting, stageErr.Stage)
	assert.Empty(t, f.history(t))
}

func TestRevise_RejectsConcurrentRevisionOfSameArticle(t *testing.T) {
	locker := &stubLocker{held: map[string]bool{}}
	f := newFixture(t, &stubGenerator{name: "claude", gen: okGeneration()})
	f.svc.Locker = locker

	locker.held[entity.ArticleLockKey(f.article.ID)] = true
	_, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.SEOOptimize}, nil)
	assert.ErrorIs(t, err, revision.ErrRevisionInProgress)

	delete(locker.held, entity.ArticleLockKey(f.article.ID))
	_, err = f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.SEOOptimize}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{entity.ArticleLockKey(f.article.ID)}, locker.released)
	assert.Empty(t, locker.held)
}

/* ───────── persistence ───────── */

// outageOnRevision lets single appends through to the store and fails the
// combined original-plus-revision write.
type outageOnRevision struct {
	repository.VersionRepository
	appends int
}

func (o *outageOnRevision) Append(ctx context.Context, v *entity.Version) error {
	o.appends++
	return o.VersionRepository.Append(ctx, v)
}

func (o *outageOnRevision) AppendRevision(context.Context, *entity.Version, *entity.Version) error {
	return errors.New("db down")
}

func TestRevise_SaveFailureLeavesArticleAndHistoryUnchanged(t *testing.T) {
	f := newFixture(t, &stubGenerator{name: "claude", gen: okGeneration()})
	versions := &outageOnRevision{VersionRepository: f.store.Versions()}
	f.svc.Versions = &versioning.Service{Articles: f.store.Articles(), Versions: versions}
	articleBefore := f.reload(t)

	res, err := f.svc.Revise(context.Background(), f.article.ID, revision.Request{Strategy: strategy.SEOOptimize}, nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, versioning.ErrPersistenceFailed)
	var stageErr *revision.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, revision.StagePersisting, stageErr.Stage)

	assert.Zero(t, versions.appends, "no partial write before the combined one")
	assert.Empty(t, f.history(t))
	assert.Equal(t, articleBefore, f.reload(t))
}

/* ───────── errors ───────── */

func TestProviderErrors(t *testing.T) {
	cause := errors.New("rate limited")
	errs := revision.ProviderErrors{
		{Provider: "claude", Err: cause},
		{Provider: "openai", Err: errors.New("timeout")},
	}

	assert.Equal(t, "claude: rate limited; openai: timeout", errs.Error())
	assert.ErrorIs(t, errs, cause)
	assert.Equal(t, "no providers configured", revision.ProviderErrors(nil).Error())
}

func TestStagePercentages(t *testing.T) {
	order := []revision.Stage{
		revision.StageFetching, revision.StageAnalyzingOriginal, revision.StageBuildingRequest,
		revision.StageGenerating, revision.StageHumanizing, revision.StageLinking,
		revision.StagePersisting, revision.StageDone,
	}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i].Percentage(), order[i-1].Percentage(), order[i])
	}
	assert.Equal(t, 100, revision.StageDone.Percentage())
}
