package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"draftdesk/internal/domain/entity"
	pg "draftdesk/internal/infra/adapter/persistence/postgres"
	"draftdesk/internal/repository"
)

/* ─────────────────────────── helpers ─────────────────────────── */

var articleCols = []string{
	"id", "title", "content", "meta_description", "focus_keyword", "word_count",
	"heading_structure", "faqs", "internal_links", "external_links",
	"quality_score", "risk_level", "status", "human_reviewed",
	"autopublish_deadline", "current_version_id", "external_ref",
	"published_at", "scraped_at", "created_at", "updated_at",
}

func artRow(rows *sqlmock.Rows, a *entity.Article) *sqlmock.Rows {
	var deadline, currentVersion any
	if a.AutopublishDeadline != nil {
		deadline = *a.AutopublishDeadline
	}
	if a.CurrentVersionID != nil {
		currentVersion = *a.CurrentVersionID
	}
	return rows.AddRow(
		a.ID, a.Title, a.Content, a.MetaDescription, a.FocusKeyword, a.WordCount,
		[]byte(`[{"level":2,"text":"Intro"}]`), []byte(`[{"question":"Why?","answer":"Because."}]`),
		"{/a,/b}", "{https://x.test}",
		a.QualityScore, a.RiskLevel.String(), string(a.Status), a.HumanReviewed,
		deadline, currentVersion, a.ExternalRef,
		nil, nil, a.CreatedAt, a.UpdatedAt,
	)
}

func sampleArticle() *entity.Article {
	now := time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)
	deadline := now.Add(-24 * time.Hour)
	cv := int64(7)
	return &entity.Article{
		ID: 1,
		ContentSnapshot: entity.ContentSnapshot{
			Title:            "Go generics in practice",
			Content:          "<p>body</p>",
			FocusKeyword:     "go generics",
			WordCount:        1,
			HeadingStructure: []entity.Heading{{Level: 2, Text: "Intro"}},
			FAQs:             []entity.FAQ{{Question: "Why?", Answer: "Because."}},
			InternalLinks:    []string{"/a", "/b"},
			ExternalLinks:    []string{"https://x.test"},
		},
		QualityScore:        90,
		RiskLevel:           entity.RiskMedium,
		Status:              entity.StatusReadyToPublish,
		AutopublishDeadline: &deadline,
		CurrentVersionID:    &cv,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

/* ─────────────────────────── 1. Get ─────────────────────────── */

func TestArticleRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleArticle()
	mock.ExpectQuery(regexp.QuoteMeta("FROM articles")).
		WithArgs(int64(1)).
		WillReturnRows(artRow(sqlmock.NewRows(articleCols), want))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM articles").WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)

	got, err := pg.NewArticleRepo(db).Get(context.Background(), 99)
	if err != nil || got != nil {
		t.Fatalf("want (nil, nil), got (%v, %v)", got, err)
	}
}

func TestArticleRepo_Get_BadEnum(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	a := sampleArticle()
	a.Status = "archived"
	mock.ExpectQuery("FROM articles").WillReturnRows(artRow(sqlmock.NewRows(articleCols), a))

	if _, err := pg.NewArticleRepo(db).Get(context.Background(), 1); !errors.Is(err, entity.ErrValidationFailed) {
		t.Fatalf("want validation error, got %v", err)
	}
}

/* ─────────────────────────── 2. ListCandidates ─────────────────────────── */

func TestArticleRepo_ListCandidates(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)
	reviewed := false
	a := sampleArticle()

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM articles WHERE status = $1 AND autopublish_deadline <= $2 AND human_reviewed = $3 ORDER BY autopublish_deadline ASC, id ASC LIMIT 5")).
		WithArgs("ready_to_publish", now, false).
		WillReturnRows(artRow(sqlmock.NewRows(articleCols), a))

	got, err := pg.NewArticleRepo(db).ListCandidates(context.Background(), repository.CandidateFilter{
		Status:         entity.StatusReadyToPublish,
		DeadlineBefore: now,
		HumanReviewed:  &reviewed,
		Limit:          5,
	})
	if err != nil || len(got) != 1 {
		t.Fatalf("ListCandidates err=%v len=%d", err, len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 3. Create ─────────────────────────── */

func TestArticleRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO articles")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))

	a := &entity.Article{ContentSnapshot: entity.ContentSnapshot{Title: "t", Content: "<p>c</p>"}}
	if err := pg.NewArticleRepo(db).Create(context.Background(), a); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if a.ID != 42 || a.Status != entity.StatusDrafting || !a.CreatedAt.Equal(now) {
		t.Fatalf("unexpected article after create: %+v", a)
	}
}

/* ─────────────────────────── 4. Save ─────────────────────────── */

func TestArticleRepo_Save(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	status := entity.StatusPublished
	ref := "wp-123"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET status = $1, external_ref = $2, updated_at = $3 WHERE id = $4")).
		WithArgs("published", "wp-123", sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := pg.NewArticleRepo(db).Save(context.Background(), 1, repository.ArticlePatch{Status: &status, ExternalRef: &ref})
	if err != nil {
		t.Fatalf("Save err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Save_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	reviewed := true
	mock.ExpectExec("UPDATE articles").WillReturnResult(sqlmock.NewResult(0, 0))

	err := pg.NewArticleRepo(db).Save(context.Background(), 5, repository.ArticlePatch{HumanReviewed: &reviewed})
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestArticleRepo_Save_EmptyPatch(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	if err := pg.NewArticleRepo(db).Save(context.Background(), 5, repository.ArticlePatch{}); err != nil {
		t.Fatalf("Save err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 5. Query builder ─────────────────────────── */

func TestArticleQueryBuilder_BuildPatchQuery(t *testing.T) {
	qb := pg.NewArticleQueryBuilder()
	now := time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)

	query, args, err := qb.BuildPatchQuery(3, repository.ArticlePatch{ClearDeadline: true}, now)
	if err != nil {
		t.Fatal(err)
	}
	wantQuery := "UPDATE articles SET autopublish_deadline = $1, updated_at = $2 WHERE id = $3"
	if query != wantQuery {
		t.Fatalf("query mismatch:\n got %s\nwant %s", query, wantQuery)
	}
	if diff := cmp.Diff([]any{nil, now, int64(3)}, args, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}
