package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"draftdesk/internal/domain/entity"
	pg "draftdesk/internal/infra/adapter/persistence/postgres"
)

func TestLinkCatalogRepo_ListLinkTargets(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM link_targets").
		WillReturnRows(sqlmock.NewRows([]string{"url", "title", "keywords"}).
			AddRow("https://site.test/go-testing", "Testing in Go", "{testing,testify}"))

	got, err := pg.NewLinkCatalogRepo(db).ListLinkTargets(context.Background())
	if err != nil {
		t.Fatalf("ListLinkTargets err=%v", err)
	}
	want := []entity.LinkTarget{{URL: "https://site.test/go-testing", Title: "Testing in Go", Keywords: []string{"testing", "testify"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAuditRepo_Record(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO audit_events").
		WithArgs(int64(3), "published", "wp-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now))

	ev := &entity.AuditEvent{ArticleID: 3, Action: "published", Detail: "wp-1"}
	if err := pg.NewAuditRepo(db).Record(context.Background(), ev); err != nil {
		t.Fatalf("Record err=%v", err)
	}
	if ev.ID != 5 {
		t.Fatalf("ID=%d", ev.ID)
	}
}
