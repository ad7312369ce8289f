package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"campaign-relay/internal/domain/entity"
	"campaign-relay/internal/infra/adapter/persistence/postgres"
)

/* ──────────────────────────────── ヘルパ ──────────────────────────────── */

var campaignColumns = []string{
	"id", "name", "brief", "objective", "status",
	"channels", "copy_config", "last_published_at",
	"created_at", "updated_at",
}

func campaignRow(c *entity.Campaign, channelsJSON, copyConfigJSON []byte) *sqlmock.Rows {
	return sqlmock.NewRows(campaignColumns).AddRow(
		c.ID, c.Name, c.Brief, c.Objective, c.Status,
		channelsJSON, copyConfigJSON, c.LastPublishedAt,
		c.CreatedAt, c.UpdatedAt,
	)
}

/* ──────────────────────────────── 1. Get ──────────────────────────────── */

func TestCampaignRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	want := &entity.Campaign{
		ID: 1, Name: "Spring Launch", Brief: "Announce the spring release",
		Objective: "Launch", Status: entity.CampaignStatusActive,
		Channels:   []string{"slack", "webhook"},
		CopyConfig: &entity.CopyConfig{Tone: "playful", CTALabel: "Try it", LandingURL: "https://example.com"},
		CreatedAt:  now, UpdatedAt: now,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs(int64(1)).
		WillReturnRows(campaignRow(want,
			[]byte(`["slack","webhook"]`),
			[]byte(`{"tone":"playful","cta_label":"Try it","landing_url":"https://example.com"}`),
		))

	repo := postgres.NewCampaignRepo(db)
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

func TestCampaignRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(campaignColumns)) // empty set

	repo := postgres.NewCampaignRepo(db)
	got, err := repo.Get(context.Background(), 99)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if got != nil {
		t.Fatalf("Get = %+v, want nil", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 2. List ──────────────────────────────── */

func TestCampaignRepo_List(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(`FROM campaigns`).
		WillReturnRows(campaignRow(&entity.Campaign{
			ID: 1, Name: "Monthly Digest", Objective: "Awareness",
			Status: entity.CampaignStatusActive, CreatedAt: now, UpdatedAt: now,
		}, []byte(`["slack"]`), nil))

	repo := postgres.NewCampaignRepo(db)
	got, err := repo.List(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("List err=%v len=%d", err, len(got))
	}
	if got[0].CopyConfig != nil {
		t.Fatalf("CopyConfig = %+v, want nil", got[0].CopyConfig)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCampaignRepo_ListActive(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(`WHERE status = 'active'`).
		WillReturnRows(campaignRow(&entity.Campaign{
			ID: 2, Name: "Winback Wave", Objective: "Winback",
			Status: entity.CampaignStatusActive, CreatedAt: now, UpdatedAt: now,
		}, []byte(`["discord"]`), []byte(`{"tone":"warm"}`)))

	repo := postgres.NewCampaignRepo(db)
	got, err := repo.ListActive(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("ListActive err=%v len=%d", err, len(got))
	}
	if got[0].CopyConfig == nil || got[0].CopyConfig.Tone != "warm" {
		t.Fatalf("CopyConfig = %+v, want tone warm", got[0].CopyConfig)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 3. Search ──────────────────────────────── */

func TestCampaignRepo_Search(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM campaigns`).
		WithArgs("%spring%").
		WillReturnRows(sqlmock.NewRows(campaignColumns)) // empty set OK

	repo := postgres.NewCampaignRepo(db)
	if _, err := repo.Search(context.Background(), "spring"); err != nil {
		t.Fatalf("Search err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 4. Create ──────────────────────────────── */

func TestCampaignRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO campaigns`)).
		WithArgs("Spring Launch", "Announce the spring release", "Launch", "active",
			[]byte(`["slack"]`), []byte(`{"tone":"playful"}`), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := postgres.NewCampaignRepo(db)
	err := repo.Create(context.Background(), &entity.Campaign{
		Name: "Spring Launch", Brief: "Announce the spring release",
		Objective: "Launch", Status: entity.CampaignStatusActive,
		Channels:   []string{"slack"},
		CopyConfig: &entity.CopyConfig{Tone: "playful"},
	})
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCampaignRepo_Create_DefaultsStatus(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO campaigns`)).
		WithArgs("Draft Idea", "", "Awareness", "draft",
			[]byte(`["slack"]`), nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := postgres.NewCampaignRepo(db)
	err := repo.Create(context.Background(), &entity.Campaign{
		Name: "Draft Idea", Objective: "Awareness", Channels: []string{"slack"},
	})
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 5. Update ──────────────────────────────── */

func TestCampaignRepo_Update(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE campaigns SET`)).
		WithArgs("Spring Launch", "Updated brief", "Launch", "active",
			[]byte(`["slack"]`), []byte(`{"tone":"bold"}`), nil, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewCampaignRepo(db)
	err := repo.Update(context.Background(), &entity.Campaign{
		ID: 1, Name: "Spring Launch", Brief: "Updated brief",
		Objective: "Launch", Status: entity.CampaignStatusActive,
		Channels:   []string{"slack"},
		CopyConfig: &entity.CopyConfig{Tone: "bold"},
	})
	if err != nil {
		t.Fatalf("Update err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCampaignRepo_Update_NoRows(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE campaigns SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewCampaignRepo(db)
	err := repo.Update(context.Background(), &entity.Campaign{
		ID: 42, Name: "Ghost", Status: entity.CampaignStatusDraft,
		Channels: []string{"slack"},
	})
	if err == nil {
		t.Fatal("Update should fail when no rows affected")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 6. Delete ──────────────────────────────── */

func TestCampaignRepo_Delete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM campaigns`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewCampaignRepo(db)
	if err := repo.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCampaignRepo_Delete_NoRows(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM campaigns`)).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewCampaignRepo(db)
	if err := repo.Delete(context.Background(), 99); err == nil {
		t.Fatal("Delete should fail when no rows affected")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 7. TouchPublishedAt ──────────────────────────────── */

func TestCampaignRepo_TouchPublishedAt(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE campaigns SET last_published_at`)).
		WithArgs(now, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewCampaignRepo(db)
	if err := repo.TouchPublishedAt(context.Background(), 1, now); err != nil {
		t.Fatalf("TouchPublishedAt err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
