package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipvault/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresAccountRepository_CreateFindAndUpdate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresAccountRepository(testPool)

	account := models.Account{
		ID:        uuid.NewString(),
		Email:     "alice@example.com",
		Password:  "secret-hash",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := repo.Create(ctx, account); err != nil {
		t.Fatalf("create account: %v", err)
	}

	dup := models.Account{
		ID:        uuid.NewString(),
		Email:     account.Email,
		Password:  "another-hash",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when creating duplicate email, got %v", err)
	}

	fetched, err := repo.FindByEmail(ctx, account.Email)
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}

	if fetched.ID != account.ID || fetched.Email != account.Email || fetched.Password != account.Password {
		t.Fatalf("unexpected account fetched: %+v", fetched)
	}

	// Lookups are exact: a different-cased address is a different account.
	if _, err := repo.FindByEmail(ctx, "Alice@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for different-cased email, got %v", err)
	}

	updated := account
	updated.Email = "updated@example.com"
	updated.Password = "rotated-hash"
	updated.UpdatedAt = time.Now().UTC().Add(time.Minute)

	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("update account: %v", err)
	}

	fetched, err = repo.FindByEmail(ctx, updated.Email)
	if err != nil {
		t.Fatalf("find by updated email: %v", err)
	}

	if fetched.Email != updated.Email || fetched.Password != updated.Password {
		t.Fatalf("expected updated fields to persist, got %+v", fetched)
	}

	missing := models.Account{
		ID:        uuid.NewString(),
		Email:     "missing@example.com",
		Password:  "hash",
		UpdatedAt: time.Now().UTC(),
	}

	if err := repo.Update(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing account, got %v", err)
	}
}

func TestPostgresVideoRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresVideoRepository(testPool)

	video := models.Video{
		ID:           uuid.NewString(),
		Title:        "First clip",
		Description:  "Recorded on a rainy day",
		VideoURL:     "https://media.example.com/v/1.mp4",
		ThumbnailURL: "https://media.example.com/t/1.jpg",
		Controls:     true,
		Owner: models.Owner{
			ID:    uuid.NewString(),
			Name:  "Alice",
			Email: "alice@example.com",
		},
		Transformation: models.DefaultTransformation,
		CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
		UpdatedAt:      time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := repo.Create(ctx, video); err != nil {
		t.Fatalf("create video: %v", err)
	}

	fetched, err := repo.Find(ctx, video.ID)
	if err != nil {
		t.Fatalf("find video: %v", err)
	}

	if fetched.Title != video.Title || fetched.VideoURL != video.VideoURL || fetched.ThumbnailURL != video.ThumbnailURL {
		t.Fatalf("unexpected video fetched: %+v", fetched)
	}
	if fetched.Owner != video.Owner {
		t.Fatalf("owner snapshot did not round-trip: %+v", fetched.Owner)
	}
	if fetched.Transformation != video.Transformation {
		t.Fatalf("transformation did not round-trip: %+v", fetched.Transformation)
	}
	if !fetched.Controls {
		t.Fatalf("expected controls to persist")
	}

	if _, err := repo.Find(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown video, got %v", err)
	}
}

func TestPostgresVideoRepository_ListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresVideoRepository(testPool)

	base := time.Now().UTC().Add(-time.Hour)
	oldest := createTestVideo(t, repo, "alice@example.com", base)
	middle := createTestVideo(t, repo, "bob@example.com", base.Add(10*time.Minute))
	newest := createTestVideo(t, repo, "alice@example.com", base.Add(20*time.Minute))

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("list all videos: %v", err)
	}

	if len(all) != 3 {
		t.Fatalf("expected 3 videos, got %d", len(all))
	}
	if all[0].ID != newest.ID || all[1].ID != middle.ID || all[2].ID != oldest.ID {
		t.Fatalf("unexpected ordering: %v", []string{all[0].ID, all[1].ID, all[2].ID})
	}

	filtered, err := repo.List(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("list filtered videos: %v", err)
	}

	if len(filtered) != 2 {
		t.Fatalf("expected 2 videos for alice, got %d", len(filtered))
	}
	if filtered[0].ID != newest.ID || filtered[1].ID != oldest.ID {
		t.Fatalf("unexpected filtered ordering: %v", []string{filtered[0].ID, filtered[1].ID})
	}

	empty, err := repo.List(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("list for unknown owner: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no videos for unknown owner, got %d", len(empty))
	}
}

func TestPostgresVideoRepository_Delete(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresVideoRepository(testPool)
	video := createTestVideo(t, repo, "alice@example.com", time.Now().UTC())

	if err := repo.Delete(ctx, video.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	if _, err := repo.Find(ctx, video.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.Delete(ctx, video.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE videos, accounts CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestVideo(t *testing.T, repo *PostgresVideoRepository, ownerEmail string, createdAt time.Time) models.Video {
	t.Helper()
	video := models.Video{
		ID:           uuid.NewString(),
		Title:        "Clip " + uuid.NewString()[:8],
		Description:  "test clip",
		VideoURL:     "https://media.example.com/v/" + uuid.NewString(),
		ThumbnailURL: "https://media.example.com/t/" + uuid.NewString(),
		Controls:     true,
		Owner: models.Owner{
			ID:    uuid.NewString(),
			Name:  "Owner",
			Email: ownerEmail,
		},
		Transformation: models.DefaultTransformation,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	if err := repo.Create(context.Background(), video); err != nil {
		t.Fatalf("create test video: %v", err)
	}
	return video
}
