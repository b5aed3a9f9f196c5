package repository

import (
	"path/filepath"
	"testing"

	"github.com/Jiawei57/steam-analytics-engine/internal/model"
)

func newTestRepo(t *testing.T) *SQLRepository {
	t.Helper()
	repo, err := NewSQLRepository("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	if err := repo.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return repo
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := NewSQLRepository("mysql", "dsn"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestUpsertAndList(t *testing.T) {
	repo := newTestRepo(t)

	records := []*model.GameRecord{
		{AppID: 10, GameTitle: "Counter-Strike", Price: 9.99, Genres: "Action", Positive: 100, Negative: 10, TotalReviews: 110, PositiveRatio: 100.0 / 110.0},
		{AppID: 20, GameTitle: "Half-Life", Price: 0, Genres: "Action", Positive: 50, Negative: 5, TotalReviews: 55, PositiveRatio: 50.0 / 55.0},
	}

	n, err := repo.UpsertGames(records, 1)
	if err != nil {
		t.Fatalf("UpsertGames failed: %v", err)
	}
	if n != 2 {
		t.Errorf("upserted %d, want 2", n)
	}

	games, err := repo.ListGames()
	if err != nil {
		t.Fatalf("ListGames failed: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("listed %d games, want 2", len(games))
	}
	if games[0].AppID != 10 || games[0].GameTitle != "Counter-Strike" {
		t.Errorf("games[0] = %+v", games[0])
	}
}

func TestUpsertConflictUpdates(t *testing.T) {
	repo := newTestRepo(t)

	first := []*model.GameRecord{{AppID: 10, GameTitle: "old title", Price: 1}}
	if _, err := repo.UpsertGames(first, 100); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	second := []*model.GameRecord{{AppID: 10, GameTitle: "new title", Price: 2}}
	if _, err := repo.UpsertGames(second, 100); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	games, err := repo.ListGames()
	if err != nil {
		t.Fatalf("ListGames failed: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("expected 1 game after conflict update, got %d", len(games))
	}
	if games[0].GameTitle != "new title" || games[0].Price != 2 {
		t.Errorf("conflict should update all columns: %+v", games[0])
	}
}

func TestStats(t *testing.T) {
	repo := newTestRepo(t)

	records := []*model.GameRecord{
		{AppID: 1, Price: 0, TotalReviews: 100},
		{AppID: 2, Price: 5, TotalReviews: 50},
	}
	if _, err := repo.UpsertGames(records, 100); err != nil {
		t.Fatalf("UpsertGames failed: %v", err)
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats["total_games"] != 2 {
		t.Errorf("total_games = %v", stats["total_games"])
	}
	if stats["free_games"] != 1 {
		t.Errorf("free_games = %v", stats["free_games"])
	}
	if stats["total_reviews"] != int64(150) {
		t.Errorf("total_reviews = %v", stats["total_reviews"])
	}
}

func TestMemoryRepository(t *testing.T) {
	games := []*model.GameRecord{{AppID: 1, GameTitle: "one", Price: 0, TotalReviews: 10}}
	repo := NewMemoryRepository(games)

	listed, err := repo.ListGames()
	if err != nil {
		t.Fatalf("ListGames failed: %v", err)
	}
	if len(listed) != 1 || listed[0].GameTitle != "one" {
		t.Errorf("listed = %+v", listed)
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats["total_games"] != 1 {
		t.Errorf("total_games = %v", stats["total_games"])
	}
}
