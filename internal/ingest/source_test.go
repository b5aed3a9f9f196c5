package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindGamesFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"games_2024.parquet", "games.csv", "reviews.csv", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := FindGamesFile(dir)
	if err != nil {
		t.Fatalf("FindGamesFile failed: %v", err)
	}
	if filepath.Base(got) != "games.csv" {
		t.Errorf("expected csv preferred over parquet, got %s", got)
	}
}

func TestFindGamesFileEmpty(t *testing.T) {
	dir := t.TempDir()
	if _, err := FindGamesFile(dir); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestReadGamesCSV(t *testing.T) {
	content := strings.Join([]string{
		"AppID,Name,Price",
		"10,Counter-Strike,9.99",
		`20,"Game, with comma",0`,
		"30,short-row",
	}, "\n")

	path := filepath.Join(t.TempDir(), "games.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := ReadGamesCSV(path)
	if err != nil {
		t.Fatalf("ReadGamesCSV failed: %v", err)
	}
	if len(table.Headers) != 3 {
		t.Errorf("headers = %v", table.Headers)
	}
	// FieldsPerRecord=-1 下短行也保留
	if len(table.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table.Rows))
	}
	if table.Rows[1][1] != "Game, with comma" {
		t.Errorf("quoted field = %q", table.Rows[1][1])
	}
}
