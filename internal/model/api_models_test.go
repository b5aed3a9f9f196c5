package model

import (
	"encoding/json"
	"testing"
)

func TestSortOrderUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want SortOrder
	}{
		{`{"order": 1}`, 1},
		{`{"order": -1}`, -1},
		{`{"order": "asc"}`, 1},
		{`{"order": "desc"}`, -1},
		{`{"order": "DESC"}`, -1},
		{`{"order": "1"}`, 1},
		{`{"order": "-1"}`, -1},
		{`{"order": ""}`, 0},
	}

	for _, c := range cases {
		var req DashboardRequest
		if err := json.Unmarshal([]byte(c.in), &req); err != nil {
			t.Errorf("unmarshal %s failed: %v", c.in, err)
			continue
		}
		if req.Order != c.want {
			t.Errorf("order from %s = %d, want %d", c.in, req.Order, c.want)
		}
	}
}

func TestPriceTier(t *testing.T) {
	cases := []struct {
		price float64
		want  string
	}{
		{0, "Free"},
		{9.99, "<$10"},
		{10, "<$10"},
		{29.99, "$10-30"},
		{59.99, "$30-60"},
		{69.99, ">$60"},
	}
	for _, c := range cases {
		if got := PriceTier(c.price); got != c.want {
			t.Errorf("PriceTier(%v) = %q, want %q", c.price, got, c.want)
		}
	}
}

func TestReviewTier(t *testing.T) {
	cases := []struct {
		reviews int64
		want    string
	}{
		{0, "niche"},
		{100, "niche"},
		{101, "modest"},
		{1000, "modest"},
		{5000, "popular"},
		{50000, "hit"},
	}
	for _, c := range cases {
		if got := ReviewTier(c.reviews); got != c.want {
			t.Errorf("ReviewTier(%d) = %q, want %q", c.reviews, got, c.want)
		}
	}
}

func TestReleaseYear(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"2012-08-21", 2012},
		{"Nov 16, 2004", 2004},
		{"2016/02/25", 2016},
		{"2019", 2019},
		{"", 0},
		{"soon", 0},
	}
	for _, c := range cases {
		g := &GameRecord{ReleaseDate: c.date}
		if got := g.ReleaseYear(); got != c.want {
			t.Errorf("ReleaseYear(%q) = %d, want %d", c.date, got, c.want)
		}
	}
}

func TestMainGenre(t *testing.T) {
	cases := []struct {
		genres string
		want   string
	}{
		{"Action,Adventure", "Action"},
		{"Strategy", "Strategy"},
		{"", "Unknown"},
	}
	for _, c := range cases {
		g := &GameRecord{Genres: c.genres}
		if got := g.MainGenre(); got != c.want {
			t.Errorf("MainGenre(%q) = %q, want %q", c.genres, got, c.want)
		}
	}
}

func TestContentFeatures(t *testing.T) {
	g := &GameRecord{Genres: "Action;Adventure", SteamspyTags: "FPS,Co-op"}
	want := "action adventure fps co-op"
	if got := g.ContentFeatures(); got != want {
		t.Errorf("ContentFeatures = %q, want %q", got, want)
	}
}

func TestPriceDisplay(t *testing.T) {
	free := &GameRecord{Price: 0}
	if got := free.PriceDisplay(); got != "Free" {
		t.Errorf("PriceDisplay(0) = %q", got)
	}
	paid := &GameRecord{Price: 9.9}
	if got := paid.PriceDisplay(); got != "$9.90" {
		t.Errorf("PriceDisplay(9.9) = %q", got)
	}
}
