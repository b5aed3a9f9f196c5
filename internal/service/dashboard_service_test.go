package service

import (
	"math"
	"testing"
	"time"

	"github.com/Jiawei57/steam-analytics-engine/internal/cache/lru"
	"github.com/Jiawei57/steam-analytics-engine/internal/model"
	"github.com/Jiawei57/steam-analytics-engine/internal/repository"
)

func fixtureGames() []*model.GameRecord {
	return []*model.GameRecord{
		{AppID: 1, GameTitle: "Counter-Strike", Price: 9.99, ReleaseDate: "2012-08-21", Genres: "Action", SteamspyTags: "FPS", PositiveRatio: 0.95, TotalReviews: 50000, Positive: 47500, Negative: 2500},
		{AppID: 2, GameTitle: "Dota Underlords", Price: 0, ReleaseDate: "2020-02-25", Genres: "Strategy", SteamspyTags: "Auto Battler", PositiveRatio: 0.6, TotalReviews: 800},
		{AppID: 3, GameTitle: "Factorio", Price: 35, ReleaseDate: "2016-02-25", Genres: "Simulation,Strategy", SteamspyTags: "Automation", PositiveRatio: 0.98, TotalReviews: 90000},
		{AppID: 4, GameTitle: "Old Classic", Price: 4.99, ReleaseDate: "2001-06-01", Genres: "Action", SteamspyTags: "Retro", PositiveRatio: 0.8, TotalReviews: 50},
	}
}

func newTestService(t *testing.T) *DashboardService {
	t.Helper()
	store := repository.NewMemoryRepository(fixtureGames())
	s, err := NewDashboardService(store, lru.New(1024*1024, time.Hour, nil))
	if err != nil {
		t.Fatalf("NewDashboardService failed: %v", err)
	}
	return s
}

func TestQueryKPI(t *testing.T) {
	s := newTestService(t)

	data, err := s.Query(&model.DashboardRequest{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	kpi := data.KPI
	if kpi.TotalGames != 4 {
		t.Errorf("TotalGames = %d, want 4", kpi.TotalGames)
	}
	if kpi.FreeGames != 1 {
		t.Errorf("FreeGames = %d, want 1", kpi.FreeGames)
	}
	if kpi.TotalReviews != 140850 {
		t.Errorf("TotalReviews = %d, want 140850", kpi.TotalReviews)
	}
	wantAvg := (9.99 + 0 + 35 + 4.99) / 4
	if math.Abs(kpi.AvgPrice-wantAvg) > 1e-9 {
		t.Errorf("AvgPrice = %v, want %v", kpi.AvgPrice, wantAvg)
	}
	if data.Matched != 4 {
		t.Errorf("Matched = %d, want 4", data.Matched)
	}
}

func TestQueryCached(t *testing.T) {
	s := newTestService(t)
	req := &model.DashboardRequest{Search: "factorio"}

	if _, err := s.Query(req); err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if _, err := s.Query(req); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if s.cacheHits != 1 || s.cacheMiss != 1 {
		t.Errorf("hits=%d miss=%d, want 1/1", s.cacheHits, s.cacheMiss)
	}
}

func TestFilterGames(t *testing.T) {
	games := fixtureGames()

	cases := []struct {
		name string
		req  model.DashboardRequest
		want []int64
	}{
		{"year range", model.DashboardRequest{YearFrom: 2012, YearTo: 2018}, []int64{1, 3}},
		{"price max", model.DashboardRequest{PriceMax: 5}, []int64{2, 4}},
		{"price min", model.DashboardRequest{PriceMin: 10}, []int64{3}},
		{"genre", model.DashboardRequest{Genres: []string{"Strategy"}}, []int64{2, 3}},
		{"search", model.DashboardRequest{Search: "FACT"}, []int64{3}},
		{"combined", model.DashboardRequest{Genres: []string{"Action"}, YearFrom: 2010}, []int64{1}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := FilterGames(games, &c.req)
			if len(got) != len(c.want) {
				t.Fatalf("matched %d games, want %d", len(got), len(c.want))
			}
			for i, g := range got {
				if g.AppID != c.want[i] {
					t.Errorf("got appid %d at %d, want %d", g.AppID, i, c.want[i])
				}
			}
		})
	}
}

func TestComputeHeatmapFullMatrix(t *testing.T) {
	cells := computeHeatmap(fixtureGames())

	wantCells := len(model.PriceTierLabels) * len(model.ReviewTierLabels)
	if len(cells) != wantCells {
		t.Fatalf("heatmap cells = %d, want %d", len(cells), wantCells)
	}

	filled := 0
	for _, c := range cells {
		if c.HasGames {
			filled++
			if c.Count == 0 {
				t.Errorf("cell %s/%s has games but zero count", c.PriceTier, c.ReviewTier)
			}
		} else if c.AvgRatio != 0 || c.Count != 0 {
			t.Errorf("empty cell %s/%s carries data", c.PriceTier, c.ReviewTier)
		}
	}
	if filled != 4 {
		t.Errorf("filled cells = %d, want 4", filled)
	}
}

func TestSupplyTrendSmallMode(t *testing.T) {
	all := fixtureGames()
	// 单款命中时切到同类型背景：Action有两款，但2001年在窗口外
	filtered := []*model.GameRecord{all[0]}

	points := supplyTrend(filtered, all)
	if len(points) != 1 {
		t.Fatalf("points = %+v, want single 2012 point", points)
	}
	if points[0].Year != 2012 || points[0].Value != 1 {
		t.Errorf("point = %+v", points[0])
	}
}

func TestDemandTrendNormalMode(t *testing.T) {
	// 超过5款才走正常模式（小结果集会切到类型背景）
	all := fixtureGames()
	all = append(all,
		&model.GameRecord{AppID: 5, GameTitle: "Filler A", ReleaseDate: "2019-01-01", Genres: "Casual", TotalReviews: 100},
		&model.GameRecord{AppID: 6, GameTitle: "Filler B", ReleaseDate: "2021-01-01", Genres: "Casual", TotalReviews: 200},
	)
	points := demandTrend(all, all)

	byYear := make(map[int]float64)
	for _, p := range points {
		byYear[p.Year] = p.Value
	}
	if byYear[2016] != 90000 {
		t.Errorf("2016 demand = %v, want 90000", byYear[2016])
	}
	// 2001年在趋势窗口外
	if _, ok := byYear[2001]; ok {
		t.Error("2001 should be outside the trend window")
	}
}

func TestDetailPageSorting(t *testing.T) {
	games := fixtureGames()

	// 默认按发行日期倒序
	page := detailPage(games, &model.DashboardRequest{})
	if page[0].AppID != 2 {
		t.Errorf("default sort first = %d, want 2 (newest)", page[0].AppID)
	}

	// 价格升序
	page = detailPage(games, &model.DashboardRequest{Field: "price", Order: 1})
	if page[0].AppID != 2 || page[len(page)-1].AppID != 3 {
		t.Errorf("price asc order wrong: first=%d last=%d", page[0].AppID, page[len(page)-1].AppID)
	}

	// 分页越界返回空
	page = detailPage(games, &model.DashboardRequest{Offset: 100})
	if page != nil {
		t.Errorf("out-of-range offset should return nil, got %d entries", len(page))
	}

	// 分页截断
	page = detailPage(games, &model.DashboardRequest{Offset: 2, Limit: 10})
	if len(page) != 2 {
		t.Errorf("page size = %d, want 2", len(page))
	}
}

func TestTopByReviews(t *testing.T) {
	top := topByReviews(fixtureGames(), 2)
	if len(top) != 2 {
		t.Fatalf("top = %d entries, want 2", len(top))
	}
	if top[0].AppID != 3 || top[1].AppID != 1 {
		t.Errorf("top order wrong: %d, %d", top[0].AppID, top[1].AppID)
	}
}

func TestGenreList(t *testing.T) {
	s := newTestService(t)
	genres := s.GenreList()

	want := []string{"Action", "Simulation", "Strategy"}
	if len(genres) != len(want) {
		t.Fatalf("genres = %v, want %v", genres, want)
	}
	for i := range want {
		if genres[i] != want[i] {
			t.Errorf("genres[%d] = %q, want %q", i, genres[i], want[i])
		}
	}
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	cases := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{0.5, 3},
		{0.25, 2},
		{1, 5},
	}
	for _, c := range cases {
		if got := quantile(values, c.q); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("quantile(%v) = %v, want %v", c.q, got, c.want)
		}
	}

	if got := quantile(nil, 0.5); got != 0 {
		t.Errorf("quantile(empty) = %v, want 0", got)
	}
}

func TestFiveNumber(t *testing.T) {
	box := fiveNumber("test", []float64{5, 1, 3, 2, 4})
	if box.Min != 1 || box.Max != 5 || box.Median != 3 {
		t.Errorf("box = %+v", box)
	}
	if box.Count != 5 {
		t.Errorf("Count = %d, want 5", box.Count)
	}

	empty := fiveNumber("empty", nil)
	if empty.Count != 0 || empty.Median != 0 {
		t.Errorf("empty box = %+v", empty)
	}
}
