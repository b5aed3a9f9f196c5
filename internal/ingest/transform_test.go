package ingest

import (
	"math"
	"testing"
)

func TestCleanPrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"$10.00", 10.0},
		{"£7.19", 7.19},
		{"Free", 0},
		{"free", 0},
		{"", 0},
		{"-5", -5}, // 负价保留，由Validate告警
		{"1,299.99", 1299.99},
		{"abc", 0},
	}
	for _, c := range cases {
		if got := cleanPrice(c.in); got != c.want {
			t.Errorf("cleanPrice(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseOwners(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"0-20,000", 10000},
		{"20,000 - 50,000", 35000},
		{"10000", 10000},
		{"", 0},
		{"unknown", 0},
	}
	for _, c := range cases {
		if got := parseOwners(c.in); got != c.want {
			t.Errorf("parseOwners(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestProcessDerivedFeatures(t *testing.T) {
	raw := &RawTable{
		Headers: []string{"AppID", "Name", "Price", "Positive", "Negative"},
		Rows: [][]string{
			{"10", "Counter-Strike", "$9.99", "100", "10"},
			{"20", "Half-Life", "Free", "5", "5"},
		},
	}

	records, err := Transformer{}.Process(raw)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.TotalReviews != 110 {
		t.Errorf("TotalReviews = %d, want 110", first.TotalReviews)
	}
	if math.Abs(first.PositiveRatio-100.0/110.0) > 1e-9 {
		t.Errorf("PositiveRatio = %v, want %v", first.PositiveRatio, 100.0/110.0)
	}
	if records[1].PositiveRatio != 0.5 {
		t.Errorf("PositiveRatio = %v, want 0.5", records[1].PositiveRatio)
	}
	if records[1].Price != 0 {
		t.Errorf("free game price = %v, want 0", records[1].Price)
	}
}

func TestProcessAliasResolution(t *testing.T) {
	// 小写表头风格的导出同样要能解析
	raw := &RawTable{
		Headers: []string{"app_id", "name", "price", "release_date", "genres", "tags", "owners"},
		Rows: [][]string{
			{"730", "CS2", "0", "2012-08-21", "Action", "FPS;Shooter", "1000-3000"},
		},
	}

	records, err := Transformer{}.Process(raw)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.AppID != 730 || rec.GameTitle != "CS2" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.SteamspyTags != "FPS;Shooter" {
		t.Errorf("SteamspyTags = %q", rec.SteamspyTags)
	}
	if rec.OwnersAvg != 2000 {
		t.Errorf("OwnersAvg = %d, want 2000", rec.OwnersAvg)
	}
}

func TestProcessDuplicateAppID(t *testing.T) {
	raw := &RawTable{
		Headers: []string{"AppID", "Name"},
		Rows: [][]string{
			{"10", "first"},
			{"10", "second"},
			{"bad", "dropped"},
		},
	}

	records, err := Transformer{}.Process(raw)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record after dedup, got %d", len(records))
	}
	if records[0].GameTitle != "first" {
		t.Errorf("duplicate appid should keep first occurrence, got %q", records[0].GameTitle)
	}
}

func TestProcessMissingAppIDColumn(t *testing.T) {
	raw := &RawTable{
		Headers: []string{"Name", "Price"},
		Rows:    [][]string{{"game", "1.0"}},
	}

	if _, err := (Transformer{}).Process(raw); err == nil {
		t.Fatal("expected error for missing appid column")
	}
}

func TestValidate(t *testing.T) {
	raw := &RawTable{
		Headers: []string{"AppID", "Name", "Price", "Positive", "Negative"},
		Rows: [][]string{
			{"10", "ok", "1.0", "1", "1"},
			{"-5", "negative id", "0", "0", "0"},
			{"30", "negative price", "-3.50", "0", "0"},
		},
	}
	records, err := Transformer{}.Process(raw)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	violations := Validate(records)
	rules := make(map[string]int64)
	for _, v := range violations {
		rules[v.Rule] = v.AppID
	}
	if appid, ok := rules["appid_non_negative"]; !ok || appid != -5 {
		t.Errorf("expected appid_non_negative violation for -5, got %+v", violations)
	}
	// 负价要穿过清洗，由这里告警
	if appid, ok := rules["price_non_negative"]; !ok || appid != 30 {
		t.Errorf("expected price_non_negative violation for appid 30, got %+v", violations)
	}
}
