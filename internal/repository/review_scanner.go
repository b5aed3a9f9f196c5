package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/sirupsen/logrus"

	"github.com/Jiawei57/steam-analytics-engine/internal/model"
)

// reviewColumnAliases 评论文件列别名 -> 规范列名
// 不同年份的评论导出表头不一致，这里做对账
var reviewColumnAliases = []struct {
	canonical string
	aliases   []string
}{
	{"app_id", []string{"app_id", "appid"}},
	{"review_score", []string{"voted_up", "review_score", "is_positive"}},
	{"vote_up", []string{"votes_up", "vote_up"}},
	{"created_at", []string{"timestamp_created", "created_at"}},
	{"review_text", []string{"review", "review_text", "content"}},
	{"language", []string{"language", "lang"}},
	{"playtime_minutes", []string{"author_playtime_forever", "playtime_forever"}},
}

// ReviewCanonicalColumns 规范列名，顺序与别名表一致
func ReviewCanonicalColumns() []string {
	out := make([]string, 0, len(reviewColumnAliases))
	for _, entry := range reviewColumnAliases {
		out = append(out, entry.canonical)
	}
	return out
}

// ResolveReviewColumn 把任意来源的表头映射到规范列名
func ResolveReviewColumn(header string) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(header))
	for _, entry := range reviewColumnAliases {
		for _, alias := range entry.aliases {
			if h == alias {
				return entry.canonical, true
			}
		}
	}
	return "", false
}

// ReviewScanner 大评论文件的惰性过滤扫描器
// 文件是几个GB的按appid混排的行存，整个加载进内存不可接受；
// 把过滤和投影下推给DuckDB，只物化命中appid的行
type ReviewScanner struct {
	db   *sql.DB
	path string
	rel  string // read_csv_auto(...) 或 read_parquet(...)
}

// NewReviewScanner 打开扫描器，文件不存在直接报错
func NewReviewScanner(path string) (*ReviewScanner, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, model.ErrNotFound(fmt.Sprintf("reviews file not found: %s", path))
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	escaped := strings.ReplaceAll(path, "'", "''")
	rel := fmt.Sprintf("read_csv_auto('%s', ignore_errors=true)", escaped)
	if strings.HasSuffix(strings.ToLower(path), ".parquet") {
		rel = fmt.Sprintf("read_parquet('%s')", escaped)
	}

	return &ReviewScanner{db: db, path: path, rel: rel}, nil
}

// Columns 探测文件实际有哪些规范列（LIMIT 0扫描只读表头）
func (s *ReviewScanner) Columns(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", s.rel))
	if err != nil {
		return nil, fmt.Errorf("failed to probe schema of %s: %w", s.path, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	// 规范列名 -> 文件里实际的列名，取第一个命中的别名
	resolved := make(map[string]string)
	for _, col := range reviewColumnAliases {
		for _, alias := range col.aliases {
			if present[alias] {
				resolved[col.canonical] = alias
				break
			}
		}
	}
	return resolved, nil
}

// ScanByApp 按appid等值过滤扫描，只物化命中的行
// 缺失的列降级为空值列，时间戳先按epoch秒解析再退回通用格式
func (s *ReviewScanner) ScanByApp(ctx context.Context, appID int64) ([]*model.Review, model.ReviewColumns, error) {
	var cols model.ReviewColumns

	resolved, err := s.Columns(ctx)
	if err != nil {
		return nil, cols, err
	}
	idCol, ok := resolved["app_id"]
	if !ok {
		return nil, cols, model.ErrInvalidParameter("reviews file has no app_id/appid column")
	}

	cols = model.ReviewColumns{
		HasText:     resolved["review_text"] != "",
		HasScore:    resolved["review_score"] != "",
		HasVotes:    resolved["vote_up"] != "",
		HasTime:     resolved["created_at"] != "",
		HasLanguage: resolved["language"] != "",
		HasPlaytime: resolved["playtime_minutes"] != "",
	}

	// 投影统一CAST成VARCHAR，脏数据的类型解析留到Go侧兜底
	selects := make([]string, 0, len(reviewColumnAliases))
	for _, col := range reviewColumnAliases {
		if col.canonical == "app_id" {
			continue
		}
		if src, ok := resolved[col.canonical]; ok {
			selects = append(selects, fmt.Sprintf("CAST(\"%s\" AS VARCHAR) AS %s", src, col.canonical))
		} else {
			selects = append(selects, fmt.Sprintf("CAST(NULL AS VARCHAR) AS %s", col.canonical))
		}
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE TRY_CAST(\"%s\" AS BIGINT) = ?",
		strings.Join(selects, ", "), s.rel, idCol,
	)

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, appID)
	if err != nil {
		return nil, cols, fmt.Errorf("review scan failed for %s: %w", s.path, err)
	}
	defer rows.Close()

	var reviews []*model.Review
	for rows.Next() {
		var score, voteUp, createdAt, text, language, playtime sql.NullString
		if err := rows.Scan(&score, &voteUp, &createdAt, &text, &language, &playtime); err != nil {
			return nil, cols, err
		}

		r := &model.Review{
			AppID:      appID,
			ReviewText: text.String,
			Language:   language.String,
			Positive:   normalizeSentiment(score.String),
		}
		if voteUp.Valid {
			r.VoteUp, _ = strconv.ParseFloat(strings.TrimSpace(voteUp.String), 64)
		}
		if playtime.Valid {
			r.PlaytimeMinutes, _ = strconv.ParseFloat(strings.TrimSpace(playtime.String), 64)
		}
		if createdAt.Valid {
			r.CreatedAt = parseReviewTime(createdAt.String)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, cols, fmt.Errorf("review scan failed for %s: %w", s.path, err)
	}

	logrus.Debugf("Review scan: appid=%d matched=%d took=%v", appID, len(reviews), time.Since(start))
	return reviews, cols, nil
}

// Close 关闭DuckDB连接
func (s *ReviewScanner) Close() error {
	return s.db.Close()
}

// normalizeSentiment 评分列取值混乱（1/0、true/false、-1），含1或true算好评
func normalizeSentiment(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Contains(s, "1") || strings.Contains(s, "true")
}

// reviewTimeLayouts epoch解析失败后的退路格式
var reviewTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseReviewTime 先按epoch秒，再按通用格式，都失败返回零值
func parseReviewTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(epoch, 0).UTC()
	}
	// 浮点形式的epoch也常见
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Unix(int64(f), 0).UTC()
	}
	for _, layout := range reviewTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
