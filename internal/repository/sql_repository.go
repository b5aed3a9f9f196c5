package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/Jiawei57/steam-analytics-engine/internal/model"
)

// gameColumns steam_games表的列顺序，upsert和查询共用
var gameColumns = []string{
	"appid", "game_title", "price", "release_date", "genres",
	"steamspy_tags", "owners_avg", "total_reviews", "positive_ratio",
	"positive", "negative",
}

// SQLRepository 关系库仓库，方言支持sqlite和postgres
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// NewSQLRepository 打开数据库连接
// driver为"sqlite"或"postgres"，dsn对应文件路径或连接串
func NewSQLRepository(driver, dsn string) (*SQLRepository, error) {
	if driver != "sqlite" && driver != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// 性能优化配置
		db.Exec("PRAGMA journal_mode=WAL")
		db.Exec("PRAGMA synchronous=NORMAL")
		db.Exec("PRAGMA cache_size=10000")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	return &SQLRepository{db: db, driver: driver}, nil
}

// Init 建表，appid是主键所以冲突即更新
func (r *SQLRepository) Init() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS steam_games (
			appid          BIGINT PRIMARY KEY,
			game_title     TEXT,
			price          DOUBLE PRECISION,
			release_date   TEXT,
			genres         TEXT,
			steamspy_tags  TEXT,
			owners_avg     BIGINT,
			total_reviews  BIGINT,
			positive_ratio DOUBLE PRECISION,
			positive       BIGINT,
			negative       BIGINT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create steam_games table: %w", err)
	}
	return nil
}

// UpsertGames 分批upsert，返回写入的记录数
func (r *SQLRepository) UpsertGames(records []*model.GameRecord, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	total := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := r.upsertBatch(records[start:end]); err != nil {
			return total, fmt.Errorf("upsert batch [%d:%d] failed: %w", start, end, err)
		}
		total += end - start
		logrus.Debugf("Upserted %d/%d records", total, len(records))
	}
	return total, nil
}

// upsertBatch 单批多行 INSERT ... ON CONFLICT(appid) DO UPDATE
func (r *SQLRepository) upsertBatch(records []*model.GameRecord) error {
	if len(records) == 0 {
		return nil
	}

	valueRows := make([]string, 0, len(records))
	args := make([]interface{}, 0, len(records)*len(gameColumns))
	argN := 0

	for _, rec := range records {
		ph := make([]string, len(gameColumns))
		for i := range gameColumns {
			argN++
			ph[i] = r.placeholder(argN)
		}
		valueRows = append(valueRows, "("+strings.Join(ph, ",")+")")
		args = append(args,
			rec.AppID, rec.GameTitle, rec.Price, rec.ReleaseDate, rec.Genres,
			rec.SteamspyTags, rec.OwnersAvg, rec.TotalReviews, rec.PositiveRatio,
			rec.Positive, rec.Negative,
		)
	}

	updates := make([]string, 0, len(gameColumns)-1)
	for _, col := range gameColumns[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
	}

	query := fmt.Sprintf(
		"INSERT INTO steam_games (%s) VALUES %s ON CONFLICT(appid) DO UPDATE SET %s",
		strings.Join(gameColumns, ","),
		strings.Join(valueRows, ","),
		strings.Join(updates, ","),
	)

	_, err := r.db.Exec(query, args...)
	return err
}

// placeholder sqlite用?，postgres用$n
func (r *SQLRepository) placeholder(n int) string {
	if r.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// ListGames 读取全表
func (r *SQLRepository) ListGames() ([]*model.GameRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM steam_games ORDER BY appid", strings.Join(gameColumns, ","))
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var records []*model.GameRecord
	for rows.Next() {
		rec := &model.GameRecord{}
		var title, releaseDate, genres, tags sql.NullString
		var price, ratio sql.NullFloat64
		var owners, totalReviews, positive, negative sql.NullInt64

		err := rows.Scan(&rec.AppID, &title, &price, &releaseDate, &genres,
			&tags, &owners, &totalReviews, &ratio, &positive, &negative)
		if err != nil {
			return nil, err
		}

		rec.GameTitle = title.String
		rec.Price = price.Float64
		rec.ReleaseDate = releaseDate.String
		rec.Genres = genres.String
		rec.SteamspyTags = tags.String
		rec.OwnersAvg = owners.Int64
		rec.TotalReviews = totalReviews.Int64
		rec.PositiveRatio = ratio.Float64
		rec.Positive = positive.Int64
		rec.Negative = negative.Int64

		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats 统计信息
func (r *SQLRepository) Stats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalGames int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM steam_games").Scan(&totalGames); err != nil {
		return nil, err
	}
	stats["total_games"] = totalGames

	var freeGames int
	r.db.QueryRow("SELECT COUNT(*) FROM steam_games WHERE price = 0").Scan(&freeGames)
	stats["free_games"] = freeGames

	var totalReviews sql.NullInt64
	r.db.QueryRow("SELECT SUM(total_reviews) FROM steam_games").Scan(&totalReviews)
	stats["total_reviews"] = totalReviews.Int64

	stats["driver"] = r.driver
	return stats, nil
}

// Close 关闭连接
func (r *SQLRepository) Close() error {
	return r.db.Close()
}
