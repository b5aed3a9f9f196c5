package ingest

import (
	"bufio"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/sirupsen/logrus"
)

// RawTable 原始表：表头加字符串行，清洗前的中间形态
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// FindGamesFile 在目录中定位游戏数据文件（文件名含games，csv优先于parquet）
func FindGamesFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read raw data dir %s: %w", dir, err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if !strings.Contains(name, "games") {
			continue
		}
		if strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".parquet") {
			candidates = append(candidates, e.Name())
		}
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no games csv/parquet found in %s", dir)
	}

	// csv排前面，同类按字典序保证一次运行的确定性
	sort.Slice(candidates, func(i, j int) bool {
		ci := strings.HasSuffix(strings.ToLower(candidates[i]), ".csv")
		cj := strings.HasSuffix(strings.ToLower(candidates[j]), ".csv")
		if ci != cj {
			return ci
		}
		return candidates[i] < candidates[j]
	})

	return filepath.Join(dir, candidates[0]), nil
}

// ReadGamesFile 按扩展名分流读取
func ReadGamesFile(path string) (*RawTable, error) {
	if strings.HasSuffix(strings.ToLower(path), ".parquet") {
		return ReadGamesParquet(path)
	}
	return ReadGamesCSV(path)
}

// ReadGamesCSV 流式读取CSV，行数不齐或解析失败的行跳过不报错
func ReadGamesCSV(path string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open games csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReaderSize(f, 1<<20))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	headers, err := r.Read()
	if err == io.EOF {
		return &RawTable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	table := &RawTable{Headers: headers}
	skipped := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		table.Rows = append(table.Rows, rec)
	}

	if skipped > 0 {
		logrus.Warnf("Skipped %d malformed rows in %s", skipped, path)
	}
	logrus.Infof("Read %d rows from %s", len(table.Rows), path)
	return table, nil
}

// ReadGamesParquet 通过DuckDB读取Parquet，统一转成字符串表
func ReadGamesParquet(path string) (*RawTable, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf("SELECT * FROM read_parquet('%s')", escapeSQLPath(path))
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to scan parquet %s: %w", path, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	table := &RawTable{Headers: headers}
	values := make([]interface{}, len(headers))
	ptrs := make([]interface{}, len(headers))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			continue
		}
		rec := make([]string, len(headers))
		for i, v := range values {
			if v == nil {
				rec[i] = ""
				continue
			}
			rec[i] = fmt.Sprint(v)
		}
		table.Rows = append(table.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("parquet scan error: %w", err)
	}

	logrus.Infof("Read %d rows from %s", len(table.Rows), path)
	return table, nil
}

// escapeSQLPath 文件路径进SQL字面量前转义单引号
func escapeSQLPath(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}
