package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Jiawei57/steam-analytics-engine/internal/ingest"
	"github.com/Jiawei57/steam-analytics-engine/internal/model"
	"github.com/Jiawei57/steam-analytics-engine/internal/repository"
	"github.com/Jiawei57/steam-analytics-engine/pkg/config"
)

var (
	configPath = flag.String("config", "./conf/server.ini", "配置文件路径")
	rawDir     = flag.String("dir", "", "原始数据目录（覆盖配置）")
	inputFile  = flag.String("file", "", "指定输入文件（跳过目录扫描）")
	batchSize  = flag.Int("batch", 0, "批量写入大小（覆盖配置）")
	skipExport = flag.Bool("no-export", false, "不导出处理后CSV")
)

func main() {
	flag.Parse()

	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║   Steam游戏数据清洗导入工具          ║")
	fmt.Println("╚══════════════════════════════════════╝")
	fmt.Println()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}
	if *rawDir != "" {
		cfg.ETL.RawDir = *rawDir
	}
	if *batchSize > 0 {
		cfg.ETL.BatchSize = *batchSize
	}

	// 1. 定位输入文件
	gamesFile := *inputFile
	if gamesFile == "" {
		fmt.Printf("📁 扫描目录: %s\n", cfg.ETL.RawDir)
		gamesFile, err = ingest.FindGamesFile(cfg.ETL.RawDir)
		if err != nil {
			log.Fatal("查找游戏数据文件失败:", err)
		}
	}
	fmt.Printf("📂 输入文件: %s\n", gamesFile)

	// 2. 读取原始表
	startTime := time.Now()
	table, err := ingest.ReadGamesFile(gamesFile)
	if err != nil {
		log.Fatal("读取数据文件失败:", err)
	}
	fmt.Printf("✅ 读取 %d 行原始数据\n", len(table.Rows))

	// 3. 清洗与特征计算
	records, err := ingest.Transformer{}.Process(table)
	if err != nil {
		log.Fatal("数据清洗失败:", err)
	}
	fmt.Printf("✅ 清洗后 %d 条有效记录\n", len(records))

	// 4. 质量校验（只告警不阻断）
	violations := ingest.Validate(records)
	if len(violations) > 0 {
		fmt.Printf("⚠️  质量校验发现 %d 处问题\n", len(violations))
		ingest.LogViolations(violations)
	} else {
		fmt.Println("✅ 质量校验通过")
	}

	// 5. 写入数据库
	fmt.Printf("📥 写入数据库: %s (%s)\n", cfg.Database.DSN(), cfg.Database.Driver)
	repo, err := repository.NewSQLRepository(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		log.Fatal("数据库连接失败:", err)
	}
	defer repo.Close()

	if err := repo.Init(); err != nil {
		log.Fatal("建表失败:", err)
	}

	written, err := repo.UpsertGames(records, cfg.ETL.BatchSize)
	if err != nil {
		log.Fatal("数据写入失败:", err)
	}

	// 6. 导出处理后CSV，作为数据库不可用时的降级数据源
	if !*skipExport && cfg.ETL.ProcessedCSV != "" {
		if err := exportProcessedCSV(cfg.ETL.ProcessedCSV, records); err != nil {
			log.Printf("⚠️  降级CSV导出失败: %v\n", err)
		} else {
			fmt.Printf("✅ 降级CSV已导出: %s\n", cfg.ETL.ProcessedCSV)
		}
	}

	elapsed := time.Since(startTime)

	fmt.Println()
	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║           导入完成统计               ║")
	fmt.Println("╚══════════════════════════════════════╝")
	fmt.Printf("✅ 总记录数: %d\n", written)
	fmt.Printf("⏱️  总耗时: %s\n", elapsed)
	if elapsed.Seconds() > 0 {
		fmt.Printf("🚀 速度: %.0f 条/秒\n", float64(written)/elapsed.Seconds())
	}

	// 7. 验证数据
	stats, err := repo.Stats()
	if err != nil {
		log.Printf("⚠️  统计查询失败: %v\n", err)
		return
	}
	fmt.Printf("📊 数据库统计: %v\n", stats)
}

// exportProcessedCSV 导出清洗后的记录，表头与清洗管线的列别名保持一致
func exportProcessedCSV(path string, records []*model.GameRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	header := []string{"appid", "name", "price", "release_date", "genres", "tags", "owners", "positive", "negative"}
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}

	for _, rec := range records {
		row := []string{
			strconv.FormatInt(rec.AppID, 10),
			rec.GameTitle,
			strconv.FormatFloat(rec.Price, 'f', -1, 64),
			rec.ReleaseDate,
			rec.Genres,
			rec.SteamspyTags,
			strconv.FormatInt(rec.OwnersAvg, 10),
			strconv.FormatInt(rec.Positive, 10),
			strconv.FormatInt(rec.Negative, 10),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
