package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Jiawei57/steam-analytics-engine/internal/recommend"
	"github.com/Jiawei57/steam-analytics-engine/internal/repository"
	"github.com/Jiawei57/steam-analytics-engine/pkg/config"
)

var (
	configPath  = flag.String("config", "./conf/server.ini", "配置文件路径")
	modelPath   = flag.String("out", "", "模型输出路径（覆盖配置）")
	maxFeatures = flag.Int("features", 0, "TF-IDF词表上限（覆盖配置）")
)

func main() {
	flag.Parse()

	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║   游戏推荐模型离线训练工具           ║")
	fmt.Println("╚══════════════════════════════════════╝")
	fmt.Println()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}
	if *modelPath != "" {
		cfg.Recommend.ModelPath = *modelPath
	}
	if *maxFeatures > 0 {
		cfg.Recommend.MaxFeatures = *maxFeatures
	}

	// 1. 加载游戏数据
	fmt.Printf("📂 数据库: %s (%s)\n", cfg.Database.DSN(), cfg.Database.Driver)
	repo, err := repository.NewSQLRepository(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		log.Fatal("数据库连接失败:", err)
	}
	defer repo.Close()

	games, err := repo.ListGames()
	if err != nil {
		log.Fatal("查询游戏数据失败:", err)
	}
	if len(games) == 0 {
		log.Fatal("数据库为空，请先执行数据导入")
	}
	fmt.Printf("✅ 加载 %d 个游戏\n", len(games))

	// 2. 构建TF-IDF向量与相似度索引
	startTime := time.Now()
	model := recommend.Build(games, cfg.Recommend.MaxFeatures)
	elapsed := time.Since(startTime)
	fmt.Printf("✅ 模型构建完成: 词表 %d, 耗时 %s\n", len(model.Vectorizer.Vocab), elapsed)

	// 3. 保存模型快照
	if err := model.Save(cfg.Recommend.ModelPath); err != nil {
		log.Fatal("模型保存失败:", err)
	}
	fmt.Printf("✅ 模型已保存: %s\n", cfg.Recommend.ModelPath)
}
