package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/Jiawei57/steam-analytics-engine/internal/repository"
)

var (
	srcDir  = flag.String("dir", "./data/reviews", "按游戏拆分的评论CSV目录")
	outPath = flag.String("out", "./data/raw/reviews_merged.csv", "合并输出文件")
	topN    = flag.Int("top", 100, "按文件大小取前N个（0=全部）")
)

var fileAppIDRe = regexp.MustCompile(`(\d+)`)

// reviewFile 待合并文件及其大小
type reviewFile struct {
	path string
	size int64
}

func main() {
	flag.Parse()

	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║   评论数据合并工具                   ║")
	fmt.Println("╚══════════════════════════════════════╝")
	fmt.Println()

	// 1. 扫描并按大小排序，大文件通常对应热门游戏
	fmt.Printf("📁 扫描目录: %s\n", *srcDir)
	files, err := collectFiles(*srcDir)
	if err != nil {
		log.Fatal("扫描评论文件失败:", err)
	}
	if len(files) == 0 {
		log.Fatal("未找到评论CSV文件")
	}

	sort.Slice(files, func(i, j int) bool { return files[i].size > files[j].size })
	if *topN > 0 && len(files) > *topN {
		files = files[:*topN]
	}
	fmt.Printf("✅ 选取 %d 个文件\n\n", len(files))

	// 2. 流式合并，输出统一的规范表头
	startTime := time.Now()
	totalRows, err := mergeFiles(files, *outPath)
	if err != nil {
		log.Fatal("合并失败:", err)
	}
	elapsed := time.Since(startTime)

	fmt.Println()
	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║           合并完成统计               ║")
	fmt.Println("╚══════════════════════════════════════╝")
	fmt.Printf("✅ 总行数: %d\n", totalRows)
	fmt.Printf("📂 输出文件: %s\n", *outPath)
	fmt.Printf("⏱️  总耗时: %s\n", elapsed)
}

// collectFiles 收集目录下的CSV文件及大小
func collectFiles(dir string) ([]reviewFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []reviewFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, reviewFile{
			path: filepath.Join(dir, entry.Name()),
			size: info.Size(),
		})
	}
	return files, nil
}

// mergeFiles 逐文件流式追加到输出，列投影到规范表头
func mergeFiles(files []reviewFile, outPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return 0, err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	canonical := repository.ReviewCanonicalColumns()
	if err := w.Write(canonical); err != nil {
		return 0, err
	}

	var total int64
	for i, file := range files {
		fmt.Printf("[%d/%d] 处理: %s (%.1f MB)\n",
			i+1, len(files), filepath.Base(file.path), float64(file.size)/(1024*1024))

		count, err := appendFile(w, canonical, file.path)
		if err != nil {
			log.Printf("  ⚠️  警告: %v\n", err)
			continue
		}

		total += count
		fmt.Printf("  ✅ 合并 %d 行\n", count)
	}

	w.Flush()
	return total, w.Error()
}

// appendFile 把单个文件的行投影到规范列后写出
// 文件里没有app_id列时从文件名里的数字推断
func appendFile(w *csv.Writer, canonical []string, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	// 规范列名 -> 源列下标
	colIdx := make(map[string]int)
	for i, h := range header {
		if name, ok := repository.ResolveReviewColumn(h); ok {
			if _, exists := colIdx[name]; !exists {
				colIdx[name] = i
			}
		}
	}

	fallbackAppID := ""
	if _, ok := colIdx["app_id"]; !ok {
		if m := fileAppIDRe.FindString(filepath.Base(path)); m != "" {
			fallbackAppID = m
		}
	}

	var count int64
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// 跳过坏行，其余照常合并
			continue
		}

		outRow := make([]string, len(canonical))
		for j, name := range canonical {
			if idx, ok := colIdx[name]; ok && idx < len(row) {
				outRow[j] = row[idx]
			} else if name == "app_id" {
				outRow[j] = fallbackAppID
			}
		}

		if err := w.Write(outRow); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}
