package recommend

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Jiawei57/steam-analytics-engine/internal/model"
	"github.com/Jiawei57/steam-analytics-engine/pkg/json"
)

// Model 内容推荐模型：游戏元数据 + TF-IDF矩阵 + 标题索引
type Model struct {
	Games      []*model.GameRecord `json:"games"`
	Vectors    []SparseVector      `json:"vectors"`
	Index      map[string]int      `json:"index"` // 标题 -> 行号，重名保留首个
	Vectorizer *Vectorizer         `json:"vectorizer"`
	BuiltAt    int64               `json:"built_at"`
}

// Build 从游戏记录构建模型，语料是 genres+tags
func Build(games []*model.GameRecord, maxFeatures int) *Model {
	docs := make([]string, len(games))
	index := make(map[string]int, len(games))
	for i, g := range games {
		docs[i] = g.ContentFeatures()
		if _, ok := index[g.GameTitle]; !ok && g.GameTitle != "" {
			index[g.GameTitle] = i
		}
	}

	vectorizer := NewVectorizer(maxFeatures)
	vectors := vectorizer.FitTransform(docs)

	logrus.Infof("Model built: %d games, %d vocabulary terms", len(games), len(vectorizer.Vocab))
	return &Model{
		Games:      games,
		Vectors:    vectors,
		Index:      index,
		Vectorizer: vectorizer,
		BuiltAt:    time.Now().Unix(),
	}
}

// Recommend 对给定标题按余弦相似度取前k个候选并生成解释
func (m *Model) Recommend(title string, k int) ([]*model.Recommendation, error) {
	idx, ok := m.Index[title]
	if !ok {
		return nil, model.ErrNotFound(fmt.Sprintf("game title not found: %s", title))
	}
	if k <= 0 {
		k = 10
	}

	queryTags := tagSet(m.Games[idx])
	scored := TopK(m.Vectors[idx], m.Vectors, k, idx)

	results := make([]*model.Recommendation, 0, len(scored))
	for _, s := range scored {
		g := m.Games[s.Index]
		results = append(results, &model.Recommendation{
			GameTitle:     g.GameTitle,
			Genres:        g.Genres,
			Price:         g.Price,
			PositiveRatio: g.PositiveRatio,
			TotalReviews:  g.TotalReviews,
			Score:         s.Score,
			Reason:        explain(queryTags, g),
		})
	}
	return results, nil
}

// Titles 全部可推荐的标题（索引序）
func (m *Model) Titles() []string {
	titles := make([]string, 0, len(m.Index))
	for i, g := range m.Games {
		if idx, ok := m.Index[g.GameTitle]; ok && idx == i {
			titles = append(titles, g.GameTitle)
		}
	}
	return titles
}

// explain 推荐理由：共同标签最多3个，候选好评率>0.8追加高分标记
func explain(queryTags map[string]bool, g *model.GameRecord) string {
	var common []string
	for _, t := range tagList(g) {
		if queryTags[t] {
			common = append(common, t)
			if len(common) == 3 {
				break
			}
		}
	}

	reason := "similar style"
	if len(common) > 0 {
		reason = "shared: " + strings.Join(common, ", ")
	}
	if g.PositiveRatio > 0.8 {
		reason += " | highly rated"
	}
	return reason
}

// tagList 类型+标签按分隔符拆成词条
func tagList(g *model.GameRecord) []string {
	raw := strings.FieldsFunc(g.Genres+";"+g.SteamspyTags, func(r rune) bool {
		return r == ';' || r == ','
	})
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func tagSet(g *model.GameRecord) map[string]bool {
	set := make(map[string]bool)
	for _, t := range tagList(g) {
		set[t] = true
	}
	return set
}

// Save 模型落盘（临时文件加原子改名）
func (m *Model) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("failed to rename model file: %w", err)
	}

	logrus.Infof("Model saved to %s (%d bytes)", path, len(data))
	return nil
}

// LoadModel 从快照文件加载模型
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}

	m := &Model{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model: %w", err)
	}

	logrus.Infof("Model loaded from %s: %d games, built at %s",
		path, len(m.Games), time.Unix(m.BuiltAt, 0).Format("2006-01-02 15:04:05"))
	return m, nil
}
