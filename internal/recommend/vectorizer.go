package recommend

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// englishStopwords 英文停用词（类型/标签语料里常见的虚词）
var englishStopwords = map[string]struct{}{}

func init() {
	words := []string{
		"a", "about", "above", "after", "again", "all", "also", "am", "an", "and",
		"any", "are", "as", "at", "be", "because", "been", "before", "being",
		"below", "between", "both", "but", "by", "can", "did", "do", "does",
		"doing", "down", "during", "each", "few", "for", "from", "further",
		"had", "has", "have", "having", "he", "her", "here", "hers", "him",
		"his", "how", "i", "if", "in", "into", "is", "it", "its", "just",
		"me", "more", "most", "my", "no", "nor", "not", "now", "of", "off",
		"on", "once", "only", "or", "other", "our", "out", "over", "own",
		"s", "same", "she", "so", "some", "such", "t", "than", "that", "the",
		"their", "them", "then", "there", "these", "they", "this", "those",
		"through", "to", "too", "under", "until", "up", "very", "was", "we",
		"were", "what", "when", "where", "which", "while", "who", "whom",
		"why", "will", "with", "you", "your", "yours",
	}
	for _, w := range words {
		englishStopwords[w] = struct{}{}
	}
}

// SparseVector 稀疏向量，下标升序的平行切片
type SparseVector struct {
	Indices []int32   `json:"indices"`
	Values  []float64 `json:"values"`
}

// Vectorizer TF-IDF向量化器
// 词表按语料总词频截断到MaxFeatures，idf平滑，行向量L2归一化
type Vectorizer struct {
	MaxFeatures int            `json:"max_features"`
	Vocab       map[string]int `json:"vocab"`
	IDF         []float64      `json:"idf"`
}

// NewVectorizer 创建向量化器，maxFeatures<=0表示不限制词表
func NewVectorizer(maxFeatures int) *Vectorizer {
	return &Vectorizer{
		MaxFeatures: maxFeatures,
		Vocab:       make(map[string]int),
	}
}

// Tokenize 分词：小写、按非字母数字切分、去停用词和单字符词
func Tokenize(doc string) []string {
	doc = strings.ToLower(doc)
	fields := strings.FieldsFunc(doc, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, tok := range fields {
		if len(tok) < 2 {
			continue
		}
		if _, stop := englishStopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Fit 构建词表与idf
func (v *Vectorizer) Fit(docs []string) {
	termCount := make(map[string]int64) // 语料总词频，词表截断依据
	docFreq := make(map[string]int)     // 文档频率，idf依据

	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, tok := range Tokenize(doc) {
			termCount[tok]++
			if !seen[tok] {
				docFreq[tok]++
				seen[tok] = true
			}
		}
	}

	terms := make([]string, 0, len(termCount))
	for t := range termCount {
		terms = append(terms, t)
	}
	// 高频词优先，同频按字典序保证确定性
	sort.Slice(terms, func(i, j int) bool {
		if termCount[terms[i]] != termCount[terms[j]] {
			return termCount[terms[i]] > termCount[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}
	// 词表内部按字典序编号
	sort.Strings(terms)

	n := float64(len(docs))
	v.Vocab = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, t := range terms {
		v.Vocab[t] = i
		// 平滑idf：ln((1+n)/(1+df)) + 1
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[t]))) + 1
	}
}

// Transform 单文档转L2归一化的TF-IDF稀疏向量
func (v *Vectorizer) Transform(doc string) SparseVector {
	tf := make(map[int]float64)
	for _, tok := range Tokenize(doc) {
		if idx, ok := v.Vocab[tok]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return SparseVector{}
	}

	indices := make([]int32, 0, len(tf))
	for idx := range tf {
		indices = append(indices, int32(idx))
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float64, len(indices))
	var norm float64
	for i, idx := range indices {
		w := tf[int(idx)] * v.IDF[idx]
		values[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range values {
			values[i] /= norm
		}
	}

	return SparseVector{Indices: indices, Values: values}
}

// FitTransform 先Fit再逐文档Transform
func (v *Vectorizer) FitTransform(docs []string) []SparseVector {
	v.Fit(docs)
	vectors := make([]SparseVector, len(docs))
	for i, doc := range docs {
		vectors[i] = v.Transform(doc)
	}
	return vectors
}
