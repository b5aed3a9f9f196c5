package recommend

import "sort"

// Scored 候选下标及余弦得分
type Scored struct {
	Index int
	Score float64
}

// Dot 两个稀疏向量的点积（下标都是升序，双指针归并）
// 向量已L2归一化，点积即余弦相似度
func Dot(a, b SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// TopK 查询向量对全矩阵打分，得分降序取前k个，exclude下标（查询自身）跳过
func TopK(query SparseVector, matrix []SparseVector, k, exclude int) []Scored {
	scored := make([]Scored, 0, len(matrix))
	for i := range matrix {
		if i == exclude {
			continue
		}
		s := Dot(query, matrix[i])
		if s <= 0 {
			continue
		}
		scored = append(scored, Scored{Index: i, Score: s})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Index < scored[j].Index
	})

	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
