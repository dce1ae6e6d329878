package vectorstore

import "math"

// noLabel marks a result slot the kernel could not fill because the index
// holds fewer rows than requested.
const noLabel int64 = -1

// searchKernel runs an exact inner-product scan for every query row. Each
// result row has exactly k slots ordered by descending score; unfilled slots
// carry noLabel and a -Inf score.
func searchKernel(vectors, queries [][]float32, k int) ([][]float32, [][]int64) {
	scores := make([][]float32, len(queries))
	labels := make([][]int64, len(queries))
	for qi, q := range queries {
		rowScores := make([]float32, k)
		rowLabels := make([]int64, k)
		for i := range rowLabels {
			rowScores[i] = float32(math.Inf(-1))
			rowLabels[i] = noLabel
		}

		all := make([]float32, len(vectors))
		for i, v := range vectors {
			all[i] = dot(v, q)
		}
		idxs := argsortDesc(all)
		n := k
		if n > len(idxs) {
			n = len(idxs)
		}
		for i := 0; i < n; i++ {
			rowScores[i] = all[idxs[i]]
			rowLabels[i] = int64(idxs[i])
		}
		scores[qi] = rowScores
		labels[qi] = rowLabels
	}
	return scores, labels
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}

// argsortDesc returns row positions ordered by descending score. Ties keep
// insertion order.
func argsortDesc(vals []float32) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	mergeSort(idxs, make([]int, len(idxs)), vals)
	return idxs
}

func mergeSort(idxs, buf []int, vals []float32) {
	if len(idxs) < 2 {
		return
	}
	mid := len(idxs) / 2
	mergeSort(idxs[:mid], buf[:mid], vals)
	mergeSort(idxs[mid:], buf[mid:], vals)
	copy(buf, idxs)
	i, j, k := 0, mid, 0
	for i < mid && j < len(idxs) {
		if vals[buf[j]] > vals[buf[i]] {
			idxs[k] = buf[j]
			j++
		} else {
			idxs[k] = buf[i]
			i++
		}
		k++
	}
	for i < mid {
		idxs[k] = buf[i]
		i++
		k++
	}
	for j < len(idxs) {
		idxs[k] = buf[j]
		j++
		k++
	}
}
