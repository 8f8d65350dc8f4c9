package subspace

// combinations returns every subset of items with size in [1, maxSize],
// smaller subsets first and each subset in input order.
func combinations(items []string, maxSize int) [][]string {
	if maxSize > len(items) {
		maxSize = len(items)
	}
	var out [][]string
	for size := 1; size <= maxSize; size++ {
		idx := make([]int, size)
		for i := range idx {
			idx[i] = i
		}
		for {
			combo := make([]string, size)
			for i, j := range idx {
				combo[i] = items[j]
			}
			out = append(out, combo)

			// Advance the rightmost index that still has room
			i := size - 1
			for i >= 0 && idx[i] == len(items)-size+i {
				i--
			}
			if i < 0 {
				break
			}
			idx[i]++
			for j := i + 1; j < size; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
	return out
}
