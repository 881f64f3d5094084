// Package suggest implements the "did you mean" diagnostics attached to
// unknown config keys, target ids, and similar closed-vocabulary inputs.
package suggest

// Closest returns the candidate with the smallest edit distance to got, or
// "" when nothing is within two edits (anything further is unlikely to be a
// typo and the suggestion would just confuse).
func Closest(got string, candidates []string) string {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein(got, c)
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = c
		}
	}
	if best != "" && bestDist <= 2 {
		return best
	}
	return ""
}

func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
