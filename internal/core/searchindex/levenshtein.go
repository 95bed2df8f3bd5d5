package searchindex

// withinDistance reports whether the edit distance between a and b is at most limit
// the length difference alone is checked first and skips the matrix when it already exceeds limit
func withinDistance(a, b []rune, limit int) bool {
	d := len(a) - len(b)
	if d < 0 {
		d = -d
	}
	if d > limit {
		return false
	}
	return Levenshtein(a, b) <= limit
}

// Levenshtein is the classic dynamic programming edit distance over runes
// two rows are kept instead of the full matrix
func Levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
