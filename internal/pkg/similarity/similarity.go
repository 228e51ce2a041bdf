// Package similarity implements the character similarity used to suggest
// category matches (the classic similar_text measure).
package similarity

// Common returns the number of matching bytes between a and b: the longest
// common substring plus, recursively, the matches left and right of it.
func Common(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	pos1, pos2, max := longestCommon(a, b)
	if max == 0 {
		return 0
	}
	return max +
		Common(a[:pos1], b[:pos2]) +
		Common(a[pos1+max:], b[pos2+max:])
}

// first longest common substring, scanning a then b
func longestCommon(a, b string) (int, int, int) {
	pos1, pos2, max := 0, 0, 0
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			l := 0
			for i+l < len(a) && j+l < len(b) && a[i+l] == b[j+l] {
				l++
			}
			if l > max {
				pos1, pos2, max = i, j, l
			}
		}
	}
	return pos1, pos2, max
}

// Percent is Common scaled to 0..100 by the combined length.
func Percent(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	return float64(Common(a, b)*2) * 100 / float64(total)
}
