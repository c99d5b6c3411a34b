package ranker

import "strings"

const contentPreviewChars = 500

// contentKey builds the lower-cased title+content preview a hit is compared
// against for content-similarity clustering.
func contentKey(h scoredHit) string {
	title, _ := h.hit.Document["title"].(string)
	content, _ := h.hit.Document["content"].(string)
	content = strings.ToLower(content)
	if len([]rune(content)) > contentPreviewChars {
		content = string([]rune(content)[:contentPreviewChars])
	}
	return strings.ToLower(title) + content
}

// lcsRatio scores the similarity of two strings via a longest-common-
// subsequence length normalized by their combined length (a Dice-style
// ratio: 1.0 for identical strings, 0.0 for no common subsequence).
func lcsRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcsLen := prev[len(rb)]

	return 2 * float64(lcsLen) / float64(len(ra)+len(rb))
}
