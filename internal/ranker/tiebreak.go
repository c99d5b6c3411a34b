package ranker

// kindPriority ranks variant kinds for tie-breaking; lower is preferred.
// MixedLanguage is not named by the tie-break ordering; it is placed
// between CompoundSplit and Fallback, ahead of the lowest-confidence kind.
var kindPriority = map[string]int{
	"Tokenized":     0,
	"Original":      1,
	"CompoundSplit": 2,
	"MixedLanguage": 3,
	"Fallback":      4,
}

// enginePriority ranks tokenizer engines for tie-breaking; lower is
// preferred.
var enginePriority = map[string]int{
	"newmm":   0,
	"attacut": 1,
	"deepcut": 2,
	"basic":   3,
}

const otherEnginePriority = 4

func engineRank(engineID string) int {
	if p, ok := enginePriority[engineID]; ok {
		return p
	}
	return otherEnginePriority
}

func kindRank(kind string) int {
	if p, ok := kindPriority[kind]; ok {
		return p
	}
	return len(kindPriority)
}

// preferred reports whether a should be chosen over b under the tie-break
// chain: higher computed score; lower variant-kind priority; lower engine
// priority; lower position; higher variant weight; longer extracted
// content.
func preferred(a, b scoredHit) bool {
	if a.computed != b.computed {
		return a.computed > b.computed
	}
	if ka, kb := kindRank(a.kind), kindRank(b.kind); ka != kb {
		return ka < kb
	}
	if ea, eb := engineRank(a.engineID), engineRank(b.engineID); ea != eb {
		return ea < eb
	}
	if a.position != b.position {
		return a.position < b.position
	}
	if a.weight != b.weight {
		return a.weight > b.weight
	}
	return contentLength(a) > contentLength(b)
}

func contentLength(h scoredHit) int {
	title, _ := h.hit.Document["title"].(string)
	content, _ := h.hit.Document["content"].(string)
	return len([]rune(title)) + len([]rune(content))
}
