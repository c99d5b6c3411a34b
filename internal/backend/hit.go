package backend

import (
	"fmt"
	"strings"
)

// Hit is a converted search hit, ready for the ranker. DocumentID and Score
// are extracted from backend-managed keys; Document holds everything else.
type Hit struct {
	DocumentID  string
	Score       float64
	Document    map[string]any
	Highlight   map[string]any
	RankingInfo map[string]any
}

// ConvertHit converts one RawHit from the backend into a Hit:
// document_id is whichever of "id" or "_id" is present; score is
// "_rankingScore" if present, else "_score", else 0.0; the document is the
// record minus every key beginning with "_"; "_formatted" becomes
// highlight. Returns an error if no document id can be determined so the
// caller can log and skip the record without aborting the whole variant.
func ConvertHit(raw RawHit, weight float64, kind, engineID string) (Hit, error) {
	id, err := documentID(raw)
	if err != nil {
		return Hit{}, err
	}

	score := 0.0
	if v, ok := raw["_rankingScore"]; ok {
		score = toFloat(v)
	} else if v, ok := raw["_score"]; ok {
		score = toFloat(v)
	}

	doc := make(map[string]any, len(raw))
	var highlight map[string]any
	for k, v := range raw {
		if strings.HasPrefix(k, "_") {
			if k == "_formatted" {
				if m, ok := v.(map[string]any); ok {
					highlight = m
				}
			}
			continue
		}
		doc[k] = v
	}

	return Hit{
		DocumentID: id,
		Score:      score,
		Document:   doc,
		Highlight:  highlight,
		RankingInfo: map[string]any{
			"weight":    weight,
			"kind":      kind,
			"engine_id": engineID,
		},
	}, nil
}

func documentID(raw RawHit) (string, error) {
	if v, ok := raw["id"]; ok {
		return fmt.Sprintf("%v", v), nil
	}
	if v, ok := raw["_id"]; ok {
		return fmt.Sprintf("%v", v), nil
	}
	return "", fmt.Errorf("backend: hit has neither \"id\" nor \"_id\"")
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
