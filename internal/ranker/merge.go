package ranker

// mergeByIDAndSimilarity implements the merging pass: first collapse exact
// document_id duplicates (keeping the preferred hit per the tie-break
// chain), then cluster the survivors by content similarity and collapse
// each cluster to its preferred representative.
func mergeByIDAndSimilarity(hits []scoredHit, cfg Config) ([]scoredHit, int) {
	byID := make(map[string]scoredHit, len(hits))
	order := make([]string, 0, len(hits))
	removed := 0

	for _, h := range hits {
		existing, ok := byID[h.hit.DocumentID]
		if !ok {
			byID[h.hit.DocumentID] = h
			order = append(order, h.hit.DocumentID)
			continue
		}
		removed++
		if preferred(h, existing) {
			byID[h.hit.DocumentID] = collapseInto(h, existing)
		} else {
			byID[h.hit.DocumentID] = collapseInto(existing, h)
		}
	}

	survivors := make([]scoredHit, 0, len(order))
	for _, id := range order {
		survivors = append(survivors, byID[id])
	}

	clustered, simRemoved := clusterBySimilarity(survivors, cfg.SimilarityThreshold)
	return clustered, removed + simRemoved
}

// clusterBySimilarity groups hits whose content-similarity meets threshold
// into clusters and keeps one representative per cluster.
func clusterBySimilarity(hits []scoredHit, threshold float64) ([]scoredHit, int) {
	keys := make([]string, len(hits))
	for i, h := range hits {
		keys[i] = contentKey(h)
	}

	assigned := make([]bool, len(hits))
	var result []scoredHit
	removed := 0

	for i := range hits {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		best := hits[i]

		for j := i + 1; j < len(hits); j++ {
			if assigned[j] {
				continue
			}
			if lcsRatio(keys[i], keys[j]) >= threshold {
				assigned[j] = true
				removed++
				if preferred(hits[j], best) {
					best = collapseInto(hits[j], best)
				} else {
					best = collapseInto(best, hits[j])
				}
			}
		}
		result = append(result, best)
	}
	return result, removed
}
