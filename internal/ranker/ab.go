package ranker

import (
	"crypto/md5"
	"math/big"
)

var hundred = big.NewInt(100)

// selectAlgorithm picks the ranking algorithm to use for this call,
// applying deterministic A/B bucketing when enabled: the bucket is a pure
// function of session_id and the original query, so identical inputs always
// land in the same arm.
func selectAlgorithm(cfg Config, sessionID, originalQuery string) Algorithm {
	if !cfg.ABTestingEnabled || sessionID == "" {
		return cfg.Algorithm
	}

	bucket := abBucket(sessionID, originalQuery)
	if bucket < cfg.TrafficPercentage {
		return cfg.TestAlgorithm
	}
	return cfg.Algorithm
}

// abBucket hashes session_id + "_" + original_query with MD5, treats the
// digest as a big-endian integer mod 100, and returns it divided by 100.0 —
// a value in [0, 1) that is reproducible for identical inputs.
func abBucket(sessionID, originalQuery string) float64 {
	sum := md5.Sum([]byte(sessionID + "_" + originalQuery))
	n := new(big.Int).SetBytes(sum[:])
	mod := new(big.Int).Mod(n, hundred)
	return float64(mod.Int64()) / 100.0
}
