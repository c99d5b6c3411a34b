package api

import (
	"fmt"
	"regexp"
	"strings"

	searcherr "github.com/certogo-tech/searchproxy/internal/errors"
)

var indexNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateSearchRequest checks a SearchRequest against the wire contract's
// field ranges before the orchestrator invokes the pipeline.
func ValidateSearchRequest(req SearchRequest, maxQueryLength int) error {
	if err := validateQuery(req.Query, maxQueryLength); err != nil {
		return err
	}
	if err := validateIndexName(req.IndexName); err != nil {
		return err
	}
	return validateOptions(req.Options)
}

// ValidateBatchSearchRequest checks a BatchSearchRequest, including the
// batch-size bound.
func ValidateBatchSearchRequest(req BatchSearchRequest, maxQueryLength, maxBatchSize int) error {
	if len(req.Queries) == 0 || len(req.Queries) > maxBatchSize {
		return searcherr.ValidationError(
			fmt.Sprintf("batch size must be between 1 and %d, got %d", maxBatchSize, len(req.Queries)), nil)
	}
	for _, q := range req.Queries {
		if err := validateQuery(q, maxQueryLength); err != nil {
			return err
		}
	}
	if err := validateIndexName(req.IndexName); err != nil {
		return err
	}
	return validateOptions(req.Options)
}

func validateQuery(query string, maxLen int) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return searcherr.ValidationError("query must not be empty", nil)
	}
	if len([]rune(query)) > maxLen {
		return searcherr.ValidationError(fmt.Sprintf("query exceeds max length of %d", maxLen), nil)
	}
	return nil
}

func validateIndexName(name string) error {
	if !indexNamePattern.MatchString(name) {
		return searcherr.ValidationError(fmt.Sprintf("index_name %q does not match ^[A-Za-z0-9_-]+$", name), nil)
	}
	return nil
}

func validateOptions(opts SearchOptions) error {
	if opts.Limit < 1 || opts.Limit > 100 {
		return searcherr.ValidationError(fmt.Sprintf("options.limit must be in [1, 100], got %d", opts.Limit), nil)
	}
	if opts.Offset < 0 {
		return searcherr.ValidationError("options.offset must be >= 0", nil)
	}
	if opts.CropLength != 0 && (opts.CropLength < 10 || opts.CropLength > 1000) {
		return searcherr.ValidationError(fmt.Sprintf("options.crop_length must be in [10, 1000], got %d", opts.CropLength), nil)
	}
	switch opts.MatchingStrategy {
	case "", "all", "last", "frequency":
	default:
		return searcherr.ValidationError(fmt.Sprintf("options.matching_strategy %q is not one of all|last|frequency", opts.MatchingStrategy), nil)
	}
	if opts.BoostExactMatches != 0 && (opts.BoostExactMatches < 0.1 || opts.BoostExactMatches > 5) {
		return searcherr.ValidationError("options.boost_exact_matches must be in [0.1, 5]", nil)
	}
	if opts.BoostThaiMatches != 0 && (opts.BoostThaiMatches < 0.1 || opts.BoostThaiMatches > 5) {
		return searcherr.ValidationError("options.boost_thai_matches must be in [0.1, 5]", nil)
	}
	if opts.MaxQueryVariants != 0 && (opts.MaxQueryVariants < 1 || opts.MaxQueryVariants > 10) {
		return searcherr.ValidationError("options.max_query_variants must be in [1, 10]", nil)
	}
	if opts.SearchTimeoutMS != 0 && (opts.SearchTimeoutMS < 100 || opts.SearchTimeoutMS > 30000) {
		return searcherr.ValidationError("options.search_timeout_ms must be in [100, 30000]", nil)
	}
	return nil
}
