package cmd

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/certogo-tech/searchproxy/internal/api"
	"github.com/certogo-tech/searchproxy/internal/backend"
	"github.com/certogo-tech/searchproxy/internal/config"
	"github.com/certogo-tech/searchproxy/internal/orchestrator"
	"github.com/certogo-tech/searchproxy/internal/output"
	"github.com/certogo-tech/searchproxy/internal/tokenizer"
)

type searchOptions struct {
	index   string
	limit   int
	format  string // "text", "json"
	explain bool
	timeout time.Duration
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a query through the search proxy against one index",
		Long: `Runs a query through the full pipeline - Query Processor, Search
Executor, Result Ranker - against the configured Meilisearch-compatible
backend, the same way an embedding client would.`,
		Example: `  searchproxy search "รถยนต์ไฟฟ้า" --index documents
  searchproxy search "มหาวิทยาลัยเทคโนโลยี" --index documents --format json
  searchproxy search "compound search" --index documents --explain`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.index, "index", "i", "documents", "Index name to search")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Include tokenization diagnostics")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Overall command timeout")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := config.Load(cfgDir)
	if err != nil {
		cfg = config.NewConfig()
	}

	orch := buildOrchestrator(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	reqOpts := api.DefaultSearchOptions()
	reqOpts.Limit = opts.limit

	resp := orch.Search(ctx, api.SearchRequest{
		Query:                   query,
		IndexName:               opts.index,
		Options:                 reqOpts,
		IncludeTokenizationInfo: opts.explain,
	})

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	return formatSearchResponse(output.New(cmd.OutOrStdout()), query, resp)
}

func formatSearchResponse(out *output.Writer, query string, resp api.SearchResponse) error {
	if resp.QueryInfo.FallbackUsed && len(resp.Hits) == 0 {
		out.Warningf("No results for %q (fallback_used=true): %s", query, resp.QueryInfo.ProcessedQuery)
		return nil
	}

	out.Statusf("🔍", "Found %d results for %q (%.1fms)", resp.TotalHits, query, resp.ProcessingTimeMS)
	if resp.TokenizationInfo != nil {
		out.Statusf("", "tokenization: engine=%s confidence=%.2f fallback=%v tokens=%v",
			resp.TokenizationInfo.EngineUsed, resp.TokenizationInfo.Confidence,
			resp.TokenizationInfo.FallbackUsed, resp.TokenizationInfo.Tokens)
	}
	out.Newline()

	for i, hit := range resp.Hits {
		title, _ := hit.Document["title"].(string)
		out.Statusf("", "%d. %s (score: %.3f)", i+1, hit.DocumentID, hit.Score)
		if title != "" {
			out.Status("", "   "+title)
		}
	}
	return nil
}

func buildOrchestrator(cfg *config.Config) *orchestrator.Orchestrator {
	client := backend.NewHTTPClient(cfg.Backend.Endpoint, cfg.Backend.APIKey, time.Duration(cfg.Search.TimeoutMS)*time.Millisecond)

	engines := map[string]tokenizer.Client{}
	timeout := time.Duration(cfg.Tokenization.TimeoutMS) * time.Millisecond
	for engineID, baseURL := range cfg.Tokenization.EngineEndpoints {
		engines[engineID] = tokenizer.NewHTTPClient(engineID, baseURL, timeout)
	}

	return orchestrator.NewOrchestrator(client, engines, cfg)
}
