// Package tokenizer implements the Tokenize capability the query processor
// depends on: Tokenize(text) -> (tokens, engine_id, time); Confidence scores
// a Result afterwards.
//
// Engines are external services (newmm, attacut, deepcut, longest, icu)
// reached over HTTP, modelled the way the teacher's pythainlp client wraps a
// Python sidecar: one base URL, JSON in, JSON out, a typed ServiceError on
// failure. A CharacterFallback implementation requires no network call and
// backs the last-resort segmentation path so it never depends on an
// external engine being reachable.
package tokenizer

import (
	"context"
	"time"
)

// Result is the outcome of one engine tokenizing one piece of text.
type Result struct {
	EngineID  string
	Tokens    []string
	WallTime  time.Duration
	Success   bool
	FailureReason string
}

// Client is implemented once per configured tokenization engine.
type Client interface {
	// EngineID identifies the engine for logging, boosting, and confidence
	// scoring (e.g. "newmm", "attacut", "deepcut").
	EngineID() string

	// Tokenize segments text into an ordered token sequence. The call must
	// respect ctx's deadline and return promptly on cancellation.
	Tokenize(ctx context.Context, text string) (Result, error)
}
