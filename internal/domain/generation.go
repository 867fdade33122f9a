package domain

import "github.com/google/uuid"

// GenerationRequest carries everything needed to generate one article.
// Ephemeral, created per invocation.
type GenerationRequest struct {
	ClientID          uuid.UUID
	PrimaryKeyword    string
	SecondaryKeywords []string
	SuggestedTitle    string
	TargetWordCount   int
	IsPillar          bool
}

// GenerationResult is the structured outcome returned to callers; the
// pipeline always produces one unless storage or drafting fails.
type GenerationResult struct {
	PostID          uuid.UUID
	Title           string
	Slug            string
	MetaDescription string
	PrimaryKeyword  string

	Score  int
	Passed bool

	TotalCostUSD  float64
	TotalTokens   int
	RevisionCount int

	CriticalProblems []string
}
