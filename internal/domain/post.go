package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostState enumerates the lifecycle of a blog post aggregate.
type PostState string

const (
	StateDraft      PostState = "draft"
	StateGenerating PostState = "generating"
	StateInReview   PostState = "in_review"
	StateApproved   PostState = "approved"
	StatePublished  PostState = "published"
	StateRejected   PostState = "rejected"
	StateFailed     PostState = "failed"
)

// ErrIllegalTransition is returned when a post mutation would violate the
// lifecycle table (e.g. published → generating).
var ErrIllegalTransition = errors.New("illegal post state transition")

// ErrPostNotFound is returned by storage lookups for unknown post IDs.
var ErrPostNotFound = errors.New("post not found")

var postTransitions = map[PostState][]PostState{
	StateDraft:      {StateGenerating},
	StateGenerating: {StateInReview, StateApproved, StateFailed},
	StateInReview:   {StateApproved, StateRejected, StatePublished},
	StateApproved:   {StatePublished, StateRejected},
	StatePublished:  {},
	StateRejected:   {},
	StateFailed:     {},
}

// Valid reports whether s is a member of the closed state set.
func (s PostState) Valid() bool {
	_, ok := postTransitions[s]
	return ok
}

// CanTransition reports whether moving from s to next is allowed.
func (s PostState) CanTransition(next PostState) bool {
	if s == next {
		return true
	}
	for _, allowed := range postTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition validates the move from s to next.
func (s PostState) Transition(next PostState) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown state %q", ErrIllegalTransition, next)
	}
	if !s.CanTransition(next) {
		return fmt.Errorf("%w: %s → %s", ErrIllegalTransition, s, next)
	}
	return nil
}

// BlogPost is the article aggregate created at pipeline INIT and mutated
// only by pipeline stages and external publish/approve actions.
type BlogPost struct {
	ID       uuid.UUID
	ClientID uuid.UUID

	Title           string
	Slug            string
	MetaDescription string
	BodyHTML        string
	Excerpt         string

	PrimaryKeyword    string
	SecondaryKeywords []string

	State PostState

	GenerationProvider string
	GenerationModel    string
	RevisionProvider   string
	RevisionModel      string

	TotalTokens  int
	TotalCostUSD float64

	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExistingPostRef is a read-only snapshot of a published post, used only
// for internal-link suggestion.
type ExistingPostRef struct {
	Slug    string
	Title   string
	Keyword string
	Excerpt string
}
