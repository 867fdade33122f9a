package domain

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrClientInactive  = errors.New("client inactive")
	ErrKeywordNotFound = errors.New("keyword not found")
)

// Client is the tenant that owns a blog. Only the fields the pipeline
// reads are modeled here.
type Client struct {
	ID       uuid.UUID
	Name     string
	Industry string
	SiteURL  string

	// Plan gates which AI tasks are routable (free, starter, pro, agency).
	Plan string

	Tone     string
	Language string

	Active      bool
	AutoPublish bool
}

// MoneyPage is a tenant conversion destination that articles funnel link
// juice toward. Read-only snapshot during a pipeline run.
type MoneyPage struct {
	ID       uuid.UUID
	ClientID uuid.UUID

	URL            string
	Title          string
	Type           string
	TargetKeywords []string
	AnchorTexts    []string
	Priority       int
	Active         bool
}

// PrimaryAnchor returns the preferred anchor text, falling back to the
// page title when none is configured.
func (m MoneyPage) PrimaryAnchor() string {
	if len(m.AnchorTexts) > 0 && m.AnchorTexts[0] != "" {
		return m.AnchorTexts[0]
	}
	return m.Title
}
