package domain

import "github.com/google/uuid"

// KeywordState enumerates the backlog lifecycle of a planned keyword.
type KeywordState string

const (
	KeywordPending    KeywordState = "pendiente"
	KeywordInProgress KeywordState = "en_progreso"
	KeywordPublished  KeywordState = "publicado"
	KeywordDiscarded  KeywordState = "descartado"
)

// Keyword is a planned search term waiting to become an article.
type Keyword struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	ClusterID *uuid.UUID

	Keyword           string
	SecondaryKeywords []string
	SuggestedTitle    string
	Intent            string
	Priority          int
	IsPillar          bool

	State  KeywordState
	PostID *uuid.UUID
}

// TopicCluster groups a pillar keyword with its satellite keywords.
type TopicCluster struct {
	ID       uuid.UUID
	ClientID uuid.UUID

	Name                 string
	PillarKeyword        string
	PillarSuggestedTitle string
}
