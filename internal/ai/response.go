package ai

// Task types known to the routing table.
const (
	TaskArticleGeneration = "generacion_articulo"
	TaskEditorialReview   = "revision_editorial"
	TaskEditorialStrategy = "estrategia_editorial"
)

// Response is the normalized result of one provider call. Provider and
// network failures never surface as Go errors; they come back with
// Success false and the message in Error.
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Provider     string
	Model        string
	CacheHit     bool
	Success      bool
	Error        string
}

// TokensTotal returns the combined prompt and completion token count.
func (r Response) TokensTotal() int {
	return r.InputTokens + r.OutputTokens
}
