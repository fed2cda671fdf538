package entity

// ResultStatus discriminates per-item outcomes of batch operations.
type ResultStatus string

const (
	ResultOK      ResultStatus = "ok"
	ResultSkipped ResultStatus = "skipped"
	ResultFailed  ResultStatus = "failed"
)

// ItemResult is one item's outcome in a crawl import batch.
type ItemResult struct {
	URL     string       `json:"url"`
	Name    string       `json:"name,omitempty"`
	EntryID int64        `json:"entry_id,omitempty"`
	Status  ResultStatus `json:"status"`
	Reason  string       `json:"reason,omitempty"`
}
