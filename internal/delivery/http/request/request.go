package request

type CrawlNextRequest struct {
	CategoryURL  string `json:"category_url"`
	PerPageLimit int    `json:"per_page_limit"` // 0 uses the configured default
	PageCount    int    `json:"page_count"`
}

type ImportPageRequest struct {
	SessionID  int64 `json:"session_id"`
	PageNumber int   `json:"page_number"`
}

type ReconcileRequest struct {
	EntryIDs  []int64 `json:"entry_ids"`
	AutoApply bool    `json:"auto_apply"`
}
