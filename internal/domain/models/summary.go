package models

// DivergenceFlag marks one document whose length deviates from the
// collection mean by more than the configured threshold.
type DivergenceFlag struct {
	Title     string  `json:"title"`
	WordCount int     `json:"word_count"`
	Mean      float64 `json:"mean_word_count"`
	Direction string  `json:"direction"` // "long" or "short"
}

// DocumentSummary carries the derived per-document signals. Raw text is
// never returned to the caller.
type DocumentSummary struct {
	Title     string   `json:"title"`
	Creators  []string `json:"creators,omitempty"`
	WordCount int      `json:"word_count"`
}

// Summary is the result of summarizing one (possibly nested) collection's
// PDFs across every matching library scope.
type Summary struct {
	Collection     string            `json:"collection"`
	PDFsRead       int               `json:"pdfs_read"`
	Themes         []string          `json:"themes"`
	Divergence     []DivergenceFlag  `json:"divergence"`
	Documents      []DocumentSummary `json:"documents"`
	FallbackTitles []string          `json:"fallback_titles,omitempty"`
	Message        string            `json:"message,omitempty"`
}
