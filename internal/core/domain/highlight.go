package domain

// Box is a rectangle in PDF page coordinates.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextItem is one positioned word of a page text layer.
type TextItem struct {
	Text string
	Box  Box
}

// PageText is the rendered text layer of one page.
type PageText struct {
	// Number is 1-based.
	Number int
	Items  []TextItem
}

// PageHighlight is the evidence found on one page.
type PageHighlight struct {
	Page    int    `json:"page"`
	Snippet string `json:"snippet,omitempty"`
	Boxes   []Box  `json:"boxes"`
}

// DocumentHighlights is the evidence found in one document.
type DocumentHighlights struct {
	DocumentID string          `json:"documentId"`
	FileName   string          `json:"fileName"`
	Snippet    string          `json:"snippet,omitempty"`
	Pages      []PageHighlight `json:"pages"`
}

// HighlightLimits bounds highlight rendering cost.
type HighlightLimits struct {
	MaxBoxesPerPage int
	MaxPages        int
}

// DefaultHighlightLimits returns 60 boxes per page and 6 pages per document.
func DefaultHighlightLimits() HighlightLimits {
	return HighlightLimits{MaxBoxesPerPage: 60, MaxPages: 6}
}
