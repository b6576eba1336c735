package model

// Column types inferred by the table parser.
const (
	ColumnString = "string"
	ColumnNumber = "number"
)

// Column describes one table column. Field is a slug derived from
// the header label and keys the row maps.
type Column struct {
	Field      string
	HeaderName string
	Sortable   bool
	Type       string // ColumnString or ColumnNumber
}

// Row maps column fields to cell values. Values are float64 when the
// column is numeric and the raw cell parsed, raw strings otherwise.
// Missing cells leave the field absent.
type Row map[string]any

// ParsedTable is the structured form of a markdown pipe table.
type ParsedTable struct {
	Title   string
	Columns []Column
	Rows    []Row
}

// ContentPart is one segment of a message body, either plain text or
// a contiguous table block.
type ContentPart struct {
	Type    string // "text" or "table"
	Content string
}

const (
	PartText  = "text"
	PartTable = "table"
)

// Highlight band colors.
const (
	ColorSuccess = "success"
	ColorWarning = "warning"
	ColorError   = "error"
)

// HighlightRule colors cells in a numeric column relative to a
// threshold. Derived at parse time, never persisted.
type HighlightRule struct {
	Column    string
	Threshold float64
	Color     string
}
