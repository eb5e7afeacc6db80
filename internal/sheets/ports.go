package sheets

import (
	"context"
)

// Section is one tab's worth of cell data. The first row is the header.
type Section struct {
	Title string
	Rows  [][]any
}

// Workbook is a group's full report rendered as cell data, ready for
// any spreadsheet-shaped sink.
type Workbook struct {
	Group    string
	Sections []Section
}

// WorkbookWriter is the port for outbound spreadsheet adapters. Writes
// replace the previous upload for the same group; they are not appends.
type WorkbookWriter interface {
	WriteWorkbook(ctx context.Context, wb Workbook) error
}
