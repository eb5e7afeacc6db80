// Package memory provides an in-memory workbook sink for tests and for
// running the worker without Google credentials.
package memory

import (
	"context"
	"sync"

	"tripsplit/internal/sheets"
)

type Sink struct {
	mu     sync.Mutex
	books  map[string]sheets.Workbook
	writes int
}

func New() *Sink {
	return &Sink{books: make(map[string]sheets.Workbook)}
}

// WriteWorkbook stores a copy of the workbook, replacing any previous
// upload for the same group.
func (s *Sink) WriteWorkbook(_ context.Context, wb sheets.Workbook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[wb.Group] = cloneWorkbook(wb)
	s.writes++
	return nil
}

// Get returns the last workbook written for a group.
func (s *Sink) Get(group string) (sheets.Workbook, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wb, ok := s.books[group]
	return wb, ok
}

// Writes reports how many uploads have happened.
func (s *Sink) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func cloneWorkbook(wb sheets.Workbook) sheets.Workbook {
	out := sheets.Workbook{Group: wb.Group, Sections: make([]sheets.Section, len(wb.Sections))}
	for i, sec := range wb.Sections {
		rows := make([][]any, len(sec.Rows))
		for j, row := range sec.Rows {
			rows[j] = append([]any(nil), row...)
		}
		out.Sections[i] = sheets.Section{Title: sec.Title, Rows: rows}
	}
	return out
}
