// Package audit appends a human-readable record of every inserted row to a
// per-day log file.
package audit

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/FACorreiaa/chroma-ingest/internal/domain/report/record"
)

const (
	fileDateLayout  = "2006-01-02"
	entryTimeLayout = "2006-01-02 15:04:05"
)

// Log writes to <Dir>/log_YYYY-MM-DD.txt
type Log struct {
	dir string
	now func() time.Time
}

// New creates an audit log rooted at dir.
func New(dir string) *Log {
	return &Log{dir: dir, now: time.Now}
}

// Path returns the log file used for t.
func (l *Log) Path(t time.Time) string {
	return filepath.Join(l.dir, "log_"+t.Format(fileDateLayout)+".txt")
}

// Record appends one block per row. All rows share one timestamp.
func (l *Log) Record(rows []record.Row) error {
	if len(rows) == 0 {
		return nil
	}
	now := l.now()

	f, err := os.OpenFile(l.Path(now), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	stamp := now.Format(entryTimeLayout)
	for _, row := range rows {
		fmt.Fprintf(w, "[%s] Inserted Row (%s):\n", stamp, row.Sink())
		values := row.Values()
		for i, col := range row.Sink().Columns() {
			fmt.Fprintf(w, "    %s: %v\n", col, values[i])
		}
		w.WriteString("\n")
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
