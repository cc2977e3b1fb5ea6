package files

import (
	"fmt"
	"io"
	"sync"

	"github.com/dl-alexandre/gdxfer/internal/remote"
)

// Printer receives the user-facing output of file operations.
// Implementations must be safe for concurrent use.
type Printer interface {
	Printf(format string, args ...interface{})
	Listing(entries []*remote.Entry)
}

// WriterPrinter prints plain text lines to an io.Writer
type WriterPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterPrinter creates a Printer writing to w
func NewWriterPrinter(w io.Writer) *WriterPrinter {
	return &WriterPrinter{w: w}
}

func (p *WriterPrinter) Printf(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}

// Listing prints one "Title: <title>\tid: <id>" line per entry
func (p *WriterPrinter) Listing(entries []*remote.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range entries {
		fmt.Fprintf(p.w, "Title: %s\tid: %s\n", e.Title, e.ID)
	}
}
