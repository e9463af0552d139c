package shared

import (
	"fmt"
	"io"
)

// Reporter emits operator-facing progress lines.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
}

// NewWriterReporter constructs a Reporter over the writer. A nil writer discards output.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = io.Discard
	}
	return writerReporter{writer: writer}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	fmt.Fprintf(reporter.writer, format, args...)
}
