package utils

import (
	"errors"
	"io"
	"sync"
	"syscall"
)

type flushableWriter interface {
	Flush() error
}

type syncableWriter interface {
	Sync() error
}

// FlushingWriter pushes operator-facing output through to its destination after every write so
// conflict lists and prompts are visible before the command blocks on input.
type FlushingWriter struct {
	destination io.Writer
	mutex       sync.Mutex
}

// NewFlushingWriter wraps destination. A nil destination discards output; an already wrapped
// writer is returned unchanged so nested commands share one lock.
func NewFlushingWriter(destination io.Writer) io.Writer {
	if destination == nil {
		return io.Discard
	}
	if _, alreadyWrapped := destination.(*FlushingWriter); alreadyWrapped {
		return destination
	}
	return &FlushingWriter{destination: destination}
}

// Write delegates to the destination, then flushes buffered writers or syncs files.
// Terminals and pipes reject Sync with EINVAL or ENOTSUP; those errors are ignored.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	bytesWritten, writeError := writer.destination.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	switch destination := writer.destination.(type) {
	case flushableWriter:
		if flushError := destination.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	case syncableWriter:
		if syncError := destination.Sync(); syncError != nil && !isUnsupportedSyncError(syncError) {
			return bytesWritten, syncError
		}
	}

	return bytesWritten, nil
}

func isUnsupportedSyncError(syncError error) bool {
	return errors.Is(syncError, syscall.EINVAL) || errors.Is(syncError, syscall.ENOTSUP)
}
