package utils

import (
	"io"
	"sync"
)

// FlushingWriter makes prompt text visible before a blocking read by flushing buffered writers after each write.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewFlushingWriter wraps the provided writer; already wrapped writers are returned unchanged.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if _, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return writer
	}
	return &FlushingWriter{writer: writer}
}

// Write delegates to the underlying writer and flushes it when it exposes Flush or Sync.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	switch flushable := flushingWriter.writer.(type) {
	case interface{ Flush() error }:
		if flushError := flushable.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	case interface{ Sync() error }:
		// Terminals reject fsync; the data is already visible there.
		_ = flushable.Sync()
	}

	return bytesWritten, nil
}
