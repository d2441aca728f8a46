// Package transport provides the stdio framing layer for the server.
// Messages are discrete JSON values delimited by newlines, as recommended
// by the MCP specification for processes connected via pipes.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	mcperrors "github.com/friscolabs/frisco-mcp/pkg/errors"
)

// StdioTransport reads newline-delimited frames from an input stream and
// writes frames to an output stream. Writes are atomic with respect to
// each other: a frame is written and flushed under a single lock.
type StdioTransport struct {
	reader    io.Reader
	writer    io.Writer
	rawWriter *bufio.Writer
	mu        sync.Mutex // guards rawWriter
	frames    chan []byte
	done      chan struct{}
	stopOnce  sync.Once
}

// NewStdioTransport creates a transport over the given streams. Nil reader
// or writer default to os.Stdin and os.Stdout.
func NewStdioTransport(reader io.Reader, writer io.Writer) *StdioTransport {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &StdioTransport{
		reader:    reader,
		writer:    writer,
		rawWriter: bufio.NewWriter(writer),
		frames:    make(chan []byte),
		done:      make(chan struct{}),
	}
}

// Frames returns the channel of complete input frames. The channel is
// closed when the input stream ends. Frames are delivered in read order;
// the consumer decides when to take the next one, so processing stays
// strictly sequential.
func (t *StdioTransport) Frames() <-chan []byte {
	return t.frames
}

// Start reads frames until the input stream is closed, the context is
// canceled, or Stop is called. It blocks for the duration. A scanner-level
// I/O failure is fatal and returned; frame content is never inspected here.
func (t *StdioTransport) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	scanner := bufio.NewScanner(t.reader)
	scannerDone := make(chan struct{})

	g.Go(func() error {
		defer close(scannerDone)
		defer close(t.frames)

		for scanner.Scan() {
			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			// Copy: the scanner reuses its buffer on the next Scan.
			data := make([]byte, len(line))
			copy(data, line)

			select {
			case t.frames <- data:
			case <-gctx.Done():
				return gctx.Err()
			case <-t.done:
				return nil
			}
		}

		if err := scanner.Err(); err != nil && err != io.EOF {
			return mcperrors.StdioTransportError("read_input", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
			// Close the reader to unblock scanner.Scan()
			if closer, ok := t.reader.(io.Closer); ok {
				_ = closer.Close()
			}
			return gctx.Err()
		case <-t.done:
			if closer, ok := t.reader.(io.Closer); ok {
				_ = closer.Close()
			}
			return nil
		case <-scannerDone:
			return nil
		}
	})

	return g.Wait()
}

// Send transmits one frame: payload, newline terminator, flush.
func (t *StdioTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.rawWriter.Write(data); err != nil {
		return mcperrors.StdioTransportError("send_message", err)
	}
	if err := t.rawWriter.WriteByte('\n'); err != nil {
		return mcperrors.StdioTransportError("send_message", err)
	}
	if err := t.rawWriter.Flush(); err != nil {
		return mcperrors.StdioTransportError("send_message", err)
	}
	return nil
}

// Flush forces any buffered output onto the stream
func (t *StdioTransport) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.rawWriter.Flush(); err != nil {
		return mcperrors.StdioTransportError("flush", err)
	}
	return nil
}

// Stop halts the read loop and flushes buffered output. Safe to call more
// than once.
func (t *StdioTransport) Stop() error {
	var flushErr error
	t.stopOnce.Do(func() {
		close(t.done)
		flushErr = t.Flush()
	})
	return flushErr
}
