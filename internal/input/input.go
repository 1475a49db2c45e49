// Package input reads key bytes from the terminal and decodes them into
// game commands.
package input

import (
	"bufio"
	"context"
	"io"
	"time"
)

// Stream delivers input bytes via a channel so the game loop can wait for a
// key and a deadline at the same time.
type Stream struct {
	ch  chan byte
	err error // read error that closed ch; read only after ch is closed
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 128),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				s.err = err
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadKey waits up to timeout for the next byte. ok is false when the timeout
// expired first. A non-positive timeout polls without waiting. When the reader
// is exhausted, ReadKey returns io.EOF (or the underlying read error).
func (s *Stream) ReadKey(ctx context.Context, timeout time.Duration) (b byte, ok bool, err error) {
	// Pending bytes are returned even when the deadline already passed.
	select {
	case b, open := <-s.ch:
		return s.received(b, open)
	default:
	}
	if timeout <= 0 {
		return 0, false, ctx.Err()
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case b, open := <-s.ch:
		return s.received(b, open)
	case <-timer.C:
		return 0, false, nil
	case <-ctx.Done():
		return 0, false, ctx.Err()
	}
}

func (s *Stream) received(b byte, open bool) (byte, bool, error) {
	if !open {
		if s.err == nil || s.err == io.EOF {
			return 0, false, io.EOF
		}
		return 0, false, s.err
	}
	return b, true, nil
}
