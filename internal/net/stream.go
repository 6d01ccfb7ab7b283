package net

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Stream reads the frames of one replay. File I/O runs in a dedicated
// goroutine; frames are consumed only from the simulation loop.
type Stream struct {
	Name string
	src  io.ReadCloser

	// InQueue delivers frames in order and is closed when the stream ends.
	InQueue chan []byte

	frames atomic.Int64
	err    error // set before InQueue is closed

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewStream(name string, src io.ReadCloser, inSize int, log *zap.Logger) *Stream {
	return &Stream{
		Name:    name,
		src:     src,
		InQueue: make(chan []byte, inSize),
		closeCh: make(chan struct{}),
		log:     log.With(zap.String("stream", name)),
	}
}

// OpenStream opens a replay file.
func OpenStream(path string, inSize int, log *zap.Logger) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	return NewStream(path, f, inSize, log), nil
}

// Start launches the reader goroutine.
func (s *Stream) Start() {
	go s.readLoop()
}

// Close stops reading. Frames already queued stay readable.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.src.Close()
	})
}

func (s *Stream) IsClosed() bool {
	return s.closed.Load()
}

// Frames returns the number of frames read so far.
func (s *Stream) Frames() int64 {
	return s.frames.Load()
}

// Err returns why the stream ended. It is nil for a clean end and only
// meaningful once InQueue is closed.
func (s *Stream) Err() error {
	return s.err
}

// readLoop runs in its own goroutine. It reads frames from the source and
// pushes them onto InQueue for the simulation loop.
func (s *Stream) readLoop() {
	defer close(s.InQueue)
	defer s.Close()

	br := bufio.NewReader(s.src)
	for {
		payload, err := ReadFrame(br)
		if err != nil {
			if !errors.Is(err, io.EOF) && !s.closed.Load() {
				s.err = err
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		s.frames.Add(1)

		// Block until there is room; replays must not drop frames.
		select {
		case s.InQueue <- payload:
		case <-s.closeCh:
			return
		}
	}
}
