// Package input turns a raw terminal byte stream into a per-frame key
// snapshot the simulation can query with IsPressed.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report key repeats, never releases.
const keyHoldDuration = 80 * time.Millisecond

// Key is a semantic game key.
type Key uint8

const (
	KeyLeft Key = iota
	KeyRight
	KeyThrust
	KeyFire
	KeyStart
	KeyPause
	KeyQuit
	keyCount
)

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyThrust:
		return "thrust"
	case KeyFire:
		return "fire"
	case KeyStart:
		return "start"
	case KeyPause:
		return "pause"
	case KeyQuit:
		return "quit"
	}
	return "unknown"
}

// Input represents the current frame's input state.
type Input struct {
	keys    [keyCount]bool
	Pressed []byte // raw bytes drained this frame
}

// IsPressed reports whether k was held during this frame.
func (in Input) IsPressed(k Key) bool {
	if k >= keyCount {
		return false
	}
	return in.keys[k]
}

// Quit is shorthand for IsPressed(KeyQuit).
func (in Input) Quit() bool {
	return in.keys[KeyQuit]
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch       chan byte
	lastSeen [keyCount]time.Time
	now      func() time.Time
	closed   bool
	// partial holds an escape sequence cut off at the end of the last drain.
	partial []byte
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := NewStream()
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// NewStream creates a stream fed through Feed instead of a reader.
func NewStream() *Stream {
	return &Stream{
		ch:  make(chan byte, 128),
		now: time.Now,
	}
}

// Feed queues bytes as if they had been typed. It drops bytes when the
// buffer is full rather than block the caller.
func (s *Stream) Feed(bs ...byte) {
	for _, b := range bs {
		select {
		case s.ch <- b:
		default:
			return
		}
	}
}

// Closed reports whether the underlying reader has hit EOF or an error.
func (s *Stream) Closed() bool {
	return s.closed
}

// ReadInput drains all available bytes from the stream (non-blocking).
// Handles escape sequences for arrow keys and accumulates all pressed keys.
// Uses key state persistence to allow detecting simultaneous key combinations.
func ReadInput(s *Stream) Input {
	now := s.now()
	buf := s.partial
	s.partial = nil
	carried := len(buf)

	// Drain all available bytes
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	// An ESC or ESC [ at the very end may be the start of an arrow key whose
	// remaining bytes have not arrived yet. Keep it for the next drain unless
	// it was already held back once and nothing followed.
	if tail := escapeTail(buf); tail > 0 && len(buf) > carried && !s.closed {
		s.partial = append([]byte(nil), buf[len(buf)-tail:]...)
		buf = buf[:len(buf)-tail]
	}

	// Parse the collected bytes and update key state timestamps
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A': // Up arrow
				s.lastSeen[KeyThrust] = now
			case 'C': // Right arrow
				s.lastSeen[KeyRight] = now
			case 'D': // Left arrow
				s.lastSeen[KeyLeft] = now
			}
			i += 2
			continue
		}

		for _, k := range keysFor(b) {
			s.lastSeen[k] = now
		}
	}

	in := Input{Pressed: buf}
	for k := range in.keys {
		in.keys[k] = !s.lastSeen[k].IsZero() && now.Sub(s.lastSeen[k]) < keyHoldDuration
	}
	if s.closed {
		in.keys[KeyQuit] = true
	}
	return in
}

// escapeTail returns the length of an unfinished CSI prefix at the end of
// buf: 1 for a trailing ESC, 2 for a trailing ESC [, otherwise 0.
func escapeTail(buf []byte) int {
	n := len(buf)
	if n >= 1 && buf[n-1] == '\x1b' {
		return 1
	}
	if n >= 2 && buf[n-2] == '\x1b' && buf[n-1] == '[' {
		return 2
	}
	return 0
}

// keysFor maps a single byte to the keys it presses.
func keysFor(b byte) []Key {
	switch b {
	case 'q', 'Q', '\x03':
		return []Key{KeyQuit}
	case 'a', 'A', 'h', 'H':
		return []Key{KeyLeft}
	case 'd', 'D', 'l', 'L':
		return []Key{KeyRight}
	case 'w', 'W', 'k', 'K':
		return []Key{KeyThrust}
	case ' ':
		return []Key{KeyFire, KeyStart}
	case '\n', '\r':
		return []Key{KeyStart}
	case '\x1b', 'p', 'P':
		return []Key{KeyPause}
	}
	return nil
}
