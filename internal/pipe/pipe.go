// Package pipe implements the channel a spawned legacy script uses to hand
// its captured object graph back to the orchestrator: a named FIFO in the
// script's working directory carrying length-framed messages. The reader side
// is non-blocking throughout, so a child that exits without writing yields
// zero messages rather than a hang.
package pipe

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// FifoName is the well-known file name created in each working directory.
const FifoName = ".homing-capture.fifo"

// ErrIncompleteFrame reports a frame whose advertised length exceeds the
// bytes actually present on the pipe.
var ErrIncompleteFrame = errors.New("pipe: incomplete frame")

const headerSize = 4

// Create makes the FIFO at path, replacing any stale one left by an aborted
// run.
func Create(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove stale fifo")
	}
	if err := unix.Mkfifo(path, 0o600); err != nil {
		return errors.Wrapf(err, "mkfifo %s", path)
	}
	return nil
}

// Reader drains framed messages from a FIFO without ever blocking. It must
// be opened before the writing child starts, otherwise the child blocks on
// its open of the write end.
type Reader struct {
	fd   int
	path string
	buf  []byte
}

// OpenReader opens the FIFO read-only and non-blocking.
func OpenReader(path string) (*Reader, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "open fifo %s", path)
	}
	return &Reader{fd: fd, path: path}, nil
}

// Drain returns every complete message currently buffered on the pipe. An
// empty pipe returns a nil slice and no error; the caller treats that as
// "zero PLCs captured for this invocation".
func (r *Reader) Drain() ([][]byte, error) {
	if err := r.fill(); err != nil {
		return nil, err
	}
	var messages [][]byte
	for {
		msg, ok, err := r.nextFrame()
		if err != nil {
			return messages, err
		}
		if !ok {
			return messages, nil
		}
		messages = append(messages, msg)
	}
}

func (r *Reader) fill() error {
	chunk := make([]byte, 64*1024)
	for {
		n, err := unix.Read(r.fd, chunk)
		if n > 0 {
			r.buf = append(r.buf, chunk[:n]...)
		}
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			return errors.Wrapf(err, "read fifo %s", r.path)
		}
		if n == 0 {
			// No writer connected, or writer closed: nothing more to read
			// right now.
			return nil
		}
	}
}

func (r *Reader) nextFrame() ([]byte, bool, error) {
	if len(r.buf) < headerSize {
		if len(r.buf) > 0 {
			return nil, false, errors.Wrapf(ErrIncompleteFrame, "%d stray header bytes", len(r.buf))
		}
		return nil, false, nil
	}
	length := binary.BigEndian.Uint32(r.buf[:headerSize])
	if len(r.buf)-headerSize < int(length) {
		return nil, false, errors.Wrapf(ErrIncompleteFrame, "frame wants %d bytes, %d available",
			length, len(r.buf)-headerSize)
	}
	msg := make([]byte, length)
	copy(msg, r.buf[headerSize:headerSize+int(length)])
	r.buf = r.buf[headerSize+int(length):]
	return msg, true, nil
}

func (r *Reader) Close() error {
	return unix.Close(r.fd)
}

// WriteMessage frames one payload onto w: a 4-byte big-endian length prefix
// followed by the payload. The child side of the channel writes exactly one
// message per invocation.
func WriteMessage(w io.Writer, payload []byte) error {
	header := make([]byte, headerSize)
	binary.BigEndian.PutUint32(header, uint32(len(payload)))
	if _, err := w.Write(header); err != nil {
		return errors.Wrap(err, "write frame header")
	}
	if _, err := w.Write(payload); err != nil {
		return errors.Wrap(err, "write frame payload")
	}
	return nil
}
