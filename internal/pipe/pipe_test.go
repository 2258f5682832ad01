package pipe

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func TestWriteMessageFraming(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMessage(&buf, []byte("hello")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	data := buf.Bytes()
	if len(data) != 4+5 {
		t.Fatalf("expected 9 framed bytes, got %d", len(data))
	}
	if !bytes.Equal(data[:4], []byte{0, 0, 0, 5}) {
		t.Fatalf("unexpected header: %v", data[:4])
	}
	if string(data[4:]) != "hello" {
		t.Fatalf("unexpected payload: %q", data[4:])
	}
}

func TestDrainEmptyFifoDoesNotBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), FifoName)
	if err := Create(path); err != nil {
		t.Fatalf("Create: %v", err)
	}
	reader, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer reader.Close()

	messages, err := reader.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected no messages, got %d", len(messages))
	}
}

func TestDrainReadsFramedMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), FifoName)
	if err := Create(path); err != nil {
		t.Fatalf("Create: %v", err)
	}
	reader, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer reader.Close()

	writer, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open write end: %v", err)
	}
	if err := WriteMessage(writer, []byte("first")); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if err := WriteMessage(writer, []byte("second")); err != nil {
		t.Fatalf("write second: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	messages, err := reader.Drain()
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if string(messages[0]) != "first" || string(messages[1]) != "second" {
		t.Fatalf("unexpected messages: %q %q", messages[0], messages[1])
	}
}

func TestDrainReportsTruncatedFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), FifoName)
	if err := Create(path); err != nil {
		t.Fatalf("Create: %v", err)
	}
	reader, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer reader.Close()

	writer, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open write end: %v", err)
	}
	// Header promises 100 bytes, writer dies after 3.
	if _, err := writer.Write([]byte{0, 0, 0, 100, 'a', 'b', 'c'}); err != nil {
		t.Fatalf("write: %v", err)
	}
	writer.Close()

	_, err = reader.Drain()
	if !errors.Is(err, ErrIncompleteFrame) {
		t.Fatalf("expected ErrIncompleteFrame, got %v", err)
	}
}

func TestCreateReplacesStaleFifo(t *testing.T) {
	path := filepath.Join(t.TempDir(), FifoName)
	if err := Create(path); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if err := Create(path); err != nil {
		t.Fatalf("second Create must replace the stale fifo: %v", err)
	}
}
