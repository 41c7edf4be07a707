package persistence

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/sux/bitfield"
	ihash "github.com/hupe1980/sux/internal/hash"
)

// WriteVec writes v to w and returns the number of bytes written.
func WriteVec(w io.Writer, v *bitfield.Vec[uint64], c Compression) (int64, error) {
	if !c.valid() {
		return 0, fmt.Errorf("%w: compression %d", ErrInvalidHeader, c)
	}

	h := newHeader(v, c)
	words := v.Words()[:h.WordCount]
	raw := wordBytes(words)
	h.Checksum = ihash.CRC32C(raw)

	payload := raw
	if c != CompressionNone {
		var buf bytes.Buffer
		bw := NewBlockWriter(&buf, c, DefaultBlockSize)
		if _, err := bw.Write(raw); err != nil {
			return 0, err
		}
		if err := bw.Flush(); err != nil {
			return 0, err
		}
		payload = buf.Bytes()
	}
	h.PayloadSize = uint64(len(payload))

	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return 0, err
	}
	n, err := w.Write(payload)
	return int64(HeaderSize + n), err
}

// ReadVec reads a vector written by WriteVec. The returned vector owns its
// words.
func ReadVec(r io.Reader) (*bitfield.Vec[uint64], error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	return readPayload(r, h)
}

func readPayload(r io.Reader, h *FileHeader) (*bitfield.Vec[uint64], error) {
	length, err := h.length()
	if err != nil {
		return nil, err
	}
	wordCount, err := h.wordCount()
	if err != nil {
		return nil, err
	}
	words := make([]uint64, wordCount)

	if h.Compression == CompressionNone {
		cr := NewChecksumReader(r)
		if err := readWords(cr, words); err != nil {
			return nil, err
		}
		if err := cr.Verify(h.Checksum); err != nil {
			return nil, err
		}
		return bitfield.FromRawParts(words, int(h.BitWidth), length), nil
	}

	size, err := h.payloadSize()
	if err != nil {
		return nil, err
	}
	payload := make([]byte, size)
	if err := readFull(r, payload); err != nil {
		return nil, err
	}

	var raw []byte
	if nativeLittleEndian {
		raw = wordBytes(words)
	} else {
		raw = make([]byte, wordCount*8)
	}
	if err := DecompressAll(payload, raw, h.Compression); err != nil {
		return nil, err
	}
	if err := verifyChecksum(h.Checksum, ihash.CRC32C(raw)); err != nil {
		return nil, err
	}
	if !nativeLittleEndian {
		decodeWords(words, raw)
	}
	return bitfield.FromRawParts(words, int(h.BitWidth), length), nil
}

func readFull(r io.Reader, p []byte) error {
	if _, err := io.ReadFull(r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %w", ErrTruncated, err)
		}
		return err
	}
	return nil
}

// SaveToFile writes v to filename atomically.
func SaveToFile(filename string, v *bitfield.Vec[uint64], c Compression) error {
	return WriteFile(filename, func(w io.Writer) error {
		_, err := WriteVec(w, v, c)
		return err
	})
}

// LoadFromFile reads a vector from filename.
func LoadFromFile(filename string) (*bitfield.Vec[uint64], error) {
	var v *bitfield.Vec[uint64]
	err := ReadFile(filename, func(r io.Reader) error {
		var err error
		v, err = ReadVec(r)
		return err
	})
	return v, err
}

// WriteFile writes a file through a temporary file in the same directory
// that is synced and renamed over filename.
func WriteFile(filename string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	_ = tmp.Chmod(0o644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}
	tmpName = ""

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// ReadFile opens filename and passes a buffered reader to readFunc.
func ReadFile(filename string, readFunc func(io.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return readFunc(bufio.NewReaderSize(f, 256*1024))
}
