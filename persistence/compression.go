package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how the payload of a vector file is stored.
type Compression uint8

const (
	// CompressionNone stores the raw words; only such files can be mapped.
	CompressionNone Compression = 0
	// CompressionLZ4 stores LZ4 compressed blocks (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD stores ZSTD compressed blocks (better ratio).
	CompressionZSTD Compression = 2
)

// DefaultBlockSize is the size of uncompressed payload blocks.
const DefaultBlockSize = 256 * 1024

const blockHeaderSize = 8

var errCorruptBlock = errors.New("corrupt compressed block")

// String returns the name of the compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

func (c Compression) valid() bool {
	return c <= CompressionZSTD
}

// ParseCompression returns the compression with the given name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// compressBlock returns data framed as [uncompressed uint32][compressed uint32][data].
// A compressed size of 0 marks a block stored raw, used when compression
// saves less than 10%.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}

	stored := uint32(len(compressed))
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		compressed, stored = data, 0
	}

	out := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], stored)
	copy(out[blockHeaderSize:], compressed)
	return out, nil
}

// BlockWriter buffers a payload and writes it as compressed blocks.
type BlockWriter struct {
	w           io.Writer
	compression Compression
	blockSize   int
	buffer      *bytes.Buffer
	written     int64
}

// NewBlockWriter creates a block writer. A non-positive blockSize selects
// DefaultBlockSize.
func NewBlockWriter(w io.Writer, c Compression, blockSize int) *BlockWriter {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &BlockWriter{
		w:           w,
		compression: c,
		blockSize:   blockSize,
		buffer:      bytes.NewBuffer(make([]byte, 0, blockSize)),
	}
}

// Write implements io.Writer.
func (bw *BlockWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if bw.buffer.Len() == bw.blockSize {
			if err := bw.Flush(); err != nil {
				return total, err
			}
		}
		n := min(len(p), bw.blockSize-bw.buffer.Len())
		bw.buffer.Write(p[:n])
		total += n
		p = p[n:]
	}
	return total, nil
}

// Flush compresses and writes the buffered block, if any.
func (bw *BlockWriter) Flush() error {
	if bw.buffer.Len() == 0 {
		return nil
	}
	block, err := compressBlock(bw.buffer.Bytes(), bw.compression)
	if err != nil {
		return err
	}
	n, err := bw.w.Write(block)
	bw.written += int64(n)
	if err != nil {
		return err
	}
	bw.buffer.Reset()
	return nil
}

// BytesWritten returns the number of framed bytes written so far.
func (bw *BlockWriter) BytesWritten() int64 {
	return bw.written
}

// DecompressAll decodes a sequence of blocks into dst, which must have
// exactly the total uncompressed size.
func DecompressAll(data, dst []byte, c Compression) error {
	var dec *zstd.Decoder
	if c == CompressionZSTD {
		dec = getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
	}

	out := 0
	for len(data) > 0 {
		if len(data) < blockHeaderSize {
			return fmt.Errorf("%w: short block header", errCorruptBlock)
		}
		size := int(binary.LittleEndian.Uint32(data[0:]))
		stored := int(binary.LittleEndian.Uint32(data[4:]))
		data = data[blockHeaderSize:]

		if size > len(dst)-out {
			return fmt.Errorf("%w: block exceeds payload", errCorruptBlock)
		}
		target := dst[out : out+size]

		if stored == 0 {
			if len(data) < size {
				return fmt.Errorf("%w: raw block extends beyond data", errCorruptBlock)
			}
			copy(target, data[:size])
			data = data[size:]
		} else {
			if len(data) < stored {
				return fmt.Errorf("%w: block extends beyond data", errCorruptBlock)
			}
			if err := decompressBlock(data[:stored], target, c, dec); err != nil {
				return err
			}
			data = data[stored:]
		}
		out += size
	}

	if out != len(dst) {
		return fmt.Errorf("%w: decoded %d of %d bytes", ErrTruncated, out, len(dst))
	}
	return nil
}

func decompressBlock(src, dst []byte, c Compression, dec *zstd.Decoder) error {
	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return fmt.Errorf("%w: %w", errCorruptBlock, err)
		}
		if n != len(dst) {
			return fmt.Errorf("%w: decompressed size mismatch", errCorruptBlock)
		}
	case CompressionZSTD:
		decoded, err := dec.DecodeAll(src, dst[:0])
		if err != nil {
			return fmt.Errorf("%w: %w", errCorruptBlock, err)
		}
		if len(decoded) != len(dst) {
			return fmt.Errorf("%w: decompressed size mismatch", errCorruptBlock)
		}
	default:
		return fmt.Errorf("%w: compressed block in %s payload", errCorruptBlock, c)
	}
	return nil
}
