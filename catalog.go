package sux

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/hupe1980/sux/codec"
)

// Kind is the type of a stored vector.
type Kind string

const (
	// KindVec is a bitfield.Vec[uint64].
	KindVec Kind = "vec"
	// KindBitVec is a ranksel.BitVec, stored as a width-1 vector.
	KindBitVec Kind = "bitvec"
)

// Entry describes a stored vector.
type Entry struct {
	Name        string    `json:"name"`
	Kind        Kind      `json:"kind"`
	BitWidth    int       `json:"bit_width"`
	Len         int       `json:"len"`
	Ones        int       `json:"ones,omitempty"`
	Compression string    `json:"compression"`
	Size        int64     `json:"size"`
	Blob        string    `json:"blob"`
	CreatedAt   time.Time `json:"created_at"`
}

const catalogVersion = 1

// catalog is the persisted index of an archive.
type catalog struct {
	Version    int              `json:"version"`
	Generation uint64           `json:"generation"`
	Entries    map[string]Entry `json:"entries"`
}

func newCatalog() *catalog {
	return &catalog{Version: catalogVersion, Entries: make(map[string]Entry)}
}

// encodeCatalog writes the codec name on the first line so that the
// catalog can be decoded without knowing how the archive was configured.
func encodeCatalog(c codec.Codec, cat *catalog) ([]byte, error) {
	body, err := c.Marshal(cat)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(c.Name())+1+len(body))
	out = append(out, c.Name()...)
	out = append(out, '\n')
	return append(out, body...), nil
}

func decodeCatalog(data []byte) (*catalog, error) {
	name, body, ok := bytes.Cut(data, []byte{'\n'})
	if !ok {
		return nil, fmt.Errorf("%w: catalog without codec line", ErrCorrupt)
	}
	c, err := codec.Lookup(string(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	cat := newCatalog()
	if err := c.Unmarshal(body, cat); err != nil {
		return nil, fmt.Errorf("%w: catalog: %w", ErrCorrupt, err)
	}
	if cat.Version != catalogVersion {
		return nil, fmt.Errorf("%w: catalog version %d", ErrCorrupt, cat.Version)
	}
	if cat.Entries == nil {
		cat.Entries = make(map[string]Entry)
	}
	return cat, nil
}

func validName(name string) error {
	if name == "" || name == "." || !fs.ValidPath(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func catalogBlob(prefix string) string {
	return path.Join(prefix, "catalog")
}

func vecBlob(prefix, name string, gen uint64) string {
	return path.Join(prefix, "vec", fmt.Sprintf("%s.%d.sux", name, gen))
}
