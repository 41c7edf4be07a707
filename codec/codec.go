// Package codec encodes the archive catalog.
//
// A catalog blob records the name of the codec that wrote it, so an archive
// opened with a different codec still reads existing catalogs.
package codec

import (
	"errors"
	"fmt"
)

// ErrUnknownCodec is returned by Lookup for unregistered codec names.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case JSON{}.Name():
		return JSON{}, true
	case GoJSON{}.Name():
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Lookup is ByName with an error for unknown names.
func Lookup(name string) (Codec, error) {
	c, ok := ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// MustMarshal marshals v with c, or Default if c is nil, and panics on error.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
