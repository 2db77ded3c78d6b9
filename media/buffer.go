// SPDX-License-Identifier: EPL-2.0

package media

import "strings"

// Flags describe an access unit.
type Flags uint32

const (
	FlagKeyFrame Flags = 1 << iota
	FlagCodecConfig
	FlagEndOfStream
)

// Has reports whether all bits of x are set.
func (f Flags) Has(x Flags) bool { return f&x == x }

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f.Has(FlagKeyFrame) {
		parts = append(parts, "key")
	}
	if f.Has(FlagCodecConfig) {
		parts = append(parts, "config")
	}
	if f.Has(FlagEndOfStream) {
		parts = append(parts, "eos")
	}
	return strings.Join(parts, "|")
}

// BufferInfo is the metadata of one access unit held in a slot buffer.
type BufferInfo struct {
	Offset             int
	Size               int
	PresentationTimeUs int64
	Flags              Flags
}

// Payload returns the part of buf described by the info.
func (i BufferInfo) Payload(buf []byte) ([]byte, error) {
	if i.Offset < 0 || i.Size < 0 || i.Offset+i.Size > len(buf) {
		return nil, ErrPayloadOutOfRange
	}
	return buf[i.Offset : i.Offset+i.Size], nil
}
