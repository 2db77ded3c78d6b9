// SPDX-License-Identifier: EPL-2.0

package extract

import (
	"fmt"
	"io"

	"github.com/ik5/audtrans/media"
)

// MemoryTrack is one track of a Memory container. When PTS is shorter than
// Samples the missing timestamps are derived from SampleDurationUs.
type MemoryTrack struct {
	Format           media.Format
	Samples          [][]byte
	PTS              []int64
	SampleDurationUs int64
}

// Memory is a Container backed by in-memory tracks.
type Memory struct {
	Tracks []MemoryTrack

	Closed   bool
	CloseErr error
}

func (m *Memory) TrackCount() int { return len(m.Tracks) }

func (m *Memory) TrackFormat(i int) (media.Format, error) {
	if i < 0 || i >= len(m.Tracks) {
		return media.Format{}, fmt.Errorf("%w: %d", ErrTrackIndex, i)
	}
	return m.Tracks[i].Format, nil
}

func (m *Memory) OpenTrack(i int) (SampleReader, error) {
	if i < 0 || i >= len(m.Tracks) {
		return nil, fmt.Errorf("%w: %d", ErrTrackIndex, i)
	}
	return &memoryReader{track: &m.Tracks[i]}, nil
}

func (m *Memory) Close() error {
	m.Closed = true
	return m.CloseErr
}

type memoryReader struct {
	track *MemoryTrack
	next  int
}

func (r *memoryReader) NextSample() ([]byte, int64, error) {
	if r.next >= len(r.track.Samples) {
		return nil, 0, io.EOF
	}
	i := r.next
	r.next++

	pts := int64(i) * r.track.SampleDurationUs
	if i < len(r.track.PTS) {
		pts = r.track.PTS[i]
	}
	return r.track.Samples[i], pts, nil
}
