// SPDX-License-Identifier: EPL-2.0

package extract

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/audtrans/media"
)

// Extractor is a read cursor over one selected track of a Container.
// It is not safe for concurrent use.
type Extractor struct {
	c      Container
	logger *slog.Logger

	track  int
	reader SampleReader

	// current sample, loaded lazily
	cur    []byte
	curPts int64
	loaded bool
	eof    bool
	err    error

	released bool
}

// New wraps c. No track is selected.
func New(c Container, opts ...Option) *Extractor {
	o := newOptions(opts)
	return &Extractor{c: c, logger: o.logger, track: -1}
}

func (e *Extractor) TrackCount() int { return e.c.TrackCount() }

func (e *Extractor) TrackFormat(i int) (media.Format, error) {
	if i < 0 || i >= e.c.TrackCount() {
		return media.Format{}, fmt.Errorf("%w: %d", ErrTrackIndex, i)
	}
	return e.c.TrackFormat(i)
}

// SelectedTrack returns the selected track index or -1.
func (e *Extractor) SelectedTrack() int { return e.track }

// SelectTrack positions the cursor on the first sample of track i.
func (e *Extractor) SelectTrack(i int) error {
	if e.released {
		return ErrReleased
	}
	if i < 0 || i >= e.c.TrackCount() {
		return fmt.Errorf("%w: %d", ErrTrackIndex, i)
	}

	r, err := e.c.OpenTrack(i)
	if err != nil {
		return fmt.Errorf("opening track %d: %w", i, err)
	}

	e.track, e.reader = i, r
	e.cur, e.loaded, e.eof, e.err = nil, false, false, nil
	return nil
}

// SelectAudioTrack selects the lowest-indexed track with an audio MIME type.
// Later audio tracks are never considered.
func (e *Extractor) SelectAudioTrack() (media.Format, error) {
	for i := range e.c.TrackCount() {
		f, err := e.c.TrackFormat(i)
		if err != nil {
			return media.Format{}, err
		}
		if !f.IsAudio() {
			continue
		}
		if err := e.SelectTrack(i); err != nil {
			return media.Format{}, err
		}
		e.logger.Debug("selected audio track", "track", i, "format", f.String())
		return f, nil
	}
	return media.Format{}, ErrNoAudioTrack
}

func (e *Extractor) load() {
	if e.loaded || e.eof || e.err != nil {
		return
	}
	data, pts, err := e.reader.NextSample()
	switch {
	case err == io.EOF:
		e.eof = true
	case err != nil:
		e.err = fmt.Errorf("reading track %d: %w", e.track, err)
	default:
		e.cur, e.curPts, e.loaded = data, pts, true
	}
}

func (e *Extractor) check() error {
	if e.released {
		return ErrReleased
	}
	if e.reader == nil {
		return ErrNoTrackSelected
	}
	return nil
}

// ReadSample copies the current sample into dst without advancing.
// It returns io.EOF once the track is exhausted.
func (e *Extractor) ReadSample(dst []byte) (int, error) {
	if err := e.check(); err != nil {
		return 0, err
	}

	e.load()
	if e.err != nil {
		return 0, e.err
	}
	if e.eof {
		return 0, io.EOF
	}
	if len(dst) < len(e.cur) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, len(e.cur), len(dst))
	}
	return copy(dst, e.cur), nil
}

// SampleTime returns the presentation time of the current sample in
// microseconds, or -1 when there is none.
func (e *Extractor) SampleTime() int64 {
	if e.check() != nil {
		return -1
	}
	e.load()
	if !e.loaded {
		return -1
	}
	return e.curPts
}

// Advance drops the current sample. It reports whether another sample follows.
func (e *Extractor) Advance() bool {
	if e.check() != nil {
		return false
	}
	e.load()
	if !e.loaded {
		return false
	}
	e.loaded = false
	e.load()
	return e.loaded
}

// Release closes the container. Further calls are no-ops.
func (e *Extractor) Release() error {
	if e.released {
		return nil
	}
	e.released = true
	e.reader = nil
	if err := e.c.Close(); err != nil {
		return fmt.Errorf("closing source: %w", err)
	}
	return nil
}
