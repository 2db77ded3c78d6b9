// SPDX-License-Identifier: EPL-2.0

package extract

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/audtrans/audio"
	"github.com/ik5/audtrans/media"
	"github.com/ik5/audtrans/utils"
)

// Container is a demultiplexed input: a list of tracks, each readable as a
// sequence of samples.
type Container interface {
	TrackCount() int
	TrackFormat(i int) (media.Format, error)
	OpenTrack(i int) (SampleReader, error)
	Close() error
}

// SampleReader yields the samples of one track in presentation order.
// The returned slice stays valid until the next call. io.EOF ends the track.
type SampleReader interface {
	NextSample() (data []byte, ptsUs int64, err error)
}

// sourceContainer exposes a decoded audio.Source as a single audio/raw track.
type sourceContainer struct {
	src    audio.Source
	file   io.Closer
	frames int
	format media.Format
}

func newSourceContainer(src audio.Source, file io.Closer, frames int) *sourceContainer {
	return &sourceContainer{
		src:    src,
		file:   file,
		frames: frames,
		format: media.Format{
			MIME:          media.MIMERaw,
			SampleRate:    src.SampleRate(),
			Channels:      src.Channels(),
			BitsPerSample: 16,
			MaxInputSize:  frames * src.Channels() * 2,
		},
	}
}

func (c *sourceContainer) TrackCount() int { return 1 }

func (c *sourceContainer) TrackFormat(i int) (media.Format, error) {
	if i != 0 {
		return media.Format{}, fmt.Errorf("%w: %d", ErrTrackIndex, i)
	}
	return c.format, nil
}

func (c *sourceContainer) OpenTrack(i int) (SampleReader, error) {
	if i != 0 {
		return nil, fmt.Errorf("%w: %d", ErrTrackIndex, i)
	}
	return &pcmTrack{
		src:      c.src,
		channels: c.format.Channels,
		rate:     int64(c.format.SampleRate),
		floats:   make([]float32, c.frames*c.format.Channels),
		bytes:    make([]byte, c.format.MaxInputSize),
	}, nil
}

// Close closes the decoder chain, then the file. Decoders that already
// closed the file are tolerated.
func (c *sourceContainer) Close() error {
	err := c.src.Close()
	if c.file != nil {
		if ferr := c.file.Close(); ferr != nil && !errors.Is(ferr, os.ErrClosed) {
			err = errors.Join(err, ferr)
		}
	}
	return err
}

// maxStalls bounds consecutive empty reads from a decoder.
const maxStalls = 100

// pcmTrack cuts a float32 source into fixed-size 16-bit PCM samples.
type pcmTrack struct {
	src      audio.Source
	channels int
	rate     int64
	emitted  int64 // frames
	floats   []float32
	bytes    []byte
	done     bool
}

func (t *pcmTrack) NextSample() ([]byte, int64, error) {
	if t.done {
		return nil, 0, io.EOF
	}

	n, stalls := 0, 0
	for n < len(t.floats) {
		got, err := t.src.ReadSamples(t.floats[n:])
		n += got
		if got == 0 && err == nil {
			if stalls++; stalls > maxStalls {
				return nil, 0, io.ErrNoProgress
			}
			continue
		}
		stalls = 0
		if err == io.EOF {
			t.done = true
			break
		}
		if err != nil {
			return nil, 0, err
		}
	}

	n -= n % t.channels
	if n == 0 {
		t.done = true
		return nil, 0, io.EOF
	}

	pts := t.emitted * 1_000_000 / t.rate
	t.emitted += int64(n / t.channels)

	size := utils.PutPCM16LE(t.bytes, t.floats[:n])
	return t.bytes[:size], pts, nil
}
