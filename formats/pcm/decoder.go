// SPDX-License-Identifier: EPL-2.0

// Package pcm decodes headerless 16-bit little-endian PCM capture files.
//
// A raw capture carries no header, so the layout has to be supplied. The
// zero Decoder assumes 44.1 kHz mono, which is what the recorder writes.
package pcm

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audtrans/audio"
	"github.com/ik5/audtrans/utils"
)

const (
	DefaultSampleRate = 44100
	DefaultChannels   = 1
)

// Extensions lists the file extensions this decoder handles.
var Extensions = []string{"pcm", "raw"}

var ErrInvalidLayout = errors.New("pcm: sample rate and channels must be positive")

// Decoder reads interleaved signed 16-bit little-endian samples.
type Decoder struct {
	SampleRate int
	Channels   int
}

func (d Decoder) layout() (rate, channels int) {
	rate, channels = d.SampleRate, d.Channels
	if rate == 0 {
		rate = DefaultSampleRate
	}
	if channels == 0 {
		channels = DefaultChannels
	}
	return rate, channels
}

func (d Decoder) Decode(r io.Reader) (audio.Source, error) {
	rate, channels := d.layout()
	if rate < 0 || channels < 0 {
		return nil, ErrInvalidLayout
	}

	s := &source{
		r:          bufio.NewReaderSize(r, 8192),
		sampleRate: rate,
		channels:   channels,
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s, nil
}

type source struct {
	r          *bufio.Reader
	closer     io.Closer
	sampleRate int
	channels   int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.buf) < 2*len(dst) {
		s.buf = make([]byte, 2*len(dst))
	}
	s.buf = s.buf[:2*len(dst)]

	n, err := io.ReadFull(s.r, s.buf)
	switch {
	case err == io.ErrUnexpectedEOF:
		// A dangling byte at the end of a capture is dropped.
		err = io.EOF
	case err != nil && err != io.EOF:
		return 0, fmt.Errorf("pcm: %w", err)
	}

	samples := n / 2
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8))
	}

	if err == nil && samples < len(dst) {
		err = io.EOF
	}
	return samples, err
}
