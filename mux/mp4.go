// SPDX-License-Identifier: EPL-2.0

package mux

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg4audio"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/fmp4"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/fmp4/seekablebuffer"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/mp4"
	"github.com/ik5/audtrans/media"
)

// DefaultFragmentDuration is how much media goes into one moof/mdat pair.
const DefaultFragmentDuration = time.Second

// TrackHandle identifies a track added to a muxer.
type TrackHandle int

type track struct {
	id        int
	format    media.Format
	codec     mp4.Codec
	timeScale uint32
	// frameSize is the LPCM block size, 0 for AAC
	frameSize int

	pending    []*fmp4.Sample
	pendingDur uint64
	baseTime   uint64
	samples    int
}

type Option func(*MP4)

// WithFragmentDuration sets the fragment length. Values <= 0 are ignored.
func WithFragmentDuration(d time.Duration) Option {
	return func(m *MP4) {
		if d > 0 {
			m.fragment = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *MP4) {
		if l != nil {
			m.logger = l
		}
	}
}

// MP4 writes a fragmented MPEG-4 file: ftyp and moov on Start, then one
// moof/mdat pair per fragment. It is not safe for concurrent use.
type MP4 struct {
	w        io.Writer
	closer   io.Closer
	logger   *slog.Logger
	fragment time.Duration

	tracks   []*track
	seq      uint32
	written  int64
	started  bool
	stopped  bool
	released bool
}

// New writes to w. The caller keeps ownership of w.
func New(w io.Writer, opts ...Option) *MP4 {
	m := &MP4{
		w:        w,
		logger:   slog.New(slog.DiscardHandler),
		fragment: DefaultFragmentDuration,
		seq:      1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create truncates or creates path. Release closes it.
func Create(path string, opts ...Option) (*MP4, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMuxerWrite, err)
	}
	m := New(f, opts...)
	m.closer = f
	return m, nil
}

// AddTrack registers a track. It must be called before Start.
func (m *MP4) AddTrack(f media.Format) (TrackHandle, error) {
	if m.released {
		return -1, ErrReleased
	}
	if m.started {
		return -1, ErrAlreadyStarted
	}

	t := &track{
		id:        len(m.tracks) + 1,
		format:    f.Clone(),
		timeScale: uint32(f.SampleRate),
	}
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return -1, fmt.Errorf("%w: %s", ErrUnsupportedTrack, f)
	}

	switch f.MIME {
	case media.MIMEAAC:
		if len(f.CodecConfig) == 0 {
			return -1, ErrMissingCodecConfig
		}
		var asc mpeg4audio.AudioSpecificConfig
		if err := asc.Unmarshal(f.CodecConfig); err != nil {
			return -1, fmt.Errorf("%w: %w", ErrMissingCodecConfig, err)
		}
		t.codec = &mp4.CodecMPEG4Audio{Config: asc}

	case media.MIMERaw:
		if f.BitsPerSample <= 0 || f.BitsPerSample%8 != 0 {
			return -1, fmt.Errorf("%w: %d-bit pcm", ErrUnsupportedTrack, f.BitsPerSample)
		}
		t.codec = &mp4.CodecLPCM{
			LittleEndian: true,
			BitDepth:     f.BitsPerSample,
			SampleRate:   f.SampleRate,
			ChannelCount: f.Channels,
		}
		t.frameSize = f.FrameSize()

	default:
		return -1, fmt.Errorf("%w: %s", ErrUnsupportedTrack, f.MIME)
	}

	m.tracks = append(m.tracks, t)
	m.logger.Debug("track added", "id", t.id, "format", f.String())
	return TrackHandle(len(m.tracks) - 1), nil
}

// Start writes the initialization segment. It may be called once.
func (m *MP4) Start() error {
	if m.released {
		return ErrReleased
	}
	if m.started {
		return ErrAlreadyStarted
	}
	if len(m.tracks) == 0 {
		return ErrNoTracks
	}

	init := fmp4.Init{}
	for _, t := range m.tracks {
		init.Tracks = append(init.Tracks, &fmp4.InitTrack{
			ID:        t.id,
			TimeScale: t.timeScale,
			Codec:     t.codec,
		})
	}

	var buf seekablebuffer.Buffer
	if err := init.Marshal(&buf); err != nil {
		return fmt.Errorf("%w: marshal init segment: %w", ErrMuxerWrite, err)
	}
	if err := m.write(buf.Bytes()); err != nil {
		return err
	}

	m.started = true
	m.logger.Debug("init segment written", "tracks", len(m.tracks), "size", len(buf.Bytes()))
	return nil
}

func (m *MP4) write(b []byte) error {
	n, err := m.w.Write(b)
	m.written += int64(n)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMuxerWrite, err)
	}
	return nil
}

func (m *MP4) lookup(h TrackHandle) (*track, error) {
	if h < 0 || int(h) >= len(m.tracks) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTrack, h)
	}
	return m.tracks[h], nil
}

// WriteSample appends the payload of info found in data to track h.
// Samples are buffered until a fragment is complete.
func (m *MP4) WriteSample(h TrackHandle, data []byte, info media.BufferInfo) error {
	if m.released {
		return ErrReleased
	}
	if !m.started || m.stopped {
		return ErrNotStarted
	}
	t, err := m.lookup(h)
	if err != nil {
		return err
	}

	payload, err := info.Payload(data)
	if err != nil {
		return fmt.Errorf("track %d: %w", t.id, err)
	}
	if len(payload) == 0 || info.Flags.Has(media.FlagCodecConfig) {
		return nil
	}

	dur := uint32(media.SamplesPerAACFrame)
	if t.frameSize > 0 {
		dur = uint32(len(payload) / t.frameSize)
	}

	t.pending = append(t.pending, &fmp4.Sample{
		Duration: dur,
		Payload:  append([]byte(nil), payload...),
	})
	t.pendingDur += uint64(dur)
	t.samples++

	if t.pendingDur*uint64(time.Second) >= uint64(m.fragment)*uint64(t.timeScale) {
		return m.flush(t)
	}
	return nil
}

func (m *MP4) flush(t *track) error {
	if len(t.pending) == 0 {
		return nil
	}

	part := fmp4.Part{
		SequenceNumber: m.seq,
		Tracks: []*fmp4.PartTrack{{
			ID:       t.id,
			BaseTime: t.baseTime,
			Samples:  t.pending,
		}},
	}

	var buf seekablebuffer.Buffer
	if err := part.Marshal(&buf); err != nil {
		return fmt.Errorf("%w: marshal fragment: %w", ErrMuxerWrite, err)
	}
	if err := m.write(buf.Bytes()); err != nil {
		return err
	}

	m.logger.Debug("fragment written",
		"track", t.id, "sequence", m.seq, "samples", len(t.pending), "base_time", t.baseTime)

	m.seq++
	t.baseTime += t.pendingDur
	t.pending, t.pendingDur = nil, 0
	return nil
}

// Stop flushes buffered samples. Calling it on a muxer that never started
// returns ErrNotStarted.
func (m *MP4) Stop() error {
	if m.released {
		return ErrReleased
	}
	if !m.started {
		return ErrNotStarted
	}
	if m.stopped {
		return nil
	}
	m.stopped = true

	for _, t := range m.tracks {
		if err := m.flush(t); err != nil {
			return err
		}
	}
	return nil
}

// Release closes the file opened by Create. It is idempotent.
func (m *MP4) Release() error {
	if m.released {
		return nil
	}
	m.released = true
	if m.closer == nil {
		return nil
	}
	if err := m.closer.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return nil
}

func (m *MP4) Started() bool { return m.started }

// BytesWritten is the number of bytes written so far.
func (m *MP4) BytesWritten() int64 { return m.written }

// SampleCount is the number of samples accepted on track h.
func (m *MP4) SampleCount(h TrackHandle) int {
	t, err := m.lookup(h)
	if err != nil {
		return 0
	}
	return t.samples
}
