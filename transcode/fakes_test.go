// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"fmt"
	"time"

	"github.com/ik5/audtrans/codec"
	"github.com/ik5/audtrans/extract"
	"github.com/ik5/audtrans/media"
	"github.com/ik5/audtrans/mux"
)

func rawFormat(rate, frames int) media.Format {
	return media.Format{
		MIME:          media.MIMERaw,
		SampleRate:    rate,
		Channels:      1,
		BitsPerSample: 16,
		MaxInputSize:  frames * 2,
	}
}

// rawTrack splits total mono frames into samples of perSample frames.
func rawTrack(rate, total, perSample int) extract.MemoryTrack {
	tr := extract.MemoryTrack{
		Format:           rawFormat(rate, perSample),
		SampleDurationUs: int64(perSample) * 1_000_000 / int64(rate),
	}
	for off := 0; off < total; off += perSample {
		n := min(perSample, total-off)
		s := make([]byte, n*2)
		for i := range s {
			s[i] = byte(off*2 + i)
		}
		tr.Samples = append(tr.Samples, s)
	}
	return tr
}

type unit struct {
	data []byte
	info media.BufferInfo
}

// fakeEncoder passes bytes through unchanged, one input slot at a time.
type fakeEncoder struct {
	output media.Format
	// config, when set, is emitted as a codec-config unit before any data.
	config []byte
	// holdEOS withholds the end-of-stream unit for that many acquisitions.
	holdEOS int

	configureErr error

	inBuf       []byte
	inHeld      bool
	sentConfig  bool
	formatReady bool
	queue       []unit
	held        map[int]unit
	nextOut     int

	configuredWith  media.Format
	configures      int
	starts          int
	stops           int
	releases        int
	acquiredOutputs int
	releasedOutputs int
}

func newFakeEncoder(output media.Format) *fakeEncoder {
	return &fakeEncoder{
		output: output,
		inBuf:  make([]byte, 64*1024),
		held:   map[int]unit{},
	}
}

func (e *fakeEncoder) Configure(in media.Format, _ codec.Config) error {
	e.configures++
	e.configuredWith = in
	return e.configureErr
}

func (e *fakeEncoder) Start() error { e.starts++; return nil }
func (e *fakeEncoder) Stop() error  { e.stops++; return nil }

func (e *fakeEncoder) Release() error { e.releases++; return nil }

func (e *fakeEncoder) AcquireInput(time.Duration) (int, error) {
	if e.inHeld {
		return -1, codec.ErrTryAgain
	}
	e.inHeld = true
	return 0, nil
}

func (e *fakeEncoder) InputBuffer(idx int) ([]byte, error) {
	if idx != 0 || !e.inHeld {
		return nil, codec.ErrSlotNotOwned
	}
	return e.inBuf, nil
}

func (e *fakeEncoder) SubmitInput(idx, size int, ptsUs int64, flags media.Flags) error {
	if idx != 0 || !e.inHeld {
		return codec.ErrSlotNotOwned
	}
	e.inHeld = false

	if e.config != nil && !e.sentConfig {
		e.sentConfig = true
		e.queue = append(e.queue, unit{
			data: e.config,
			info: media.BufferInfo{Size: len(e.config), Flags: media.FlagCodecConfig},
		})
	}
	if size > 0 {
		e.queue = append(e.queue, unit{
			data: append([]byte(nil), e.inBuf[:size]...),
			info: media.BufferInfo{Size: size, PresentationTimeUs: ptsUs, Flags: media.FlagKeyFrame},
		})
	}
	if flags.Has(media.FlagEndOfStream) {
		e.queue = append(e.queue, unit{info: media.BufferInfo{Flags: media.FlagEndOfStream}})
	}
	return nil
}

func (e *fakeEncoder) AcquireOutput(time.Duration) (int, media.BufferInfo, error) {
	if len(e.queue) == 0 {
		return -1, media.BufferInfo{}, codec.ErrTryAgain
	}
	u := e.queue[0]
	if u.info.Flags.Has(media.FlagEndOfStream) && e.holdEOS > 0 {
		e.holdEOS--
		return -1, media.BufferInfo{}, codec.ErrTryAgain
	}
	e.queue = e.queue[1:]

	idx := e.nextOut
	e.nextOut++
	e.held[idx] = u
	e.acquiredOutputs++
	e.formatReady = true
	return idx, u.info, nil
}

func (e *fakeEncoder) OutputBuffer(idx int) ([]byte, error) {
	u, ok := e.held[idx]
	if !ok {
		return nil, codec.ErrSlotNotOwned
	}
	return u.data, nil
}

func (e *fakeEncoder) ReleaseOutput(idx int) error {
	if _, ok := e.held[idx]; !ok {
		return fmt.Errorf("%w: output %d", codec.ErrSlotNotOwned, idx)
	}
	delete(e.held, idx)
	e.releasedOutputs++
	return nil
}

func (e *fakeEncoder) OutputFormat() (media.Format, error) {
	if !e.formatReady {
		return media.Format{}, codec.ErrFormatNotReady
	}
	return e.output, nil
}

type fakeMuxer struct {
	tracks  []media.Format
	starts  int
	started bool
	stopped bool
	stops   int

	releases int
	samples  [][]byte
	infos    []media.BufferInfo
	written  int64

	writeErr error
	stopErr  error
	onWrite  func()
}

func (m *fakeMuxer) AddTrack(f media.Format) (mux.TrackHandle, error) {
	if m.started {
		return -1, mux.ErrAlreadyStarted
	}
	m.tracks = append(m.tracks, f)
	return mux.TrackHandle(len(m.tracks) - 1), nil
}

func (m *fakeMuxer) Start() error {
	if len(m.tracks) == 0 {
		return mux.ErrNoTracks
	}
	m.starts++
	m.started = true
	return nil
}

func (m *fakeMuxer) WriteSample(h mux.TrackHandle, data []byte, info media.BufferInfo) error {
	if !m.started {
		return mux.ErrNotStarted
	}
	if int(h) < 0 || int(h) >= len(m.tracks) {
		return mux.ErrUnknownTrack
	}
	if m.onWrite != nil {
		m.onWrite()
	}
	if m.writeErr != nil {
		return m.writeErr
	}
	m.samples = append(m.samples, append([]byte(nil), data[:info.Size]...))
	m.infos = append(m.infos, info)
	m.written += int64(info.Size)
	return nil
}

func (m *fakeMuxer) Started() bool { return m.started }

func (m *fakeMuxer) Stop() error {
	if !m.started {
		return mux.ErrNotStarted
	}
	if m.stopped {
		return nil
	}
	m.stops++
	m.stopped = true
	return m.stopErr
}

func (m *fakeMuxer) Release() error { m.releases++; return nil }

func (m *fakeMuxer) BytesWritten() int64 { return m.written }
