// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ik5/audtrans/codec"
	"github.com/ik5/audtrans/media"
	"github.com/ik5/audtrans/mux"
)

// DefaultTimeout bounds every slot acquisition of a cycle.
const DefaultTimeout = 10 * time.Millisecond

// Source is the elementary stream cursor the pump drains.
type Source interface {
	// ReadSample returns io.EOF when the stream is exhausted.
	ReadSample(dst []byte) (int, error)
	SampleTime() int64
	Advance() bool
}

// Encoder is the slot exchange of a running encoder.
type Encoder interface {
	AcquireInput(timeout time.Duration) (int, error)
	InputBuffer(idx int) ([]byte, error)
	SubmitInput(idx, size int, ptsUs int64, flags media.Flags) error
	AcquireOutput(timeout time.Duration) (int, media.BufferInfo, error)
	OutputBuffer(idx int) ([]byte, error)
	ReleaseOutput(idx int) error
	OutputFormat() (media.Format, error)
}

type Muxer interface {
	AddTrack(f media.Format) (mux.TrackHandle, error)
	Start() error
	WriteSample(h mux.TrackHandle, data []byte, info media.BufferInfo) error
}

// RunState is owned by a Pump and mutated only by it.
type RunState struct {
	SourceExhausted bool
	EncoderDrained  bool
	MuxerStarted    bool
	Cycles          int

	InputBytes int64
	Samples    int
}

type Option func(*Pump)

// WithTimeout sets the per-acquisition timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Pump) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithMaxCycles makes Run fail with ErrCycleLimit after n cycles.
func WithMaxCycles(n int) Option {
	return func(p *Pump) { p.maxCycles = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pump) {
		if l != nil {
			p.logger = l
		}
	}
}

// Pump moves samples from a Source through an Encoder into a Muxer.
type Pump struct {
	src Source
	enc Encoder
	mux Muxer

	timeout   time.Duration
	maxCycles int
	logger    *slog.Logger

	state RunState
	track mux.TrackHandle
}

func NewPump(src Source, enc Encoder, m Muxer, opts ...Option) *Pump {
	p := &Pump{
		src:     src,
		enc:     enc,
		mux:     m,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
		track:   -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pump) State() RunState { return p.state }

// Run cycles until the encoder has drained. ctx is checked once per cycle.
func (p *Pump) Run(ctx context.Context) error {
	for !p.state.EncoderDrained {
		if err := ctx.Err(); err != nil {
			p.logger.Debug("pump cancelled", "cycles", p.state.Cycles)
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		if p.maxCycles > 0 && p.state.Cycles >= p.maxCycles {
			return fmt.Errorf("%w: %d", ErrCycleLimit, p.maxCycles)
		}
		if err := p.Step(); err != nil {
			return err
		}
	}

	p.logger.Debug("pump finished",
		"cycles", p.state.Cycles, "samples", p.state.Samples, "input_bytes", p.state.InputBytes)
	return nil
}

// Step runs one cycle: feed one input if the source has more, then take
// one output.
func (p *Pump) Step() error {
	p.state.Cycles++

	if !p.state.SourceExhausted {
		if err := p.feed(); err != nil {
			return err
		}
	}
	return p.drain()
}

func (p *Pump) feed() error {
	idx, err := p.enc.AcquireInput(p.timeout)
	if errors.Is(err, codec.ErrTryAgain) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("acquiring input slot: %w", err)
	}

	buf, err := p.enc.InputBuffer(idx)
	if err != nil {
		return fmt.Errorf("input slot %d: %w", idx, err)
	}

	n, err := p.src.ReadSample(buf)
	if errors.Is(err, io.EOF) {
		if err := p.enc.SubmitInput(idx, 0, 0, media.FlagEndOfStream); err != nil {
			return fmt.Errorf("submitting end of stream: %w", err)
		}
		p.state.SourceExhausted = true
		p.logger.Debug("source exhausted", "cycles", p.state.Cycles, "input_bytes", p.state.InputBytes)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading sample: %w", err)
	}

	if err := p.enc.SubmitInput(idx, n, p.src.SampleTime(), 0); err != nil {
		return fmt.Errorf("submitting input: %w", err)
	}
	p.state.InputBytes += int64(n)
	p.src.Advance()
	return nil
}

func (p *Pump) drain() error {
	idx, info, err := p.enc.AcquireOutput(p.timeout)
	if errors.Is(err, codec.ErrTryAgain) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("acquiring output slot: %w", err)
	}

	werr := p.write(idx, info)
	rerr := p.enc.ReleaseOutput(idx)
	if werr != nil {
		return werr
	}
	if rerr != nil {
		return fmt.Errorf("releasing output slot %d: %w", idx, rerr)
	}

	if info.Flags.Has(media.FlagEndOfStream) {
		p.state.EncoderDrained = true
	}
	return nil
}

func (p *Pump) write(idx int, info media.BufferInfo) error {
	// codec config travels in the track format, never as a sample
	if info.Flags.Has(media.FlagCodecConfig) {
		info.Size = 0
	}
	if info.Size <= 0 {
		return nil
	}

	if !p.state.MuxerStarted {
		if err := p.startMuxer(); err != nil {
			return err
		}
	}

	buf, err := p.enc.OutputBuffer(idx)
	if err != nil {
		return fmt.Errorf("output slot %d: %w", idx, err)
	}
	if err := p.mux.WriteSample(p.track, buf, info); err != nil {
		return fmt.Errorf("writing sample: %w", err)
	}
	p.state.Samples++
	return nil
}

func (p *Pump) startMuxer() error {
	f, err := p.enc.OutputFormat()
	if err != nil {
		return fmt.Errorf("encoder output format: %w", err)
	}
	h, err := p.mux.AddTrack(f)
	if err != nil {
		return fmt.Errorf("adding track: %w", err)
	}
	if err := p.mux.Start(); err != nil {
		return fmt.Errorf("starting muxer: %w", err)
	}

	p.track = h
	p.state.MuxerStarted = true
	p.logger.Debug("muxer started", "format", f.String(), "cycles", p.state.Cycles)
	return nil
}
