// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audtrans/codec"
	"github.com/ik5/audtrans/extract"
	"github.com/ik5/audtrans/formats/pcm"
	"github.com/ik5/audtrans/media"
	"github.com/ik5/audtrans/mux"
)

// Config describes one transcode run. Zero values select defaults.
type Config struct {
	// MIME is the encoder output type, media.MIMEAAC when empty.
	MIME    string
	BitRate int
	Profile media.Profile

	// SampleFrames is the PCM frames per extracted sample.
	SampleFrames int
	TargetRate   int
	Mono         bool
	// Raw describes headerless .pcm/.raw inputs.
	Raw pcm.Decoder

	FFmpegPath       string
	Timeout          time.Duration
	MaxCycles        int
	FragmentDuration time.Duration

	Logger *slog.Logger
}

// Result summarizes a finished run.
type Result struct {
	ID     string
	Input  string
	Output string
	Format media.Format

	InputBytes  int64
	OutputBytes int64
	Samples     int
	Cycles      int
	Elapsed     time.Duration
}

type source interface {
	Source
	SelectAudioTrack() (media.Format, error)
	Release() error
}

type encoder interface {
	Encoder
	Configure(in media.Format, cfg codec.Config) error
	Start() error
	Stop() error
	Release() error
}

type muxer interface {
	Muxer
	Started() bool
	Stop() error
	Release() error
	BytesWritten() int64
}

// pipeline holds the constructors of the three resources so tests can
// substitute any of them.
type pipeline struct {
	cfg    Config
	logger *slog.Logger

	openSource  func(path string) (source, error)
	newEncoder  func() (encoder, error)
	createMuxer func(path string) (muxer, error)
}

func newPipeline(cfg Config) *pipeline {
	if cfg.MIME == "" {
		cfg.MIME = media.MIMEAAC
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	p := &pipeline{cfg: cfg, logger: cfg.Logger}
	p.openSource = func(path string) (source, error) {
		opts := []extract.Option{
			extract.WithSampleFrames(cfg.SampleFrames),
			extract.WithTargetRate(cfg.TargetRate),
			extract.WithRawFormat(cfg.Raw.SampleRate, cfg.Raw.Channels),
			extract.WithLogger(p.logger),
		}
		if cfg.Mono {
			opts = append(opts, extract.WithMono())
		}
		return extract.Open(path, opts...)
	}
	p.newEncoder = func() (encoder, error) {
		return codec.NewEncoderByType(cfg.MIME,
			codec.WithFFmpegPath(cfg.FFmpegPath),
			codec.WithLogger(p.logger))
	}
	p.createMuxer = func(path string) (muxer, error) {
		return mux.Create(path,
			mux.WithFragmentDuration(cfg.FragmentDuration),
			mux.WithLogger(p.logger))
	}
	return p
}

// Transcode reads the first audio track of in, encodes it and writes an
// MP4 file to out. The pump runs on its own goroutine; every resource it
// acquired is released before Transcode returns.
func Transcode(ctx context.Context, in, out string, cfg Config) (Result, error) {
	return newPipeline(cfg).run(ctx, in, out)
}

type outcome struct {
	res Result
	err error
}

func (p *pipeline) run(ctx context.Context, in, out string) (Result, error) {
	done := make(chan outcome, 1)
	go func() {
		res, err := p.transcode(ctx, in, out)
		done <- outcome{res, err}
	}()

	o := <-done
	return o.res, o.err
}

func (p *pipeline) transcode(ctx context.Context, in, out string) (res Result, err error) {
	res = Result{ID: uuid.NewString(), Input: in, Output: out}
	logger := p.logger.With("run", res.ID)
	begin := time.Now()

	td := &teardown{logger: logger}
	defer func() {
		err = td.run(err)
		res.Elapsed = time.Since(begin)
	}()

	src, err := p.openSource(in)
	if err != nil {
		return res, err
	}
	td.push("extractor", src.Release)

	format, err := src.SelectAudioTrack()
	if err != nil {
		return res, err
	}
	logger.Info("transcode started", "input", in, "output", out, "format", format.String())

	enc, err := p.newEncoder()
	if err != nil {
		return res, err
	}
	td.push("encoder", func() error {
		return errors.Join(enc.Stop(), enc.Release())
	})

	ccfg := codec.Config{BitRate: p.cfg.BitRate, Profile: p.cfg.Profile, SlotSize: format.MaxInputSize}
	if err := enc.Configure(format, ccfg); err != nil {
		return res, err
	}
	if err := enc.Start(); err != nil {
		return res, err
	}

	m, err := p.createMuxer(out)
	if err != nil {
		return res, err
	}
	td.push("muxer", func() error {
		var stopErr error
		if m.Started() {
			stopErr = m.Stop()
		}
		return errors.Join(stopErr, m.Release())
	})

	pump := NewPump(src, enc, m,
		WithTimeout(p.cfg.Timeout),
		WithMaxCycles(p.cfg.MaxCycles),
		WithLogger(logger))
	err = pump.Run(ctx)

	st := pump.State()
	res.InputBytes, res.Samples, res.Cycles = st.InputBytes, st.Samples, st.Cycles
	if f, ferr := enc.OutputFormat(); ferr == nil {
		res.Format = f
	}
	if err != nil {
		return res, err
	}

	if !st.MuxerStarted {
		return res, ErrNoOutput
	}
	// the last fragment is flushed here so a failed write is reported as
	// the run's error rather than a release failure
	if err := m.Stop(); err != nil {
		return res, err
	}
	res.OutputBytes = m.BytesWritten()

	logger.Info("transcode finished",
		"samples", res.Samples, "cycles", res.Cycles,
		"input_bytes", res.InputBytes, "output_bytes", res.OutputBytes,
		"elapsed", time.Since(begin))
	return res, nil
}

type releaser struct {
	name    string
	release func() error
}

// teardown releases resources in reverse acquisition order.
type teardown struct {
	logger *slog.Logger
	steps  []releaser
}

func (t *teardown) push(name string, release func() error) {
	t.steps = append(t.steps, releaser{name: name, release: release})
}

// run releases everything and returns primary when it is set. Release
// failures are logged and surface only on an otherwise successful run.
func (t *teardown) run(primary error) error {
	var errs []error
	for i := len(t.steps) - 1; i >= 0; i-- {
		s := t.steps[i]
		if err := s.release(); err != nil {
			t.logger.Warn("release failed", "resource", s.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	t.steps = nil

	if primary != nil {
		return primary
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrResourceRelease, errors.Join(errs...))
	}
	return nil
}
