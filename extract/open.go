// SPDX-License-Identifier: EPL-2.0

package extract

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ik5/audtrans/audio"
	"github.com/ik5/audtrans/formats/aiff"
	"github.com/ik5/audtrans/formats/mp3"
	"github.com/ik5/audtrans/formats/pcm"
	"github.com/ik5/audtrans/formats/vorbis"
	"github.com/ik5/audtrans/formats/wav"
)

// DefaultSampleFrames is the number of PCM frames per extracted sample.
const DefaultSampleFrames = 1024

type options struct {
	frames     int
	targetRate int
	mono       bool
	raw        pcm.Decoder
	registry   *audio.Registry
	logger     *slog.Logger
}

type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		frames: DefaultSampleFrames,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithSampleFrames sets how many frames go into one sample.
func WithSampleFrames(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.frames = n
		}
	}
}

// WithTargetRate resamples the decoded track to hz.
func WithTargetRate(hz int) Option {
	return func(o *options) { o.targetRate = hz }
}

// WithMono downmixes the decoded track to one channel.
func WithMono() Option {
	return func(o *options) { o.mono = true }
}

// WithRawFormat sets the layout of headerless .pcm inputs.
func WithRawFormat(sampleRate, channels int) Option {
	return func(o *options) { o.raw = pcm.Decoder{SampleRate: sampleRate, Channels: channels} }
}

// WithRegistry replaces the decoder registry.
func WithRegistry(r *audio.Registry) Option {
	return func(o *options) { o.registry = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// DefaultRegistry returns a registry with every built-in decoder. raw is
// used for headerless PCM files.
func DefaultRegistry(raw pcm.Decoder) *audio.Registry {
	reg := audio.NewRegistry()
	reg.RegisterAll(wav.Extensions, wav.Decoder{})
	reg.RegisterAll(mp3.Extensions, mp3.Decoder{})
	reg.RegisterAll(vorbis.Extensions, vorbis.Decoder{})
	reg.RegisterAll(aiff.Extensions, aiff.Decoder{})
	reg.RegisterAll(pcm.Extensions, raw)
	return reg
}

// Open decodes the file at path, picking the decoder by extension, and
// exposes it as a single audio/raw track of 16-bit PCM.
func Open(path string, opts ...Option) (*Extractor, error) {
	o := newOptions(opts)
	reg := o.registry
	if reg == nil {
		reg = DefaultRegistry(o.raw)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceOpen, err)
	}

	dec, ok := reg.ForPath(path)
	if !ok {
		dec, ok = sniff(reg, f)
	}
	if !ok {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	src, err := decode(dec, f, o)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	c := newSourceContainer(src, f, o.frames)
	o.logger.Debug("opened source", "path", path, "format", c.format.String())

	return &Extractor{c: c, logger: o.logger, track: -1}, nil
}

// sniff picks a decoder from the file content, walking from the detected
// MIME type up to its parents until one has a registered extension.
func sniff(reg *audio.Registry, f *os.File) (audio.Decoder, bool) {
	m, err := mimetype.DetectReader(f)
	if _, serr := f.Seek(0, io.SeekStart); err != nil || serr != nil {
		return nil, false
	}

	for ; m != nil; m = m.Parent() {
		if d, ok := reg.Get(m.Extension()); ok && m.Extension() != "" {
			return d, true
		}
	}
	return nil, false
}

func decode(dec audio.Decoder, r io.Reader, o options) (audio.Source, error) {
	src, err := dec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if src.SampleRate() <= 0 || src.Channels() <= 0 {
		_ = src.Close()
		return nil, fmt.Errorf("%w: %d Hz, %d channels", ErrUnsupportedFormat, src.SampleRate(), src.Channels())
	}

	if o.targetRate > 0 && o.targetRate != src.SampleRate() {
		rs, err := audio.NewResampler(src, o.targetRate)
		if err != nil {
			_ = src.Close()
			return nil, err
		}
		src = rs
	}
	if o.mono && src.Channels() > 1 {
		src = audio.NewMonoMixer(src)
	}
	return src, nil
}
