// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ik5/audtrans/media"
)

// Unit is one access unit produced by a Backend.
type Unit struct {
	Data               []byte
	PresentationTimeUs int64
	Flags              media.Flags
}

// EmitFunc hands a unit to the engine. Data is copied before it returns.
type EmitFunc func(Unit) error

// Backend is a synchronous frame encoder driven by an Engine worker.
// Encode and Flush must not retain pcm after returning.
type Backend interface {
	// Open prepares the encoder and returns the output track format.
	Open(in media.Format, cfg Config) (media.Format, error)
	Encode(pcm []byte, ptsUs int64, emit EmitFunc) error
	// Flush drains everything still buffered after the last input.
	Flush(emit EmitFunc) error
	Close() error
}

// BackendOptions are handed to a Factory.
type BackendOptions struct {
	FFmpegPath string
	Logger     *slog.Logger
}

type Factory func(BackendOptions) Backend

type Option func(*BackendOptions)

// WithFFmpegPath sets the ffmpeg binary used by the AAC encoder.
func WithFFmpegPath(path string) Option {
	return func(o *BackendOptions) { o.FFmpegPath = path }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *BackendOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{
		media.MIMEAAC: newFFmpegAAC,
		media.MIMERaw: newPassthrough,
	}
)

// Register makes a backend available to NewEncoderByType, replacing any
// factory registered for mime.
func Register(mime string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[mime] = f
}

// Types lists the registered MIME types.
func Types() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	types := make([]string, 0, len(factories))
	for k := range factories {
		types = append(types, k)
	}
	slices.Sort(types)
	return types
}

// NewEncoderByType returns an unconfigured engine for the given output MIME type.
func NewEncoderByType(mime string, opts ...Option) (*Engine, error) {
	factoriesMu.RLock()
	f, ok := factories[mime]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, mime)
	}

	o := BackendOptions{
		FFmpegPath: "ffmpeg",
		Logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return NewEngine(mime, f(o), o.Logger), nil
}
