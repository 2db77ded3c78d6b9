// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ik5/audtrans/media"
)

const (
	DefaultInputSlots  = 4
	DefaultOutputSlots = 8
	DefaultSlotSize    = 16 * 1024
	DefaultBitRate     = 64000
)

// Config tunes an encoder. Zero values select defaults.
type Config struct {
	BitRate     int
	Profile     media.Profile
	InputSlots  int
	OutputSlots int
	// SlotSize is the input slot capacity in bytes; at least MaxInputSize.
	SlotSize int
}

func (c Config) withDefaults(in media.Format) Config {
	if c.BitRate <= 0 {
		c.BitRate = DefaultBitRate
	}
	if c.InputSlots <= 0 {
		c.InputSlots = DefaultInputSlots
	}
	if c.OutputSlots <= 0 {
		c.OutputSlots = DefaultOutputSlots
	}
	c.SlotSize = max(c.SlotSize, in.MaxInputSize, DefaultSlotSize)
	return c
}

type slot struct {
	buf   []byte
	state slotState
	info  media.BufferInfo
}

// Engine exchanges buffers with a Backend through fixed slot tables.
// Callers acquire a slot by index, fill or read it, and hand it back; the
// engine alone changes slot state. A worker goroutine feeds queued input to
// the backend and publishes its output.
//
// An Engine is meant for one caller goroutine.
type Engine struct {
	mime    string
	backend Backend
	logger  *slog.Logger

	mu          sync.Mutex
	state       State
	cfg         Config
	output      media.Format
	formatReady bool
	opened      bool
	in, out     []slot
	err         error

	freeIn  chan int
	queued  chan int
	freeOut chan int
	ready   chan int
	quit    chan struct{}
	failed  chan struct{}
	wg      sync.WaitGroup
}

// NewEngine wraps b. mime names the produced stream in logs and errors.
func NewEngine(mime string, b Backend, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{mime: mime, backend: b, logger: logger}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Configure opens the backend for input format in.
func (e *Engine) Configure(in media.Format, cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Unconfigured {
		return fmt.Errorf("%w: configure while %s", ErrInvalidState, e.state)
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedCodec, err)
	}

	cfg = cfg.withDefaults(in)
	out, err := e.backend.Open(in, cfg)
	if err != nil {
		if !errors.Is(err, ErrUnsupportedCodec) {
			err = fmt.Errorf("%w: %w", ErrUnsupportedCodec, err)
		}
		return fmt.Errorf("configure %s: %w", e.mime, err)
	}
	e.opened = true

	e.cfg, e.output = cfg, out
	e.in = make([]slot, cfg.InputSlots)
	e.out = make([]slot, cfg.OutputSlots)
	e.freeIn = make(chan int, cfg.InputSlots)
	e.queued = make(chan int, cfg.InputSlots)
	e.freeOut = make(chan int, cfg.OutputSlots)
	e.ready = make(chan int, cfg.OutputSlots)
	e.quit = make(chan struct{})
	e.failed = make(chan struct{})

	for i := range e.in {
		e.in[i].buf = make([]byte, cfg.SlotSize)
		e.freeIn <- i
	}
	for i := range e.out {
		e.freeOut <- i
	}

	e.state = Configured
	e.logger.Debug("encoder configured",
		"mime", e.mime, "input", in.String(), "output", out.String(),
		"input_slots", cfg.InputSlots, "output_slots", cfg.OutputSlots)
	return nil
}

// Start launches the worker.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Configured {
		return fmt.Errorf("%w: start while %s", ErrInvalidState, e.state)
	}
	e.state = Running
	e.wg.Add(1)
	go e.run()
	return nil
}

func (e *Engine) run() {
	defer e.wg.Done()

	for {
		select {
		case <-e.quit:
			return
		case idx := <-e.queued:
			if err := e.process(idx); err != nil {
				if !errors.Is(err, errStopped) {
					e.fail(err)
				}
				return
			}
		}
	}
}

func (e *Engine) process(idx int) error {
	e.mu.Lock()
	s := &e.in[idx]
	info := s.info
	data := s.buf[info.Offset : info.Offset+info.Size]
	e.mu.Unlock()

	var err error
	if info.Size > 0 {
		err = e.backend.Encode(data, info.PresentationTimeUs, e.emit)
	}
	eos := info.Flags.Has(media.FlagEndOfStream)
	if err == nil && eos {
		err = e.backend.Flush(e.emit)
	}

	e.mu.Lock()
	s.state = slotFree
	e.mu.Unlock()
	e.freeIn <- idx

	if err != nil {
		return err
	}
	if eos {
		return e.emit(Unit{PresentationTimeUs: info.PresentationTimeUs, Flags: media.FlagEndOfStream})
	}
	return nil
}

func (e *Engine) emit(u Unit) error {
	var idx int
	select {
	case idx = <-e.freeOut:
	case <-e.quit:
		return errStopped
	}

	e.mu.Lock()
	s := &e.out[idx]
	if cap(s.buf) < len(u.Data) {
		s.buf = make([]byte, len(u.Data))
	}
	s.buf = s.buf[:len(u.Data)]
	copy(s.buf, u.Data)
	s.info = media.BufferInfo{Size: len(u.Data), PresentationTimeUs: u.PresentationTimeUs, Flags: u.Flags}
	s.state = slotFilled
	e.mu.Unlock()

	e.ready <- idx
	return nil
}

func (e *Engine) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.err == nil {
		e.err = fmt.Errorf("%s encoder: %w", e.mime, err)
		close(e.failed)
		e.logger.Error("encoder failed", "mime", e.mime, "error", err)
	}
}

func (e *Engine) failure() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// receive waits up to timeout for an index on ch.
func (e *Engine) receive(ch <-chan int, timeout time.Duration) (int, error) {
	select {
	case idx := <-ch:
		return idx, nil
	default:
	}
	if err := e.failure(); err != nil {
		return -1, err
	}
	if timeout <= 0 {
		return -1, ErrTryAgain
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case idx := <-ch:
		return idx, nil
	case <-e.failed:
		return -1, e.failure()
	case <-e.quit:
		return -1, fmt.Errorf("%w: engine stopped", ErrInvalidState)
	case <-t.C:
		return -1, ErrTryAgain
	}
}

// AcquireInput returns a free input slot, or ErrTryAgain after timeout.
func (e *Engine) AcquireInput(timeout time.Duration) (int, error) {
	e.mu.Lock()
	st, err := e.state, e.err
	e.mu.Unlock()

	if st != Running {
		return -1, fmt.Errorf("%w: acquire input while %s", ErrInvalidState, st)
	}
	if err != nil {
		return -1, err
	}

	idx, err := e.receive(e.freeIn, timeout)
	if err != nil {
		return -1, err
	}

	e.mu.Lock()
	e.in[idx].state = slotHeldInput
	e.mu.Unlock()
	return idx, nil
}

// InputBuffer returns the full backing buffer of a held input slot.
func (e *Engine) InputBuffer(idx int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idx < 0 || idx >= len(e.in) || e.in[idx].state != slotHeldInput {
		return nil, fmt.Errorf("%w: input %d", ErrSlotNotOwned, idx)
	}
	return e.in[idx].buf, nil
}

// SubmitInput queues size bytes of a held input slot. FlagEndOfStream marks
// the final input and moves the engine to Draining. The caller gives up the
// slot.
func (e *Engine) SubmitInput(idx, size int, ptsUs int64, flags media.Flags) error {
	e.mu.Lock()

	if e.state != Running {
		st := e.state
		e.mu.Unlock()
		return fmt.Errorf("%w: submit while %s", ErrInvalidState, st)
	}
	if idx < 0 || idx >= len(e.in) || e.in[idx].state != slotHeldInput {
		e.mu.Unlock()
		return fmt.Errorf("%w: input %d", ErrSlotNotOwned, idx)
	}
	s := &e.in[idx]
	if size < 0 || size > len(s.buf) {
		e.mu.Unlock()
		return fmt.Errorf("%w: %d > %d", ErrSlotOverflow, size, len(s.buf))
	}

	s.info = media.BufferInfo{Size: size, PresentationTimeUs: ptsUs, Flags: flags}
	s.state = slotQueued
	if flags.Has(media.FlagEndOfStream) {
		e.state = Draining
		e.logger.Debug("end of input submitted", "mime", e.mime, "pts_us", ptsUs)
	}
	e.mu.Unlock()

	e.queued <- idx
	return nil
}

// AcquireOutput returns the next filled output slot and its metadata, or
// ErrTryAgain after timeout. The first successful call announces the
// output format.
func (e *Engine) AcquireOutput(timeout time.Duration) (int, media.BufferInfo, error) {
	e.mu.Lock()
	st := e.state
	e.mu.Unlock()

	if st != Running && st != Draining {
		return -1, media.BufferInfo{}, fmt.Errorf("%w: acquire output while %s", ErrInvalidState, st)
	}

	idx, err := e.receive(e.ready, timeout)
	if err != nil {
		return -1, media.BufferInfo{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s := &e.out[idx]
	s.state = slotHeldOutput
	if !e.formatReady {
		e.formatReady = true
		e.logger.Debug("output format announced", "mime", e.mime, "format", e.output.String())
	}
	return idx, s.info, nil
}

// OutputBuffer returns the contents of a held output slot.
func (e *Engine) OutputBuffer(idx int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idx < 0 || idx >= len(e.out) || e.out[idx].state != slotHeldOutput {
		return nil, fmt.Errorf("%w: output %d", ErrSlotNotOwned, idx)
	}
	return e.out[idx].buf, nil
}

// ReleaseOutput returns a held output slot to the engine.
func (e *Engine) ReleaseOutput(idx int) error {
	e.mu.Lock()
	if idx < 0 || idx >= len(e.out) || e.out[idx].state != slotHeldOutput {
		e.mu.Unlock()
		return fmt.Errorf("%w: output %d", ErrSlotNotOwned, idx)
	}
	e.out[idx].state = slotFree
	e.mu.Unlock()

	e.freeOut <- idx
	return nil
}

// OutputFormat returns the produced track format once announced.
func (e *Engine) OutputFormat() (media.Format, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.formatReady {
		return media.Format{}, ErrFormatNotReady
	}
	return e.output.Clone(), nil
}

// Stop ends the worker. It is safe to call in any state and more than once.
func (e *Engine) Stop() error {
	e.mu.Lock()
	switch e.state {
	case Stopped, Released:
		e.mu.Unlock()
		return nil
	}
	started := e.state == Running || e.state == Draining
	e.state = Stopped
	e.mu.Unlock()

	if started {
		close(e.quit)
		e.wg.Wait()
	}
	e.logger.Debug("encoder stopped", "mime", e.mime)
	return nil
}

// Release stops the engine and closes the backend.
func (e *Engine) Release() error {
	if err := e.Stop(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Released {
		return nil
	}
	e.state = Released
	if !e.opened {
		return nil
	}
	if err := e.backend.Close(); err != nil {
		return fmt.Errorf("closing %s encoder: %w", e.mime, err)
	}
	return nil
}
