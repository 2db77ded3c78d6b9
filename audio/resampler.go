// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audtrans/utils"
)

// Resampler streams src at a new sample rate using cubic interpolation over
// interleaved frames. The channel count is preserved. Downsampling runs a
// one-pole low-pass over the input first.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames consumed per output frame
	channels int

	// window[0..3] hold frames t-1, t0, t+1, t+2
	window [4][]float32
	valid  [4]bool
	primed bool

	pos float64
	eof bool

	frame []float32

	lowpass bool
	alpha   float32
	state   []float32
}

func NewResampler(src Source, dstRate int) (*Resampler, error) {
	if dstRate <= 0 || src.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d Hz", ErrInvalidRate, src.SampleRate(), dstRate)
	}

	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     step,
		channels: channels,
		frame:    make([]float32, channels),
		lowpass:  step > 1.0,
		alpha:    0.5,
		state:    make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r, nil
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	return nil
}

// readFrame pulls one frame from src into r.frame. ok reports whether a full
// frame was read.
func (r *Resampler) readFrame() (ok bool, err error) {
	n, err := r.src.ReadSamples(r.frame)
	if err == io.EOF {
		r.eof = true
		err = nil
	}
	if err != nil {
		return false, fmt.Errorf("resampler: %w", err)
	}
	return n == r.channels, nil
}

func (r *Resampler) filter(frame []float32) {
	if !r.lowpass {
		return
	}
	for c, x := range frame {
		y := r.alpha*x + (1-r.alpha)*r.state[c]
		frame[c] = y
		r.state[c] = y
	}
}

// prime fills window[1..3]; window[0] starts as a copy of the first frame.
// Short sources repeat their last frame.
func (r *Resampler) prime() error {
	r.primed = true

	for i := 1; i < len(r.window); i++ {
		ok := false
		if !r.eof {
			var err error
			if ok, err = r.readFrame(); err != nil {
				return err
			}
		}

		if !ok {
			if i == 1 {
				r.eof = true
				return io.EOF
			}
			copy(r.window[i], r.window[i-1])
			r.valid[i] = true
			continue
		}

		if i == 1 {
			copy(r.state, r.frame)
		}
		r.filter(r.frame)
		copy(r.window[i], r.frame)
		r.valid[i] = true
	}

	copy(r.window[0], r.window[1])
	return nil
}

// shift moves the window one frame forward.
func (r *Resampler) shift() error {
	first := r.window[0]
	copy(r.window[:], r.window[1:])
	copy(r.valid[:], r.valid[1:])
	r.window[3] = first
	r.valid[3] = false

	if r.eof {
		if !r.valid[2] {
			return io.EOF
		}
		return nil
	}

	ok, err := r.readFrame()
	if err != nil {
		return err
	}
	if ok {
		r.filter(r.frame)
		copy(r.window[3], r.frame)
		r.valid[3] = true
	} else if !r.valid[2] {
		return io.EOF
	}
	return nil
}

// ReadSamples produces interleaved samples at the destination rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0

	for written < frames {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.shift(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.valid[1] || !r.valid[2] {
			return written * r.channels, io.EOF
		}

		y0, y3 := r.window[0], r.window[3]
		if !r.valid[0] {
			y0 = r.window[1]
		}
		if !r.valid[3] {
			y3 = r.window[2]
		}

		alpha := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CatmullRom(y0[c], r.window[1][c], r.window[2][c], y3[c], alpha)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}
