// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audtrans/internal/audiotest"
)

func drain(t *testing.T, src Source, bufSize int) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, bufSize)
	for range 1_000_000 {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	t.Fatal("source never reached io.EOF")
	return nil
}

func TestNewResampler_InvalidRate(t *testing.T) {
	t.Parallel()

	if _, err := NewResampler(audiotest.NewSilence(8000, 1, 10), 0); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("NewResampler(0 Hz) error = %v, want ErrInvalidRate", err)
	}
	if _, err := NewResampler(audiotest.NewSilence(0, 1, 10), 8000); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("NewResampler(src 0 Hz) error = %v, want ErrInvalidRate", err)
	}
}

func TestResampler_Lengths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to int
		channels int
		frames   int
	}{
		{"same rate", 16000, 16000, 1, 16000},
		{"downsample 48k to 8k", 48000, 8000, 1, 48000},
		{"upsample 8k to 44.1k", 8000, 44100, 2, 8000},
		{"downsample stereo 44.1k to 16k", 44100, 16000, 2, 44100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := NewResampler(audiotest.NewSine(tt.from, tt.channels, tt.frames, 440), tt.to)
			if err != nil {
				t.Fatal(err)
			}
			if r.SampleRate() != tt.to || r.Channels() != tt.channels {
				t.Fatalf("metadata = %d ch @ %d Hz", r.Channels(), r.SampleRate())
			}

			out := drain(t, r, 512*tt.channels)
			if len(out)%tt.channels != 0 {
				t.Fatalf("output %d samples is not a whole number of frames", len(out))
			}

			want := float64(tt.frames) * float64(tt.to) / float64(tt.from)
			got := float64(len(out) / tt.channels)
			if math.Abs(got-want) > want*0.01+4 {
				t.Errorf("output frames = %v, want ≈%v", got, want)
			}
			for i, v := range out {
				if v > 1.1 || v < -1.1 {
					t.Fatalf("sample %d = %v out of range", i, v)
				}
			}
		})
	}
}

func TestResampler_SameRateKeepsValues(t *testing.T) {
	t.Parallel()

	r, err := NewResampler(audiotest.NewRamp(8000, 1, 64), 8000)
	if err != nil {
		t.Fatal(err)
	}

	out := drain(t, r, 16)
	for i := range min(len(out), 60) {
		if want := float32(i) / 64; math.Abs(float64(out[i]-want)) > 1e-5 {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want)
		}
	}
}

func TestResampler_Errors(t *testing.T) {
	t.Parallel()

	r, err := NewResampler(audiotest.NewSilence(8000, 2, 10), 4000)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("odd dst error = %v, want ErrInvalidDstSize", err)
	}

	empty, _ := NewResampler(audiotest.NewSilence(8000, 1, 0), 16000)
	if n, err := empty.ReadSamples(make([]float32, 8)); n != 0 || err != io.EOF {
		t.Errorf("empty source = (%d, %v), want (0, io.EOF)", n, err)
	}

	src := audiotest.NewSilence(8000, 1, 1000)
	src.Err = errors.New("disk gone")
	src.FailAfter = 10
	failing, _ := NewResampler(src, 8000)
	buf := make([]float32, 64)
	for {
		_, err := failing.ReadSamples(buf)
		if err == nil {
			continue
		}
		if !errors.Is(err, src.Err) {
			t.Errorf("error = %v, want wrapped source error", err)
		}
		break
	}
}
