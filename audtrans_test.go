// SPDX-License-Identifier: EPL-2.0

package audtrans

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/ik5/audtrans/audio"
	"github.com/ik5/audtrans/extract"
	"github.com/ik5/audtrans/formats/wav"
	"github.com/ik5/audtrans/internal/audiotest"
	"github.com/ik5/audtrans/media"
)

func TestToPCM16_Layouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		src          *audiotest.Source
		targetRate   int
		mono         bool
		wantRate     int
		wantChannels int
		wantFrames   int
		tolerance    int
	}{
		{"passthrough", audiotest.NewRamp(8000, 1, 800), 0, false, 8000, 1, 800, 0},
		{"same rate", audiotest.NewRamp(8000, 2, 800), 8000, false, 8000, 2, 800, 0},
		{"mono", audiotest.NewSine(16000, 2, 1600, 440), 0, true, 16000, 1, 1600, 0},
		{"downsample", audiotest.NewSine(44100, 2, 44100, 440), 8000, true, 8000, 1, 8000, 200},
		{"upsample", audiotest.NewSine(8000, 1, 8000, 440), 16000, false, 16000, 1, 16000, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pcm, rate, ch, err := ToPCM16(tt.src, tt.targetRate, tt.mono, 4096)
			if err != nil {
				t.Fatalf("ToPCM16() error = %v", err)
			}
			if rate != tt.wantRate || ch != tt.wantChannels {
				t.Errorf("ToPCM16() layout = %d Hz %d ch, want %d Hz %d ch", rate, ch, tt.wantRate, tt.wantChannels)
			}
			if len(pcm)%(2*ch) != 0 {
				t.Fatalf("ToPCM16() returned %d bytes, not whole frames", len(pcm))
			}

			frames := len(pcm) / (2 * ch)
			if frames < tt.wantFrames-tt.tolerance || frames > tt.wantFrames+tt.tolerance {
				t.Errorf("ToPCM16() frames = %d, want %d (±%d)", frames, tt.wantFrames, tt.tolerance)
			}
		})
	}
}

func TestToPCM16_ExactSamples(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstant(8000, 1, 4, 0.5)
	pcm, _, _, err := ToPCM16(src, 0, false, 2)
	if err != nil {
		t.Fatalf("ToPCM16() error = %v", err)
	}

	want := []byte{0x00, 0x40, 0x00, 0x40, 0x00, 0x40, 0x00, 0x40}
	if !bytes.Equal(pcm, want) {
		t.Errorf("ToPCM16() = % x, want % x", pcm, want)
	}
}

func TestToPCM16_Errors(t *testing.T) {
	t.Parallel()

	if _, _, _, err := ToPCM16(audiotest.NewSilence(8000, 1, 10), -1, false, 0); !errors.Is(err, audio.ErrInvalidRate) {
		t.Errorf("negative rate: error = %v, want ErrInvalidRate", err)
	}

	boom := errors.New("read failed")
	src := audiotest.NewSilence(8000, 1, 100)
	src.Err = boom
	if _, _, _, err := ToPCM16(src, 0, false, 10); !errors.Is(err, boom) {
		t.Errorf("read error = %v, want %v", err, boom)
	}
}

func TestPCMToWAV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pcm := make([]byte, 882)
	for i := range pcm {
		pcm[i] = byte(i)
	}
	in := filepath.Join(dir, "capture.pcm")
	out := filepath.Join(dir, "capture.wav")
	if err := os.WriteFile(in, pcm, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := PCMToWAV(in, out); err != nil {
		t.Fatalf("PCMToWAV() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != len(pcm)+44 {
		t.Fatalf("wav size = %d, want %d", len(data), len(pcm)+44)
	}

	h, err := wav.ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if h.SampleRate != CaptureSampleRate || h.Channels != CaptureChannels || h.BitsPerSample != CaptureBitsPerSample {
		t.Errorf("header = %+v, want 44100 Hz mono 16-bit", h)
	}
	if !bytes.Equal(data[44:], pcm) {
		t.Error("payload was not copied verbatim")
	}
}

func TestPCMToWAV_MissingCapture(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := PCMToWAV(filepath.Join(dir, "none.pcm"), filepath.Join(dir, "out.wav")); err == nil {
		t.Fatal("PCMToWAV() error = nil, want error")
	}
}

func TestCompressAudio_MissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := CompressAudio(context.Background(), filepath.Join(dir, "none.wav"), filepath.Join(dir, "out.m4a"), 0)
	if !errors.Is(err, extract.ErrSourceOpen) {
		t.Fatalf("CompressAudio() error = %v, want ErrSourceOpen", err)
	}
}

func TestCompressAudio_WAV(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}
	t.Parallel()

	dir := t.TempDir()
	pcm := make([]byte, 44100*2)
	for i := range 44100 {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16((i%200-100)*100)))
	}
	data, err := wav.Encode(pcm, 44100, 1, 16)
	if err != nil {
		t.Fatal(err)
	}
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.m4a")
	if err := os.WriteFile(in, data, 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := CompressAudio(context.Background(), in, out, 128000)
	if err != nil {
		t.Fatalf("CompressAudio() error = %v", err)
	}
	if res.Format.MIME != media.MIMEAAC || res.Format.SampleRate != 44100 || res.Format.Channels != 1 {
		t.Errorf("output format = %s", res.Format)
	}
	if res.Samples == 0 || res.OutputBytes == 0 {
		t.Errorf("result = %+v, want samples and bytes", res)
	}
	if res.OutputBytes >= int64(len(data)) {
		t.Errorf("output %d bytes is not smaller than input %d", res.OutputBytes, len(data))
	}
}
