// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

// mockMP3Reader hands out PCM bytes in fixed-size pieces.
type mockMP3Reader struct {
	sampleRate int
	data       []byte
	step       int
	err        error
}

func newMockReader(sampleRate int, samples []int16, step int) *mockMP3Reader {
	data := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(s))
	}
	return &mockMP3Reader{sampleRate: sampleRate, data: data, step: step}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if len(m.data) == 0 {
		return 0, io.EOF
	}

	n := min(len(buf), len(m.data))
	if m.step > 0 {
		n = min(n, m.step)
	}
	copy(buf, m.data[:n])
	m.data = m.data[n:]

	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("not an mp3 stream")))
	if err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	src := &source{
		dec:        newMockReader(8000, []int16{0, 16384, 32767, -16384, -32768, 8192, -8192, 0}, 0),
		sampleRate: 8000,
		channels:   2,
	}

	dst := make([]float32, 8)
	n, err := src.ReadSamples(dst)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 8 {
		t.Fatalf("ReadSamples() n = %d, want 8", n)
	}

	expected := []float32{0.0, 0.5, 1.0, -0.5, -1.0, 0.25, -0.25, 0.0}
	for i := range n {
		if math.Abs(float64(dst[i]-expected[i])) > 0.01 {
			t.Errorf("dst[%d] = %v, want ≈%v", i, dst[i], expected[i])
		}
	}

	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() at end = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestSource_ReadSamples_OddByteReads(t *testing.T) {
	t.Parallel()

	samples := []int16{1000, -1000, 2000, -2000, 3000, -3000}
	src := &source{
		dec:        newMockReader(44100, samples, 3),
		sampleRate: 44100,
		channels:   2,
	}

	var got []float32
	dst := make([]float32, 4)
	for {
		n, err := src.ReadSamples(dst)
		got = append(got, dst[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	if len(got) != len(samples) {
		t.Fatalf("read %d samples, want %d", len(got), len(samples))
	}
	for i, s := range samples {
		if math.Abs(float64(got[i])-float64(s)/32768) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, got[i], float64(s)/32768)
		}
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src := &source{
		dec:        &mockMP3Reader{sampleRate: 8000, err: io.ErrUnexpectedEOF},
		sampleRate: 8000,
		channels:   2,
	}

	_, err := src.ReadSamples(make([]float32, 4))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want io.ErrUnexpectedEOF", err)
	}
}
