// SPDX-License-Identifier: EPL-2.0

package extract

import (
	"encoding/binary"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audtrans/formats/wav"
	"github.com/ik5/audtrans/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWAV writes frames of interleaved 16-bit samples where sample k has value k.
func writeWAV(t *testing.T, rate, channels, frames int) string {
	t.Helper()

	pcm := make([]byte, frames*channels*2)
	for i := range frames * channels {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(i%30000))
	}
	data, err := wav.Encode(pcm, rate, channels, 16)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpen_WAV(t *testing.T) {
	t.Parallel()

	path := writeWAV(t, 8000, 2, 2500)
	ex, err := Open(path, WithSampleFrames(1000))
	require.NoError(t, err)
	defer ex.Release()

	require.Equal(t, 1, ex.TrackCount())
	f, err := ex.SelectAudioTrack()
	require.NoError(t, err)
	assert.Equal(t, media.MIMERaw, f.MIME)
	assert.Equal(t, 8000, f.SampleRate)
	assert.Equal(t, 2, f.Channels)
	assert.Equal(t, 4000, f.MaxInputSize)

	buf := make([]byte, f.MaxInputSize)
	var sizes []int
	var times []int64
	var first []byte
	for {
		n, err := ex.ReadSample(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if first == nil {
			first = append([]byte(nil), buf[:8]...)
		}
		sizes = append(sizes, n)
		times = append(times, ex.SampleTime())
		ex.Advance()
	}

	assert.Equal(t, []int{4000, 4000, 2000}, sizes)
	assert.Equal(t, []int64{0, 125000, 250000}, times)
	// samples 0..3 survive the float round trip
	assert.Equal(t, []byte{0, 0, 1, 0, 2, 0, 3, 0}, first)
}

func TestOpen_Reshape(t *testing.T) {
	t.Parallel()

	path := writeWAV(t, 16000, 2, 16000)
	ex, err := Open(path, WithTargetRate(8000), WithMono())
	require.NoError(t, err)
	defer ex.Release()

	f, err := ex.SelectAudioTrack()
	require.NoError(t, err)
	assert.Equal(t, 8000, f.SampleRate)
	assert.Equal(t, 1, f.Channels)
	assert.Equal(t, DefaultSampleFrames*2, f.MaxInputSize)
}

func TestOpen_RawPCM(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "capture.pcm")
	require.NoError(t, os.WriteFile(path, make([]byte, 4410*2), 0o644))

	ex, err := Open(path)
	require.NoError(t, err)
	f, err := ex.SelectAudioTrack()
	require.NoError(t, err)
	assert.Equal(t, 44100, f.SampleRate)
	assert.Equal(t, 1, f.Channels)
	require.NoError(t, ex.Release())

	ex, err = Open(path, WithRawFormat(22050, 2))
	require.NoError(t, err)
	f, _ = ex.TrackFormat(0)
	assert.Equal(t, 22050, f.SampleRate)
	assert.Equal(t, 2, f.Channels)
	require.NoError(t, ex.Release())
}

func TestOpen_SniffsUnknownExtension(t *testing.T) {
	t.Parallel()

	src := writeWAV(t, 8000, 1, 300)
	renamed := filepath.Join(filepath.Dir(src), "capture.bin")
	require.NoError(t, os.Rename(src, renamed))

	ex, err := Open(renamed)
	require.NoError(t, err)
	defer ex.Release()

	f, err := ex.TrackFormat(0)
	require.NoError(t, err)
	assert.Equal(t, 8000, f.SampleRate)
	assert.Equal(t, 1, f.Channels)
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.wav"))
	assert.ErrorIs(t, err, ErrSourceOpen)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	unknown := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(unknown, []byte("hello"), 0o644))
	_, err = Open(unknown)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	broken := filepath.Join(dir, "broken.wav")
	require.NoError(t, os.WriteFile(broken, []byte("definitely not RIFF"), 0o644))
	_, err = Open(broken)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
