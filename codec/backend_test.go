// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"testing"

	"github.com/ik5/audtrans/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncoderByType(t *testing.T) {
	t.Parallel()

	_, err := NewEncoderByType("audio/opus")
	assert.ErrorIs(t, err, ErrUnsupportedCodec)

	for _, mime := range []string{media.MIMEAAC, media.MIMERaw} {
		e, err := NewEncoderByType(mime)
		require.NoError(t, err, mime)
		assert.Equal(t, Unconfigured, e.State())
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	called := false
	Register("audio/x-register-test", func(o BackendOptions) Backend {
		called = true
		assert.Equal(t, "/opt/ffmpeg", o.FFmpegPath)
		return &fakeBackend{}
	})

	_, err := NewEncoderByType("audio/x-register-test", WithFFmpegPath("/opt/ffmpeg"))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Contains(t, Types(), "audio/x-register-test")
}

func TestPassthrough(t *testing.T) {
	t.Parallel()

	e, err := NewEncoderByType(media.MIMERaw)
	require.NoError(t, err)
	require.NoError(t, e.Configure(pcmMono, Config{}))
	require.NoError(t, e.Start())
	defer e.Release()

	outs := pump(t, e, [][]byte{{1, 0, 2, 0}, {3, 0}})
	require.Len(t, outs, 3)
	assert.Equal(t, []byte{1, 0, 2, 0}, outs[0].data)
	assert.True(t, outs[0].info.Flags.Has(media.FlagKeyFrame))
	assert.Equal(t, int64(1000), outs[1].info.PresentationTimeUs)

	f, err := e.OutputFormat()
	require.NoError(t, err)
	assert.Equal(t, media.MIMERaw, f.MIME)
	assert.Equal(t, 8000*16, f.BitRate)
}

func TestPassthrough_RejectsNon16Bit(t *testing.T) {
	t.Parallel()

	in := pcmMono
	in.BitsPerSample = 24
	_, err := passthrough{}.Open(in, Config{})
	assert.ErrorIs(t, err, ErrUnsupportedCodec)
}
