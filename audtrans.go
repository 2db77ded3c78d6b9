// SPDX-License-Identifier: EPL-2.0

package audtrans

import (
	"context"
	"fmt"

	"github.com/ik5/audtrans/audio"
	"github.com/ik5/audtrans/codec"
	"github.com/ik5/audtrans/formats/wav"
	"github.com/ik5/audtrans/media"
	"github.com/ik5/audtrans/transcode"
)

// Capture layout written by the recorder and assumed by PCMToWAV.
const (
	CaptureSampleRate    = 44100
	CaptureChannels      = 1
	CaptureBitsPerSample = 16
)

// CompressAudio encodes the first audio track of in as AAC-LC into the MP4
// file out. Sample rate and channel count are taken from the input; a
// bitRate <= 0 selects codec.DefaultBitRate.
func CompressAudio(ctx context.Context, in, out string, bitRate int) (transcode.Result, error) {
	if bitRate <= 0 {
		bitRate = codec.DefaultBitRate
	}
	return transcode.Transcode(ctx, in, out, transcode.Config{
		MIME:    media.MIMEAAC,
		BitRate: bitRate,
		Profile: media.ProfileAACLC,
	})
}

// PCMToWAV wraps a finished 44.1 kHz mono 16-bit capture into a WAV file.
func PCMToWAV(pcmPath, wavPath string) error {
	return wav.ConvertPCMFile(pcmPath, wavPath, CaptureSampleRate, CaptureChannels, CaptureBitsPerSample)
}

// ToPCM16 drains src into interleaved 16-bit little-endian PCM. A
// targetRate > 0 resamples, and mono downmixes multi-channel sources. The
// returned bytes can be handed to wav.Encode with the reported rate and
// channel count.
func ToPCM16(src audio.Source, targetRate int, mono bool, bufferSize int) (pcm []byte, sampleRate, channels int, err error) {
	if targetRate < 0 {
		return nil, 0, 0, fmt.Errorf("%w: %d", audio.ErrInvalidRate, targetRate)
	}

	if targetRate > 0 && targetRate != src.SampleRate() {
		rs, err := audio.NewResampler(src, targetRate)
		if err != nil {
			return nil, 0, 0, err
		}
		src = rs
	}
	if mono && src.Channels() > 1 {
		src = audio.NewMonoMixer(src)
	}

	pcm, err = audio.ReadAllPCM16(src, bufferSize)
	if err != nil {
		return nil, 0, 0, err
	}
	return pcm, src.SampleRate(), src.Channels(), nil
}
