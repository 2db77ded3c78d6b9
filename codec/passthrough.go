// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"fmt"

	"github.com/ik5/audtrans/media"
)

// passthrough emits 16-bit PCM unchanged, one unit per input buffer.
type passthrough struct{}

func newPassthrough(BackendOptions) Backend { return passthrough{} }

func (passthrough) Open(in media.Format, _ Config) (media.Format, error) {
	if in.MIME != media.MIMERaw || in.BitsPerSample != 16 {
		return media.Format{}, fmt.Errorf("%w: passthrough needs 16-bit %s, got %s", ErrUnsupportedCodec, media.MIMERaw, in)
	}

	out := in.Clone()
	out.Profile = media.ProfileNone
	out.BitRate = in.SampleRate * in.Channels * 16
	out.CodecConfig = nil
	return out, nil
}

func (passthrough) Encode(pcm []byte, ptsUs int64, emit EmitFunc) error {
	return emit(Unit{Data: pcm, PresentationTimeUs: ptsUs, Flags: media.FlagKeyFrame})
}

func (passthrough) Flush(EmitFunc) error { return nil }
func (passthrough) Close() error         { return nil }
