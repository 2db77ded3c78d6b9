// SPDX-License-Identifier: EPL-2.0

package media

import (
	"fmt"
	"strings"
)

const (
	// MIMEAudioPrefix is shared by every audio track MIME type.
	MIMEAudioPrefix = "audio/"

	// MIMERaw is interleaved little-endian PCM.
	MIMERaw = "audio/raw"

	// MIMEAAC is AAC audio, stored in MPEG-4 as raw access units.
	MIMEAAC = "audio/mp4a-latm"
)

// SamplesPerAACFrame is the number of PCM frames in one AAC-LC access unit.
const SamplesPerAACFrame = 1024

// Profile is an MPEG-4 audio object type.
type Profile int

const (
	ProfileNone  Profile = 0
	ProfileAACLC Profile = 2
)

func (p Profile) String() string {
	switch p {
	case ProfileNone:
		return "none"
	case ProfileAACLC:
		return "aac-lc"
	}
	return fmt.Sprintf("profile(%d)", int(p))
}

// Format is a track descriptor. It is treated as immutable once an encoder
// has been configured with it.
type Format struct {
	MIME          string
	SampleRate    int
	Channels      int
	BitRate       int
	Profile       Profile
	BitsPerSample int // raw PCM only

	// MaxInputSize is the largest sample, in bytes, the producer emits.
	MaxInputSize int

	// CodecConfig carries codec specific data, the AudioSpecificConfig for AAC.
	CodecConfig []byte
}

// IsAudio reports whether the MIME type names an audio stream.
func (f Format) IsAudio() bool {
	return strings.HasPrefix(f.MIME, MIMEAudioPrefix)
}

// FrameSize returns the size in bytes of one PCM frame (all channels), or 0
// when the format is not raw PCM.
func (f Format) FrameSize() int {
	if f.MIME != MIMERaw {
		return 0
	}
	return f.Channels * f.BitsPerSample / 8
}

// Validate checks the fields every audio consumer depends on.
func (f Format) Validate() error {
	if !f.IsAudio() {
		return fmt.Errorf("%w: mime %q", ErrNotAudio, f.MIME)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("%w: channels %d", ErrInvalidFormat, f.Channels)
	}
	if f.MIME == MIMERaw && (f.BitsPerSample <= 0 || f.BitsPerSample%8 != 0) {
		return fmt.Errorf("%w: bits per sample %d", ErrInvalidFormat, f.BitsPerSample)
	}
	return nil
}

// Clone returns a copy that does not share CodecConfig.
func (f Format) Clone() Format {
	if f.CodecConfig != nil {
		f.CodecConfig = append([]byte(nil), f.CodecConfig...)
	}
	return f
}

func (f Format) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %dHz %dch", f.MIME, f.SampleRate, f.Channels)
	if f.BitsPerSample > 0 {
		fmt.Fprintf(&b, " %dbit", f.BitsPerSample)
	}
	if f.BitRate > 0 {
		fmt.Fprintf(&b, " %dbps", f.BitRate)
	}
	if f.Profile != ProfileNone {
		fmt.Fprintf(&b, " %s", f.Profile)
	}
	return b.String()
}
