// SPDX-License-Identifier: EPL-2.0

package extract

import "errors"

var (
	// ErrSourceOpen wraps failures to open the input, fs.ErrNotExist included.
	ErrSourceOpen = errors.New("cannot open source")

	ErrUnsupportedFormat = errors.New("unsupported source format")
	ErrNoAudioTrack      = errors.New("no audio track")
	ErrBufferTooSmall    = errors.New("buffer too small for sample")
	ErrNoTrackSelected   = errors.New("no track selected")
	ErrTrackIndex        = errors.New("track index out of range")
	ErrReleased          = errors.New("extractor released")
)
