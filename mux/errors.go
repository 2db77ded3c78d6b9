// SPDX-License-Identifier: EPL-2.0

package mux

import "errors"

var (
	ErrNotStarted         = errors.New("muxer not started")
	ErrAlreadyStarted     = errors.New("muxer already started")
	ErrNoTracks           = errors.New("muxer has no tracks")
	ErrUnknownTrack       = errors.New("unknown track handle")
	ErrUnsupportedTrack   = errors.New("unsupported track format")
	ErrMissingCodecConfig = errors.New("missing codec config")
	ErrMuxerWrite         = errors.New("muxer write failed")
	ErrReleased           = errors.New("muxer released")
)
