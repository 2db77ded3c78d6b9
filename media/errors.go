// SPDX-License-Identifier: EPL-2.0

package media

import "errors"

var (
	ErrNotAudio          = errors.New("not an audio format")
	ErrInvalidFormat     = errors.New("invalid audio format")
	ErrPayloadOutOfRange = errors.New("payload out of buffer range")
)
