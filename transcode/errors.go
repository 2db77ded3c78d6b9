// SPDX-License-Identifier: EPL-2.0

package transcode

import "errors"

var (
	ErrCancelled  = errors.New("transcode cancelled")
	ErrCycleLimit = errors.New("pump cycle limit reached")

	// ErrResourceRelease is returned only when a run succeeded but tearing
	// it down did not. It never replaces a run error.
	ErrResourceRelease = errors.New("releasing resources")

	// ErrNoOutput means the encoder finished without producing a payload.
	ErrNoOutput = errors.New("encoder produced no samples")
)
