// SPDX-License-Identifier: EPL-2.0

package codec

import "errors"

var (
	// ErrUnsupportedCodec is returned when no encoder can be instantiated for
	// the requested type, profile or input layout.
	ErrUnsupportedCodec = errors.New("unsupported codec")

	ErrInvalidState   = errors.New("invalid encoder state")
	ErrSlotNotOwned   = errors.New("slot not owned by caller")
	ErrSlotOverflow   = errors.New("size exceeds slot capacity")
	ErrFormatNotReady = errors.New("output format not announced yet")

	// ErrTryAgain means no slot became available within the timeout. It is
	// not a failure.
	ErrTryAgain = errors.New("try again")

	ErrBadADTS = errors.New("malformed ADTS stream")

	errStopped = errors.New("engine stopped")
)
