// SPDX-License-Identifier: EPL-2.0

// Package codec runs audio encoders behind an index-based buffer exchange.
//
// An Engine owns two slot tables. The caller acquires a free input slot,
// fills it through InputBuffer and submits it; later it acquires a filled
// output slot, reads it through OutputBuffer and releases it. Slot indexes
// are the only handles that cross the boundary.
//
//	enc, err := codec.NewEncoderByType(media.MIMEAAC)
//	if err != nil {
//	    return err
//	}
//	defer enc.Release()
//
//	if err := enc.Configure(pcmFormat, codec.Config{BitRate: 64000}); err != nil {
//	    return err // wraps ErrUnsupportedCodec
//	}
//	enc.Start()
//
// Acquire calls take a timeout and return ErrTryAgain when nothing became
// available; callers retry on the next cycle. Submitting a zero-size input
// flagged media.FlagEndOfStream starts draining. The engine answers with a
// final zero-size output carrying the same flag.
//
// The AAC encoder runs ffmpeg as a subprocess and stores raw AAC-LC access
// units, preceded by one media.FlagCodecConfig unit holding the
// AudioSpecificConfig. The audio/raw encoder passes PCM through.
package codec
