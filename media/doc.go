// SPDX-License-Identifier: EPL-2.0

// Package media holds the data model shared by the transcoding pipeline.
//
// A Format describes one elementary stream (its MIME type, sample rate,
// channel layout and codec parameters). A BufferInfo describes one access
// unit as it moves between the encoder engine and the multiplexer: where the
// payload lives inside a slot buffer, when it should be presented and which
// flags it carries.
//
//	in := media.Format{
//	    MIME:          media.MIMERaw,
//	    SampleRate:    44100,
//	    Channels:      1,
//	    BitsPerSample: 16,
//	}
//
//	info := media.BufferInfo{Size: 2048, PresentationTimeUs: 23219}
//	if info.Flags.Has(media.FlagEndOfStream) {
//	    // last unit
//	}
package media
