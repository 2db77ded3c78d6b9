// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 Layer III audio using github.com/hajimehoshi/go-mp3.
//
// The decoder always reports two channels. go-mp3 duplicates mono streams, so
// callers that want a single channel wrap the source in audio.NewMonoMixer:
//
//	src, _ := mp3.Decoder{}.Decode(f)
//	mono := audio.NewMonoMixer(src)
//
// Decoding only; there is no MP3 encoder here.
package mp3
