// SPDX-License-Identifier: EPL-2.0

// Package wav reads 16-bit PCM WAV files and writes canonical WAV containers.
//
// Decoder is backed by github.com/go-audio/wav and yields float32 samples in
// [-1, 1] through audio.Source.
//
// Encode, WritePCM and ConvertPCMFile wrap raw PCM bytes, such as a
// microphone capture, in the 44-byte RIFF/fmt/data header. The payload is
// copied verbatim, so it must already match the given layout:
//
//	out, err := wav.Encode(pcm, 44100, 1, 16)
//	// len(out) == len(pcm) + wav.HeaderSize
//
// ParseHeader reads that header back. Bad parameters fail with
// ErrInvalidParams and payloads beyond the 32-bit size fields with
// ErrDataTooLarge.
package wav
