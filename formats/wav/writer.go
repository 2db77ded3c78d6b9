// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Encode returns a complete WAV container: the 44-byte header followed by
// pcm verbatim. The bytes must already be in the target rate, channel
// layout and bit depth.
func Encode(pcm []byte, sampleRate, channels, bitsPerSample int) ([]byte, error) {
	header, err := EncodeHeader(int64(len(pcm)), sampleRate, channels, bitsPerSample)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, HeaderSize+len(pcm))
	out = append(out, header...)
	out = append(out, pcm...)

	return out, nil
}

// WritePCM writes the header and pcm to w.
func WritePCM(w io.Writer, pcm []byte, sampleRate, channels, bitsPerSample int) error {
	header, err := EncodeHeader(int64(len(pcm)), sampleRate, channels, bitsPerSample)
	if err != nil {
		return err
	}

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing WAV header: %w", err)
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("writing PCM data: %w", err)
	}

	return nil
}

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate. samples must be int16 PCM.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	header, err := EncodeHeader(int64(len(samples))*2, sampleRate, 1, 16)
	if err != nil {
		return err
	}

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing WAV header: %w", err)
	}

	// Write 8K samples at a time to bound the conversion buffer
	const chunkSize = 8192
	if len(samples) == 0 {
		return nil
	}

	buf := make([]byte, min(len(samples), chunkSize)*2)

	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		buf = buf[:len(chunk)*2]

		for j, s := range chunk {
			binary.LittleEndian.PutUint16(buf[j*2:j*2+2], uint16(s))
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("writing PCM data at sample %d: %w", i, err)
		}
	}

	return nil
}
