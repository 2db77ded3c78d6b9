// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"math"
)

// HeaderSize is the size of the canonical PCM WAV header.
const HeaderSize = 44

// maxDataSize keeps ChunkSize (36 + data) inside a uint32.
const maxDataSize = math.MaxUint32 - 36

// Header is the decoded canonical header of a PCM WAV file.
type Header struct {
	AudioFormat   int
	Channels      int
	SampleRate    int
	ByteRate      int
	BlockAlign    int
	BitsPerSample int
	DataSize      int64
}

func validateParams(sampleRate, channels, bitsPerSample int) error {
	if sampleRate <= 0 || sampleRate > math.MaxUint32 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidParams, sampleRate)
	}
	if channels <= 0 || channels > math.MaxUint16 {
		return fmt.Errorf("%w: channels %d", ErrInvalidParams, channels)
	}
	if bitsPerSample <= 0 || bitsPerSample%8 != 0 || bitsPerSample > 32 {
		return fmt.Errorf("%w: bits per sample %d", ErrInvalidParams, bitsPerSample)
	}

	// BlockAlign is a uint16 field and ByteRate a uint32 one.
	blockAlign := channels * bitsPerSample / 8
	if blockAlign > math.MaxUint16 {
		return fmt.Errorf("%w: block align %d (%d channels of %d bits)", ErrInvalidParams, blockAlign, channels, bitsPerSample)
	}
	if uint64(sampleRate)*uint64(blockAlign) > math.MaxUint32 {
		return fmt.Errorf("%w: byte rate %d*%d overflows", ErrInvalidParams, sampleRate, blockAlign)
	}
	return nil
}

// EncodeHeader builds the 44-byte header for dataSize bytes of raw PCM.
// All multi-byte fields are little-endian.
func EncodeHeader(dataSize int64, sampleRate, channels, bitsPerSample int) ([]byte, error) {
	if err := validateParams(sampleRate, channels, bitsPerSample); err != nil {
		return nil, err
	}
	if dataSize < 0 || dataSize > maxDataSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrDataTooLarge, dataSize)
	}

	blockAlign := channels * bitsPerSample / 8
	byteRate := uint32(sampleRate) * uint32(blockAlign)

	header := make([]byte, HeaderSize)

	// RIFF header (12 bytes)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+uint32(dataSize))
	copy(header[8:12], "WAVE")

	// fmt chunk (24 bytes)
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))

	// data chunk header (8 bytes)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	return header, nil
}

// ParseHeader decodes a canonical 44-byte header, the layout EncodeHeader
// produces. Files with extra chunks before "data" should go through Decoder.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header is %d bytes", ErrUnsupportedWavLayout, len(b))
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return Header{}, ErrNotWavFile
	}
	if string(b[12:16]) != "fmt " || binary.LittleEndian.Uint32(b[16:20]) != 16 {
		return Header{}, ErrUnsupportedWavLayout
	}
	if string(b[36:40]) != "data" {
		return Header{}, ErrUnsupportedWavChunks
	}

	return Header{
		AudioFormat:   int(binary.LittleEndian.Uint16(b[20:22])),
		Channels:      int(binary.LittleEndian.Uint16(b[22:24])),
		SampleRate:    int(binary.LittleEndian.Uint32(b[24:28])),
		ByteRate:      int(binary.LittleEndian.Uint32(b[28:32])),
		BlockAlign:    int(binary.LittleEndian.Uint16(b[32:34])),
		BitsPerSample: int(binary.LittleEndian.Uint16(b[34:36])),
		DataSize:      int64(binary.LittleEndian.Uint32(b[40:44])),
	}, nil
}
