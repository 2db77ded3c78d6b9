// SPDX-License-Identifier: EPL-2.0

package utils

import "encoding/binary"

func Float32ToInt16(x float32) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Use 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// Int16ToFloat32 maps a 16-bit sample into [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// Float32ToPCM16 is the inverse of Int16ToFloat32: values produced from
// 16-bit samples map back to the same sample. Out-of-range input is clamped.
func Float32ToPCM16(x float32) int16 {
	v := x * 32768.0
	if v >= 32767 {
		return 32767
	}
	if v <= -32768 {
		return -32768
	}
	if v < 0 {
		return int16(v - 0.5)
	}
	return int16(v + 0.5)
}

// PutPCM16LE converts src into little-endian 16-bit PCM stored in dst and
// returns the number of bytes written. dst must hold 2*len(src) bytes.
func PutPCM16LE(dst []byte, src []float32) int {
	for i, x := range src {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(Float32ToPCM16(x)))
	}
	return 2 * len(src)
}
