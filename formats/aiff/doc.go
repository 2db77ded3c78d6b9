// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// Uncompressed PCM at 8, 16, 24 or 32 bits is supported, any channel count and
// sample rate. Samples are delivered as float32 in [-1.0, 1.0]; AIFF-C and
// other depths fail with ErrUnsupportedBitDepth or ErrNotAiffFile.
//
//	f, _ := os.Open("take.aif")
//	src, err := aiff.Decoder{}.Decode(f)
//
// Non-seekable readers are buffered in memory because go-audio needs to seek
// between chunks.
package aiff
