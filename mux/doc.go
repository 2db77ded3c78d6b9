// SPDX-License-Identifier: EPL-2.0

// Package mux stores encoded access units in fragmented MPEG-4 files.
//
// Tracks are added before Start, which writes the initialization segment.
// Samples written afterwards are grouped into fragments of
// DefaultFragmentDuration. AAC tracks need the AudioSpecificConfig in
// media.Format.CodecConfig; audio/raw tracks are stored as little-endian LPCM.
//
// Stop flushes the last fragment and must only be called on a started
// muxer. Release always closes the output and may be called more than once.
package mux
