// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
//
// Samples are interleaved ([L0, R0, L1, R1, ...]) float32 values. ReadSamples
// only returns whole frames, so a destination shorter than one frame yields
// zero samples without an error.
package vorbis
