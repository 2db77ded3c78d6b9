// SPDX-License-Identifier: EPL-2.0

// Package transcode drives an extractor, an encoder and an MP4 muxer as one
// pipeline.
//
// A Pump runs the cycle: feed one extracted sample into a free encoder
// input slot, then take one encoded unit and write it. The muxer is started
// lazily when the first unit with a payload appears, so the encoder's
// output format, including codec config, is known by then. A run ends when
// the encoder reports end of stream, not when the source runs dry.
//
// Transcode owns the three resources and releases them in reverse order on
// every path.
package transcode
