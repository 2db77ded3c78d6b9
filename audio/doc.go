// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming primitives every decoder plugs into.
//
// A Source yields interleaved float32 samples in [-1.0, 1.0] and signals the
// end of the stream with io.EOF. Sources chain:
//
//	src, _ := wav.Decoder{}.Decode(f)
//	r, err := audio.NewResampler(src, 16000)
//	if err != nil {
//	    return err
//	}
//	mono := audio.NewMonoMixer(r)
//	pcm, err := audio.ReadAllPCM16(mono, 4096)
//
// # Resampling
//
// Resampler uses Catmull-Rom cubic interpolation across a four-frame window.
// When downsampling a one-pole low-pass runs on the input to reduce
// aliasing. It is not a replacement for a proper FIR filter.
//
// # Registry
//
// Registry maps file extensions to decoders so callers can open a path
// without knowing its format:
//
//	reg := audio.NewRegistry()
//	reg.RegisterAll(aiff.Extensions, aiff.Decoder{})
//	dec, ok := reg.ForPath("take.AIF")
package audio
