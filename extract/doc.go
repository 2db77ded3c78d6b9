// SPDX-License-Identifier: EPL-2.0

// Package extract reads elementary audio streams sample by sample.
//
// An Extractor is a cursor over one track of a Container. The current sample
// is read with ReadSample and SampleTime and dropped with Advance; io.EOF from
// ReadSample marks the end of the track.
//
//	ex, err := extract.Open("memo.mp3", extract.WithMono())
//	if err != nil {
//	    return err
//	}
//	defer ex.Release()
//
//	format, err := ex.SelectAudioTrack()
//	buf := make([]byte, format.MaxInputSize)
//	for {
//	    n, err := ex.ReadSample(buf)
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	    ex.Advance()
//	}
//
// Open decodes files through the formats packages and exposes them as one
// audio/raw track of 16-bit little-endian PCM, 1024 frames per sample unless
// WithSampleFrames says otherwise.
package extract
