// SPDX-License-Identifier: EPL-2.0

// Package audtrans compresses recorded audio into AAC MP4 files and wraps raw
// PCM captures into WAV.
//
// # Compressing
//
// CompressAudio extracts the first audio track of a file, encodes it as
// AAC-LC and writes a fragmented MP4:
//
//	res, err := audtrans.CompressAudio(ctx, "take.wav", "take.m4a", 128000)
//
// The input is decoded by the formats/* packages (WAV, MP3, Ogg Vorbis, AIFF
// and headerless PCM). Encoding uses an ffmpeg binary on PATH. For finer
// control use the transcode package directly.
//
// # Captures
//
// PCMToWAV turns a closed 44.1 kHz mono 16-bit capture into a WAV file with
// a canonical 44-byte header. ToPCM16 goes the other way for any decoded
// audio.Source, optionally resampling and downmixing it first:
//
//	src, _ := wav.Decoder{}.Decode(f)
//	pcm, rate, ch, err := audtrans.ToPCM16(src, 8000, true, 4096)
//	data, err := wav.Encode(pcm, rate, ch, 16)
//
// # Packages
//
//   - audio: Source and Decoder interfaces, resampling and mono mixing
//   - extract: elementary stream cursor over decoded files
//   - codec: slot based encoder engine with AAC and pass-through backends
//   - mux: fragmented MP4 writer
//   - transcode: the pump tying the three together
//   - formats/wav: WAV header codec and writer
package audtrans
