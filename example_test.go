// SPDX-License-Identifier: EPL-2.0

package audtrans_test

import (
	"bytes"
	"fmt"

	"github.com/ik5/audtrans"
	"github.com/ik5/audtrans/formats/wav"
)

// Example_toPCM16 decodes a WAV file and downsamples it to 8 kHz.
func Example_toPCM16() {
	samples := make([]int16, 44100)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}

	wavData := new(bytes.Buffer)
	if err := wav.WriteWAV16(wavData, 44100, samples); err != nil {
		fmt.Println(err)
		return
	}

	src, err := wav.Decoder{}.Decode(wavData)
	if err != nil {
		fmt.Println(err)
		return
	}

	pcm, rate, channels, err := audtrans.ToPCM16(src, 8000, true, 4096)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("%d Hz, %d channel(s), ~%d ms\n", rate, channels, (len(pcm)/2*1000/rate+50)/100*100)
	// Output: 8000 Hz, 1 channel(s), ~1000 ms
}

// Example_wavRoundTrip wraps converted PCM back into a WAV container.
func Example_wavRoundTrip() {
	wavData := new(bytes.Buffer)
	if err := wav.WriteWAV16(wavData, 16000, []int16{100, 200, 300, 400, 500}); err != nil {
		fmt.Println(err)
		return
	}

	want := bytes.Clone(wavData.Bytes())
	src, _ := wav.Decoder{}.Decode(wavData)
	pcm, rate, channels, _ := audtrans.ToPCM16(src, 0, false, 0)

	out, err := wav.Encode(pcm, rate, channels, 16)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("pcm %d bytes, wav %d bytes, equal %t\n", len(pcm), len(out), bytes.Equal(out, want))
	// Output: pcm 10 bytes, wav 54 bytes, equal true
}
