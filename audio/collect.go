// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audtrans/utils"
)

// ReadAllPCM16 drains src and returns its samples as interleaved 16-bit
// little-endian PCM. bufferSize is the number of float32 values read per call;
// values below one frame fall back to src.BufSize().
func ReadAllPCM16(src Source, bufferSize int) ([]byte, error) {
	channels := max(src.Channels(), 1)
	if bufferSize < channels {
		bufferSize = max(src.BufSize(), channels)
	}
	bufferSize -= bufferSize % channels

	buf := make([]float32, bufferSize)
	out := make([]byte, 0, 2*bufferSize)

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			start := len(out)
			out = append(out, make([]byte, 2*n)...)
			utils.PutPCM16LE(out[start:], buf[:n])
		}

		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}
	}
}
