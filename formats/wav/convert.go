// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ConvertPCMFile wraps a headerless capture file into a WAV container at
// wavPath. The capture must be closed by its writer before this is called.
// On failure the partial output is removed.
func ConvertPCMFile(pcmPath, wavPath string, sampleRate, channels, bitsPerSample int) (err error) {
	in, err := os.Open(pcmPath)
	if err != nil {
		return fmt.Errorf("opening PCM capture: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat PCM capture: %w", err)
	}

	header, err := EncodeHeader(info.Size(), sampleRate, channels, bitsPerSample)
	if err != nil {
		return err
	}

	out, err := os.Create(wavPath)
	if err != nil {
		return fmt.Errorf("creating WAV file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing WAV file: %w", cerr)
		}
		if err != nil {
			err = errors.Join(err, os.Remove(wavPath))
		}
	}()

	if _, err = out.Write(header); err != nil {
		return fmt.Errorf("writing WAV header: %w", err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		return fmt.Errorf("copying PCM data: %w", err)
	}
	if n != info.Size() {
		return fmt.Errorf("%w: capture changed size while converting (%d of %d bytes)",
			ErrUnsupportedWavLayout, n, info.Size())
	}

	return nil
}
