// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ik5/audtrans"
	"github.com/ik5/audtrans/extract"
	"github.com/ik5/audtrans/formats/pcm"
	"github.com/ik5/audtrans/formats/wav"
)

type pcm2wavOptions struct {
	Rate     int
	Channels int
	Bits     int
}

func newPCM2WAVCommand(a *app) *cobra.Command {
	opts := &pcm2wavOptions{}

	cmd := &cobra.Command{
		Use:   "pcm2wav capture.pcm [output.wav]",
		Short: "Wrap a raw PCM capture into a WAV file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := a.cfg.WAV
			flags := cmd.Flags()
			if flags.Changed("rate") {
				w.SampleRate = opts.Rate
			}
			if flags.Changed("channels") {
				w.Channels = opts.Channels
			}
			if flags.Changed("bits") {
				w.BitsPerSample = opts.Bits
			}
			if err := w.Validate(); err != nil {
				return err
			}

			out := outputPath(args[0], argAt(args, 1), "", ".wav")
			if err := wav.ConvertPCMFile(args[0], out, w.SampleRate, w.Channels, w.BitsPerSample); err != nil {
				return err
			}
			a.logger.Info("capture converted", "input", args[0], "output", out,
				"sample_rate", w.SampleRate, "channels", w.Channels, "bits", w.BitsPerSample)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Rate, "rate", 0, "capture sample rate")
	flags.IntVar(&opts.Channels, "channels", 0, "capture channel count")
	flags.IntVar(&opts.Bits, "bits", 0, "capture bits per sample")
	return cmd
}

type towavOptions struct {
	Rate int
	Mono bool
}

func newToWAVCommand(a *app) *cobra.Command {
	opts := &towavOptions{}

	cmd := &cobra.Command{
		Use:   "towav input [output.wav]",
		Short: "Decode any supported input into 16-bit PCM WAV",
		Example: `  audtrans towav song.mp3
  audtrans towav --rate 8000 --mono call.ogg call.wav`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputPath(args[0], argAt(args, 1), "", ".wav")
			if err := toWAV(a, args[0], out, opts); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Rate, "rate", 0, "resample to this rate")
	flags.BoolVar(&opts.Mono, "mono", false, "downmix to mono")
	return cmd
}

func toWAV(a *app, in, out string, opts *towavOptions) error {
	reg := extract.DefaultRegistry(pcm.Decoder{SampleRate: a.cfg.WAV.SampleRate, Channels: a.cfg.WAV.Channels})
	dec, ok := reg.ForPath(in)
	if !ok {
		return fmt.Errorf("%w: %s", extract.ErrUnsupportedFormat, in)
	}

	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("%w: %w", extract.ErrSourceOpen, err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return fmt.Errorf("%w: %w", extract.ErrUnsupportedFormat, err)
	}
	defer src.Close()

	data, rate, channels, err := audtrans.ToPCM16(src, opts.Rate, opts.Mono, 0)
	if err != nil {
		return err
	}
	encoded, err := wav.Encode(data, rate, channels, 16)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, encoded, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	a.logger.Info("decoded to wav", "input", in, "output", out,
		"sample_rate", rate, "channels", channels, "bytes", len(encoded))
	return nil
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
