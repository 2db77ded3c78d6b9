// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audtrans/transcode"
	"github.com/ik5/audtrans/utils"
)

var (
	errOutputWithManyInputs = errors.New("--output needs exactly one input")
	errDuplicateOutput      = errors.New("inputs map to the same output")
)

type compressOptions struct {
	Output  string
	OutDir  string
	BitRate int
	Codec   string
	Rate    int
	Mono    bool
	Jobs    int
}

func newCompressCommand(a *app) *cobra.Command {
	opts := &compressOptions{}

	cmd := &cobra.Command{
		Use:   "compress [input...]",
		Short: "Encode the audio track of each input into an MP4 file",
		Example: `  audtrans compress take.wav
  audtrans compress --bitrate 128000 -o take.m4a take.wav
  audtrans compress --jobs 4 --out-dir compressed/ *.wav`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompress(cmd, a, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Output, "output", "o", "", "output file (single input only)")
	flags.StringVar(&opts.OutDir, "out-dir", "", "directory for outputs (default: next to each input)")
	flags.IntVar(&opts.BitRate, "bitrate", 0, "target bit rate in bit/s")
	flags.StringVar(&opts.Codec, "codec", "", "output codec: aac or raw")
	flags.IntVar(&opts.Rate, "rate", 0, "resample to this rate before encoding")
	flags.BoolVar(&opts.Mono, "mono", false, "downmix to mono before encoding")
	flags.IntVarP(&opts.Jobs, "jobs", "j", 0, "inputs compressed in parallel")

	return cmd
}

func runCompress(cmd *cobra.Command, a *app, opts *compressOptions, inputs []string) error {
	if opts.Output != "" && len(inputs) != 1 {
		return errOutputWithManyInputs
	}

	tc := a.cfg.Transcode
	flags := cmd.Flags()
	if flags.Changed("bitrate") {
		tc.BitRate = opts.BitRate
	}
	if flags.Changed("codec") {
		tc.Codec = opts.Codec
	}
	if flags.Changed("rate") {
		tc.TargetRate = opts.Rate
	}
	if flags.Changed("mono") {
		tc.Mono = opts.Mono
	}
	if flags.Changed("jobs") {
		tc.Jobs = opts.Jobs
	}
	if err := tc.Validate(); err != nil {
		return err
	}

	cfg := *a.cfg
	cfg.Transcode = tc
	pc := cfg.Pipeline(a.logger)

	outputs, err := outputPaths(inputs, opts.Output, opts.OutDir, ".m4a")
	if err != nil {
		return err
	}

	results := make([]transcode.Result, len(inputs))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(tc.Jobs)

	for i, in := range inputs {
		out := outputs[i]
		g.Go(func() error {
			res, err := transcode.Transcode(ctx, in, out, pc)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, res := range results {
		fmt.Fprintf(w, "%s -> %s: %s, %d samples, %s -> %s in %s\n",
			res.Input, res.Output, res.Format.MIME, res.Samples,
			utils.HumanSize(res.InputBytes), utils.HumanSize(res.OutputBytes), res.Elapsed.Round(time.Millisecond))
	}
	return nil
}

// outputPaths maps every input to its output and fails when two inputs
// would write the same file.
func outputPaths(inputs []string, explicit, dir, ext string) ([]string, error) {
	outputs := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, in := range inputs {
		out := outputPath(in, explicit, dir, ext)
		key := filepath.Clean(out)
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: %s and %s both write %s", errDuplicateOutput, prev, in, out)
		}
		seen[key] = in
		outputs[i] = out
	}
	return outputs, nil
}

// outputPath picks explicit when set, otherwise in with its extension
// replaced by ext, moved into dir when dir is set.
func outputPath(in, explicit, dir, ext string) string {
	if explicit != "" {
		return explicit
	}
	out := strings.TrimSuffix(in, filepath.Ext(in)) + ext
	if dir != "" {
		out = filepath.Join(dir, filepath.Base(out))
	}
	return out
}
