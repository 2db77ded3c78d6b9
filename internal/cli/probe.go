// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ik5/audtrans/extract"
	"github.com/ik5/audtrans/media"
)

type probeTrack struct {
	Index         int    `json:"index"`
	MIME          string `json:"mime"`
	SampleRate    int    `json:"sample_rate"`
	Channels      int    `json:"channels"`
	BitsPerSample int    `json:"bits_per_sample,omitempty"`
	MaxInputSize  int    `json:"max_input_size"`
}

type probeResult struct {
	Path   string       `json:"path"`
	Tracks []probeTrack `json:"tracks"`
}

func newProbeCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "probe [input...]",
		Short: "Show the tracks an input exposes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]probeResult, 0, len(args))
			for _, path := range args {
				res, err := probe(a, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				results = append(results, res)
			}

			w := cmd.OutOrStdout()
			if output == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			bold, cyan := color.New(color.Bold), color.New(color.FgCyan)
			for _, res := range results {
				bold.Fprintln(w, res.Path)
				for _, t := range res.Tracks {
					fmt.Fprintf(w, "  %s %s\n", cyan.Sprintf("#%d", t.Index), media.Format{
						MIME: t.MIME, SampleRate: t.SampleRate, Channels: t.Channels, BitsPerSample: t.BitsPerSample,
					})
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "text", "output format (json or text)")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "text"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func probe(a *app, path string) (probeResult, error) {
	ex, err := extract.Open(path,
		extract.WithRawFormat(a.cfg.WAV.SampleRate, a.cfg.WAV.Channels),
		extract.WithLogger(a.logger))
	if err != nil {
		return probeResult{}, err
	}
	defer ex.Release()

	res := probeResult{Path: path}
	for i := range ex.TrackCount() {
		f, err := ex.TrackFormat(i)
		if err != nil {
			return probeResult{}, err
		}
		res.Tracks = append(res.Tracks, probeTrack{
			Index:         i,
			MIME:          f.MIME,
			SampleRate:    f.SampleRate,
			Channels:      f.Channels,
			BitsPerSample: f.BitsPerSample,
			MaxInputSize:  f.MaxInputSize,
		})
	}
	return res, nil
}
