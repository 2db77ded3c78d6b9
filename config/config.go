// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/ik5/audtrans/codec"
	"github.com/ik5/audtrans/formats/pcm"
	"github.com/ik5/audtrans/media"
	"github.com/ik5/audtrans/mux"
	"github.com/ik5/audtrans/transcode"
)

// EnvPrefix is prepended to every environment override, for example
// AUDTRANS_TRANSCODE_BIT_RATE.
const EnvPrefix = "AUDTRANS"

// Config is the full runtime configuration.
type Config struct {
	Transcode TranscodeConfig `mapstructure:"transcode"`
	WAV       WAVConfig       `mapstructure:"wav"`
	Log       LogConfig       `mapstructure:"log"`
}

type TranscodeConfig struct {
	// Codec is "aac" or "raw".
	Codec            string        `mapstructure:"codec"`
	BitRate          int           `mapstructure:"bit_rate"`
	SampleFrames     int           `mapstructure:"sample_frames"`
	TargetRate       int           `mapstructure:"target_rate"`
	Mono             bool          `mapstructure:"mono"`
	FFmpegPath       string        `mapstructure:"ffmpeg_path"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxCycles        int           `mapstructure:"max_cycles"`
	FragmentDuration time.Duration `mapstructure:"fragment_duration"`
	Jobs             int           `mapstructure:"jobs"`
}

// WAVConfig is the layout of raw PCM captures, used both when wrapping them
// in WAV and when decoding headerless inputs.
type WAVConfig struct {
	SampleRate    int `mapstructure:"sample_rate"`
	Channels      int `mapstructure:"channels"`
	BitsPerSample int `mapstructure:"bits_per_sample"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("transcode.codec", "aac")
	v.SetDefault("transcode.bit_rate", codec.DefaultBitRate)
	v.SetDefault("transcode.sample_frames", 1024)
	v.SetDefault("transcode.target_rate", 0)
	v.SetDefault("transcode.mono", false)
	v.SetDefault("transcode.ffmpeg_path", "ffmpeg")
	v.SetDefault("transcode.timeout", transcode.DefaultTimeout)
	v.SetDefault("transcode.max_cycles", 0)
	v.SetDefault("transcode.fragment_duration", mux.DefaultFragmentDuration)
	v.SetDefault("transcode.jobs", 1)

	v.SetDefault("wav.sample_rate", pcm.DefaultSampleRate)
	v.SetDefault("wav.channels", pcm.DefaultChannels)
	v.SetDefault("wav.bits_per_sample", 16)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads defaults, then the YAML file at path, then AUDTRANS_*
// environment variables. With an empty path, audtrans.yaml is looked up in
// the working directory and $XDG_CONFIG_HOME/audtrans; a missing file is
// not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("audtrans")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, "audtrans"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Transcode.Validate(); err != nil {
		return fmt.Errorf("transcode: %w", err)
	}
	if err := c.WAV.Validate(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (t TranscodeConfig) Validate() error {
	if _, err := t.MIME(); err != nil {
		return err
	}
	if t.BitRate <= 0 {
		return fmt.Errorf("%w: bit_rate %d", ErrInvalidConfig, t.BitRate)
	}
	if t.TargetRate < 0 {
		return fmt.Errorf("%w: target_rate %d", ErrInvalidConfig, t.TargetRate)
	}
	if t.Jobs < 1 {
		return fmt.Errorf("%w: jobs %d", ErrInvalidConfig, t.Jobs)
	}
	return nil
}

// MIME maps the codec name to the encoder MIME type.
func (t TranscodeConfig) MIME() (string, error) {
	switch strings.ToLower(t.Codec) {
	case "aac":
		return media.MIMEAAC, nil
	case "raw", "pcm":
		return media.MIMERaw, nil
	}
	return "", fmt.Errorf("%w: codec %q", ErrInvalidConfig, t.Codec)
}

func (w WAVConfig) Validate() error {
	if w.SampleRate <= 0 || w.Channels <= 0 || w.BitsPerSample <= 0 || w.BitsPerSample%8 != 0 {
		return fmt.Errorf("%w: %d Hz, %d channels, %d bits",
			ErrInvalidConfig, w.SampleRate, w.Channels, w.BitsPerSample)
	}
	return nil
}

func (l LogConfig) Validate() error {
	if _, err := l.SlogLevel(); err != nil {
		return err
	}
	switch l.Format {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("%w: log format %q", ErrInvalidConfig, l.Format)
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, l.Level)
	}
	return lvl, nil
}

// Pipeline builds the transcode settings for one run.
func (c *Config) Pipeline(logger *slog.Logger) transcode.Config {
	mime, _ := c.Transcode.MIME()
	return transcode.Config{
		MIME:             mime,
		BitRate:          c.Transcode.BitRate,
		Profile:          media.ProfileAACLC,
		SampleFrames:     c.Transcode.SampleFrames,
		TargetRate:       c.Transcode.TargetRate,
		Mono:             c.Transcode.Mono,
		Raw:              pcm.Decoder{SampleRate: c.WAV.SampleRate, Channels: c.WAV.Channels},
		FFmpegPath:       c.Transcode.FFmpegPath,
		Timeout:          c.Transcode.Timeout,
		MaxCycles:        c.Transcode.MaxCycles,
		FragmentDuration: c.Transcode.FragmentDuration,
		Logger:           logger,
	}
}
