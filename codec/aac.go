// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/mpeg4audio"
	"github.com/ik5/audtrans/media"
)

// ffmpegAAC pipes s16le PCM through an ffmpeg process and reads ADTS back.
type ffmpegAAC struct {
	path   string
	logger *slog.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *tailBuffer
	done   chan struct{}
	waited bool

	mu      sync.Mutex
	pending []byte
	readErr error

	asc        []byte
	rate       int64
	configSent bool
	frames     int64
	basePts    int64
	havePts    bool
}

func newFFmpegAAC(o BackendOptions) Backend {
	return &ffmpegAAC{path: o.FFmpegPath, logger: o.Logger}
}

func (b *ffmpegAAC) Open(in media.Format, cfg Config) (media.Format, error) {
	if in.MIME != media.MIMERaw || in.BitsPerSample != 16 {
		return media.Format{}, fmt.Errorf("%w: aac needs 16-bit %s input, got %s", ErrUnsupportedCodec, media.MIMERaw, in)
	}
	if cfg.Profile != media.ProfileNone && cfg.Profile != media.ProfileAACLC {
		return media.Format{}, fmt.Errorf("%w: profile %s", ErrUnsupportedCodec, cfg.Profile)
	}

	path, err := exec.LookPath(b.path)
	if err != nil {
		return media.Format{}, fmt.Errorf("%w: aac encoder: %w", ErrUnsupportedCodec, err)
	}

	asc := mpeg4audio.AudioSpecificConfig{
		Type:         mpeg4audio.ObjectTypeAACLC,
		SampleRate:   in.SampleRate,
		ChannelCount: in.Channels,
	}
	b.asc, err = asc.Marshal()
	if err != nil {
		return media.Format{}, fmt.Errorf("%w: %w", ErrUnsupportedCodec, err)
	}

	bitRate := cfg.BitRate
	if bitRate <= 0 {
		bitRate = DefaultBitRate
	}

	b.cmd = exec.Command(path, ffmpegArgs(in.SampleRate, in.Channels, bitRate)...)
	b.stderr = &tailBuffer{max: 4096}
	b.cmd.Stderr = b.stderr

	if b.stdin, err = b.cmd.StdinPipe(); err != nil {
		return media.Format{}, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	stdout, err := b.cmd.StdoutPipe()
	if err != nil {
		return media.Format{}, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := b.cmd.Start(); err != nil {
		return media.Format{}, fmt.Errorf("%w: starting ffmpeg: %w", ErrUnsupportedCodec, err)
	}

	b.done = make(chan struct{})
	go b.readLoop(stdout)

	b.rate = int64(in.SampleRate)
	b.logger.Debug("ffmpeg aac encoder started", "path", path, "bitrate", bitRate, "pid", b.cmd.Process.Pid)

	return media.Format{
		MIME:         media.MIMEAAC,
		SampleRate:   in.SampleRate,
		Channels:     in.Channels,
		BitRate:      bitRate,
		Profile:      media.ProfileAACLC,
		MaxInputSize: in.MaxInputSize,
		CodecConfig:  append([]byte(nil), b.asc...),
	}, nil
}

func ffmpegArgs(sampleRate, channels, bitRate int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-i", "pipe:0",
		"-c:a", "aac",
		"-profile:a", "aac_low",
		"-b:a", strconv.Itoa(bitRate),
		"-f", "adts",
		"pipe:1",
	}
}

func (b *ffmpegAAC) readLoop(r io.Reader) {
	defer close(b.done)

	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.mu.Lock()
			b.pending = append(b.pending, buf[:n]...)
			b.mu.Unlock()
		}
		if err != nil {
			if err != io.EOF {
				b.mu.Lock()
				b.readErr = err
				b.mu.Unlock()
			}
			return
		}
	}
}

func (b *ffmpegAAC) sendConfig(emit EmitFunc) error {
	if b.configSent {
		return nil
	}
	b.configSent = true
	return emit(Unit{Data: b.asc, Flags: media.FlagCodecConfig})
}

func (b *ffmpegAAC) Encode(pcm []byte, ptsUs int64, emit EmitFunc) error {
	if !b.havePts {
		b.basePts, b.havePts = ptsUs, true
	}
	if err := b.sendConfig(emit); err != nil {
		return err
	}

	if _, err := b.stdin.Write(pcm); err != nil {
		return fmt.Errorf("writing to ffmpeg: %w: %s", err, b.stderr)
	}
	return b.drain(emit)
}

// drain emits every complete frame read so far.
func (b *ffmpegAAC) drain(emit EmitFunc) error {
	b.mu.Lock()
	frames, consumed, err := splitADTS(b.pending)
	units := make([]Unit, len(frames))
	for i, f := range frames {
		units[i] = Unit{
			Data:               append([]byte(nil), f...),
			PresentationTimeUs: b.basePts + (b.frames+int64(i))*media.SamplesPerAACFrame*1_000_000/b.rate,
			Flags:              media.FlagKeyFrame,
		}
	}
	b.frames += int64(len(frames))
	b.pending = b.pending[:copy(b.pending, b.pending[consumed:])]
	readErr := b.readErr
	b.mu.Unlock()

	for _, u := range units {
		if err := emit(u); err != nil {
			return err
		}
	}
	if err != nil {
		return err
	}
	if readErr != nil {
		return fmt.Errorf("reading from ffmpeg: %w", readErr)
	}
	return nil
}

func (b *ffmpegAAC) Flush(emit EmitFunc) error {
	if err := b.sendConfig(emit); err != nil {
		return err
	}

	if err := b.stdin.Close(); err != nil {
		return fmt.Errorf("closing ffmpeg stdin: %w", err)
	}
	<-b.done
	werr := b.cmd.Wait()
	b.waited = true
	if werr != nil {
		return fmt.Errorf("ffmpeg: %w: %s", werr, b.stderr)
	}

	if err := b.drain(emit); err != nil {
		return err
	}

	b.mu.Lock()
	left := len(b.pending)
	b.mu.Unlock()
	if left > 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrBadADTS, left)
	}

	b.logger.Debug("ffmpeg aac encoder drained", "frames", b.frames)
	return nil
}

func (b *ffmpegAAC) Close() error {
	if b.cmd == nil || b.cmd.Process == nil || b.waited {
		return nil
	}
	b.waited = true

	_ = b.stdin.Close()
	err := b.cmd.Process.Kill()
	<-b.done
	_ = b.cmd.Wait()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("stopping ffmpeg: %w", err)
	}
	return nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(bytes.TrimSpace(t.buf.Bytes()))
}
