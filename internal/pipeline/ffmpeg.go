package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonas747/ogg"
	"github.com/zhotheone/discordmusicbot/internal/domain/entities"
	apperrors "github.com/zhotheone/discordmusicbot/internal/errors"
	"github.com/zhotheone/discordmusicbot/internal/filters"
	"github.com/zhotheone/discordmusicbot/pkg/logger"
)

// FFmpegPipeline builds streams by piping yt-dlp into ffmpeg and decoding the
// Ogg/Opus output into Discord-sized frames. The yt-dlp download bypasses the
// 403 errors YouTube returns when ffmpeg fetches stream URLs directly.
type FFmpegPipeline struct {
	logger    *logger.Logger
	ytDlpPath string
	ffmpegPn  string
	bitrate   int // kbps
}

// NewFFmpegPipeline creates the production pipeline. Fails if yt-dlp or
// ffmpeg are not installed.
func NewFFmpegPipeline(log *logger.Logger) (*FFmpegPipeline, error) {
	ytDlpPath, err := exec.LookPath("yt-dlp")
	if err != nil {
		return nil, fmt.Errorf("yt-dlp not found in PATH: %w", err)
	}
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	return &FFmpegPipeline{
		logger:    log,
		ytDlpPath: ytDlpPath,
		ffmpegPn:  ffmpegPath,
		bitrate:   128,
	}, nil
}

// SupportsLiveGain is false: gain is baked into the ffmpeg invocation, so a
// volume change applies starting with the next built stream.
func (p *FFmpegPipeline) SupportsLiveGain() bool {
	return false
}

type ffmpegHandle struct {
	done   chan error
	paused atomic.Bool
}

func (h *ffmpegHandle) Done() <-chan error { return h.done }

func (h *ffmpegHandle) Pause(paused bool) { h.paused.Store(paused) }

func (h *ffmpegHandle) SetVolume(percent int) bool { return false }

// BuildStream starts the yt-dlp | ffmpeg chain for a track and streams Opus
// frames to opts.Sink until the track ends or ctx is cancelled.
func (p *FFmpegPipeline) BuildStream(ctx context.Context, track *entities.Track, spec filters.Spec, opts Options) (Handle, error) {
	if opts.Sink == nil {
		return nil, fmt.Errorf("%w: no frame sink", apperrors.ErrPipelineFailure)
	}

	ytDlpCmd := exec.Command(p.ytDlpPath,
		"-f", "bestaudio/best",
		"-o", "-",
		"--no-playlist",
		"--no-check-certificate",
		"--geo-bypass",
		"--quiet",
		"--no-warnings",
		track.URL,
	)
	ytDlpStdout, err := ytDlpCmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: yt-dlp stdout: %v", apperrors.ErrPipelineFailure, err)
	}

	ffmpegCmd := exec.Command(p.ffmpegPn, p.ffmpegArgs(spec, opts.Volume)...)
	ffmpegCmd.Stdin = ytDlpStdout

	ffmpegStdout, err := ffmpegCmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg stdout: %v", apperrors.ErrPipelineFailure, err)
	}
	ffmpegStderr, err := ffmpegCmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg stderr: %v", apperrors.ErrPipelineFailure, err)
	}

	go func() {
		scanner := bufio.NewScanner(ffmpegStderr)
		for scanner.Scan() {
			p.logger.WithField("ffmpeg", scanner.Text()).Debug("ffmpeg output")
		}
	}()

	if err := ytDlpCmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start yt-dlp: %v", apperrors.ErrPipelineFailure, err)
	}
	if err := ffmpegCmd.Start(); err != nil {
		ytDlpCmd.Process.Kill()
		ytDlpCmd.Wait()
		return nil, fmt.Errorf("%w: start ffmpeg: %v", apperrors.ErrPipelineFailure, err)
	}

	handle := &ffmpegHandle{done: make(chan error, 1)}

	go p.stream(ctx, handle, track, ytDlpCmd, ffmpegCmd, ffmpegStdout, opts.Sink)

	return handle, nil
}

// ffmpegArgs builds the encoder invocation: the filter chain spec plus the
// session volume rendered as a trailing gain stage.
func (p *FFmpegPipeline) ffmpegArgs(spec filters.Spec, volume int) []string {
	args := []string{
		"-i", "pipe:0",
		"-map", "0:a",
	}

	chain := spec.FFmpegFilter()
	gain := fmt.Sprintf("volume=%.2f", float64(volume)/100)
	if chain != "" {
		args = append(args, "-af", chain+","+gain)
	} else {
		args = append(args, "-af", gain)
	}

	args = append(args,
		"-acodec", "libopus",
		"-f", "ogg",
		"-compression_level", "5",
		"-ar", "48000",
		"-ac", "2",
		"-b:a", fmt.Sprintf("%d", p.bitrate*1000),
		"-application", "audio",
		"-frame_duration", "20",
		"-loglevel", "error",
		"pipe:1",
	)
	return args
}

// stream decodes Ogg packets and delivers Opus frames to the sink at playback
// rate. It resolves the handle exactly once.
func (p *FFmpegPipeline) stream(ctx context.Context, handle *ffmpegHandle, track *entities.Track, ytDlpCmd, ffmpegCmd *exec.Cmd, out io.Reader, sink chan<- []byte) {
	defer func() {
		ytDlpCmd.Process.Kill()
		ytDlpCmd.Wait()
		ffmpegCmd.Process.Kill()
		ffmpegCmd.Wait()
	}()

	decoder := ogg.NewPacketDecoder(ogg.NewDecoder(out))

	// Opus frames are 20ms; pace delivery to playback rate
	const frameInterval = 20 * time.Millisecond
	frameCount := 0
	startTime := time.Now()

	// First two packets are the Opus header and comment metadata
	skipPackets := 2

	for {
		if err := ctx.Err(); err != nil {
			handle.done <- err
			return
		}

		for handle.paused.Load() {
			select {
			case <-ctx.Done():
				handle.done <- ctx.Err()
				return
			case <-time.After(100 * time.Millisecond):
			}
			// Shift the pacing clock so unpausing does not burst frames
			startTime = startTime.Add(100 * time.Millisecond)
		}

		packet, _, err := decoder.Decode()
		if err != nil {
			if err == io.EOF {
				p.logger.WithFields(map[string]interface{}{
					"track":  track.DisplayName(),
					"frames": frameCount,
				}).Debug("Stream completed")
				handle.done <- nil
				return
			}
			if frameCount > 0 {
				// Truncated tail after real playback counts as completion
				p.logger.WithError(err).WithField("frames", frameCount).Warn("Stream ended early")
				handle.done <- nil
				return
			}
			handle.done <- fmt.Errorf("%w: %v", apperrors.ErrPipelineFailure, p.describeDecodeError(err))
			return
		}

		if skipPackets > 0 {
			skipPackets--
			continue
		}
		if len(packet) == 0 {
			continue
		}

		frameCount++
		expectedTime := startTime.Add(time.Duration(frameCount) * frameInterval)
		if wait := time.Until(expectedTime); wait > 0 {
			select {
			case <-ctx.Done():
				handle.done <- ctx.Err()
				return
			case <-time.After(wait):
			}
		}

		select {
		case sink <- packet:
		case <-ctx.Done():
			handle.done <- ctx.Err()
			return
		}
	}
}

func (p *FFmpegPipeline) describeDecodeError(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "invalid") {
		return "encoder produced no playable audio: " + msg
	}
	return msg
}
