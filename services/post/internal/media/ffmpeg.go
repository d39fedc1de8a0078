package media

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// FFmpegEncoder shells out to ffmpeg/ffprobe.
type FFmpegEncoder struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

// NewFFmpegEncoder builds an encoder around the ffmpeg binary at path
// (ffprobe is expected alongside it). timeout bounds a single encode run.
func NewFFmpegEncoder(path string, timeout time.Duration) *FFmpegEncoder {
	if path == "" {
		path = "ffmpeg"
	}
	probe := "ffprobe"
	if idx := strings.LastIndex(path, "ffmpeg"); idx >= 0 {
		probe = path[:idx] + "ffprobe" + path[idx+len("ffmpeg"):]
	}
	return &FFmpegEncoder{ffmpegPath: path, ffprobePath: probe, timeout: timeout}
}

var ffmpegCodecArgs = map[string][]string{
	"h264/aac": {"-c:v", "libx264", "-c:a", "aac"},
	"h265/aac": {"-c:v", "libx265", "-c:a", "aac"},
	"vp9/opus": {"-c:v", "libvpx-vp9", "-c:a", "libopus"},
}

func (e *FFmpegEncoder) Supports(f Format) bool {
	args, ok := ffmpegCodecArgs[f.Name]
	if !ok {
		return false
	}
	// -h encoder=X exits non-zero when the codec is not compiled in.
	out, err := exec.Command(e.ffmpegPath, "-hide_banner", "-h", "encoder="+strings.TrimPrefix(args[1], "lib")).CombinedOutput()
	if err != nil {
		return false
	}
	return !strings.Contains(string(out), "Unknown encoder")
}

func (e *FFmpegEncoder) Probe(ctx context.Context, path string) (VideoInfo, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height:format=duration",
		"-of", "default=noprint_wrappers=1",
		path)
	out, err := cmd.Output()
	if err != nil {
		return VideoInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var info VideoInfo
	for _, line := range strings.Split(string(out), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch key {
		case "width":
			info.Width, _ = strconv.Atoi(value)
		case "height":
			info.Height, _ = strconv.Atoi(value)
		case "duration":
			info.DurationSec, _ = strconv.ParseFloat(value, 64)
		}
	}
	if info.DurationSec == 0 {
		return VideoInfo{}, fmt.Errorf("ffprobe %s: no duration", path)
	}
	return info, nil
}

func (e *FFmpegEncoder) Encode(ctx context.Context, src, dst string, f Format, videoKbps, audioKbps int, onProgress func(float64)) error {
	codecArgs, ok := ffmpegCodecArgs[f.Name]
	if !ok {
		return fmt.Errorf("unsupported format %q", f.Name)
	}

	info, err := e.Probe(ctx, src)
	if err != nil {
		return err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := []string{"-hide_banner", "-y", "-i", src}
	args = append(args, codecArgs...)
	args = append(args,
		"-b:v", fmt.Sprintf("%dk", videoKbps),
		"-b:a", fmt.Sprintf("%dk", audioKbps),
		"-f", f.Container,
		"-progress", "pipe:1",
		"-nostats",
		dst)

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok || key != "out_time_us" {
			continue
		}
		us, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			continue
		}
		fraction := (float64(us) / 1e6) / info.DurationSec
		if fraction > 1 {
			fraction = 1
		}
		reportProgress(onProgress, fraction)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}
