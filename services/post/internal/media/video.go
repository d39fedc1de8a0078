package media

import (
	"context"
	"fmt"
	"math"
	"os"
)

const (
	// Files below the trigger upload as-is; compression only pays off
	// above it.
	compressTriggerBytes = 55 * 1024 * 1024
	// Hard ceiling on what we will store, compressed or not.
	maxVideoBytes = 95 * 1024 * 1024

	videoBitrateKbps = 1500
	audioBitrateKbps = 128

	// A re-encode that drops or gains more than this much playtime is
	// considered corrupt and discarded.
	maxDurationDriftSec = 0.75
)

// Format is a target container/codec combination, tried in preference
// order.
type Format struct {
	Name      string
	Container string
	Ext       string
}

// FormatPreference lists encode targets from most to least preferred.
var FormatPreference = []Format{
	{Name: "h264/aac", Container: "mp4", Ext: ".mp4"},
	{Name: "h265/aac", Container: "mp4", Ext: ".mp4"},
	{Name: "vp9/opus", Container: "webm", Ext: ".webm"},
}

// VideoInfo describes a probed source.
type VideoInfo struct {
	DurationSec float64
	Width       int
	Height      int
}

// Encoder abstracts the external transcoder so the pipeline can be tested
// without one installed.
type Encoder interface {
	// Supports reports whether the encoder can produce the format.
	Supports(f Format) bool
	// Probe reads container metadata from the file at path.
	Probe(ctx context.Context, path string) (VideoInfo, error)
	// Encode transcodes src into dst at the given bitrates, reporting
	// fractional progress in [0,1] when the callback is non-nil.
	Encode(ctx context.Context, src, dst string, f Format, videoKbps, audioKbps int, onProgress func(float64)) error
}

// ErrVideoTooLarge means the source could not be brought under the size
// ceiling.
var ErrVideoTooLarge = fmt.Errorf("video exceeds %dMB", maxVideoBytes/(1024*1024))

// PrepareVideo compresses the file at path when it is worth it and safe,
// returning the path to upload and its byte size. The original always
// wins over a compressed result that is not smaller or that drifted in
// duration. Sources over the ceiling that cannot be brought under it are
// rejected.
func PrepareVideo(ctx context.Context, enc Encoder, path string, onProgress func(float64)) (string, int64, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("stat video: %w", err)
	}
	size := stat.Size()

	if size < compressTriggerBytes {
		reportProgress(onProgress, 1)
		return path, size, nil
	}

	outPath, outSize, ok := tryCompress(ctx, enc, path, size, onProgress)
	if ctx.Err() != nil {
		return "", 0, ctx.Err()
	}
	if ok {
		reportProgress(onProgress, 1)
		return outPath, outSize, nil
	}

	// Compression declined or failed; the original still has to fit.
	if size > maxVideoBytes {
		return "", 0, ErrVideoTooLarge
	}
	reportProgress(onProgress, 1)
	return path, size, nil
}

// tryCompress attempts the first supported format in preference order.
// It returns ok=false whenever the original should be kept instead.
func tryCompress(ctx context.Context, enc Encoder, path string, origSize int64, onProgress func(float64)) (string, int64, bool) {
	if enc == nil {
		return "", 0, false
	}

	var format Format
	found := false
	for _, f := range FormatPreference {
		if enc.Supports(f) {
			format = f
			found = true
			break
		}
	}
	if !found {
		return "", 0, false
	}

	origInfo, err := enc.Probe(ctx, path)
	if err != nil {
		return "", 0, false
	}

	dst := path + ".compressed" + format.Ext
	err = enc.Encode(ctx, path, dst, format, videoBitrateKbps, audioBitrateKbps, onProgress)
	if err != nil {
		os.Remove(dst)
		return "", 0, false
	}

	stat, err := os.Stat(dst)
	if err != nil || stat.Size() >= origSize {
		os.Remove(dst)
		return "", 0, false
	}

	outInfo, err := enc.Probe(ctx, dst)
	if err != nil || math.Abs(outInfo.DurationSec-origInfo.DurationSec) > maxDurationDriftSec {
		os.Remove(dst)
		return "", 0, false
	}

	if stat.Size() > maxVideoBytes {
		os.Remove(dst)
		return "", 0, false
	}
	return dst, stat.Size(), true
}

func reportProgress(onProgress func(float64), fraction float64) {
	if onProgress != nil {
		onProgress(fraction)
	}
}
