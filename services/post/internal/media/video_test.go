package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEncoder produces dst files of a fixed size and reports fixed
// durations, so every keep-or-discard branch can be driven directly.
type fakeEncoder struct {
	supported    bool
	srcDuration  float64
	dstDuration  float64
	dstSize      int64
	encodeErr    error
	encodeCalled bool
	usedFormat   Format
}

func (f *fakeEncoder) Supports(format Format) bool { return f.supported }

func (f *fakeEncoder) Probe(ctx context.Context, path string) (VideoInfo, error) {
	if strings.Contains(path, ".compressed") {
		return VideoInfo{DurationSec: f.dstDuration}, nil
	}
	return VideoInfo{DurationSec: f.srcDuration}, nil
}

func (f *fakeEncoder) Encode(ctx context.Context, src, dst string, format Format, videoKbps, audioKbps int, onProgress func(float64)) error {
	f.encodeCalled = true
	f.usedFormat = format
	if f.encodeErr != nil {
		return f.encodeErr
	}
	if onProgress != nil {
		onProgress(0.5)
		onProgress(1)
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	return out.Truncate(f.dstSize)
}

func tempVideo(t *testing.T, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.src")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

const mb = 1024 * 1024

func TestPrepareVideoSmallFileSkipsCompression(t *testing.T) {
	enc := &fakeEncoder{supported: true}
	path := tempVideo(t, 10*mb)

	var progress []float64
	outPath, size, err := PrepareVideo(context.Background(), enc, path, func(p float64) {
		progress = append(progress, p)
	})

	require.NoError(t, err)
	assert.Equal(t, path, outPath)
	assert.Equal(t, int64(10*mb), size)
	assert.False(t, enc.encodeCalled)
	assert.Equal(t, []float64{1}, progress)
}

func TestPrepareVideoCompressesLargeFile(t *testing.T) {
	enc := &fakeEncoder{
		supported:   true,
		srcDuration: 120,
		dstDuration: 120.4,
		dstSize:     20 * mb,
	}
	path := tempVideo(t, 60*mb)

	outPath, size, err := PrepareVideo(context.Background(), enc, path, nil)

	require.NoError(t, err)
	assert.NotEqual(t, path, outPath)
	assert.Equal(t, int64(20*mb), size)
	assert.Equal(t, FormatPreference[0], enc.usedFormat)
}

func TestPrepareVideoKeepsOriginalWhenCompressionNotSmaller(t *testing.T) {
	enc := &fakeEncoder{
		supported:   true,
		srcDuration: 120,
		dstDuration: 120,
		dstSize:     70 * mb,
	}
	path := tempVideo(t, 60*mb)

	outPath, size, err := PrepareVideo(context.Background(), enc, path, nil)

	require.NoError(t, err)
	assert.Equal(t, path, outPath)
	assert.Equal(t, int64(60*mb), size)
	assert.True(t, enc.encodeCalled)
}

func TestPrepareVideoKeepsOriginalOnDurationDrift(t *testing.T) {
	enc := &fakeEncoder{
		supported:   true,
		srcDuration: 120,
		dstDuration: 118, // lost 2s, over the drift tolerance
		dstSize:     20 * mb,
	}
	path := tempVideo(t, 60*mb)

	outPath, _, err := PrepareVideo(context.Background(), enc, path, nil)

	require.NoError(t, err)
	assert.Equal(t, path, outPath)
}

func TestPrepareVideoKeepsOriginalWhenNoFormatSupported(t *testing.T) {
	enc := &fakeEncoder{supported: false}
	path := tempVideo(t, 60*mb)

	outPath, _, err := PrepareVideo(context.Background(), enc, path, nil)

	require.NoError(t, err)
	assert.Equal(t, path, outPath)
	assert.False(t, enc.encodeCalled)
}

func TestPrepareVideoKeepsOriginalOnEncodeError(t *testing.T) {
	enc := &fakeEncoder{
		supported:   true,
		srcDuration: 120,
		encodeErr:   errors.New("codec exploded"),
	}
	path := tempVideo(t, 60*mb)

	outPath, _, err := PrepareVideo(context.Background(), enc, path, nil)

	require.NoError(t, err)
	assert.Equal(t, path, outPath)
}

func TestPrepareVideoRejectsOversizedOriginal(t *testing.T) {
	enc := &fakeEncoder{
		supported:   true,
		srcDuration: 600,
		encodeErr:   errors.New("codec exploded"),
	}
	path := tempVideo(t, 100*mb)

	_, _, err := PrepareVideo(context.Background(), enc, path, nil)

	assert.ErrorContains(t, err, "95MB")
}

func TestPrepareVideoOversizedButCompressible(t *testing.T) {
	enc := &fakeEncoder{
		supported:   true,
		srcDuration: 600,
		dstDuration: 600,
		dstSize:     80 * mb,
	}
	path := tempVideo(t, 100*mb)

	outPath, size, err := PrepareVideo(context.Background(), enc, path, nil)

	require.NoError(t, err)
	assert.NotEqual(t, path, outPath)
	assert.Equal(t, int64(80*mb), size)
}

func TestPrepareVideoCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enc := &fakeEncoder{supported: true, srcDuration: 120}
	path := tempVideo(t, 60*mb)

	_, _, err := PrepareVideo(ctx, enc, path, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPrepareVideoReportsFractionalProgress(t *testing.T) {
	enc := &fakeEncoder{
		supported:   true,
		srcDuration: 120,
		dstDuration: 120,
		dstSize:     20 * mb,
	}
	path := tempVideo(t, 60*mb)

	var progress []float64
	_, _, err := PrepareVideo(context.Background(), enc, path, func(p float64) {
		progress = append(progress, p)
	})

	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1, 1}, progress)
}
