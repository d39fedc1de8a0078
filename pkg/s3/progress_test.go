package s3

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressReader_ReportsBytes(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 1000)

	var calls []int64
	var lastTotal int64
	reader := newProgressReader(bytes.NewReader(data), int64(len(data)), func(uploaded, total int64) {
		calls = append(calls, uploaded)
		lastTotal = total
	})

	buf := make([]byte, 256)
	for {
		_, err := reader.Read(buf)
		if err == io.EOF {
			break
		}
		assert.NoError(t, err)
	}

	assert.NotEmpty(t, calls)
	assert.Equal(t, int64(1000), calls[len(calls)-1])
	assert.Equal(t, int64(1000), lastTotal)

	// Progress is monotonic within a single pass
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i], calls[i-1])
	}
}

func TestProgressReader_SeekResetsCount(t *testing.T) {
	data := []byte("hello world")

	var last int64
	reader := newProgressReader(bytes.NewReader(data), int64(len(data)), func(uploaded, total int64) {
		last = uploaded
	})

	_, _ = io.ReadAll(reader)
	assert.Equal(t, int64(len(data)), last)

	// Rewind, as the SDK does on retry; the counter follows
	pos, err := reader.Seek(0, io.SeekStart)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), pos)

	_, _ = io.ReadAll(reader)
	assert.Equal(t, int64(len(data)), last)
}

func TestProgressReader_NilCallback(t *testing.T) {
	data := []byte("no callback")
	reader := newProgressReader(bytes.NewReader(data), int64(len(data)), nil)

	out, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Equal(t, data, out)
}
