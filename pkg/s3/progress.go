package s3

import (
	"bytes"
	"io"
)

// ProgressFunc receives upload progress as bytes sent so far out of the
// total. Implementations must return quickly: the reader invokes it inline
// on every chunk.
type ProgressFunc func(uploaded, total int64)

type progressReader struct {
	r        *bytes.Reader
	total    int64
	read     int64
	progress ProgressFunc
}

func newProgressReader(r *bytes.Reader, total int64, progress ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, progress: progress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.progress != nil {
			p.progress(p.read, p.total)
		}
	}
	return n, err
}

// Seek satisfies io.ReadSeeker for PutObject. The SDK seeks to determine
// length and to rewind on internal retries; the byte counter follows the
// new position so progress never runs past the total.
func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.r.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	p.read = pos
	return pos, nil
}

var _ io.ReadSeeker = (*progressReader)(nil)
