package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxPhotos = 3

var (
	ErrTooManyImages = errors.New("max 3 photos")
	ErrMixedMedia    = errors.New("cannot mix photos and video")
	ErrNoMedia       = errors.New("no media supplied")
	ErrUploadFailed  = errors.New("upload failed")
)

// Prepare takes the first quarter of the overall progress bar; upload,
// weighted by bytes, takes the rest.
const prepareWeight = 0.25

// PhotoUpload is one picked image with its edit parameters.
type PhotoUpload struct {
	Name   string
	Data   []byte
	Preset Preset
	Zoom   float64
	PanX   float64
	PanY   float64
}

// VideoUpload is a picked video already spooled to disk.
type VideoUpload struct {
	Name string
	Path string
}

// Input is one submission's media: up to three photos, or exactly one
// video, never both.
type Input struct {
	Photos []PhotoUpload
	Video  *VideoUpload
}

// Result is one stored file.
type Result struct {
	URL         string
	ContentType string
	Bytes       int64
}

// UploadFunc stores data under key and returns its public URL. It matches
// the shape of the S3 client's Upload method.
type UploadFunc func(ctx context.Context, key string, data []byte, contentType string, onProgress func(uploaded, total int64)) (string, error)

// Pipeline prepares and uploads a submission's media sequentially:
// validate, render each photo (or compress the video), then upload
// file by file. The context is consulted between stages so an abandoned
// submission stops before the next expensive step.
type Pipeline struct {
	encoder Encoder
	upload  UploadFunc

	// progress is latest-wins: a send never blocks the pipeline, a slow
	// reader just sees fewer intermediate values.
	progress chan float64
}

func NewPipeline(encoder Encoder, upload UploadFunc) *Pipeline {
	return &Pipeline{
		encoder:  encoder,
		upload:   upload,
		progress: make(chan float64, 1),
	}
}

// Progress exposes blended overall progress in [0,1]. Values are dropped,
// not queued, when nobody is reading.
func (p *Pipeline) Progress() <-chan float64 {
	return p.progress
}

func (p *Pipeline) notify(fraction float64) {
	select {
	case p.progress <- fraction:
	default:
		// Replace the stale value so the reader always gets the latest.
		select {
		case <-p.progress:
		default:
		}
		select {
		case p.progress <- fraction:
		default:
		}
	}
}

type prepared struct {
	key         string
	contentType string
	data        []byte
	videoPath   string // set instead of data for videos
	size        int64
}

// Run processes the whole submission and returns the stored files in
// input order. Any error aborts the submission; nothing partial is
// reported back.
func (p *Pipeline) Run(ctx context.Context, input Input) ([]Result, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	files, err := p.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	return p.uploadAll(ctx, files)
}

func validate(input Input) error {
	if len(input.Photos) == 0 && input.Video == nil {
		return ErrNoMedia
	}
	if len(input.Photos) > 0 && input.Video != nil {
		return ErrMixedMedia
	}
	if len(input.Photos) > maxPhotos {
		return ErrTooManyImages
	}
	return nil
}

func (p *Pipeline) prepare(ctx context.Context, input Input) ([]prepared, error) {
	if input.Video != nil {
		return p.prepareVideo(ctx, input.Video)
	}
	return p.preparePhotos(ctx, input.Photos)
}

func (p *Pipeline) preparePhotos(ctx context.Context, photos []PhotoUpload) ([]prepared, error) {
	files := make([]prepared, 0, len(photos))
	for i, photo := range photos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		edit := NewPhotoEdit(photo.Data)
		if photo.Preset != "" {
			edit.SetPreset(photo.Preset)
		}
		if photo.Zoom != 0 {
			edit.SetZoom(photo.Zoom)
		}
		edit.SetPan(photo.PanX, photo.PanY)

		data, contentType, err := edit.Render()
		if err != nil {
			// Optimization is best-effort; a failed re-encode falls
			// back to the bytes as picked.
			data, contentType = photo.Data, ""
		}
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}

		files = append(files, prepared{
			key:         objectKey(photo.Name, contentType),
			contentType: contentType,
			data:        data,
			size:        int64(len(data)),
		})
		p.notify(prepareWeight * float64(i+1) / float64(len(photos)))
	}
	return files, nil
}

func (p *Pipeline) prepareVideo(ctx context.Context, video *VideoUpload) ([]prepared, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outPath, size, err := PrepareVideo(ctx, p.encoder, video.Path, func(fraction float64) {
		p.notify(prepareWeight * fraction)
	})
	if err != nil {
		return nil, err
	}

	contentType := videoContentType(outPath)
	return []prepared{{
		key:         objectKey(video.Name, contentType),
		contentType: contentType,
		videoPath:   outPath,
		size:        size,
	}}, nil
}

func (p *Pipeline) uploadAll(ctx context.Context, files []prepared) ([]Result, error) {
	var totalBytes int64
	for _, f := range files {
		totalBytes += f.size
	}

	results := make([]Result, 0, len(files))
	var doneBytes int64
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data := f.data
		if f.videoPath != "" {
			var err error
			data, err = os.ReadFile(f.videoPath)
			if err != nil {
				return nil, fmt.Errorf("read prepared video: %w", err)
			}
		}

		base := doneBytes
		url, err := p.upload(ctx, f.key, data, f.contentType, func(uploaded, _ int64) {
			p.notify(prepareWeight + (1-prepareWeight)*float64(base+uploaded)/float64(totalBytes))
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrUploadFailed, f.key, err)
		}

		doneBytes += f.size
		results = append(results, Result{URL: url, ContentType: f.contentType, Bytes: f.size})
	}

	p.notify(1)
	return results, nil
}

func objectKey(name, contentType string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = extForContentType(contentType)
	}
	return "posts/" + uuid.New().String() + strings.ToLower(ext)
}

func extForContentType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ""
	}
}

func videoContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	default:
		return "video/mp4"
	}
}
