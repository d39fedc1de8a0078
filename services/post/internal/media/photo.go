package media

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// Rendered output is capped so the shorter crop side never exceeds
	// this many pixels.
	maxRenderSize = 1600
	jpegQuality   = 80
)

// PhotoEdit is one image mid-edit: the original bytes, the decoded source,
// and the current crop parameters. The rendered output is produced lazily
// and cached until a parameter changes.
type PhotoEdit struct {
	original []byte
	src      image.Image // nil when the source did not decode

	preset Preset
	zoom   float64
	panX   float64
	panY   float64

	rendered     []byte
	renderedType string
}

// NewPhotoEdit decodes data and positions a centered default crop. An
// undecodable source is not an error: cropping is skipped and Render
// returns the original bytes untouched.
func NewPhotoEdit(data []byte) *PhotoEdit {
	edit := &PhotoEdit{
		original: data,
		preset:   PresetSquare,
		zoom:     MinZoom,
	}
	if img, err := imaging.Decode(bytes.NewReader(data)); err == nil {
		edit.src = img
	}
	return edit
}

func (e *PhotoEdit) SetPreset(p Preset) {
	if p != e.preset {
		e.preset = p
		e.rendered = nil
	}
}

func (e *PhotoEdit) SetZoom(zoom float64) {
	zoom = clamp(zoom, MinZoom, MaxZoom)
	if zoom != e.zoom {
		e.zoom = zoom
		e.rendered = nil
	}
}

func (e *PhotoEdit) SetPan(panX, panY float64) {
	panX = clamp(panX, -1, 1)
	panY = clamp(panY, -1, 1)
	if panX != e.panX || panY != e.panY {
		e.panX = panX
		e.panY = panY
		e.rendered = nil
	}
}

// Crop returns the current crop window, or a zero Rect when the source
// dimensions are unknown.
func (e *PhotoEdit) Crop() Rect {
	if e.src == nil {
		return Rect{}
	}
	bounds := e.src.Bounds()
	return CropRect(bounds.Dx(), bounds.Dy(), e.preset, e.zoom, e.panX, e.panY)
}

// Render produces the upload-ready bytes: crop, downscale to the render
// cap, re-encode as JPEG. If the re-encoded result is not strictly smaller
// than the original, the original wins; optimization never grows a file.
func (e *PhotoEdit) Render() ([]byte, string, error) {
	if e.rendered != nil {
		return e.rendered, e.renderedType, nil
	}
	if e.src == nil {
		// No dimensions to crop against, upload as picked.
		return e.original, "", nil
	}

	rect := e.Crop()
	cropped := imaging.Crop(e.src, image.Rect(rect.X, rect.Y, rect.X+rect.W, rect.Y+rect.H))

	if rect.W > maxRenderSize && rect.H > maxRenderSize {
		if rect.W < rect.H {
			cropped = imaging.Resize(cropped, maxRenderSize, 0, imaging.Lanczos)
		} else {
			cropped = imaging.Resize(cropped, 0, maxRenderSize, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, "", err
	}

	if buf.Len() >= len(e.original) {
		e.rendered = e.original
		e.renderedType = ""
		return e.original, "", nil
	}

	e.rendered = buf.Bytes()
	e.renderedType = "image/jpeg"
	return e.rendered, e.renderedType, nil
}

// Size returns the byte size the edit would upload right now.
func (e *PhotoEdit) Size() int {
	data, _, err := e.Render()
	if err != nil {
		return len(e.original)
	}
	return len(data)
}
