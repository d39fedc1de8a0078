package media

// Preset is one of the fixed crop aspect ratios offered for image posts.
type Preset string

const (
	PresetPortrait  Preset = "4:5"
	PresetSquare    Preset = "1:1"
	PresetLandscape Preset = "16:9"
)

const (
	MinZoom = 1.0
	MaxZoom = 3.0
)

// Ratio returns width/height for the preset.
func (p Preset) Ratio() float64 {
	switch p {
	case PresetPortrait:
		return 4.0 / 5.0
	case PresetLandscape:
		return 16.0 / 9.0
	default:
		return 1.0
	}
}

// Rect is a crop window in source-image pixel coordinates.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// CropRect computes the crop window for an imgW x imgH source under the
// given preset, zoom and pan. Zoom is clamped to [1,3] and pan to [-1,1]
// per axis; a pan of ±1 pushes the window flush against the corresponding
// edge, so the result always lies inside the image. The default (zoom 1,
// pan 0) is the largest centered window with the preset's aspect ratio.
func CropRect(imgW, imgH int, preset Preset, zoom, panX, panY float64) Rect {
	if imgW <= 0 || imgH <= 0 {
		return Rect{}
	}

	zoom = clamp(zoom, MinZoom, MaxZoom)
	panX = clamp(panX, -1, 1)
	panY = clamp(panY, -1, 1)

	ratio := preset.Ratio()

	// Largest window of the target ratio that fits the source.
	baseW := float64(imgW)
	baseH := baseW / ratio
	if baseH > float64(imgH) {
		baseH = float64(imgH)
		baseW = baseH * ratio
	}

	cropW := baseW / zoom
	cropH := baseH / zoom

	// Pan range depends on how much slack the zoomed window leaves.
	slackX := (float64(imgW) - cropW) / 2
	slackY := (float64(imgH) - cropH) / 2

	x := slackX + panX*slackX
	y := slackY + panY*slackY

	rect := Rect{
		X: int(x),
		Y: int(y),
		W: int(cropW),
		H: int(cropH),
	}

	// Integer truncation can leave the window a pixel past the edge.
	if rect.X+rect.W > imgW {
		rect.X = imgW - rect.W
	}
	if rect.Y+rect.H > imgH {
		rect.Y = imgH - rect.H
	}
	if rect.X < 0 {
		rect.X = 0
	}
	if rect.Y < 0 {
		rect.Y = 0
	}
	return rect
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
