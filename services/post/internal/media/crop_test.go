package media

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCropRectStaysInBounds(t *testing.T) {
	sizes := [][2]int{{1080, 1350}, {4000, 3000}, {640, 640}, {3840, 2160}, {100, 2000}, {2000, 100}}
	presets := []Preset{PresetPortrait, PresetSquare, PresetLandscape}
	zooms := []float64{1, 1.5, 2, 2.7, 3}
	pans := []float64{-1, -0.5, 0, 0.33, 1}

	for _, size := range sizes {
		for _, preset := range presets {
			for _, zoom := range zooms {
				for _, panX := range pans {
					for _, panY := range pans {
						name := fmt.Sprintf("%dx%d_%s_z%.1f_px%.2f_py%.2f", size[0], size[1], preset, zoom, panX, panY)
						t.Run(name, func(t *testing.T) {
							rect := CropRect(size[0], size[1], preset, zoom, panX, panY)

							assert.GreaterOrEqual(t, rect.X, 0)
							assert.GreaterOrEqual(t, rect.Y, 0)
							assert.Greater(t, rect.W, 0)
							assert.Greater(t, rect.H, 0)
							assert.LessOrEqual(t, rect.X+rect.W, size[0])
							assert.LessOrEqual(t, rect.Y+rect.H, size[1])

							// Integer truncation allows the ratio to drift
							// by at most a pixel per side.
							got := float64(rect.W) / float64(rect.H)
							want := preset.Ratio()
							tolerance := want * 2 / math.Min(float64(rect.W), float64(rect.H))
							assert.InDelta(t, want, got, tolerance+0.01)
						})
					}
				}
			}
		}
	}
}

func TestCropRectDefaultIsCenteredAndMaximal(t *testing.T) {
	rect := CropRect(1000, 1000, PresetLandscape, 1, 0, 0)

	assert.Equal(t, 1000, rect.W)
	assert.Equal(t, 562, rect.H)
	assert.Equal(t, 0, rect.X)
	assert.Equal(t, 218, rect.Y)
}

func TestCropRectSquareOnSquareCoversEverything(t *testing.T) {
	rect := CropRect(800, 800, PresetSquare, 1, 0, 0)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 800, H: 800}, rect)
}

func TestCropRectPanReachesEdges(t *testing.T) {
	left := CropRect(2000, 1000, PresetSquare, 1, -1, 0)
	assert.Equal(t, 0, left.X)

	right := CropRect(2000, 1000, PresetSquare, 1, 1, 0)
	assert.Equal(t, 2000, right.X+right.W)
}

func TestCropRectZoomShrinksWindow(t *testing.T) {
	wide := CropRect(3000, 3000, PresetSquare, 1, 0, 0)
	tight := CropRect(3000, 3000, PresetSquare, 3, 0, 0)

	assert.Equal(t, 3000, wide.W)
	assert.Equal(t, 1000, tight.W)
	assert.Equal(t, 1000, tight.X)
}

func TestCropRectClampsOutOfRangeInputs(t *testing.T) {
	overZoom := CropRect(900, 900, PresetSquare, 10, 0, 0)
	maxZoom := CropRect(900, 900, PresetSquare, MaxZoom, 0, 0)
	assert.Equal(t, maxZoom, overZoom)

	overPan := CropRect(900, 900, PresetSquare, 2, 5, -5)
	edgePan := CropRect(900, 900, PresetSquare, 2, 1, -1)
	assert.Equal(t, edgePan, overPan)
}

func TestCropRectZeroImage(t *testing.T) {
	assert.Equal(t, Rect{}, CropRect(0, 0, PresetSquare, 1, 0, 0))
	assert.Equal(t, Rect{}, CropRect(-5, 100, PresetSquare, 1, 0, 0))
}
