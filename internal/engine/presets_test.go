package engine

import (
	"testing"

	"github.com/kwiktwik/video-editor/internal/media"
	"github.com/kwiktwik/video-editor/internal/model"
)

func TestLetterboxSpecPortrait(t *testing.T) {
	// 1280x720 source into a 9:16 target at the optimised preset.
	spec := letterboxSpec(1280, 720, 30, model.AspectPortrait, presetFor(model.QualityOptimised))

	if spec.CanvasWidth != 720 || spec.CanvasHeight != 1280 {
		t.Fatalf("canvas = %dx%d, want 720x1280", spec.CanvasWidth, spec.CanvasHeight)
	}
	if spec.ScaledWidth != 720 || spec.ScaledHeight != 405 {
		t.Fatalf("scaled = %dx%d, want 720x405", spec.ScaledWidth, spec.ScaledHeight)
	}
	if spec.OffsetX != 0 || spec.OffsetY != 437 {
		t.Fatalf("offset = (%d,%d), want (0,437)", spec.OffsetX, spec.OffsetY)
	}
	if spec.FPS != 30 {
		t.Fatalf("fps = %v, want source fps 30", spec.FPS)
	}
}

func TestLetterboxSpecSquare(t *testing.T) {
	spec := letterboxSpec(1920, 1080, 0, model.AspectSquare, presetFor(model.QualityHigh))

	if spec.CanvasWidth != 1080 || spec.CanvasHeight != 1080 {
		t.Fatalf("canvas = %dx%d, want 1080x1080", spec.CanvasWidth, spec.CanvasHeight)
	}
	if spec.FPS != 30 {
		t.Fatalf("fps = %v, want preset fallback 30", spec.FPS)
	}
}

func TestLetterboxSpecLandscapePassthrough(t *testing.T) {
	spec := letterboxSpec(1280, 720, 24, model.AspectLandscape, presetFor(model.QualityOptimised))

	if spec.ScaledWidth != 1280 || spec.ScaledHeight != 720 {
		t.Fatalf("scaled = %dx%d, want 1280x720", spec.ScaledWidth, spec.ScaledHeight)
	}
	if spec.OffsetX != 0 || spec.OffsetY != 0 {
		t.Fatalf("offset = (%d,%d), want (0,0)", spec.OffsetX, spec.OffsetY)
	}
}

func TestImageOverlayRect(t *testing.T) {
	o := model.ImageOverlay{
		PercentageWidth:     30,
		PercentageFromTop:   20,
		PercentageFromStart: 35,
	}
	size, x, y := imageOverlayRect(o, 320, 180)
	if size != 96 {
		t.Fatalf("size = %d, want 96", size)
	}
	if x != 112 || y != 36 {
		t.Fatalf("anchor = (%d,%d), want (112,36)", x, y)
	}
}

func TestTextOverlayPos(t *testing.T) {
	o := model.TextOverlay{Position: model.Position{X: 50, Y: 25}}
	x, y := textOverlayPos(o, 640, 360)
	if x != 320 || y != 90 {
		t.Fatalf("anchor = (%d,%d), want (320,90)", x, y)
	}
}

func TestCodecFor(t *testing.T) {
	if codecFor(model.FormatMP4) != media.CodecH264 {
		t.Fatalf("mp4 should encode with an h.264 codec")
	}
	if codecFor(model.FormatMOV) != media.CodecH264 {
		t.Fatalf("mov should encode with an h.264 codec")
	}
	if codecFor(model.FormatAVI) != media.CodecMPEG4 {
		t.Fatalf("avi should encode with an mpeg4 codec")
	}
}

func TestPresetForUnknownQuality(t *testing.T) {
	p := presetFor(model.Quality("weird"))
	if p != qualityPresets[model.QualityOptimised] {
		t.Fatalf("unknown quality should fall back to optimised, got %+v", p)
	}
}
