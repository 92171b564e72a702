package engine

import (
	"github.com/kwiktwik/video-editor/internal/media"
	"github.com/kwiktwik/video-editor/internal/model"
)

// Preset is the fixed resolution/bitrate/fps tuple selected by a quality tier.
type Preset struct {
	Width   int
	Height  int
	Bitrate string
	FPS     float64
}

var qualityPresets = map[model.Quality]Preset{
	model.QualityLow:       {Width: 854, Height: 480, Bitrate: "1000k", FPS: 24},
	model.QualityOptimised: {Width: 1280, Height: 720, Bitrate: "2500k", FPS: 30},
	model.QualityHigh:      {Width: 1920, Height: 1080, Bitrate: "5000k", FPS: 30},
}

func presetFor(q model.Quality) Preset {
	if p, ok := qualityPresets[q]; ok {
		return p
	}
	return qualityPresets[model.QualityOptimised]
}

// targetDimensions resolves the output canvas size for an aspect ratio:
// portrait swaps the preset's width/height, square takes the smaller edge.
func targetDimensions(aspect model.AspectRatio, p Preset) (int, int) {
	switch aspect {
	case model.AspectPortrait:
		return p.Height, p.Width
	case model.AspectSquare:
		side := p.Width
		if p.Height < side {
			side = p.Height
		}
		return side, side
	default:
		return p.Width, p.Height
	}
}

// fitWithin scales (srcW, srcH) uniformly to fit inside (maxW, maxH).
func fitWithin(srcW, srcH, maxW, maxH int) (int, int) {
	scaleW := float64(maxW) / float64(srcW)
	scaleH := float64(maxH) / float64(srcH)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	return int(float64(srcW) * scale), int(float64(srcH) * scale)
}

// letterboxSpec computes the centered placement of the timeline on the target
// canvas. Output fps is the source fps when known, else the preset's.
func letterboxSpec(srcW, srcH int, srcFPS float64, aspect model.AspectRatio, p Preset) media.LetterboxSpec {
	targetW, targetH := targetDimensions(aspect, p)
	scaledW, scaledH := fitWithin(srcW, srcH, targetW, targetH)
	fps := srcFPS
	if fps == 0 {
		fps = p.FPS
	}
	return media.LetterboxSpec{
		ScaledWidth:  scaledW,
		ScaledHeight: scaledH,
		CanvasWidth:  targetW,
		CanvasHeight: targetH,
		OffsetX:      (targetW - scaledW) / 2,
		OffsetY:      (targetH - scaledH) / 2,
		FPS:          fps,
	}
}

// codecFor maps the container format to a codec family: h.264 for mp4/mov,
// mpeg4 otherwise.
func codecFor(format model.Format) media.Codec {
	switch format {
	case model.FormatMP4, model.FormatMOV:
		return media.CodecH264
	default:
		return media.CodecMPEG4
	}
}

// imageOverlayRect resolves an image overlay's on-clip square size and
// top-left anchor from its percentage fields.
func imageOverlayRect(o model.ImageOverlay, clipW, clipH int) (size, x, y int) {
	size = int(o.PercentageWidth / 100 * float64(clipW))
	x = int(o.PercentageFromStart / 100 * float64(clipW))
	y = int(o.PercentageFromTop / 100 * float64(clipH))
	return size, x, y
}

// textOverlayPos resolves a text overlay's anchor from its percentage position.
func textOverlayPos(o model.TextOverlay, clipW, clipH int) (x, y int) {
	return int(o.Position.X / 100 * float64(clipW)), int(o.Position.Y / 100 * float64(clipH))
}
