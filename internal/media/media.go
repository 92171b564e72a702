// Package media defines the narrow interfaces through which the composition
// pipeline consumes an external codec library: loading, trimming, effects,
// overlay drawing, concatenation, letterboxing, audio mixing and encoding.
// The pipeline computes all geometry and timing itself and hands the engine
// concrete pixel values.
package media

import "context"

type Codec string

const (
	CodecH264  Codec = "libx264"
	CodecMPEG4 Codec = "mpeg4"
)

// Overlay is an opaque handle: created by an Engine's overlay constructors and
// consumed only by the same Engine's Composite.
type Overlay any

// TextSpec describes a drawn text element in clip-frame pixels.
type TextSpec struct {
	Text  string
	Font  string
	Size  int
	Color string
	X     int
	Y     int
	Start float64
	End   float64
}

// ImageSpec describes an image element in clip-frame pixels. Width and Height
// are the final on-clip size.
type ImageSpec struct {
	Path   string
	Width  int
	Height int
	X      int
	Y      int
	Start  float64
	End    float64
}

// LetterboxSpec places pre-scaled content centered on an opaque black canvas.
type LetterboxSpec struct {
	ScaledWidth  int
	ScaledHeight int
	CanvasWidth  int
	CanvasHeight int
	OffsetX      int
	OffsetY      int
	FPS          float64
}

type EncodeOptions struct {
	Codec      Codec
	AudioCodec string
	Bitrate    string
	FPS        float64
}

// Clip is a loaded video timeline. Transform methods return derived clips;
// Close releases the underlying resources of the whole derivation chain.
type Clip interface {
	Duration() float64
	Width() int
	Height() int
	FPS() float64
	HasAudio() bool
	Audio() Audio
	Trim(start, end float64) (Clip, error)
	Speed(factor float64) (Clip, error)
	FadeIn(seconds float64) Clip
	FadeOut(seconds float64) Clip
	WithAudio(a Audio) Clip
	Close()
}

// Audio is a loaded or derived audio layer.
type Audio interface {
	WithVolume(multiplier float64) Audio
	WithStart(offset float64) Audio
}

type Engine interface {
	LoadClip(ctx context.Context, path string) (Clip, error)
	LoadAudio(ctx context.Context, path string) (Audio, error)

	// PrepareImage resizes the image at path to fit within the given bounding
	// box preserving aspect ratio, returning the path of the processed copy.
	PrepareImage(path string, maxWidth, maxHeight int) (string, error)

	TextOverlay(spec TextSpec) (Overlay, error)
	ImageOverlay(spec ImageSpec) (Overlay, error)

	// Composite stacks overlays onto base in slice order; later overlays
	// render above earlier ones.
	Composite(base Clip, overlays []Overlay) (Clip, error)

	// Concat joins clips into one timeline in slice order.
	Concat(clips []Clip) (Clip, error)

	// Letterbox resizes clip to the spec's scaled size and centers it on an
	// opaque black canvas, keeping the clip's audio.
	Letterbox(clip Clip, spec LetterboxSpec) (Clip, error)

	MixAudio(layers []Audio) (Audio, error)

	Encode(ctx context.Context, clip Clip, path string, opts EncodeOptions) error
}
