package media

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// SourceInfo describes a synthetic media source registered with the mock.
type SourceInfo struct {
	Duration float64
	Width    int
	Height   int
	FPS      float64
	HasAudio bool
}

// EncodeCall records one Encode invocation for assertions.
type EncodeCall struct {
	Path     string
	Options  EncodeOptions
	Width    int
	Height   int
	Duration float64
	FPS      float64
}

// Mock is an in-memory Engine backed by a catalog of registered sources. It
// tracks dimensions, durations and fps through every transform so the
// pipeline's geometry and progress accounting are fully observable without a
// codec library. Encode writes a placeholder artifact so download paths work.
type Mock struct {
	mu      sync.Mutex
	sources map[string]SourceInfo
	audio   map[string]bool
	encodes []EncodeCall
}

func NewMock() *Mock {
	return &Mock{
		sources: map[string]SourceInfo{},
		audio:   map[string]bool{},
	}
}

// Register makes a video source loadable at path.
func (m *Mock) Register(path string, info SourceInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[path] = info
}

// RegisterAudio makes an audio source loadable at path.
func (m *Mock) RegisterAudio(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audio[path] = true
}

func (m *Mock) EncodeCalls() []EncodeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EncodeCall(nil), m.encodes...)
}

func (m *Mock) LoadClip(_ context.Context, path string) (Clip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.sources[path]
	if !ok {
		return nil, fmt.Errorf("video file not found at path: %s", path)
	}
	c := &mockClip{
		dur: info.Duration,
		w:   info.Width,
		h:   info.Height,
		fps: info.FPS,
	}
	if info.HasAudio {
		c.audio = &mockAudio{volume: 1}
	}
	return c, nil
}

func (m *Mock) LoadAudio(_ context.Context, path string) (Audio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.audio[path] {
		return nil, fmt.Errorf("audio file not found at path: %s", path)
	}
	return &mockAudio{volume: 1}, nil
}

func (m *Mock) PrepareImage(path string, maxWidth, maxHeight int) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty image path")
	}
	return path, nil
}

func (m *Mock) TextOverlay(spec TextSpec) (Overlay, error) {
	if spec.Text == "" {
		return nil, fmt.Errorf("empty overlay text")
	}
	return spec, nil
}

func (m *Mock) ImageOverlay(spec ImageSpec) (Overlay, error) {
	if spec.Path == "" {
		return nil, fmt.Errorf("empty overlay image path")
	}
	return spec, nil
}

func (m *Mock) Composite(base Clip, overlays []Overlay) (Clip, error) {
	c, err := asMockClip(base)
	if err != nil {
		return nil, err
	}
	out := *c
	out.overlays += len(overlays)
	return &out, nil
}

func (m *Mock) Concat(clips []Clip) (Clip, error) {
	if len(clips) == 0 {
		return nil, fmt.Errorf("no clips to concatenate")
	}
	out := &mockClip{}
	for _, clip := range clips {
		c, err := asMockClip(clip)
		if err != nil {
			return nil, err
		}
		out.dur += c.dur
		if c.w > out.w {
			out.w = c.w
		}
		if c.h > out.h {
			out.h = c.h
		}
		if c.fps > out.fps {
			out.fps = c.fps
		}
		if c.audio != nil {
			out.audio = c.audio
		}
	}
	return out, nil
}

func (m *Mock) Letterbox(clip Clip, spec LetterboxSpec) (Clip, error) {
	c, err := asMockClip(clip)
	if err != nil {
		return nil, err
	}
	out := *c
	out.w = spec.CanvasWidth
	out.h = spec.CanvasHeight
	out.fps = spec.FPS
	return &out, nil
}

func (m *Mock) MixAudio(layers []Audio) (Audio, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("no audio layers to mix")
	}
	return &mockAudio{volume: 1, layers: len(layers)}, nil
}

func (m *Mock) Encode(_ context.Context, clip Clip, path string, opts EncodeOptions) error {
	c, err := asMockClip(clip)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte("mock-encoded-artifact"), 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.encodes = append(m.encodes, EncodeCall{
		Path:     path,
		Options:  opts,
		Width:    c.w,
		Height:   c.h,
		Duration: c.dur,
		FPS:      c.fps,
	})
	return nil
}

func asMockClip(c Clip) (*mockClip, error) {
	mc, ok := c.(*mockClip)
	if !ok {
		return nil, fmt.Errorf("clip was not produced by this engine")
	}
	return mc, nil
}

type mockClip struct {
	dur      float64
	w, h     int
	fps      float64
	audio    *mockAudio
	overlays int
}

func (c *mockClip) Duration() float64 { return c.dur }
func (c *mockClip) Width() int        { return c.w }
func (c *mockClip) Height() int       { return c.h }
func (c *mockClip) FPS() float64      { return c.fps }
func (c *mockClip) HasAudio() bool    { return c.audio != nil }

func (c *mockClip) Audio() Audio {
	if c.audio == nil {
		return nil
	}
	return c.audio
}

func (c *mockClip) Trim(start, end float64) (Clip, error) {
	if start < 0 || end <= start {
		return nil, fmt.Errorf("invalid trim range %.2f-%.2f", start, end)
	}
	if end > c.dur {
		end = c.dur
	}
	out := *c
	out.dur = end - start
	return &out, nil
}

func (c *mockClip) Speed(factor float64) (Clip, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("invalid speed factor %.2f", factor)
	}
	out := *c
	out.dur = c.dur / factor
	return &out, nil
}

func (c *mockClip) FadeIn(seconds float64) Clip {
	out := *c
	return &out
}

func (c *mockClip) FadeOut(seconds float64) Clip {
	out := *c
	return &out
}

func (c *mockClip) WithAudio(a Audio) Clip {
	out := *c
	if ma, ok := a.(*mockAudio); ok {
		out.audio = ma
	}
	return &out
}

func (c *mockClip) Close() {}

type mockAudio struct {
	volume float64
	start  float64
	layers int
}

func (a *mockAudio) WithVolume(multiplier float64) Audio {
	out := *a
	out.volume *= multiplier
	return &out
}

func (a *mockAudio) WithStart(offset float64) Audio {
	out := *a
	out.start = offset
	return &out
}
