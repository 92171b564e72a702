// Package engine turns an export request into an encoded artifact: per-clip
// trim/effects/overlay compositing, concatenation, aspect-ratio
// normalization, audio mixing and encoding, with fixed progress checkpoints.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/kwiktwik/video-editor/internal/media"
	"github.com/kwiktwik/video-editor/internal/model"

	"github.com/google/uuid"
)

// Overlay images larger than this bounding box are scaled down before
// compositing.
const (
	maxOverlayImageWidth  = 400
	maxOverlayImageHeight = 400
)

const downloadRoute = "/api/v1/download/"

// Resolver maps an opaque media reference to a loadable location. Supplied by
// the caller per export.
type Resolver func(ref string) (string, error)

// Artifacts decides where encoded outputs land on disk.
type Artifacts interface {
	ExportPath(name string) string
}

type Engine struct {
	media media.Engine
	fetch Fetcher
	files Artifacts
}

func New(med media.Engine, fetch Fetcher, files Artifacts) *Engine {
	return &Engine{media: med, fetch: fetch, files: files}
}

// Export runs the full pipeline and returns the output's download path.
// Progress checkpoints: clips fill 0-50 evenly, concat 60, aspect 70,
// audio 80, and 100 only after the artifact write succeeds. Any stage failure
// aborts the export; individual overlay failures are logged and skipped.
func (e *Engine) Export(
	ctx context.Context,
	req model.ExportRequest,
	resolve Resolver,
	logf func(string),
	progressf func(float64),
) (string, error) {
	req.ApplyDefaults()
	logf("Starting export process...")

	var opened []media.Clip
	defer func() {
		for _, c := range opened {
			c.Close()
		}
	}()

	total := len(req.Clips)
	processed := make([]media.Clip, 0, total)
	for i, cr := range req.Clips {
		logf(fmt.Sprintf("Processing clip %d/%d", i+1, total))
		clip, err := e.processClip(ctx, cr, resolve, logf)
		if err != nil {
			return "", err
		}
		opened = append(opened, clip)
		processed = append(processed, clip)
		progressf(float64(i+1) / float64(total) * 50)
	}

	logf("Concatenating clips...")
	timeline := processed[0]
	if len(processed) > 1 {
		joined, err := e.media.Concat(processed)
		if err != nil {
			return "", fmt.Errorf("concatenate clips: %w", err)
		}
		opened = append(opened, joined)
		timeline = joined
	}
	progressf(60)

	logf(fmt.Sprintf("Resizing to %s aspect ratio...", req.Settings.AspectRatio))
	preset := presetFor(req.Settings.Quality)
	spec := letterboxSpec(timeline.Width(), timeline.Height(), timeline.FPS(), req.Settings.AspectRatio, preset)
	boxed, err := e.media.Letterbox(timeline, spec)
	if err != nil {
		return "", fmt.Errorf("resize to aspect ratio: %w", err)
	}
	opened = append(opened, boxed)
	timeline = boxed
	progressf(70)

	if len(req.AudioTracks) > 0 {
		mixed, err := e.mixAudio(ctx, timeline, req.AudioTracks, resolve, logf)
		if err != nil {
			return "", err
		}
		if mixed != nil {
			timeline = timeline.WithAudio(mixed)
			opened = append(opened, timeline)
		}
	}
	progressf(80)

	name := "export_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8] + "." + string(req.Settings.Format)
	logf(fmt.Sprintf("Encoding video (%s quality)...", req.Settings.Quality))
	opts := media.EncodeOptions{
		Codec:      codecFor(req.Settings.Format),
		AudioCodec: "aac",
		Bitrate:    preset.Bitrate,
		FPS:        preset.FPS,
	}
	if err := e.media.Encode(ctx, timeline, e.files.ExportPath(name), opts); err != nil {
		return "", fmt.Errorf("encode video: %w", err)
	}

	progressf(100)
	logf("Export completed successfully!")
	return downloadRoute + name, nil
}

// processClip loads one source, applies trim and effects, and composites its
// overlays. An unresolvable or unloadable source is fatal; overlay failures
// are warnings.
func (e *Engine) processClip(ctx context.Context, cr model.ClipRequest, resolve Resolver, logf func(string)) (media.Clip, error) {
	path, err := resolve(cr.VideoURL)
	if err != nil {
		return nil, err
	}
	clip, err := e.media.LoadClip(ctx, path)
	if err != nil {
		return nil, err
	}

	logf(fmt.Sprintf("Trimming: %.2fs to %.2fs", cr.StartTime, cr.EndTime))
	clip, err = clip.Trim(cr.StartTime, cr.EndTime)
	if err != nil {
		return nil, fmt.Errorf("trim clip: %w", err)
	}

	if cr.Effects.Speed != 1 {
		logf(fmt.Sprintf("Applying speed: %.2fx", cr.Effects.Speed))
		clip, err = clip.Speed(cr.Effects.Speed)
		if err != nil {
			return nil, fmt.Errorf("apply speed: %w", err)
		}
	}
	if cr.Effects.FadeIn > 0 {
		logf(fmt.Sprintf("Applying fade in: %.2fs", cr.Effects.FadeIn))
		clip = clip.FadeIn(cr.Effects.FadeIn)
	}
	if cr.Effects.FadeOut > 0 {
		logf(fmt.Sprintf("Applying fade out: %.2fs", cr.Effects.FadeOut))
		clip = clip.FadeOut(cr.Effects.FadeOut)
	}

	// Text overlays first, then image overlays: later entries composite on top.
	var overlays []media.Overlay
	for _, o := range cr.TextOverlays {
		x, y := textOverlayPos(o, clip.Width(), clip.Height())
		ov, err := e.media.TextOverlay(media.TextSpec{
			Text:  o.Text,
			Font:  o.FontFamily,
			Size:  o.FontSize,
			Color: o.Color,
			X:     x,
			Y:     y,
			Start: o.StartTime,
			End:   o.EndTime,
		})
		if err != nil {
			logf(fmt.Sprintf("Warning: Failed to add text overlay: %v", err))
			continue
		}
		overlays = append(overlays, ov)
	}
	for _, o := range cr.ImageOverlays {
		ov, err := e.buildImageOverlay(ctx, o, clip.Width(), clip.Height())
		if err != nil {
			logf(fmt.Sprintf("Warning: Failed to add image overlay: %v", err))
			continue
		}
		overlays = append(overlays, ov)
	}
	if len(overlays) > 0 {
		clip, err = e.media.Composite(clip, overlays)
		if err != nil {
			return nil, fmt.Errorf("composite overlays: %w", err)
		}
		logf(fmt.Sprintf("Added %d overlay(s)", len(overlays)))
	}
	return clip, nil
}

func (e *Engine) buildImageOverlay(ctx context.Context, o model.ImageOverlay, clipW, clipH int) (media.Overlay, error) {
	path, err := e.fetch.Fetch(ctx, o.ImageURL)
	if err != nil {
		return nil, err
	}
	path, err = e.media.PrepareImage(path, maxOverlayImageWidth, maxOverlayImageHeight)
	if err != nil {
		return nil, err
	}
	size, x, y := imageOverlayRect(o, clipW, clipH)
	return e.media.ImageOverlay(media.ImageSpec{
		Path:   path,
		Width:  size,
		Height: size,
		X:      x,
		Y:      y,
		Start:  o.StartTime,
		End:    o.EndTime,
	})
}

// mixAudio layers external tracks over the timeline's retained audio.
// Unresolvable or unloadable tracks are skipped with a warning. Returns nil
// when nothing could be layered.
func (e *Engine) mixAudio(ctx context.Context, timeline media.Clip, tracks []model.AudioTrackRequest, resolve Resolver, logf func(string)) (media.Audio, error) {
	logf(fmt.Sprintf("Adding %d audio track(s)...", len(tracks)))
	var layers []media.Audio
	if timeline.HasAudio() {
		layers = append(layers, timeline.Audio())
	}
	for _, track := range tracks {
		path, err := resolve(track.URL)
		if err != nil {
			logf(fmt.Sprintf("Warning: Failed to add audio track: %v", err))
			continue
		}
		layer, err := e.media.LoadAudio(ctx, path)
		if err != nil {
			logf(fmt.Sprintf("Warning: Failed to add audio track: %v", err))
			continue
		}
		layer = layer.WithVolume(track.Volume).WithStart(track.StartTime)
		layers = append(layers, layer)
	}
	if len(layers) == 0 {
		return nil, nil
	}
	mixed, err := e.media.MixAudio(layers)
	if err != nil {
		return nil, fmt.Errorf("mix audio tracks: %w", err)
	}
	return mixed, nil
}
