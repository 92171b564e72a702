package model

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

type AspectRatio string

const (
	AspectSquare    AspectRatio = "1:1"
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
)

type Quality string

const (
	QualityLow       Quality = "low"
	QualityOptimised Quality = "optimised"
	QualityHigh      Quality = "high"
)

type Format string

const (
	FormatMP4 Format = "mp4"
	FormatMOV Format = "mov"
	FormatAVI Format = "avi"
)

type ImageShape string

const (
	ShapeCircle    ImageShape = "CIRCLE"
	ShapeRectangle ImageShape = "RECTANGLE"
	ShapeSquare    ImageShape = "SQUARE"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TextOverlay is a timed text element positioned by percentages of the clip
// frame. Start/end are local to the clip's trimmed timeline.
type TextOverlay struct {
	Text       string   `json:"text" binding:"required"`
	FontFamily string   `json:"font_family"`
	FontSize   int      `json:"font_size"`
	Color      string   `json:"color"`
	Position   Position `json:"position"`
	StartTime  float64  `json:"start_time"`
	EndTime    float64  `json:"end_time"`
}

// ImageOverlay is a timed image element. The shape tag is informational in the
// composite path; rendered overlays are always squares sized from
// PercentageWidth.
type ImageOverlay struct {
	ImageURL            string     `json:"image_url" binding:"required"`
	ImageShape          ImageShape `json:"image_shape" binding:"omitempty,oneof=CIRCLE RECTANGLE SQUARE"`
	PercentageWidth     float64    `json:"percentage_width"`
	PercentageFromTop   float64    `json:"percentage_from_top"`
	PercentageFromStart float64    `json:"percentage_from_start"`
	StartTime           float64    `json:"start_time"`
	EndTime             float64    `json:"end_time"`
}

type ClipEffects struct {
	FadeIn  float64 `json:"fade_in"`
	FadeOut float64 `json:"fade_out"`
	Speed   float64 `json:"speed"`
}

// ClipRequest describes one trimmed, effected segment of source media.
// Track is carried for forward compatibility but the pipeline ignores it:
// clips are always concatenated sequentially in request order.
type ClipRequest struct {
	VideoURL      string         `json:"video_url" binding:"required"`
	StartTime     float64        `json:"start_time"`
	EndTime       float64        `json:"end_time"`
	Track         int            `json:"track"`
	Effects       ClipEffects    `json:"effects"`
	TextOverlays  []TextOverlay  `json:"text_overlays" binding:"omitempty,dive"`
	ImageOverlays []ImageOverlay `json:"image_overlays" binding:"omitempty,dive"`
}

type AudioTrackRequest struct {
	URL       string  `json:"url" binding:"required"`
	Volume    float64 `json:"volume"`
	StartTime float64 `json:"start_time"`
}

type ExportSettings struct {
	AspectRatio AspectRatio `json:"aspect_ratio" binding:"omitempty,oneof=1:1 16:9 9:16"`
	Quality     Quality     `json:"quality" binding:"omitempty,oneof=low optimised high"`
	Format      Format      `json:"format" binding:"omitempty,oneof=mp4 mov avi"`
}

// ExportRequest is the declarative edit description submitted to start a job.
// Immutable once attached to a Job.
type ExportRequest struct {
	Clips       []ClipRequest       `json:"clips" binding:"required,min=1,dive"`
	AudioTracks []AudioTrackRequest `json:"audio_tracks" binding:"omitempty,dive"`
	Settings    ExportSettings      `json:"settings"`
}

// ApplyDefaults fills zero-valued fields with the documented defaults so the
// pipeline never has to special-case absent JSON fields.
func (r *ExportRequest) ApplyDefaults() {
	if r.Settings.AspectRatio == "" {
		r.Settings.AspectRatio = AspectLandscape
	}
	if r.Settings.Quality == "" {
		r.Settings.Quality = QualityOptimised
	}
	if r.Settings.Format == "" {
		r.Settings.Format = FormatMP4
	}
	for i := range r.Clips {
		c := &r.Clips[i]
		if c.Effects.Speed == 0 {
			c.Effects.Speed = 1
		}
		for j := range c.TextOverlays {
			o := &c.TextOverlays[j]
			if o.FontFamily == "" {
				o.FontFamily = "Arial"
			}
			if o.FontSize == 0 {
				o.FontSize = 32
			}
			if o.Color == "" {
				o.Color = "#ffffff"
			}
		}
		for j := range c.ImageOverlays {
			if c.ImageOverlays[j].ImageShape == "" {
				c.ImageOverlays[j].ImageShape = ShapeCircle
			}
		}
	}
	for i := range r.AudioTracks {
		if r.AudioTracks[i].Volume == 0 {
			r.AudioTracks[i].Volume = 1
		}
	}
}

// Validate enforces the request constraints the binding tags cannot express.
// Call after ApplyDefaults.
func (r ExportRequest) Validate() error {
	for i, c := range r.Clips {
		if c.EndTime <= c.StartTime {
			return fmt.Errorf("clip %d: end_time must be greater than start_time", i)
		}
		if c.Effects.Speed <= 0 {
			return fmt.Errorf("clip %d: speed must be greater than zero", i)
		}
		if c.Effects.FadeIn < 0 || c.Effects.FadeOut < 0 {
			return fmt.Errorf("clip %d: fade durations must not be negative", i)
		}
	}
	for i, t := range r.AudioTracks {
		if t.Volume < 0 {
			return fmt.Errorf("audio track %d: volume must not be negative", i)
		}
	}
	return nil
}

// Job is one export task plus its lifecycle state and log trail. It is owned
// by the job store and mutated only through the store's operations.
type Job struct {
	ID          string         `json:"id"`
	Status      JobStatus      `json:"status"`
	Progress    float64        `json:"progress"`
	Logs        []string       `json:"logs"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	OutputURL   string         `json:"output_url,omitempty"`
	Request     *ExportRequest `json:"request,omitempty"`
}

type QueueStats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}
