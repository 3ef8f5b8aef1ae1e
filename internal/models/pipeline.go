package models

import (
	"strings"
	"time"
)

// Stage names a step of frame processing. Each stage runs as one task
// named after it.
type Stage string

const (
	// StageCapture - grab a frame from the source
	StageCapture Stage = "capture"
	// StageRecognize - extract text from the frame
	StageRecognize Stage = "recognize"
	// StageDetect - find events in the frame and its text
	StageDetect Stage = "detect"
	// StageAnalyze - summarize the findings
	StageAnalyze Stage = "analyze"
)

type Frame struct {
	ID         string
	CapturedAt time.Time
	Width      int
	Height     int
	Data       []byte
}

type TextRegion struct {
	Text       string
	Confidence float64
}

type Recognition struct {
	Regions []TextRegion
}

// Text joins the recognized regions with spaces.
func (r Recognition) Text() string {
	parts := make([]string, 0, len(r.Regions))
	for _, region := range r.Regions {
		parts = append(parts, region.Text)
	}
	return strings.Join(parts, " ")
}

type Event struct {
	Kind   string
	Detail string
}

type Analysis struct {
	Summary string
	Score   float64
}

// FrameReport is the outcome of processing one frame.
type FrameReport struct {
	FrameID     string
	CapturedAt  time.Time
	Recognition Recognition
	Events      []Event
	Analysis    Analysis
	Durations   map[Stage]time.Duration
}
