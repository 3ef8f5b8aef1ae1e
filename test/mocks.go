package test

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/kubev2v/task-scheduler/internal/models"
	"github.com/kubev2v/task-scheduler/internal/services"
)

// ErrCameraBusy is returned by MockFrameSource while failures remain.
var ErrCameraBusy = errors.New("camera busy")

// MockFrameSource implements services.FrameSource for testing.
type MockFrameSource struct {
	Frame    models.Frame
	failures atomic.Int32
	calls    atomic.Int32
}

// NewMockFrameSource creates a source returning a 640x480 frame.
func NewMockFrameSource() *MockFrameSource {
	return &MockFrameSource{Frame: models.Frame{Width: 640, Height: 480, Data: []byte("frame")}}
}

// FailNext makes the next n captures fail with ErrCameraBusy.
func (m *MockFrameSource) FailNext(n int32) {
	m.failures.Store(n)
}

// Calls returns how many captures were attempted.
func (m *MockFrameSource) Calls() int32 {
	return m.calls.Load()
}

func (m *MockFrameSource) Capture(ctx context.Context) (models.Frame, error) {
	m.calls.Add(1)
	if m.failures.Load() > 0 {
		m.failures.Add(-1)
		return models.Frame{}, ErrCameraBusy
	}
	return m.Frame, nil
}

// MockTextRecognizer returns the configured recognition and error.
type MockTextRecognizer struct {
	Recognition models.Recognition
	Err         error
}

func NewMockTextRecognizer(words ...string) *MockTextRecognizer {
	m := &MockTextRecognizer{}
	for _, w := range words {
		m.Recognition.Regions = append(m.Recognition.Regions, models.TextRegion{Text: w, Confidence: 0.9})
	}
	return m
}

func (m *MockTextRecognizer) Recognize(ctx context.Context, frame models.Frame) (models.Recognition, error) {
	if m.Err != nil {
		return models.Recognition{}, m.Err
	}
	return m.Recognition, nil
}

// MockEventDetector emits one event of Kind, detailed with the frame id,
// when the recognized text equals Trigger.
type MockEventDetector struct {
	Trigger string
	Kind    string
	Err     error
}

func (m *MockEventDetector) Detect(ctx context.Context, frame models.Frame, text models.Recognition) ([]models.Event, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if text.Text() == m.Trigger {
		return []models.Event{{Kind: m.Kind, Detail: frame.ID}}, nil
	}
	return nil, nil
}

// MockAnalyzer summarizes a report with its text and scores it by event count.
type MockAnalyzer struct {
	Err error
}

func (m *MockAnalyzer) Analyze(ctx context.Context, report models.FrameReport) (models.Analysis, error) {
	if m.Err != nil {
		return models.Analysis{}, m.Err
	}
	return models.Analysis{Summary: report.Recognition.Text(), Score: float64(len(report.Events))}, nil
}

var (
	_ services.FrameSource    = (*MockFrameSource)(nil)
	_ services.TextRecognizer = (*MockTextRecognizer)(nil)
	_ services.EventDetector  = (*MockEventDetector)(nil)
	_ services.Analyzer       = (*MockAnalyzer)(nil)
)
