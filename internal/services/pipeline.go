package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kubev2v/task-scheduler/internal/models"
	"github.com/kubev2v/task-scheduler/pkg/scheduler"
)

const defaultCaptureTries = 3

type FrameSource interface {
	Capture(ctx context.Context) (models.Frame, error)
}

type TextRecognizer interface {
	Recognize(ctx context.Context, frame models.Frame) (models.Recognition, error)
}

type EventDetector interface {
	Detect(ctx context.Context, frame models.Frame, text models.Recognition) ([]models.Event, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, report models.FrameReport) (models.Analysis, error)
}

// Submitter is the part of the scheduler used by the pipeline.
type Submitter interface {
	SubmitCapture(work scheduler.Work, opts ...scheduler.TaskOption) *scheduler.Future
	SubmitCompute(work scheduler.Work, opts ...scheduler.TaskOption) *scheduler.Future
	SubmitIO(work scheduler.Work, opts ...scheduler.TaskOption) *scheduler.Future
	WaitForAll(ctx context.Context, pool string) error
}

type PipelineOption func(*Pipeline)

// WithCaptureRetry sets how many times a capture is attempted and the
// backoff between attempts.
func WithCaptureRetry(tries uint, b backoff.BackOff) PipelineOption {
	return func(p *Pipeline) {
		if tries > 0 {
			p.captureTries = tries
		}
		if b != nil {
			p.newBackOff = func() backoff.BackOff { return b }
		}
	}
}

// Pipeline processes frames through the capture, compute and io pools:
// capture, then recognition and detection on compute, then analysis on io.
type Pipeline struct {
	sched      Submitter
	source     FrameSource
	recognizer TextRecognizer
	detector   EventDetector
	analyzer   Analyzer

	captureTries uint
	newBackOff   func() backoff.BackOff
}

func NewPipeline(s Submitter, source FrameSource, recognizer TextRecognizer, detector EventDetector, analyzer Analyzer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		sched:        s,
		source:       source,
		recognizer:   recognizer,
		detector:     detector,
		analyzer:     analyzer,
		captureTries: defaultCaptureTries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 50 * time.Millisecond
			b.MaxInterval = time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one frame through every stage. It stops at the first stage
// that fails and returns its error wrapped with the stage name.
func (p *Pipeline) Process(ctx context.Context) (*models.FrameReport, error) {
	report := &models.FrameReport{Durations: make(map[models.Stage]time.Duration)}

	var frame models.Frame
	err := p.run(ctx, report, models.StageCapture, p.sched.SubmitCapture, func(ctx context.Context) error {
		f, err := backoff.Retry(ctx, func() (models.Frame, error) {
			return p.source.Capture(ctx)
		},
			backoff.WithBackOff(p.newBackOff()),
			backoff.WithMaxTries(p.captureTries),
			backoff.WithNotify(func(err error, next time.Duration) {
				zap.S().Named("pipeline").Debugw("capture failed, retrying", "error", err, "next", next)
			}),
		)
		if err != nil {
			return err
		}
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if f.CapturedAt.IsZero() {
			f.CapturedAt = time.Now()
		}
		frame = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	report.FrameID = frame.ID
	report.CapturedAt = frame.CapturedAt

	err = p.run(ctx, report, models.StageRecognize, p.sched.SubmitCompute, func(ctx context.Context) error {
		r, err := p.recognizer.Recognize(ctx, frame)
		report.Recognition = r
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.run(ctx, report, models.StageDetect, p.sched.SubmitCompute, func(ctx context.Context) error {
		events, err := p.detector.Detect(ctx, frame, report.Recognition)
		report.Events = events
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.run(ctx, report, models.StageAnalyze, p.sched.SubmitIO, func(ctx context.Context) error {
		a, err := p.analyzer.Analyze(ctx, *report)
		report.Analysis = a
		return err
	})
	if err != nil {
		return nil, err
	}

	zap.S().Named("pipeline").Debugw("frame processed", "frame", report.FrameID, "events", len(report.Events))
	return report, nil
}

// Close waits until the pools used by the pipeline are idle.
func (p *Pipeline) Close(ctx context.Context) error {
	for _, pool := range []string{scheduler.CapturePool, scheduler.ComputePool, scheduler.IOPool} {
		if err := p.sched.WaitForAll(ctx, pool); err != nil {
			return err
		}
	}
	return nil
}

type submitFunc func(work scheduler.Work, opts ...scheduler.TaskOption) *scheduler.Future

// run submits one stage and waits for it. The report is only touched by the
// stage task, and the wait orders those writes before the next stage.
func (p *Pipeline) run(ctx context.Context, report *models.FrameReport, stage models.Stage, submit submitFunc, work scheduler.Work) error {
	future := submit(work, scheduler.WithName(string(stage)))
	if err := future.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			future.Stop()
		}
		return fmt.Errorf("%s stage failed: %w", stage, err)
	}
	report.Durations[stage] = future.Result().Duration
	return nil
}
