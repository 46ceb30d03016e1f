// Package classifier answers "is there a dog on this photo" with an external
// object detector.
//
// Loading a detection model is expensive, so an Adapter loads its model
// lazily on first use and at most once (a failed load is retried later).
// After that Classify calls run concurrently without locking. Every detector
// failure, including a panic, is logged and reported as "no detection": a
// broken detector must never block storing a photo.
package classifier

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/dogspotter/internal/common"
	"github.com/dmitrijs2005/dogspotter/internal/logging"
)

// DefaultMinConfidence matches the detector's own default threshold.
const DefaultMinConfidence = 0.25

// DefaultLoadTimeout bounds one model load.
const DefaultLoadTimeout = 2 * time.Minute

// Detection is one object found on an image.
type Detection struct {
	ClassID    int     `json:"class_id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Detector runs inference on one image. Implementations must be safe for
// concurrent use.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]Detection, error)
}

// Loader prepares a Detector for the given model identifier.
type Loader func(ctx context.Context, model string) (Detector, error)

// Options tune what counts as a positive classification.
type Options struct {
	TargetClass   int
	MinConfidence float64
	// LoadTimeout bounds a model load; zero means DefaultLoadTimeout.
	LoadTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		TargetClass:   common.DogClassID,
		MinConfidence: DefaultMinConfidence,
		LoadTimeout:   DefaultLoadTimeout,
	}
}

type loadedDetector struct {
	Detector
}

type pendingLoad struct {
	done chan struct{}
	det  Detector
	err  error
}

// Adapter classifies images with a lazily loaded model.
type Adapter struct {
	model  string
	load   Loader
	opts   Options
	logger logging.Logger

	ready atomic.Pointer[loadedDetector]

	mu      sync.Mutex
	loading *pendingLoad
}

func NewAdapter(model string, load Loader, opts Options, logger logging.Logger) *Adapter {
	return &Adapter{
		model:  model,
		load:   load,
		opts:   opts,
		logger: logger.With("module", "classifier", "model", model),
	}
}

// Model returns the model identifier the adapter was built for.
func (a *Adapter) Model() string {
	return a.model
}

// Classify reports whether at least one detection of the target class meets
// the confidence threshold. Errors are swallowed and yield false.
func (a *Adapter) Classify(ctx context.Context, image []byte) (found bool) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn(ctx, "detector panicked", "panic", fmt.Sprint(r))
			classificationsTotal.WithLabelValues(resultError).Inc()
			found = false
		}
	}()

	det, err := a.detector(ctx)
	if err != nil {
		a.logger.Warn(ctx, "model unavailable, treating as no detection", "error", err)
		classificationsTotal.WithLabelValues(resultError).Inc()
		return false
	}

	detections, err := det.Detect(ctx, image)
	if err != nil {
		a.logger.Warn(ctx, "detection failed, treating as no detection", "error", err)
		classificationsTotal.WithLabelValues(resultError).Inc()
		return false
	}

	found = a.matches(detections)
	if found {
		classificationsTotal.WithLabelValues(resultPositive).Inc()
	} else {
		classificationsTotal.WithLabelValues(resultNegative).Inc()
	}
	a.logger.Debug(ctx, "image classified", "detections", len(detections), "found", found)
	return found
}

func (a *Adapter) matches(detections []Detection) bool {
	for _, d := range detections {
		if d.ClassID == a.opts.TargetClass && d.Confidence >= a.opts.MinConfidence {
			return true
		}
	}
	return false
}

// detector returns the loaded model, loading it if needed. Concurrent first
// callers share one load that is detached from any caller's cancellation;
// each caller, the one that started it included, stops waiting when its own
// context ends.
func (a *Adapter) detector(ctx context.Context) (Detector, error) {
	if d := a.ready.Load(); d != nil {
		return d.Detector, nil
	}

	a.mu.Lock()
	if d := a.ready.Load(); d != nil {
		a.mu.Unlock()
		return d.Detector, nil
	}
	p := a.loading
	if p == nil {
		p = &pendingLoad{done: make(chan struct{})}
		a.loading = p
		go a.runLoad(context.WithoutCancel(ctx), p)
	}
	a.mu.Unlock()

	select {
	case <-p.done:
		return p.det, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *Adapter) runLoad(ctx context.Context, p *pendingLoad) {
	timeout := a.opts.LoadTimeout
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p.det, p.err = a.safeLoad(ctx)

	a.mu.Lock()
	if p.err == nil {
		a.ready.Store(&loadedDetector{p.det})
		a.logger.Info(ctx, "model loaded")
	} else {
		a.logger.Warn(ctx, "model load failed", "error", p.err)
	}
	a.loading = nil
	a.mu.Unlock()
	close(p.done)
}

func (a *Adapter) safeLoad(ctx context.Context) (det Detector, err error) {
	defer func() {
		if r := recover(); r != nil {
			det, err = nil, fmt.Errorf("model load panicked: %v", r)
		}
	}()
	det, err = a.load(ctx, a.model)
	if err == nil && det == nil {
		err = fmt.Errorf("loader returned no detector for %q", a.model)
	}
	return det, err
}

// Registry hands out one shared Adapter per model identifier.
type Registry struct {
	load   Loader
	opts   Options
	logger logging.Logger

	mu       sync.Mutex
	adapters map[string]*Adapter
}

func NewRegistry(load Loader, opts Options, logger logging.Logger) *Registry {
	return &Registry{
		load:     load,
		opts:     opts,
		logger:   logger,
		adapters: make(map[string]*Adapter),
	}
}

// Adapter returns the adapter for model, creating it on first request. The
// model itself is not loaded until the first Classify call.
func (r *Registry) Adapter(model string) *Adapter {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.adapters[model]
	if !ok {
		a = NewAdapter(model, r.load, r.opts, r.logger)
		r.adapters[model] = a
	}
	return a
}
