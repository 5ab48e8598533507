package location

import (
	"context"

	"github.com/sirupsen/logrus"
)

// DefaultAccuracyThreshold is the largest reported accuracy, in meters, still trusted
// for ranking.
const DefaultAccuracyThreshold = 100.0

// Provider delivers location events in the order the platform reports them. The
// returned channel is valid until ctx is done.
type Provider interface {
	Events(ctx context.Context) (<-chan Event, error)
}

// Tracker grades provider events by accuracy. It owns no pantry data.
type Tracker struct {
	provider  Provider
	threshold float64
	log       logrus.FieldLogger
}

// NewTracker creates a tracker trusting fixes whose accuracy is at most threshold meters.
// A non-positive threshold selects DefaultAccuracyThreshold.
func NewTracker(provider Provider, threshold float64, logger logrus.FieldLogger) *Tracker {
	if threshold <= 0 {
		threshold = DefaultAccuracyThreshold
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Tracker{provider: provider, threshold: threshold, log: logger}
}

// Threshold returns the configured accuracy threshold in meters.
func (t *Tracker) Threshold() float64 {
	return t.threshold
}

// Trustworthy reports whether evt carries a valid coordinate whose accuracy is known to
// be within the threshold, or unreported. A negative accuracy marks an invalid fix.
func (t *Tracker) Trustworthy(evt Event) bool {
	if evt.Coordinate == nil || !evt.Coordinate.Valid() {
		return false
	}
	if evt.AccuracyMeters == nil {
		return true
	}
	acc := *evt.AccuracyMeters
	return acc >= 0 && acc <= t.threshold
}

// Subscribe starts the provider and returns graded events in delivery order. The
// channel is closed once ctx is done or the provider stream ends.
func (t *Tracker) Subscribe(ctx context.Context) (<-chan Event, error) {
	src, err := t.provider.Events(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-src:
				if !ok {
					t.log.Debug("Location provider stream ended")
					return
				}
				evt.Trusted = t.Trustworthy(evt)
				if evt.Err != nil {
					t.log.WithError(evt.Err).Warn("Location provider reported failure")
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
