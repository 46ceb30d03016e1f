// Package policy decides when a submitter is suspended for sending too many
// photos without the target subject.
package policy

import (
	"errors"

	"github.com/dmitrijs2005/dogspotter/internal/server/models"
)

const (
	DefaultMinVolume          = 20
	DefaultMaxNegativePercent = 30
)

var ErrInvalidPolicy = errors.New("invalid policy")

// Engine holds the thresholds. The zero value never suspends anyone below
// one submission and is rarely what you want; use Default.
type Engine struct {
	// MinVolume is the number of submissions that must be exceeded before
	// the ratio is looked at.
	MinVolume int64
	// MaxNegativePercent is the tolerated share of submissions without a
	// detection, in percent.
	MaxNegativePercent float64
}

func Default() Engine {
	return Engine{MinVolume: DefaultMinVolume, MaxNegativePercent: DefaultMaxNegativePercent}
}

func (e Engine) Validate() error {
	if e.MinVolume < 0 {
		return errors.Join(ErrInvalidPolicy, errors.New("min volume must not be negative"))
	}
	if e.MaxNegativePercent < 0 || e.MaxNegativePercent > 100 {
		return errors.Join(ErrInvalidPolicy, errors.New("max negative percent must be within 0..100"))
	}
	return nil
}

// ShouldSuspend reports whether total submissions with positive detections
// cross the threshold. total > MinVolume >= 0 guarantees total is non-zero
// before dividing.
func (e Engine) ShouldSuspend(total, positive int64) bool {
	if total <= e.MinVolume || total <= 0 {
		return false
	}
	negativePercent := 100 * float64(total-positive) / float64(total)
	return negativePercent > e.MaxNegativePercent
}

// Evaluate is ShouldSuspend over a stats snapshot.
func (e Engine) Evaluate(s models.Stats) bool {
	return e.ShouldSuspend(s.Total, s.Positive)
}
