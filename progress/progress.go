// Package progress defines the observer capability through which the
// long-running pipeline stages report their advancement.
//
// A stage first declares its number of major steps, then announces each one.
// Major returns false when the observer wants the stage to stop; stages only
// honor this at step boundaries.
package progress

import "github.com/pkg/errors"

// ErrAborted is returned by a stage cancelled through its observer
var ErrAborted = errors.New("aborted by progress observer")

// Observer receives step-begin notifications from the generator, the prover
// and the verifier
type Observer interface {
	// MajorSteps declares how many calls to Major will follow
	MajorSteps(n int)

	// Major announces the start of the next major step. Returning false
	// requests cancellation.
	Major() bool

	// Minor ticks inside long loops, at an unspecified rate
	Minor()
}

// Nop is the default do-nothing observer
type Nop struct{}

func (Nop) MajorSteps(int) {}
func (Nop) Major() bool    { return true }
func (Nop) Minor()         {}

// OrNop substitutes the default observer for a nil one
func OrNop(obs Observer) Observer {
	if obs == nil {
		return Nop{}
	}
	return obs
}
