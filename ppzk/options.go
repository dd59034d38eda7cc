package ppzk

import "github.com/devourillusion/snarklib/progress"

// Option configures Setup, Prove and the verifiers
type Option func(*options)

type options struct {
	obs         progress.Observer
	reserveTune int
}

// WithObserver routes step-begin notifications to obs. The observer can
// cancel at step boundaries by returning false from Major.
func WithObserver(obs progress.Observer) Option {
	return func(o *options) { o.obs = progress.OrNop(obs) }
}

// WithReserveTune sizes the multi-exponentiation scratch reservation to
// numVariables/tune entries. Zero keeps the automatic sizing.
func WithReserveTune(tune int) Option {
	return func(o *options) { o.reserveTune = tune }
}

func newOptions(opts ...Option) options {
	o := options{obs: progress.Nop{}}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}
