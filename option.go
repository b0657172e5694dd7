package ble

import "time"

// Options collects the small set of knobs read by cmd/attctl (the
// transports take their own arguments), configured via functional Options,
// mirroring the teacher's ble.Option/NewDeviceWithName pattern.
type Options struct {
	Logger       Logger
	DialTimeout  time.Duration
	PreferredMTU int
}

// Option configures an Options value.
type Option func(*Options)

// NewOptions applies opts over a zero-value Options and returns the result.
func NewOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used for diagnostic output.
func WithLogger(log Logger) Option {
	return func(o *Options) { o.Logger = log }
}

// WithDialTimeout sets DialTimeout; cmd/attctl uses it as how long it waits
// for its demo request to complete.
func WithDialTimeout(d time.Duration) Option {
	return func(o *Options) { o.DialTimeout = d }
}

// WithPreferredMTU sets PreferredMTU, which cmd/attctl hands to
// att.WithPreferredMTU; nothing in this module negotiates with it.
func WithPreferredMTU(mtu int) Option {
	return func(o *Options) { o.PreferredMTU = mtu }
}
