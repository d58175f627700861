/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package config

import (
	"fmt"
	"time"

	libval "github.com/go-playground/validator/v10"
	liberr "github.com/yiyuanzhong/flinter-sub000/errors"
)

type FuncOpt func() *Options

// Options is the union of both historical EasyServer configure variants: it
// carries the incoming-side limit (MaximumIncomingConnections, which caps
// concurrently open accepted connections) alongside the outgoing-side
// connect timeout, plus MaximumActiveConnections. MaximumActiveConnections
// is validated, cloned and merged like every other field, but EasyServer
// does not enforce it.
type Options struct {
	// InheritDefault define if the current options will override a default options
	InheritDefault bool `json:"inheritDefault" yaml:"inheritDefault" toml:"inheritDefault" mapstructure:"inheritDefault"`

	// Slots is the fixed reactor count, set once at Initialize.
	Slots uint32 `json:"slots" yaml:"slots" toml:"slots" mapstructure:"slots" validate:"min=1,max=128"`

	// Workers is the job-queue worker pool size; 0 means inline dispatch on
	// the owning reactor goroutine.
	Workers int `json:"workers" yaml:"workers" toml:"workers" mapstructure:"workers" validate:"min=0,max=16384"`

	// JobQueueCapacity bounds the job channel; 0 falls back to a default of
	// 4096 applied by EasyServer.Initialize.
	JobQueueCapacity int `json:"jobQueueCapacity,omitempty" yaml:"jobQueueCapacity,omitempty" toml:"jobQueueCapacity,omitempty" mapstructure:"jobQueueCapacity,omitempty" validate:"min=0"`

	MaximumIncomingConnections uint32 `json:"maximumIncomingConnections,omitempty" yaml:"maximumIncomingConnections,omitempty" toml:"maximumIncomingConnections,omitempty" mapstructure:"maximumIncomingConnections,omitempty"`
	MaximumActiveConnections   uint32 `json:"maximumActiveConnections,omitempty" yaml:"maximumActiveConnections,omitempty" toml:"maximumActiveConnections,omitempty" mapstructure:"maximumActiveConnections,omitempty"`

	IncomingReceiveTimeout time.Duration `json:"incomingReceiveTimeout,omitempty" yaml:"incomingReceiveTimeout,omitempty" toml:"incomingReceiveTimeout,omitempty" mapstructure:"incomingReceiveTimeout,omitempty" validate:"min=0"`
	IncomingSendTimeout    time.Duration `json:"incomingSendTimeout,omitempty" yaml:"incomingSendTimeout,omitempty" toml:"incomingSendTimeout,omitempty" mapstructure:"incomingSendTimeout,omitempty" validate:"min=0"`
	IncomingIdleTimeout    time.Duration `json:"incomingIdleTimeout,omitempty" yaml:"incomingIdleTimeout,omitempty" toml:"incomingIdleTimeout,omitempty" mapstructure:"incomingIdleTimeout,omitempty" validate:"min=0"`

	// OutgoingConnectTimeout bounds the dial+handshake phase of a reconnect,
	// kept distinct from OutgoingReceiveTimeout.
	OutgoingConnectTimeout time.Duration `json:"outgoingConnectTimeout,omitempty" yaml:"outgoingConnectTimeout,omitempty" toml:"outgoingConnectTimeout,omitempty" mapstructure:"outgoingConnectTimeout,omitempty" validate:"min=0"`
	OutgoingReceiveTimeout time.Duration `json:"outgoingReceiveTimeout,omitempty" yaml:"outgoingReceiveTimeout,omitempty" toml:"outgoingReceiveTimeout,omitempty" mapstructure:"outgoingReceiveTimeout,omitempty" validate:"min=0"`
	OutgoingSendTimeout    time.Duration `json:"outgoingSendTimeout,omitempty" yaml:"outgoingSendTimeout,omitempty" toml:"outgoingSendTimeout,omitempty" mapstructure:"outgoingSendTimeout,omitempty" validate:"min=0"`
	OutgoingIdleTimeout    time.Duration `json:"outgoingIdleTimeout,omitempty" yaml:"outgoingIdleTimeout,omitempty" toml:"outgoingIdleTimeout,omitempty" mapstructure:"outgoingIdleTimeout,omitempty" validate:"min=0"`

	// ResolverTTL controls how long a resolved outgoing hostname is cached.
	ResolverTTL time.Duration `json:"resolverTtl,omitempty" yaml:"resolverTtl,omitempty" toml:"resolverTtl,omitempty" mapstructure:"resolverTtl,omitempty" validate:"min=0"`

	// default options
	opts FuncOpt
}

// RegisterDefaultFunc allow to register a function called to retrieve default options for inheritDefault.
// If not set, the previous options will be used as default options.
// To clean function, just call RegisterDefaultFunc with nil as param.
func (o *Options) RegisterDefaultFunc(fct FuncOpt) {
	o.opts = fct
}

// Validate allow checking if the options' struct is valid with the awaiting model
func (o *Options) Validate() liberr.Error {
	var e = ErrorValidatorError.Error(nil)

	if err := libval.New().Struct(o); err != nil {
		if er, ok := err.(*libval.InvalidValidationError); ok {
			e.Add(er)
		}

		for _, er := range err.(libval.ValidationErrors) {
			//nolint #goerr113
			e.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", er.Namespace(), er.ActualTag()))
		}
	}

	if o.Slots < 1 || o.Slots > 128 {
		e.Add(ErrorSlotsOutOfRange.Error(nil))
	}

	if o.Workers < 0 || o.Workers > 16384 {
		e.Add(ErrorWorkersOutOfRange.Error(nil))
	}

	if !e.HasParent() {
		e = nil
	}

	return e
}

func (o *Options) Clone() Options {
	return Options{
		InheritDefault:             o.InheritDefault,
		Slots:                      o.Slots,
		Workers:                    o.Workers,
		JobQueueCapacity:           o.JobQueueCapacity,
		MaximumIncomingConnections: o.MaximumIncomingConnections,
		MaximumActiveConnections:   o.MaximumActiveConnections,
		IncomingReceiveTimeout:     o.IncomingReceiveTimeout,
		IncomingSendTimeout:        o.IncomingSendTimeout,
		IncomingIdleTimeout:        o.IncomingIdleTimeout,
		OutgoingConnectTimeout:     o.OutgoingConnectTimeout,
		OutgoingReceiveTimeout:     o.OutgoingReceiveTimeout,
		OutgoingSendTimeout:        o.OutgoingSendTimeout,
		OutgoingIdleTimeout:        o.OutgoingIdleTimeout,
		ResolverTTL:                o.ResolverTTL,
	}
}

func (o *Options) Merge(opt *Options) {
	if opt == nil {
		return
	}

	if opt.Slots > 0 {
		o.Slots = opt.Slots
	}
	if opt.Workers > 0 {
		o.Workers = opt.Workers
	}
	if opt.JobQueueCapacity > 0 {
		o.JobQueueCapacity = opt.JobQueueCapacity
	}
	if opt.MaximumIncomingConnections > 0 {
		o.MaximumIncomingConnections = opt.MaximumIncomingConnections
	}
	if opt.MaximumActiveConnections > 0 {
		o.MaximumActiveConnections = opt.MaximumActiveConnections
	}
	if opt.IncomingReceiveTimeout > 0 {
		o.IncomingReceiveTimeout = opt.IncomingReceiveTimeout
	}
	if opt.IncomingSendTimeout > 0 {
		o.IncomingSendTimeout = opt.IncomingSendTimeout
	}
	if opt.IncomingIdleTimeout > 0 {
		o.IncomingIdleTimeout = opt.IncomingIdleTimeout
	}
	if opt.OutgoingConnectTimeout > 0 {
		o.OutgoingConnectTimeout = opt.OutgoingConnectTimeout
	}
	if opt.OutgoingReceiveTimeout > 0 {
		o.OutgoingReceiveTimeout = opt.OutgoingReceiveTimeout
	}
	if opt.OutgoingSendTimeout > 0 {
		o.OutgoingSendTimeout = opt.OutgoingSendTimeout
	}
	if opt.OutgoingIdleTimeout > 0 {
		o.OutgoingIdleTimeout = opt.OutgoingIdleTimeout
	}
	if opt.ResolverTTL > 0 {
		o.ResolverTTL = opt.ResolverTTL
	}
	if opt.opts != nil {
		o.opts = opt.opts
	}
}

func (o *Options) Options() *Options {
	var no Options

	if o.opts != nil && o.InheritDefault {
		no = *o.opts()
	}

	no.Merge(o)

	return &no
}
