package chakracore

import (
	"go.uber.org/zap"

	"github.com/buke/chakracore-go/abi"
)

// Attributes are the creation-time settings of a runtime. They cannot change afterwards.
type Attributes struct {
	// DisableBackgroundWork keeps garbage collection and JIT off background threads.
	DisableBackgroundWork bool
	// AllowScriptInterrupt makes script interruption reliable at some cost.
	AllowScriptInterrupt bool
	// EnableIdleProcessing means the host calls Context.Idle.
	EnableIdleProcessing        bool
	DisableNativeCodeGeneration bool
	// DisableEval makes eval and the Function constructor fail.
	DisableEval                     bool
	EnableExperimentalFeatures      bool
	DispatchSetExceptionsToDebugger bool
	// DisableFatalOnOOM reports out-of-memory as an error instead of terminating.
	DisableFatalOnOOM               bool
	DisableExecutablePageAllocation bool
}

// Bits returns the engine bitmask of a.
func (a Attributes) Bits() abi.RuntimeAttributes {
	var bits abi.RuntimeAttributes
	for flag, set := range map[abi.RuntimeAttributes]bool{
		abi.RuntimeAttributeDisableBackgroundWork:           a.DisableBackgroundWork,
		abi.RuntimeAttributeAllowScriptInterrupt:            a.AllowScriptInterrupt,
		abi.RuntimeAttributeEnableIdleProcessing:            a.EnableIdleProcessing,
		abi.RuntimeAttributeDisableNativeCodeGeneration:     a.DisableNativeCodeGeneration,
		abi.RuntimeAttributeDisableEval:                     a.DisableEval,
		abi.RuntimeAttributeEnableExperimentalFeatures:      a.EnableExperimentalFeatures,
		abi.RuntimeAttributeDispatchSetExceptionsToDebugger: a.DispatchSetExceptionsToDebugger,
		abi.RuntimeAttributeDisableFatalOnOOM:               a.DisableFatalOnOOM,
		abi.RuntimeAttributeDisableExecutablePageAllocation: a.DisableExecutablePageAllocation,
	} {
		if set {
			bits |= flag
		}
	}
	return bits
}

// Options configures NewRuntime.
type Options struct {
	Attributes Attributes

	// Engine is the function table to bind; nil selects the default engine.
	Engine abi.Engine

	// Logger receives lifecycle and failure logs; nil selects the package logger.
	Logger *zap.Logger
}

// Option configures Options using the functional options pattern.
type Option func(*Options)

// WithAttributes replaces all runtime attributes.
func WithAttributes(attrs Attributes) Option {
	return func(o *Options) {
		o.Attributes = attrs
	}
}

// WithDisableBackgroundWork keeps engine work on the calling thread.
func WithDisableBackgroundWork() Option {
	return func(o *Options) {
		o.Attributes.DisableBackgroundWork = true
	}
}

// WithScriptInterrupt enables reliable script interruption.
func WithScriptInterrupt() Option {
	return func(o *Options) {
		o.Attributes.AllowScriptInterrupt = true
	}
}

// WithIdleProcessing enables Context.Idle.
func WithIdleProcessing() Option {
	return func(o *Options) {
		o.Attributes.EnableIdleProcessing = true
	}
}

// WithoutNativeCodeGeneration disables the JIT.
func WithoutNativeCodeGeneration() Option {
	return func(o *Options) {
		o.Attributes.DisableNativeCodeGeneration = true
	}
}

// WithoutEval disables eval and the Function constructor.
func WithoutEval() Option {
	return func(o *Options) {
		o.Attributes.DisableEval = true
	}
}

// WithExperimentalFeatures enables experimental language features.
func WithExperimentalFeatures() Option {
	return func(o *Options) {
		o.Attributes.EnableExperimentalFeatures = true
	}
}

// WithEngine binds the runtime to engine instead of the default.
func WithEngine(engine abi.Engine) Option {
	return func(o *Options) {
		o.Engine = engine
	}
}

// WithLogger sets the runtime's logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}
