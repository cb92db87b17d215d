package videoview

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrStrategyUnsupported is returned by a strategy whose capability probe
// reports the strategy cannot work on this platform.
var ErrStrategyUnsupported = errors.New("context strategy not supported")

// ErrContextUnavailable is returned by AcquireContext when every strategy
// failed. Rendering cannot start without a context; initializing a surface
// without one is a programmer error.
var ErrContextUnavailable = errors.New("no rendering context available")

// ContextConfig holds the configuration attributes shared by all context
// strategies: the pixel format of the context's default framebuffer and the
// requested client API version.
type ContextConfig struct {
	RedBits, GreenBits, BlueBits, AlphaBits int
	DepthBits, StencilBits                  int

	// ClientVersion is the OpenGL ES client version to request (2 or 3).
	ClientVersion int
}

// DefaultContextConfig returns a plain RGBA8888 ES2 configuration, the
// least-demanding attribute set and therefore the most widely supported.
func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		RedBits:       8,
		GreenBits:     8,
		BlueBits:      8,
		AlphaBits:     8,
		ClientVersion: 2,
	}
}

// ContextStrategy is one procedure for obtaining a hardware graphics context.
// Strategies are tried in fixed priority order by AcquireContext.
type ContextStrategy interface {
	// Name identifies the strategy in logs and on acquired contexts.
	Name() string

	// Supported is a fast capability probe. It is advisory only: a strategy
	// may report supported and still fail in Acquire (for example at config
	// selection time on some drivers), so callers must always be prepared
	// to fall through to the next strategy.
	Supported() bool

	// Acquire obtains a context with the given configuration attributes.
	Acquire(cfg ContextConfig) (*RenderContext, error)
}

// RenderContext is an acquired hardware graphics context handle, tagged with
// the strategy that produced it. It is released exactly once; extra Release
// calls are no-ops.
type RenderContext struct {
	strategy string
	handle   uintptr
	release  func()
	released atomic.Bool
}

// NewRenderContext wraps a native context handle. The release func is invoked
// at most once, by the first Release call.
func NewRenderContext(strategy string, handle uintptr, release func()) *RenderContext {
	return &RenderContext{strategy: strategy, handle: handle, release: release}
}

// Strategy returns the name of the strategy that produced this context.
func (c *RenderContext) Strategy() string { return c.strategy }

// Handle returns the native context handle.
func (c *RenderContext) Handle() uintptr { return c.handle }

// Released reports whether the context has been released.
func (c *RenderContext) Released() bool { return c.released.Load() }

// Release frees the native context. Safe to call multiple times; only the
// first call has an effect.
func (c *RenderContext) Release() {
	if c.released.CompareAndSwap(false, true) && c.release != nil {
		c.release()
	}
}

// AcquireContext tries the given strategies in order and returns the first
// successfully acquired context. A strategy that probes as unsupported or
// fails to acquire is a soft failure: its fault is recorded and the next
// strategy is tried. When every strategy fails the returned error matches
// ErrContextUnavailable and carries the last recorded fault.
func AcquireContext(cfg ContextConfig, strategies ...ContextStrategy) (*RenderContext, error) {
	var lastErr error

	for _, s := range strategies {
		if !s.Supported() {
			lastErr = fmt.Errorf("%s: %w", s.Name(), ErrStrategyUnsupported)
			continue
		}
		rc, err := s.Acquire(cfg)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", s.Name(), err)
			continue
		}
		return rc, nil
	}

	if lastErr == nil {
		return nil, fmt.Errorf("%w: no strategies configured", ErrContextUnavailable)
	}
	return nil, fmt.Errorf("%w: %v", ErrContextUnavailable, lastErr)
}

// Strategy registry. Platform files register default strategies from init()
// in priority order (modern before legacy).
var (
	strategyMu        sync.RWMutex
	defaultStrategies []ContextStrategy
)

// RegisterStrategy appends a strategy to the default strategy list. Typically
// called from init() in platform binding files; priority is registration
// order.
func RegisterStrategy(s ContextStrategy) {
	if s == nil {
		return
	}
	strategyMu.Lock()
	defer strategyMu.Unlock()
	defaultStrategies = append(defaultStrategies, s)
}

// DefaultStrategies returns the registered default strategies in priority
// order. The result may be empty on platforms without bundled bindings.
func DefaultStrategies() []ContextStrategy {
	strategyMu.RLock()
	defer strategyMu.RUnlock()
	out := make([]ContextStrategy, len(defaultStrategies))
	copy(out, defaultStrategies)
	return out
}
