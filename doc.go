// Package videoview binds live video tracks to an on-screen rendering
// surface, managing the lifecycle of the hardware graphics context and the
// per-track renderer across attach/detach events of the hosting view.
//
// Key pieces include:
//   - VideoView, the adapter tying a MediaStream's first video track to a Surface
//   - Graphics context acquisition with fixed-order strategy fallback
//   - Surface property plumbing (mirror, scale mode, stack order)
//   - FrameTrack/RemoteTrack/PatternTrack sources that fan frames out to attached renderers
//
// # Lifecycle
//
// The graphics context and renderer exist only while the view is attached to
// a window and a track is assigned. Window attach and track assignment both
// funnel into an idempotent start; detach and track removal both funnel into
// an idempotent stop. A VideoView holds at most one renderer at any time.
//
//	Attach/SetStream -> tryStart: acquire context -> Surface.Init -> Track.AddRenderer
//	Detach/SetStream(nil) -> stop: Track.RemoveRenderer -> clear -> Surface.Release
//
// # Graphics Contexts
//
// Context acquisition tries strategies in fixed priority order. The default
// Linux strategies bind libEGL via purego (CGO_ENABLED=0): the
// platform-display path (EGL 1.5) first, falling back to the classic
// eglGetDisplay path. A strategy's Supported probe is advisory only; a
// strategy may probe as supported and still fail at config selection, in
// which case the next strategy is tried.
//
// # Build Tags
//
// The noegl tag disables the EGL bindings; no default strategies are
// registered and callers must supply their own.
//
// # Threading
//
// All VideoView mutation must happen on the caller's UI/event thread; the
// adapter performs no internal locking by contract. Tracks deliver frames
// from their own goroutines; Surface implementations synchronize frame
// presentation against property writes.
package videoview
