//go:build !linux || noegl

package videoview

// EGLAvailable reports whether libEGL could be loaded at runtime. Always
// false on builds without the EGL bindings; no default strategies are
// registered and callers must supply their own via ViewConfig.Strategies.
func EGLAvailable() bool {
	return false
}
