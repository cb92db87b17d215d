//go:build linux && !noegl

// EGL context strategies backed by libEGL, loaded dynamically via purego
// (CGO_ENABLED=0).
//
// Two strategies are registered, in priority order:
//   - egl-platform: eglGetPlatformDisplay (EGL 1.5) with the surfaceless
//     platform. Preferred, but some drivers expose the entry point and still
//     fail at display or config selection time.
//   - egl-display: the classic eglGetDisplay(EGL_DEFAULT_DISPLAY) path.
//
// Library locations checked (in order):
//   - VIDEOVIEW_EGL_LIB_PATH environment variable
//   - System library paths

package videoview

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	eglOnce    sync.Once
	eglHandle  uintptr
	eglInitErr error

	// Set during load when the EGL 1.5 entry point resolves.
	eglHasPlatformDisplay bool
)

// libEGL function pointers
var (
	eglGetError           func() int32
	eglQueryString        func(display uintptr, name int32) uintptr
	eglGetDisplay         func(nativeDisplay uintptr) uintptr
	eglGetPlatformDisplay func(platform uint32, nativeDisplay uintptr, attribs *uintptr) uintptr
	eglInitialize         func(display uintptr, major, minor *int32) int32
	eglBindAPI            func(api uint32) int32
	eglChooseConfig       func(display uintptr, attribs *int32, configs *uintptr, configSize int32, numConfig *int32) int32
	eglCreateContext      func(display, config, shareContext uintptr, attribs *int32) uintptr
	eglDestroyContext     func(display, ctx uintptr) int32
	eglTerminate          func(display uintptr) int32
)

// Constants from EGL/egl.h
const (
	eglNoDisplay uintptr = 0
	eglNoContext uintptr = 0

	eglFalse int32 = 0
	eglTrue  int32 = 1

	eglAlphaSize            int32 = 0x3021
	eglBlueSize             int32 = 0x3022
	eglGreenSize            int32 = 0x3023
	eglRedSize              int32 = 0x3024
	eglDepthSize            int32 = 0x3025
	eglStencilSize          int32 = 0x3026
	eglNone                 int32 = 0x3038
	eglRenderableType       int32 = 0x3040
	eglExtensions           int32 = 0x3055
	eglContextClientVersion int32 = 0x3098

	eglOpenGLES2Bit int32 = 0x0004
	eglOpenGLES3Bit int32 = 0x0040

	eglOpenGLESAPI uint32 = 0x30A0

	// EGL_MESA_platform_surfaceless
	eglPlatformSurfacelessMESA uint32 = 0x31DD
)

func init() {
	RegisterStrategy(eglPlatformStrategy{})
	RegisterStrategy(eglDisplayStrategy{})
}

// EGLAvailable reports whether libEGL could be loaded at runtime.
func EGLAvailable() bool {
	return loadEGL() == nil
}

// loadEGL loads libEGL and resolves symbols.
func loadEGL() error {
	eglOnce.Do(func() {
		eglInitErr = loadEGLLib()
	})
	return eglInitErr
}

func loadEGLLib() error {
	paths := eglLibPaths()

	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			eglHandle = handle
			loadEGLSymbols()
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to load libEGL: %w", lastErr)
	}
	return errors.New("libEGL not found in any standard location")
}

func eglLibPaths() []string {
	var paths []string

	if envPath := os.Getenv("VIDEOVIEW_EGL_LIB_PATH"); envPath != "" {
		paths = append(paths, envPath)
	}

	paths = append(paths,
		"libEGL.so.1",
		"libEGL.so",
		"/usr/lib/x86_64-linux-gnu/libEGL.so.1",
		"/usr/lib/aarch64-linux-gnu/libEGL.so.1",
		"/usr/local/lib/libEGL.so.1",
		"/usr/lib/libEGL.so.1",
	)

	return paths
}

func loadEGLSymbols() {
	purego.RegisterLibFunc(&eglGetError, eglHandle, "eglGetError")
	purego.RegisterLibFunc(&eglQueryString, eglHandle, "eglQueryString")
	purego.RegisterLibFunc(&eglGetDisplay, eglHandle, "eglGetDisplay")
	purego.RegisterLibFunc(&eglInitialize, eglHandle, "eglInitialize")
	purego.RegisterLibFunc(&eglBindAPI, eglHandle, "eglBindAPI")
	purego.RegisterLibFunc(&eglChooseConfig, eglHandle, "eglChooseConfig")
	purego.RegisterLibFunc(&eglCreateContext, eglHandle, "eglCreateContext")
	purego.RegisterLibFunc(&eglDestroyContext, eglHandle, "eglDestroyContext")
	purego.RegisterLibFunc(&eglTerminate, eglHandle, "eglTerminate")

	// EGL 1.5 entry point; absent on older implementations.
	if addr, err := purego.Dlsym(eglHandle, "eglGetPlatformDisplay"); err == nil && addr != 0 {
		purego.RegisterLibFunc(&eglGetPlatformDisplay, eglHandle, "eglGetPlatformDisplay")
		eglHasPlatformDisplay = true
	}
}

// goStringFromPtr converts a C string pointer to a Go string.
func goStringFromPtr(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	p := *(*unsafe.Pointer)(unsafe.Pointer(&ptr))
	var length int
	for {
		if *(*byte)(unsafe.Add(p, length)) == 0 {
			break
		}
		length++
		if length > 4096 { // Safety limit
			break
		}
	}
	if length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(p), length))
}

// eglPlatformStrategy acquires a context through eglGetPlatformDisplay with
// the surfaceless platform. This is the modern strategy.
type eglPlatformStrategy struct{}

func (eglPlatformStrategy) Name() string { return "egl-platform" }

func (eglPlatformStrategy) Supported() bool {
	if loadEGL() != nil || !eglHasPlatformDisplay {
		return false
	}
	return strings.Contains(eglClientExtensions(), "EGL_MESA_platform_surfaceless")
}

func (eglPlatformStrategy) Acquire(cfg ContextConfig) (*RenderContext, error) {
	if err := loadEGL(); err != nil {
		return nil, err
	}
	if !eglHasPlatformDisplay {
		return nil, ErrStrategyUnsupported
	}

	display := eglGetPlatformDisplay(eglPlatformSurfacelessMESA, 0, nil)
	if display == eglNoDisplay {
		return nil, errors.New("eglGetPlatformDisplay returned no display")
	}
	return acquireOnDisplay("egl-platform", display, cfg)
}

// eglDisplayStrategy acquires a context through the classic
// eglGetDisplay(EGL_DEFAULT_DISPLAY) path. This is the legacy strategy.
type eglDisplayStrategy struct{}

func (eglDisplayStrategy) Name() string { return "egl-display" }

func (eglDisplayStrategy) Supported() bool {
	return loadEGL() == nil
}

func (eglDisplayStrategy) Acquire(cfg ContextConfig) (*RenderContext, error) {
	if err := loadEGL(); err != nil {
		return nil, err
	}

	display := eglGetDisplay(0 /* EGL_DEFAULT_DISPLAY */)
	if display == eglNoDisplay {
		return nil, errors.New("eglGetDisplay returned no display")
	}
	return acquireOnDisplay("egl-display", display, cfg)
}

// acquireOnDisplay runs the shared initialize/choose-config/create-context
// sequence. The display is terminated on every failure path; on success its
// lifetime is tied to the returned context's Release.
func acquireOnDisplay(strategy string, display uintptr, cfg ContextConfig) (*RenderContext, error) {
	var major, minor int32
	if eglInitialize(display, &major, &minor) == eglFalse {
		return nil, fmt.Errorf("eglInitialize failed: 0x%04x", eglGetError())
	}

	if eglBindAPI(eglOpenGLESAPI) == eglFalse {
		eglTerminate(display)
		return nil, fmt.Errorf("eglBindAPI failed: 0x%04x", eglGetError())
	}

	attribs := configAttributes(cfg)
	var config uintptr
	var numConfig int32
	if eglChooseConfig(display, &attribs[0], &config, 1, &numConfig) == eglFalse || numConfig == 0 {
		eglTerminate(display)
		// The most common driver failure mode: the display initializes but
		// no config matches the requested attributes.
		return nil, errors.New("unable to find any matching EGL config")
	}

	version := cfg.ClientVersion
	if version == 0 {
		version = 2
	}
	ctxAttribs := []int32{eglContextClientVersion, int32(version), eglNone}
	ctx := eglCreateContext(display, config, eglNoContext, &ctxAttribs[0])
	if ctx == eglNoContext {
		eglTerminate(display)
		return nil, fmt.Errorf("eglCreateContext failed: 0x%04x", eglGetError())
	}

	release := func() {
		eglDestroyContext(display, ctx)
		eglTerminate(display)
	}
	return NewRenderContext(strategy, ctx, release), nil
}

func configAttributes(cfg ContextConfig) []int32 {
	renderable := eglOpenGLES2Bit
	if cfg.ClientVersion >= 3 {
		renderable = eglOpenGLES3Bit
	}
	return []int32{
		eglRedSize, int32(cfg.RedBits),
		eglGreenSize, int32(cfg.GreenBits),
		eglBlueSize, int32(cfg.BlueBits),
		eglAlphaSize, int32(cfg.AlphaBits),
		eglDepthSize, int32(cfg.DepthBits),
		eglStencilSize, int32(cfg.StencilBits),
		eglRenderableType, renderable,
		eglNone,
	}
}

// eglClientExtensions returns the client extension string, or "" when the
// implementation predates EGL_EXT_client_extensions.
func eglClientExtensions() string {
	if loadEGL() != nil {
		return ""
	}
	return goStringFromPtr(eglQueryString(eglNoDisplay, eglExtensions))
}
