package videoview

import (
	"sync"

	"github.com/pion/webrtc/v4"
)

// Re-export pion's RTPCodecType for convenience
type RTPCodecType = webrtc.RTPCodecType

const (
	RTPCodecTypeUnknown = webrtc.RTPCodecTypeUnknown
	RTPCodecTypeAudio   = webrtc.RTPCodecTypeAudio
	RTPCodecTypeVideo   = webrtc.RTPCodecTypeVideo
)

// Renderer is a live binding that pulls frames from a video track and
// presents them. A renderer must be explicitly closed when it is removed
// from its track; a closed renderer drops all further frames.
type Renderer interface {
	// RenderFrame presents a frame. Called from the track's delivery
	// goroutine; the frame is only valid for the duration of the call.
	RenderFrame(frame *VideoFrame)

	// Close disposes the renderer. After Close returns, RenderFrame is a no-op.
	Close() error
}

// VideoTrack is the track-side collaborator of a VideoView: a source of
// video frames that renderers can be attached to and detached from.
//
// Track identity is Go interface identity. A VideoView compares the track
// values it is handed with ==, so the same track wrapped in two different
// adapter instances counts as two different tracks. This is a deliberate
// contract, matching renderer attachment being per track instance.
type VideoTrack interface {
	// ID returns the opaque track identifier.
	ID() string

	// Kind returns the track kind; always video for tracks in this package.
	Kind() RTPCodecType

	// AddRenderer attaches a renderer to the track. Attaching a renderer
	// that is already attached is a no-op.
	AddRenderer(r Renderer)

	// RemoveRenderer detaches a renderer from the track. Removing a
	// renderer that is not attached is a no-op.
	RemoveRenderer(r Renderer)
}

// MediaStream is an ordered collection of video tracks. A VideoView renders
// only the first track, if any.
type MediaStream interface {
	// ID returns the unique identifier for this stream.
	ID() string

	// VideoTracks returns the stream's video tracks in order.
	VideoTracks() []VideoTrack
}

// FrameTrack is a VideoTrack fed by explicit DeliverFrame calls. It fans
// every delivered frame out to all attached renderers.
type FrameTrack struct {
	id string

	mu        sync.RWMutex
	renderers []Renderer
}

// NewFrameTrack creates a new frame-delivery track.
func NewFrameTrack(id string) *FrameTrack {
	return &FrameTrack{id: id}
}

func (t *FrameTrack) ID() string         { return t.id }
func (t *FrameTrack) Kind() RTPCodecType { return RTPCodecTypeVideo }

// AddRenderer attaches a renderer. Renderer identity is interface identity.
func (t *FrameTrack) AddRenderer(r Renderer) {
	if r == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, existing := range t.renderers {
		if existing == r {
			return
		}
	}
	t.renderers = append(t.renderers, r)
}

// RemoveRenderer detaches a renderer previously attached with AddRenderer.
func (t *FrameTrack) RemoveRenderer(r Renderer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, existing := range t.renderers {
		if existing == r {
			t.renderers = append(t.renderers[:i], t.renderers[i+1:]...)
			return
		}
	}
}

// RendererCount returns the number of attached renderers.
func (t *FrameTrack) RendererCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.renderers)
}

// DeliverFrame fans a frame out to all attached renderers. The frame is only
// guaranteed valid for the duration of the call; renderers that keep it must
// Clone it.
func (t *FrameTrack) DeliverFrame(frame *VideoFrame) {
	if frame == nil {
		return
	}
	t.mu.RLock()
	renderers := make([]Renderer, len(t.renderers))
	copy(renderers, t.renderers)
	t.mu.RUnlock()

	for _, r := range renderers {
		r.RenderFrame(frame)
	}
}

// Stream is a basic MediaStream implementation holding an ordered track list.
type Stream struct {
	id string

	mu     sync.RWMutex
	tracks []VideoTrack
}

// NewStream creates a media stream with the given tracks, in order.
func NewStream(id string, tracks ...VideoTrack) *Stream {
	s := &Stream{id: id}
	s.tracks = append(s.tracks, tracks...)
	return s
}

func (s *Stream) ID() string { return s.id }

// VideoTracks returns the stream's tracks in order.
func (s *Stream) VideoTracks() []VideoTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]VideoTrack, len(s.tracks))
	copy(result, s.tracks)
	return result
}

// AddTrack appends a track to the stream.
func (s *Stream) AddTrack(track VideoTrack) {
	if track == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = append(s.tracks, track)
}

// RemoveTrack removes a track from the stream by identity.
func (s *Stream) RemoveTrack(track VideoTrack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tracks {
		if t == track {
			s.tracks = append(s.tracks[:i], s.tracks[i+1:]...)
			return
		}
	}
}
