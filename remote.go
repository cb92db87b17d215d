package videoview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

// RTPReader reads RTP packets from some transport.
type RTPReader interface {
	// ReadRTP reads the next packet (blocking). io.EOF ends the stream.
	ReadRTP() (*rtp.Packet, error)
}

// FrameAssembler turns a stream of RTP packets into video frames.
// Implementations own depacketization and decoding; this package only moves
// the resulting frames to renderers.
type FrameAssembler interface {
	// Push feeds one packet. It returns a frame when one is complete, or
	// nil while buffering.
	Push(pkt *rtp.Packet) (*VideoFrame, error)
}

// FrameAssemblerFunc adapts a function to the FrameAssembler interface.
type FrameAssemblerFunc func(pkt *rtp.Packet) (*VideoFrame, error)

func (f FrameAssemblerFunc) Push(pkt *rtp.Packet) (*VideoFrame, error) { return f(pkt) }

// RemoteTrackStats counts remote track activity.
type RemoteTrackStats struct {
	PacketsReceived uint64
	BytesReceived   uint64
	FramesDelivered uint64
	Errors          uint64
}

// RemoteTrackConfig configures a RemoteTrack.
type RemoteTrackConfig struct {
	ID        string         // Track identifier; required
	Reader    RTPReader      // Packet source; required
	Assembler FrameAssembler // Packet-to-frame assembly; required
	OnError   func(error)    // Non-fatal read/assembly error callback
}

// RemoteTrack is a VideoTrack fed from RTP: it reads packets on its own
// goroutine, assembles them into frames, and fans the frames out to attached
// renderers. Frames are delivered on the track's goroutine.
type RemoteTrack struct {
	FrameTrack

	reader    RTPReader
	assembler FrameAssembler
	onError   func(error)

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	stats   RemoteTrackStats
	statsMu sync.Mutex
}

// NewRemoteTrack creates a remote track. Start must be called before frames
// flow.
func NewRemoteTrack(config RemoteTrackConfig) (*RemoteTrack, error) {
	if config.ID == "" {
		return nil, errors.New("track id is required")
	}
	if config.Reader == nil {
		return nil, errors.New("reader is required")
	}
	if config.Assembler == nil {
		return nil, errors.New("assembler is required")
	}

	return &RemoteTrack{
		FrameTrack: FrameTrack{id: config.ID},
		reader:     config.Reader,
		assembler:  config.Assembler,
		onError:    config.OnError,
	}, nil
}

// NewRemoteTrackFrom creates a remote track reading from a pion TrackRemote.
func NewRemoteTrackFrom(track *webrtc.TrackRemote, assembler FrameAssembler) (*RemoteTrack, error) {
	if track == nil {
		return nil, errors.New("track is required")
	}
	if track.Kind() != webrtc.RTPCodecTypeVideo {
		return nil, fmt.Errorf("track %s is not a video track", track.ID())
	}
	return NewRemoteTrack(RemoteTrackConfig{
		ID:        track.ID(),
		Reader:    trackRemoteReader{track},
		Assembler: assembler,
	})
}

// trackRemoteReader adapts webrtc.TrackRemote to RTPReader.
type trackRemoteReader struct {
	track *webrtc.TrackRemote
}

func (r trackRemoteReader) ReadRTP() (*rtp.Packet, error) {
	pkt, _, err := r.track.ReadRTP()
	return pkt, err
}

// Start begins reading packets.
func (t *RemoteTrack) Start() error {
	if !t.running.CompareAndSwap(false, true) {
		return errors.New("track already running")
	}

	t.ctx, t.cancel = context.WithCancel(context.Background())
	t.wg.Add(1)
	go t.processLoop()
	return nil
}

// Stop halts packet reading. Attached renderers stay attached. Idempotent.
func (t *RemoteTrack) Stop() {
	if !t.running.CompareAndSwap(true, false) {
		return
	}
	t.cancel()
	t.wg.Wait()
}

// Close stops the track.
func (t *RemoteTrack) Close() error {
	t.Stop()
	return nil
}

// Stats returns a snapshot of track counters.
func (t *RemoteTrack) Stats() RemoteTrackStats {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	return t.stats
}

func (t *RemoteTrack) processLoop() {
	defer t.wg.Done()

	for {
		select {
		case <-t.ctx.Done():
			return
		default:
		}

		pkt, err := t.reader.ReadRTP()
		if err != nil {
			if t.ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			t.handleError(err)
			continue
		}
		if pkt == nil {
			continue
		}

		t.statsMu.Lock()
		t.stats.PacketsReceived++
		t.stats.BytesReceived += uint64(len(pkt.Payload))
		t.statsMu.Unlock()

		frame, err := t.assembler.Push(pkt)
		if err != nil {
			t.handleError(err)
			continue
		}
		if frame == nil {
			continue // Frame not complete yet
		}

		t.DeliverFrame(frame)

		t.statsMu.Lock()
		t.stats.FramesDelivered++
		t.statsMu.Unlock()
	}
}

func (t *RemoteTrack) handleError(err error) {
	t.statsMu.Lock()
	t.stats.Errors++
	t.statsMu.Unlock()

	if t.onError != nil {
		t.onError(err)
	}
}
