package videoview

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pion/rtp"
)

// mockRTPReader implements RTPReader for testing
type mockRTPReader struct {
	mu      sync.Mutex
	packets []*rtp.Packet
	index   int
}

func (r *mockRTPReader) ReadRTP() (*rtp.Packet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index >= len(r.packets) {
		return nil, io.EOF
	}
	pkt := r.packets[r.index]
	r.index++
	return pkt, nil
}

func makePackets(n int) []*rtp.Packet {
	packets := make([]*rtp.Packet, n)
	for i := range packets {
		packets[i] = &rtp.Packet{
			Header:  rtp.Header{SequenceNumber: uint16(i), Timestamp: uint32(i * 3000)},
			Payload: []byte{0x01, 0x02, 0x03},
		}
	}
	return packets
}

// frameEveryPacket assembles one frame per pushed packet.
func frameEveryPacket(pkt *rtp.Packet) (*VideoFrame, error) {
	return NewI420Frame(16, 16), nil
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestRemoteTrackDeliversFrames(t *testing.T) {
	reader := &mockRTPReader{packets: makePackets(5)}
	track, err := NewRemoteTrack(RemoteTrackConfig{
		ID:        "remote0",
		Reader:    reader,
		Assembler: FrameAssemblerFunc(frameEveryPacket),
	})
	if err != nil {
		t.Fatalf("NewRemoteTrack failed: %v", err)
	}

	r := &countRenderer{}
	track.AddRenderer(r)

	if err := track.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer track.Close()

	waitFor(t, time.Second, func() bool { return r.Frames() == 5 })

	stats := track.Stats()
	if stats.PacketsReceived != 5 || stats.FramesDelivered != 5 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestRemoteTrackAssemblerBuffering(t *testing.T) {
	reader := &mockRTPReader{packets: makePackets(4)}
	count := 0
	// A frame completes every second packet.
	assembler := FrameAssemblerFunc(func(pkt *rtp.Packet) (*VideoFrame, error) {
		count++
		if count%2 == 0 {
			return NewI420Frame(16, 16), nil
		}
		return nil, nil
	})

	track, err := NewRemoteTrack(RemoteTrackConfig{ID: "remote0", Reader: reader, Assembler: assembler})
	if err != nil {
		t.Fatalf("NewRemoteTrack failed: %v", err)
	}
	r := &countRenderer{}
	track.AddRenderer(r)

	if err := track.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer track.Close()

	waitFor(t, time.Second, func() bool { return r.Frames() == 2 })
}

func TestRemoteTrackAssemblyErrors(t *testing.T) {
	reader := &mockRTPReader{packets: makePackets(3)}
	var (
		errMu sync.Mutex
		seen  int
	)
	track, err := NewRemoteTrack(RemoteTrackConfig{
		ID:     "remote0",
		Reader: reader,
		Assembler: FrameAssemblerFunc(func(pkt *rtp.Packet) (*VideoFrame, error) {
			return nil, errors.New("corrupt payload")
		}),
		OnError: func(error) {
			errMu.Lock()
			seen++
			errMu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("NewRemoteTrack failed: %v", err)
	}

	if err := track.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer track.Close()

	waitFor(t, time.Second, func() bool {
		errMu.Lock()
		defer errMu.Unlock()
		return seen == 3
	})

	if track.Stats().Errors != 3 {
		t.Errorf("expected 3 recorded errors, got %d", track.Stats().Errors)
	}
}

func TestRemoteTrackStartStop(t *testing.T) {
	reader := &mockRTPReader{}
	track, err := NewRemoteTrack(RemoteTrackConfig{
		ID:        "remote0",
		Reader:    reader,
		Assembler: FrameAssemblerFunc(frameEveryPacket),
	})
	if err != nil {
		t.Fatalf("NewRemoteTrack failed: %v", err)
	}

	if err := track.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := track.Start(); err == nil {
		t.Error("second Start should fail while running")
	}

	track.Stop()
	track.Stop() // idempotent
	if err := track.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestRemoteTrackConfigValidation(t *testing.T) {
	assembler := FrameAssemblerFunc(frameEveryPacket)

	if _, err := NewRemoteTrack(RemoteTrackConfig{Reader: &mockRTPReader{}, Assembler: assembler}); err == nil {
		t.Error("missing id should fail")
	}
	if _, err := NewRemoteTrack(RemoteTrackConfig{ID: "x", Assembler: assembler}); err == nil {
		t.Error("missing reader should fail")
	}
	if _, err := NewRemoteTrack(RemoteTrackConfig{ID: "x", Reader: &mockRTPReader{}}); err == nil {
		t.Error("missing assembler should fail")
	}
	if _, err := NewRemoteTrackFrom(nil, assembler); err == nil {
		t.Error("nil pion track should fail")
	}
}
