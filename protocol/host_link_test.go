package protocol

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeDevice runs a Link on one end of a pipe and writes its acks back
type fakeDevice struct {
	conn net.Conn
	link *Link

	mute bool

	mu   sync.Mutex
	cmds []Command
}

func newFakeDevice(conn net.Conn, mute bool) *fakeDevice {
	d := &fakeDevice{conn: conn, mute: mute}
	d.link = NewLink(NewScratchOutput(), d.handle)
	go d.run()
	return d
}

func (d *fakeDevice) handle(cmd Command) {
	d.mu.Lock()
	d.cmds = append(d.cmds, cmd)
	d.mu.Unlock()
}

func (d *fakeDevice) run() {
	fifo := NewFifoBuffer(256)
	buf := make([]byte, 64)
	for {
		n, err := d.conn.Read(buf)
		if err != nil {
			return
		}
		fifo.Write(buf[:n])

		out := d.link.output.(*ScratchOutput)
		out.Reset()
		d.link.Receive(fifo)

		if !d.mute && out.CurPosition() > 0 {
			if _, err := d.conn.Write(out.Result()); err != nil {
				return
			}
		}
	}
}

func (d *fakeDevice) commands() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Command(nil), d.cmds...)
}

func TestHostLinkSendAcked(t *testing.T) {
	hostEnd, devEnd := net.Pipe()
	dev := newFakeDevice(devEnd, false)
	defer devEnd.Close()

	link := NewHostLink(hostEnd)
	defer link.Close()

	if err := link.Send(KeyCommand('1')); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := link.Send(Command{ID: CmdSetBPM, Args: [MaxArgs]uint32{90}}, KeyCommand(' ')); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	cmds := dev.commands()
	if len(cmds) != 3 {
		t.Fatalf("Device received %+v", cmds)
	}
	if cmds[1].ID != CmdSetBPM || cmds[2] != KeyCommand(' ') {
		t.Errorf("Device received %+v", cmds)
	}
	if link.Sequence() != 0x12 {
		t.Errorf("Sequence = %#x, want 0x12", link.Sequence())
	}
}

func TestHostLinkAdoptsDeviceSequence(t *testing.T) {
	hostEnd, devEnd := net.Pipe()
	dev := newFakeDevice(devEnd, false)
	defer devEnd.Close()

	link := NewHostLink(hostEnd)
	defer link.Close()

	// The device expects 0x11 while the host starts over at 0x13
	link.writeMutex.Lock()
	link.seq = 0x13
	link.writeMutex.Unlock()
	atomic.StoreUint32(&dev.link.nextSequence, 0x11)

	if err := link.Send(KeyCommand('w')); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if cmds := dev.commands(); len(cmds) != 1 {
		t.Errorf("Device received %+v", cmds)
	}
	if link.Sequence() != 0x12 {
		t.Errorf("Sequence = %#x, want 0x12", link.Sequence())
	}
}

func TestHostLinkTimeout(t *testing.T) {
	hostEnd, devEnd := net.Pipe()
	newFakeDevice(devEnd, true)
	defer devEnd.Close()

	link := NewHostLink(hostEnd)
	link.AckTimeout = 20 * time.Millisecond
	link.Retries = 1
	defer link.Close()

	err := link.Send(KeyCommand('e'))
	if !errors.Is(err, ErrAckTimeout) {
		t.Errorf("Expected ErrAckTimeout, got %v", err)
	}
}

func TestHostLinkNoAck(t *testing.T) {
	hostEnd, devEnd := net.Pipe()
	dev := newFakeDevice(devEnd, true)
	defer devEnd.Close()

	link := NewHostLink(hostEnd)
	link.AckTimeout = 0
	defer link.Close()

	for _, key := range []byte("abc") {
		if err := link.Send(KeyCommand(key)); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}
	deadline := time.Now().Add(time.Second)
	for len(dev.commands()) < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if cmds := dev.commands(); len(cmds) != 3 {
		t.Errorf("Device received %+v", cmds)
	}
}

func TestHostLinkRestart(t *testing.T) {
	hostEnd, devEnd := net.Pipe()
	dev := newFakeDevice(devEnd, false)
	defer devEnd.Close()

	link := NewHostLink(hostEnd)
	defer link.Close()

	// Device still holds the previous session's sequence
	atomic.StoreUint32(&dev.link.nextSequence, 0x14)

	if err := link.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if link.Sequence() != 0x11 {
		t.Errorf("Sequence = %#x, want 0x11", link.Sequence())
	}
	if err := link.Send(KeyCommand('r')); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	cmds := dev.commands()
	if len(cmds) != 1 || cmds[0] != KeyCommand('r') {
		t.Errorf("Device received %+v", cmds)
	}
	if got := dev.link.Stats().Restarts; got != 1 {
		t.Errorf("Expected 1 restart, got %d", got)
	}
}
