package mqtt

import (
	"testing"
)

func payloads(msgs []bufferedMsg) []byte {
	out := make([]byte, len(msgs))
	for i, m := range msgs {
		out[i] = m.payload[0]
	}
	return out
}

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(4)
	if got := rb.drainAll(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestRingBufferKeepsNewestWhenFull(t *testing.T) {
	rb := newRingBuffer(3)
	for i := 0; i < 5; i++ {
		rb.push(bufferedMsg{topic: "t", payload: []byte{byte(i)}})
	}
	if rb.len() != 3 {
		t.Fatalf("expected len 3, got %d", rb.len())
	}

	got := payloads(rb.drainAll())
	if string(got) != string([]byte{2, 3, 4}) {
		t.Errorf("expected oldest two dropped, got %v", got)
	}
	if rb.len() != 0 {
		t.Errorf("expected len 0 after drain, got %d", rb.len())
	}
}

func TestRingBufferReusableAfterDrain(t *testing.T) {
	rb := newRingBuffer(3)
	rb.push(bufferedMsg{payload: []byte{1}})
	rb.push(bufferedMsg{payload: []byte{2}})
	rb.drainAll()

	rb.push(bufferedMsg{payload: []byte{7}})
	rb.push(bufferedMsg{payload: []byte{8}})
	if got := payloads(rb.drainAll()); string(got) != string([]byte{7, 8}) {
		t.Errorf("second cycle: got %v", got)
	}
}

func TestRingBufferPreservesFields(t *testing.T) {
	rb := newRingBuffer(2)
	rb.push(bufferedMsg{topic: "sensors/n1/system", payload: []byte(`{}`), qos: 1, retained: true})

	got := rb.drainAll()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].topic != "sensors/n1/system" || got[0].qos != 1 || !got[0].retained {
		t.Errorf("fields not preserved: %+v", got[0])
	}
}

func TestOutboxBuffersWhileOffline(t *testing.T) {
	var sent []bufferedMsg
	o := newOutbox(8, func(m bufferedMsg) { sent = append(sent, m) })

	o.publish(bufferedMsg{payload: []byte{1}})
	o.publish(bufferedMsg{payload: []byte{2}})
	if len(sent) != 0 {
		t.Fatalf("expected nothing sent while offline, got %d", len(sent))
	}
	if o.buffered() != 2 {
		t.Errorf("expected 2 buffered, got %d", o.buffered())
	}

	if n := o.online(); n != 2 {
		t.Errorf("expected 2 replayed, got %d", n)
	}
	o.publish(bufferedMsg{payload: []byte{3}})

	if got := payloads(sent); string(got) != string([]byte{1, 2, 3}) {
		t.Errorf("expected replay in order then live send, got %v", got)
	}
	if !o.isOnline() {
		t.Error("expected online")
	}
}

func TestOutboxOfflineAgain(t *testing.T) {
	var sent int
	o := newOutbox(8, func(bufferedMsg) { sent++ })
	o.online()
	o.offline()

	o.publish(bufferedMsg{payload: []byte{1}})
	if sent != 0 || o.buffered() != 1 {
		t.Errorf("expected message buffered after connection loss, sent=%d buffered=%d", sent, o.buffered())
	}
}
