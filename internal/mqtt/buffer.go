package mqtt

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO that stores messages while disconnected.
// Not safe for concurrent use; outbox synchronises it.
type ringBuffer struct {
	buf      []bufferedMsg
	capacity int
	head     int // next write position
	count    int
	overflow bool // true if any message was dropped since last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		buf:      make([]bufferedMsg, capacity),
		capacity: capacity,
	}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	if r.count == r.capacity {
		if !r.overflow {
			log.Warn().Int("capacity", r.capacity).Msg("mqtt buffer full, dropping oldest")
			r.overflow = true
		}
		// head points at the oldest entry when full
		r.buf[r.head] = msg
		r.head = (r.head + 1) % r.capacity
		return
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % r.capacity
	r.count++
}

func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}

	result := make([]bufferedMsg, r.count)
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}

	r.count = 0
	r.head = 0
	r.overflow = false
	return result
}

func (r *ringBuffer) len() int {
	return r.count
}

// outbox sends messages while connected and buffers them otherwise. The
// connected flag is owned by the connection handlers.
type outbox struct {
	mu        sync.Mutex
	ring      *ringBuffer
	connected bool
	send      func(bufferedMsg)
}

func newOutbox(capacity int, send func(bufferedMsg)) *outbox {
	return &outbox{ring: newRingBuffer(capacity), send: send}
}

func (o *outbox) publish(msg bufferedMsg) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.connected {
		o.ring.push(msg)
		return
	}
	o.send(msg)
}

// online marks the connection up and replays anything buffered, oldest first.
func (o *outbox) online() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.connected = true
	pending := o.ring.drainAll()
	for _, msg := range pending {
		o.send(msg)
	}
	return len(pending)
}

func (o *outbox) offline() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.connected = false
}

func (o *outbox) isOnline() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.connected
}

func (o *outbox) buffered() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ring.len()
}
