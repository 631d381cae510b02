package main

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/tarm/serial"

	"github.com/serebryakov7/obdpid/internal/cache"
	"github.com/serebryakov7/obdpid/internal/obdcan"
	"github.com/serebryakov7/obdpid/internal/publish"
)

const (
	interFrameGap = 4 * time.Millisecond
	// frameWireSize is this agent's wire framing for an OBD-II CAN
	// frame read over a serial bridge: 2 bytes identifier (big
	// endian), 1 byte dlc, 8 bytes payload.
	frameWireSize = 11
)

// Bus reads OBD-II response frames from a serial-attached CAN bridge,
// decodes them through a compiled schema Context, and keeps the
// latest reading per (mode,pid) for caching and MQTT publication.
// Adapted from the teacher's cmd/agent-j1587/bus.go: same
// readFrames/processFrames inter-frame-gap loop, same stopChan
// shutdown shape, applied to OBD-II framing instead of J1587.
type Bus struct {
	port     *serial.Port
	ctx      *obdcan.Context
	db       *cache.DB
	frames   chan []byte
	stopChan chan struct{}

	mu       sync.RWMutex
	readings map[uint32]publish.Reading
}

// NewBus wires a serial port and a compiled schema Context into a Bus.
func NewBus(port *serial.Port, ctx *obdcan.Context, dbPath string) (*Bus, error) {
	db, err := cache.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening reading cache %s: %w", dbPath, err)
	}

	return &Bus{
		port:     port,
		ctx:      ctx,
		db:       db,
		frames:   make(chan []byte),
		stopChan: make(chan struct{}),
		readings: make(map[uint32]publish.Reading),
	}, nil
}

// Close releases the Bus's resources.
func (b *Bus) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// StartReading begins reading and decoding frames in the background.
func (b *Bus) StartReading() {
	go b.readBytes()
	go b.processFrames()
}

// StopReading stops the background reader/processor goroutines.
func (b *Bus) StopReading() {
	close(b.stopChan)
}

// Snapshot returns the current set of decoded readings, for
// publish.Client's data source.
func (b *Bus) Snapshot() []publish.Reading {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]publish.Reading, 0, len(b.readings))
	for _, r := range b.readings {
		out = append(out, r)
	}
	return out
}

// readBytes reads raw bytes from the serial port and groups them into
// candidate frames separated by an inter-frame gap, exactly as the
// teacher's readFrames does for J1587.
func (b *Bus) readBytes() {
	buf := make([]byte, 256)
	var frame []byte
	last := time.Now()

	for {
		select {
		case <-b.stopChan:
			return
		default:
			n, err := b.port.Read(buf)
			now := time.Now()

			if err != nil && err != io.EOF {
				log.Printf("obdserve: serial read error: %v", err)
			}

			if n == 0 {
				if len(frame) > 0 && now.Sub(last) >= interFrameGap {
					b.frames <- frame
					frame = nil
				}
				continue
			}

			for i := 0; i < n; i++ {
				if now.Sub(last) >= interFrameGap && len(frame) > 0 {
					b.frames <- frame
					frame = nil
				}
				frame = append(frame, buf[i])
				last = now
			}
		}
	}
}

// processFrames decodes each assembled byte group into an
// obdcan.Frame and, on success, evaluates it against the schema
// Context.
func (b *Bus) processFrames() {
	for {
		select {
		case <-b.stopChan:
			return
		case raw := <-b.frames:
			if len(raw) != frameWireSize {
				log.Printf("obdserve: discarding frame of unexpected size %d (want %d)", len(raw), frameWireSize)
				continue
			}
			b.handleFrame(decodeWireFrame(raw))
		}
	}
}

func decodeWireFrame(raw []byte) obdcan.Frame {
	var f obdcan.Frame
	f.ID = uint16(raw[0])<<8 | uint16(raw[1])
	f.DLC = raw[2]
	copy(f.Data[:], raw[3:11])
	return f
}

func (b *Bus) handleFrame(f obdcan.Frame) {
	mode, pid, err := b.ctx.ParseHeaders(f)
	if err != nil {
		log.Printf("obdserve: header decode failed: %v", err)
		return
	}

	value, err := b.ctx.ParseResponse(f)
	if err != nil {
		log.Printf("obdserve: decode failed for mode %#x pid %#x: %v", mode, pid, err)
		return
	}

	rec, _ := b.ctx.GetDescriptor(mode, pid)
	key := obdcan.Key(mode, pid)

	b.mu.Lock()
	b.readings[key] = publish.Reading{Mode: mode, PID: pid, Name: rec.Name, Value: value}
	b.mu.Unlock()

	if err := cache.Put(b.db, key, value); err != nil {
		log.Printf("obdserve: failed to cache reading for mode %#x pid %#x: %v", mode, pid, err)
	}
}
