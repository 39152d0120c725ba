// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pct2075

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// RegisterTransport moves single register values to and from a device.
//
// Implementations own addressing, clocking and retries. Errors are returned
// to the caller unchanged.
type RegisterTransport interface {
	// WriteRegister writes one byte to reg of the device at addr.
	WriteRegister(addr Address, reg Register, value byte) error
	// ReadRegister reads two bytes starting at reg of the device at addr. A
	// timeout <= 0 waits indefinitely.
	ReadRegister(addr Address, reg Register, timeout time.Duration) ([2]byte, error)
}

// ErrTimeout is returned when a read does not complete within its timeout.
var ErrTimeout = errors.New("pct2075: read timeout")

// DebugF the debug function type.
type DebugF func(string, ...interface{})

func noop(string, ...interface{}) {}

// I2C is a RegisterTransport on a periph I²C bus.
type I2C struct {
	bus   i2c.Bus
	mu    sync.Mutex
	debug DebugF
}

// NewI2CTransport returns a transport issuing register accesses on b.
func NewI2CTransport(b i2c.Bus) *I2C {
	return &I2C{bus: b, debug: noop}
}

// EnableDebug sets the function used to trace bus traffic.
func (t *I2C) EnableDebug(f DebugF) {
	if f == nil {
		f = noop
	}
	t.mu.Lock()
	t.debug = f
	t.mu.Unlock()
}

func (t *I2C) dev(addr Address) *i2c.Dev {
	return &i2c.Dev{Bus: t.bus, Addr: addr.I2CAddr()}
}

// WriteRegister implements RegisterTransport.
func (t *I2C) WriteRegister(addr Address, reg Register, value byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.debug("write %s %s value 0x%02x", addr, reg, value)
	if err := t.dev(addr).Tx([]byte{byte(reg), value}, nil); err != nil {
		return fmt.Errorf("pct2075: write %s: %w", reg, err)
	}
	return nil
}

// ReadRegister implements RegisterTransport.
//
// periph buses have no per transaction deadline, so a positive timeout is
// enforced by waiting on the transaction from another goroutine. A
// transaction that times out still completes on the bus before the next one
// starts.
func (t *I2C) ReadRegister(addr Address, reg Register, timeout time.Duration) ([2]byte, error) {
	var r [2]byte
	t.mu.Lock()
	debug := t.debug
	t.mu.Unlock()
	debug("read %s %s", addr, reg)

	tx := func() error {
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.dev(addr).Tx([]byte{byte(reg)}, r[:])
	}
	if timeout <= 0 {
		if err := tx(); err != nil {
			return r, fmt.Errorf("pct2075: read %s: %w", reg, err)
		}
		debug("read %s %s = 0x%02x 0x%02x", addr, reg, r[0], r[1])
		return r, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- tx()
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			return [2]byte{}, fmt.Errorf("pct2075: read %s: %w", reg, err)
		}
	case <-timer.C:
		return [2]byte{}, fmt.Errorf("pct2075: read %s: %w", reg, ErrTimeout)
	}
	debug("read %s %s = 0x%02x 0x%02x", addr, reg, r[0], r[1])
	return r, nil
}

func (t *I2C) String() string {
	return fmt.Sprintf("pct2075 transport on %s", t.bus)
}

var _ RegisterTransport = &I2C{}
