// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pct2075

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Configure validates cfg and writes it to the device at cfg.Address.
//
// Registers are written in the order Conf, Thyst (MSB, LSB), Tos (MSB, LSB),
// Tidle. Nothing is written when cfg is invalid. A transport error stops the
// sequence and leaves the device partially configured.
func Configure(t RegisterTransport, cfg DeviceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	hMSB, hLSB := SplitWord(EncodeHysteresis(cfg))
	oMSB, oLSB := SplitWord(EncodeOverTemperature(cfg))
	writes := [...]struct {
		reg   Register
		value byte
	}{
		{RegConfiguration, EncodeConfig(cfg)},
		{RegHysteresis, hMSB},
		{RegHysteresis, hLSB},
		{RegOverTemperature, oMSB},
		{RegOverTemperature, oLSB},
		{RegIdle, EncodeIdle(cfg)},
	}
	for _, w := range writes {
		if err := t.WriteRegister(cfg.Address, w.reg, w.value); err != nil {
			return err
		}
	}
	return nil
}

// ReadTemperature reads the temperature register of the device at addr and
// returns it in whole degrees Celsius, truncated toward zero.
func ReadTemperature(t RegisterTransport, addr Address, timeout time.Duration) (int8, error) {
	r, err := t.ReadRegister(addr, RegTemperature, timeout)
	if err != nil {
		return 0, err
	}
	return DecodeTemperature(r[0], r[1]), nil
}

// ReadConfig reads back the Conf, Thyst, Tos and Tidle registers of the
// device at addr.
func ReadConfig(t RegisterTransport, addr Address, timeout time.Duration) (DeviceConfig, error) {
	cfg := DeviceConfig{Address: addr}
	r, err := t.ReadRegister(addr, RegConfiguration, timeout)
	if err != nil {
		return cfg, err
	}
	DecodeConfig(r[0], &cfg)
	if r, err = t.ReadRegister(addr, RegHysteresis, timeout); err != nil {
		return cfg, err
	}
	cfg.Hysteresis = DecodeThreshold(r[0], r[1])
	if r, err = t.ReadRegister(addr, RegOverTemperature, timeout); err != nil {
		return cfg, err
	}
	cfg.OverTemperature = DecodeThreshold(r[0], r[1])
	if r, err = t.ReadRegister(addr, RegIdle, timeout); err != nil {
		return cfg, err
	}
	cfg.IdleTimeout = DecodeIdle(r[0])
	return cfg, nil
}

// Dev is a handle to a PCT2075 sensor.
type Dev struct {
	t        RegisterTransport
	addr     Address
	mu       sync.Mutex
	timeout  time.Duration
	applied  *DeviceConfig
	shutdown chan struct{}
}

// New returns a Dev talking to the sensor at addr through t. The device is
// left in its current configuration.
func New(t RegisterTransport, addr Address) (*Dev, error) {
	if !addr.Valid() {
		return nil, &ConfigError{Field: "Address", Value: int(addr)}
	}
	return &Dev{t: t, addr: addr}, nil
}

// NewI2C returns a Dev for the sensor at addr on the I²C bus b.
func NewI2C(b i2c.Bus, addr Address) (*Dev, error) {
	return New(NewI2CTransport(b), addr)
}

// SetTimeout sets the timeout used for register reads. Zero, the default,
// waits indefinitely.
func (dev *Dev) SetTimeout(d time.Duration) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.timeout = d
}

// Configure writes cfg to the device. cfg.Address must be the address the Dev
// was created with; a zero Address is replaced by it.
func (dev *Dev) Configure(cfg DeviceConfig) error {
	if cfg.Address == 0 {
		cfg.Address = dev.addr
	}
	if cfg.Address != dev.addr {
		return &ConfigError{Field: "Address", Value: int(cfg.Address)}
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if err := Configure(dev.t, cfg); err != nil {
		return err
	}
	dev.applied = &cfg
	return nil
}

// ReadConfig reads the current configuration registers.
func (dev *Dev) ReadConfig() (DeviceConfig, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return ReadConfig(dev.t, dev.addr, dev.timeout)
}

// ReadTemperature returns the temperature in whole degrees Celsius.
func (dev *Dev) ReadTemperature() (int8, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return ReadTemperature(dev.t, dev.addr, dev.timeout)
}

// Sense reads the temperature at the full 0.125°C resolution. Implements
// physic.SenseEnv.
func (dev *Dev) Sense(env *physic.Env) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	r, err := dev.t.ReadRegister(dev.addr, RegTemperature, dev.timeout)
	if err != nil {
		return err
	}
	env.Temperature = CountToTemperature(DecodeTemperatureCount(r[0], r[1]))
	return nil
}

// SenseContinuous reads the temperature every interval and sends it to the
// returned channel. Readings that fail are skipped. Call Halt to stop.
// Implements physic.SenseEnv.
func (dev *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < minSampleInterval {
		return nil, fmt.Errorf("pct2075: invalid interval %s, minimum %s", interval, minSampleInterval)
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.shutdown != nil {
		return nil, errors.New("pct2075: SenseContinuous already running")
	}
	dev.shutdown = make(chan struct{})
	ch := make(chan physic.Env, 16)
	go func(shutdown <-chan struct{}) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(ch)
		for {
			select {
			case <-shutdown:
				return
			case <-ticker.C:
				e := physic.Env{}
				if err := dev.Sense(&e); err == nil && len(ch) < cap(ch) {
					ch <- e
				}
			}
		}
	}(dev.shutdown)
	return ch, nil
}

// Precision returns the 0.125°C step of the temperature register.
func (dev *Dev) Precision(env *physic.Env) {
	env.Temperature = _DEGREES_RESOLUTION
	env.Pressure = 0
	env.Humidity = 0
}

// Halt stops SenseContinuous. If a configuration was written through this Dev,
// the device is also put in shutdown mode. Implements conn.Resource.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.shutdown != nil {
		close(dev.shutdown)
		dev.shutdown = nil
	}
	if dev.applied == nil || dev.applied.OperatingMode == ModeShutdown {
		return nil
	}
	cfg := *dev.applied
	cfg.OperatingMode = ModeShutdown
	if err := dev.t.WriteRegister(dev.addr, RegConfiguration, EncodeConfig(cfg)); err != nil {
		return err
	}
	dev.applied = &cfg
	return nil
}

func (dev *Dev) String() string {
	return fmt.Sprintf("pct2075: %s", dev.addr)
}

// A conversion takes 28ms at most.
const minSampleInterval = 100 * time.Millisecond

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
