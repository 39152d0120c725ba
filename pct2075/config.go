// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pct2075

import (
	"fmt"
	"strconv"
)

// Address is the 8-bit bus address code of a PCT2075, as listed in the
// datasheet address tables. The R/W bit is always zero.
type Address uint8

// Address codes for the 8-pin packages (SO8, TSSOP8, HWSON8). The device
// samples A2..A0 as low, high or floating, giving 27 addresses.
const (
	Address8Pin1  Address = 0x90
	Address8Pin2  Address = 0x92
	Address8Pin3  Address = 0x94
	Address8Pin4  Address = 0x96
	Address8Pin5  Address = 0x98
	Address8Pin6  Address = 0x9A
	Address8Pin7  Address = 0x9C
	Address8Pin8  Address = 0x9E
	Address8Pin9  Address = 0xA0
	Address8Pin10 Address = 0xA2
	Address8Pin11 Address = 0xA4
	Address8Pin12 Address = 0xA6
	Address8Pin13 Address = 0xA8
	Address8Pin14 Address = 0xAA
	Address8Pin15 Address = 0xAC
	Address8Pin16 Address = 0xAE
	Address8Pin17 Address = 0x50
	Address8Pin18 Address = 0x52
	Address8Pin19 Address = 0x54
	Address8Pin20 Address = 0x56
	Address8Pin21 Address = 0x58
	Address8Pin22 Address = 0x5A
	Address8Pin23 Address = 0x5C
	Address8Pin24 Address = 0x5E
	Address8Pin25 Address = 0x6A
	Address8Pin26 Address = 0x6C
	Address8Pin27 Address = 0x6E
)

// Address codes for the 6-pin package (TSOP6). They share their values with
// the first three 8-pin codes.
const (
	Address6Pin1 Address = 0x90
	Address6Pin2 Address = 0x92
	Address6Pin3 Address = 0x94
)

// DefaultAddress is the address of a part with every address pin tied low.
const DefaultAddress = Address8Pin1

var addresses8Pin = [...]Address{
	Address8Pin1, Address8Pin2, Address8Pin3, Address8Pin4, Address8Pin5,
	Address8Pin6, Address8Pin7, Address8Pin8, Address8Pin9, Address8Pin10,
	Address8Pin11, Address8Pin12, Address8Pin13, Address8Pin14, Address8Pin15,
	Address8Pin16, Address8Pin17, Address8Pin18, Address8Pin19, Address8Pin20,
	Address8Pin21, Address8Pin22, Address8Pin23, Address8Pin24, Address8Pin25,
	Address8Pin26, Address8Pin27,
}

var addresses6Pin = [...]Address{Address6Pin1, Address6Pin2, Address6Pin3}

// Addresses returns every defined address code, 8-pin package codes first.
// The 6-pin codes are included even though they repeat 8-pin values.
func Addresses() []Address {
	out := make([]Address, 0, len(addresses8Pin)+len(addresses6Pin))
	out = append(out, addresses8Pin[:]...)
	return append(out, addresses6Pin[:]...)
}

// Valid reports whether a is one of the defined address codes.
func (a Address) Valid() bool {
	for _, v := range addresses8Pin {
		if v == a {
			return true
		}
	}
	for _, v := range addresses6Pin {
		if v == a {
			return true
		}
	}
	return false
}

// I2CAddr returns the 7-bit address used on the bus.
func (a Address) I2CAddr() uint16 {
	return uint16(a >> 1)
}

func (a Address) String() string {
	return fmt.Sprintf("0x%02X", uint8(a))
}

// Set implements flag.Value. Accepts decimal or 0x prefixed hexadecimal.
func (a *Address) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return fmt.Errorf("pct2075: invalid address %q", s)
	}
	*a = Address(v)
	return nil
}

// FaultQueue is the number of consecutive faults required before the OS
// output asserts.
type FaultQueue uint8

const (
	FaultQueue1 FaultQueue = 1
	FaultQueue2 FaultQueue = 2
	FaultQueue4 FaultQueue = 4
	FaultQueue6 FaultQueue = 6
)

// code returns the two bit register value for q. ok is false when q is not
// one of the defined lengths.
func (q FaultQueue) code() (c byte, ok bool) {
	switch q {
	case FaultQueue1:
		return 0, true
	case FaultQueue2:
		return 1, true
	case FaultQueue4:
		return 2, true
	case FaultQueue6:
		return 3, true
	}
	return 0, false
}

var faultQueueByCode = [4]FaultQueue{FaultQueue1, FaultQueue2, FaultQueue4, FaultQueue6}

// AlertPolarity selects the active level of the OS output.
type AlertPolarity uint8

const (
	PolarityActiveLow  AlertPolarity = 0
	PolarityActiveHigh AlertPolarity = 1
)

// AlertMode selects how the OS output behaves once the threshold is crossed.
type AlertMode uint8

const (
	// ModeComparator keeps OS asserted until the temperature drops below the
	// hysteresis threshold.
	ModeComparator AlertMode = 0
	// ModeInterrupt asserts OS until any register is read.
	ModeInterrupt AlertMode = 1
)

// OperatingMode selects between continuous conversion and shutdown.
type OperatingMode uint8

const (
	ModeNormal   OperatingMode = 0
	ModeShutdown OperatingMode = 1
)

const (
	// Range of a 9-bit two's complement threshold count.
	minThresholdCount = -256
	maxThresholdCount = 255
)

// DeviceConfig describes the full writable state of a PCT2075.
//
// Hysteresis and OverTemperature are counts of 0.5°C. Hysteresis is expected
// to be at or below OverTemperature; this is not checked.
type DeviceConfig struct {
	Address         Address
	Hysteresis      int16
	OverTemperature int16
	// IdleTimeout is the conversion idle period in units of 100ms. Only the
	// low 5 bits are used.
	IdleTimeout   uint8
	FaultQueue    FaultQueue
	AlertPolarity AlertPolarity
	AlertMode     AlertMode
	OperatingMode OperatingMode
}

// DefaultConfig returns the power-on register values of the device: Tos 80°C,
// Thyst 75°C, fault queue of 1, comparator mode, active low, 100ms idle.
func DefaultConfig(addr Address) DeviceConfig {
	return DeviceConfig{
		Address:         addr,
		Hysteresis:      150,
		OverTemperature: 160,
		IdleTimeout:     1,
		FaultQueue:      FaultQueue1,
		AlertPolarity:   PolarityActiveLow,
		AlertMode:       ModeComparator,
		OperatingMode:   ModeNormal,
	}
}

// ConfigError is returned when a DeviceConfig field holds a value the device
// does not define.
type ConfigError struct {
	Field string
	Value int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pct2075: invalid %s %d", e.Field, e.Value)
}

// Validate checks every enumerated field of cfg and the range of the
// threshold counts. It returns a *ConfigError for the first invalid field.
func (cfg *DeviceConfig) Validate() error {
	if !cfg.Address.Valid() {
		return &ConfigError{Field: "Address", Value: int(cfg.Address)}
	}
	if cfg.OperatingMode != ModeNormal && cfg.OperatingMode != ModeShutdown {
		return &ConfigError{Field: "OperatingMode", Value: int(cfg.OperatingMode)}
	}
	if cfg.AlertMode != ModeComparator && cfg.AlertMode != ModeInterrupt {
		return &ConfigError{Field: "AlertMode", Value: int(cfg.AlertMode)}
	}
	if cfg.AlertPolarity != PolarityActiveLow && cfg.AlertPolarity != PolarityActiveHigh {
		return &ConfigError{Field: "AlertPolarity", Value: int(cfg.AlertPolarity)}
	}
	if _, ok := cfg.FaultQueue.code(); !ok {
		return &ConfigError{Field: "FaultQueue", Value: int(cfg.FaultQueue)}
	}
	if cfg.Hysteresis < minThresholdCount || cfg.Hysteresis > maxThresholdCount {
		return &ConfigError{Field: "Hysteresis", Value: int(cfg.Hysteresis)}
	}
	if cfg.OverTemperature < minThresholdCount || cfg.OverTemperature > maxThresholdCount {
		return &ConfigError{Field: "OverTemperature", Value: int(cfg.OverTemperature)}
	}
	return nil
}

// Validate is the function form of DeviceConfig.Validate.
func Validate(cfg DeviceConfig) error {
	return cfg.Validate()
}
