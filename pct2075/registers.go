// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pct2075

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Register is the pointer value selecting a device register.
type Register byte

const (
	RegTemperature     Register = 0x00
	RegConfiguration   Register = 0x01
	RegHysteresis      Register = 0x02
	RegOverTemperature Register = 0x03
	RegIdle            Register = 0x04
)

func (r Register) String() string {
	switch r {
	case RegTemperature:
		return "Temp"
	case RegConfiguration:
		return "Conf"
	case RegHysteresis:
		return "Thyst"
	case RegOverTemperature:
		return "Tos"
	case RegIdle:
		return "Tidle"
	}
	return fmt.Sprintf("Register(0x%02x)", byte(r))
}

const (
	// Configuration register bit positions.
	_SHUTDOWN_BIT    = 0
	_OS_COMP_INT     = 1
	_OS_POL_BIT      = 2
	_OS_F_QUE_POS    = 3
	_OS_F_QUE_MASK   = 0x03
	_CONF_MASK       = 0x1f
	_IDLE_MASK       = 0x1f
	_THRESHOLD_SHIFT = 7
	_TEMP_SHIFT      = 5

	// Temperature register resolution, 0.125°C.
	_DEGREES_RESOLUTION physic.Temperature = 125 * physic.MilliKelvin
	// Threshold register resolution, 0.5°C.
	_THRESHOLD_RESOLUTION physic.Temperature = 500 * physic.MilliKelvin

	// MinimumTemperature is the lowest temperature the device specifies.
	MinimumTemperature physic.Temperature = physic.ZeroCelsius - 55*physic.Kelvin
	// MaximumTemperature is the highest temperature the device specifies.
	MaximumTemperature physic.Temperature = physic.ZeroCelsius + 125*physic.Kelvin
)

// EncodeConfig returns the configuration register value for cfg. Bits 7:5
// are reserved and always zero. cfg must have passed Validate.
func EncodeConfig(cfg DeviceConfig) byte {
	q, _ := cfg.FaultQueue.code()
	v := byte(cfg.OperatingMode&1)<<_SHUTDOWN_BIT |
		byte(cfg.AlertMode&1)<<_OS_COMP_INT |
		byte(cfg.AlertPolarity&1)<<_OS_POL_BIT |
		q<<_OS_F_QUE_POS
	return v & _CONF_MASK
}

// DecodeConfig fills the mode fields of cfg from a configuration register
// value. The other fields are left untouched.
func DecodeConfig(v byte, cfg *DeviceConfig) {
	cfg.OperatingMode = OperatingMode((v >> _SHUTDOWN_BIT) & 1)
	cfg.AlertMode = AlertMode((v >> _OS_COMP_INT) & 1)
	cfg.AlertPolarity = AlertPolarity((v >> _OS_POL_BIT) & 1)
	cfg.FaultQueue = faultQueueByCode[(v>>_OS_F_QUE_POS)&_OS_F_QUE_MASK]
}

// EncodeHysteresis returns the Thyst register word for cfg, the 9-bit count
// left aligned with the low 7 bits zero.
func EncodeHysteresis(cfg DeviceConfig) uint16 {
	return encodeThreshold(cfg.Hysteresis)
}

// EncodeOverTemperature returns the Tos register word for cfg.
func EncodeOverTemperature(cfg DeviceConfig) uint16 {
	return encodeThreshold(cfg.OverTemperature)
}

func encodeThreshold(count int16) uint16 {
	return uint16(count) << _THRESHOLD_SHIFT
}

// DecodeThreshold returns the signed 9-bit count held by a Thyst or Tos
// register.
func DecodeThreshold(msb, lsb byte) int16 {
	return int16(uint16(msb)<<8|uint16(lsb)) >> _THRESHOLD_SHIFT
}

// EncodeIdle returns the Tidle register value for cfg.
func EncodeIdle(cfg DeviceConfig) byte {
	return cfg.IdleTimeout & _IDLE_MASK
}

// DecodeIdle returns the idle count held by a Tidle register value.
func DecodeIdle(v byte) uint8 {
	return v & _IDLE_MASK
}

// SplitWord returns the most and least significant bytes of w, in the order
// they go on the bus.
func SplitWord(w uint16) (msb, lsb byte) {
	return byte(w >> 8), byte(w)
}

// DecodeTemperatureCount returns the signed 11-bit count held by the
// temperature register. One count is 0.125°C.
func DecodeTemperatureCount(msb, lsb byte) int16 {
	return int16(uint16(msb)<<8|uint16(lsb)) >> _TEMP_SHIFT
}

// DecodeTemperature converts the raw temperature register to whole degrees
// Celsius. The fractional part is truncated toward zero; use
// DecodeTemperatureCount for the full resolution.
func DecodeTemperature(msb, lsb byte) int8 {
	c := float64(DecodeTemperatureCount(msb, lsb)) * 0.125
	return int8(c)
}

// CountToTemperature converts a temperature register count to a
// physic.Temperature.
func CountToTemperature(count int16) physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(count)*_DEGREES_RESOLUTION
}

var errThresholdRange = errors.New("pct2075: threshold out of range")

// ThresholdCount converts t to the nearest 0.5°C threshold count.
func ThresholdCount(t physic.Temperature) (int16, error) {
	d := t - physic.ZeroCelsius
	half := _THRESHOLD_RESOLUTION / 2
	if d < 0 {
		half = -half
	}
	count := (d + half) / _THRESHOLD_RESOLUTION
	if count < minThresholdCount || count > maxThresholdCount {
		return 0, fmt.Errorf("%w: %s", errThresholdRange, t)
	}
	return int16(count), nil
}

// ThresholdTemperature converts a threshold count to a physic.Temperature.
func ThresholdTemperature(count int16) physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(count)*_THRESHOLD_RESOLUTION
}
