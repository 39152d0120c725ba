// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pct2075

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

type call struct {
	Op    string
	Addr  Address
	Reg   Register
	Value byte
}

// fakeTransport records every register access and replays canned reads.
type fakeTransport struct {
	mu       sync.Mutex
	calls    []call
	reads    map[Register][2]byte
	failCall int
	err      error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{reads: map[Register][2]byte{}, failCall: -1}
}

func (f *fakeTransport) WriteRegister(addr Address, reg Register, value byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{"w", addr, reg, value})
	if len(f.calls)-1 == f.failCall {
		return f.err
	}
	return nil
}

func (f *fakeTransport) ReadRegister(addr Address, reg Register, timeout time.Duration) ([2]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Op: "r", Addr: addr, Reg: reg})
	if len(f.calls)-1 == f.failCall {
		return [2]byte{}, f.err
	}
	return f.reads[reg], nil
}

func (f *fakeTransport) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func TestConfigure(t *testing.T) {
	for _, test := range []struct {
		name string
		cfg  DeviceConfig
		want []call
	}{
		{
			name: "defaults",
			cfg:  DefaultConfig(DefaultAddress),
			want: []call{
				{"w", 0x90, RegConfiguration, 0x00},
				{"w", 0x90, RegHysteresis, 0x4b},
				{"w", 0x90, RegHysteresis, 0x00},
				{"w", 0x90, RegOverTemperature, 0x50},
				{"w", 0x90, RegOverTemperature, 0x00},
				{"w", 0x90, RegIdle, 0x01},
			},
		},
		{
			name: "everything set",
			cfg: DeviceConfig{
				Address:         Address8Pin27,
				Hysteresis:      -20,
				OverTemperature: 61,
				IdleTimeout:     0xff,
				FaultQueue:      FaultQueue4,
				AlertPolarity:   PolarityActiveHigh,
				AlertMode:       ModeInterrupt,
				OperatingMode:   ModeShutdown,
			},
			want: []call{
				{"w", 0x6e, RegConfiguration, 0x17},
				{"w", 0x6e, RegHysteresis, 0xf6},
				{"w", 0x6e, RegHysteresis, 0x00},
				{"w", 0x6e, RegOverTemperature, 0x1e},
				{"w", 0x6e, RegOverTemperature, 0x80},
				{"w", 0x6e, RegIdle, 0x1f},
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			ft := newFakeTransport()
			if err := Configure(ft, test.cfg); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(ft.recorded(), test.want); diff != "" {
				t.Errorf("Configure() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestConfigureInvalid(t *testing.T) {
	for _, test := range []struct {
		name   string
		modify func(*DeviceConfig)
	}{
		{"fault queue", func(c *DeviceConfig) { c.FaultQueue = 5 }},
		{"address", func(c *DeviceConfig) { c.Address = 0x91 }},
		{"mode", func(c *DeviceConfig) { c.OperatingMode = 4 }},
	} {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig(DefaultAddress)
			test.modify(&cfg)
			ft := newFakeTransport()
			err := Configure(ft, cfg)
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Errorf("Configure() = %v, expected *ConfigError", err)
			}
			if diff := cmp.Diff(ft.recorded(), []call{}, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Configure() wrote to the bus (-got +want):\n%s", diff)
			}
		})
	}
}

func TestConfigureWriteError(t *testing.T) {
	busErr := errors.New("nack")
	ft := newFakeTransport()
	ft.failCall = 2
	ft.err = busErr
	err := Configure(ft, DefaultConfig(DefaultAddress))
	if !errors.Is(err, busErr) {
		t.Errorf("Configure() = %v, expected %v", err, busErr)
	}
	// The sequence stops at the failing write: config, Thyst MSB, Thyst LSB.
	if n := len(ft.recorded()); n != 3 {
		t.Errorf("Configure() issued %d writes after a failure, expected 3", n)
	}
}

func TestReadTemperature(t *testing.T) {
	ft := newFakeTransport()
	ft.reads[RegTemperature] = [2]byte{0x50, 0x00}
	got, err := ReadTemperature(ft, Address8Pin5, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if got != 80 {
		t.Errorf("ReadTemperature()=%d expected 80", got)
	}
	want := []call{{Op: "r", Addr: Address8Pin5, Reg: RegTemperature}}
	if diff := cmp.Diff(ft.recorded(), want); diff != "" {
		t.Errorf("ReadTemperature() difference (-got +want):\n%s", diff)
	}

	busErr := errors.New("arbitration lost")
	ft = newFakeTransport()
	ft.failCall = 0
	ft.err = busErr
	if _, err := ReadTemperature(ft, Address8Pin5, 0); !errors.Is(err, busErr) {
		t.Errorf("ReadTemperature() = %v, expected %v", err, busErr)
	}
}

func TestReadConfig(t *testing.T) {
	ft := newFakeTransport()
	ft.reads[RegConfiguration] = [2]byte{0x0a, 0x0a}
	ft.reads[RegHysteresis] = [2]byte{0x4b, 0x00}
	ft.reads[RegOverTemperature] = [2]byte{0x50, 0x00}
	ft.reads[RegIdle] = [2]byte{0x05, 0x05}
	got, err := ReadConfig(ft, DefaultAddress, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := DeviceConfig{
		Address:         DefaultAddress,
		Hysteresis:      150,
		OverTemperature: 160,
		IdleTimeout:     5,
		FaultQueue:      FaultQueue2,
		AlertPolarity:   PolarityActiveLow,
		AlertMode:       ModeInterrupt,
		OperatingMode:   ModeNormal,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("ReadConfig() difference (-got +want):\n%s", diff)
	}

	ft.failCall = len(ft.recorded()) + 2
	ft.err = errors.New("timeout")
	if _, err := ReadConfig(ft, DefaultAddress, 0); !errors.Is(err, ft.err) {
		t.Errorf("ReadConfig() = %v, expected %v", err, ft.err)
	}
}

func TestConfigureRoundTrip(t *testing.T) {
	cfg := DeviceConfig{
		Address:         Address8Pin20,
		Hysteresis:      -3,
		OverTemperature: 99,
		IdleTimeout:     17,
		FaultQueue:      FaultQueue6,
		AlertPolarity:   PolarityActiveHigh,
		AlertMode:       ModeComparator,
		OperatingMode:   ModeShutdown,
	}
	ft := newFakeTransport()
	if err := Configure(ft, cfg); err != nil {
		t.Fatal(err)
	}
	// Rebuild the register contents from the writes, MSB first.
	regs := map[Register][]byte{}
	for _, c := range ft.recorded() {
		regs[c.Reg] = append(regs[c.Reg], c.Value)
	}
	ft.reads[RegConfiguration] = [2]byte{regs[RegConfiguration][0]}
	ft.reads[RegHysteresis] = [2]byte{regs[RegHysteresis][0], regs[RegHysteresis][1]}
	ft.reads[RegOverTemperature] = [2]byte{regs[RegOverTemperature][0], regs[RegOverTemperature][1]}
	ft.reads[RegIdle] = [2]byte{regs[RegIdle][0]}
	got, err := ReadConfig(ft, cfg.Address, 0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got, cfg); diff != "" {
		t.Errorf("round trip difference (-got +want):\n%s", diff)
	}
}

const addr7 uint16 = 0x48

var pbConfigure = []i2ctest.IO{
	{Addr: addr7, W: []byte{byte(RegConfiguration), 0x00}},
	{Addr: addr7, W: []byte{byte(RegHysteresis), 0x4b}},
	{Addr: addr7, W: []byte{byte(RegHysteresis), 0x00}},
	{Addr: addr7, W: []byte{byte(RegOverTemperature), 0x50}},
	{Addr: addr7, W: []byte{byte(RegOverTemperature), 0x00}},
	{Addr: addr7, W: []byte{byte(RegIdle), 0x01}},
}

func TestDevI2C(t *testing.T) {
	ops := append([]i2ctest.IO{}, pbConfigure...)
	ops = append(ops,
		i2ctest.IO{Addr: addr7, W: []byte{byte(RegTemperature)}, R: []byte{0x19, 0x20}},
		i2ctest.IO{Addr: addr7, W: []byte{byte(RegTemperature)}, R: []byte{0x19, 0x20}},
		// Halt sets the shutdown bit.
		i2ctest.IO{Addr: addr7, W: []byte{byte(RegConfiguration), 0x01}},
	)
	pb := &i2ctest.Playback{Ops: ops, DontPanic: true}
	record := &i2ctest.Record{Bus: pb}

	dev, err := NewI2C(record, DefaultAddress)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.Configure(DefaultConfig(0)); err != nil {
		t.Fatal(err)
	}
	c, err := dev.ReadTemperature()
	if err != nil {
		t.Fatal(err)
	}
	if c != 25 {
		t.Errorf("ReadTemperature()=%d expected 25", c)
	}
	env := physic.Env{}
	if err := dev.Sense(&env); err != nil {
		t.Fatal(err)
	}
	if want := physic.ZeroCelsius + 25125*physic.MilliKelvin; env.Temperature != want {
		t.Errorf("Sense()=%s expected %s", env.Temperature, want)
	}
	if err := dev.Halt(); err != nil {
		t.Error(err)
	}
	// A second Halt has nothing left to do.
	if err := dev.Halt(); err != nil {
		t.Error(err)
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
	t.Logf("record.Ops=%#v", record.Ops)
}

func TestDevConfigureAddressMismatch(t *testing.T) {
	ft := newFakeTransport()
	dev, err := New(ft, DefaultAddress)
	if err != nil {
		t.Fatal(err)
	}
	err = dev.Configure(DefaultConfig(Address8Pin2))
	var cerr *ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "Address" {
		t.Errorf("Configure() = %v, expected Address error", err)
	}
	if len(ft.recorded()) != 0 {
		t.Errorf("Configure() wrote %d registers", len(ft.recorded()))
	}
	// Halt without an applied configuration does not touch the bus.
	if err := dev.Halt(); err != nil {
		t.Error(err)
	}
	if len(ft.recorded()) != 0 {
		t.Errorf("Halt() issued %d transfers", len(ft.recorded()))
	}
}

func TestNewInvalidAddress(t *testing.T) {
	if _, err := New(newFakeTransport(), 0x48); err == nil {
		t.Error("New() with a 7-bit address did not return an error")
	}
}

func TestDevReadConfig(t *testing.T) {
	ft := newFakeTransport()
	ft.reads[RegConfiguration] = [2]byte{0x01}
	dev, err := New(ft, Address8Pin3)
	if err != nil {
		t.Fatal(err)
	}
	dev.SetTimeout(10 * time.Millisecond)
	cfg, err := dev.ReadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OperatingMode != ModeShutdown || cfg.Address != Address8Pin3 || cfg.FaultQueue != FaultQueue1 {
		t.Errorf("ReadConfig()=%+v", cfg)
	}
	if n := len(ft.recorded()); n != 4 {
		t.Errorf("ReadConfig() issued %d reads, expected 4", n)
	}
}

func TestSenseContinuous(t *testing.T) {
	ft := newFakeTransport()
	ft.reads[RegTemperature] = [2]byte{0xe7, 0x00}
	dev, err := New(ft, DefaultAddress)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dev.SenseContinuous(time.Millisecond); err == nil {
		t.Error("SenseContinuous() accepted an interval below the conversion time")
	}
	ch, err := dev.SenseContinuous(minSampleInterval)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dev.SenseContinuous(minSampleInterval); err == nil {
		t.Error("second SenseContinuous() did not return an error")
	}
	for i := 0; i < 3; i++ {
		env := <-ch
		if want := physic.ZeroCelsius - 25*physic.Kelvin; env.Temperature != want {
			t.Errorf("SenseContinuous()=%s expected %s", env.Temperature, want)
		}
	}
	if err := dev.Halt(); err != nil {
		t.Error(err)
	}
	// The channel is closed once the goroutine sees the shutdown.
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("channel not closed after Halt()")
		}
	}
}

func TestPrecisionString(t *testing.T) {
	dev, err := New(newFakeTransport(), DefaultAddress)
	if err != nil {
		t.Fatal(err)
	}
	env := physic.Env{}
	dev.Precision(&env)
	if env.Temperature != 125*physic.MilliKelvin {
		t.Errorf("Precision()=%s", env.Temperature)
	}
	if s := dev.String(); s != "pct2075: 0x90" {
		t.Errorf("String()=%q", s)
	}
}
