// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/GermanBionicSystems/thermal/pct2075"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// fileConfig is the YAML form of a pct2075.DeviceConfig. Thresholds are
// temperatures such as "75C"; omitted fields keep their current value.
type fileConfig struct {
	Address         string `yaml:"address"`
	Hysteresis      string `yaml:"hysteresis"`
	OverTemperature string `yaml:"overtemperature"`
	IdleTimeout     *uint8 `yaml:"idle"`
	FaultQueue      *uint8 `yaml:"fault_queue"`
	AlertPolarity   string `yaml:"polarity"`
	AlertMode       string `yaml:"alert_mode"`
	OperatingMode   string `yaml:"mode"`
}

func loadConfig(path string, cfg *pct2075.DeviceConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := fc.apply(cfg); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (fc *fileConfig) apply(cfg *pct2075.DeviceConfig) error {
	var err error
	if fc.Address != "" {
		if err = cfg.Address.Set(fc.Address); err != nil {
			return err
		}
	}
	if fc.Hysteresis != "" {
		if cfg.Hysteresis, err = thresholdCount(fc.Hysteresis); err != nil {
			return err
		}
	}
	if fc.OverTemperature != "" {
		if cfg.OverTemperature, err = thresholdCount(fc.OverTemperature); err != nil {
			return err
		}
	}
	if fc.IdleTimeout != nil {
		cfg.IdleTimeout = *fc.IdleTimeout
	}
	if fc.FaultQueue != nil {
		cfg.FaultQueue = pct2075.FaultQueue(*fc.FaultQueue)
	}
	if fc.AlertPolarity != "" {
		if cfg.AlertPolarity, err = parsePolarity(fc.AlertPolarity); err != nil {
			return err
		}
	}
	if fc.AlertMode != "" {
		if cfg.AlertMode, err = parseAlertMode(fc.AlertMode); err != nil {
			return err
		}
	}
	if fc.OperatingMode != "" {
		if cfg.OperatingMode, err = parseOperatingMode(fc.OperatingMode); err != nil {
			return err
		}
	}
	return nil
}

func thresholdCount(s string) (int16, error) {
	var t physic.Temperature
	if err := t.Set(s); err != nil {
		return 0, fmt.Errorf("invalid temperature %q: %w", s, err)
	}
	return pct2075.ThresholdCount(t)
}

func parsePolarity(s string) (pct2075.AlertPolarity, error) {
	switch strings.ToLower(s) {
	case "low":
		return pct2075.PolarityActiveLow, nil
	case "high":
		return pct2075.PolarityActiveHigh, nil
	}
	return 0, fmt.Errorf("invalid polarity %q, want low or high", s)
}

func parseAlertMode(s string) (pct2075.AlertMode, error) {
	switch strings.ToLower(s) {
	case "comparator", "comp":
		return pct2075.ModeComparator, nil
	case "interrupt", "int":
		return pct2075.ModeInterrupt, nil
	}
	return 0, fmt.Errorf("invalid alert mode %q, want comparator or interrupt", s)
}

func parseOperatingMode(s string) (pct2075.OperatingMode, error) {
	switch strings.ToLower(s) {
	case "normal":
		return pct2075.ModeNormal, nil
	case "shutdown":
		return pct2075.ModeShutdown, nil
	}
	return 0, fmt.Errorf("invalid mode %q, want normal or shutdown", s)
}
