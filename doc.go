// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermal is a container for the PCT2075 temperature sensor driver
// and the displays used to show its readings.
//
// See package pct2075 for the driver and cmd/pct2075 for a command line tool.
package thermal
