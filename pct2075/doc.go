// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// pct2075 provides a package for interfacing an NXP PCT2075 I²C temperature
// sensor and overtemperature detector. The register layout is compatible
// with the LM75 family, with an additional idle (Tidle) register.
//
// Range: -55°C - 125°C
//
// Accuracy: +/- 1°C (-25°C - 100°C)
//
// Resolution: 0.125°C
//
// The package is split in a pure register codec (Encode*/Decode*), a
// configuration validator (Validate) and a RegisterTransport carrying the
// bytes. Configure and ReadTemperature combine them; Dev wraps them in the
// usual periph conn.Resource and physic.SenseEnv interfaces.
//
// Thyst and Tos are written as two single byte writes to the same register,
// most significant byte first.
//
// For detailed information, refer to the [datasheet].
//
// [datasheet]: https://www.nxp.com/docs/en/data-sheet/PCT2075.pdf
package pct2075
