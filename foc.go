// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmi160

import (
	"fmt"
	"time"
)

// FOCAccelMode selects the target the accelerometer axis is compensated
// against during fast offset compensation.
type FOCAccelMode uint8

const (
	FOCAccelDisabled FOCAccelMode = 0x00
	FOCAccelPlus1G   FOCAccelMode = 0x01
	FOCAccelMinus1G  FOCAccelMode = 0x02
	FOCAccelZeroG    FOCAccelMode = 0x03

	focAccelModeMax = 0x03
)

// FOCConfig selects which sensors fast offset compensation runs on. The
// device must be stationary in the orientation implied by the accel modes.
type FOCConfig struct {
	X, Y, Z FOCAccelMode
	// Gyro enables gyroscope offset compensation against zero rate.
	Gyro bool
}

// Offsets holds the offset compensation values computed by the sensor.
// Accel offsets are 8 bit signed at 3.9mg/LSB, gyro offsets 10 bit signed at
// 0.061°/s per LSB.
type Offsets struct {
	AccelX, AccelY, AccelZ int8
	GyroX, GyroY, GyroZ    int16
}

func encodeFOCConf(cfg FOCConfig) (byte, error) {
	if cfg.X > focAccelModeMax || cfg.Y > focAccelModeMax || cfg.Z > focAccelModeMax {
		return 0, fmt.Errorf("%w: FOC accel mode", ErrInvalidConfig)
	}
	v := fieldFOCAccelX.Make(uint8(cfg.X)) | fieldFOCAccelY.Make(uint8(cfg.Y)) | fieldFOCAccelZ.Make(uint8(cfg.Z))
	if cfg.Gyro {
		v |= fieldFOCGyro.Mask
	}
	return v, nil
}

// RunFOC triggers fast offset compensation and waits for completion by
// polling the foc_rdy status bit every pollInterval, at most maxAttempts
// times. The hardware gives no latency guarantee, so the attempt budget is
// the caller's; an exhausted budget returns ErrFOCTimeout. On success the
// computed offsets are read back and returned.
func (d *Dev) RunFOC(cfg FOCConfig, pollInterval time.Duration, maxAttempts int) (Offsets, error) {
	if maxAttempts < 1 {
		return Offsets{}, fmt.Errorf("%w: FOC attempt budget %d", ErrInvalidConfig, maxAttempts)
	}
	v, err := encodeFOCConf(cfg)
	if err != nil {
		return Offsets{}, err
	}
	if err := d.t.writeReg(RegFOCConf, v); err != nil {
		return Offsets{}, err
	}
	if err := d.t.writeReg(RegCmd, cmdStartFOC); err != nil {
		return Offsets{}, err
	}
	for i := 0; i < maxAttempts; i++ {
		time.Sleep(pollInterval)
		status, err := d.t.readReg(RegStatus)
		if err != nil {
			return Offsets{}, err
		}
		if fieldFOCReady.Get(status) != 0 {
			return d.ReadOffsets()
		}
	}
	return Offsets{}, fmt.Errorf("%w after %d attempts", ErrFOCTimeout, maxAttempts)
}

// ReadOffsets reads the offset compensation block. The gyro offsets are 10
// bit two's complement values whose high bits live in OFFSET_CONF.
func (d *Dev) ReadOffsets() (Offsets, error) {
	var buf [7]byte
	if err := d.t.readBurst(RegOffset, buf[:]); err != nil {
		return Offsets{}, err
	}
	return Offsets{
		AccelX: int8(buf[0]),
		AccelY: int8(buf[1]),
		AccelZ: int8(buf[2]),
		GyroX:  gyroOffset(buf[3], buf[6]>>0&0x03),
		GyroY:  gyroOffset(buf[4], buf[6]>>2&0x03),
		GyroZ:  gyroOffset(buf[5], buf[6]>>4&0x03),
	}, nil
}

// gyroOffset sign-extends a 10 bit gyro offset from its low byte and 2 high
// bits.
func gyroOffset(lo, hi byte) int16 {
	v := int16(uint16(lo) | uint16(hi)<<8)
	if v&0x200 != 0 {
		v -= 0x400
	}
	return v
}

// EnableOffsetCompensation enables or disables the application of the stored
// offsets to the accelerometer and gyroscope data paths.
func (d *Dev) EnableOffsetCompensation(accel, gyro bool) error {
	var v byte
	if accel {
		v |= fieldAccelOffEn.Mask
	}
	if gyro {
		v |= fieldGyroOffEn.Mask
	}
	return d.t.updateReg(RegOffsetConf, fieldAccelOffEn.Mask|fieldGyroOffEn.Mask, v)
}
