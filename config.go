// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmi160

import "fmt"

// AccelODR is an accelerometer output data rate code.
type AccelODR uint8

const (
	AccelODR0_78Hz AccelODR = 0x01
	AccelODR1_56Hz AccelODR = 0x02
	AccelODR3_12Hz AccelODR = 0x03
	AccelODR6_25Hz AccelODR = 0x04
	AccelODR12_5Hz AccelODR = 0x05
	AccelODR25Hz   AccelODR = 0x06
	AccelODR50Hz   AccelODR = 0x07
	AccelODR100Hz  AccelODR = 0x08
	AccelODR200Hz  AccelODR = 0x09
	AccelODR400Hz  AccelODR = 0x0A
	AccelODR800Hz  AccelODR = 0x0B
	AccelODR1600Hz AccelODR = 0x0C

	accelODRMax = 0x0F
)

// GyroODR is a gyroscope output data rate code.
type GyroODR uint8

const (
	GyroODR25Hz   GyroODR = 0x06
	GyroODR50Hz   GyroODR = 0x07
	GyroODR100Hz  GyroODR = 0x08
	GyroODR200Hz  GyroODR = 0x09
	GyroODR400Hz  GyroODR = 0x0A
	GyroODR800Hz  GyroODR = 0x0B
	GyroODR1600Hz GyroODR = 0x0C
	GyroODR3200Hz GyroODR = 0x0D

	gyroODRMax = 0x0D
)

// AccelBandwidth selects the accelerometer filter/averaging mode.
type AccelBandwidth uint8

const (
	AccelBWOSR4   AccelBandwidth = 0x00
	AccelBWOSR2   AccelBandwidth = 0x01
	AccelBWNormal AccelBandwidth = 0x02
	AccelBWAvg8   AccelBandwidth = 0x03
	AccelBWAvg16  AccelBandwidth = 0x04
	AccelBWAvg32  AccelBandwidth = 0x05
	AccelBWAvg64  AccelBandwidth = 0x06
	AccelBWAvg128 AccelBandwidth = 0x07

	accelBWMax = 0x07
)

// GyroBandwidth selects the gyroscope filter mode.
type GyroBandwidth uint8

const (
	GyroBWOSR4   GyroBandwidth = 0x00
	GyroBWOSR2   GyroBandwidth = 0x01
	GyroBWNormal GyroBandwidth = 0x02

	gyroBWMax = 0x02
)

// AccelRange selects the accelerometer g-range. The codes are sparse; only
// the four documented values are accepted.
type AccelRange uint8

const (
	AccelRange2G  AccelRange = 0x03
	AccelRange4G  AccelRange = 0x05
	AccelRange8G  AccelRange = 0x08
	AccelRange16G AccelRange = 0x0C
)

// GyroRange selects the gyroscope angular rate range.
type GyroRange uint8

const (
	GyroRange2000DPS GyroRange = 0x00
	GyroRange1000DPS GyroRange = 0x01
	GyroRange500DPS  GyroRange = 0x02
	GyroRange250DPS  GyroRange = 0x03
	GyroRange125DPS  GyroRange = 0x04

	gyroRangeMax = 0x04
)

// applyMasked replaces the bits of cur selected by mask with the matching
// bits of value. Bits outside mask are untouched, so unrelated settings
// packed into the same register survive the write.
func applyMasked(cur, mask, value byte) byte {
	return (cur &^ mask) | (value & mask)
}

// encodeAccelConf packs an accelerometer ODR and bandwidth into the ACC_CONF
// layout. Out-of-range codes are rejected before any bus traffic.
func encodeAccelConf(odr AccelODR, bw AccelBandwidth) (byte, error) {
	if odr > accelODRMax {
		return 0, fmt.Errorf("%w: accel ODR code %#02x", ErrInvalidConfig, uint8(odr))
	}
	if bw > accelBWMax {
		return 0, fmt.Errorf("%w: accel bandwidth code %#02x", ErrInvalidConfig, uint8(bw))
	}
	return fieldAccelBW.Make(uint8(bw)) | fieldAccelODR.Make(uint8(odr)), nil
}

// encodeGyroConf packs a gyroscope ODR and bandwidth into the GYR_CONF
// layout. The gyro accepts a narrower ODR range than the accelerometer.
func encodeGyroConf(odr GyroODR, bw GyroBandwidth) (byte, error) {
	if odr > gyroODRMax {
		return 0, fmt.Errorf("%w: gyro ODR code %#02x", ErrInvalidConfig, uint8(odr))
	}
	if bw > gyroBWMax {
		return 0, fmt.Errorf("%w: gyro bandwidth code %#02x", ErrInvalidConfig, uint8(bw))
	}
	return fieldGyroBW.Make(uint8(bw)) | fieldGyroODR.Make(uint8(odr)), nil
}

func encodeAccelRange(r AccelRange) (byte, error) {
	switch r {
	case AccelRange2G, AccelRange4G, AccelRange8G, AccelRange16G:
		return fieldAccelRange.Make(uint8(r)), nil
	}
	return 0, fmt.Errorf("%w: accel range code %#02x", ErrInvalidConfig, uint8(r))
}

func encodeGyroRange(r GyroRange) (byte, error) {
	if r > gyroRangeMax {
		return 0, fmt.Errorf("%w: gyro range code %#02x", ErrInvalidConfig, uint8(r))
	}
	return fieldGyroRange.Make(uint8(r)), nil
}

// SetAccelConfig sets the accelerometer output data rate and bandwidth,
// preserving the undersampling bit.
func (d *Dev) SetAccelConfig(odr AccelODR, bw AccelBandwidth) error {
	v, err := encodeAccelConf(odr, bw)
	if err != nil {
		return err
	}
	return d.t.updateReg(RegAccConf, fieldAccelODR.Mask|fieldAccelBW.Mask, v)
}

// SetGyroConfig sets the gyroscope output data rate and bandwidth.
func (d *Dev) SetGyroConfig(odr GyroODR, bw GyroBandwidth) error {
	v, err := encodeGyroConf(odr, bw)
	if err != nil {
		return err
	}
	return d.t.updateReg(RegGyrConf, fieldGyroODR.Mask|fieldGyroBW.Mask, v)
}

// SetAccelRange selects the accelerometer g-range.
func (d *Dev) SetAccelRange(r AccelRange) error {
	v, err := encodeAccelRange(r)
	if err != nil {
		return err
	}
	return d.t.updateReg(RegAccRange, fieldAccelRange.Mask, v)
}

// SetGyroRange selects the gyroscope angular rate range.
func (d *Dev) SetGyroRange(r GyroRange) error {
	v, err := encodeGyroRange(r)
	if err != nil {
		return err
	}
	return d.t.updateReg(RegGyrRange, fieldGyroRange.Mask, v)
}

// FIFO_CONFIG_1 enable bits.
const (
	fifoTimeEnable   = 0x02
	fifoHeaderEnable = 0x10
	fifoMagEnable    = 0x20
	fifoAccelEnable  = 0x40
	fifoGyroEnable   = 0x80
)

// SetFIFOConfig programs which streams the FIFO stores, the frame format and
// the per-stream downsampling, and remembers the configuration for frame
// decoding. Any carried-over partial frame from a previous configuration is
// dropped since its layout is no longer known.
func (d *Dev) SetFIFOConfig(cfg FIFOConfig) error {
	if cfg.AccelDownsample > fifoDownsampleMax || cfg.GyroDownsample > fifoDownsampleMax {
		return fmt.Errorf("%w: FIFO downsampling shift > %d", ErrInvalidConfig, fifoDownsampleMax)
	}
	var bits byte
	if cfg.Time {
		bits |= fifoTimeEnable
	}
	if cfg.Header {
		bits |= fifoHeaderEnable
	}
	if cfg.Mag {
		bits |= fifoMagEnable
	}
	if cfg.Accel {
		bits |= fifoAccelEnable
	}
	if cfg.Gyro {
		bits |= fifoGyroEnable
	}
	mask := byte(fifoTimeEnable | fifoHeaderEnable | fifoMagEnable | fifoAccelEnable | fifoGyroEnable)
	if err := d.t.updateReg(RegFIFOConfig1, mask, bits); err != nil {
		return err
	}
	downs := fieldAccelFIFODown.Make(cfg.AccelDownsample) | fieldGyroFIFODown.Make(cfg.GyroDownsample)
	if cfg.AccelFiltered {
		downs |= fieldAccelFIFOFilt.Mask
	}
	if cfg.GyroFiltered {
		downs |= fieldGyroFIFOFilt.Mask
	}
	if err := d.t.writeReg(RegFIFODowns, downs); err != nil {
		return err
	}
	d.fifo = cfg
	d.carry = nil
	return nil
}

// SetFIFOWatermark sets the fill level, in bytes, at which the watermark
// interrupt condition asserts. The hardware granularity is 4 bytes; level is
// rounded down. The register holds 8 bits of 4-byte units, so the highest
// programmable level is 1020 bytes.
func (d *Dev) SetFIFOWatermark(level int) error {
	if level < 0 || level > fifoWatermarkMax {
		return fmt.Errorf("%w: FIFO watermark %d bytes", ErrInvalidConfig, level)
	}
	return d.t.writeReg(RegFIFOConfig0, byte(level/4))
}
