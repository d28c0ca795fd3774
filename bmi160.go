// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmi160

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// I2CAddr is the default I²C address of the BMI160; I2CAddrAlt is used when
// the SDO pin is pulled high.
const (
	I2CAddr    uint16 = 0x68
	I2CAddrAlt uint16 = 0x69
)

// chipID is the value of CHIP_ID on a BMI160.
const chipID = 0xD1

// CMD register command bytes.
const (
	cmdStartFOC     = 0x03
	cmdAccelSuspend = 0x10
	cmdAccelNormal  = 0x11
	cmdAccelLow     = 0x12
	cmdGyroSuspend  = 0x14
	cmdGyroNormal   = 0x15
	cmdGyroFast     = 0x17
	cmdMagSuspend   = 0x18
	cmdMagNormal    = 0x19
	cmdMagLow       = 0x1A
	cmdFIFOFlush    = 0xB0
	cmdSoftReset    = 0xB6
)

// Post-command settle times from the datasheet.
const (
	softResetDelay = 15 * time.Millisecond
	accelModeDelay = 5 * time.Millisecond
	gyroModeDelay  = 81 * time.Millisecond
	magModeDelay   = 1 * time.Millisecond
)

// PowerMode is the power state of one of the three sensors.
type PowerMode uint8

const (
	PowerSuspend PowerMode = 0x00
	PowerNormal  PowerMode = 0x01
	// PowerLow is duty-cycled low power mode (accel and mag only).
	PowerLow PowerMode = 0x02
	// PowerFastStart keeps the gyro drive ready for a fast transition to
	// normal mode (gyro only).
	PowerFastStart PowerMode = 0x03
)

// String implements fmt.Stringer.
func (m PowerMode) String() string {
	switch m {
	case PowerSuspend:
		return "suspend"
	case PowerNormal:
		return "normal"
	case PowerLow:
		return "low-power"
	case PowerFastStart:
		return "fast-start"
	}
	return fmt.Sprintf("PowerMode(%d)", uint8(m))
}

// Sample is one X/Y/Z reading from the data registers, in raw sensor counts.
type Sample struct {
	X, Y, Z int16
}

// MagSample is one magnetometer reading including the hall resistance.
type MagSample struct {
	X, Y, Z int16
	RHall   uint16
}

// Opts holds the device configuration applied by NewI2C and NewSPI.
type Opts struct {
	// Addr is the I²C address, I2CAddr or I2CAddrAlt. Ignored for SPI.
	Addr uint16
	// AccelODR, AccelBandwidth and AccelRange configure the accelerometer.
	AccelODR       AccelODR
	AccelBandwidth AccelBandwidth
	AccelRange     AccelRange
	// GyroODR, GyroBandwidth and GyroRange configure the gyroscope.
	GyroODR       GyroODR
	GyroBandwidth GyroBandwidth
	GyroRange     GyroRange
}

// DefaultOpts is the recommended default configuration: both sensors at
// 100Hz with the normal filter, ±2g and ±2000°/s.
var DefaultOpts = Opts{
	Addr:           I2CAddr,
	AccelODR:       AccelODR100Hz,
	AccelBandwidth: AccelBWNormal,
	AccelRange:     AccelRange2G,
	GyroODR:        GyroODR100Hz,
	GyroBandwidth:  GyroBWNormal,
	GyroRange:      GyroRange2000DPS,
}

// Dev is a handle to a BMI160 inertial measurement unit.
//
// Dev is not safe for concurrent use: the underlying bus transactions are
// non-reentrant and the FIFO carry-over is per instance state. Callers
// sharing a Dev across goroutines must serialize access themselves.
type Dev struct {
	t     transport
	fifo  FIFOConfig
	carry []byte
}

// NewI2C returns a driver for a BMI160 connected over I²C and applies opts.
// Pass nil to use DefaultOpts.
//
// New performs a soft reset, so the sensor comes up with both accel and gyro
// in normal power mode and an empty FIFO.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr := opts.Addr
	if addr == 0 {
		addr = I2CAddr
	}
	if addr != I2CAddr && addr != I2CAddrAlt {
		return nil, fmt.Errorf("%w: I²C address %#02x", ErrInvalidConfig, addr)
	}
	d := &Dev{t: transport{c: &i2c.Dev{Bus: b, Addr: addr}}}
	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

// NewSPI returns a driver for a BMI160 connected over SPI (mode 3, up to
// 10MHz) and applies opts. Pass nil to use DefaultOpts.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode3, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCommunication, err)
	}
	d := &Dev{t: transport{c: c, spi: true}}
	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) init(opts *Opts) error {
	if err := d.SoftReset(); err != nil {
		return err
	}
	id, err := d.t.readReg(RegChipID)
	if err != nil {
		return err
	}
	if id != chipID {
		return fmt.Errorf("%w: %#02x", ErrUnexpectedChip, id)
	}
	if err := d.SetAccelPower(PowerNormal); err != nil {
		return err
	}
	if err := d.SetGyroPower(PowerNormal); err != nil {
		return err
	}
	if err := d.SetAccelConfig(opts.AccelODR, opts.AccelBandwidth); err != nil {
		return err
	}
	if err := d.SetAccelRange(opts.AccelRange); err != nil {
		return err
	}
	if err := d.SetGyroConfig(opts.GyroODR, opts.GyroBandwidth); err != nil {
		return err
	}
	return d.SetGyroRange(opts.GyroRange)
}

// String implements conn.Resource.
func (d *Dev) String() string {
	return "BMI160"
}

// Halt suspends the accelerometer and gyroscope.
//
// Halt implements conn.Resource.
func (d *Dev) Halt() error {
	if err := d.SetAccelPower(PowerSuspend); err != nil {
		return err
	}
	return d.SetGyroPower(PowerSuspend)
}

// SoftReset restores the power-on register state. After the reset the
// interface mode is re-armed by a dummy read when running over SPI.
func (d *Dev) SoftReset() error {
	if err := d.t.writeReg(RegCmd, cmdSoftReset); err != nil {
		return err
	}
	time.Sleep(softResetDelay)
	if d.t.spi {
		// A read of SPI_COMM_TEST switches the freshly reset device from
		// its default I²C interface to SPI.
		if _, err := d.t.readReg(RegSPICommTest); err != nil {
			return err
		}
	}
	return nil
}

// SetAccelPower sets the accelerometer power mode.
func (d *Dev) SetAccelPower(m PowerMode) error {
	var cmd byte
	switch m {
	case PowerSuspend:
		cmd = cmdAccelSuspend
	case PowerNormal:
		cmd = cmdAccelNormal
	case PowerLow:
		cmd = cmdAccelLow
	default:
		return fmt.Errorf("%w: accel power mode %v", ErrInvalidConfig, m)
	}
	if err := d.t.writeReg(RegCmd, cmd); err != nil {
		return err
	}
	time.Sleep(accelModeDelay)
	return nil
}

// SetGyroPower sets the gyroscope power mode.
func (d *Dev) SetGyroPower(m PowerMode) error {
	var cmd byte
	switch m {
	case PowerSuspend:
		cmd = cmdGyroSuspend
	case PowerNormal:
		cmd = cmdGyroNormal
	case PowerFastStart:
		cmd = cmdGyroFast
	default:
		return fmt.Errorf("%w: gyro power mode %v", ErrInvalidConfig, m)
	}
	if err := d.t.writeReg(RegCmd, cmd); err != nil {
		return err
	}
	time.Sleep(gyroModeDelay)
	return nil
}

// SetMagPower sets the power mode of the magnetometer interface.
func (d *Dev) SetMagPower(m PowerMode) error {
	var cmd byte
	switch m {
	case PowerSuspend:
		cmd = cmdMagSuspend
	case PowerNormal:
		cmd = cmdMagNormal
	case PowerLow:
		cmd = cmdMagLow
	default:
		return fmt.Errorf("%w: mag power mode %v", ErrInvalidConfig, m)
	}
	if err := d.t.writeReg(RegCmd, cmd); err != nil {
		return err
	}
	time.Sleep(magModeDelay)
	return nil
}

// PMUStatus returns the current power mode of the accelerometer, gyroscope
// and magnetometer interface as reported by the sensor.
func (d *Dev) PMUStatus() (accel, gyro, mag PowerMode, err error) {
	v, err := d.t.readReg(RegPMUStatus)
	if err != nil {
		return 0, 0, 0, err
	}
	return PowerMode(fieldPMUAccel.Get(v)), PowerMode(fieldPMUGyro.Get(v)), PowerMode(fieldPMUMag.Get(v)), nil
}

// ReadAccel reads the current accelerometer sample from the data registers.
func (d *Dev) ReadAccel() (Sample, error) {
	var buf [6]byte
	if err := d.t.readBurst(RegAccelData, buf[:]); err != nil {
		return Sample{}, err
	}
	f := decodeAxes(FrameAccel, buf[:])
	return Sample{X: f.X, Y: f.Y, Z: f.Z}, nil
}

// ReadGyro reads the current gyroscope sample from the data registers.
func (d *Dev) ReadGyro() (Sample, error) {
	var buf [6]byte
	if err := d.t.readBurst(RegGyroData, buf[:]); err != nil {
		return Sample{}, err
	}
	f := decodeAxes(FrameGyro, buf[:])
	return Sample{X: f.X, Y: f.Y, Z: f.Z}, nil
}

// ReadMag reads the current magnetometer sample from the data registers.
// The magnetometer interface must have been brought up and put into data
// mode for the values to be meaningful.
func (d *Dev) ReadMag() (MagSample, error) {
	var buf [8]byte
	if err := d.t.readBurst(RegData, buf[:]); err != nil {
		return MagSample{}, err
	}
	f := decodeMag(buf[:])
	return MagSample{X: f.X, Y: f.Y, Z: f.Z, RHall: f.RHall}, nil
}

// SensorTime reads the free-running 24 bit sensor time counter. In headered
// FIFO mode the counter is also available as sensortime frames; in
// headerless mode this register is the only source.
func (d *Dev) SensorTime() (uint32, error) {
	var buf [3]byte
	if err := d.t.readBurst(RegSensorTime, buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16, nil
}

// Temperature reads the die temperature. The register is only updated while
// the gyroscope is in normal or fast-start mode; otherwise the sensor reports
// the invalid marker and ErrInvalidReading is returned.
func (d *Dev) Temperature() (physic.Temperature, error) {
	var buf [2]byte
	if err := d.t.readBurst(RegTemperature, buf[:]); err != nil {
		return 0, err
	}
	raw := int16(binary.LittleEndian.Uint16(buf[:]))
	if raw == -0x8000 {
		return 0, fmt.Errorf("%w: temperature", ErrInvalidReading)
	}
	// 0x0000 maps to 23°C, 1/512 K per LSB.
	t := physic.ZeroCelsius + 23*physic.Celsius
	t += physic.Temperature(raw) * physic.Celsius / 512
	return t, nil
}

// ErrorStatus returns the ERR_REG content. Bit 0 is the fatal error flag,
// bits 1-4 the error code; reading clears the flags.
func (d *Dev) ErrorStatus() (byte, error) {
	return d.t.readReg(RegErrReg)
}

// StepCount reads the 16 bit step counter.
func (d *Dev) StepCount() (uint16, error) {
	var buf [2]byte
	if err := d.t.readBurst(RegStepCnt, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}
