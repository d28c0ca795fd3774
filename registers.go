// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmi160

import "fmt"

// Register is an address in the BMI160 register map.
//
// Addresses and access rights follow the register map in the Bosch BMI160
// datasheet (document BST-BMI160-DS000, section "Register Map").
type Register uint8

const (
	// RegChipID holds the chip identification code, 0xD1 for the BMI160.
	RegChipID Register = 0x00
	// RegErrReg reports sensor error flags. The flags reset when read.
	RegErrReg Register = 0x02
	// RegPMUStatus shows the current power mode of accel, gyro and mag.
	RegPMUStatus Register = 0x03
	// RegData is the start of the burst-readable data block: mag X/Y/Z and
	// RHALL at 0x04, gyro X/Y/Z at 0x0C and accel X/Y/Z at 0x12.
	RegData Register = 0x04
	// RegGyroData is the first gyroscope data byte inside the data block.
	RegGyroData Register = 0x0C
	// RegAccelData is the first accelerometer data byte inside the data block.
	RegAccelData Register = 0x12
	// RegSensorTime is a free-running 24 bit counter, LSB first. The value is
	// shadowed during burst reads that start at RegData and whenever a new
	// FIFO frame is read.
	RegSensorTime Register = 0x18
	// RegStatus reports sensor status flags, among them foc_rdy (bit 3).
	RegStatus Register = 0x1B
	// RegIntStatus is the start of the four interrupt status bytes.
	RegIntStatus Register = 0x1C
	// RegTemperature holds the die temperature as a signed 16 bit value,
	// LSB first; 0x0000 maps to 23°C at 1/512 K per LSB.
	RegTemperature Register = 0x20
	// RegFIFOLength holds the current FIFO fill level in bytes, 11 bits
	// spread over two registers, LSB first.
	RegFIFOLength Register = 0x22
	// RegFIFOData is the FIFO readout port. Burst reads drain the FIFO.
	RegFIFOData Register = 0x24
	// RegAccConf sets the accelerometer output data rate, bandwidth and
	// undersampling mode.
	RegAccConf Register = 0x40
	// RegAccRange selects the accelerometer g-range.
	RegAccRange Register = 0x41
	// RegGyrConf sets the gyroscope output data rate and bandwidth.
	RegGyrConf Register = 0x42
	// RegGyrRange selects the gyroscope angular rate range.
	RegGyrRange Register = 0x43
	// RegMagConf sets the output data rate of the magnetometer interface.
	RegMagConf Register = 0x44
	// RegFIFODowns configures accel and gyro FIFO downsampling and whether
	// filtered or unfiltered data enters the FIFO.
	RegFIFODowns Register = 0x45
	// RegFIFOConfig0 holds the FIFO watermark level in units of 4 bytes.
	RegFIFOConfig0 Register = 0x46
	// RegFIFOConfig1 selects which sensors are stored in the FIFO and whether
	// header mode and sensortime-on-flush are active.
	RegFIFOConfig1 Register = 0x47
	// RegMagIF is the start of the indirect magnetometer interface block.
	RegMagIF Register = 0x4B
	// RegIntEn is the start of the interrupt engine enable block.
	RegIntEn Register = 0x50
	// RegIntOutCtrl configures the electrical behaviour of the interrupt pins.
	RegIntOutCtrl Register = 0x53
	// RegIntLatch holds the interrupt reset bit and latch mode.
	RegIntLatch Register = 0x54
	// RegIntMap is the start of the interrupt-to-pin mapping block.
	RegIntMap Register = 0x55
	// RegIntData selects the data source for the interrupt groups.
	RegIntData Register = 0x58
	// RegIntLowHigh is the start of the low-g/high-g interrupt configuration.
	RegIntLowHigh Register = 0x5A
	// RegIntMotion is the start of the any/no-motion interrupt configuration.
	RegIntMotion Register = 0x5F
	// RegIntTap holds the tap interrupt configuration.
	RegIntTap Register = 0x63
	// RegIntOrient holds the orientation interrupt configuration.
	RegIntOrient Register = 0x65
	// RegIntFlat holds the flat interrupt configuration.
	RegIntFlat Register = 0x67
	// RegFOCConf configures fast offset compensation for accel and gyro.
	RegFOCConf Register = 0x69
	// RegConf holds miscellaneous sensor configuration (nvm_prog_en).
	RegConf Register = 0x6A
	// RegIFConf holds the digital interface configuration.
	RegIFConf Register = 0x6B
	// RegPMUTrigger sets the trigger conditions for gyro power mode changes.
	RegPMUTrigger Register = 0x6C
	// RegSelfTest configures and triggers the built-in self test.
	RegSelfTest Register = 0x6D
	// RegNVConf holds non-volatile interface settings.
	RegNVConf Register = 0x70
	// RegOffset is the start of the 7 byte offset compensation block:
	// accel X/Y/Z as signed bytes, gyro 10 bit offsets split over the
	// following three bytes plus RegOffsetConf.
	RegOffset Register = 0x71
	// RegOffsetConf holds the gyro offset MSBs and the offset enable bits.
	RegOffsetConf Register = 0x77
	// RegStepCnt holds the 16 bit step counter value, LSB first.
	RegStepCnt Register = 0x78
	// RegStepConf is the start of the step detector configuration.
	RegStepConf Register = 0x7A
	// RegCmd triggers operations like soft reset, power mode changes, FIFO
	// flush and fast offset compensation. Write only.
	RegCmd Register = 0x7E
	// RegSPICommTest is a dummy register; reading it switches the device
	// interface to SPI mode after a power-on or soft reset.
	RegSPICommTest Register = 0x7F
)

// Addr returns the raw register address.
func (r Register) Addr() uint8 {
	return uint8(r)
}

// Writable reports whether the register accepts writes. Writes to read-only
// registers are rejected by the driver before any bus transaction.
func (r Register) Writable() bool {
	switch r {
	case RegChipID, RegErrReg, RegPMUStatus, RegData, RegGyroData,
		RegAccelData, RegSensorTime, RegStatus, RegIntStatus, RegTemperature,
		RegFIFOLength, RegFIFOData, RegStepCnt, RegSPICommTest:
		return false
	}
	return true
}

// String implements fmt.Stringer using the datasheet register names.
func (r Register) String() string {
	switch r {
	case RegChipID:
		return "CHIP_ID"
	case RegErrReg:
		return "ERR_REG"
	case RegPMUStatus:
		return "PMU_STATUS"
	case RegData:
		return "DATA"
	case RegGyroData:
		return "DATA_GYR"
	case RegAccelData:
		return "DATA_ACC"
	case RegSensorTime:
		return "SENSORTIME"
	case RegStatus:
		return "STATUS"
	case RegIntStatus:
		return "INT_STATUS"
	case RegTemperature:
		return "TEMPERATURE"
	case RegFIFOLength:
		return "FIFO_LENGTH"
	case RegFIFOData:
		return "FIFO_DATA"
	case RegAccConf:
		return "ACC_CONF"
	case RegAccRange:
		return "ACC_RANGE"
	case RegGyrConf:
		return "GYR_CONF"
	case RegGyrRange:
		return "GYR_RANGE"
	case RegMagConf:
		return "MAG_CONF"
	case RegFIFODowns:
		return "FIFO_DOWNS"
	case RegFIFOConfig0:
		return "FIFO_CONFIG_0"
	case RegFIFOConfig1:
		return "FIFO_CONFIG_1"
	case RegMagIF:
		return "MAG_IF"
	case RegIntEn:
		return "INT_EN"
	case RegIntOutCtrl:
		return "INT_OUT_CTRL"
	case RegIntLatch:
		return "INT_LATCH"
	case RegIntMap:
		return "INT_MAP"
	case RegIntData:
		return "INT_DATA"
	case RegIntLowHigh:
		return "INT_LOWHIGH"
	case RegIntMotion:
		return "INT_MOTION"
	case RegIntTap:
		return "INT_TAP"
	case RegIntOrient:
		return "INT_ORIENT"
	case RegIntFlat:
		return "INT_FLAT"
	case RegFOCConf:
		return "FOC_CONF"
	case RegConf:
		return "CONF"
	case RegIFConf:
		return "IF_CONF"
	case RegPMUTrigger:
		return "PMU_TRIGGER"
	case RegSelfTest:
		return "SELF_TEST"
	case RegNVConf:
		return "NV_CONF"
	case RegOffset:
		return "OFFSET"
	case RegOffsetConf:
		return "OFFSET_CONF"
	case RegStepCnt:
		return "STEP_CNT"
	case RegStepConf:
		return "STEP_CONF"
	case RegCmd:
		return "CMD"
	case RegSPICommTest:
		return "SPI_COMM_TEST"
	}
	return fmt.Sprintf("Register(%#04x)", uint8(r))
}

// Field describes a bit field packed into a register, replacing paired
// mask/position constants with a single descriptor.
type Field struct {
	Reg   Register
	Mask  uint8
	Shift uint8
}

// Make shifts a field value into register position and clips it to the mask.
func (f Field) Make(v uint8) uint8 {
	return (v << f.Shift) & f.Mask
}

// Get extracts the field value from a raw register byte.
func (f Field) Get(regVal uint8) uint8 {
	return (regVal & f.Mask) >> f.Shift
}

// Bit fields of the configuration registers used by this driver. Several
// unrelated settings share a register, so all writes go through masked
// read-modify-write cycles.
var (
	fieldAccelODR      = Field{RegAccConf, 0x0F, 0}
	fieldAccelBW       = Field{RegAccConf, 0x70, 4}
	fieldAccelUS       = Field{RegAccConf, 0x80, 7}
	fieldAccelRange    = Field{RegAccRange, 0x0F, 0}
	fieldGyroODR       = Field{RegGyrConf, 0x0F, 0}
	fieldGyroBW        = Field{RegGyrConf, 0x30, 4}
	fieldGyroRange     = Field{RegGyrRange, 0x07, 0}
	fieldGyroFIFODown  = Field{RegFIFODowns, 0x07, 0}
	fieldGyroFIFOFilt  = Field{RegFIFODowns, 0x08, 3}
	fieldAccelFIFODown = Field{RegFIFODowns, 0x70, 4}
	fieldAccelFIFOFilt = Field{RegFIFODowns, 0x80, 7}
	fieldFOCAccelZ     = Field{RegFOCConf, 0x03, 0}
	fieldFOCAccelY     = Field{RegFOCConf, 0x0C, 2}
	fieldFOCAccelX     = Field{RegFOCConf, 0x30, 4}
	fieldFOCGyro       = Field{RegFOCConf, 0x40, 6}
	fieldFOCReady      = Field{RegStatus, 0x08, 3}
	fieldGyroOffEn     = Field{RegOffsetConf, 0x80, 7}
	fieldAccelOffEn    = Field{RegOffsetConf, 0x40, 6}
	fieldPMUMag        = Field{RegPMUStatus, 0x03, 0}
	fieldPMUGyro       = Field{RegPMUStatus, 0x0C, 2}
	fieldPMUAccel      = Field{RegPMUStatus, 0x30, 4}
)
