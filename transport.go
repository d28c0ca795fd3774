// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmi160

import (
	"fmt"

	"periph.io/x/conn/v3"
)

// SPI transfers set the read flag in the address byte; writes clear it.
const (
	spiReadMask  = 0x80
	spiWriteMask = 0x7F
)

// transport moves bytes to and from the register file over either I²C or
// SPI. It is not safe for concurrent use; the Dev serializes access.
type transport struct {
	c   conn.Conn
	spi bool
}

func (t *transport) readReg(reg Register) (byte, error) {
	var buf [1]byte
	if err := t.readBurst(reg, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// readBurst reads len(buf) bytes starting at reg. The BMI160 auto-increments
// the register address within a burst, except at RegFIFOData which always
// reads from the FIFO.
func (t *transport) readBurst(reg Register, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	var err error
	if t.spi {
		// Full duplex: one address byte shifted out, payload follows.
		w := make([]byte, len(buf)+1)
		r := make([]byte, len(buf)+1)
		w[0] = reg.Addr() | spiReadMask
		if err = t.c.Tx(w, r); err == nil {
			copy(buf, r[1:])
		}
	} else {
		err = t.c.Tx([]byte{reg.Addr()}, buf)
	}
	if err != nil {
		return fmt.Errorf("%w: read %v: %w", ErrCommunication, reg, err)
	}
	return nil
}

func (t *transport) writeReg(reg Register, value byte) error {
	if !reg.Writable() {
		return fmt.Errorf("%w: %v", ErrReadOnlyRegister, reg)
	}
	addr := reg.Addr()
	if t.spi {
		addr &= spiWriteMask
	}
	if err := t.c.Tx([]byte{addr, value}, nil); err != nil {
		return fmt.Errorf("%w: write %v: %w", ErrCommunication, reg, err)
	}
	return nil
}

// updateReg performs a read-modify-write cycle, replacing only the bits
// selected by mask and preserving every other bit of the register.
func (t *transport) updateReg(reg Register, mask, value byte) error {
	if !reg.Writable() {
		return fmt.Errorf("%w: %v", ErrReadOnlyRegister, reg)
	}
	cur, err := t.readReg(reg)
	if err != nil {
		return err
	}
	return t.writeReg(reg, applyMasked(cur, mask, value))
}
