// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bmi160

import (
	"errors"
	"fmt"
)

var (
	// ErrCommunication is returned when a bus transaction fails. The driver
	// never retries on its own; retry policy belongs to the caller.
	ErrCommunication = errors.New("bmi160: bus communication failed")

	// ErrInvalidConfig is returned when a setting is outside the values the
	// sensor documents. It is raised before any bus write is attempted.
	ErrInvalidConfig = errors.New("bmi160: invalid configuration")

	// ErrReadOnlyRegister is returned on a write attempt to a read-only
	// register. The write is rejected without a bus round-trip.
	ErrReadOnlyRegister = errors.New("bmi160: write to read-only register")

	// ErrFOCTimeout is returned when fast offset compensation does not
	// report completion within the caller's attempt budget.
	ErrFOCTimeout = errors.New("bmi160: fast offset compensation timed out")

	// ErrUnexpectedChip is returned when the chip identification register
	// does not match the BMI160 chip ID.
	ErrUnexpectedChip = errors.New("bmi160: unexpected chip ID")

	// ErrInvalidReading is returned when the sensor reports the documented
	// invalid marker value instead of a measurement.
	ErrInvalidReading = errors.New("bmi160: invalid sensor reading")
)

// MalformedHeaderError reports a FIFO frame header byte that matches none of
// the documented tags. Decoding halts at the header since the length of the
// remaining stream depends on it; frames decoded before the bad byte are
// still returned.
type MalformedHeaderError struct {
	// Offset is the position of the header byte in the decoded buffer,
	// counted after any carried-over bytes were prepended.
	Offset int
	// Header is the raw header byte.
	Header byte
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("bmi160: malformed FIFO frame header %#02x at offset %d", e.Header, e.Offset)
}
