// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bmi160 controls a Bosch BMI160 inertial measurement unit over I²C
// or SPI.
//
// The BMI160 combines a 16 bit accelerometer and gyroscope with an optional
// BMM150 magnetometer on its auxiliary interface. Beyond the direct data
// registers the sensor offers a 1024 byte hardware FIFO storing
// variable-length, self-describing frames; DecodeFrames turns the raw byte
// stream drained from the FIFO into typed frames, handling headered and
// headerless layouts, skip and sensortime markers, and frames that straddle
// two register reads.
//
// Datasheet: https://ae-bst.resource.bosch.com/media/_tech/media/datasheets/BST-BMI160-DS000.pdf
package bmi160
