// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// imustream drains the BMI160 FIFO on a fixed interval and publishes the
// decoded frames as JSON over MQTT, one message per frame.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/bionicbits/bmi160"
)

type frameMsg struct {
	Type    string `json:"type"`
	X       int16  `json:"x"`
	Y       int16  `json:"y"`
	Z       int16  `json:"z"`
	RHall   uint16 `json:"rhall,omitempty"`
	Time    uint32 `json:"time,omitempty"`
	Skipped uint8  `json:"skipped,omitempty"`
}

func main() {
	bus := flag.String("bus", "", "I²C bus name, empty for the first available")
	broker := flag.String("broker", "tcp://localhost:1883", "MQTT broker URL")
	clientID := flag.String("client-id", "imustream", "MQTT client ID")
	topic := flag.String("topic", "imu/frames", "MQTT topic to publish frames on")
	interval := flag.Duration("interval", 100*time.Millisecond, "FIFO drain interval")
	mag := flag.Bool("mag", false, "include magnetometer frames")
	flag.Parse()

	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	b, err := i2creg.Open(*bus)
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer b.Close()

	d, err := bmi160.NewI2C(b, nil)
	if err != nil {
		log.Fatalf("failed to initialize BMI160: %v", err)
	}
	defer d.Halt()

	cfg := bmi160.FIFOConfig{Accel: true, Gyro: true, Mag: *mag, Header: true, Time: true}
	if err := d.SetFIFOConfig(cfg); err != nil {
		log.Fatalf("failed to configure FIFO: %v", err)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(*broker).
		SetClientID(*clientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
	}
	defer client.Disconnect(250)

	log.Printf("publishing BMI160 frames to %s on %s", *topic, *broker)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for range ticker.C {
		frames, err := d.ReadFrames()
		if err != nil {
			// A malformed header desynchronizes the stream; flush and
			// resume from a clean FIFO rather than aborting.
			log.Printf("FIFO read error: %v", err)
			if err := d.FlushFIFO(); err != nil {
				log.Fatalf("FIFO flush failed: %v", err)
			}
			continue
		}
		for _, f := range frames {
			msg := frameMsg{
				Type:    f.Kind.String(),
				X:       f.X,
				Y:       f.Y,
				Z:       f.Z,
				RHall:   f.RHall,
				Time:    f.Time,
				Skipped: f.Skipped,
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				log.Fatalf("marshal error: %v", err)
			}
			if token := client.Publish(*topic, 0, false, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error: %v", token.Error())
			}
		}
	}
}
