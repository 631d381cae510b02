// Command obdserve is the long-running agent that reads OBD-II
// response frames from a serial-attached CAN bridge, decodes them
// through a compiled schema, caches the latest reading per (mode,pid)
// in a local bbolt database, and republishes readings over MQTT.
// Structurally this mirrors the teacher's cmd/agent-j1587 binary:
// same flag block, same signal-driven shutdown, same defer-chain
// teardown of port/bus/mqtt resources.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tarm/serial"

	"github.com/serebryakov7/obdpid/internal/publish"
	"github.com/serebryakov7/obdpid/internal/schema"
)

const (
	defaultPortName       = "/dev/ttyUSB0"
	defaultBaudRate       = 38400
	defaultCacheDB        = "obdserve.db"
	defaultMqttBroker     = publish.DefaultBroker
	defaultMqttTopic      = publish.DefaultTopic
	defaultUpdateInterval = publish.DefaultUpdateInterval
)

var (
	schemaPath     = flag.String("schema", "", "path to the OBD-II schema file (required)")
	portName       = flag.String("port", defaultPortName, "serial port the CAN bridge is attached to")
	baudRate       = flag.Int("baud", defaultBaudRate, "serial baud rate")
	cacheDBPath    = flag.String("cache", defaultCacheDB, "path to the reading-cache bbolt database")
	mqttBroker     = flag.String("broker", defaultMqttBroker, "MQTT broker")
	mqttTopic      = flag.String("topic", defaultMqttTopic, "MQTT topic for decoded readings")
	updateInterval = flag.Duration("interval", defaultUpdateInterval, "MQTT publish interval")
)

func main() {
	flag.Parse()

	if *schemaPath == "" {
		log.Fatal("missing required -schema flag")
	}

	ctx, err := schema.CompileFile(*schemaPath)
	if err != nil {
		log.Fatalf("compiling schema %s: %v", *schemaPath, err)
	}
	log.Printf("schema compiled: %d pid(s), big_endian=%v", ctx.PIDCount(), ctx.BigEndian)

	portConfig := &serial.Config{
		Name:        *portName,
		Baud:        *baudRate,
		ReadTimeout: 100 * time.Millisecond,
	}
	port, err := serial.OpenPort(portConfig)
	if err != nil {
		log.Fatalf("opening serial port %s: %v", *portName, err)
	}
	defer port.Close()

	bus, err := NewBus(port, ctx, *cacheDBPath)
	if err != nil {
		log.Fatalf("initializing bus: %v", err)
	}
	defer bus.Close()

	bus.StartReading()
	defer bus.StopReading()

	mqttClient := publish.NewClient(publish.Config{
		Broker:         *mqttBroker,
		ClientID:       "obdserve",
		Topic:          *mqttTopic,
		UpdateInterval: *updateInterval,
	}, bus.Snapshot)

	if err := mqttClient.Connect(); err != nil {
		log.Fatalf("connecting to MQTT broker: %v", err)
	}
	defer mqttClient.Disconnect()

	mqttClient.StartPublishing()
	defer mqttClient.StopPublishing()

	log.Println("obdserve running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("shutting down obdserve...")
}
