// Reader is a Modbus/TCP test client for the pump PLC simulator. It reads
// the register map and prints engineering values, and can exercise the
// external pump control path with -start and -stop.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/goburrow/modbus"

	"github.com/rwirdemann/pumpsim"
)

func main() {
	var addr string
	var watch, start, stop bool
	var interval time.Duration
	flag.StringVar(&addr, "addr", "localhost:5502", "simulator address")
	flag.BoolVar(&watch, "watch", false, "poll the register map once per interval")
	flag.DurationVar(&interval, "interval", time.Second, "poll interval")
	flag.BoolVar(&start, "start", false, "write the pump control register to start the pump")
	flag.BoolVar(&stop, "stop", false, "write the pump control register to stop the pump")
	flag.Parse()

	handler := modbus.NewTCPClientHandler(addr)
	handler.Timeout = 3 * time.Second
	handler.SlaveId = 1

	if err := handler.Connect(); err != nil {
		log.Fatal(err)
	}
	defer handler.Close()

	client := modbus.NewClient(handler)

	if start {
		if _, err := client.WriteSingleRegister(pumpsim.RegPumpControl, 1); err != nil {
			log.Fatal(err)
		}
		fmt.Println("pump start requested")
	}
	if stop {
		if _, err := client.WriteSingleRegister(pumpsim.RegPumpControl, 0); err != nil {
			log.Fatal(err)
		}
		fmt.Println("pump stop requested")
	}

	for {
		if err := dump(client); err != nil {
			log.Fatal(err)
		}
		if !watch {
			return
		}
		time.Sleep(interval)
		fmt.Println()
	}
}

func dump(client modbus.Client) error {
	// one read covers the whole mapped area (registers 1..16)
	bb, err := client.ReadHoldingRegisters(0, 17)
	if err != nil {
		return fmt.Errorf("read holding registers: %w", err)
	}

	fmt.Printf("%-8s %-18s %-14s %s\n", "Register", "Description", "Value", "Raw")
	for _, reg := range pumpsim.MonitorRegisters {
		raw := binary.BigEndian.Uint16(bb[reg*2:])
		fmt.Printf("%-8d %-18s %-14s %d\n", reg, pumpsim.RegisterDescription(reg), pumpsim.FormatRegister(reg, raw), raw)
	}
	return nil
}
