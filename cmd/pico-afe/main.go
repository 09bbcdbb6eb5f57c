//go:build rp2040 || rp2350

package main

import (
	"context"
	"runtime"
	"time"

	"sensorcode-go/bus"
	"sensorcode-go/internal/platform"
	"sensorcode-go/services/afe"
	"sensorcode-go/services/config"
	"sensorcode-go/services/heartbeat"
	"sensorcode-go/types"
)

const (
	device      = "pico"
	pollTimeout = 2 * time.Second
)

func printTopicWith(prefix string, t bus.Topic) {
	print(prefix)
	print(" ")
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			print("/")
		}
		switch v := t.At(i).(type) {
		case string:
			print(v)
		case int:
			print(v)
		default:
			print("?")
		}
	}
	println()
}

func printAFE(m *bus.Message) {
	printTopicWith("[afe] <-", m.Topic)
	switch v := m.Payload.(type) {
	case types.Status:
		println("  link:", string(v.Link), "error:", v.Error)
	case types.AFEState:
		printState(v)
	}
}

func printState(v types.AFEState) {
	println("  enabled:", v.Enabled, "gain:", v.Gain, "load:", v.Load,
		"ref:", v.Ref, "zero:", v.Zero, "bias:", v.BiasSign, v.BiasLevel,
		"mode:", v.Mode)
	println("  tiacn:", v.TIACN, "refcn:", v.REFCN, "modecn:", v.MODECN)
}

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(3 * time.Second)
	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, device)

	println("[main] bootstrapping bus …")
	b := bus.NewBus(8)
	uiConn := b.NewConnection("ui")

	mon := uiConn.Subscribe(bus.T("afe", "#"))
	go func() {
		for m := range mon.Channel() {
			printAFE(m)
		}
	}()

	println("[main] starting afe service …")
	svc := afe.New(b.NewConnection("afe"), platform.NewRP2())
	go svc.Run(ctx)

	_ = (&heartbeat.Service{}).Start(ctx, b.NewConnection("heartbeat"))

	println("[main] publishing config for", device, "…")
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	time.Sleep(500 * time.Millisecond)

	for {
		if st, err := afe.ReadState(ctx, uiConn, "co", pollTimeout); err != nil {
			println("[main] read error:", err.Error())
		} else {
			printState(st)
		}
		printMem()
		time.Sleep(5 * time.Second)
	}
}

// printMem prints a compact snapshot of TinyGo runtime memory stats.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"mallocs:", uint32(ms.Mallocs),
		"frees:", uint32(ms.Frees),
	)
}
