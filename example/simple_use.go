package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/showbridge/midirelay/internal/settings"
	"github.com/showbridge/midirelay/sdk/contracts"
	"github.com/showbridge/midirelay/sdk/relay"
)

func main() {
	store, err := settings.NewFileStore("midirelay.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open settings: %v\n", err)
		os.Exit(1)
	}

	r, err := relay.New(
		contracts.WithSettingsStore(store),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithVirtualPortName("MIDI Relay"),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not start relay: %v\n", err)
		os.Exit(1)
	}
	defer r.Shutdown()

	ports, err := r.Ports()
	if err != nil {
		fmt.Fprintf(os.Stderr, "port scan failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Available MIDI ports:")
	for _, p := range ports {
		fmt.Printf("  [%s] %s (opened=%v)\n", p.Direction, p.Name, p.Opened)
	}

	// Fire a webhook whenever middle C is played on any port.
	trigger, err := r.AddTrigger(contracts.Trigger{
		MidiCommand: "noteon",
		MidiPort:    contracts.Wildcard,
		Channel:     contracts.Wildcard,
		Note:        "60",
		ActionType:  "http",
		URL:         "http://localhost:8080/hooks/middle-c",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not add trigger: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Relaying with trigger", trigger.ID, "- press Ctrl+C to exit.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
