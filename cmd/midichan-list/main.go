// Command midichan-list enumerates the MIDI ports the runtime's backend can
// see, standing in for the host-glue binary this module otherwise leaves out
// of scope.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/oda-midichan/midichan/internal/port"
)

func main() {
	listIn := pflag.Bool("list-in", true, "list available MIDI input ports")
	listOut := pflag.Bool("list-out", true, "list available MIDI output ports")
	pflag.Parse()

	backend := port.NewRtmidiBackend()

	if *listIn {
		ins, err := backend.Ins()
		if err != nil {
			log.Error("querying input ports", "err", err)
			os.Exit(1)
		}
		printPorts("input", ins)
	}

	if *listOut {
		outs, err := backend.Outs()
		if err != nil {
			log.Error("querying output ports", "err", err)
			os.Exit(1)
		}
		printPorts("output", outs)
	}
}

func printPorts(kind string, names []string) {
	fmt.Printf("Available MIDI %s ports:\n", kind)
	for i, name := range names {
		fmt.Printf("  %d: %s\n", i, name)
	}
}
