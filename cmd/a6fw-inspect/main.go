// Command a6fw-inspect runs only the SysEx detector stage against a
// capture file and prints every message/skip event. It performs no 7-bit
// decoding and no block reassembly — useful for confirming a capture is
// well-formed MIDI before trusting a6fw-extract's output.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/a6tools/a6fw/handler"
	"github.com/a6tools/a6fw/report"
	"github.com/a6tools/a6fw/sysex"
)

func main() {
	var capacity = pflag.IntP("capacity", "c", 4096, "Maximum payload size, in bytes, before a message is reported as overflow.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: a6fw-inspect [flags] [capture-file]")
		fmt.Fprintln(os.Stderr, "reads stdin if capture-file is omitted")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	var input = os.Stdin
	if len(pflag.Args()) == 1 {
		var f, err = os.Open(pflag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		defer f.Close()
		input = f
	} else if len(pflag.Args()) > 1 {
		fmt.Fprintln(os.Stderr, "error: at most one capture file may be given")
		pflag.Usage()
		os.Exit(2)
	}

	var messageCount, skipCount int

	var h = handler.Func[sysex.Event](func(e sysex.Event) handler.Signal {
		if _, ok := e.(sysex.Message); ok {
			messageCount++
		} else {
			skipCount++
		}
		fmt.Println(report.Sysex(e))
		return handler.Continue
	})

	var detector = sysex.New(*capacity)
	var completed, consumed, err = detector.Scan(bufio.NewReader(input), h)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "%d byte(s) scanned, %d message(s), %d skip region(s), completed=%v\n",
		consumed, messageCount, skipCount, completed)
}
