// Command test-inject is a manual test for transcript output. After a
// countdown it delivers a sample transcript with the chosen method; focus a
// text editor first when testing "type" or "paste".
//
// Usage:
//
//	go run ./cmd/test-inject [--method print|type|paste] [--text "..."]
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chaz8081/signspeak/internal/inject"
)

func main() {
	method := flag.String("method", "type", "output method: print, type or paste")
	text := flag.String("text", "he wants an apple", "transcript to deliver")
	wait := flag.Int("wait", 3, "seconds to wait before delivering")
	flag.Parse()

	out, err := inject.New(*method, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("Delivering %q with %q in %d seconds...\n", *text, *method, *wait)
	for i := *wait; i > 0; i-- {
		fmt.Printf("%d...\n", i)
		time.Sleep(time.Second)
	}

	if err := out.Inject(*text); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\nDone!")
}
