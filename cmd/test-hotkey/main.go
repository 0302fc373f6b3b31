// Command test-hotkey is a manual test for the push-to-talk hotkey.
// Run it, then press the configured combo to see events. Ctrl+C exits.
//
// Usage:
//
//	go run ./cmd/test-hotkey [--mode hold|toggle] [--keys ctrl,shift,r]
package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/chaz8081/signspeak/internal/config"
	"github.com/chaz8081/signspeak/internal/hotkey"
)

func main() {
	mode := flag.String("mode", "hold", "hotkey mode: hold or toggle")
	keys := flag.String("keys", strings.Join(config.Default().Hotkey.Keys, ","), "comma separated key combo")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	listener := hotkey.New(config.HotkeyConfig{Keys: strings.Split(*keys, ","), Mode: *mode}, logger)
	fmt.Printf("Listening for %s in %q mode. Press Ctrl+C to exit.\n", listener.Combo(), *mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		n := 0
		for ev := range listener.Events() {
			n++
			switch ev.Type {
			case hotkey.EventStart:
				fmt.Printf("%3d >>> start recording\n", n)
			case hotkey.EventStop:
				fmt.Printf("%3d <<< stop recording\n", n)
			}
		}
	}()

	listener.Run(ctx)
	<-done
	fmt.Println("Done.")
}
