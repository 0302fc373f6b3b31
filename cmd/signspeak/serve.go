package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chaz8081/signspeak/internal/server"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	common := addCommonFlags(fs)
	addr := fs.String("addr", "", "listen address (default: server.addr)")
	fs.Parse(args)

	a, err := common.load()
	if err != nil {
		return err
	}
	defer a.close()
	if *addr != "" {
		a.cfg.Server.Addr = *addr
	}
	printBanner(a.cfg, fmt.Sprintf("Listen:   %s", a.cfg.Server.Addr))

	dict, err := a.dictionary()
	if err != nil {
		return err
	}

	var tr server.Transcriber
	if t, err := a.newTranscriber(); err != nil {
		a.logger.Warn("Transcription disabled", zap.Error(err))
	} else {
		defer t.Close()
		tr = t
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(tr, dict, a.planOptions(), a.logger).Run(ctx, a.cfg.Server.Addr)
}
