package main

import (
	"context"
	"flag"
	"log"

	"github.com/robotalks/petwant.go/pkg/cli/sh"
	"github.com/robotalks/petwant.go/pkg/device"
	"github.com/robotalks/petwant.go/pkg/env"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()

	dev := env.Default().MustNewDevice()
	shell := sh.New(dev)
	if shell.Interactive {
		dev.Handler = device.HandleEventFunc(func(_ context.Context, ev *device.Event) {
			shell.Shell.Println(ev.String())
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	svc := &device.Service{Device: dev, OnReady: func() { close(ready) }}
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Run(ctx)
	}()
	select {
	case <-ready:
	case err := <-errCh:
		log.Fatalln(err)
	}

	err := shell.Run(flag.Args()...)
	cancel()
	<-errCh
	if err != nil {
		log.Fatalln(err)
	}
}
