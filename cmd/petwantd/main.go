package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/petwant.go/pkg/comm/mqtt"
	"github.com/robotalks/petwant.go/pkg/device"
	"github.com/robotalks/petwant.go/pkg/env"
	"github.com/robotalks/petwant.go/pkg/framework"
	"github.com/robotalks/petwant.go/pkg/metrics"
)

func init() {
	env.SetupFlags()
}

func logEvent(_ context.Context, ev *device.Event) {
	glog.Infof("event %s", ev)
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.Default()
	dev := conf.MustNewDevice()
	runner := framework.NewRunner(context.Background()).HandleSignals()

	reg := metrics.NewRegistry()
	handlers := []device.EventHandler{metrics.NewDeviceMetrics(reg), device.HandleEventFunc(logEvent)}
	if conf.MetricsAddr != "" {
		runner.Go(&metrics.Server{Addr: conf.MetricsAddr, Handler: metrics.Handler(reg)})
	}
	if conf.MQTTBrokerURL != "" {
		bridge, err := mqtt.NewBridge(conf.MQTTBrokerURL, conf.DeviceID, dev, map[string]string{
			"port": conf.Port,
		})
		if err != nil {
			glog.Exitf("MQTT: %v", err)
		}
		handlers = append(handlers, bridge)
		runner.Go(bridge)
	}
	dev.Handler = device.Handlers(handlers...)
	runner.Go(&device.Service{Device: dev})

	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
