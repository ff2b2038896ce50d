package device

import (
	"context"
	"time"

	"github.com/golang/glog"
)

// ShutdownTimeout bounds the LED update when Service stops.
const ShutdownTimeout = time.Second

// Service runs a Device as a long running feeder daemon.
// On start the pins and the port are set up and both LEDs are lit. On stop
// the link LED goes off and the hardware is released.
type Service struct {
	Device *Device
	// OnReady is called once the feeder is set up.
	OnReady func()
}

// Name implements framework.Named.
func (s *Service) Name() string {
	return "feeder"
}

// Run implements framework.Runnable.
func (s *Service) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() {
		runErr <- s.Device.Run(runCtx)
	}()
	stop := func(err error) error {
		cancel()
		<-runErr
		if cerr := s.Device.Close(); cerr != nil {
			glog.Warningf("close device: %v", cerr)
		}
		return err
	}

	if err := s.start(ctx); err != nil {
		return stop(err)
	}
	glog.Info("feeder ready")
	if s.OnReady != nil {
		s.OnReady()
	}

	select {
	case err := <-runErr:
		runErr <- err
		return stop(err)
	case <-ctx.Done():
	}
	offCtx, offCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer offCancel()
	if err := s.Device.SetLinkLED(offCtx, false); err != nil {
		glog.Warningf("link LED off: %v", err)
	}
	return stop(ctx.Err())
}

func (s *Service) start(ctx context.Context) error {
	for _, fn := range []func(context.Context) error{
		s.Device.SetupGPIO,
		s.Device.Connect,
		func(ctx context.Context) error { return s.Device.SetPowerLED(ctx, true) },
		func(ctx context.Context) error { return s.Device.SetLinkLED(ctx, true) },
	} {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}
