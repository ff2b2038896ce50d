package device

import (
	"context"
	"fmt"
	"time"
)

// LEDs are lit when the pin is driven low.

func (d *Device) readLED(pin int) (bool, error) {
	level, err := d.gpio.Read(pin)
	return !level, err
}

func (d *Device) writeLED(pin int, on bool) error {
	return d.gpio.Write(pin, !on)
}

func (d *Device) gpioFault(err error) error {
	if err != nil {
		d.failed(fmt.Errorf("GPIO: %w", err))
	}
	return err
}

func (d *Device) ledState(ctx context.Context, pin int) (on bool, err error) {
	err = d.call(ctx, func() (err error) {
		if !d.gpioReady {
			return ErrGPIONotSetup
		}
		on, err = d.readLED(pin)
		return d.gpioFault(err)
	})
	return
}

func (d *Device) setLEDState(ctx context.Context, pin int, on bool) error {
	return d.call(ctx, func() error {
		if !d.gpioReady {
			return ErrGPIONotSetup
		}
		return d.gpioFault(d.writeLED(pin, on))
	})
}

// PowerLED reads whether the power LED is lit.
func (d *Device) PowerLED(ctx context.Context) (bool, error) {
	return d.ledState(ctx, d.conf.PowerLEDPin)
}

// SetPowerLED turns the power LED on or off.
func (d *Device) SetPowerLED(ctx context.Context, on bool) error {
	return d.setLEDState(ctx, d.conf.PowerLEDPin, on)
}

// LinkLED reads whether the link LED is lit.
func (d *Device) LinkLED(ctx context.Context) (bool, error) {
	return d.ledState(ctx, d.conf.LinkLEDPin)
}

// SetLinkLED turns the link LED on or off.
func (d *Device) SetLinkLED(ctx context.Context, on bool) error {
	return d.setLEDState(ctx, d.conf.LinkLEDPin, on)
}

// ButtonPressed reads the button.
func (d *Device) ButtonPressed(ctx context.Context) (pressed bool, err error) {
	err = d.call(ctx, func() error {
		if !d.gpioReady {
			return ErrGPIONotSetup
		}
		level, err := d.gpio.Read(d.conf.ButtonPin)
		pressed = !level
		return d.gpioFault(err)
	})
	return
}

// BlinkingPowerLED tells whether the power LED is blinking.
func (d *Device) BlinkingPowerLED(ctx context.Context) (bool, error) {
	return d.blinking(ctx, &d.blinkPower)
}

// SetBlinkingPowerLED starts or stops blinking the power LED.
func (d *Device) SetBlinkingPowerLED(ctx context.Context, blink bool) error {
	return d.setBlinking(ctx, &d.blinkPower, blink)
}

// BlinkingLinkLED tells whether the link LED is blinking.
func (d *Device) BlinkingLinkLED(ctx context.Context) (bool, error) {
	return d.blinking(ctx, &d.blinkLink)
}

// SetBlinkingLinkLED starts or stops blinking the link LED.
func (d *Device) SetBlinkingLinkLED(ctx context.Context, blink bool) error {
	return d.setBlinking(ctx, &d.blinkLink, blink)
}

func (d *Device) blinking(ctx context.Context, flag *bool) (blink bool, err error) {
	err = d.call(ctx, func() error {
		blink = *flag
		return nil
	})
	return
}

func (d *Device) setBlinking(ctx context.Context, flag *bool, blink bool) error {
	return d.call(ctx, func() error {
		if !d.gpioReady {
			return ErrGPIONotSetup
		}
		*flag = blink
		switch {
		case (d.blinkPower || d.blinkLink) && d.blinkTicker == nil:
			d.blinkTicker = time.NewTicker(d.conf.BlinkInterval)
		case !d.blinkPower && !d.blinkLink && d.blinkTicker != nil:
			d.blinkTicker.Stop()
			d.blinkTicker = nil
		}
		return nil
	})
}

func (d *Device) blinkTick() {
	leds := []struct {
		blink bool
		pin   int
	}{
		{d.blinkPower, d.conf.PowerLEDPin},
		{d.blinkLink, d.conf.LinkLEDPin},
	}
	for _, led := range leds {
		if !led.blink {
			continue
		}
		on, err := d.readLED(led.pin)
		if err == nil {
			err = d.writeLED(led.pin, !on)
		}
		if err != nil {
			d.failed(fmt.Errorf("blink LED %d: %w", led.pin, err))
			return
		}
	}
}
