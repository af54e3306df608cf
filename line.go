package ads124s08

import "periph.io/x/conn/v3/gpio"

// Pins are the control lines wired to the device. The driver owns them for
// its whole lifetime.
type Pins struct {
	CS    gpio.PinOut
	Reset gpio.PinOut
	Sync  gpio.PinOut
	DRDY  gpio.PinIn
}

// Line presents a pin in terms of asserted and released, so that true
// always means asserted whatever the electrical polarity.
type Line struct {
	Out    gpio.PinOut
	In     gpio.PinIn
	Invert bool
}

// Set drives the line.
func (l Line) Set(asserted bool) error {
	return l.Out.Out(gpio.Level(asserted != l.Invert))
}

// Get samples the line once.
func (l Line) Get() bool {
	return bool(l.In.Read()) != l.Invert
}
