package ads124s08

import (
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// event is one observable action: a pin edge, a bus transfer or a sleep.
type event struct {
	pin   string
	level gpio.Level
	tx    []byte
	sleep time.Duration
}

func pinEv(name string, l gpio.Level) event { return event{pin: name, level: l} }
func txEv(w ...byte) event { return event{tx: w} }
func sleepEv(d time.Duration) event { return event{sleep: d} }

// recorder interleaves pin, bus and sleep events in the order they happen.
type recorder struct {
	events []event
	// rx holds the bytes returned by successive reading transfers.
	rx  [][]byte
	err error
}

func (r *recorder) sleep(d time.Duration) {
	r.events = append(r.events, sleepEv(d))
}

func (r *recorder) reset() {
	r.events = nil
}

type recPin struct {
	gpiotest.Pin
	rec *recorder
	// errHigh is returned when the pin is driven high.
	errHigh error
}

func (p *recPin) Out(l gpio.Level) error {
	p.rec.events = append(p.rec.events, pinEv(p.N, l))
	if l == gpio.High && p.errHigh != nil {
		return p.errHigh
	}
	return p.Pin.Out(l)
}

type fakeConn struct {
	rec *recorder
}

func (c *fakeConn) String() string {
	return "fake"
}

func (c *fakeConn) Duplex() conn.Duplex {
	return conn.Full
}

func (c *fakeConn) Tx(w, r []byte) error {
	c.rec.events = append(c.rec.events, txEv(append([]byte(nil), w...)...))
	if c.rec.err != nil {
		return c.rec.err
	}
	if r != nil && len(c.rec.rx) > 0 {
		copy(r, c.rec.rx[0])
		c.rec.rx = c.rec.rx[1:]
	}
	return nil
}

func (c *fakeConn) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

type fakePort struct {
	c    *fakeConn
	f    physic.Frequency
	mode spi.Mode
	bits int
}

func (p *fakePort) String() string {
	return "SPI0.0"
}

func (p *fakePort) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	p.f, p.mode, p.bits = f, mode, bits
	return p.c, nil
}

func (p *fakePort) LimitSpeed(f physic.Frequency) error {
	return nil
}

type fixture struct {
	rec  *recorder
	cs   *recPin
	drdy *gpiotest.Pin
	pins Pins
}

func newFixture() *fixture {
	rec := &recorder{}
	// DRDY is active-low; start with no conversion latched.
	drdy := &gpiotest.Pin{N: "DRDY", L: gpio.High}
	cs := &recPin{Pin: gpiotest.Pin{N: "CS"}, rec: rec}
	return &fixture{
		rec:  rec,
		cs:   cs,
		drdy: drdy,
		pins: Pins{
			CS:    cs,
			Reset: &recPin{Pin: gpiotest.Pin{N: "RESET"}, rec: rec},
			Sync:  &recPin{Pin: gpiotest.Pin{N: "SYNC"}, rec: rec},
			DRDY:  drdy,
		},
	}
}

func (f *fixture) dev(opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	return newDev(&fakeConn{rec: f.rec}, "ADS124S08", f.pins, opts, f.rec.sleep)
}
