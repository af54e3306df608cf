// Package ads124s08 drives a TI ADS124S08 24 bit delta-sigma ADC over SPI,
// with CS, RESET, START/SYNC and DRDY on GPIO lines.
package ads124s08

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

var (
	// ErrInvalidChannel is returned for a channel outside [0, Channels).
	ErrInvalidChannel = errors.New("invalid channel")
	// ErrDataNotReady is returned by the command read path when DRDY is not
	// asserted.
	ErrDataNotReady = errors.New("data not ready")
	// ErrBusFault wraps every transport error.
	ErrBusFault = errors.New("bus fault")
	// ErrInvalidReadPath is returned for an unknown Opts.ReadPath.
	ErrInvalidReadPath = errors.New("invalid read path")
)

// ReadPath selects how ReadInt and ReadVolt fetch a sample.
type ReadPath int

const (
	// FreewheelRead clocks out three zero bytes and captures whatever result
	// is latched. It does not check DRDY.
	FreewheelRead ReadPath = iota
	// CommandRead issues RDATA in the same frame and fails with
	// ErrDataNotReady when DRDY is not asserted.
	CommandRead
)

func (r ReadPath) String() string {
	switch r {
	case FreewheelRead:
		return "freewheel"
	case CommandRead:
		return "command"
	default:
		return fmt.Sprintf("ReadPath(%d)", int(r))
	}
}

// Timing holds the bring-up delays. Zero or too short values are raised to
// the datasheet minimum.
type Timing struct {
	// IdleSettle is how long CS, RESET and START are held high before the
	// reset pulse. It covers the power-on reset time.
	IdleSettle time.Duration
	// ResetPulse is the low time of the RESET pin.
	ResetPulse time.Duration
	// ResetSettle is the wait after the RESET command before any other
	// command. It is the longest wait once RESET has been pulsed.
	ResetSettle time.Duration
	// StartPulse is the low time of the START/SYNC pin.
	StartPulse time.Duration
	// CommandLatency is the wait after the START command.
	CommandLatency time.Duration
}

func (t Timing) clamp() Timing {
	atLeast := func(v, floor time.Duration) time.Duration {
		if v < floor {
			return floor
		}
		return v
	}
	return Timing{
		IdleSettle:     atLeast(t.IdleSettle, minIdleSettle),
		ResetPulse:     atLeast(t.ResetPulse, minResetPulse),
		ResetSettle:    atLeast(t.ResetSettle, minResetSettle),
		StartPulse:     atLeast(t.StartPulse, minStartPulse),
		CommandLatency: atLeast(t.CommandLatency, minCommandLatency),
	}
}

// Opts holds various configuration options for the ADC
type Opts struct {
	// MaxSpeed is the SCLK frequency used when connecting to the port.
	MaxSpeed physic.Frequency
	// NegativeInput is the inverting input paired with every channel.
	NegativeInput NegativeInput
	// ReferenceVoltage scales ReadVolt. 2.5 selects the internal reference,
	// any other value the external one.
	ReferenceVoltage float64
	// ReadPath used by ReadInt and ReadVolt.
	ReadPath ReadPath
	// DRDYActiveHigh is for boards with an inverting buffer on DRDY.
	DRDYActiveHigh bool
	Timing         Timing
	Logger         logr.Logger
}

func DefaultOptions() *Opts {
	return &Opts{
		MaxSpeed:         10 * physic.MegaHertz,
		NegativeInput:    NegAINCOM,
		ReferenceVoltage: InternalReference,
		ReadPath:         FreewheelRead,
	}
}

// New connects to p, takes ownership of pins and brings the device up into
// continuous conversion. It returns once the device is ready.
func New(p spi.Port, pins Pins, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	speed := opts.MaxSpeed
	if speed == 0 {
		speed = DefaultOptions().MaxSpeed
	}
	// CS is driven by the driver so that it frames whole transactions.
	c, err := p.Connect(speed, spi.Mode1|spi.NoCS, 8)
	if err != nil {
		return nil, fmt.Errorf("ads124s08: %w", err)
	}
	return newDev(c, p.String(), pins, opts, time.Sleep)
}

// NewConn is New for a bus the host has already connected in mode 1 without
// hardware chip-select.
func NewConn(c conn.Conn, pins Pins, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	return newDev(c, "ads124s08", pins, opts, time.Sleep)
}

func newDev(c conn.Conn, name string, pins Pins, opts *Opts, sleep func(time.Duration)) (*Dev, error) {
	if pins.CS == nil || pins.Reset == nil || pins.Sync == nil || pins.DRDY == nil {
		return nil, errors.New("ads124s08: all of CS, Reset, Sync and DRDY are required")
	}
	if opts.ReadPath != FreewheelRead && opts.ReadPath != CommandRead {
		return nil, fmt.Errorf("ads124s08: %w: %v", ErrInvalidReadPath, opts.ReadPath)
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	vref := opts.ReferenceVoltage
	if vref == 0 {
		vref = InternalReference
	}
	d := &Dev{
		d:      c,
		name:   name,
		opts:   *opts,
		timing: opts.Timing.clamp(),
		log:    log.WithName("ads124s08"),
		sleep:  sleep,
		cs:     Line{Out: pins.CS, Invert: true},
		rst:    Line{Out: pins.Reset, Invert: true},
		sync:   Line{Out: pins.Sync, Invert: true},
		drdy:   Line{In: pins.DRDY, Invert: !opts.DRDYActiveHigh},
		vref:   vref,
	}
	if err := d.bringUp(); err != nil {
		return nil, d.wrap(err)
	}
	return d, nil
}

// Dev is a handle to an initialized ADS124S08.
//
// It is not safe for concurrent use: every frame must complete with CS
// released before the next one starts. Hosts sharing a Dev must serialize
// access themselves.
type Dev struct {
	d      conn.Conn
	opts   Opts
	timing Timing
	name   string
	log    logr.Logger
	sleep  func(time.Duration)

	cs, rst, sync, drdy Line

	channel int
	vref    float64
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s{%s}", d.name, d.d)
}

// bringUp runs hard reset, soft reset, configuration and start. The chip
// acknowledges none of it, so only bus faults are reported.
func (d *Dev) bringUp() error {
	// Hard reset: everything idle high, then pulse RESET.
	for _, l := range []Line{d.cs, d.rst, d.sync} {
		if err := l.Set(false); err != nil {
			return err
		}
	}
	d.sleep(d.timing.IdleSettle)
	d.log.V(1).Info("hard reset")
	if err := d.pulse(d.rst, d.timing.ResetPulse); err != nil {
		return err
	}

	d.log.V(1).Info("soft reset")
	if err := d.sendCommand(CmdReset); err != nil {
		return err
	}
	d.sleep(d.timing.ResetSettle)

	if err := d.writeReg(RegInpMux, muxValue(d.channel, d.opts.NegativeInput)); err != nil {
		return err
	}
	if err := d.writeReg(RegRef, refValue(d.vref)); err != nil {
		return err
	}

	return d.start()
}

// Start re-arms continuous conversion after Halt, pulsing START/SYNC and
// sending the START command.
func (d *Dev) Start() error {
	if err := d.start(); err != nil {
		return d.wrap(err)
	}
	return nil
}

func (d *Dev) start() error {
	d.log.V(1).Info("start")
	if err := d.pulse(d.sync, d.timing.StartPulse); err != nil {
		return err
	}
	if err := d.sendCommand(CmdStart); err != nil {
		return err
	}
	d.sleep(d.timing.CommandLatency)
	return nil
}

// Halt stops conversions with the STOP command. Start resumes them.
func (d *Dev) Halt() error {
	d.log.V(1).Info("halt")
	if err := d.sendCommand(CmdStop); err != nil {
		return d.wrap(err)
	}
	return nil
}

// Channel returns the selected positive input.
func (d *Dev) Channel() int {
	return d.channel
}

// SetChannel routes AIN<channel> to the positive input. Invalid channels are
// rejected before any bus traffic.
//
// The change takes effect on the next conversion; callers wanting a settled
// reading must wait at least one conversion period.
func (d *Dev) SetChannel(channel int) error {
	if channel < 0 || channel >= Channels {
		return d.wrap(fmt.Errorf("%w: %d, must be between 0 and %d", ErrInvalidChannel, channel, Channels-1))
	}
	if err := d.writeReg(RegInpMux, muxValue(channel, d.opts.NegativeInput)); err != nil {
		return d.wrap(err)
	}
	d.channel = channel
	d.log.V(1).Info("channel selected", "channel", channel)
	return nil
}

// Reference returns the reference voltage used for scaling.
func (d *Dev) Reference() float64 {
	return d.vref
}

// SetReference selects the internal reference for exactly 2.5 volts and the
// external reference for any other value. The value itself is only used to
// scale ReadVolt.
func (d *Dev) SetReference(volts float64) error {
	if err := d.writeReg(RegRef, refValue(volts)); err != nil {
		return d.wrap(err)
	}
	d.vref = volts
	d.log.V(1).Info("reference selected", "volts", volts, "internal", volts == InternalReference)
	return nil
}

// IsDataReady reports whether DRDY is asserted. It samples the line once.
func (d *Dev) IsDataReady() bool {
	return d.drdy.Get()
}

// ReadRaw clocks out three zero bytes and returns the latched conversion
// result, most significant byte first.
//
// It neither checks DRDY nor sends RDATA. Called before the first
// conversion completes, or right after a channel change, it returns stale
// data.
func (d *Dev) ReadRaw() ([3]byte, error) {
	var w, r [3]byte
	if err := d.frame(w[:], r[:]); err != nil {
		return r, d.wrap(err)
	}
	return r, nil
}

// ReadRawCommand reads the latched result with RDATA in a single frame. It
// returns ErrDataNotReady without touching the bus if DRDY is not asserted.
func (d *Dev) ReadRawCommand() ([3]byte, error) {
	var out [3]byte
	if !d.IsDataReady() {
		return out, d.wrap(ErrDataNotReady)
	}
	w := [4]byte{EncodeCommand(CmdRDATA), byte(CmdNOP), byte(CmdNOP), byte(CmdNOP)}
	var r [4]byte
	if err := d.frame(w[:], r[:]); err != nil {
		return out, d.wrap(err)
	}
	copy(out[:], r[1:])
	return out, nil
}

// ReadInt returns the sign-extended sample using Opts.ReadPath.
func (d *Dev) ReadInt() (int32, error) {
	var raw [3]byte
	var err error
	switch d.opts.ReadPath {
	case CommandRead:
		raw, err = d.ReadRawCommand()
	case FreewheelRead:
		raw, err = d.ReadRaw()
	default:
		err = d.wrap(fmt.Errorf("%w: %v", ErrInvalidReadPath, d.opts.ReadPath))
	}
	if err != nil {
		return 0, err
	}
	return SampleFromRaw(raw), nil
}

// ReadVolt returns the sample scaled to the reference voltage.
func (d *Dev) ReadVolt() (float64, error) {
	s, err := d.ReadInt()
	if err != nil {
		return 0, err
	}
	return Volts(s, d.vref), nil
}

// ReadPotential is ReadVolt as a physic.ElectricPotential.
func (d *Dev) ReadPotential() (physic.ElectricPotential, error) {
	v, err := d.ReadVolt()
	if err != nil {
		return 0, err
	}
	return toPotential(v), nil
}

// WriteRegister writes a single register. Writing RegInpMux or RegRef here
// bypasses the channel and reference bookkeeping.
func (d *Dev) WriteRegister(reg Register, value byte) error {
	if err := d.writeReg(reg, value); err != nil {
		return d.wrap(err)
	}
	return nil
}

// ReadRegister reads a single register with RREG.
func (d *Dev) ReadRegister(reg Register) (byte, error) {
	cmd, n := EncodeRead(reg)
	w := make([]byte, len(cmd)+n)
	copy(w, cmd)
	r := make([]byte, len(w))
	if err := d.frame(w, r); err != nil {
		return 0, d.wrap(err)
	}
	return r[len(cmd)], nil
}

func (d *Dev) writeReg(reg Register, value byte) error {
	d.log.V(1).Info("write register", "reg", fmt.Sprintf("0x%02x", uint8(reg)), "value", fmt.Sprintf("0x%02x", value))
	return d.frame(EncodeWrite(reg, value), nil)
}

func (d *Dev) sendCommand(c Command) error {
	return d.frame([]byte{EncodeCommand(c)}, nil)
}

// frame runs one transfer with CS asserted around it. CS is released even
// when the transfer fails.
func (d *Dev) frame(w, r []byte) error {
	if err := d.cs.Set(true); err != nil {
		return fmt.Errorf("%w: %w", ErrBusFault, err)
	}
	err := d.d.Tx(w, r)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrBusFault, err)
	}
	if rerr := d.cs.Set(false); rerr != nil {
		err = errors.Join(err, fmt.Errorf("%w: %w", ErrBusFault, rerr))
	}
	return err
}

func (d *Dev) pulse(l Line, width time.Duration) error {
	if err := l.Set(true); err != nil {
		return err
	}
	d.sleep(width)
	return l.Set(false)
}

func (d *Dev) wrap(err error) error {
	return fmt.Errorf("%s: %w", strings.ToLower(d.name), err)
}

var _ conn.Resource = &Dev{}
