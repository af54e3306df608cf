package ads124s08

import "time"

// Register is a configuration register address.
type Register uint8

const (
	RegID Register = iota
	RegStatus
	RegInpMux
	RegPGA
	RegDataRate
	RegRef
	RegIDACMag
	RegIDACMux
	RegVBias
	RegSys
	RegOFCAL0
	RegOFCAL1
	RegOFCAL2
	RegFSCAL0
	RegFSCAL1
	RegFSCAL2
	RegGPIODAT
	RegGPIOCON
)

// Command is a control command byte. RREG and WREG are OR-ed with the
// register address on the wire.
type Command uint8

const (
	CmdNOP       Command = 0x00
	CmdWakeup    Command = 0x02
	CmdPowerDown Command = 0x04
	CmdReset     Command = 0x06
	CmdStart     Command = 0x08
	CmdStop      Command = 0x0A
	CmdRDATA     Command = 0x12
	CmdSYOCAL    Command = 0x16
	CmdSYGCAL    Command = 0x17
	CmdSFOCAL    Command = 0x19
	CmdRREG      Command = 0x20
	CmdWREG      Command = 0x40
)

// Channels is the number of selectable positive inputs (AIN0-AIN11).
const Channels = 12

// NegativeInput is the low nibble of the input multiplexer register.
type NegativeInput uint8

const (
	// NegAINCOM ties the inverting input to AINCOM.
	NegAINCOM NegativeInput = 0x0C
	// NegAIN0 uses AIN0, tied to AVSS on single-ended boards.
	NegAIN0 NegativeInput = 0x00
)

// Reference control register patterns.
const (
	// refInternal: positive buffer on, negative buffer off, internal 2.5V
	// reference selected and always on.
	refInternal uint8 = 0x1A
	// refExternal: same buffers, REFP0/REFN0 selected, internal reference off.
	refExternal uint8 = 0x10
)

// InternalReference is the only voltage the internal reference provides.
const InternalReference = 2.5

// fullScale is 2^23: one bit of the 24 bit sample is the sign.
const fullScale = 1 << 23

// tCLK is one period of the 4.096MHz internal oscillator, rounded up.
const tCLK = 245 * time.Nanosecond

// Datasheet minimums.
const (
	// Power-on reset completes 2.2ms after the supplies settle; nothing may
	// be clocked in before then.
	minIdleSettle     = 2200 * time.Microsecond
	minResetPulse     = 4 * tCLK
	minResetSettle    = 4096 * tCLK
	minStartPulse     = 4 * tCLK
	minCommandLatency = 4 * tCLK
)
