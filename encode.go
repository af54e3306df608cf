package ads124s08

// EncodeWrite returns the frame writing value to a single register.
//
// The middle byte is the number of registers minus one, always zero here.
func EncodeWrite(reg Register, value byte) []byte {
	return []byte{byte(CmdWREG) | byte(reg), 0x00, value}
}

// EncodeRead returns the frame reading a single register and the number of
// response bytes that follow it on MISO.
func EncodeRead(reg Register) ([]byte, int) {
	return []byte{byte(CmdRREG) | byte(reg), 0x00}, 1
}

// EncodeCommand returns the wire byte for a payload-less command.
func EncodeCommand(c Command) byte {
	return byte(c)
}

// muxValue is the input multiplexer register value for a positive channel.
func muxValue(channel int, neg NegativeInput) byte {
	return byte(channel<<4) | byte(neg)
}

// refValue is the reference control register value for volts.
func refValue(volts float64) byte {
	if volts == InternalReference {
		return refInternal
	}
	return refExternal
}
