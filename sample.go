package ads124s08

import (
	"encoding/binary"

	"periph.io/x/conn/v3/physic"
)

// SampleFromRaw sign-extends a big-endian 24 bit two's complement sample.
//
// The three bytes are padded with a trailing zero, read as a signed 32 bit
// value and arithmetically shifted back down, so bit 23 lands in the sign.
func SampleFromRaw(raw [3]byte) int32 {
	b := [4]byte{raw[0], raw[1], raw[2], 0x00}
	return int32(binary.BigEndian.Uint32(b[:])) >> 8
}

// Volts scales a sample against a ±vref full-scale range.
func Volts(sample int32, vref float64) float64 {
	return float64(sample) * vref / fullScale
}

// toPotential converts volts to a physic.ElectricPotential.
func toPotential(v float64) physic.ElectricPotential {
	return physic.ElectricPotential(v * float64(physic.Volt))
}
