package asm

import "fmt"

// DecodeError reports a byte stream the decoder could not interpret: an
// opcode byte matching none of the recognized patterns, or a stream that ends
// before a required immediate byte.
type DecodeError struct {
	Offset    int
	Byte      byte
	Truncated bool
}

func (e *DecodeError) Error() string {
	if e.Truncated {
		return fmt.Sprintf("decode: truncated instruction at offset %d, missing immediate byte", e.Offset)
	}
	return fmt.Sprintf("decode: unrecognized opcode 0x%02X at offset %d", e.Byte, e.Offset)
}
