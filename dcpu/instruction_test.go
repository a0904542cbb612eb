package dcpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeBasic(t *testing.T) {
	// SET A, 30 -> op=0x01, b=A(0x00), a=30+0x21=0x3F
	word := uint16(0x01) | uint16(0x00)<<5 | uint16(0x3F)<<10
	instr := Decode(word)

	assert.False(t, instr.Special)
	assert.False(t, instr.Null)
	assert.Equal(t, SET, instr.Op)
	assert.Equal(t, uint8(0x00), instr.B)
	assert.Equal(t, uint8(0x3F), instr.A)
}

func TestDecodeSpecial(t *testing.T) {
	// JSR A -> low5=0, special bits = JSR(0x01), a=A(0x00)
	word := uint16(JSR)<<5 | uint16(0x00)<<10
	instr := Decode(word)

	assert.True(t, instr.Special)
	assert.False(t, instr.Null)
	assert.Equal(t, JSR, instr.SpOp)
	assert.Equal(t, uint8(0x00), instr.A)
}

func TestDecodeUnknownOpcodeIsNull(t *testing.T) {
	// 0x00 in bits 0..4 with special bits 0x00 is not a recognized
	// special opcode (there is no SpecialOpcode 0x00).
	word := uint16(0x00)<<5 | uint16(0x00)<<10
	instr := Decode(word)
	assert.True(t, instr.Null)
}

func TestDecodeUnknownBasicOpcodeIsNull(t *testing.T) {
	word := uint16(0x1C) // bits 0..4 = 0x1C, unassigned
	instr := Decode(word)
	assert.True(t, instr.Null)
}

func TestEncodeRoundTrips(t *testing.T) {
	for _, instr := range []Instruction{
		{Op: SET, A: 0x3F, B: 0x00},
		{Op: ADD, A: 0x01, B: 0x02},
		{Special: true, SpOp: JSR, A: 0x00},
		{Special: true, SpOp: HWI, A: 0x05},
	} {
		word := instr.Encode()
		got := Decode(word)
		assert.Equal(t, instr.Special, got.Special)
		assert.Equal(t, instr.A, got.A)
		if instr.Special {
			assert.Equal(t, instr.SpOp, got.SpOp)
		} else {
			assert.Equal(t, instr.Op, got.Op)
			assert.Equal(t, instr.B, got.B)
		}
	}
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "SET", SET.String())
	assert.Equal(t, "???", Opcode(0x1C).String())
	assert.Equal(t, "JSR", JSR.String())
	assert.Equal(t, "???", SpecialOpcode(0x00).String())
}
