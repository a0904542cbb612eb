// Copyright © 2019 mg
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package dcpu

// Opcode identifies a basic (two-operand) instruction.
type Opcode uint8

// Basic opcodes, bits 0..4 of the instruction word.
const (
	SET Opcode = 0x01
	ADD Opcode = 0x02
	SUB Opcode = 0x03
	MUL Opcode = 0x04
	MLI Opcode = 0x05
	DIV Opcode = 0x06
	DVI Opcode = 0x07
	MOD Opcode = 0x08
	MDI Opcode = 0x09
	AND Opcode = 0x0A
	BOR Opcode = 0x0B
	XOR Opcode = 0x0C
	SHR Opcode = 0x0D
	ASR Opcode = 0x0E
	SHL Opcode = 0x0F
	IFB Opcode = 0x10
	IFC Opcode = 0x11
	IFE Opcode = 0x12
	IFN Opcode = 0x13
	IFG Opcode = 0x14
	IFA Opcode = 0x15
	IFL Opcode = 0x16
	IFU Opcode = 0x17
	ADX Opcode = 0x1A
	SBX Opcode = 0x1B
	STI Opcode = 0x1E
	STD Opcode = 0x1F
)

// SpecialOpcode identifies a one-operand instruction (bits 0..4 of the
// instruction word are zero; the opcode lives in bits 5..9 instead).
type SpecialOpcode uint8

const (
	JSR SpecialOpcode = 0x01
	INT SpecialOpcode = 0x08
	IAG SpecialOpcode = 0x09
	IAS SpecialOpcode = 0x0A
	RFI SpecialOpcode = 0x0B
	IAQ SpecialOpcode = 0x0C
	HWN SpecialOpcode = 0x10
	HWQ SpecialOpcode = 0x11
	HWI SpecialOpcode = 0x12
)

var opcodeNames = map[Opcode]string{
	SET: "SET", ADD: "ADD", SUB: "SUB", MUL: "MUL", MLI: "MLI",
	DIV: "DIV", DVI: "DVI", MOD: "MOD", MDI: "MDI", AND: "AND",
	BOR: "BOR", XOR: "XOR", SHR: "SHR", ASR: "ASR", SHL: "SHL",
	IFB: "IFB", IFC: "IFC", IFE: "IFE", IFN: "IFN", IFG: "IFG",
	IFA: "IFA", IFL: "IFL", IFU: "IFU", ADX: "ADX", SBX: "SBX",
	STI: "STI", STD: "STD",
}

var specialOpcodeNames = map[SpecialOpcode]string{
	JSR: "JSR", INT: "INT", IAG: "IAG", IAS: "IAS", RFI: "RFI",
	IAQ: "IAQ", HWN: "HWN", HWQ: "HWQ", HWI: "HWI",
}

// conditionalOpcodes are the opcodes that only ever skip; used by the
// chained-conditional-skip rule in the executor.
var conditionalOpcodes = map[Opcode]bool{
	IFB: true, IFC: true, IFE: true, IFN: true,
	IFG: true, IFA: true, IFL: true, IFU: true,
}

// String renders a basic opcode's mnemonic, or "???" if unrecognized.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "???"
}

// String renders a special opcode's mnemonic, or "???" if unrecognized.
func (op SpecialOpcode) String() string {
	if name, ok := specialOpcodeNames[op]; ok {
		return name
	}
	return "???"
}

// Instruction is the decoded form of one 16-bit instruction word: a tagged
// union of Basic, Special, or Null. Decoding never touches memory beyond
// the single word handed to Decode — it is a pure, total function of the
// 16 bits, exactly as spec'd; operand nextWord reads happen later, during
// execution, because they consume PC.
type Instruction struct {
	Special bool
	Op      Opcode        // valid when !Special
	SpOp    SpecialOpcode // valid when Special
	A       uint8         // 6-bit a-operand descriptor
	B       uint8         // 5-bit b-operand descriptor, valid when !Special
	Null    bool          // true when the word decodes to no recognized opcode
}

// bits extracts a length-bit field starting at bit start (0 = LSB).
func bits(word uint16, start, length uint) uint16 {
	return (word >> start) & ((1 << length) - 1)
}

// Decode is a pure, total function from one instruction word to its tagged
// decoded form. Bits 0..4 carry the basic opcode; if they are zero the
// word is special, and bits 5..9 carry the special opcode instead. An
// unrecognized opcode value decodes to Null, which the executor treats as
// a fatal error.
func Decode(word uint16) Instruction {
	low5 := uint8(bits(word, 0, 5))
	a := uint8(bits(word, 10, 6))

	if low5 == 0 {
		sp := SpecialOpcode(bits(word, 5, 5))
		if _, ok := specialOpcodeNames[sp]; !ok {
			return Instruction{Null: true}
		}
		return Instruction{Special: true, SpOp: sp, A: a}
	}

	op := Opcode(low5)
	if _, ok := opcodeNames[op]; !ok {
		return Instruction{Null: true}
	}
	b := uint8(bits(word, 5, 5))
	return Instruction{Op: op, A: a, B: b}
}

// Encode re-packs a basic instruction into its 16-bit word. Decode(enc.Encode())
// round-trips for every Basic instruction, as required by spec.md §8.
func (i Instruction) Encode() uint16 {
	if i.Special {
		return uint16(i.SpOp)<<5 | uint16(i.A)<<10
	}
	return uint16(i.Op) | uint16(i.B)<<5 | uint16(i.A)<<10
}
