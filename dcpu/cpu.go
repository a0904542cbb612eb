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

import "fmt"

// General-purpose register indices, A through J.
const (
	RegA = iota
	RegB
	RegC
	RegX
	RegY
	RegZ
	RegI
	RegJ
	regCount
)

var regNames = [regCount]string{"A", "B", "C", "X", "Y", "Z", "I", "J"}

// CPUError is returned by RunStep for a fatal condition: a word that
// decodes to no recognized opcode, or an interrupt-queue overflow.
type CPUError struct {
	PC   uint16
	Word uint16
	Msg  string
}

func (e *CPUError) Error() string {
	return fmt.Sprintf("dcpu: %s (word=0x%04x pc=0x%04x)", e.Msg, e.Word, e.PC)
}

// CPU owns its memory exclusively and holds the eight general registers plus
// the four special registers (PC, SP, EX, IA). It exposes LoadProgram,
// RunStep, and Run, and implements every opcode's exact numeric semantics.
type CPU struct {
	memory    *Memory
	registers [regCount]uint16
	pc, sp, ex, ia uint16

	devices *DeviceRegistry
	queue   interruptQueue
	queuing bool
}

// NewCPU creates a CPU with a fresh, zeroed 65,536-word memory and all
// registers at zero. SP starts at 0, so the first PUSH writes to 0xFFFF.
func NewCPU() *CPU {
	return &CPU{memory: NewMemory()}
}

// LoadProgram appends words to memory starting at the current load offset.
func (c *CPU) LoadProgram(words []uint16) error {
	return c.memory.Load(words)
}

// AttachDevices wires a device registry so HWN/HWQ/HWI have something to
// talk to. A CPU with no registry attached treats those opcodes as no-ops.
func (c *CPU) AttachDevices(registry *DeviceRegistry) {
	c.devices = registry
}

// Memory exposes the underlying memory, mainly for disassembly and tests.
func (c *CPU) Memory() *Memory { return c.memory }

// Registers returns a snapshot of the eight general registers, A through J.
func (c *CPU) Registers() [8]uint16 { return c.registers }

// Register reads one general register by index (use the Reg* constants).
func (c *CPU) Register(idx int) uint16 { return c.registers[idx] }

// PC, SP, EX, IA read the special registers.
func (c *CPU) PC() uint16 { return c.pc }
func (c *CPU) SP() uint16 { return c.sp }
func (c *CPU) EX() uint16 { return c.ex }
func (c *CPU) IA() uint16 { return c.ia }

// SetPC sets the program counter directly; mainly useful for tests that
// want to start execution somewhere other than address 0.
func (c *CPU) SetPC(pc uint16) { c.pc = pc }

func (c *CPU) readWord() uint16 {
	w := c.memory.Get(c.pc)
	c.pc++
	return w
}

func (c *CPU) push(word uint16) {
	c.sp--
	c.memory.Set(c.sp, word)
}

func (c *CPU) pop() uint16 {
	w := c.memory.Get(c.sp)
	c.sp++
	return w
}

// Run executes run_step repeatedly while the program counter still points
// into the loaded prefix of memory.
func (c *CPU) Run() error {
	for c.memory.HasWordAt(c.pc) {
		if err := c.RunStep(); err != nil {
			return err
		}
	}
	return nil
}

// RunStep performs one step. If a queued interrupt is pending (queuing
// off, IA nonzero), it dispatches that interrupt and executes nothing
// else. Otherwise it executes exactly one instruction: read+decode the
// word at PC, resolve a (first) and b (second, if this is a basic
// instruction), then dispatch to the opcode's exact semantics.
func (c *CPU) RunStep() error {
	dispatched, err := c.serviceQueuedInterrupt()
	if err != nil {
		return err
	}
	if dispatched {
		return nil
	}

	startPC := c.pc
	word := c.readWord()
	instr := Decode(word)
	if instr.Null {
		return &CPUError{PC: startPC, Word: word, Msg: "invalid instruction"}
	}

	opA := c.resolve(instr.A)

	if instr.Special {
		err := c.execSpecial(instr.SpOp, opA)
		c.trace(startPC, word)
		return err
	}

	opB := c.resolve(instr.B)
	if err := c.execBasic(instr.Op, opA, opB); err != nil {
		return err
	}
	c.trace(startPC, word)
	return nil
}

// operand is a resolved operand: somewhere to Read a value from and, for
// legal write targets, somewhere to Write one to. Writes to literal
// operands (0x1F, 0x20..0x3F) are silently discarded, per the DCPU-16
// spec, rather than treated as an error.
type operand struct {
	read  func() uint16
	write func(uint16)
}

func (o operand) Read() uint16 { return o.read() }
func (o operand) Write(v uint16) {
	if o.write != nil {
		o.write(v)
	}
}

// resolve decodes a 5- or 6-bit operand descriptor into a readable and
// (where legal) writable operand, consuming a "next word" from the
// instruction stream where the descriptor requires one. It is used
// identically for the a-operand and the b-operand: descriptor 0x18 is POP
// on read and PUSH on write regardless of which position it appears in.
func (c *CPU) resolve(n uint8) operand {
	switch {
	case n <= 0x07:
		idx := int(n)
		return operand{
			read:  func() uint16 { return c.registers[idx] },
			write: func(v uint16) { c.registers[idx] = v },
		}
	case n <= 0x0F:
		idx := int(n - 0x08)
		return operand{
			read:  func() uint16 { return c.memory.Get(c.registers[idx]) },
			write: func(v uint16) { c.memory.Set(c.registers[idx], v) },
		}
	case n <= 0x17:
		idx := int(n - 0x10)
		addr := c.registers[idx] + c.readWord()
		return operand{
			read:  func() uint16 { return c.memory.Get(addr) },
			write: func(v uint16) { c.memory.Set(addr, v) },
		}
	case n == 0x18:
		return operand{
			read:  func() uint16 { return c.pop() },
			write: func(v uint16) { c.push(v) },
		}
	case n == 0x19:
		return operand{
			read:  func() uint16 { return c.memory.Get(c.sp) },
			write: func(v uint16) { c.memory.Set(c.sp, v) },
		}
	case n == 0x1A:
		addr := c.sp + c.readWord()
		return operand{
			read:  func() uint16 { return c.memory.Get(addr) },
			write: func(v uint16) { c.memory.Set(addr, v) },
		}
	case n == 0x1B:
		return operand{
			read:  func() uint16 { return c.sp },
			write: func(v uint16) { c.sp = v },
		}
	case n == 0x1C:
		return operand{
			read:  func() uint16 { return c.pc },
			write: func(v uint16) { c.pc = v },
		}
	case n == 0x1D:
		return operand{
			read:  func() uint16 { return c.ex },
			write: func(v uint16) { c.ex = v },
		}
	case n == 0x1E:
		addr := c.readWord()
		return operand{
			read:  func() uint16 { return c.memory.Get(addr) },
			write: func(v uint16) { c.memory.Set(addr, v) },
		}
	case n == 0x1F:
		v := c.readWord()
		return operand{read: func() uint16 { return v }}
	default: // 0x20..0x3F: short literal -1..30, discard on write
		v := uint16(n) - 0x21
		return operand{read: func() uint16 { return v }}
	}
}

// operandWordCount reports how many extra instruction-stream words a
// descriptor consumes, without actually reading memory or mutating SP.
// Used only when skipping an un-executed instruction (a failed
// conditional), since evaluating a PUSH/POP operand there would wrongly
// mutate SP as a side effect.
func operandWordCount(n uint8) uint16 {
	if n >= 0x10 && n <= 0x17 {
		return 1
	}
	switch n {
	case 0x1A, 0x1E, 0x1F:
		return 1
	}
	return 0
}

// skipInstruction advances PC past one un-executed instruction (its
// opcode word plus however many next-words its operands would have
// consumed) and returns its decoded form, so the caller can tell whether
// to keep chaining through a run of conditionals.
func (c *CPU) skipInstruction() Instruction {
	word := c.readWord()
	instr := Decode(word)
	if instr.Null {
		return instr
	}
	c.pc += operandWordCount(instr.A)
	if !instr.Special {
		c.pc += operandWordCount(instr.B)
	}
	return instr
}

// skipChain implements the conditional-chaining rule from spec.md §4.4/§9:
// a failing conditional skips the next instruction; if that instruction is
// itself conditional, it contributes no side effects either and the skip
// continues until a non-conditional instruction is reached.
func (c *CPU) skipChain() {
	for {
		instr := c.skipInstruction()
		if instr.Null || instr.Special || !conditionalOpcodes[instr.Op] {
			return
		}
	}
}

func (c *CPU) execBasic(op Opcode, a, b operand) error {
	switch op {
	case SET:
		b.Write(a.Read())
	case ADD:
		r := uint32(b.Read()) + uint32(a.Read())
		b.Write(uint16(r))
		c.ex = boolWord(r > 0xFFFF)
	case SUB:
		r := int32(b.Read()) - int32(a.Read())
		b.Write(uint16(r))
		c.ex = 0
		if r < 0 {
			c.ex = 0xFFFF
		}
	case MUL:
		r := uint32(b.Read()) * uint32(a.Read())
		b.Write(uint16(r))
		c.ex = uint16((r >> 16) & 0xFFFF)
	case MLI:
		r := int32(int16(b.Read())) * int32(int16(a.Read()))
		b.Write(uint16(r))
		c.ex = uint16((uint32(r) >> 16) & 0xFFFF)
	case DIV:
		av := uint32(a.Read())
		if av == 0 {
			b.Write(0)
			c.ex = 0
		} else {
			bv := uint32(b.Read())
			b.Write(uint16(bv / av))
			c.ex = uint16(((bv << 16) / av) & 0xFFFF)
		}
	case DVI:
		sa := int32(int16(a.Read()))
		if sa == 0 {
			b.Write(0)
			c.ex = 0
		} else {
			sb := int32(int16(b.Read()))
			b.Write(uint16(sb / sa))
			c.ex = uint16(((sb << 16) / sa) & 0xFFFF)
		}
	case MOD:
		av := a.Read()
		if av == 0 {
			b.Write(0)
		} else {
			b.Write(b.Read() % av)
		}
	case MDI:
		sa := int16(a.Read())
		if sa == 0 {
			b.Write(0)
		} else {
			sb := int16(b.Read())
			b.Write(uint16(sb % sa))
		}
	case AND:
		b.Write(b.Read() & a.Read())
	case BOR:
		b.Write(b.Read() | a.Read())
	case XOR:
		b.Write(b.Read() ^ a.Read())
	case SHR:
		av := a.Read()
		bv := uint32(b.Read())
		b.Write(uint16(bv >> av))
		c.ex = uint16(((bv << 16) >> av) & 0xFFFF)
	case ASR:
		av := a.Read()
		bv := int32(int16(b.Read()))
		b.Write(uint16(bv >> av))
		c.ex = uint16(((bv << 16) >> av) & 0xFFFF)
	case SHL:
		av := a.Read()
		bv := uint32(b.Read())
		r := bv << av
		b.Write(uint16(r))
		c.ex = uint16((r >> 16) & 0xFFFF)
	case IFB:
		if (b.Read() & a.Read()) == 0 {
			c.skipChain()
		}
	case IFC:
		if (b.Read() & a.Read()) != 0 {
			c.skipChain()
		}
	case IFE:
		if b.Read() != a.Read() {
			c.skipChain()
		}
	case IFN:
		if b.Read() == a.Read() {
			c.skipChain()
		}
	case IFG:
		if !(b.Read() > a.Read()) {
			c.skipChain()
		}
	case IFA:
		if !(int16(b.Read()) > int16(a.Read())) {
			c.skipChain()
		}
	case IFL:
		if !(b.Read() < a.Read()) {
			c.skipChain()
		}
	case IFU:
		if !(int16(b.Read()) < int16(a.Read())) {
			c.skipChain()
		}
	case ADX:
		r := uint32(b.Read()) + uint32(a.Read()) + uint32(c.ex)
		b.Write(uint16(r))
		c.ex = boolWord(r > 0xFFFF)
	case SBX:
		r := int32(b.Read()) - int32(a.Read()) + int32(c.ex)
		b.Write(uint16(r))
		c.ex = 0
		if r < 0 {
			c.ex = 0xFFFF
		}
	case STI:
		b.Write(a.Read())
		c.registers[RegI]++
		c.registers[RegJ]++
	case STD:
		b.Write(a.Read())
		c.registers[RegI]--
		c.registers[RegJ]--
	}
	return nil
}

func (c *CPU) execSpecial(op SpecialOpcode, a operand) error {
	switch op {
	case JSR:
		target := a.Read()
		c.push(c.pc)
		c.pc = target
	case INT:
		msg := a.Read()
		if c.queuing {
			return c.enqueueInterrupt(msg)
		}
		c.fireInterrupt(msg)
	case IAG:
		a.Write(c.ia)
	case IAS:
		c.ia = a.Read()
	case RFI:
		a.Read() // operand is consumed but otherwise unused
		c.registers[RegA] = c.pop()
		c.pc = c.pop()
	case IAQ:
		c.queuing = a.Read() != 0
	case HWN:
		a.Write(uint16(c.devices.Count()))
	case HWQ:
		c.queryDevice(a.Read())
	case HWI:
		c.interruptDevice(a.Read())
	}
	return nil
}

// fireInterrupt performs the synchronous INT dispatch: push PC, push A,
// vector to IA, load the message into A. A zero IA means nothing happens.
func (c *CPU) fireInterrupt(msg uint16) {
	if c.ia == 0 {
		return
	}
	c.push(c.pc)
	c.push(c.registers[RegA])
	c.pc = c.ia
	c.registers[RegA] = msg
}

func (c *CPU) queryDevice(index uint16) {
	if c.devices == nil {
		return
	}
	dev, ok := c.devices.Get(int(index))
	if !ok {
		return
	}
	id := dev.ID()
	c.registers[RegA] = uint16(id)
	c.registers[RegB] = uint16(id >> 16)
	c.registers[RegC] = dev.Version()
	mfr := dev.Manufacturer()
	c.registers[RegX] = uint16(mfr)
	c.registers[RegY] = uint16(mfr >> 16)
}

func (c *CPU) interruptDevice(index uint16) {
	if c.devices == nil {
		return
	}
	if dev, ok := c.devices.Get(int(index)); ok {
		dev.Interrupt(c)
	}
}

func boolWord(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

func (c *CPU) trace(pc, word uint16) {
	if !logEnable {
		return
	}
	logger.Log(fmt.Sprintf("PC:%04X word:%04X A:%04X B:%04X C:%04X X:%04X Y:%04X Z:%04X I:%04X J:%04X SP:%04X EX:%04X IA:%04X",
		pc, word,
		c.registers[RegA], c.registers[RegB], c.registers[RegC], c.registers[RegX],
		c.registers[RegY], c.registers[RegZ], c.registers[RegI], c.registers[RegJ],
		c.sp, c.ex, c.ia))
}
