package dcpu

import (
	"fmt"
	"strings"
)

// DisassembledLine is one decoded instruction: the word address it starts
// at, the words it occupies, and its rendered mnemonic text.
type DisassembledLine struct {
	Address uint16
	Words   []uint16
	Text    string
}

// Disassembly is an ordered walk of a memory range, one line per
// instruction (or, for a word that fails to decode, one line per word).
type Disassembly struct {
	Lines []DisassembledLine
}

// String renders the whole disassembly as address-prefixed lines, in the
// style of the reference emulator's own Disassemble output.
func (d *Disassembly) String() string {
	var b strings.Builder
	for _, l := range d.Lines {
		fmt.Fprintf(&b, "%04X  %s\n", l.Address, l.Text)
	}
	return b.String()
}

// Disassemble decodes every instruction in memory from start up to (but
// not including) end, rendering each as assembly-like text. A word that
// fails to decode is rendered as a raw DAT and the walk advances by one
// word so a single bad word can't desynchronize the rest of the range.
func Disassemble(mem *Memory, start, end uint16) *Disassembly {
	d := &Disassembly{}
	addr := start
	for addr < end {
		lineStart := addr
		word := mem.Get(addr)
		addr++
		instr := Decode(word)

		if instr.Null {
			d.Lines = append(d.Lines, DisassembledLine{
				Address: lineStart,
				Words:   []uint16{word},
				Text:    fmt.Sprintf("DAT 0x%04x", word),
			})
			continue
		}

		if instr.Special {
			aText := operandText(mem, &addr, instr.A, true)
			d.Lines = append(d.Lines, DisassembledLine{
				Address: lineStart,
				Words:   mem.wordsBetween(lineStart, addr),
				Text:    fmt.Sprintf("%s %s", instr.SpOp, aText),
			})
			continue
		}

		// b is resolved first in assembly text order even though
		// nextWords are consumed a-before-b at execution time; we walk
		// a first here too, to match exactly how run_step would have
		// consumed the stream.
		aText := operandText(mem, &addr, instr.A, true)
		bText := operandText(mem, &addr, instr.B, false)
		d.Lines = append(d.Lines, DisassembledLine{
			Address: lineStart,
			Words:   mem.wordsBetween(lineStart, addr),
			Text:    fmt.Sprintf("%s %s, %s", instr.Op, bText, aText),
		})
	}
	return d
}

func (m *Memory) wordsBetween(start, end uint16) []uint16 {
	words := make([]uint16, 0, int(end-start))
	for a := start; a != end; a++ {
		words = append(words, m.Get(a))
	}
	return words
}

// operandText renders a single operand descriptor as assembly syntax,
// advancing *addr past a next-word if the descriptor consumes one. asA
// disambiguates 0x18, which assembles as POP in the a position and PUSH
// in the b position even though both resolve through the same stack slot.
func operandText(mem *Memory, addr *uint16, n uint8, asA bool) string {
	switch {
	case n <= 0x07:
		return regNames[n]
	case n <= 0x0F:
		return "[" + regNames[n-0x08] + "]"
	case n <= 0x17:
		next := mem.Get(*addr)
		*addr++
		return fmt.Sprintf("[0x%04x + %s]", next, regNames[n-0x10])
	case n == 0x18:
		if asA {
			return "POP"
		}
		return "PUSH"
	case n == 0x19:
		return "PEEK"
	case n == 0x1A:
		next := mem.Get(*addr)
		*addr++
		return fmt.Sprintf("[SP + 0x%04x]", next)
	case n == 0x1B:
		return "SP"
	case n == 0x1C:
		return "PC"
	case n == 0x1D:
		return "EX"
	case n == 0x1E:
		next := mem.Get(*addr)
		*addr++
		return fmt.Sprintf("[0x%04x]", next)
	case n == 0x1F:
		next := mem.Get(*addr)
		*addr++
		return fmt.Sprintf("0x%04x", next)
	default:
		v := int32(n) - 0x21
		return fmt.Sprintf("%d", v)
	}
}
