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

package main

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/mgchild/dcpu16/dcpu"
)

var (
	cpu   *dcpu.CPU
	words []uint16

	paragraphRegs *widgets.Paragraph
	paragraphRam0 *widgets.Paragraph
	paragraphRam1 *widgets.Paragraph
	paragraphCode *widgets.Paragraph
)

func renderRegs(p *widgets.Paragraph) {
	sb := &strings.Builder{}
	regs := cpu.Registers()
	fmt.Fprintf(sb, "PC: $%04X SP: $%04X EX: $%04X IA: $%04X\n", cpu.PC(), cpu.SP(), cpu.EX(), cpu.IA())
	fmt.Fprintf(sb, "A: $%04X B: $%04X C: $%04X\n", regs[dcpu.RegA], regs[dcpu.RegB], regs[dcpu.RegC])
	fmt.Fprintf(sb, "X: $%04X Y: $%04X Z: $%04X\n", regs[dcpu.RegX], regs[dcpu.RegY], regs[dcpu.RegZ])
	fmt.Fprintf(sb, "I: $%04X J: $%04X\n", regs[dcpu.RegI], regs[dcpu.RegJ])
	p.Text = sb.String()
}

func renderRam(p *widgets.Paragraph, addr uint16, numRow, numCol int) {
	curAddr := addr
	sb := &strings.Builder{}
	for row := 0; row < numRow; row++ {
		fmt.Fprintf(sb, "$%04X:", curAddr)
		for col := 0; col < numCol; col++ {
			fmt.Fprintf(sb, " %04X", cpu.Memory().Get(curAddr))
			curAddr++
		}
		sb.WriteRune('\n')
	}
	p.Text = sb.String()
}

func renderCode(p *widgets.Paragraph) {
	end := cpu.PC() + 16
	if int(end) > len(words) {
		end = uint16(len(words))
	}
	d := dcpu.Disassemble(cpu.Memory(), cpu.PC(), end)
	p.Text = d.String()
}

func draw() {
	renderRegs(paragraphRegs)
	renderRam(paragraphRam0, 0x0000, 8, 8)
	renderRam(paragraphRam1, 0x8000, 8, 8)
	renderCode(paragraphCode)
	ui.Render(paragraphRegs, paragraphRam0, paragraphRam1, paragraphCode)
}

func loadCPU(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("could not read %s: %v", path, err)
	}
	words = make([]uint16, len(raw)/2)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(raw[2*i:])
	}

	cpu = dcpu.NewCPU()
	if err := cpu.LoadProgram(words); err != nil {
		log.Fatalf("could not load program: %v", err)
	}
}

func initLayout() {
	paragraphRegs = widgets.NewParagraph()
	paragraphRegs.Title = "Registers"
	paragraphRegs.SetRect(0, 0, 40, 7)

	paragraphRam0 = widgets.NewParagraph()
	paragraphRam0.Title = "RAM 0x0000"
	paragraphRam0.SetRect(0, 7, 48, 17)

	paragraphRam1 = widgets.NewParagraph()
	paragraphRam1.Title = "RAM 0x8000"
	paragraphRam1.SetRect(0, 17, 48, 27)

	paragraphCode = widgets.NewParagraph()
	paragraphCode.Title = "Disassembly"
	paragraphCode.SetRect(40, 0, 80, 7)
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: dcpu16-debug <file>")
	}
	path := os.Args[1]

	if err := ui.Init(); err != nil {
		log.Fatalf("failed to initialize termui: %v", err)
	}
	defer ui.Close()

	initLayout()
	loadCPU(path)
	draw()

	for e := range ui.PollEvents() {
		if e.Type != ui.KeyboardEvent {
			continue
		}
		switch e.ID {
		case "q", "<C-c>":
			return
		case "<Space>":
			if cpu.Memory().HasWordAt(cpu.PC()) {
				if err := cpu.RunStep(); err != nil {
					log.Print(err)
				}
			}
			draw()
		case "r":
			loadCPU(path)
			draw()
		}
	}
}
