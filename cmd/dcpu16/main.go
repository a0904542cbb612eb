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
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v2"

	"github.com/mgchild/dcpu16/asm"
	"github.com/mgchild/dcpu16/dcpu"
)

func main() {
	app := &cli.App{
		Name:    "dcpu16",
		Usage:   "assemble and run DCPU-16 programs",
		Version: "v0.0.1",
		Commands: []*cli.Command{
			runCommand(),
			asmCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "assemble and execute a program",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "steps", Usage: "execute at most N run_steps (0 means run to completion)"},
			&cli.BoolFlag{Name: "trace", Usage: "log every executed instruction"},
			&cli.BoolFlag{Name: "dump-regs", Usage: "print final register state as JSON"},
			&cli.BoolFlag{Name: "disasm", Usage: "print a disassembly of loaded memory before running"},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 1 {
				return cli.Exit("dcpu16 run: missing <file>", 1)
			}
			words, err := loadWords(c.Args().Get(0))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			c2 := dcpu.NewCPU()
			if err := c2.LoadProgram(words); err != nil {
				return cli.Exit(err.Error(), 1)
			}

			if c.Bool("disasm") {
				fmt.Print(dcpu.Disassemble(c2.Memory(), 0, uint16(len(words))).String())
			}

			dcpu.SetLogEnable(c.Bool("trace"))

			if steps := c.Int("steps"); steps > 0 {
				for i := 0; i < steps; i++ {
					if !c2.Memory().HasWordAt(c2.PC()) {
						break
					}
					if err := c2.RunStep(); err != nil {
						return cli.Exit(err.Error(), 1)
					}
				}
			} else if err := c2.Run(); err != nil {
				return cli.Exit(err.Error(), 1)
			}

			if c.Bool("dump-regs") {
				return dumpRegisters(c2)
			}
			return nil
		},
	}
}

func asmCommand() *cli.Command {
	return &cli.Command{
		Name:      "asm",
		Usage:     "assemble a program to a raw big-endian word stream",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file"},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() < 1 {
				return cli.Exit("dcpu16 asm: missing <file>", 1)
			}
			out := c.String("out")
			if out == "" {
				return cli.Exit("dcpu16 asm: -o is required", 1)
			}

			src, err := os.ReadFile(c.Args().Get(0))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			words, err := asm.NewParser(string(src)).Parse()
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			buf := make([]byte, 2*len(words))
			for i, w := range words {
				binary.BigEndian.PutUint16(buf[2*i:], w)
			}
			return os.WriteFile(out, buf, 0644)
		},
	}
}

func loadWords(path string) ([]uint16, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return asm.NewParser(string(src)).Parse()
}

func dumpRegisters(c *dcpu.CPU) error {
	regs := c.Registers()
	out, err := json.Marshal(map[string]uint16{
		"A": regs[dcpu.RegA], "B": regs[dcpu.RegB], "C": regs[dcpu.RegC],
		"X": regs[dcpu.RegX], "Y": regs[dcpu.RegY], "Z": regs[dcpu.RegZ],
		"I": regs[dcpu.RegI], "J": regs[dcpu.RegJ],
		"PC": c.PC(), "SP": c.SP(), "EX": c.EX(), "IA": c.IA(),
	})
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
