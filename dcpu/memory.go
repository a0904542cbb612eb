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

const (
	// MemoryCapacity is the number of 16-bit words a DCPU-16 can address.
	MemoryCapacity = 65536
)

// Memory is the flat, zero-initialised word array a CPU executes against.
// It tracks how many of its words were placed by Load, which is the only
// thing that can extend it; Set never does.
type Memory struct {
	words  [MemoryCapacity]uint16
	loaded int
}

// NewMemory creates a zeroed 65,536-word memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Load appends words at the current load offset and advances it. It fails
// if doing so would run past the addressable 65,536 words.
func (m *Memory) Load(words []uint16) error {
	if m.loaded+len(words) > MemoryCapacity {
		return fmt.Errorf("dcpu: load of %d words at offset %d overflows %d-word memory", len(words), m.loaded, MemoryCapacity)
	}
	copy(m.words[m.loaded:], words)
	m.loaded += len(words)
	return nil
}

// Get reads the word at addr.
func (m *Memory) Get(addr uint16) uint16 {
	return m.words[addr]
}

// Set writes the word at addr. It never extends the loaded prefix.
func (m *Memory) Set(addr, word uint16) {
	m.words[addr] = word
}

// HasWordAt reports whether addr still lies within the loaded prefix. The
// run loop uses this, and only this, as its halt condition.
func (m *Memory) HasWordAt(addr uint16) bool {
	return int(addr) < m.loaded
}

// Loaded returns the number of words appended by Load so far.
func (m *Memory) Loaded() int {
	return m.loaded
}
