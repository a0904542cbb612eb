package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShortLiteralOperand(t *testing.T) {
	words, err := NewParser("SET A, 1").Parse()
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x8801}, words)
}

func TestParseNextWordLiteralOperand(t *testing.T) {
	words, err := NewParser("SET A, 0x100").Parse()
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x7c01, 0x0100}, words)
}

func TestParseRegisterOperands(t *testing.T) {
	words, err := NewParser("ADD B, A").Parse()
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0022}, words)
}

func TestParseSpecialOpcode(t *testing.T) {
	words, err := NewParser("JSR A").Parse()
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0020}, words)
}

func TestParseEmitsANextWordBeforeBNextWord(t *testing.T) {
	// Both operands need a next-word; the a-operand's must come first in
	// the stream since the CPU resolves a before b at execution time.
	words, err := NewParser("ADD 0x100, 0x200").Parse()
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x7fe2, 0x0200, 0x0100}, words)
}

func TestParseIsCaseInsensitive(t *testing.T) {
	words, err := NewParser("set a, 4").Parse()
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x9401}, words)
}

func TestParseMultipleStatements(t *testing.T) {
	words, err := NewParser("SET A, 1\nADD B, A\n").Parse()
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x8801, 0x0022}, words)
}

func TestParseEmptySourceYieldsEmptySlice(t *testing.T) {
	words, err := NewParser("   \n\n").Parse()
	require.NoError(t, err)
	assert.NotNil(t, words)
	assert.Empty(t, words)
}

func TestParseUnknownMnemonicIsError(t *testing.T) {
	_, err := NewParser("FOO A, 1").Parse()
	require.Error(t, err)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestParseMissingOperandIsError(t *testing.T) {
	_, err := NewParser("SET A,").Parse()
	require.Error(t, err)
}
