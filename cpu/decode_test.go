package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIsTotal(t *testing.T) {
	var illegal []int
	for op := 0; op < 256; op++ {
		in := Decode(uint8(op))
		require.NotNil(t, in)
		if in.Kind == KindIllegal {
			illegal = append(illegal, op)
		}

		cb := DecodePrefixed(uint8(op))
		require.NotNil(t, cb)
		assert.NotEqual(t, KindIllegal, cb.Kind, "CB %02x", op)
	}
	assert.Equal(t, []int{0xd3, 0xdb, 0xdd, 0xe3, 0xe4, 0xeb, 0xec, 0xed, 0xf4, 0xfc, 0xfd}, illegal)
}

func TestEveryKindHasAnExecutor(t *testing.T) {
	for k := Kind(0); k < kindCount; k++ {
		assert.NotNil(t, executors[k], "%s", k)
	}
}

func TestInstructionString(t *testing.T) {
	table := []struct {
		prefixed bool
		op       uint8
		want     string
	}{
		{false, 0x00, "NOP"},
		{false, 0x3e, "LD A, d8"},
		{false, 0x01, "LD BC, d16"},
		{false, 0x22, "LD (HL+), A"},
		{false, 0x3a, "LD A, (HL-)"},
		{false, 0x20, "JR NZ, e8"},
		{false, 0xc2, "JP NZ, a16"},
		{false, 0xe9, "JP HL"},
		{false, 0xe0, "LDH (a8), A"},
		{false, 0xf2, "LD A, (C)"},
		{false, 0x08, "LD (a16), SP"},
		{false, 0xe8, "ADD SP, e8"},
		{false, 0xf8, "LD HL, SP+e8"},
		{false, 0x86, "ADD A, (HL)"},
		{false, 0x34, "INC (HL)"},
		{false, 0xff, "RST 38H"},
		{false, 0xd8, "RET C"},
		{false, 0xf5, "PUSH AF"},
		{true, 0x7c, "BIT 7, H"},
		{true, 0x86, "RES 0, (HL)"},
		{true, 0x37, "SWAP A"},
	}
	for _, entry := range table {
		in := Decode(entry.op)
		if entry.prefixed {
			in = DecodePrefixed(entry.op)
		}
		assert.Equal(t, entry.want, in.String())
	}
}

func TestDecodeOperands(t *testing.T) {
	assert.Equal(t, Instruction{Kind: KindLd, Mode: ModeRR, Reg1: RegB, Reg2: RegC}, *Decode(0x41))
	assert.Equal(t, Instruction{Kind: KindLd, Mode: ModeMRR, Reg1: RegHL, Reg2: RegA}, *Decode(0x77))
	assert.Equal(t, Instruction{Kind: KindLd, Mode: ModeRMR, Reg1: RegA, Reg2: RegHL}, *Decode(0x7e))
	assert.Equal(t, Instruction{Kind: KindHalt}, *Decode(0x76))
	assert.Equal(t, Instruction{Kind: KindRst, Param: 0x28}, *Decode(0xef))
	assert.Equal(t, Instruction{Kind: KindCall, Mode: ModeD16, Cond: CondNC}, *Decode(0xd4))
	assert.Equal(t, Instruction{Kind: KindSet, Mode: ModeR, Reg1: RegA, Param: 7}, *DecodePrefixed(0xff))
}
