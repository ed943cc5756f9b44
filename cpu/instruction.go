package cpu

import (
	"fmt"
	"strings"
)

type Kind uint8

const (
	KindIllegal Kind = iota
	KindNop
	KindLd
	KindInc
	KindDec
	KindRlca
	KindRrca
	KindRla
	KindRra
	KindStop
	KindJr
	KindDaa
	KindCpl
	KindScf
	KindCcf
	KindHalt
	KindAdd
	KindAdc
	KindSub
	KindSbc
	KindAnd
	KindXor
	KindOr
	KindCp
	KindRet
	KindReti
	KindPop
	KindPush
	KindJp
	KindCall
	KindRst
	KindPrefix
	KindDi
	KindEi

	// Second table (CB xx)
	KindRlc
	KindRrc
	KindRl
	KindRr
	KindSla
	KindSra
	KindSwap
	KindSrl
	KindBit
	KindRes
	KindSet

	kindCount
)

var kindNames = [kindCount]string{
	"ILLEGAL", "NOP", "LD", "INC", "DEC", "RLCA", "RRCA", "RLA", "RRA", "STOP",
	"JR", "DAA", "CPL", "SCF", "CCF", "HALT", "ADD", "ADC", "SUB", "SBC", "AND",
	"XOR", "OR", "CP", "RET", "RETI", "POP", "PUSH", "JP", "CALL", "RST", "PREFIX",
	"DI", "EI", "RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL", "BIT",
	"RES", "SET",
}

func (k Kind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Mode selects how an instruction's operand is resolved before execution.
type Mode uint8

const (
	ModeImplied Mode = iota
	ModeR            // register Reg1
	ModeRR           // Reg1 <- Reg2
	ModeRD8          // Reg1, 8-bit immediate
	ModeRD16         // Reg1, 16-bit immediate
	ModeD8           // 8-bit immediate
	ModeD16          // 16-bit immediate
	ModeMRR          // (Reg1) <- Reg2
	ModeRMR          // Reg1 <- (Reg2)
	ModeRHLI         // Reg1 <- (HL+)
	ModeRHLD         // Reg1 <- (HL-)
	ModeHLIR         // (HL+) <- Reg2
	ModeHLDR         // (HL-) <- Reg2
	ModeMRD8         // (Reg1) <- d8
	ModeMR           // (Reg1), read-modify-write
	ModeA8R          // (FF00+a8) <- Reg2
	ModeRA8          // Reg1 <- (FF00+a8)
	ModeCIOR         // (FF00+C) <- Reg2
	ModeRCIO         // Reg1 <- (FF00+C)
	ModeA16R         // (a16) <- Reg2
	ModeRA16         // Reg1 <- (a16)
	ModeHLSPR        // HL <- SP+e8
)

type Reg uint8

const (
	RegNone Reg = iota
	RegA
	RegF
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
	RegAF
	RegBC
	RegDE
	RegHL
	RegSP
	RegPC
)

func (r Reg) String() string {
	return [...]string{"", "A", "F", "B", "C", "D", "E", "H", "L", "AF", "BC", "DE", "HL", "SP", "PC"}[r]
}

func (r Reg) is16() bool {
	return r >= RegAF
}

type Cond uint8

const (
	CondNone Cond = iota
	CondNZ
	CondZ
	CondNC
	CondC
)

func (c Cond) String() string {
	return [...]string{"", "NZ", "Z", "NC", "C"}[c]
}

// Instruction describes one opcode: what it does, where its operand comes
// from, and the registers, condition, and constant (bit index or restart
// vector) it names.
type Instruction struct {
	Kind       Kind
	Mode       Mode
	Reg1, Reg2 Reg
	Cond       Cond
	Param      uint8
}

var (
	primary  [256]Instruction
	prefixed [256]Instruction

	r8    = [8]Reg{RegB, RegC, RegD, RegE, RegH, RegL, RegHL, RegA}
	r16   = [4]Reg{RegBC, RegDE, RegHL, RegSP}
	r16st = [4]Reg{RegBC, RegDE, RegHL, RegAF}
	alu   = [8]Kind{KindAdd, KindAdc, KindSub, KindSbc, KindAnd, KindXor, KindOr, KindCp}
	rot   = [8]Kind{KindRlc, KindRrc, KindRl, KindRr, KindSla, KindSra, KindSwap, KindSrl}
	misc  = [8]Kind{KindRlca, KindRrca, KindRla, KindRra, KindDaa, KindCpl, KindScf, KindCcf}
)

func init() {
	for op := 0; op < 256; op++ {
		primary[op] = decodePrimary(uint8(op))
		prefixed[op] = decodePrefixed(uint8(op))
	}
}

// Decode returns the descriptor of a primary opcode. Every byte has one;
// undefined opcodes are KindIllegal.
func Decode(op uint8) *Instruction {
	return &primary[op]
}

// DecodePrefixed returns the descriptor of the opcode following CB.
func DecodePrefixed(op uint8) *Instruction {
	return &prefixed[op]
}

// operand8 is the descriptor fragment for an r8 slot, where index 6
// is (HL).
func operand8(kind Kind, index uint8, rmw bool) Instruction {
	if index == 6 {
		if rmw {
			return Instruction{Kind: kind, Mode: ModeMR, Reg1: RegHL}
		}
		return Instruction{Kind: kind, Mode: ModeRMR, Reg1: RegA, Reg2: RegHL}
	}
	if rmw {
		return Instruction{Kind: kind, Mode: ModeR, Reg1: r8[index]}
	}
	return Instruction{Kind: kind, Mode: ModeRR, Reg1: RegA, Reg2: r8[index]}
}

func decodePrimary(op uint8) Instruction {
	x, y, z := op>>6, (op>>3)&7, op&7
	p, q := y>>1, y&1
	illegal := Instruction{Kind: KindIllegal}

	switch x {
	case 0:
		switch z {
		case 0:
			switch y {
			case 0:
				return Instruction{Kind: KindNop}
			case 1:
				return Instruction{Kind: KindLd, Mode: ModeA16R, Reg2: RegSP}
			case 2:
				return Instruction{Kind: KindStop}
			case 3:
				return Instruction{Kind: KindJr, Mode: ModeD8}
			default:
				return Instruction{Kind: KindJr, Mode: ModeD8, Cond: Cond(y - 3)}
			}
		case 1:
			if q == 0 {
				return Instruction{Kind: KindLd, Mode: ModeRD16, Reg1: r16[p]}
			}
			return Instruction{Kind: KindAdd, Mode: ModeRR, Reg1: RegHL, Reg2: r16[p]}
		case 2:
			if q == 0 {
				switch p {
				case 2:
					return Instruction{Kind: KindLd, Mode: ModeHLIR, Reg1: RegHL, Reg2: RegA}
				case 3:
					return Instruction{Kind: KindLd, Mode: ModeHLDR, Reg1: RegHL, Reg2: RegA}
				}
				return Instruction{Kind: KindLd, Mode: ModeMRR, Reg1: r16[p], Reg2: RegA}
			}
			switch p {
			case 2:
				return Instruction{Kind: KindLd, Mode: ModeRHLI, Reg1: RegA, Reg2: RegHL}
			case 3:
				return Instruction{Kind: KindLd, Mode: ModeRHLD, Reg1: RegA, Reg2: RegHL}
			}
			return Instruction{Kind: KindLd, Mode: ModeRMR, Reg1: RegA, Reg2: r16[p]}
		case 3:
			if q == 0 {
				return Instruction{Kind: KindInc, Mode: ModeR, Reg1: r16[p]}
			}
			return Instruction{Kind: KindDec, Mode: ModeR, Reg1: r16[p]}
		case 4:
			return operand8(KindInc, y, true)
		case 5:
			return operand8(KindDec, y, true)
		case 6:
			if y == 6 {
				return Instruction{Kind: KindLd, Mode: ModeMRD8, Reg1: RegHL}
			}
			return Instruction{Kind: KindLd, Mode: ModeRD8, Reg1: r8[y]}
		default:
			return Instruction{Kind: misc[y]}
		}

	case 1:
		switch {
		case op == 0x76:
			return Instruction{Kind: KindHalt}
		case y == 6:
			return Instruction{Kind: KindLd, Mode: ModeMRR, Reg1: RegHL, Reg2: r8[z]}
		case z == 6:
			return Instruction{Kind: KindLd, Mode: ModeRMR, Reg1: r8[y], Reg2: RegHL}
		}
		return Instruction{Kind: KindLd, Mode: ModeRR, Reg1: r8[y], Reg2: r8[z]}

	case 2:
		return operand8(alu[y], z, false)
	}

	switch z {
	case 0:
		switch y {
		case 4:
			return Instruction{Kind: KindLd, Mode: ModeA8R, Reg2: RegA}
		case 5:
			return Instruction{Kind: KindAdd, Mode: ModeRD8, Reg1: RegSP}
		case 6:
			return Instruction{Kind: KindLd, Mode: ModeRA8, Reg1: RegA}
		case 7:
			return Instruction{Kind: KindLd, Mode: ModeHLSPR, Reg1: RegHL, Reg2: RegSP}
		}
		return Instruction{Kind: KindRet, Cond: Cond(y + 1)}
	case 1:
		if q == 0 {
			return Instruction{Kind: KindPop, Mode: ModeR, Reg1: r16st[p]}
		}
		switch p {
		case 0:
			return Instruction{Kind: KindRet}
		case 1:
			return Instruction{Kind: KindReti}
		case 2:
			return Instruction{Kind: KindJp, Mode: ModeR, Reg1: RegHL}
		}
		return Instruction{Kind: KindLd, Mode: ModeRR, Reg1: RegSP, Reg2: RegHL}
	case 2:
		switch y {
		case 4:
			return Instruction{Kind: KindLd, Mode: ModeCIOR, Reg1: RegC, Reg2: RegA}
		case 5:
			return Instruction{Kind: KindLd, Mode: ModeA16R, Reg2: RegA}
		case 6:
			return Instruction{Kind: KindLd, Mode: ModeRCIO, Reg1: RegA, Reg2: RegC}
		case 7:
			return Instruction{Kind: KindLd, Mode: ModeRA16, Reg1: RegA}
		}
		return Instruction{Kind: KindJp, Mode: ModeD16, Cond: Cond(y + 1)}
	case 3:
		switch y {
		case 0:
			return Instruction{Kind: KindJp, Mode: ModeD16}
		case 1:
			return Instruction{Kind: KindPrefix}
		case 6:
			return Instruction{Kind: KindDi}
		case 7:
			return Instruction{Kind: KindEi}
		}
		return illegal
	case 4:
		if y < 4 {
			return Instruction{Kind: KindCall, Mode: ModeD16, Cond: Cond(y + 1)}
		}
		return illegal
	case 5:
		if q == 0 {
			return Instruction{Kind: KindPush, Mode: ModeR, Reg1: r16st[p]}
		}
		if p == 0 {
			return Instruction{Kind: KindCall, Mode: ModeD16}
		}
		return illegal
	case 6:
		return Instruction{Kind: alu[y], Mode: ModeRD8, Reg1: RegA}
	}
	return Instruction{Kind: KindRst, Param: y * 8}
}

func decodePrefixed(op uint8) Instruction {
	x, y, z := op>>6, (op>>3)&7, op&7

	var in Instruction
	switch x {
	case 0:
		in = operand8(rot[y], z, true)
	case 1:
		in = operand8(KindBit, z, true)
	case 2:
		in = operand8(KindRes, z, true)
	default:
		in = operand8(KindSet, z, true)
	}
	if x != 0 {
		in.Param = y
	}
	return in
}

func (in *Instruction) String() string {
	var operands []string
	if in.Cond != CondNone {
		operands = append(operands, in.Cond.String())
	}
	switch in.Kind {
	case KindBit, KindRes, KindSet:
		operands = append(operands, fmt.Sprint(in.Param))
	case KindRst:
		operands = append(operands, fmt.Sprintf("%02XH", in.Param))
	}

	name := in.Kind.String()
	switch in.Mode {
	case ModeR:
		operands = append(operands, in.Reg1.String())
	case ModeRR:
		operands = append(operands, in.Reg1.String(), in.Reg2.String())
	case ModeRD8:
		if in.Reg1 == RegSP {
			operands = append(operands, "SP", "e8")
		} else {
			operands = append(operands, in.Reg1.String(), "d8")
		}
	case ModeRD16:
		operands = append(operands, in.Reg1.String(), "d16")
	case ModeD8:
		operands = append(operands, "e8")
	case ModeD16:
		operands = append(operands, "a16")
	case ModeMRR:
		operands = append(operands, "("+in.Reg1.String()+")", in.Reg2.String())
	case ModeRMR:
		operands = append(operands, in.Reg1.String(), "("+in.Reg2.String()+")")
	case ModeRHLI:
		operands = append(operands, "A", "(HL+)")
	case ModeRHLD:
		operands = append(operands, "A", "(HL-)")
	case ModeHLIR:
		operands = append(operands, "(HL+)", "A")
	case ModeHLDR:
		operands = append(operands, "(HL-)", "A")
	case ModeMRD8:
		operands = append(operands, "(HL)", "d8")
	case ModeMR:
		operands = append(operands, "(HL)")
	case ModeA8R:
		name = "LDH"
		operands = append(operands, "(a8)", "A")
	case ModeRA8:
		name = "LDH"
		operands = append(operands, "A", "(a8)")
	case ModeCIOR:
		operands = append(operands, "(C)", "A")
	case ModeRCIO:
		operands = append(operands, "A", "(C)")
	case ModeA16R:
		operands = append(operands, "(a16)", in.Reg2.String())
	case ModeRA16:
		operands = append(operands, "A", "(a16)")
	case ModeHLSPR:
		operands = append(operands, "HL", "SP+e8")
	}

	if len(operands) == 0 {
		return name
	}
	return name + " " + strings.Join(operands, ", ")
}
