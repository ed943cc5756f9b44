package cpu

import "github.com/ushitora-anqou/gbemu/util"

type executor func(cpu *CPU, in *Instruction) error

// executors is filled in init because execPrefix dispatches through it.
var executors [kindCount]executor

func init() {
	executors = [kindCount]executor{
		KindIllegal: execIllegal,
		KindNop:     execNop,
		KindLd:      execLd,
		KindInc:     execInc,
		KindDec:     execDec,
		KindRlca:    execRlca,
		KindRrca:    execRrca,
		KindRla:     execRla,
		KindRra:     execRra,
		KindStop:    execStop,
		KindJr:      execJr,
		KindDaa:     execDaa,
		KindCpl:     execCpl,
		KindScf:     execScf,
		KindCcf:     execCcf,
		KindHalt:    execHalt,
		KindAdd:     execAdd,
		KindAdc:     execAdc,
		KindSub:     execSub,
		KindSbc:     execSbc,
		KindAnd:     execAnd,
		KindXor:     execXor,
		KindOr:      execOr,
		KindCp:      execCp,
		KindRet:     execRet,
		KindReti:    execReti,
		KindPop:     execPop,
		KindPush:    execPush,
		KindJp:      execJp,
		KindCall:    execCall,
		KindRst:     execRst,
		KindPrefix:  execPrefix,
		KindDi:      execDi,
		KindEi:      execEi,
		KindRlc:     execRlc,
		KindRrc:     execRrc,
		KindRl:      execRl,
		KindRr:      execRr,
		KindSla:     execSla,
		KindSra:     execSra,
		KindSwap:    execSwap,
		KindSrl:     execSrl,
		KindBit:     execBit,
		KindRes:     execRes,
		KindSet:     execSet,
	}
}

func execIllegal(cpu *CPU, in *Instruction) error {
	return &DecodeError{Opcode: cpu.opcode, PC: cpu.opPC}
}

func execNop(cpu *CPU, in *Instruction) error {
	return nil
}

func execStop(cpu *CPU, in *Instruction) error {
	// STOP is followed by a padding byte.
	cpu.regs.pc++
	return nil
}

func execHalt(cpu *CPU, in *Instruction) error {
	if !cpu.ints.ime && cpu.ints.pending() != 0 {
		if !cpu.disableHaltBug {
			cpu.haltBug = true
		}
		return nil
	}
	cpu.halted = true
	return nil
}

func execDi(cpu *CPU, in *Instruction) error {
	cpu.ints.ime = false
	cpu.ints.enablePending = false
	return nil
}

func execEi(cpu *CPU, in *Instruction) error {
	cpu.ints.enablePending = true
	return nil
}

func execLd(cpu *CPU, in *Instruction) error {
	switch {
	case cpu.destIsMem:
		cpu.write8(cpu.memDest, uint8(cpu.data))
		if in.Reg2.is16() { // LD (a16), SP
			cpu.write8(cpu.memDest+1, uint8(cpu.data>>8))
		}
	case in.Mode == ModeHLSPR:
		cpu.SetHL(cpu.addSPRel(uint8(cpu.data)))
		cpu.tick(1)
	default:
		cpu.setReg(in.Reg1, cpu.data)
		if in.Reg1 == RegSP && in.Reg2 == RegHL {
			cpu.tick(1)
		}
	}
	return nil
}

// addSPRel returns SP plus a signed offset, flagging the unsigned carries
// out of bits 3 and 7.
func (cpu *CPU) addSPRel(e uint8) uint16 {
	sp := cpu.regs.sp
	_, h := add4(uint8(sp), e, false)
	_, c := add8(uint8(sp), e, false)
	cpu.setFlagZNHC(false, false, h, c)
	return sp + uint16(int8(e))
}

func execInc(cpu *CPU, in *Instruction) error {
	if in.Reg1.is16() && !cpu.destIsMem {
		cpu.setReg(in.Reg1, cpu.data+1)
		cpu.tick(1)
		return nil
	}
	val := uint8(cpu.data)
	res := val + 1
	_, h := add4(val, 1, false)
	cpu.setFlagZNHC(res == 0, false, h, cpu.FlagC())
	cpu.store(in, res)
	return nil
}

func execDec(cpu *CPU, in *Instruction) error {
	if in.Reg1.is16() && !cpu.destIsMem {
		cpu.setReg(in.Reg1, cpu.data-1)
		cpu.tick(1)
		return nil
	}
	val := uint8(cpu.data)
	res := val - 1
	_, h := sub4(val, 1, false)
	cpu.setFlagZNHC(res == 0, true, h, cpu.FlagC())
	cpu.store(in, res)
	return nil
}

func execAdd(cpu *CPU, in *Instruction) error {
	switch in.Reg1 {
	case RegHL:
		hl, val := cpu.HL(), cpu.data
		h := (hl&0x0fff)+(val&0x0fff) > 0x0fff
		c := uint32(hl)+uint32(val) > 0xffff
		cpu.setFlagZNHC(cpu.FlagZ(), false, h, c)
		cpu.SetHL(hl + val)
		cpu.tick(1)
	case RegSP:
		cpu.regs.sp = cpu.addSPRel(uint8(cpu.data))
		cpu.tick(2)
	default:
		cpu.alu(uint8(cpu.data), false, false)
	}
	return nil
}

// alu runs ADD/ADC (sub == false) or SUB/SBC (sub == true) against A.
func (cpu *CPU) alu(val uint8, sub, withCarry bool) uint8 {
	carry := withCarry && cpu.FlagC()
	var res uint8
	var h, c bool
	if sub {
		res, c = sub8(cpu.regs.a, val, carry)
		_, h = sub4(cpu.regs.a, val, carry)
	} else {
		res, c = add8(cpu.regs.a, val, carry)
		_, h = add4(cpu.regs.a, val, carry)
	}
	cpu.setFlagZNHC(res == 0, sub, h, c)
	cpu.regs.a = res
	return res
}

func execAdc(cpu *CPU, in *Instruction) error {
	cpu.alu(uint8(cpu.data), false, true)
	return nil
}

func execSub(cpu *CPU, in *Instruction) error {
	cpu.alu(uint8(cpu.data), true, false)
	return nil
}

func execSbc(cpu *CPU, in *Instruction) error {
	cpu.alu(uint8(cpu.data), true, true)
	return nil
}

func execCp(cpu *CPU, in *Instruction) error {
	a := cpu.regs.a
	cpu.alu(uint8(cpu.data), true, false)
	cpu.regs.a = a // restore
	return nil
}

func execAnd(cpu *CPU, in *Instruction) error {
	cpu.regs.a &= uint8(cpu.data)
	cpu.setFlagZNHC(cpu.regs.a == 0, false, true, false)
	return nil
}

func execXor(cpu *CPU, in *Instruction) error {
	cpu.regs.a ^= uint8(cpu.data)
	cpu.setFlagZNHC(cpu.regs.a == 0, false, false, false)
	return nil
}

func execOr(cpu *CPU, in *Instruction) error {
	cpu.regs.a |= uint8(cpu.data)
	cpu.setFlagZNHC(cpu.regs.a == 0, false, false, false)
	return nil
}

func execDaa(cpu *CPU, in *Instruction) error {
	a, c := cpu.regs.a, cpu.FlagC()
	var adjust uint8
	if cpu.FlagN() {
		if cpu.FlagH() {
			adjust |= 0x06
		}
		if c {
			adjust |= 0x60
		}
		a -= adjust
	} else {
		if cpu.FlagH() || a&0x0f > 0x09 {
			adjust |= 0x06
		}
		if c || a > 0x99 {
			adjust |= 0x60
			c = true
		}
		a += adjust
	}
	cpu.regs.a = a
	cpu.setFlagZNHC(a == 0, cpu.FlagN(), false, c)
	return nil
}

func execCpl(cpu *CPU, in *Instruction) error {
	cpu.regs.a = ^cpu.regs.a
	cpu.setFlagZNHC(cpu.FlagZ(), true, true, cpu.FlagC())
	return nil
}

func execScf(cpu *CPU, in *Instruction) error {
	cpu.setFlagZNHC(cpu.FlagZ(), false, false, true)
	return nil
}

func execCcf(cpu *CPU, in *Instruction) error {
	cpu.setFlagZNHC(cpu.FlagZ(), false, false, !cpu.FlagC())
	return nil
}

func (cpu *CPU) cond(c Cond) bool {
	switch c {
	case CondNZ:
		return !cpu.FlagZ()
	case CondZ:
		return cpu.FlagZ()
	case CondNC:
		return !cpu.FlagC()
	case CondC:
		return cpu.FlagC()
	}
	return true
}

func execJp(cpu *CPU, in *Instruction) error {
	if in.Mode == ModeR { // JP HL
		cpu.regs.pc = cpu.data
		return nil
	}
	if cpu.cond(in.Cond) {
		cpu.regs.pc = cpu.data
		cpu.tick(1)
	}
	return nil
}

func execJr(cpu *CPU, in *Instruction) error {
	if cpu.cond(in.Cond) {
		cpu.regs.pc += uint16(int8(cpu.data))
		cpu.tick(1)
	}
	return nil
}

func execCall(cpu *CPU, in *Instruction) error {
	if cpu.cond(in.Cond) {
		cpu.tick(1)
		cpu.push16(cpu.regs.pc)
		cpu.regs.pc = cpu.data
	}
	return nil
}

func execRet(cpu *CPU, in *Instruction) error {
	if in.Cond != CondNone {
		cpu.tick(1)
		if !cpu.cond(in.Cond) {
			return nil
		}
	}
	cpu.regs.pc = cpu.pop16()
	cpu.tick(1)
	return nil
}

func execReti(cpu *CPU, in *Instruction) error {
	cpu.regs.pc = cpu.pop16()
	cpu.tick(1)
	cpu.ints.ime = true
	cpu.ints.enablePending = false
	return nil
}

func execRst(cpu *CPU, in *Instruction) error {
	cpu.tick(1)
	cpu.push16(cpu.regs.pc)
	cpu.regs.pc = uint16(in.Param)
	return nil
}

func execPush(cpu *CPU, in *Instruction) error {
	cpu.tick(1)
	cpu.push16(cpu.data)
	return nil
}

func execPop(cpu *CPU, in *Instruction) error {
	cpu.setReg(in.Reg1, cpu.pop16())
	return nil
}

func execRlca(cpu *CPU, in *Instruction) error {
	cpu.regs.a, _ = cpu.rotate(cpu.regs.a, rlc)
	cpu.setFlagZNHC(false, false, false, cpu.FlagC())
	return nil
}

func execRrca(cpu *CPU, in *Instruction) error {
	cpu.regs.a, _ = cpu.rotate(cpu.regs.a, rrc)
	cpu.setFlagZNHC(false, false, false, cpu.FlagC())
	return nil
}

func execRla(cpu *CPU, in *Instruction) error {
	cpu.regs.a, _ = cpu.rotate(cpu.regs.a, rl)
	cpu.setFlagZNHC(false, false, false, cpu.FlagC())
	return nil
}

func execRra(cpu *CPU, in *Instruction) error {
	cpu.regs.a, _ = cpu.rotate(cpu.regs.a, rr)
	cpu.setFlagZNHC(false, false, false, cpu.FlagC())
	return nil
}

func execPrefix(cpu *CPU, in *Instruction) error {
	cb := DecodePrefixed(cpu.fetch8())
	cpu.resolve(cb)
	if util.TraceEnabled() {
		cpu.trace(cb)
	}
	return executors[cb.Kind](cpu, cb)
}

type shifter func(val uint8, carry bool) (uint8, bool)

func rlc(val uint8, _ bool) (uint8, bool) {
	return val<<1 | val>>7, val&0x80 != 0
}

func rrc(val uint8, _ bool) (uint8, bool) {
	return val>>1 | val<<7, val&0x01 != 0
}

func rl(val uint8, carry bool) (uint8, bool) {
	return val<<1 | b2u8(carry), val&0x80 != 0
}

func rr(val uint8, carry bool) (uint8, bool) {
	return val>>1 | b2u8(carry)<<7, val&0x01 != 0
}

func sla(val uint8, _ bool) (uint8, bool) {
	return val << 1, val&0x80 != 0
}

func sra(val uint8, _ bool) (uint8, bool) {
	return val>>1 | val&0x80, val&0x01 != 0
}

func srl(val uint8, _ bool) (uint8, bool) {
	return val >> 1, val&0x01 != 0
}

// rotate applies f and sets Z from the result and C from the bit shifted
// out.
func (cpu *CPU) rotate(val uint8, f shifter) (uint8, bool) {
	res, c := f(val, cpu.FlagC())
	cpu.setFlagZNHC(res == 0, false, false, c)
	return res, c
}

func (cpu *CPU) shiftOp(in *Instruction, f shifter) error {
	res, _ := cpu.rotate(uint8(cpu.data), f)
	cpu.store(in, res)
	return nil
}

func execRlc(cpu *CPU, in *Instruction) error { return cpu.shiftOp(in, rlc) }
func execRrc(cpu *CPU, in *Instruction) error { return cpu.shiftOp(in, rrc) }
func execRl(cpu *CPU, in *Instruction) error  { return cpu.shiftOp(in, rl) }
func execRr(cpu *CPU, in *Instruction) error  { return cpu.shiftOp(in, rr) }
func execSla(cpu *CPU, in *Instruction) error { return cpu.shiftOp(in, sla) }
func execSra(cpu *CPU, in *Instruction) error { return cpu.shiftOp(in, sra) }
func execSrl(cpu *CPU, in *Instruction) error { return cpu.shiftOp(in, srl) }

func execSwap(cpu *CPU, in *Instruction) error {
	val := uint8(cpu.data)
	res := val<<4 | val>>4
	cpu.setFlagZNHC(res == 0, false, false, false)
	cpu.store(in, res)
	return nil
}

func execBit(cpu *CPU, in *Instruction) error {
	set := uint8(cpu.data)&(1<<in.Param) != 0
	cpu.setFlagZNHC(!set, false, true, cpu.FlagC())
	return nil
}

func execRes(cpu *CPU, in *Instruction) error {
	cpu.store(in, uint8(cpu.data)&^(1<<in.Param))
	return nil
}

func execSet(cpu *CPU, in *Instruction) error {
	cpu.store(in, uint8(cpu.data)|1<<in.Param)
	return nil
}
