package cpu

import (
	"github.com/ushitora-anqou/gbemu/bus"
	"github.com/ushitora-anqou/gbemu/util"
)

// Clock receives every machine cycle the CPU consumes, as it is consumed.
type Clock interface {
	Tick(cycles uint)
}

type CPU struct {
	regs  registers
	ints  Interrupts
	mem   bus.Memory
	clock Clock

	halted         bool
	haltBug        bool
	disableHaltBug bool

	// Per-step state
	cycles    uint
	opcode    uint8
	opPC      uint16
	data      uint16
	memDest   uint16
	destIsMem bool
}

// NewCPU returns a CPU in the register state the DMG boot ROM leaves behind.
func NewCPU(mem bus.Memory, clock Clock) *CPU {
	cpu := &CPU{mem: mem, clock: clock}
	cpu.SetAF(0x01b0)
	cpu.SetBC(0x0013)
	cpu.SetDE(0x00d8)
	cpu.SetHL(0x014d)
	cpu.regs.sp = 0xfffe
	cpu.regs.pc = 0x0100
	return cpu
}

// SetHaltBug selects whether HALT with IME clear and an interrupt already
// pending repeats the next opcode fetch.
func (cpu *CPU) SetHaltBug(enabled bool) {
	cpu.disableHaltBug = !enabled
}

func (cpu *CPU) Interrupts() *Interrupts {
	return &cpu.ints
}

func (cpu *CPU) IE() uint8 {
	return cpu.ints.IE()
}
func (cpu *CPU) IF() uint8 {
	return cpu.ints.IF()
}
func (cpu *CPU) SetIE(val uint8) {
	cpu.ints.SetIE(val)
}
func (cpu *CPU) SetIF(val uint8) {
	cpu.ints.SetIF(val)
}
func (cpu *CPU) RequestInterrupt(source uint8) {
	cpu.ints.RequestInterrupt(source)
}
func (cpu *CPU) IME() bool {
	return cpu.ints.ime
}
func (cpu *CPU) Halted() bool {
	return cpu.halted
}

func (cpu *CPU) tick(n uint) {
	cpu.cycles += n
	if cpu.clock != nil {
		cpu.clock.Tick(n)
	}
}

func (cpu *CPU) read8(addr uint16) uint8 {
	val := cpu.mem.Read8(addr)
	cpu.tick(1)
	return val
}

func (cpu *CPU) write8(addr uint16, val uint8) {
	cpu.mem.Write8(addr, val)
	cpu.tick(1)
}

func (cpu *CPU) fetch8() uint8 {
	val := cpu.read8(cpu.regs.pc)
	if cpu.haltBug {
		cpu.haltBug = false
	} else {
		cpu.regs.pc++
	}
	return val
}

func (cpu *CPU) fetch16() uint16 {
	lo := uint16(cpu.fetch8())
	hi := uint16(cpu.fetch8())
	return hi<<8 | lo
}

func (cpu *CPU) push16(val uint16) {
	cpu.regs.sp--
	cpu.write8(cpu.regs.sp, uint8(val>>8))
	cpu.regs.sp--
	cpu.write8(cpu.regs.sp, uint8(val))
}

func (cpu *CPU) pop16() uint16 {
	lo := uint16(cpu.read8(cpu.regs.sp))
	cpu.regs.sp++
	hi := uint16(cpu.read8(cpu.regs.sp))
	cpu.regs.sp++
	return hi<<8 | lo
}

// Step runs one instruction, or one idle cycle while halted, and services at
// most one interrupt. It returns the machine cycles consumed.
func (cpu *CPU) Step() (uint, error) {
	cpu.cycles = 0
	promote := cpu.ints.enablePending

	if cpu.halted {
		if cpu.ints.pending() == 0 {
			cpu.tick(1)
			return cpu.cycles, nil
		}
		cpu.halted = false
		if cpu.ints.ime {
			cpu.serviceInterrupt()
			return cpu.cycles, nil
		}
	}

	if err := cpu.execute(); err != nil {
		return cpu.cycles, err
	}

	if promote && cpu.ints.enablePending {
		cpu.ints.ime = true
		cpu.ints.enablePending = false
	}
	if cpu.ints.ime {
		cpu.serviceInterrupt()
	}
	return cpu.cycles, nil
}

// serviceInterrupt dispatches the highest-priority pending interrupt: two
// internal cycles, PC pushed high byte first, one cycle to jump.
func (cpu *CPU) serviceInterrupt() {
	bit, vector, ok := cpu.ints.next()
	if !ok {
		return
	}
	cpu.ints.flags &^= bit
	cpu.ints.ime = false
	cpu.halted = false

	// A halt bug still armed here means HALT was the last instruction; the
	// handler returns to the HALT itself.
	ret := cpu.regs.pc
	if cpu.haltBug {
		cpu.haltBug = false
		ret--
	}

	cpu.tick(2)
	cpu.push16(ret)
	cpu.tick(1)
	cpu.regs.pc = vector

	util.Trace("\t<<<INTERRUPT %02x -> 0x%04x>>>", bit, vector)
}

func (cpu *CPU) execute() error {
	cpu.opPC = cpu.regs.pc
	cpu.opcode = cpu.fetch8()
	in := Decode(cpu.opcode)
	cpu.resolve(in)
	if util.TraceEnabled() && in.Kind != KindPrefix {
		cpu.trace(in)
	}
	return executors[in.Kind](cpu, in)
}

func (cpu *CPU) trace(in *Instruction) {
	util.Trace("0x%04x: %-16s af=%04x bc=%04x de=%04x hl=%04x sp=%04x",
		cpu.opPC, in.String(), cpu.AF(), cpu.BC(), cpu.DE(), cpu.HL(), cpu.regs.sp)
}

// resolve loads the operand named by the addressing mode into cpu.data and,
// for memory destinations, the target address into cpu.memDest.
func (cpu *CPU) resolve(in *Instruction) {
	cpu.data = 0
	cpu.destIsMem = false

	switch in.Mode {
	case ModeImplied:
	case ModeR:
		cpu.data = cpu.reg(in.Reg1)
	case ModeRR:
		cpu.data = cpu.reg(in.Reg2)
	case ModeRD8, ModeD8, ModeHLSPR:
		cpu.data = uint16(cpu.fetch8())
	case ModeRD16, ModeD16:
		cpu.data = cpu.fetch16()
	case ModeMRR:
		cpu.setMemDest(cpu.reg(in.Reg1))
		cpu.data = cpu.reg(in.Reg2)
	case ModeRMR:
		cpu.data = uint16(cpu.read8(cpu.reg(in.Reg2)))
	case ModeRHLI:
		cpu.data = uint16(cpu.read8(cpu.HL()))
		cpu.SetHL(cpu.HL() + 1)
	case ModeRHLD:
		cpu.data = uint16(cpu.read8(cpu.HL()))
		cpu.SetHL(cpu.HL() - 1)
	case ModeHLIR:
		cpu.setMemDest(cpu.HL())
		cpu.data = cpu.reg(in.Reg2)
		cpu.SetHL(cpu.HL() + 1)
	case ModeHLDR:
		cpu.setMemDest(cpu.HL())
		cpu.data = cpu.reg(in.Reg2)
		cpu.SetHL(cpu.HL() - 1)
	case ModeMRD8:
		cpu.setMemDest(cpu.reg(in.Reg1))
		cpu.data = uint16(cpu.fetch8())
	case ModeMR:
		cpu.setMemDest(cpu.reg(in.Reg1))
		cpu.data = uint16(cpu.read8(cpu.memDest))
	case ModeA8R:
		cpu.setMemDest(0xff00 | uint16(cpu.fetch8()))
		cpu.data = cpu.reg(in.Reg2)
	case ModeRA8:
		cpu.data = uint16(cpu.read8(0xff00 | uint16(cpu.fetch8())))
	case ModeCIOR:
		cpu.setMemDest(0xff00 | uint16(cpu.regs.c))
		cpu.data = cpu.reg(in.Reg2)
	case ModeRCIO:
		cpu.data = uint16(cpu.read8(0xff00 | uint16(cpu.regs.c)))
	case ModeA16R:
		cpu.setMemDest(cpu.fetch16())
		cpu.data = cpu.reg(in.Reg2)
	case ModeRA16:
		cpu.data = uint16(cpu.read8(cpu.fetch16()))
	}
}

func (cpu *CPU) setMemDest(addr uint16) {
	cpu.memDest = addr
	cpu.destIsMem = true
}

// store writes an 8-bit result back to wherever the operand came from.
func (cpu *CPU) store(in *Instruction, val uint8) {
	if cpu.destIsMem {
		cpu.write8(cpu.memDest, val)
		return
	}
	cpu.setReg(in.Reg1, uint16(val))
}
