package cpu

import "github.com/ushitora-anqou/gbemu/util"

const (
	flagZ = 7
	flagN = 6
	flagH = 5
	flagC = 4
)

type registers struct {
	pc, sp                 uint16
	a, f, b, c, d, e, h, l uint8
}

func (cpu *CPU) PC() uint16 {
	return cpu.regs.pc
}
func (cpu *CPU) SP() uint16 {
	return cpu.regs.sp
}
func (cpu *CPU) A() uint8 {
	return cpu.regs.a
}
func (cpu *CPU) F() uint8 {
	return cpu.regs.f
}
func (cpu *CPU) B() uint8 {
	return cpu.regs.b
}
func (cpu *CPU) C() uint8 {
	return cpu.regs.c
}
func (cpu *CPU) D() uint8 {
	return cpu.regs.d
}
func (cpu *CPU) E() uint8 {
	return cpu.regs.e
}
func (cpu *CPU) H() uint8 {
	return cpu.regs.h
}
func (cpu *CPU) L() uint8 {
	return cpu.regs.l
}
func (cpu *CPU) AF() uint16 {
	return uint16(cpu.regs.a)<<8 | uint16(cpu.regs.f)
}
func (cpu *CPU) BC() uint16 {
	return uint16(cpu.regs.b)<<8 | uint16(cpu.regs.c)
}
func (cpu *CPU) DE() uint16 {
	return uint16(cpu.regs.d)<<8 | uint16(cpu.regs.e)
}
func (cpu *CPU) HL() uint16 {
	return uint16(cpu.regs.h)<<8 | uint16(cpu.regs.l)
}
func (cpu *CPU) SetPC(pc uint16) {
	cpu.regs.pc = pc
}
func (cpu *CPU) SetSP(sp uint16) {
	cpu.regs.sp = sp
}
func (cpu *CPU) SetA(a uint8) {
	cpu.regs.a = a
}

// SetF keeps the low nibble of F at zero.
func (cpu *CPU) SetF(f uint8) {
	cpu.regs.f = f & 0xf0
}
func (cpu *CPU) SetAF(af uint16) {
	cpu.regs.a = uint8(af >> 8)
	cpu.SetF(uint8(af))
}
func (cpu *CPU) SetBC(bc uint16) {
	cpu.regs.b = uint8(bc >> 8)
	cpu.regs.c = uint8(bc)
}
func (cpu *CPU) SetDE(de uint16) {
	cpu.regs.d = uint8(de >> 8)
	cpu.regs.e = uint8(de)
}
func (cpu *CPU) SetHL(hl uint16) {
	cpu.regs.h = uint8(hl >> 8)
	cpu.regs.l = uint8(hl)
}

func (cpu *CPU) FlagZ() bool {
	return util.Bit(cpu.regs.f, flagZ)
}
func (cpu *CPU) FlagN() bool {
	return util.Bit(cpu.regs.f, flagN)
}
func (cpu *CPU) FlagH() bool {
	return util.Bit(cpu.regs.f, flagH)
}
func (cpu *CPU) FlagC() bool {
	return util.Bit(cpu.regs.f, flagC)
}
func (cpu *CPU) setFlagZNHC(z, n, h, c bool) {
	f := util.SetBit(0, flagZ, z)
	f = util.SetBit(f, flagN, n)
	f = util.SetBit(f, flagH, h)
	cpu.regs.f = util.SetBit(f, flagC, c)
}

// reg reads an 8- or 16-bit register by name.
func (cpu *CPU) reg(r Reg) uint16 {
	switch r {
	case RegA:
		return uint16(cpu.regs.a)
	case RegF:
		return uint16(cpu.regs.f)
	case RegB:
		return uint16(cpu.regs.b)
	case RegC:
		return uint16(cpu.regs.c)
	case RegD:
		return uint16(cpu.regs.d)
	case RegE:
		return uint16(cpu.regs.e)
	case RegH:
		return uint16(cpu.regs.h)
	case RegL:
		return uint16(cpu.regs.l)
	case RegAF:
		return cpu.AF()
	case RegBC:
		return cpu.BC()
	case RegDE:
		return cpu.DE()
	case RegHL:
		return cpu.HL()
	case RegSP:
		return cpu.regs.sp
	case RegPC:
		return cpu.regs.pc
	}
	return 0
}

func (cpu *CPU) setReg(r Reg, val uint16) {
	switch r {
	case RegA:
		cpu.regs.a = uint8(val)
	case RegF:
		cpu.SetF(uint8(val))
	case RegB:
		cpu.regs.b = uint8(val)
	case RegC:
		cpu.regs.c = uint8(val)
	case RegD:
		cpu.regs.d = uint8(val)
	case RegE:
		cpu.regs.e = uint8(val)
	case RegH:
		cpu.regs.h = uint8(val)
	case RegL:
		cpu.regs.l = uint8(val)
	case RegAF:
		cpu.SetAF(val)
	case RegBC:
		cpu.SetBC(val)
	case RegDE:
		cpu.SetDE(val)
	case RegHL:
		cpu.SetHL(val)
	case RegSP:
		cpu.regs.sp = val
	case RegPC:
		cpu.regs.pc = val
	}
}

func b2u8(b bool) uint8 {
	return util.BoolToU8(b)
}

func add8(x, y uint8, carry bool) (uint8, bool) {
	// Thanks to: https://cs.opensource.google/go/go/+/refs/tags/go1.17.6:src/math/bits/bits.go;l=354
	sum := x + y + b2u8(carry)
	carryOut := (((x & y) | ((x | y) &^ sum)) >> 7) != 0
	return sum, carryOut
}

func add4(xu8, yu8 uint8, carry bool) (uint8, bool) {
	x, y := xu8&0x0f, yu8&0x0f
	sum := (x + y + b2u8(carry)) & 0x0f
	carryOut := (((x & y) | ((x | y) &^ sum)) >> 3) != 0
	return sum, carryOut
}

func sub8(x, y uint8, borrow bool) (uint8, bool) {
	// Thanks to: https://cs.opensource.google/go/go/+/refs/tags/go1.17.6:src/math/bits/bits.go;l=380
	diff := x - y - b2u8(borrow)
	borrowOut := (((^x & y) | (^(x ^ y) & diff)) >> 7) != 0
	return diff, borrowOut
}

func sub4(xu8, yu8 uint8, borrow bool) (uint8, bool) {
	x, y := xu8&0x0f, yu8&0x0f
	diff := (x - y - b2u8(borrow)) & 0x0f
	borrowOut := (((^x & y) | (^(x ^ y) & diff)) >> 3) != 0
	return diff, borrowOut
}
