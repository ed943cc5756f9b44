package cartridge

import (
	"errors"
	"fmt"

	"github.com/ushitora-anqou/gbemu/constant"
	"github.com/ushitora-anqou/gbemu/util"
)

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000

	// BatterySize is the size of the battery blob exchanged with the host.
	BatterySize = constant.BATTERY_SIZE
)

var (
	ErrTooShort = errors.New("cartridge: image is shorter than the header")
	ErrNoRAM    = errors.New("cartridge: no external RAM")
)

type scheme int

const (
	schemeROMOnly scheme = iota
	schemeMBC1
)

// Cartridge implements MBC1 banking over a ROM image, its RAM banks, and the
// persisted copy of those banks that is handed to the host.
type Cartridge struct {
	rom      []uint8
	header   Header
	scheme   scheme
	romBanks int

	romBankNumber, secondaryReg uint8
	bank0, romBank              int // banks mapped at 0000-3FFF and 4000-7FFF

	ramBanks       [][]uint8
	image          [][]uint8
	ramBank        int
	ramEnabled     bool
	ramBankingMode bool
	battery, dirty bool
	checksumValid  bool
}

func New(rom []uint8) (*Cartridge, error) {
	if len(rom) < headerEnd {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooShort, len(rom))
	}

	h := Header{rom: rom}
	cat := &Cartridge{
		rom:           rom,
		header:        h,
		romBanks:      len(rom) / romBankSize,
		romBankNumber: 1,
		romBank:       1,
		checksumValid: h.ChecksumValid(),
	}
	if cat.romBanks < 2 {
		cat.romBanks = 2
	}

	util.Logf("cartridge", "title %q type %02x (%s) rom %02x (%d KiB) ram %02x lic %s version %02x",
		h.Title(), h.CartridgeType(), h.TypeName(), h.ROMSizeCode(), 32<<h.ROMSizeCode(),
		h.RAMSizeCode(), h.Licensee(), h.Version())

	if want := h.ROMBanks(); len(rom) < want*romBankSize {
		util.Logf("cartridge", "image holds %d bytes, header declares %d banks: missing banks read as FF",
			len(rom), want)
	}

	if cat.checksumValid {
		util.Logf("cartridge", "header checksum PASSED")
	} else {
		util.Logf("cartridge", "header checksum FAILED: expected %02x, computed %02x",
			h.Checksum(), h.ComputeChecksum())
	}

	withRAM := false
	switch h.CartridgeType() {
	case 0x00:
	case 0x01, 0x02, 0x03:
		cat.scheme = schemeMBC1
		withRAM = h.CartridgeType() != 0x01
	case 0x08, 0x09:
		withRAM = true
		cat.ramEnabled = true
	default:
		util.Logf("cartridge", "unsupported banking scheme %02x (%s): falling back to ROM only",
			h.CartridgeType(), h.TypeName())
	}

	if withRAM {
		count, size := h.RAMBanks()
		if cat.scheme == schemeROMOnly && count > 1 {
			count = 1
		}
		cat.ramBanks = make([][]uint8, count)
		cat.image = make([][]uint8, count)
		for i := range cat.ramBanks {
			cat.ramBanks[i] = make([]uint8, size)
			cat.image[i] = make([]uint8, size)
		}
		cat.battery = h.HasBattery() && count > 0
	}

	return cat, nil
}

func (cat *Cartridge) Header() Header {
	return cat.header
}

func (cat *Cartridge) ChecksumValid() bool {
	return cat.checksumValid
}

func (cat *Cartridge) HasBattery() bool {
	return cat.battery
}

// RAMBanks returns the number of allocated RAM banks.
func (cat *Cartridge) RAMBanks() int {
	return len(cat.ramBanks)
}

func (cat *Cartridge) Read8(addr uint16) uint8 {
	switch {
	case addr <= 0x3fff:
		return cat.romByte(cat.bank0, addr)
	case addr <= 0x7fff:
		return cat.romByte(cat.romBank, addr-0x4000)
	case 0xa000 <= addr && addr <= 0xbfff:
		bank := cat.activeRAM()
		if bank == nil {
			return 0xff
		}
		return bank[int(addr-0xa000)%len(bank)]
	}
	return 0xff
}

func (cat *Cartridge) Write8(addr uint16, val uint8) {
	switch {
	case addr <= 0x7fff:
		if cat.scheme == schemeMBC1 {
			cat.writeControl(addr, val)
		}
	case 0xa000 <= addr && addr <= 0xbfff:
		bank := cat.activeRAM()
		if bank == nil {
			return
		}
		bank[int(addr-0xa000)%len(bank)] = val
		cat.dirty = true
	}
}

func (cat *Cartridge) writeControl(addr uint16, val uint8) {
	switch {
	case addr <= 0x1fff: // RAM Enable
		cat.ramEnabled = val&0x0f == 0x0a

	case addr <= 0x3fff: // ROM Bank Number (lower 5 bits)
		num := val & 0x1f
		if num == 0 {
			num = 1
		}
		cat.romBankNumber = num
		cat.updateROMBank()

	case addr <= 0x5fff: // RAM Bank Number or upper bits of ROM Bank Number
		cat.secondaryReg = val & 0x03
		cat.updateROMBank()
		cat.updateRAMBank()

	default: // Banking Mode Select
		cat.ramBankingMode = val&0x01 != 0
		cat.updateROMBank()
		cat.updateRAMBank()
	}
}

func (cat *Cartridge) largeROM() bool {
	return cat.romBanks > 32
}

func (cat *Cartridge) updateROMBank() {
	bank := int(cat.romBankNumber)
	cat.bank0 = 0
	if cat.largeROM() {
		bank |= int(cat.secondaryReg) << 5
		if cat.ramBankingMode {
			cat.bank0 = (int(cat.secondaryReg) << 5) % cat.romBanks
		}
	}
	cat.romBank = bank % cat.romBanks
}

func (cat *Cartridge) updateRAMBank() {
	next := 0
	if cat.ramBankingMode && !cat.largeROM() {
		next = int(cat.secondaryReg)
	}
	if next == cat.ramBank {
		return
	}
	cat.flush()
	cat.ramBank = next
}

func (cat *Cartridge) romByte(bank int, off uint16) uint8 {
	index := bank*romBankSize + int(off)
	if index >= len(cat.rom) {
		return 0xff
	}
	return cat.rom[index]
}

// activeRAM returns the selected RAM bank, or nil when external RAM is
// disabled or the bank was never allocated.
func (cat *Cartridge) activeRAM() []uint8 {
	if !cat.ramEnabled || cat.ramBank >= len(cat.ramBanks) {
		return nil
	}
	return cat.ramBanks[cat.ramBank]
}

// flush copies the active bank into the persisted image when it holds
// unsaved writes.
func (cat *Cartridge) flush() {
	if !cat.dirty || cat.ramBank >= len(cat.ramBanks) {
		return
	}
	copy(cat.image[cat.ramBank], cat.ramBanks[cat.ramBank])
}

// TakeBattery reads and clears the dirty flag. When it was set, the active
// bank is flushed and an 8 KiB copy of it is returned.
func (cat *Cartridge) TakeBattery() ([]uint8, bool) {
	if !cat.dirty || cat.ramBank >= len(cat.ramBanks) {
		return nil, false
	}
	cat.flush()
	cat.dirty = false

	blob := make([]uint8, BatterySize)
	copy(blob, cat.image[cat.ramBank])
	return blob, true
}

// LoadBattery copies a battery blob wholesale into the active RAM bank.
func (cat *Cartridge) LoadBattery(blob []uint8) error {
	if cat.ramBank >= len(cat.ramBanks) {
		return ErrNoRAM
	}
	copy(cat.ramBanks[cat.ramBank], blob)
	copy(cat.image[cat.ramBank], blob)
	return nil
}

// Image returns every RAM bank, bank-major, as currently persisted after
// flushing the active bank.
func (cat *Cartridge) Image() []uint8 {
	cat.flush()
	var out []uint8
	for _, bank := range cat.image {
		out = append(out, bank...)
	}
	return out
}

// LoadImage restores every RAM bank from a bank-major image.
func (cat *Cartridge) LoadImage(data []uint8) error {
	if len(cat.ramBanks) == 0 {
		return ErrNoRAM
	}
	for i := range cat.ramBanks {
		n := copy(cat.ramBanks[i], data)
		copy(cat.image[i], cat.ramBanks[i])
		data = data[n:]
	}
	return nil
}
