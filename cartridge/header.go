package cartridge

import (
	"strings"
)

const (
	headerTitle          = 0x134
	headerNewLicensee    = 0x144
	headerCartridgeType  = 0x147
	headerROMSize        = 0x148
	headerRAMSize        = 0x149
	headerOldLicensee    = 0x14b
	headerVersion        = 0x14c
	headerChecksum       = 0x14d
	headerEnd            = 0x150
	checksumRangeStart   = 0x134
	checksumRangeEnd     = 0x14c
	oldLicenseeUseNewKey = 0x33
)

// Header is a fixed-offset view over the cartridge header at 0100-014F.
type Header struct {
	rom []uint8
}

func (h Header) Title() string {
	title := h.rom[headerTitle : headerTitle+16]
	if i := strings.IndexByte(string(title), 0); i >= 0 {
		title = title[:i]
	}
	return strings.TrimRight(string(title), " ")
}

func (h Header) CartridgeType() uint8 {
	return h.rom[headerCartridgeType]
}

func (h Header) ROMSizeCode() uint8 {
	return h.rom[headerROMSize]
}

func (h Header) RAMSizeCode() uint8 {
	return h.rom[headerRAMSize]
}

func (h Header) Version() uint8 {
	return h.rom[headerVersion]
}

func (h Header) Checksum() uint8 {
	return h.rom[headerChecksum]
}

// ComputeChecksum evaluates x = x - rom[i] - 1 over 0134-014C.
func (h Header) ComputeChecksum() uint8 {
	return HeaderChecksum(h.rom)
}

func (h Header) ChecksumValid() bool {
	return h.ComputeChecksum() == h.Checksum()
}

// ROMBanks returns the number of 16 KiB banks declared by the header.
func (h Header) ROMBanks() int {
	code := h.ROMSizeCode()
	if code > 8 {
		return 2
	}
	return 2 << code
}

// RAMBanks returns the number and size of the RAM banks declared by the
// header's RAM-size code.
func (h Header) RAMBanks() (count, size int) {
	switch h.RAMSizeCode() {
	case 1:
		return 1, 0x800
	case 2:
		return 1, 0x2000
	case 3:
		return 4, 0x2000
	case 4:
		return 16, 0x2000
	case 5:
		return 8, 0x2000
	}
	return 0, 0
}

func (h Header) Licensee() string {
	if h.rom[headerOldLicensee] == oldLicenseeUseNewKey {
		return string(h.rom[headerNewLicensee : headerNewLicensee+2])
	}
	if name, ok := licensees[h.rom[headerOldLicensee]]; ok {
		return name
	}
	return "UNKNOWN"
}

func (h Header) TypeName() string {
	if name, ok := cartridgeTypes[h.CartridgeType()]; ok {
		return name
	}
	return "UNKNOWN"
}

// HasBattery reports whether the cartridge type carries battery-backed RAM.
func (h Header) HasBattery() bool {
	switch h.CartridgeType() {
	case 0x03, 0x06, 0x09, 0x0d, 0x0f, 0x10, 0x13, 0x1b, 0x1e, 0x22, 0xff:
		return true
	}
	return false
}

// HeaderChecksum computes the header checksum of a raw ROM image. The image
// must be at least 0x150 bytes long.
func HeaderChecksum(rom []uint8) uint8 {
	var x uint8
	for i := checksumRangeStart; i <= checksumRangeEnd; i++ {
		x = x - rom[i] - 1
	}
	return x
}

var cartridgeTypes = map[uint8]string{
	0x00: "ROM ONLY",
	0x01: "MBC1",
	0x02: "MBC1+RAM",
	0x03: "MBC1+RAM+BATTERY",
	0x05: "MBC2",
	0x06: "MBC2+BATTERY",
	0x08: "ROM+RAM",
	0x09: "ROM+RAM+BATTERY",
	0x0b: "MMM01",
	0x0c: "MMM01+RAM",
	0x0d: "MMM01+RAM+BATTERY",
	0x0f: "MBC3+TIMER+BATTERY",
	0x10: "MBC3+TIMER+RAM+BATTERY",
	0x11: "MBC3",
	0x12: "MBC3+RAM",
	0x13: "MBC3+RAM+BATTERY",
	0x19: "MBC5",
	0x1a: "MBC5+RAM",
	0x1b: "MBC5+RAM+BATTERY",
	0x1c: "MBC5+RUMBLE",
	0x1d: "MBC5+RUMBLE+RAM",
	0x1e: "MBC5+RUMBLE+RAM+BATTERY",
	0x20: "MBC6",
	0x22: "MBC7+SENSOR+RUMBLE+RAM+BATTERY",
	0xfc: "POCKET CAMERA",
	0xfd: "BANDAI TAMA5",
	0xfe: "HuC3",
	0xff: "HuC1+RAM+BATTERY",
}

var licensees = map[uint8]string{
	0x00: "None",
	0x01: "Nintendo",
	0x08: "Capcom",
	0x09: "Hot-B",
	0x0a: "Jaleco",
	0x13: "Electronic Arts",
	0x18: "Hudson Soft",
	0x19: "ITC Entertainment",
	0x1a: "Yanoman",
	0x1f: "Virgin",
	0x24: "PCM Complete",
	0x28: "Kemco Japan",
	0x30: "Infogrames",
	0x31: "Nintendo",
	0x32: "Bandai",
	0x34: "Konami",
	0x35: "Hector",
	0x38: "Capcom",
	0x39: "Banpresto",
	0x41: "Ubi Soft",
	0x42: "Atlus",
	0x44: "Malibu",
	0x46: "Angel",
	0x49: "Irem",
	0x4a: "Virgin",
	0x50: "Absolute",
	0x51: "Acclaim",
	0x52: "Activision",
	0x54: "Konami",
	0x56: "LJN",
	0x58: "Mattel",
	0x60: "Titus",
	0x61: "Virgin",
	0x67: "Ocean",
	0x69: "Electronic Arts",
	0x6e: "Elite Systems",
	0x70: "Infogrames",
	0x71: "Interplay",
	0x72: "Broderbund",
	0x78: "THQ",
	0x79: "Accolade",
	0x7f: "Kemco",
	0x8b: "Bullet-Proof Software",
	0x8c: "Vic Tokai",
	0x91: "Chunsoft",
	0x92: "Video System",
	0x95: "Varie",
	0x99: "Pack-In-Video",
	0xa4: "Konami",
	0xb0: "Acclaim",
	0xb1: "ASCII",
	0xb2: "Bandai",
	0xc0: "Taito",
	0xc3: "Square",
	0xc5: "Data East",
	0xd9: "Banpresto",
	0xe7: "Athena",
	0xeb: "Atlus",
	0xf0: "A Wave",
}
