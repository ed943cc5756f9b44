// Package testrom builds synthetic cartridge images for tests.
package testrom

type ROM struct {
	Type, ROMSize, RAMSize uint8
	Title                  string
	// Code is placed at the entry point 0100.
	Code []uint8
	// Patch is applied after Code, keyed by absolute ROM offset.
	Patch map[int][]uint8
	// BadChecksum stores an incorrect header checksum.
	BadChecksum bool
}

// Build lays out the image, fills every switchable bank with its own bank
// number at offset 0 of the bank, and fixes up the header checksum.
func (r ROM) Build() []uint8 {
	banks := 2 << r.ROMSize
	img := make([]uint8, banks*0x4000)
	for bank := 1; bank < banks; bank++ {
		img[bank*0x4000] = uint8(bank)
		img[bank*0x4000+1] = 0xa5
	}

	copy(img[0x100:], r.Code)
	title := r.Title
	if title == "" {
		title = "TESTROM"
	}
	copy(img[0x134:0x144], title)
	img[0x147] = r.Type
	img[0x148] = r.ROMSize
	img[0x149] = r.RAMSize

	for off, data := range r.Patch {
		copy(img[off:], data)
	}

	img[0x14d] = checksum(img)
	if r.BadChecksum {
		img[0x14d]++
	}
	return img
}

func checksum(img []uint8) uint8 {
	var x uint8
	for i := 0x134; i <= 0x14c; i++ {
		x = x - img[i] - 1
	}
	return x
}
