package spidump

// Identity is a decoded JEDEC ID. It is derived data, recomputed on
// every identify request: the attached chip may change between calls.
type Identity struct {
	Manufacturer byte
	MemoryType   byte
	CapacityCode byte
}

// vendorNames maps JEDEC manufacturer bytes to flash series labels.
var vendorNames = map[byte]string{
	0xEF: "Winbond W25Q series",
	0xC2: "Macronix MX25L series",
	0x1F: "Atmel/Adesto AT25 series",
	0xC8: "GigaDevice GD25Q series",
	0x20: "Micron MT25Q series",
	0x01: "Spansion/Cypress S25FL series",
}

// capacityBytes maps the JEDEC capacity code to the chip size in
// bytes. The codes are log2 of the capacity for most vendors.
var capacityBytes = map[byte]uint32{
	0x13: 512 << 10, // 512KB
	0x14: 1 << 20,   // 1MB
	0x15: 2 << 20,
	0x16: 4 << 20,
	0x17: 8 << 20,
	0x18: 16 << 20,
	0x19: 32 << 20,
	0x20: 64 << 20,
	0x21: 128 << 20,
}

// Vendor returns the flash series label for the manufacturer byte, or
// "Unknown" for unlisted manufacturers.
func (id Identity) Vendor() string {
	if name, ok := vendorNames[id.Manufacturer]; ok {
		return name
	}
	return "Unknown"
}

// Capacity returns the chip size in bytes. ok is false when the
// capacity code is not listed; no default is fabricated.
func (id Identity) Capacity() (size uint32, ok bool) {
	size, ok = capacityBytes[id.CapacityCode]
	return
}

// Identify reads and decodes the JEDEC ID of the attached chip.
func (f *Flash) Identify() (Identity, error) {
	id, err := f.ReadID()
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		Manufacturer: id[0],
		MemoryType:   id[1],
		CapacityCode: id[2],
	}, nil
}
