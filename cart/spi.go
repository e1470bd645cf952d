package cart

// SPIDevice is the capability an SPI-bridge memory-expander cart talks
// to: a single full-duplex byte shift, the way an SD card (or any other
// SPI peripheral wired to the expander) responds to a clocked-out byte
// with a clocked-in byte. The SD card's block/filesystem format is out
// of scope; SPIDevice is the narrow seam a real card model sits behind.
type SPIDevice interface {
	// Transfer clocks out tx and returns the byte the device shifted
	// back; CS reports whether the device is currently selected.
	Transfer(tx uint8, cs bool) uint8
}

// SPIBridge is a memory-expander cartridge built around a chip-select
// register and a data-shift register, the pattern used by SD-card-backed
// expansion carts: writing the data register clocks one byte in both
// directions: the byte most recently clocked in is what a following read
// returns.
type SPIBridge struct {
	dev SPIDevice
	cs  bool
	rx  uint8
}

func NewSPIBridge(dev SPIDevice) *SPIBridge {
	return &SPIBridge{dev: dev}
}

// Register offsets within the cart I/O window.
const (
	spiRegControl = 0xFF50 // bit 0: chip select (active high here)
	spiRegData    = 0xFF51
)

func (b *SPIBridge) Read(addr uint16, p2, r2 bool, d uint8) uint8 {
	if !p2 {
		return d
	}
	switch addr {
	case spiRegControl:
		if b.cs {
			return 1
		}
		return 0
	case spiRegData:
		return b.rx
	default:
		return d
	}
}

func (b *SPIBridge) Write(addr uint16, p2, r2 bool, d uint8) {
	if !p2 {
		return
	}
	switch addr {
	case spiRegControl:
		b.cs = d&0x01 != 0
	case spiRegData:
		if b.dev != nil {
			b.rx = b.dev.Transfer(d, b.cs)
		}
	}
}

func (b *SPIBridge) Reset() {
	b.cs = false
	b.rx = 0xFF
}

func (b *SPIBridge) Detach() {}

func (b *SPIBridge) SaveState() []byte {
	cs := byte(0)
	if b.cs {
		cs = 1
	}
	return []byte{cs, b.rx}
}

func (b *SPIBridge) LoadState(state []byte) error {
	if len(state) != 2 {
		return errShortState
	}
	b.cs = state[0] != 0
	b.rx = state[1]
	return nil
}
