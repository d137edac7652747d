package vircon

// Cartridge controller local ports.
const (
	CartridgePortConnected = iota
	CartridgePortProgramROMSize
	CartridgePortNumberOfTextures
	CartridgePortNumberOfSounds

	cartridgePorts
)

// CartridgeController holds the program ROM of the inserted cartridge and
// its metadata. The ROM is mapped on the memory bus; the metadata is
// reported on the control bus through Ports.
type CartridgeController struct {
	ROM

	Title            string
	Version          uint32
	Revision         uint32
	FileName         string
	NumberOfTextures int
	NumberOfSounds   int
}

// Connected reports whether a cartridge is inserted.
func (c *CartridgeController) Connected() bool {
	return c.Size() != 0
}

// Disconnect releases the program ROM and clears the metadata.
func (c *CartridgeController) Disconnect() {
	c.ROM.Disconnect()
	c.Title = ""
	c.Version, c.Revision = 0, 0
	c.FileName = ""
	c.NumberOfTextures, c.NumberOfSounds = 0, 0
}

// Ports returns the control bus view of the controller.
func (c *CartridgeController) Ports() Slave {
	return cartridgeControl{c}
}

type cartridgeControl struct {
	c *CartridgeController
}

func (p cartridgeControl) ReadAddress(local int32) (Word, bool) {
	switch local {
	case CartridgePortConnected:
		return BoolWord(p.c.Connected()), true
	case CartridgePortProgramROMSize:
		return IntegerWord(int32(p.c.Size())), true
	case CartridgePortNumberOfTextures:
		return IntegerWord(int32(p.c.NumberOfTextures)), true
	case CartridgePortNumberOfSounds:
		return IntegerWord(int32(p.c.NumberOfSounds)), true
	}
	return 0, false
}

func (p cartridgeControl) WriteAddress(local int32, value Word) bool {
	return false
}
