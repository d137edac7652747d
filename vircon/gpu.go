package vircon

import (
	"math"
	"unsafe"

	"github.com/golang/glog"
)

// GPU local ports, in register order.
const (
	GPUPortCommand = iota
	GPUPortRemainingPixels
	GPUPortClearColor
	GPUPortMultiplyColor
	GPUPortActiveBlending
	GPUPortSelectedTexture
	GPUPortSelectedRegion
	GPUPortDrawingPointX
	GPUPortDrawingPointY
	GPUPortDrawingScaleX
	GPUPortDrawingScaleY
	GPUPortDrawingAngle
	GPUPortRegionMinX
	GPUPortRegionMinY
	GPUPortRegionMaxX
	GPUPortRegionMaxY
	GPUPortRegionHotspotX
	GPUPortRegionHotspotY

	gpuPorts
)

// GPU commands written to the command port.
const (
	GPUCommandClearScreen          = 0x10
	GPUCommandDrawRegion           = 0x11
	GPUCommandDrawRegionZoomed     = 0x12
	GPUCommandDrawRegionRotated    = 0x13
	GPUCommandDrawRegionRotozoomed = 0x14
)

const (
	GPUMaximumCartridgeTextures = 256
	GPURegionsPerTexture        = 4096
	GPUTextureSize              = 1024

	// SelectedTexture value addressing the BIOS texture.
	biosTextureIndex = -1
)

// gpuRegisters is the GPU port block. Fields are laid out in port order,
// one word each; Verify checks that no padding sneaks in between them.
type gpuRegisters struct {
	Command         Word
	RemainingPixels Word
	ClearColor      Word
	MultiplyColor   Word
	ActiveBlending  Word
	SelectedTexture Word
	SelectedRegion  Word
	DrawingPointX   Word
	DrawingPointY   Word
	DrawingScaleX   Word
	DrawingScaleY   Word
	DrawingAngle    Word
	RegionMinX      Word
	RegionMinY      Word
	RegionMaxX      Word
	RegionMaxY      Word
	RegionHotspotX  Word
	RegionHotspotY  Word
}

// Region is a rectangle of a texture with a reference point.
type Region struct {
	MinX, MinY, MaxX, MaxY int32
	HotspotX, HotspotY     int32
}

// Texture is a GPU texture resource.
type Texture struct {
	Width, Height int
	Pixels        []Word
	Regions       [GPURegionsPerTexture]Region
}

// GPU keeps the video resources and the per-frame fill budget. Drawing
// commands consume budget; rasterizing them is left to the host renderer.
type GPU struct {
	regs            gpuRegisters
	RemainingPixels int32

	BiosTexture       *Texture
	CartridgeTextures []*Texture

	// Commands counts accepted drawing commands in the current frame.
	Commands int
}

// NewGPU creates a GPU with a full fill budget.
func NewGPU() *GPU {
	g := &GPU{}
	g.Reset()
	return g
}

// ChangeFrame restores the fill budget.
func (g *GPU) ChangeFrame() {
	g.RemainingPixels = GPUPixelCapacityPerFrame
	g.Commands = 0
}

// Reset restores every register to its power-on value.
func (g *GPU) Reset() {
	g.regs = gpuRegisters{}
	g.regs.MultiplyColor = Color{255, 255, 255, 255}.Encode()
	g.regs.ClearColor = Color{0, 0, 0, 255}.Encode()
	g.regs.SelectedTexture = IntegerWord(biosTextureIndex)
	g.regs.DrawingScaleX = FloatWord(1)
	g.regs.DrawingScaleY = FloatWord(1)
	g.ChangeFrame()
}

// ClearColor returns the color the screen is cleared to.
func (g *GPU) ClearColor() Color {
	return g.regs.ClearColor.AsColor()
}

// LoadTexture creates a texture from pixel data.
func (g *GPU) LoadTexture(pixels []Word, width, height int) *Texture {
	t := &Texture{Width: width, Height: height, Pixels: pixels}
	for i := range t.Regions {
		t.Regions[i] = Region{MaxX: int32(width) - 1, MaxY: int32(height) - 1}
	}
	return t
}

// UnloadTexture releases the pixel data of a texture.
func (g *GPU) UnloadTexture(t *Texture) {
	t.Pixels = nil
	t.Width, t.Height = 0, 0
}

// LoadBiosTexture replaces the BIOS texture.
func (g *GPU) LoadBiosTexture(pixels []Word, width, height int) {
	g.BiosTexture = g.LoadTexture(pixels, width, height)
}

// AddCartridgeTexture appends a cartridge texture.
func (g *GPU) AddCartridgeTexture(pixels []Word, width, height int) {
	g.CartridgeTextures = append(g.CartridgeTextures, g.LoadTexture(pixels, width, height))
}

// UnloadCartridgeTextures releases every cartridge texture.
func (g *GPU) UnloadCartridgeTextures() {
	for _, t := range g.CartridgeTextures {
		g.UnloadTexture(t)
	}
	g.CartridgeTextures = nil
}

func (g *GPU) selectedTexture() *Texture {
	index := g.regs.SelectedTexture.AsInteger()
	if index == biosTextureIndex {
		return g.BiosTexture
	}
	if index < 0 || int(index) >= len(g.CartridgeTextures) {
		return nil
	}
	return g.CartridgeTextures[index]
}

func (g *GPU) selectedRegion() *Region {
	t := g.selectedTexture()
	index := g.regs.SelectedRegion.AsInteger()
	if t == nil || index < 0 || index >= GPURegionsPerTexture {
		return nil
	}
	return &t.Regions[index]
}

// regionPixels is the pixel cost of drawing the selected region, bounded to
// one frame's capacity. A NaN scale costs the whole frame.
func (g *GPU) regionPixels(scaleX, scaleY float32) int32 {
	r := g.selectedRegion()
	if r == nil {
		return 0
	}
	w := (math.Abs(float64(r.MaxX)-float64(r.MinX)) + 1) * math.Abs(float64(scaleX))
	h := (math.Abs(float64(r.MaxY)-float64(r.MinY)) + 1) * math.Abs(float64(scaleY))
	cost := w * h
	if math.IsNaN(cost) || cost > GPUPixelCapacityPerFrame {
		return GPUPixelCapacityPerFrame
	}
	return int32(cost)
}

func (g *GPU) runCommand(command int32) {
	// once the budget is spent, the rest of the frame's drawing is dropped
	if g.RemainingPixels <= 0 {
		return
	}
	var cost int32
	switch command {
	case GPUCommandClearScreen:
		cost = ScreenPixels
	case GPUCommandDrawRegion, GPUCommandDrawRegionRotated:
		cost = g.regionPixels(1, 1)
	case GPUCommandDrawRegionZoomed, GPUCommandDrawRegionRotozoomed:
		cost = g.regionPixels(g.regs.DrawingScaleX.AsFloat(), g.regs.DrawingScaleY.AsFloat())
	default:
		glog.V(1).Infof("Unknown GPU command: 0x%02x", command)
		return
	}
	g.RemainingPixels -= cost
	g.Commands++
}

// ReadAddress reads a GPU port.
func (g *GPU) ReadAddress(local int32) (Word, bool) {
	switch local {
	case GPUPortRemainingPixels:
		return IntegerWord(g.RemainingPixels), true
	case GPUPortRegionMinX, GPUPortRegionMinY, GPUPortRegionMaxX, GPUPortRegionMaxY,
		GPUPortRegionHotspotX, GPUPortRegionHotspotY:
		r := g.selectedRegion()
		if r == nil {
			return 0, true
		}
		return IntegerWord(*regionField(r, local)), true
	}
	if local < 0 || local >= gpuPorts {
		return 0, false
	}
	return *g.register(local), true
}

// WriteAddress writes a GPU port.
func (g *GPU) WriteAddress(local int32, value Word) bool {
	switch local {
	case GPUPortCommand:
		g.runCommand(value.AsInteger())
		return true
	case GPUPortRemainingPixels:
		return false
	case GPUPortRegionMinX, GPUPortRegionMinY, GPUPortRegionMaxX, GPUPortRegionMaxY,
		GPUPortRegionHotspotX, GPUPortRegionHotspotY:
		if r := g.selectedRegion(); r != nil {
			*regionField(r, local) = value.AsInteger()
		}
		return true
	}
	if local < 0 || local >= gpuPorts {
		return false
	}
	*g.register(local) = value
	return true
}

// register addresses the port block as an array. This relies on the layout
// Verify checks at start-up.
func (g *GPU) register(local int32) *Word {
	ports := (*[gpuPorts]Word)(unsafe.Pointer(&g.regs))
	return &ports[local]
}

func regionField(r *Region, local int32) *int32 {
	switch local {
	case GPUPortRegionMinX:
		return &r.MinX
	case GPUPortRegionMinY:
		return &r.MinY
	case GPUPortRegionMaxX:
		return &r.MaxX
	case GPUPortRegionMaxY:
		return &r.MaxY
	case GPUPortRegionHotspotX:
		return &r.HotspotX
	}
	return &r.HotspotY
}
