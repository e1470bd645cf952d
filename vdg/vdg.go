// Package vdg implements the MC6847 Video Display Generator's scanline
// timing and pixel decode. It drives itself from the scheduler package
// via HS-fall/HS-rise events and calls back into the machine for VDG RAM
// fetches and completed pixel rows. See spec.md §4.4.
package vdg

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vixenretro/coco64/scheduler"
	"github.com/vixenretro/coco64/tick"
)

// glyphCacheSize bounds the decoded-glyph cache to every (byte, font
// row, CSS) combination the internal alphanumeric font can produce (256
// byte values * (7 font rows + 1 blank padding row) * 2 CSS settings), so
// a pathological character stream can never grow it further.
const glyphCacheSize = 256 * 8 * 2

// Horizontal timing constants, in SAM sub-cycles (quarter-clocks).
const (
	hsFrontPorch = 34
	hsWidth      = 64
	hsBackPorch  = 70
	leftBorder   = 120
	activeWidth  = 512
	rightBorder  = 112
	totalLine    = 912

	activeLineFirst = 38
	activeLineLast  = 229
	activeLines     = activeLineLast - activeLineFirst + 1 // 192

	ntscLines = 262
)

// Mode selects the render mode the control lines currently latch.
type Mode int

const (
	ModeAlphaInternal Mode = iota
	ModeAlphaExternal
	ModeSemigraphics4
	ModeSemigraphics6
	ModeSemigraphics8
	ModeCG1
	ModeCG2
	ModeCG3
	ModeCG4
	ModeCG5
	ModeCG6
	ModeRG1
	ModeRG2
	ModeRG3
	ModeRG4
	ModeRG5
	ModeRG6
)

// PALPadding selects how many blank sub-lines are inserted, and where, to
// stretch a 262-line NTSC-timed frame to the 312 lines a PAL display
// expects. Dragon 32 runs unpadded NTSC timing even on PAL CRTs.
type PALPadding int

const (
	PALPaddingNone       PALPadding = iota // Dragon 32
	PALPaddingDragon64                     // 25 + 25 extra sub-lines
	PALPaddingCoCoPAL                      // 26 + 24 extra sub-lines
)

// Pixel is one decoded output pixel: one of the twelve colour indices
// declared below (the colour-graphics palettes for both CSS settings, the
// semigraphics colours, black, and the green/orange light-dark pairs the
// alphanumeric and resolution-graphics modes use).
type Pixel uint8

// Callbacks the VDG needs from the rest of the machine.
type Callbacks struct {
	// Fetch returns up to n bytes of VDG RAM (or character-generator ROM
	// data for external alphanumeric) starting at addr.
	Fetch func(addr uint16, n int) []uint8
	// NextAddress returns the video address to fetch n words from and how
	// far into the current repeated-row group this scanline sits
	// (0-based), then advances the machine's SAM video-counter chain. The
	// SAM's Y-divider decides whether the address actually steps this
	// scanline or the same row repeats, which is what lets alphanumeric
	// rows (Y-divider 12) hold one character row across twelve scanlines
	// instead of racing ahead. If nil, the VDG falls back to a flat
	// per-scanline increment with no row repeat, which is only adequate
	// for fetch-width unit tests that don't exercise addressing.
	NextAddress func(n int) (addr uint16, rowInGroup uint8)
	// LineReady delivers one fully decoded scanline's pixels.
	LineReady func(scanline int, pixels []Pixel)
	// VSync is called when FS transitions (low at scanline 0, high at the
	// start of vertical blank).
	VSync func(low bool)
}

// VDG is the scanline/timing engine. CSS, inverse and mode are expected
// to be kept current by the machine from the control-line latches
// (normally fed by a PIA side) before each HS-fall fires.
type VDG struct {
	cb Callbacks

	Mode    Mode
	CSS     bool
	Padding PALPadding

	scanline int
	hs       bool
	vramAddr uint16

	hsFall scheduler.Event
	hsRise scheduler.Event

	list *scheduler.List

	glyphs *lru.Cache[uint16, []Pixel]
}

// New creates a VDG that will schedule its events onto list.
func New(list *scheduler.List, cb Callbacks) *VDG {
	glyphs, err := lru.New[uint16, []Pixel](glyphCacheSize)
	if err != nil {
		panic(err) // glyphCacheSize is a positive constant; only programmer error can get here
	}
	v := &VDG{cb: cb, list: list, glyphs: glyphs}
	v.hsFall.Name = "vdg.hs-fall"
	v.hsFall.Run = func(_ any, at tick.Count) { v.onHSFall(at) }
	v.hsRise.Name = "vdg.hs-rise"
	v.hsRise.Run = func(_ any, at tick.Count) { v.onHSRise(at) }
	return v
}

// Start schedules the first HS-fall at `at`, beginning a new frame.
func (v *VDG) Start(at tick.Count) {
	v.scanline = 0
	v.hs = false
	v.list.Enqueue(&v.hsFall, at)
}

// paddingSubLinesAt returns extra blank sub-lines inserted *after* the
// named scanline for this frame's padding scheme, per spec.md §4.4.
func (v *VDG) paddingSubLinesAt(scanline int) int {
	switch v.Padding {
	case PALPaddingDragon64:
		if scanline == 0 || scanline == ntscLines/2 {
			return 25
		}
	case PALPaddingCoCoPAL:
		if scanline == 0 {
			return 26
		}
		if scanline == ntscLines/2 {
			return 24
		}
	}
	return 0
}

func (v *VDG) onHSFall(at tick.Count) {
	if v.scanline >= activeLineFirst && v.scanline <= activeLineLast {
		v.renderLine()
	}

	if v.scanline == 0 && v.cb.VSync != nil {
		v.cb.VSync(true)
	}

	v.hs = true
	v.scanline++
	if v.scanline >= ntscLines {
		v.scanline = 0
		if v.cb.VSync != nil {
			v.cb.VSync(false)
		}
	}

	padding := tick.Count(v.paddingSubLinesAt(v.scanline)) * totalLine
	v.list.Enqueue(&v.hsRise, at+tick.Count(hsFrontPorch+hsWidth))
	v.list.Enqueue(&v.hsFall, at+totalLine+padding)
}

func (v *VDG) onHSRise(_ tick.Count) {
	v.hs = false
}

// wordsPerFetch returns the per-scanline fetch width: 42 words in normal
// 8-pixel-per-byte graphics modes, 22 in the 16-colour/6-bit "16-byte" mode.
func (v *VDG) wordsPerFetch() int {
	if v.Mode == ModeSemigraphics6 {
		return 22
	}
	return 42
}

func (v *VDG) renderLine() {
	n := v.wordsPerFetch()
	var addr uint16
	var rowInGroup uint8
	if v.cb.NextAddress != nil {
		addr, rowInGroup = v.cb.NextAddress(n)
	} else {
		addr = v.vramAddr
		v.vramAddr += uint16(n)
	}

	var data []uint8
	if v.cb.Fetch != nil {
		data = v.cb.Fetch(addr, n)
	}

	pixels := make([]Pixel, 0, activeWidth)
	for _, b := range data {
		pixels = append(pixels, v.decodeByte(b, rowInGroup)...)
	}
	if v.cb.LineReady != nil {
		v.cb.LineReady(v.scanline, pixels)
	}
}

// decodeByte expands one fetched byte into pixels per the current mode.
// Alphanumeric and semigraphics modes pack a character/block per byte;
// colour/resolution graphics modes pack four or eight pixels per byte.
// rowInGroup (0..11) selects which row of the internal font an
// alphanumeric byte renders this scanline; other modes ignore it, since
// their fetched byte already represents the pixels for this scanline
// directly.
func (v *VDG) decodeByte(b uint8, rowInGroup uint8) []Pixel {
	switch v.Mode {
	case ModeAlphaInternal, ModeAlphaExternal:
		return v.decodeAlpha(b, rowInGroup)
	case ModeSemigraphics4, ModeSemigraphics6, ModeSemigraphics8:
		return v.decodeSemigraphics(b)
	case ModeCG1, ModeCG2, ModeCG3, ModeCG4, ModeCG5, ModeCG6:
		return v.decodeColourGraphics(b)
	default: // resolution graphics: 1 bit per pixel, 8 pixels per byte
		out := make([]Pixel, 8)
		for i := 0; i < 8; i++ {
			bit := (b >> (7 - i)) & 1
			out[i] = v.rgPixel(bit != 0)
		}
		return out
	}
}

func (v *VDG) rgPixel(on bool) Pixel {
	if on {
		if v.CSS {
			return pixelOrange
		}
		return pixelGreen
	}
	if v.CSS {
		return pixelDarkOrange
	}
	return pixelDarkGreen
}

const (
	pixelDarkGreen Pixel = iota
	pixelGreen
	pixelDarkOrange
	pixelOrange
	pixelWhite
	pixelBuff
	pixelCyan
	pixelMagenta
	pixelYellow
	pixelRed
	pixelBlack
	pixelBlue
)

// alphaFontRow maps a row-within-character-row index (0..11, the twelve
// scanlines a SAM Y-divider of 12 repeats one character row across) onto
// the 7-row internal font, blanking the top two and bottom three lines
// the way the MC6847's 8x12 alphanumeric cell pads a 5x7 glyph.
func alphaFontRow(rowInGroup uint8) (row uint8, blank bool) {
	if rowInGroup < 2 || rowInGroup > 8 {
		return 0, true
	}
	return rowInGroup - 2, false
}

// decodeAlpha renders one scanline of one character cell from the byte
// fetched, which is itself a character code, using rowInGroup to pick
// which row of the internal 5x7 font (or the cell's blank top/bottom
// padding) this scanline shows. External mode is expected to behave the
// same way once wired to a real chargen ROM fetch; until then it shares
// the internal table.
func (v *VDG) decodeAlpha(b uint8, rowInGroup uint8) []Pixel {
	fontRow, blank := alphaFontRow(rowInGroup)

	keyRow := uint16(fontRow)
	if blank {
		keyRow = 7 // padding rows get their own slot, apart from font row 0
	}
	key := uint16(b)<<4 | keyRow<<1
	if v.CSS {
		key |= 1
	}
	if cached, ok := v.glyphs.Get(key); ok {
		return cached
	}

	inverse := b&0x40 != 0
	bg, fg := pixelDarkGreen, pixelGreen
	if v.CSS {
		bg, fg = pixelDarkOrange, pixelOrange
	}
	if inverse {
		bg, fg = fg, bg
	}

	out := make([]Pixel, 8)
	if blank {
		for col := range out {
			out[col] = bg
		}
	} else {
		glyph := internalFont[b&0x3F]
		for col := 0; col < 8; col++ {
			lit := col < 5 && glyph[col]&(1<<fontRow) != 0
			if lit {
				out[col] = fg
			} else {
				out[col] = bg
			}
		}
	}
	v.glyphs.Add(key, out)
	return out
}

func (v *VDG) decodeSemigraphics(b uint8) []Pixel {
	colourField := (b >> 4) & 0x0F
	colour := semigraphicsPalette[colourField&0x07]
	out := make([]Pixel, 8)
	for i := range out {
		if b&(1<<(7-uint(i)%4)) != 0 {
			out[i] = colour
		} else {
			out[i] = pixelBlack
		}
	}
	return out
}

var semigraphicsPalette = [8]Pixel{
	pixelGreen, pixelYellow, pixelBlue, pixelRed,
	pixelBuff, pixelCyan, pixelMagenta, pixelOrange,
}

func (v *VDG) decodeColourGraphics(b uint8) []Pixel {
	palette := [4]Pixel{pixelGreen, pixelYellow, pixelBlue, pixelRed}
	if v.CSS {
		palette = [4]Pixel{pixelWhite, pixelCyan, pixelMagenta, pixelOrange}
	}
	out := make([]Pixel, 4)
	for i := 0; i < 4; i++ {
		bits := (b >> (6 - 2*uint(i))) & 0x03
		out[i] = palette[bits]
	}
	return out
}

// internalFont holds the MC6847 internal alphanumeric generator's 5x7
// dot pattern for all 64 screen codes, one [5]uint8 per code with one
// byte per column (bit 0 = top font row, bit 6 = bottom font row).
// Screen codes 0-31 display the same glyphs as ASCII 0x40-0x5F (@, A-Z,
// [ \ ] ^ _); codes 32-63 display ASCII 0x20-0x3F unchanged (space
// through ?) — the standard Dragon/CoCo internal character code page.
var internalFont = buildInternalFont()

func buildInternalFont() [64][5]uint8 {
	var f [64][5]uint8
	for code := 0; code < 64; code++ {
		var ascii byte
		if code < 32 {
			ascii = byte(code) + 0x40
		} else {
			ascii = byte(code)
		}
		rows, ok := font5x7[ascii]
		if !ok {
			continue
		}
		var g [5]uint8
		for row, pattern := range rows {
			for col := 0; col < 5; col++ {
				if pattern[col] != '.' {
					g[col] |= 1 << uint(row)
				}
			}
		}
		f[code] = g
	}
	return f
}

// font5x7 gives each ASCII code 0x20-0x5F a 7-row, 5-column dot pattern,
// top row first, '#' lit and '.' unlit.
var font5x7 = map[byte][7]string{
	' ':  {".....", ".....", ".....", ".....", ".....", ".....", "....."},
	'!':  {"..#..", "..#..", "..#..", "..#..", "..#..", ".....", "..#.."},
	'"':  {".#.#.", ".#.#.", ".....", ".....", ".....", ".....", "....."},
	'#':  {".#.#.", ".#.#.", "#####", ".#.#.", "#####", ".#.#.", ".#.#."},
	'$':  {"..#..", ".####", "#.#..", ".###.", "..#.#", "####.", "..#.."},
	'%':  {"##..#", "##.#.", "...#.", "..#..", ".#...", ".#.##", "#..##"},
	'&':  {".##..", "#..#.", "#..#.", ".##..", "#..#.", "#..#.", ".##.#"},
	'\'': {".#...", ".#...", ".....", ".....", ".....", ".....", "....."},
	'(':  {"..#..", ".#...", "#....", "#....", "#....", ".#...", "..#.."},
	')':  {"..#..", "...#.", "....#", "....#", "....#", "...#.", "..#.."},
	'*':  {".....", "..#..", ".#.#.", "...#.", ".#.#.", "..#..", "....."},
	'+':  {".....", "..#..", "..#..", "#####", "..#..", "..#..", "....."},
	',':  {".....", ".....", ".....", ".....", "..##.", "..#..", ".#..."},
	'-':  {".....", ".....", ".....", "#####", ".....", ".....", "....."},
	'.':  {".....", ".....", ".....", ".....", ".....", ".##..", ".##.."},
	'/':  {"....#", "...#.", "..#..", ".#...", "#....", ".....", "....."},
	'0':  {".###.", "#...#", "#..##", "#.#.#", "##..#", "#...#", ".###."},
	'1':  {"..#..", ".##..", "..#..", "..#..", "..#..", "..#..", ".###."},
	'2':  {".###.", "#...#", "....#", "...#.", "..#..", ".#...", "#####"},
	'3':  {"####.", "....#", "...#.", "..##.", "....#", "#...#", ".###."},
	'4':  {"...#.", "..##.", ".#.#.", "#..#.", "#####", "...#.", "...#."},
	'5':  {"#####", "#....", "####.", "....#", "....#", "#...#", ".###."},
	'6':  {"..##.", ".#...", "#....", "####.", "#...#", "#...#", ".###."},
	'7':  {"#####", "....#", "...#.", "..#..", ".#...", ".#...", ".#..."},
	'8':  {".###.", "#...#", "#...#", ".###.", "#...#", "#...#", ".###."},
	'9':  {".###.", "#...#", "#...#", ".####", "....#", "...#.", ".###."},
	':':  {".....", ".##..", ".##..", ".....", ".##..", ".##..", "....."},
	';':  {".....", ".##..", ".##..", ".....", ".##..", ".#...", "#...."},
	'<':  {"...#.", "..#..", ".#...", "#....", ".#...", "..#..", "...#."},
	'=':  {".....", ".....", "#####", ".....", "#####", ".....", "....."},
	'>':  {".#...", "..#..", "...#.", "....#", "...#.", "..#..", ".#..."},
	'?':  {".###.", "#...#", "....#", "...#.", "..#..", ".....", "..#.."},
	'@':  {".###.", "#...#", "#.###", "#.#.#", "#.##.", "#....", ".###."},
	'A':  {"..#..", ".#.#.", "#...#", "#...#", "#####", "#...#", "#...#"},
	'B':  {"####.", "#...#", "#...#", "####.", "#...#", "#...#", "####."},
	'C':  {".###.", "#...#", "#....", "#....", "#....", "#...#", ".###."},
	'D':  {"###..", "#.#..", "#..#.", "#..#.", "#..#.", "#.#..", "###.."},
	'E':  {"#####", "#....", "#....", "###..", "#....", "#....", "#####"},
	'F':  {"#####", "#....", "#....", "###..", "#....", "#....", "#...."},
	'G':  {".###.", "#...#", "#....", "#.###", "#...#", "#...#", ".####"},
	'H':  {"#...#", "#...#", "#...#", "#####", "#...#", "#...#", "#...#"},
	'I':  {".###.", "..#..", "..#..", "..#..", "..#..", "..#..", ".###."},
	'J':  {"....#", "....#", "....#", "....#", "#...#", "#...#", ".###."},
	'K':  {"#...#", "#..#.", "#.#..", "##...", "#.#..", "#..#.", "#...#"},
	'L':  {"#....", "#....", "#....", "#....", "#....", "#....", "#####"},
	'M':  {"#...#", "##.##", "#.#.#", "#...#", "#...#", "#...#", "#...#"},
	'N':  {"#...#", "##..#", "#.#.#", "#..##", "#...#", "#...#", "#...#"},
	'O':  {".###.", "#...#", "#...#", "#...#", "#...#", "#...#", ".###."},
	'P':  {"####.", "#...#", "#...#", "####.", "#....", "#....", "#...."},
	'Q':  {".###.", "#...#", "#...#", "#...#", "#.#.#", "#..#.", ".##.#"},
	'R':  {"####.", "#...#", "#...#", "####.", "#.#..", "#..#.", "#...#"},
	'S':  {".####", "#....", "#....", ".###.", "....#", "....#", "####."},
	'T':  {"#####", "..#..", "..#..", "..#..", "..#..", "..#..", "..#.."},
	'U':  {"#...#", "#...#", "#...#", "#...#", "#...#", "#...#", ".###."},
	'V':  {"#...#", "#...#", "#...#", "#...#", "#...#", ".#.#.", "..#.."},
	'W':  {"#...#", "#...#", "#...#", "#.#.#", "#.#.#", "##.##", "#...#"},
	'X':  {"#...#", ".#.#.", "..#..", "..#..", "..#..", ".#.#.", "#...#"},
	'Y':  {"#...#", ".#.#.", "..#..", "..#..", "..#..", "..#..", "..#.."},
	'Z':  {"#####", "....#", "...#.", "..#..", ".#...", "#....", "#####"},
	'[':  {".###.", ".#...", ".#...", ".#...", ".#...", ".#...", ".###."},
	'\\': {"#....", ".#...", "..#..", "...#.", "....#", ".....", "....."},
	']':  {".###.", "...#.", "...#.", "...#.", "...#.", "...#.", ".###."},
	'^':  {"..#..", ".#.#.", "#...#", ".....", ".....", ".....", "....."},
	'_':  {".....", ".....", ".....", ".....", ".....", ".....", "#####"},
}
