// ui_surface.go - EbitenSurface: a reference UISurface a host can use to
// actually draw what a module's UI() hook describes, without synthrack
// pulling in a full GUI application shell.

package synth

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// EbitenSurface draws module panels into an ebiten.Image using its
// vector rasterizer for shapes and x/image's bundled basicfont for
// labels. The host is responsible for creating one per module panel per
// frame, feeding it the current frame's pointer state, and blitting the
// target image into its own scene.
type EbitenSurface struct {
	target *ebiten.Image

	// PointerX/PointerY/PointerDown describe this frame's input, set by
	// the host before calling a module's UI(surface).
	PointerX, PointerY int
	PointerDown        bool
	pointerWasDown     bool
}

// NewEbitenSurface wraps target for one frame's worth of drawing.
func NewEbitenSurface(target *ebiten.Image) *EbitenSurface {
	return &EbitenSurface{target: target}
}

func (s *EbitenSurface) hit(x, y, w, h float32) bool {
	px, py := float32(s.PointerX), float32(s.PointerY)
	return px >= x && px < x+w && py >= y && py < y+h
}

// clicked reports a press inside the given rect this frame (pointer down
// now, up last frame); the host calls EndFrame once per frame to latch
// pointerWasDown.
func (s *EbitenSurface) clicked(x, y, w, h float32) bool {
	return s.hit(x, y, w, h) && s.PointerDown && !s.pointerWasDown
}

// EndFrame latches the pointer-down state for next frame's edge detection.
func (s *EbitenSurface) EndFrame() {
	s.pointerWasDown = s.PointerDown
}

func (s *EbitenSurface) Label(x, y float32, str string) {
	text.Draw(s.target, str, basicfont.Face7x13, int(x), int(y)+13, color.White)
}

func (s *EbitenSurface) Knob(x, y, w, h float32, label string, value float32, min, max float32) (float32, bool) {
	vector.StrokeRect(s.target, x, y, w, h, 1, color.Gray{Y: 180}, false)
	frac := float32(0)
	if max > min {
		frac = (value - min) / (max - min)
	}
	vector.DrawFilledRect(s.target, x, y, w*clampFloat32(frac, 0, 1), h, color.RGBA{R: 80, G: 160, B: 220, A: 255}, false)
	text.Draw(s.target, label, basicfont.Face7x13, int(x)+2, int(y)+int(h)-2, color.White)

	if s.hit(x, y, w, h) && s.PointerDown {
		newFrac := clampFloat32(float32(s.PointerX)-x, 0, w) / w
		return min + newFrac*(max-min), true
	}
	return value, false
}

func (s *EbitenSurface) Button(x, y, w, h float32, label string) bool {
	col := color.RGBA{R: 70, G: 70, B: 70, A: 255}
	if s.hit(x, y, w, h) {
		col = color.RGBA{R: 100, G: 100, B: 100, A: 255}
	}
	vector.DrawFilledRect(s.target, x, y, w, h, col, false)
	text.Draw(s.target, label, basicfont.Face7x13, int(x)+2, int(y)+int(h)-2, color.White)
	return s.clicked(x, y, w, h)
}

func (s *EbitenSurface) Cell(x, y, size float32, filled bool) bool {
	col := color.RGBA{R: 50, G: 50, B: 50, A: 255}
	if filled {
		col = color.RGBA{R: 220, G: 180, B: 60, A: 255}
	}
	vector.DrawFilledRect(s.target, x, y, size, size, col, false)
	vector.StrokeRect(s.target, x, y, size, size, 1, color.Gray{Y: 100}, false)
	return s.clicked(x, y, size, size)
}

func clampFloat32(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
