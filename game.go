package main

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten"
)

const (
	// each CHIP-8 pixel is drawn as a 10x10 rectangle
	screenScale = 10

	// one tick every 10ms
	ticksPerSecond = 100

	windowTitle = "chip8 interpreter"
)

// errQuit ends the frame loop without being an error for the process.
var errQuit = errors.New("quit")

// keypad maps host keys to the 16 key latches in reading order.
//
// +---+---+---+---+
// | 1 | 2 | 3 | 4 |
// +---+---+---+---+
// | Q | W | E | R |
// +---+---+---+---+
// | A | S | D | F |
// +---+---+---+---+
// | Z | X | C | V |
// +---+---+---+---+
var keypad = [keyCount]ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyR,
	ebiten.KeyA, ebiten.KeyS, ebiten.KeyD, ebiten.KeyF,
	ebiten.KeyZ, ebiten.KeyX, ebiten.KeyC, ebiten.KeyV,
}

// game drives the interpreter from the ebiten frame loop. It is the only
// place that touches key latches and consumes the draw flag.
type game struct {
	ctx         context.Context
	machine     *machine
	interpreter *interpreter

	isKeyPressed func(ebiten.Key) bool

	// RGBA pixels of the last presented display
	pixels []byte
}

func newGame(ctx context.Context, m *machine, in *interpreter) *game {
	g := &game{
		ctx:          ctx,
		machine:      m,
		interpreter:  in,
		isKeyPressed: ebiten.IsKeyPressed,
		pixels:       make([]byte, displayWidth*displayHeight*4),
	}
	renderPixels(m, g.pixels)
	return g
}

// run blocks until the window is closed, escape is pressed or the context
// is cancelled.
func (g *game) run() error {
	ebiten.SetMaxTPS(ticksPerSecond)

	err := ebiten.Run(g.update, displayWidth, displayHeight, screenScale, windowTitle)
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (g *game) update(screen *ebiten.Image) error {
	if err := g.step(); err != nil {
		return err
	}

	if ebiten.IsDrawingSkipped() {
		return nil
	}
	return screen.ReplacePixels(g.pixels)
}

// step polls input, executes one tick and refreshes the pixel buffer when
// the display changed.
func (g *game) step() error {
	if err := g.ctx.Err(); err != nil {
		return err
	}
	if g.isKeyPressed(ebiten.KeyEscape) {
		return errQuit
	}

	g.pollKeys()
	g.interpreter.tick(g.machine)

	if g.machine.consumeDraw() {
		renderPixels(g.machine, g.pixels)
	}
	return nil
}

// pollKeys latches the current state of every keypad key, down presses the
// key and up releases it.
func (g *game) pollKeys() {
	for i, key := range keypad {
		if g.isKeyPressed(key) {
			g.machine.pressKey(uint8(i))
		} else {
			g.machine.releaseKey(uint8(i))
		}
	}
}

// renderPixels converts the display into RGBA pixels, on is white and off
// is black.
func renderPixels(m *machine, pixels []byte) {
	for y := 0; y < displayHeight; y++ {
		for x := 0; x < displayWidth; x++ {
			var c byte
			if m.pixel(x, y) {
				c = 0xFF
			}
			p := (y*displayWidth + x) * 4
			pixels[p] = c
			pixels[p+1] = c
			pixels[p+2] = c
			pixels[p+3] = 0xFF
		}
	}
}
