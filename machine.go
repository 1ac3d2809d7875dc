package main

import (
	cryptorand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"math/rand"
	"os"
	"time"
)

const (
	memorySize    = 4096
	programStart  = 0x200
	maxRomSize    = 0xE00
	registerCount = 16
	stackDepth    = 16
	keyCount      = 16

	// The original implementation of the Chip-8 language used a 64x32-pixel
	// monochrome display.
	displayWidth  = 64
	displayHeight = 32

	glyphSize = 5
)

var (
	errRomEmpty    = errors.New("rom is empty")
	errRomTooLarge = errors.New("rom is larger than program / data space")
)

// The data should be stored in the interpreter area of Chip-8 memory (0x000 to 0x1FF).
// Example: "0"
// +------------------------+
// | **** | 11110000 | 0xF0 |
// | *  * | 10010000 | 0x90 |
// | *  * | 10010000 | 0x90 |
// | *  * | 10010000 | 0x90 |
// | **** | 11110000 | 0xF0 |
// +------------------------+
var fontsets = [16 * glyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// machine holds everything a running program can observe. It has no control
// flow of its own, the interpreter mutates it one tick at a time.
type machine struct {
	// The Chip 8 has 4K memory in total.
	//
	// +---------------+= 0xFFF (4095) End of Chip-8 RAM
	// |               |
	// | 0x200 to 0xFFF|
	// |     Chip-8    |
	// | Program / Data|
	// |     Space     |
	// |               |
	// +---------------+= 0x200 (512) Start of Chip-8 programs
	// | 0x050 to 0x1FF|
	// |    unused     |
	// +---------------+= 0x050 (80)
	// | 0x000 to 0x04F|
	// |   font set    |
	// +---------------+= 0x000 (0) Start of Chip-8 RAM
	memory [memorySize]byte

	// V0 to VE are general purpose, VF doubles as the carry, borrow and
	// collision flag.
	v [registerCount]byte

	pc uint16

	// index register. CHIP-8 only addresses 12 bits but the register is kept
	// at 16 bits, memory access wraps instead.
	i uint16

	// Both timers count down once per tick while non-zero.
	delayTimer, soundTimer uint8

	stack [stackDepth]uint16

	// stack pointer, always in [0, stackDepth)
	sp uint8

	// current state of the hex keypad 0x0-0xF
	keys [keyCount]bool

	display [displayWidth * displayHeight]bool

	// drawFlag is set when the display changed since the renderer last looked.
	drawFlag bool

	seed   func() int64
	random *rand.Rand
}

// machineOption configures a machine on creation.
type machineOption func(*machine)

// withSeed makes the random byte instruction deterministic.
func withSeed(seed int64) machineOption {
	return func(m *machine) {
		m.seed = func() int64 { return seed }
	}
}

func newMachine(opts ...machineOption) *machine {
	m := &machine{
		seed: cryptoSeed,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.reset()
	return m
}

// cryptoSeed tries to use a crypto seed before falling back to time.
// stolen from: https://github.com/docker/cli/blob/aaa7a7cb9567cb5ed2e82facc2bbdd8a85347512/vendor/github.com/docker/docker/pkg/stringid/stringid.go#L81-L93
func cryptoSeed() int64 {
	seed, err := cryptorand.Int(cryptorand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		// This should not happen, but worst-case fallback to time-based seed.
		return time.Now().UnixNano()
	}
	return seed.Int64()
}

// reset puts the machine back into its power-on state. Loaded program bytes
// are cleared as well.
func (m *machine) reset() {
	m.memory = [memorySize]byte{}
	copy(m.memory[:], fontsets[:])

	m.v = [registerCount]byte{}
	m.pc = programStart
	m.i = 0
	m.delayTimer = 0
	m.soundTimer = 0
	m.stack = [stackDepth]uint16{}
	m.sp = 0
	m.keys = [keyCount]bool{}
	m.display = [displayWidth * displayHeight]bool{}
	m.drawFlag = false

	m.random = rand.New(rand.NewSource(m.seed()))
}

func (m *machine) String() string {
	return fmt.Sprintf("[PC: 0x%03X, SP: %d, I: 0x%03X]", m.pc, m.sp, m.i)
}

// loadRom copies the program into memory at 0x200. Nothing is written when
// the rom is rejected.
func (m *machine) loadRom(rom []byte) error {
	if len(rom) == 0 {
		return errRomEmpty
	}
	if len(rom) > maxRomSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", errRomTooLarge, len(rom), maxRomSize)
	}

	copy(m.memory[programStart:], rom)
	return nil
}

func (m *machine) readRomFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening rom file '%s': %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	// read one byte past the limit so oversized files are detected without
	// loading all of them
	rom, err := io.ReadAll(io.LimitReader(f, maxRomSize+1))
	if err != nil {
		return fmt.Errorf("reading rom file '%s': %w", path, err)
	}

	if err := m.loadRom(rom); err != nil {
		return fmt.Errorf("loading rom file '%s': %w", path, err)
	}
	return nil
}

func (m *machine) read(addr uint16) byte {
	return m.memory[addr%memorySize]
}

func (m *machine) write(addr uint16, b byte) {
	m.memory[addr%memorySize] = b
}

// push stores a return address. A 17th nested push silently overwrites
// slot 0.
func (m *machine) push(addr uint16) {
	m.stack[m.sp] = addr
	m.sp = (m.sp + 1) % stackDepth
}

func (m *machine) pop() uint16 {
	m.sp = (m.sp + stackDepth - 1) % stackDepth
	return m.stack[m.sp]
}

func (m *machine) pressKey(key uint8) {
	m.keys[key%keyCount] = true
}

func (m *machine) releaseKey(key uint8) {
	m.keys[key%keyCount] = false
}

func (m *machine) pixel(x, y int) bool {
	return m.display[y*displayWidth+x]
}

// consumeDraw reports whether the display changed and clears the flag.
func (m *machine) consumeDraw() bool {
	draw := m.drawFlag
	m.drawFlag = false
	return draw
}

func (m *machine) randomByte() byte {
	return byte(m.random.Intn(256))
}
