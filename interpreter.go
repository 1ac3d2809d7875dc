package main

import (
	"github.com/retroenv/retrogolib/log"
)

// reference: http://devernay.free.fr/hacks/chip8/C8TECH10.HTM

// status is the outcome of a single tick.
type status uint8

const (
	statusOK status = iota
	// statusWaitKey means FX0A found no pressed key. The program counter
	// points at the same FX0A again so the next tick polls once more.
	statusWaitKey
	// statusUnknown means the opcode was not executed.
	statusUnknown
)

// interpreter executes instructions against a machine. It carries no state
// of the program itself, everything lives in the machine passed to tick.
type interpreter struct {
	logger *log.Logger

	// debug traces every executed instruction.
	debug bool
}

func newInterpreter(logger *log.Logger, debug bool) *interpreter {
	return &interpreter{
		logger: logger,
		debug:  debug,
	}
}

// fetch reads the opcode at the program counter.
//
// To demonstrate how this works we will be using opcode `0xA2F0`.
// The following:
// memory[pc]     == 0xA2
// memory[pc + 1] == 0xF0
//
//	   0xA2   0xA2 << 8 = 0xA200   HEX
//	10100010   1010001000000000     BIN
//
//	1010001000000000   // 0xA200
//	|      11110000    // 0xF0 (0x00F0)
//	------------------
//	1010001011110000    // 0xA2F0
func (in *interpreter) fetch(m *machine) uint16 {
	first := uint16(m.read(m.pc)) << 8
	second := uint16(m.read(m.pc + 1))
	return first | second
}

// tick performs one fetch-decode-execute cycle followed by the timer step.
// The program counter is advanced before the instruction runs.
func (in *interpreter) tick(m *machine) status {
	addr := m.pc
	ins := decode(in.fetch(m))
	m.pc += 2

	if in.debug {
		in.logger.Debug("Executing",
			log.Hex("pc", addr),
			log.Hex("opcode", ins.opcode),
			log.String("instruction", ins.String()),
		)
	}

	st := in.execute(m, ins)
	if st == statusWaitKey {
		m.pc = addr
	}

	if m.delayTimer > 0 {
		m.delayTimer--
	}
	// the sound timer counts down but there is no buzzer
	if m.soundTimer > 0 {
		m.soundTimer--
	}
	return st
}

// execute dispatches a decoded instruction.
// VX == m.v[x]
// VY == m.v[y]
// VF == m.v[0xF]
func (in *interpreter) execute(m *machine, ins instruction) status {
	switch ins.kind {
	case kindCls:
		in.cls(m)
	case kindRet:
		in.ret(m)
	case kindJump:
		in.jump(m, ins.nnn)
	case kindCall:
		in.call(m, ins.nnn)
	case kindSkipEqByte:
		in.skipIf(m, m.v[ins.x] == ins.kk)
	case kindSkipNeByte:
		in.skipIf(m, m.v[ins.x] != ins.kk)
	case kindSkipEqReg:
		in.skipIf(m, m.v[ins.x] == m.v[ins.y])
	case kindSkipNeReg:
		in.skipIf(m, m.v[ins.x] != m.v[ins.y])
	case kindLoadByte:
		m.v[ins.x] = ins.kk
	case kindAddByte:
		// carry flag is not changed
		m.v[ins.x] += ins.kk
	case kindLoadReg:
		m.v[ins.x] = m.v[ins.y]
	case kindOr:
		m.v[ins.x] |= m.v[ins.y]
	case kindAnd:
		m.v[ins.x] &= m.v[ins.y]
	case kindXor:
		m.v[ins.x] ^= m.v[ins.y]
	case kindAddReg:
		in.add(m, ins.x, ins.y)
	case kindSub:
		in.sub(m, ins.x, ins.y)
	case kindSubN:
		in.subYX(m, ins.x, ins.y)
	case kindShiftRight:
		in.shiftr(m, ins.x, ins.y)
	case kindShiftLeft:
		in.shiftl(m, ins.x, ins.y)
	case kindLoadIndex:
		m.i = ins.nnn
	case kindJumpV0:
		in.jump(m, ins.nnn+uint16(m.v[0]))
	case kindRandom:
		m.v[ins.x] = m.randomByte() & ins.kk
	case kindDraw:
		in.draw(m, ins.x, ins.y, ins.n)
	case kindSkipKey:
		in.skipIf(m, m.keys[m.v[ins.x]%keyCount])
	case kindSkipNotKey:
		in.skipIf(m, !m.keys[m.v[ins.x]%keyCount])
	case kindLoadDelay:
		m.v[ins.x] = m.delayTimer
	case kindWaitKey:
		return in.loadXKey(m, ins.x)
	case kindSetDelay:
		m.delayTimer = m.v[ins.x]
	case kindSetSound:
		m.soundTimer = m.v[ins.x]
	case kindAddIndex:
		in.addIX(m, ins.x)
	case kindLoadFont:
		// Characters 0-F (in hexadecimal) are represented by a 4x5 font.
		m.i = uint16(m.v[ins.x]) * glyphSize
	case kindBCD:
		in.bcd(m, ins.x)
	case kindRegDump:
		in.regDump(m, ins.x)
	case kindRegLoad:
		in.regLoad(m, ins.x)
	default:
		// SYS calls native RCA 1802 code and ends up here as well.
		// https://en.wikipedia.org/wiki/RCA_1802
		in.logger.Warn("Unknown operation",
			log.Hex("opcode", ins.opcode),
			log.String("instruction", ins.String()),
			log.String("state", m.String()),
		)
		return statusUnknown
	}
	return statusOK
}

// cls clears the screen.
func (in *interpreter) cls(m *machine) {
	m.display = [displayWidth * displayHeight]bool{}
	m.drawFlag = true
}

// ret returns from a subroutine.
func (in *interpreter) ret(m *machine) {
	m.pc = m.pop()
}

// jump jumps to address.
func (in *interpreter) jump(m *machine, addr uint16) {
	m.pc = addr
}

// call calls a subroutine at address. The stack wraps after 16 nested calls.
func (in *interpreter) call(m *machine, addr uint16) {
	m.push(m.pc)
	m.pc = addr
}

// skipIf skips the next instruction if cond holds.
// (Usually the next instruction is a jump to skip a code block)
func (in *interpreter) skipIf(m *machine, cond bool) {
	if cond {
		m.pc += 2
	}
}

// add adds VY to VX. VF is set to 1 when there's a carry, and to 0 when there isn't.
func (in *interpreter) add(m *machine, x, y byte) {
	sum := uint16(m.v[x]) + uint16(m.v[y])
	m.v[0xF] = bit(sum > 0xFF)
	m.v[x] = byte(sum)
}

// sub VY is subtracted from VX. VF is set to 0 when there's a borrow, and 1 when there isn't.
//
// In the ALU operations VF is written before VX. With X = F the
// subtraction then runs on the flag.
func (in *interpreter) sub(m *machine, x, y byte) {
	m.v[0xF] = bit(m.v[x] > m.v[y])
	m.v[x] -= m.v[y]
}

// subYX sets VX to VY minus VX. VF is set to 0 when there's a borrow, and 1 when there isn't.
func (in *interpreter) subYX(m *machine, x, y byte) {
	m.v[0xF] = bit(m.v[y] > m.v[x])
	m.v[x] = m.v[y] - m.v[x]
}

// shiftr copies VY into VX, stores the least significant bit in VF and then
// shifts VX to the right by 1.
func (in *interpreter) shiftr(m *machine, x, y byte) {
	m.v[x] = m.v[y]
	m.v[0xF] = m.v[x] & 0x01
	m.v[x] >>= 1
}

// shiftl copies VY into VX, stores the most significant bit in VF and then
// shifts VX to the left by 1.
func (in *interpreter) shiftl(m *machine, x, y byte) {
	m.v[x] = m.v[y]
	m.v[0xF] = m.v[x] >> 7
	m.v[x] <<= 1
}

// draw draws a sprite at coordinate (VX, VY) that has a width of 8 pixels and a height of N pixels.
// Each row of 8 pixels is read as bit-coded starting from memory location I (index register);
// I value doesn’t change after the execution of this instruction. VF is set
// to 1 if any screen pixels are flipped from set to unset when the sprite is drawn, and
// to 0 if that doesn’t happen.
//
// Only the starting position wraps around the screen, rows and columns
// running past the edges are clipped.
func (in *interpreter) draw(m *machine, x, y, height byte) {
	xpos := int(m.v[x]) % displayWidth
	ypos := int(m.v[y]) % displayHeight

	m.v[0xF] = 0
	m.drawFlag = true

	for yline := 0; yline < int(height); yline++ {
		row := ypos + yline
		if row >= displayHeight {
			break
		}
		sprite := m.read(m.i + uint16(yline))
		for xline := 0; xline < 8; xline++ {
			col := xpos + xline
			if col >= displayWidth {
				break
			}
			if sprite&(0x80>>xline) == 0 {
				continue
			}
			idx := row*displayWidth + col
			if m.display[idx] {
				m.v[0xF] = 1
			}
			m.display[idx] = !m.display[idx]
		}
	}
}

// loadXKey stores the lowest pressed key in VX and skips the next
// instruction. Without a pressed key the instruction is repeated on the next
// tick, so a key press is never missed and no instruction is lost.
func (in *interpreter) loadXKey(m *machine, x byte) status {
	for key, pressed := range m.keys {
		if pressed {
			m.v[x] = byte(key)
			m.pc += 2
			return statusOK
		}
	}
	return statusWaitKey
}

// addIX adds VX to I. VF is set to 1 when there is a range overflow (I+VX>0xFFF),
// and to 0 when there isn't. I itself is not masked.
func (in *interpreter) addIX(m *machine, x byte) {
	m.i += uint16(m.v[x])
	m.v[0xF] = bit(m.i > 0xFFF)
}

// bcd stores the binary-coded decimal representation of VX, with the most significant
// of three digits at the address in I, the middle digit at I plus 1, and the least significant digit at
// I plus 2.
func (in *interpreter) bcd(m *machine, x byte) {
	value := m.v[x]
	m.write(m.i, value/100)
	m.write(m.i+1, (value/10)%10)
	m.write(m.i+2, value%10)
}

// regDump stores V0 to VX (including VX) in memory starting at address I.
// I itself is left unmodified.
func (in *interpreter) regDump(m *machine, x byte) {
	for i := uint16(0); i <= uint16(x); i++ {
		m.write(m.i+i, m.v[i])
	}
}

// regLoad fills V0 to VX (including VX) with values from memory starting at address I.
// I itself is left unmodified.
func (in *interpreter) regLoad(m *machine, x byte) {
	for i := uint16(0); i <= uint16(x); i++ {
		m.v[i] = m.read(m.i + i)
	}
}

func bit(b bool) byte {
	if b {
		return 1
	}
	return 0
}
