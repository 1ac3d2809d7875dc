package main

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// kind tags a decoded instruction.
type kind uint8

const (
	kindUnknown kind = iota
	kindSys          // 0NNN
	kindCls          // 00E0
	kindRet          // 00EE
	kindJump         // 1NNN
	kindCall         // 2NNN
	kindSkipEqByte   // 3XNN
	kindSkipNeByte   // 4XNN
	kindSkipEqReg    // 5XY0
	kindLoadByte     // 6XNN
	kindAddByte      // 7XNN
	kindLoadReg      // 8XY0
	kindOr           // 8XY1
	kindAnd          // 8XY2
	kindXor          // 8XY3
	kindAddReg       // 8XY4
	kindSub          // 8XY5
	kindShiftRight   // 8XY6
	kindSubN         // 8XY7
	kindShiftLeft    // 8XYE
	kindSkipNeReg    // 9XY0
	kindLoadIndex    // ANNN
	kindJumpV0       // BNNN
	kindRandom       // CXNN
	kindDraw         // DXYN
	kindSkipKey      // EX9E
	kindSkipNotKey   // EXA1
	kindLoadDelay    // FX07
	kindWaitKey      // FX0A
	kindSetDelay     // FX15
	kindSetSound     // FX18
	kindAddIndex     // FX1E
	kindLoadFont     // FX29
	kindBCD          // FX33
	kindRegDump      // FX55
	kindRegLoad      // FX65
)

// mnemonics maps every kind to the instruction definition used for traces.
var mnemonics = map[kind]*chip8.Instruction{
	kindCls:        chip8.ClsInst,
	kindRet:        chip8.RetInst,
	kindJump:       chip8.JpInst,
	kindCall:       chip8.CallInst,
	kindSkipEqByte: chip8.SeInst,
	kindSkipNeByte: chip8.SneInst,
	kindSkipEqReg:  chip8.SeInst,
	kindLoadByte:   chip8.LdInst,
	kindAddByte:    chip8.AddInst,
	kindLoadReg:    chip8.LdInst,
	kindOr:         chip8.OrInst,
	kindAnd:        chip8.AndInst,
	kindXor:        chip8.XorInst,
	kindAddReg:     chip8.AddInst,
	kindSub:        chip8.SubInst,
	kindShiftRight: chip8.ShrInst,
	kindSubN:       chip8.SubnInst,
	kindShiftLeft:  chip8.ShlInst,
	kindSkipNeReg:  chip8.SneInst,
	kindLoadIndex:  chip8.LdInst,
	kindJumpV0:     chip8.JpInst,
	kindRandom:     chip8.RndInst,
	kindDraw:       chip8.DrwInst,
	kindSkipKey:    chip8.SkpInst,
	kindSkipNotKey: chip8.SknpInst,
	kindLoadDelay:  chip8.LdInst,
	kindWaitKey:    chip8.LdInst,
	kindSetDelay:   chip8.LdInst,
	kindSetSound:   chip8.LdInst,
	kindAddIndex:   chip8.AddInst,
	kindLoadFont:   chip8.LdInst,
	kindBCD:        chip8.LdInst,
	kindRegDump:    chip8.LdInst,
	kindRegLoad:    chip8.LdInst,
}

// instruction is a decoded opcode. Only the fields its kind uses are
// meaningful, the rest are still extracted.
type instruction struct {
	kind   kind
	opcode uint16

	nnn uint16 // lowest 12 bits
	n   byte   // lowest 4 bits
	x   byte   // bits 8-11
	y   byte   // bits 4-7
	kk  byte   // lowest 8 bits
}

// decode splits the opcode into its fields and selects the instruction by
// the top nibble. Families 0, 8, E and F select further on the low byte or
// low nibble. Families 5 and 9 ignore the low nibble.
//
// To demonstrate the fields we will be using opcode `0xD12F`.
//
//	D        1        2        F
//	1101     0001     0010     1111
//	family   x        y        n
//	         |------- nnn -------|
//	                  |-- kk ---|
func decode(opcode uint16) instruction {
	ins := instruction{
		opcode: opcode,
		nnn:    opcode & 0x0FFF,
		n:      byte(opcode & 0x000F),
		x:      byte((opcode & 0x0F00) >> 8),
		y:      byte((opcode & 0x00F0) >> 4),
		kk:     byte(opcode & 0x00FF),
	}

	switch opcode >> 12 {
	case 0x0:
		switch opcode {
		case 0x00E0:
			ins.kind = kindCls
		case 0x00EE:
			ins.kind = kindRet
		default:
			ins.kind = kindSys
		}
	case 0x1:
		ins.kind = kindJump
	case 0x2:
		ins.kind = kindCall
	case 0x3:
		ins.kind = kindSkipEqByte
	case 0x4:
		ins.kind = kindSkipNeByte
	case 0x5:
		ins.kind = kindSkipEqReg
	case 0x6:
		ins.kind = kindLoadByte
	case 0x7:
		ins.kind = kindAddByte
	case 0x8:
		ins.kind = decodeALU(ins.n)
	case 0x9:
		ins.kind = kindSkipNeReg
	case 0xA:
		ins.kind = kindLoadIndex
	case 0xB:
		ins.kind = kindJumpV0
	case 0xC:
		ins.kind = kindRandom
	case 0xD:
		ins.kind = kindDraw
	case 0xE:
		switch ins.kk {
		case 0x9E:
			ins.kind = kindSkipKey
		case 0xA1:
			ins.kind = kindSkipNotKey
		}
	case 0xF:
		ins.kind = decodeMisc(ins.kk)
	}
	return ins
}

func decodeALU(n byte) kind {
	switch n {
	case 0x0:
		return kindLoadReg
	case 0x1:
		return kindOr
	case 0x2:
		return kindAnd
	case 0x3:
		return kindXor
	case 0x4:
		return kindAddReg
	case 0x5:
		return kindSub
	case 0x6:
		return kindShiftRight
	case 0x7:
		return kindSubN
	case 0xE:
		return kindShiftLeft
	default:
		return kindUnknown
	}
}

func decodeMisc(kk byte) kind {
	switch kk {
	case 0x07:
		return kindLoadDelay
	case 0x0A:
		return kindWaitKey
	case 0x15:
		return kindSetDelay
	case 0x18:
		return kindSetSound
	case 0x1E:
		return kindAddIndex
	case 0x29:
		return kindLoadFont
	case 0x33:
		return kindBCD
	case 0x55:
		return kindRegDump
	case 0x65:
		return kindRegLoad
	default:
		return kindUnknown
	}
}

// name returns the mnemonic of the instruction.
func (ins instruction) name() string {
	switch ins.kind {
	case kindUnknown:
		return "???"
	case kindSys:
		return "sys"
	}
	return mnemonics[ins.kind].Name
}

// operands renders the operands the way common CHIP-8 assemblers write them.
func (ins instruction) operands() string {
	switch ins.kind {
	case kindSys, kindJump, kindCall:
		return fmt.Sprintf("$%03X", ins.nnn)
	case kindSkipEqByte, kindSkipNeByte, kindLoadByte, kindAddByte, kindRandom:
		return fmt.Sprintf("V%X, $%02X", ins.x, ins.kk)
	case kindSkipEqReg, kindSkipNeReg, kindLoadReg, kindOr, kindAnd, kindXor,
		kindAddReg, kindSub, kindShiftRight, kindSubN, kindShiftLeft:
		return fmt.Sprintf("V%X, V%X", ins.x, ins.y)
	case kindLoadIndex:
		return fmt.Sprintf("I, $%03X", ins.nnn)
	case kindJumpV0:
		return fmt.Sprintf("V0, $%03X", ins.nnn)
	case kindDraw:
		return fmt.Sprintf("V%X, V%X, %d", ins.x, ins.y, ins.n)
	case kindSkipKey, kindSkipNotKey:
		return fmt.Sprintf("V%X", ins.x)
	case kindLoadDelay:
		return fmt.Sprintf("V%X, DT", ins.x)
	case kindWaitKey:
		return fmt.Sprintf("V%X, K", ins.x)
	case kindSetDelay:
		return fmt.Sprintf("DT, V%X", ins.x)
	case kindSetSound:
		return fmt.Sprintf("ST, V%X", ins.x)
	case kindAddIndex:
		return fmt.Sprintf("I, V%X", ins.x)
	case kindLoadFont:
		return fmt.Sprintf("F, V%X", ins.x)
	case kindBCD:
		return fmt.Sprintf("B, V%X", ins.x)
	case kindRegDump:
		return fmt.Sprintf("[I], V%X", ins.x)
	case kindRegLoad:
		return fmt.Sprintf("V%X, [I]", ins.x)
	default:
		return ""
	}
}

func (ins instruction) String() string {
	if ops := ins.operands(); ops != "" {
		return ins.name() + " " + ops
	}
	return ins.name()
}
