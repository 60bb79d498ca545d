package boltarchive

import "fmt"

// decompressN64 implements the opcode-driven LZ decoder shared by the N64
// (and GBA/z64) and Xbox platform algorithms. Three carry registers —
// opCount, extOffset, extRun — accumulate across consecutive opcode bytes
// and reset to zero immediately after any emission.
func decompressN64(c *cursor, expectedSize uint32) ([]byte, error) {
	result := make([]byte, 0, expectedSize)
	var opCount, extOffset, extRun uint32

	for uint32(len(result)) < expectedSize {
		b, err := c.readU8()
		if err != nil {
			return result, err
		}
		opCount++

		if b&0x80 != 0 {
			switch {
			case b&0x40 != 0: // offset extension
				extOffset = (extOffset << 6) | uint32(b&0x3F)
			case b&0x20 != 0: // run extension
				extRun = (extRun << 5) | uint32(b&0x1F)
			case b&0x10 != 0: // split extension
				extOffset = (extOffset << 2) | uint32((b&0x0C)>>2)
				extRun = (extRun << 2) | uint32(b&0x03)
			default: // literal run
				runLength := ((extRun << 4) | uint32(b&0x0F)) + 1
				for i := uint32(0); i < runLength; i++ {
					lb, err := c.readU8()
					if err != nil {
						return result, err
					}
					result = append(result, lb)
				}
				opCount, extOffset, extRun = 0, 0, 0
			}
			continue
		}

		// lookback copy
		if len(result) == 0 {
			return result, fmt.Errorf("%w: lookback on empty output", ErrLookbackUnderflow)
		}
		back := ((extOffset << 4) | uint32(b&0x0F)) + 1
		run := ((extRun << 3) | uint32(b>>4)) + opCount + 1
		if uint64(back) > uint64(len(result)) {
			return result, fmt.Errorf("%w: back=%d output_len=%d", ErrLookbackUnderflow, back, len(result))
		}
		start := len(result) - int(back)
		for i := uint32(0); i < run; i++ {
			result = append(result, result[start+int(i)])
		}
		opCount, extOffset, extRun = 0, 0, 0
	}
	return result, nil
}
