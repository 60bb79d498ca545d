package boltarchive

import "fmt"

// decompressWIN implements the Windows platform's nibble-switched opcode
// decoder. Opcode 0x00 is the only explicit terminator among the four
// decoders; every other opcode keeps running until the output reaches
// expectedSize.
func decompressWIN(c *cursor, expectedSize uint32) ([]byte, error) {
	result := make([]byte, 0, expectedSize)

	for uint32(len(result)) < expectedSize {
		b, err := c.readU8()
		if err != nil {
			return result, err
		}

		switch b >> 4 {
		case 0x0:
			if b != 0 {
				for i := 0; i < int(b); i++ {
					lb, err := c.readU8()
					if err != nil {
						return result, err
					}
					result = append(result, lb)
				}
				continue
			}
			return result, nil // terminator; caller warns on size mismatch

		case 0x1:
			back := int(b&0x0F) + 9
			if back > len(result) {
				return result, fmt.Errorf("%w: back=%d output_len=%d", ErrLookbackUnderflow, back, len(result))
			}
			v := result[len(result)-back]
			result = append(result, v, v)

		case 0x2, 0x3:
			x, err := c.readU8()
			if err != nil {
				return result, err
			}
			run := uint32(b&0x0F) + 3
			back := 2*uint32(x) + uint32((b>>4)&1)
			result, err = reinsertSelf(result, back, run)
			if err != nil {
				return result, err
			}

		case 0x4:
			f, err := c.readU8()
			if err != nil {
				return result, err
			}
			run := int(b&0x0F) + 3
			for i := 0; i < run; i++ {
				result = append(result, f)
			}

		case 0x5:
			x, err := c.readU8()
			if err != nil {
				return result, err
			}
			f, err := c.readU8()
			if err != nil {
				return result, err
			}
			run := 4*(16*int(x)+int(b&0x0F)) + 19
			for i := 0; i < run; i++ {
				result = append(result, f)
			}

		case 0x6:
			run := int(b&0x0F) + 2
			for i := 0; i < run; i++ {
				result = append(result, 0)
			}

		case 0x7, 0x8, 0x9, 0xA, 0xB:
			back := int(b) - 103
			if back <= 0 || back > len(result) {
				return result, fmt.Errorf("%w: back=%d output_len=%d", ErrLookbackUnderflow, back, len(result))
			}
			v := result[len(result)-back]
			result = append(result, v, v)

		case 0xC, 0xD, 0xE, 0xF:
			back1 := int((b&0x38)>>3) + 1
			if back1 > len(result) {
				return result, fmt.Errorf("%w: back=%d output_len=%d", ErrLookbackUnderflow, back1, len(result))
			}
			result = append(result, result[len(result)-back1])

			back2 := int(b&0x07) + 2
			if back2 > len(result) {
				return result, fmt.Errorf("%w: back=%d output_len=%d", ErrLookbackUnderflow, back2, len(result))
			}
			result = append(result, result[len(result)-back2])
		}
	}
	return result, nil
}
