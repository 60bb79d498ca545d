package boltarchive

// decompressDOS implements the DOS platform's two-phase opcode decoder.
// Each opcode byte is decoded into a (kind, runLength, payload) triple;
// the emission phase then writes up to the remaining expected size and
// carries any leftover run into the next loop iteration by setting
// skipOpcode, which reuses the already-decoded triple instead of reading
// a fresh opcode byte.
func decompressDOS(c *cursor, expectedSize uint32) ([]byte, error) {
	result := make([]byte, 0, expectedSize)

	var kind int
	var runLength uint32
	var relOffset uint32
	var repeatByte byte
	skipOpcode := false

	for uint32(len(result)) < expectedSize {
		if !skipOpcode {
			b, err := c.readU8()
			if err != nil {
				return result, err
			}
			amount := uint32(b & 0x1F)

			switch b & 0xC0 {
			case 0x00:
				kind = 0
				runLength = 31 - amount

			case 0x40:
				kind = 1
				runLength = 35 - amount
				x, err := c.readU8()
				if err != nil {
					return result, err
				}
				relOffset = 8*uint32(b&0x20) + uint32(x)

			case 0x80:
				kind = 1
				runLength = 4 * (32 - amount)
				if b&0x20 != 0 {
					runLength += 2
				}
				x, err := c.readU8()
				if err != nil {
					return result, err
				}
				relOffset = 2 * uint32(x)

			default: // 0xC0
				kind = 2
				if b&0x20 != 0 {
					runLength = 0
				} else {
					run, err := c.readU8()
					if err != nil {
						return result, err
					}
					if _, err := c.readU8(); err != nil { // discarded
						return result, err
					}
					f, err := c.readU8()
					if err != nil {
						return result, err
					}
					repeatByte = f
					runLength = 4 * (32 - amount + 32*uint32(run))
				}
			}
		}

		var opRunLen uint32
		remaining := expectedSize - uint32(len(result))
		if remaining < runLength {
			skipOpcode = true
			opRunLen = remaining
			runLength -= remaining
		} else {
			opRunLen = runLength
			skipOpcode = false
		}

		var err error
		switch kind {
		case 0:
			for i := uint32(0); i < opRunLen; i++ {
				lb, err := c.readU8()
				if err != nil {
					return result, err
				}
				result = append(result, lb)
			}
		case 1:
			// The lookback run length here is intentionally not clamped
			// to opRunLen; when an opcode is carried, this still reinserts
			// the leftover run-length value, not the reduced remaining
			// size used by the other two kinds.
			result, err = reinsertSelf(result, relOffset, runLength)
			if err != nil {
				return result, err
			}
		case 2:
			for i := uint32(0); i < opRunLen; i++ {
				result = append(result, repeatByte)
			}
		}
	}
	return result, nil
}
