package boltarchive

import "fmt"

// reinsertSelf appends runLength bytes to result, each read one at a time
// from relOffset bytes behind the current (growing) end of result. When
// runLength exceeds relOffset this reads bytes that were themselves just
// appended, producing a repeating pattern rather than a verbatim block
// copy — the RLE-via-lookback idiom shared by all four decompressors.
func reinsertSelf(result []byte, relOffset, runLength uint32) ([]byte, error) {
	if relOffset == 0 || uint64(relOffset) > uint64(len(result)) {
		return result, fmt.Errorf("%w: back=%d output_len=%d", ErrLookbackUnderflow, relOffset, len(result))
	}
	start := len(result) - int(relOffset)
	for i := uint32(0); i < runLength; i++ {
		result = append(result, result[start+int(i)])
	}
	return result, nil
}

// stride2Copy implements the CDI decoder's "reverse" lookback primitive
// (opcodes 0xC-0xF): the read position advances by 2 per emitted byte
// instead of 1, so consecutive bytes come from -(back+1), -(back+3),
// -(back+5), ... relative to the output length at each step.
func stride2Copy(result []byte, startBack, runLength uint32) ([]byte, error) {
	back := startBack
	for i := uint32(0); i < runLength; i++ {
		back++
		if back == 0 || uint64(back) > uint64(len(result)) {
			return result, fmt.Errorf("%w: back=%d output_len=%d", ErrLookbackUnderflow, back, len(result))
		}
		result = append(result, result[len(result)-int(back)])
		back++
	}
	return result, nil
}
