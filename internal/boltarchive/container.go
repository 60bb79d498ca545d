package boltarchive

import "bytes"

var (
	magicUpper = []byte("BOLT")
	magicLower = []byte("bolt")
)

// locateMagic scans buf for the archive magic, uppercase "BOLT" tried
// before lowercase "bolt", and returns the absolute offset of the first
// hit. It does not validate anything past the four magic bytes; a
// malformed header past this point surfaces later as a decode error.
func locateMagic(buf []byte) (int, error) {
	if i := bytes.Index(buf, magicUpper); i >= 0 {
		return i, nil
	}
	if i := bytes.Index(buf, magicLower); i >= 0 {
		return i, nil
	}
	return 0, ErrNoMagic
}
