package boltarchive

import "strings"

// Algorithm selects the header layout, directory-child-count encoding, and
// decompression engine used throughout an archive. N64 and Xbox share the
// same decompressor (decompressN64) but use different header layouts.
type Algorithm int

const (
	AlgorithmUnknown Algorithm = iota
	AlgorithmCDI
	AlgorithmDOS
	AlgorithmN64
	AlgorithmWIN
	AlgorithmXbox
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmCDI:
		return "cdi"
	case AlgorithmDOS:
		return "dos"
	case AlgorithmN64:
		return "n64"
	case AlgorithmWIN:
		return "win"
	case AlgorithmXbox:
		return "xbox"
	default:
		return "unknown"
	}
}

// algorithmAliases mirrors the CLI mapping table from the original tool:
// gba/z64 fold into n64, msdos folds into dos, windows folds into win.
// "xbox"/"xbe" are accepted too, completing what the original left as an
// enum value with no command-line path to reach it.
var algorithmAliases = map[string]Algorithm{
	"cdi":     AlgorithmCDI,
	"dos":     AlgorithmDOS,
	"msdos":   AlgorithmDOS,
	"n64":     AlgorithmN64,
	"gba":     AlgorithmN64,
	"z64":     AlgorithmN64,
	"win":     AlgorithmWIN,
	"windows": AlgorithmWIN,
	"xbox":    AlgorithmXbox,
	"xbe":     AlgorithmXbox,
}

// ParseAlgorithm resolves a CLI/extension string (case-insensitive, leading
// dot tolerated) to an Algorithm. ok is false for anything unrecognised.
func ParseAlgorithm(s string) (algo Algorithm, ok bool) {
	s = strings.ToLower(strings.TrimPrefix(s, "."))
	algo, ok = algorithmAliases[s]
	return algo, ok
}

// isXboxLayout reports whether the header/entry child-count encoding uses
// the Xbox conventions (2-byte little-endian entry count, (unk2<<8)|file_type
// child count with no implicit 256 substitution for zero).
func (a Algorithm) isXboxLayout() bool {
	return a == AlgorithmXbox
}
