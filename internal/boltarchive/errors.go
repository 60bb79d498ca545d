package boltarchive

import "errors"

// Container-level errors. These halt the run.
var (
	// ErrNoMagic means neither "BOLT" nor "bolt" was found in the buffer.
	ErrNoMagic = errors.New("boltarchive: no BOLT/bolt magic found")

	// ErrUnknownAlgorithm means the caller did not resolve a concrete
	// platform algorithm before asking the reader to extract anything.
	ErrUnknownAlgorithm = errors.New("boltarchive: unknown or unresolved algorithm")
)

// Per-file errors. These are confined to a single entry: the walker logs
// them and continues with the next entry, keeping whatever bytes the
// decompressor produced before the fault.
var (
	// ErrLookbackUnderflow covers a lookback copy whose source position
	// would fall before the start of the output, or on empty output.
	ErrLookbackUnderflow = errors.New("boltarchive: lookback underflow")

	// ErrTruncatedInput covers any read that would run past the end of
	// the loaded byte buffer.
	ErrTruncatedInput = errors.New("boltarchive: truncated input")
)
