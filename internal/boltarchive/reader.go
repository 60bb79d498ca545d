// Package boltarchive decodes BOLT proprietary game-archive containers:
// locating the magic, decoding the fixed-layout header and 16-byte entry
// records, walking the implicit directory tree, and running the
// platform-specific decompressor over each file entry's data.
package boltarchive

import (
	"fmt"
	"log/slog"

	"github.com/heinermann/BOLTextract/internal/extguess"
)

// Sink receives the extracted tree as the walker descends it. Paths are
// the synthetic "{:03X}"-per-level paths described by the format; Sink
// implementations decide how (or whether) to persist them.
type Sink interface {
	// Dir is called once per directory entry, before any of its children.
	Dir(path string) error
	// File is called once per file entry with its final decoded bytes
	// (verbatim copy for uncompressed entries, decompressor output
	// otherwise). path carries no extension; ext is the guesser's
	// suffix for the Sink to append, since the guess depends on data
	// the Sink does not otherwise see.
	File(path, ext string, data []byte) error
}

// Reader holds a loaded archive buffer and the selectors needed to parse
// it: the algorithm (which implies header layout and decompressor) and
// the endianness of multi-byte entry fields.
type Reader struct {
	buf       []byte
	base      int // absolute offset of the first magic byte
	algo      Algorithm
	bigEndian bool
	log       *slog.Logger
}

// Open locates the BOLT/bolt magic in buf and returns a Reader positioned
// at it. algo and bigEndian must already be resolved by the caller (CLI
// flag or extension inference); Open does not guess them.
func Open(buf []byte, algo Algorithm, bigEndian bool, log *slog.Logger) (*Reader, error) {
	if algo == AlgorithmUnknown {
		return nil, ErrUnknownAlgorithm
	}
	base, err := locateMagic(buf)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reader{buf: buf, base: base, algo: algo, bigEndian: bigEndian, log: log}, nil
}

// Base returns the absolute offset of the magic bytes this Reader located.
func (r *Reader) Base() int { return r.base }

// Extract walks the archive depth-first, left-to-right, and delivers
// every directory and file entry to sink. Per-file faults (truncated
// input, lookback underflow) are logged and confined to that entry; the
// walk continues with the next sibling. A nil return means the container
// itself was successfully parsed, regardless of any per-file faults.
func (r *Reader) Extract(sink Sink) error {
	hdr, err := decodeHeader(r.buf, r.base, r.algo.isXboxLayout(), r.bigEndian)
	if err != nil {
		return err
	}
	return r.walk("", hdr.EntriesOffset, hdr.NumEntries, sink)
}

// walk decodes numEntries consecutive 16-byte records starting at the
// bolt-base-relative offset tableOffset, dispatching each as a directory
// (recurse) or a file (decompress + sink.File), in index order.
func (r *Reader) walk(parent string, tableOffset uint32, numEntries int, sink Sink) error {
	for i := 0; i < numEntries; i++ {
		relOffset := tableOffset + uint32(i*entryRecordSize)
		e, err := decodeEntry(r.buf, r.base, relOffset, r.bigEndian)
		if err != nil {
			r.log.Warn("bolt entry truncated", "parent", parent, "index", i, "err", err)
			return nil
		}

		childPath := fmt.Sprintf("%s/%03X", parent, i)

		if e.isDirectory() {
			if err := sink.Dir(childPath); err != nil {
				return err
			}
			n := e.childCount(r.algo.isXboxLayout())
			if err := r.walk(childPath, e.DataOffset, n, sink); err != nil {
				return err
			}
			continue
		}

		data, err := r.extractFile(e)
		if err != nil {
			r.log.Warn("bolt file extraction failed", "path", childPath, "index", i,
				"bolt_offset", e.DataOffset, "file_type", e.FileType, "algorithm", r.algo, "err", err)
		}
		if uint32(len(data)) != e.UncompressedSize {
			r.log.Warn("bolt file size mismatch", "path", childPath, "index", i,
				"bolt_offset", e.DataOffset, "file_type", e.FileType, "algorithm", r.algo,
				"expected", e.UncompressedSize, "got", len(data))
		}

		ext := extguess.Guess(data, r.bigEndian)
		if err := sink.File(childPath, ext, data); err != nil {
			return err
		}
	}
	return nil
}

// extractFile returns e's decoded bytes: a verbatim byte-range copy when
// flagUncompressed is set, otherwise the output of the algorithm-specific
// decompressor. A decompressor error is returned alongside whatever partial
// bytes were produced, so the caller can still write partial output per
// the per-file error policy. An uncompressed entry whose byte range lies
// outside the buffer yields nil data with its error.
func (r *Reader) extractFile(e entry) ([]byte, error) {
	if e.isUncompressed() {
		start := r.base + int(e.DataOffset)
		end := start + int(e.UncompressedSize)
		if start < 0 || end > len(r.buf) {
			return nil, fmt.Errorf("%w: uncompressed range at BOLT+%#x", ErrTruncatedInput, e.DataOffset)
		}
		out := make([]byte, e.UncompressedSize)
		copy(out, r.buf[start:end])
		return out, nil
	}

	c := newCursor(r.buf, r.base)
	c.seekRel(e.DataOffset)

	switch r.algo {
	case AlgorithmCDI:
		return decompressCDI(c, e.UncompressedSize)
	case AlgorithmDOS:
		return decompressDOS(c, e.UncompressedSize)
	case AlgorithmN64, AlgorithmXbox:
		return decompressN64(c, e.UncompressedSize)
	case AlgorithmWIN:
		return decompressWIN(c, e.UncompressedSize)
	default:
		return nil, ErrUnknownAlgorithm
	}
}
