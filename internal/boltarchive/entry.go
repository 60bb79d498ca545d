package boltarchive

import (
	"encoding/binary"
	"fmt"
)

const entryRecordSize = 16

// entry is a decoded 16-byte entry record. Per the format's classification
// invariant, an entry is a directory iff FileHash == 0.
type entry struct {
	Flags            uint8
	Unk1             uint8
	Unk2             uint8
	FileType         uint8
	UncompressedSize uint32
	DataOffset       uint32
	FileHash         uint32
}

const flagUncompressed = 0x08

func (e entry) isUncompressed() bool { return e.Flags&flagUncompressed != 0 }
func (e entry) isDirectory() bool    { return e.FileHash == 0 }

// childCount returns the number of child entries for a directory entry.
// Xbox packs a 16-bit count across unk_2 and file_type with no implicit
// substitution; every other layout uses file_type alone, where 0 means 256.
func (e entry) childCount(xbox bool) int {
	if xbox {
		return int(e.Unk2)<<8 | int(e.FileType)
	}
	n := int(e.FileType)
	if n == 0 {
		n = 256
	}
	return n
}

func byteOrder(bigEndian bool) binary.ByteOrder {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// decodeEntry reads the 16-byte record at bolt-base-relative offset
// relOffset, honouring bigEndian for the three u32 fields. This is a
// direct byte-offset load, not a reinterpreted struct pointer, per the
// format's documented redesign note against in-place pointer casts.
func decodeEntry(buf []byte, base int, relOffset uint32, bigEndian bool) (entry, error) {
	off := base + int(relOffset)
	if off < 0 || off+entryRecordSize > len(buf) {
		return entry{}, fmt.Errorf("%w: entry record at BOLT+%#x", ErrTruncatedInput, relOffset)
	}
	rec := buf[off : off+entryRecordSize]
	order := byteOrder(bigEndian)
	return entry{
		Flags:            rec[0],
		Unk1:             rec[1],
		Unk2:             rec[2],
		FileType:         rec[3],
		UncompressedSize: order.Uint32(rec[4:8]),
		DataOffset:       order.Uint32(rec[8:12]),
		FileHash:         order.Uint32(rec[12:16]),
	}, nil
}

// header describes the fixed record at the bolt base after the magic,
// up to (and including the count of) the root entry table.
type header struct {
	NumEntries    int
	EntriesOffset uint32 // bolt-base-relative offset of the root entry table
}

const (
	defaultHeaderTimestampSize = 7 // hour,minute,second,millisecond,month,day,year
	xboxHeaderTimestampSize    = 6 // hour,minute,second,month,day,year
	magicSize                  = 4
)

// decodeHeader reads the archive header at the bolt base. The Xbox layout's
// 2-byte entry count is always little-endian, independent of bigEndian,
// which only governs the entry records' u32 fields (and, for non-Xbox
// layouts, nothing in the header itself: its entry count is a single byte).
func decodeHeader(buf []byte, base int, xbox bool, bigEndian bool) (header, error) {
	if xbox {
		countOff := base + magicSize + xboxHeaderTimestampSize
		if countOff+2 > len(buf) {
			return header{}, fmt.Errorf("%w: xbox header truncated", ErrTruncatedInput)
		}
		count := binary.LittleEndian.Uint16(buf[countOff : countOff+2])
		entriesOffset := uint32(magicSize + xboxHeaderTimestampSize + 2 + 4) // + entry count + end_offset
		return header{NumEntries: int(count), EntriesOffset: entriesOffset}, nil
	}

	countOff := base + magicSize + defaultHeaderTimestampSize
	if countOff+1 > len(buf) {
		return header{}, fmt.Errorf("%w: header truncated", ErrTruncatedInput)
	}
	count := int(buf[countOff])
	if count == 0 {
		count = 256
	}
	entriesOffset := uint32(magicSize + defaultHeaderTimestampSize + 1 + 4) // + count byte + end_offset
	return header{NumEntries: count, EntriesOffset: entriesOffset}, nil
}
