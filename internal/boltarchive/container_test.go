package boltarchive

import (
	"bytes"
	"errors"
	"testing"
)

func TestLocateMagicUppercasePreferred(t *testing.T) {
	buf := append([]byte{0xDE, 0xAD, 0xBE, 0xEF}, []byte("BOLT")...)
	base, err := locateMagic(buf)
	if err != nil {
		t.Fatal(err)
	}
	if base != 4 {
		t.Fatalf("got base %d, want 4", base)
	}
}

func TestLocateMagicLowercaseOnly(t *testing.T) {
	buf := append(bytes.Repeat([]byte{0}, 9), []byte("bolt")...)
	base, err := locateMagic(buf)
	if err != nil {
		t.Fatal(err)
	}
	if base != 9 {
		t.Fatalf("got base %d, want 9", base)
	}
}

func TestLocateMagicUppercasePriorityOverEarlierLowercase(t *testing.T) {
	// lowercase appears first in the buffer, but uppercase still wins.
	buf := append([]byte("bolt"), []byte("xxxxBOLT")...)
	base, err := locateMagic(buf)
	if err != nil {
		t.Fatal(err)
	}
	if base != 8 {
		t.Fatalf("got base %d, want 8 (uppercase hit)", base)
	}
}

func TestLocateMagicNone(t *testing.T) {
	_, err := locateMagic([]byte{1, 2, 3, 4})
	if !errors.Is(err, ErrNoMagic) {
		t.Fatalf("got %v, want ErrNoMagic", err)
	}
}

func TestDecodeHeaderDefaultZeroCountMeans256(t *testing.T) {
	buf := make([]byte, 4+defaultHeaderTimestampSize+1+4)
	// count byte at [4+7] = 0
	hdr, err := decodeHeader(buf, 0, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if hdr.NumEntries != 256 {
		t.Fatalf("got %d entries, want 256", hdr.NumEntries)
	}
}

func TestDecodeHeaderXboxCountIsLiteral(t *testing.T) {
	buf := make([]byte, 4+xboxHeaderTimestampSize+2+4)
	hdr, err := decodeHeader(buf, 0, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if hdr.NumEntries != 0 {
		t.Fatalf("got %d entries, want 0 (xbox count is literal, no 256 substitution)", hdr.NumEntries)
	}
}

func TestDecodeEntryClassification(t *testing.T) {
	buf := make([]byte, entryRecordSize)
	buf[3] = 5 // file_type
	// file_hash (last 4 bytes) left zero => directory
	e, err := decodeEntry(buf, 0, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if !e.isDirectory() {
		t.Fatal("expected a directory entry when file_hash == 0")
	}
	if e.childCount(false) != 5 {
		t.Fatalf("got childCount %d, want 5", e.childCount(false))
	}
}

func TestEntryZeroFileTypeMeans256Children(t *testing.T) {
	buf := make([]byte, entryRecordSize)
	e, err := decodeEntry(buf, 0, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if e.childCount(false) != 256 {
		t.Fatalf("got %d, want 256", e.childCount(false))
	}
}

func TestXboxChildCountNoSubstitution(t *testing.T) {
	buf := make([]byte, entryRecordSize)
	e, err := decodeEntry(buf, 0, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if e.childCount(true) != 0 {
		t.Fatalf("got %d, want 0 (xbox never substitutes 256 for zero)", e.childCount(true))
	}
}
