package boltarchive

import (
	"bytes"
	"encoding/binary"
	"testing"
)

type recordingSink struct {
	dirs  []string
	files []string
	data  map[string][]byte
}

func newRecordingSink() *recordingSink {
	return &recordingSink{data: make(map[string][]byte)}
}

func (s *recordingSink) Dir(path string) error {
	s.dirs = append(s.dirs, path)
	return nil
}

func (s *recordingSink) File(path, ext string, data []byte) error {
	s.files = append(s.files, path+ext)
	s.data[path+ext] = data
	return nil
}

// buildArchive assembles a minimal default-layout BOLT buffer with a
// single root-level uncompressed file entry holding the given bytes.
func buildArchive(content []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("BOLT")
	buf.Write(make([]byte, defaultHeaderTimestampSize))
	buf.WriteByte(1) // one root entry
	buf.Write(make([]byte, 4))

	dataOffset := uint32(buf.Len() + entryRecordSize)

	rec := make([]byte, entryRecordSize)
	rec[0] = flagUncompressed
	binary.LittleEndian.PutUint32(rec[4:8], uint32(len(content)))
	binary.LittleEndian.PutUint32(rec[8:12], dataOffset)
	binary.LittleEndian.PutUint32(rec[12:16], 0xDEADBEEF) // nonzero => file
	buf.Write(rec)

	buf.Write(content)
	return buf.Bytes()
}

func TestReaderExtractUncompressedFile(t *testing.T) {
	archive := buildArchive([]byte("ABC"))
	r, err := Open(archive, AlgorithmCDI, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	sink := newRecordingSink()
	if err := r.Extract(sink); err != nil {
		t.Fatal(err)
	}
	if len(sink.files) != 1 {
		t.Fatalf("got %d files, want 1", len(sink.files))
	}
	for _, data := range sink.data {
		if !bytes.Equal(data, []byte("ABC")) {
			t.Fatalf("got %q, want ABC", data)
		}
	}
}

func TestReaderDirectoryIndexPaths(t *testing.T) {
	// A single root directory entry with one child. Zero children isn't
	// expressible for non-Xbox (child count 0 => 256), so 1 keeps the
	// synthetic archive small while still exercising the "{:03X}" path
	// format.
	var buf bytes.Buffer
	buf.WriteString("BOLT")
	buf.Write(make([]byte, defaultHeaderTimestampSize))
	buf.WriteByte(1)
	buf.Write(make([]byte, 4))

	childTableOffset := uint32(buf.Len() + entryRecordSize)

	dirRec := make([]byte, entryRecordSize)
	dirRec[3] = 1 // one child
	binary.LittleEndian.PutUint32(dirRec[8:12], childTableOffset)
	// FileHash left zero => directory
	buf.Write(dirRec)

	childContent := []byte("Z")
	childDataOffset := uint32(buf.Len() + entryRecordSize)
	childRec := make([]byte, entryRecordSize)
	childRec[0] = flagUncompressed
	binary.LittleEndian.PutUint32(childRec[4:8], uint32(len(childContent)))
	binary.LittleEndian.PutUint32(childRec[8:12], childDataOffset)
	binary.LittleEndian.PutUint32(childRec[12:16], 1)
	buf.Write(childRec)
	buf.Write(childContent)

	r, err := Open(buf.Bytes(), AlgorithmCDI, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	sink := newRecordingSink()
	if err := r.Extract(sink); err != nil {
		t.Fatal(err)
	}
	if len(sink.dirs) != 1 || sink.dirs[0] != "/000" {
		t.Fatalf("got dirs %v, want [/000]", sink.dirs)
	}
	if len(sink.files) != 1 || sink.files[0] != "/000/000.txt" {
		t.Fatalf("got files %v, want [/000/000.txt]", sink.files)
	}
}
