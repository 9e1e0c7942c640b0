package table

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	tbl := buildTestTable(t)
	path := filepath.Join(t.TempDir(), "table.bin")
	if err := tbl.Save(path); err != nil {
		t.Fatalf("saving: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if loaded.NumEntries() != tbl.NumEntries() {
		t.Errorf("entries = %d, want %d", loaded.NumEntries(), tbl.NumEntries())
	}
	if loaded.DictChecksum() != 0xfeed {
		t.Errorf("dict checksum = %#x", loaded.DictChecksum())
	}
	if got := drainTexts(t, loaded, loaded.QueryWords(0)); len(got) != 2 || got[0] != "屌" {
		t.Errorf("words after reload: %v", got)
	}
	g := segment(t, "diuneiloumou")
	result, ok := loaded.Query(g, 0)
	if !ok {
		t.Fatal("query against reloaded table failed")
	}
	texts := resultTexts(t, loaded, g, result)
	if len(texts[12]) != 1 || texts[12][0] != "屌你老母" {
		t.Errorf("tail entries after reload: %v", texts[12])
	}
}

func TestLoadRefusesOldFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.bin")
	var header [formatMaxLength]byte
	copy(header[:], "Rime::Table/3.0")
	if err := os.WriteFile(path, header[:], 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrFormat) {
		t.Errorf("loading 3.0 image: %v, want ErrFormat", err)
	}
}

func TestLoadRefusesForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.bin")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, 64), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrFormat) {
		t.Errorf("loading junk: %v, want ErrFormat", err)
	}
}

func TestLoadDetectsCorruption(t *testing.T) {
	tbl := buildTestTable(t)
	path := filepath.Join(t.TempDir(), "table.bin")
	if err := tbl.Save(path); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// flip one byte inside the msgpack body
	raw[len(raw)-1] ^= 0xff
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("corrupted image loaded without error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.bin")); err == nil {
		t.Error("missing file loaded without error")
	}
}

func TestFormatHeaderLayout(t *testing.T) {
	tbl := buildTestTable(t)
	path := filepath.Join(t.TempDir(), "table.bin")
	if err := tbl.Save(path); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte(FormatLatest)) {
		t.Errorf("image does not start with %q", FormatLatest)
	}
	size := binary.LittleEndian.Uint32(raw[formatMaxLength+4 : formatMaxLength+8])
	if int(size) != len(raw)-formatMaxLength-8 {
		t.Errorf("body size field %d does not match payload %d", size, len(raw)-formatMaxLength-8)
	}
}
