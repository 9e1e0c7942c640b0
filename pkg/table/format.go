package table

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// FormatLatest tags table images written by this package.
	FormatLatest = "Rime::Table/4.0"
	formatPrefix = "Rime::Table/"
	// formatLowestCompatible is the oldest image version still readable.
	formatLowestCompatible = 4.0
	// formatMaxLength fixes the size of the header's format field.
	formatMaxLength = 32
)

// ErrFormat is returned when an image misses the format tag or is older than
// the lowest compatible version.
var ErrFormat = errors.New("incompatible table format")

// metadata is the image preamble describing the serialized arenas.
type metadata struct {
	NumSyllables     int      `msgpack:"ns"`
	NumEntries       int      `msgpack:"ne"`
	DictFileChecksum uint32   `msgpack:"ck"`
	Syllabary        []string `msgpack:"sy"`
	Strings          []string `msgpack:"st"`
}

// image is the msgpack body of a table file.
type image struct {
	Metadata metadata      `msgpack:"m"`
	Head     []HeadNode    `msgpack:"h"`
	Trunks   [][]TrunkNode `msgpack:"tr"`
	Tails    [][]LongEntry `msgpack:"tl"`
}

// Save writes the table image to path.
func (t *Table) Save(path string) error {
	log.Debugf("saving table file: %s", path)
	body, err := msgpack.Marshal(&image{
		Metadata: metadata{
			NumSyllables:     len(t.syllabary),
			NumEntries:       t.numEntries,
			DictFileChecksum: t.dictChecksum,
			Syllabary:        t.syllabary,
			Strings:          t.strings,
		},
		Head:   t.head,
		Trunks: t.trunks,
		Tails:  t.tails,
	})
	if err != nil {
		return fmt.Errorf("encoding table image: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating table file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	var format [formatMaxLength]byte
	copy(format[:], FormatLatest)
	if _, err := w.Write(format[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, crc32.ChecksumIEEE(body)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(body))); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	return w.Flush()
}

// Load reads a table image from path, refusing unknown or outdated formats.
func Load(path string) (*Table, error) {
	log.Debugf("loading table file: %s", path)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table file: %w", err)
	}
	defer file.Close()
	return Read(bufio.NewReader(file))
}

// Read decodes a table image from r.
func Read(r io.Reader) (*Table, error) {
	var format [formatMaxLength]byte
	if _, err := io.ReadFull(r, format[:]); err != nil {
		return nil, fmt.Errorf("reading format header: %w", err)
	}
	tag := string(bytes.TrimRight(format[:], "\x00"))
	if !strings.HasPrefix(tag, formatPrefix) {
		log.Errorf("invalid table metadata: %q", tag)
		return nil, ErrFormat
	}
	version, err := strconv.ParseFloat(tag[len(formatPrefix):], 64)
	if err != nil || version < formatLowestCompatible {
		log.Errorf("table format %q is no longer supported, rebuild with %s", tag, FormatLatest)
		return nil, ErrFormat
	}

	var checksum, size uint32
	if err := binary.Read(r, binary.LittleEndian, &checksum); err != nil {
		return nil, fmt.Errorf("reading checksum: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("reading body size: %w", err)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("reading table body: %w", err)
	}
	if crc32.ChecksumIEEE(body) != checksum {
		return nil, errors.New("table image checksum mismatch")
	}

	var img image
	if err := msgpack.Unmarshal(body, &img); err != nil {
		return nil, fmt.Errorf("decoding table image: %w", err)
	}
	if len(img.Metadata.Syllabary) != img.Metadata.NumSyllables {
		return nil, errors.New("table image syllabary truncated")
	}
	t := &Table{
		syllabary:    img.Metadata.Syllabary,
		strings:      img.Metadata.Strings,
		head:         img.Head,
		trunks:       img.Trunks,
		tails:        img.Tails,
		numEntries:   img.Metadata.NumEntries,
		dictChecksum: img.Metadata.DictFileChecksum,
	}
	log.Debugf("table loaded: %d syllables, %d entries", len(t.syllabary), t.numEntries)
	return t, nil
}
