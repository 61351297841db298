// Package dictionary reads and writes vocabulary files for the engine.
package dictionary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/prefixd/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
	"github.com/vmihailenco/msgpack/v5"
)

// maxBinaryWords guards against corrupt binary headers.
const maxBinaryWords = 10_000_000

// Load reads every term from filename, choosing the reader by extension.
func Load(filename string) ([]string, error) {
	format, err := DetectFileFormat(filename)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %w", filename, err)
	}
	defer file.Close()

	var terms []string
	switch format {
	case FormatText:
		terms, err = ReadText(file)
	case FormatMsgpack:
		terms, err = ReadMsgpack(file)
	case FormatBinary:
		terms, err = ReadBinary(bufio.NewReader(file))
	default:
		err = fmt.Errorf("unsupported format %v", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}

	log.Debugf("Loaded %d terms from %s (%v)", len(terms), filename, format)
	return terms, nil
}

// Stream yields the terms of a text dictionary, one per line. Surrounding
// whitespace (including a trailing '\r') is trimmed, then blank lines and
// lines starting with '#' are skipped. A line that is not valid UTF-8 yields
// an error wrapping suggest.ErrInvalidInput and ends the stream.
func Stream(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			term := strings.TrimSpace(scanner.Text())
			if term == "" || strings.HasPrefix(term, "#") {
				continue
			}
			if !utf8.ValidString(term) {
				yield("", fmt.Errorf("line %d: %w", line, suggest.ErrInvalidInput))
				return
			}
			if !yield(term, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", err)
		}
	}
}

// ReadText collects a text dictionary.
func ReadText(r io.Reader) ([]string, error) {
	var terms []string
	for term, err := range Stream(r) {
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, nil
}

// ReadMsgpack decodes a msgpack array of strings. Nil elements are absent
// terms and fail with suggest.ErrInvalidInput.
func ReadMsgpack(r io.Reader) ([]string, error) {
	var raw []*string
	if err := msgpack.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode msgpack dictionary: %w", err)
	}

	terms := make([]string, 0, len(raw))
	for i, term := range raw {
		if term == nil || !utf8.ValidString(*term) {
			return nil, fmt.Errorf("term %d: %w", i, suggest.ErrInvalidInput)
		}
		terms = append(terms, *term)
	}
	return terms, nil
}

// WriteMsgpack encodes terms as a msgpack array.
func WriteMsgpack(w io.Writer, terms []string) error {
	return msgpack.NewEncoder(w).Encode(terms)
}

// SaveMsgpack writes terms to filename in the msgpack format.
func SaveMsgpack(filename string, terms []string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	if err := WriteMsgpack(file, terms); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ReadBinary reads the chunked binary layout: a little-endian int32 word
// count, then per word a uint16 length, the bytes and a uint16 rank. Ranks
// are read and dropped since results are not ranked.
func ReadBinary(r io.Reader) ([]string, error) {
	var total int32
	if err := binary.Read(r, binary.LittleEndian, &total); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if total < 0 || total > maxBinaryWords {
		return nil, fmt.Errorf("invalid word count %d", total)
	}

	terms := make([]string, 0, total)
	for i := 0; i < int(total); i++ {
		var wordLen uint16
		if err := binary.Read(r, binary.LittleEndian, &wordLen); err != nil {
			if errors.Is(err, io.EOF) {
				log.Warnf("Binary dictionary ended after %d of %d words", i, total)
				break
			}
			return nil, fmt.Errorf("failed to read word length: %w", err)
		}

		word := make([]byte, wordLen)
		if _, err := io.ReadFull(r, word); err != nil {
			return nil, fmt.Errorf("failed to read word: %w", err)
		}
		if !utf8.Valid(word) {
			return nil, fmt.Errorf("word %d: %w", i, suggest.ErrInvalidInput)
		}

		var rank uint16
		if err := binary.Read(r, binary.LittleEndian, &rank); err != nil {
			return nil, fmt.Errorf("failed to read rank: %w", err)
		}
		terms = append(terms, string(word))
	}
	return terms, nil
}

// WriteBinary writes terms in the chunked binary layout, ranking them by
// position.
func WriteBinary(w io.Writer, terms []string) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(terms))); err != nil {
		return err
	}
	for i, term := range terms {
		if len(term) > 0xFFFF {
			return fmt.Errorf("term %d is too long (%d bytes)", i, len(term))
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(len(term))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, term); err != nil {
			return err
		}
		rank := uint16(min(i+1, 0xFFFF))
		if err := binary.Write(w, binary.LittleEndian, rank); err != nil {
			return err
		}
	}
	return nil
}

// Dedupe drops repeated terms, keeping the first occurrence.
func Dedupe(terms []string) []string {
	seen := patricia.NewTrie()
	sawEmpty := false
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if term == "" {
			if sawEmpty {
				continue
			}
			sawEmpty = true
		} else if !seen.Insert(patricia.Prefix(term), struct{}{}) {
			continue
		}
		out = append(out, term)
	}
	return out
}
