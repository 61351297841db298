package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileFormat represents the supported vocabulary file formats.
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText               // one term per line
	FormatMsgpack            // msgpack-encoded []string
	FormatBinary             // int32 count, then uint16 length + bytes + uint16 rank per term
)

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Dictionary",
		Extensions:  []string{".txt", ".text"},
		MinSize:     0,
	},
	FormatMsgpack: {
		Format:      FormatMsgpack,
		Description: "MessagePack Dictionary",
		Extensions:  []string{".msgpack", ".mpk"},
		MinSize:     1, // array header
	},
	FormatBinary: {
		Format:      FormatBinary,
		Description: "Binary Chunk Dictionary",
		Extensions:  []string{".bin"},
		MinSize:     4, // word count header
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// DetectFileFormat picks the format from the file extension and checks the
// file is large enough to hold it.
func DetectFileFormat(filename string) (FileFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if e != ext {
				continue
			}
			if err := validateSize(filename, info); err != nil {
				return FormatUnknown, err
			}
			return format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}

func validateSize(filename string, info FormatInfo) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}
	if fileInfo.Size() < info.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), info.Description, info.MinSize)
	}
	return nil
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}
