// Package metadata edits the QGIS plugin metadata file. The file is plain
// key=value text; only the version key is ever touched, by exact line
// replacement, so everything else survives byte for byte.
package metadata

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

const versionKey = "version="

// SetVersion rewrites the single "version=" line of the metadata file at
// path to carry number (the version without its leading "v"). Only that
// line's content bytes are replaced: line terminators, CRLF endings and a
// missing final newline all survive untouched. It returns the old and new
// line so callers can show the operator a diff.
func SetVersion(path, number string) (oldLine, newLine string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read metadata file: %w", err)
	}

	start, end, ok := versionLineSpan(data)
	if !ok {
		return "", "", fmt.Errorf("no %q line in %s", versionKey, path)
	}

	oldLine = string(data[start:end])
	newLine = versionKey + number

	var buf bytes.Buffer
	buf.Write(data[:start])
	buf.WriteString(newLine)
	buf.Write(data[end:])

	info, err := os.Stat(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to check metadata file permissions: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), info.Mode()); err != nil {
		return "", "", fmt.Errorf("failed to write metadata file: %w", err)
	}

	return oldLine, newLine, nil
}

// versionLineSpan locates the first line starting with the version key and
// returns the byte span of its content, excluding any trailing CR and the
// line terminator.
func versionLineSpan(data []byte) (start, end int, ok bool) {
	key := []byte(versionKey)
	for start < len(data) {
		next := len(data)
		end = len(data)
		if i := bytes.IndexByte(data[start:], '\n'); i >= 0 {
			end = start + i
			next = end + 1
		}
		if end > start && data[end-1] == '\r' {
			end--
		}
		if bytes.HasPrefix(data[start:end], key) {
			return start, end, true
		}
		start = next
	}
	return 0, 0, false
}

// Version reads the current value of the version key.
func Version(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read metadata file: %w", err)
	}
	start, end, ok := versionLineSpan(data)
	if !ok {
		return "", fmt.Errorf("no %q line in %s", versionKey, path)
	}
	return strings.TrimPrefix(string(data[start:end]), versionKey), nil
}
