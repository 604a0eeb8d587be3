package planner

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/bulkren/internal/rename"
)

// Format is a pair list encoding.
type Format string

// Supported formats
const (
	// FormatTSV is one "source<TAB>target" per line. Blank lines and lines
	// starting with # are ignored.
	FormatTSV Format = "tsv"
	// FormatJSON is an array of {"source": ..., "target": ...} objects.
	FormatJSON Format = "json"
)

// ErrParse indicates a malformed pair list.
var ErrParse = errors.New("invalid pair list")

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatTSV:
		return FormatTSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown pair format %q (want tsv or json)", s)
	}
}

// FormatForPath guesses the format from a file extension, defaulting to TSV.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatTSV
}

// ParsePairs reads a pair list. Relative paths are resolved against base.
func ParsePairs(r io.Reader, format Format, base string) ([]rename.Pair, error) {
	var pairs []rename.Pair
	var err error

	switch format {
	case FormatTSV:
		pairs, err = parseTSV(r)
	case FormatJSON:
		pairs, err = parseJSON(r)
	default:
		return nil, fmt.Errorf("unknown pair format %q", format)
	}
	if err != nil {
		return nil, err
	}

	for i := range pairs {
		pairs[i].Source = resolvePath(base, pairs[i].Source)
		pairs[i].Target = resolvePath(base, pairs[i].Target)
	}
	return pairs, nil
}

func parseTSV(r io.Reader) ([]rename.Pair, error) {
	var pairs []rename.Pair
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: want source<TAB>target, got %d fields", ErrParse, line, len(fields))
		}
		if fields[0] == "" || fields[1] == "" {
			return nil, fmt.Errorf("%w: line %d: empty path", ErrParse, line)
		}
		pairs = append(pairs, rename.Pair{Source: fields[0], Target: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pair list: %w", err)
	}
	return pairs, nil
}

func parseJSON(r io.Reader) ([]rename.Pair, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var pairs []rename.Pair
	if err := dec.Decode(&pairs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	for i, p := range pairs {
		if p.Source == "" || p.Target == "" {
			return nil, fmt.Errorf("%w: pair %d: empty path", ErrParse, i+1)
		}
	}
	return pairs, nil
}

// PairsFromArgs pairs up alternating source and target arguments.
func PairsFromArgs(args []string, base string) ([]rename.Pair, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("%w: expected source/target pairs, got %d arguments", ErrParse, len(args))
	}
	pairs := make([]rename.Pair, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if args[i] == "" || args[i+1] == "" {
			return nil, fmt.Errorf("%w: argument %d: empty path", ErrParse, i+1)
		}
		pairs = append(pairs, rename.Pair{
			Source: resolvePath(base, args[i]),
			Target: resolvePath(base, args[i+1]),
		})
	}
	return pairs, nil
}

// FormatPairs renders pairs so that ParsePairs reads them back.
func FormatPairs(pairs []rename.Pair, format Format) ([]byte, error) {
	switch format {
	case FormatTSV:
		var buf bytes.Buffer
		for i, p := range pairs {
			if strings.ContainsAny(p.Source, "\t\n") || strings.ContainsAny(p.Target, "\t\n") {
				return nil, fmt.Errorf("pair %d cannot be written as tsv: path contains a tab or newline", i+1)
			}
			// The reader skips comment and blank lines and strips a trailing CR.
			if strings.HasPrefix(p.Source, "#") || strings.HasSuffix(p.Target, "\r") ||
				strings.TrimSpace(p.Source+p.Target) == "" {
				return nil, fmt.Errorf("pair %d cannot be written as tsv: line would not read back", i+1)
			}
			fmt.Fprintf(&buf, "%s\t%s\n", p.Source, p.Target)
		}
		return buf.Bytes(), nil

	case FormatJSON:
		if pairs == nil {
			pairs = []rename.Pair{}
		}
		data, err := json.MarshalIndent(pairs, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil

	default:
		return nil, fmt.Errorf("unknown pair format %q", format)
	}
}

func resolvePath(base, path string) string {
	if base == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
