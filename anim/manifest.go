package anim

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ManifestName is the asset index written next to the containers.
const ManifestName = "manifest.txt"

// ManifestEntry is one line of the manifest: "name.anim,frames,fps,max".
type ManifestEntry struct {
	Key               string
	FrameCount        int
	FPS               int
	MaxCompressedSize int
}

// ReadManifest parses a manifest: a count line followed by one entry per
// clip.
func ReadManifest(r io.Reader) ([]ManifestEntry, error) {
	sc := bufio.NewScanner(r)
	var lines []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty manifest", ErrFormat)
	}

	count, err := strconv.Atoi(lines[0])
	if err != nil {
		return nil, fmt.Errorf("%w: manifest count %q", ErrFormat, lines[0])
	}
	if count != len(lines)-1 {
		return nil, fmt.Errorf("%w: manifest declares %d clips, lists %d", ErrFormat, count, len(lines)-1)
	}

	entries := make([]ManifestEntry, 0, count)
	for i, line := range lines[1:] {
		fields := strings.Split(line, ",")
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: manifest line %d: %q", ErrFormat, i+2, line)
		}
		var nums [3]int
		for j, f := range fields[1:] {
			n, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("%w: manifest line %d: %v", ErrFormat, i+2, err)
			}
			nums[j] = n
		}
		entries = append(entries, ManifestEntry{
			Key:               strings.TrimSpace(fields[0]),
			FrameCount:        nums[0],
			FPS:               nums[1],
			MaxCompressedSize: nums[2],
		})
	}
	return entries, nil
}

// WriteManifest writes entries in the format ReadManifest accepts.
func WriteManifest(w io.Writer, entries []ManifestEntry) error {
	if _, err := fmt.Fprintf(w, "%d\n", len(entries)); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s,%d,%d,%d\n", e.Key, e.FrameCount, e.FPS, e.MaxCompressedSize); err != nil {
			return err
		}
	}
	return nil
}
