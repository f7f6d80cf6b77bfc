// Package anim reads the .anim animation container and streams its frames.
//
// Layout (all integers little-endian):
//
//	0..1   frame count
//	2..3   frames per second
//	4..5   maximum compressed frame size
//	6..11  reserved
//	12..   frame count x uint16 compressed size table
//	...    frame count slots of exactly max-compressed-size bytes, each
//	       holding one RLE stream left-aligned and zero padded
package anim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"nifri2/emotipet/storage"
)

const HeaderSize = 12

var (
	ErrNotFound   = errors.New("anim: clip not found")
	ErrFormat     = errors.New("anim: malformed container")
	ErrShortRead  = errors.New("anim: short frame read")
	ErrInvalidFPS = errors.New("anim: invalid fps")
)

// Clip is the metadata of one animation container.
type Clip struct {
	Key               string
	Name              string
	FrameCount        int
	FPS               int
	MaxCompressedSize int
}

// FrameDelay is the display interval of one frame.
func (c Clip) FrameDelay() time.Duration {
	if c.FPS <= 0 {
		return 0
	}
	return time.Duration(1000/c.FPS) * time.Millisecond
}

// FrameOffset is the absolute byte offset of frame i's slot.
func FrameOffset(frameCount, maxCompressed, i int) int64 {
	return int64(HeaderSize + 2*frameCount + i*maxCompressed)
}

// ClipName derives a display name from a storage key ("happy_2.anim" ->
// "happy_2").
func ClipName(key string) string {
	return strings.TrimSuffix(key, ".anim")
}

func parseHeader(hdr []byte) (frames, fps, maxSize int) {
	frames = int(binary.LittleEndian.Uint16(hdr[0:2]))
	fps = int(binary.LittleEndian.Uint16(hdr[2:4]))
	maxSize = int(binary.LittleEndian.Uint16(hdr[4:6]))
	return frames, fps, maxSize
}

func openKey(fsys storage.FS, key string) (storage.File, error) {
	f, err := fsys.Open(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, key, err)
	}
	return f, nil
}

// LoadMetadata reads the header of key. The handle is closed before
// returning; streaming reopens it.
func LoadMetadata(fsys storage.FS, key, name string) (Clip, error) {
	f, err := openKey(fsys, key)
	if err != nil {
		return Clip{}, err
	}
	defer f.Close()

	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return Clip{}, fmt.Errorf("%w: %s: header: %v", ErrFormat, key, err)
	}

	frames, fps, maxSize := parseHeader(hdr[:])
	if fps == 0 {
		return Clip{}, fmt.Errorf("%w: %s has fps 0", ErrInvalidFPS, key)
	}
	if name == "" {
		name = ClipName(key)
	}

	return Clip{
		Key:               key,
		Name:              name,
		FrameCount:        frames,
		FPS:               fps,
		MaxCompressedSize: maxSize,
	}, nil
}

// WriteContainer writes compressed frames as a container. Slots are sized to
// the largest frame.
func WriteContainer(w io.Writer, fps int, frames [][]byte) error {
	if fps <= 0 || fps > 0xFFFF {
		return fmt.Errorf("%w: %d", ErrInvalidFPS, fps)
	}
	if len(frames) > 0xFFFF {
		return fmt.Errorf("%w: %d frames", ErrFormat, len(frames))
	}

	maxSize := 0
	for _, fr := range frames {
		if len(fr) > maxSize {
			maxSize = len(fr)
		}
	}
	if maxSize > 0xFFFF {
		return fmt.Errorf("%w: frame of %d bytes", ErrFormat, maxSize)
	}

	buf := make([]byte, HeaderSize+2*len(frames), HeaderSize+2*len(frames)+len(frames)*maxSize)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(frames)))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(fps))
	binary.LittleEndian.PutUint16(buf[4:6], uint16(maxSize))
	for i, fr := range frames {
		binary.LittleEndian.PutUint16(buf[HeaderSize+2*i:], uint16(len(fr)))
	}
	for _, fr := range frames {
		buf = append(buf, fr...)
		buf = append(buf, make([]byte, maxSize-len(fr))...)
	}

	_, err := w.Write(buf)
	return err
}
