package anim

import (
	"encoding/binary"
	"fmt"
	"io"

	"nifri2/emotipet/storage"
)

// Stream owns the open handle and size table of the one clip being played.
type Stream struct {
	fsys  storage.FS
	clip  Clip
	file  storage.File
	sizes []uint16
}

func NewStream(fsys storage.FS) *Stream {
	return &Stream{fsys: fsys}
}

// Open releases any previously open clip, then opens clip and reads its size
// table.
func (s *Stream) Open(clip Clip) error {
	if err := s.Close(); err != nil {
		return err
	}

	f, err := openKey(s.fsys, clip.Key)
	if err != nil {
		return err
	}
	if _, err := f.Seek(HeaderSize, io.SeekStart); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %s: seek size table: %v", ErrFormat, clip.Key, err)
	}

	raw := make([]byte, 2*clip.FrameCount)
	if _, err := io.ReadFull(f, raw); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: %s: size table: %v", ErrFormat, clip.Key, err)
	}
	sizes := make([]uint16, clip.FrameCount)
	for i := range sizes {
		sizes[i] = binary.LittleEndian.Uint16(raw[2*i:])
		if int(sizes[i]) > clip.MaxCompressedSize {
			_ = f.Close()
			return fmt.Errorf("%w: %s: frame %d size %d exceeds slot %d", ErrFormat, clip.Key, i, sizes[i], clip.MaxCompressedSize)
		}
	}

	s.clip = clip
	s.file = f
	s.sizes = sizes
	return nil
}

// Clip returns the clip currently open.
func (s *Stream) Clip() Clip {
	return s.clip
}

func (s *Stream) IsOpen() bool {
	return s.file != nil
}

// FrameSize returns the compressed size of frame i from the size table.
func (s *Stream) FrameSize(i int) int {
	if i < 0 || i >= len(s.sizes) {
		return 0
	}
	return int(s.sizes[i])
}

// ReadFrame reads frame i's compressed stream into buf, which must hold at
// least MaxCompressedSize bytes, and returns the stream length.
func (s *Stream) ReadFrame(i int, buf []byte) (int, error) {
	if s.file == nil {
		return 0, fmt.Errorf("%w: no clip open", ErrNotFound)
	}
	if i < 0 || i >= len(s.sizes) {
		return 0, fmt.Errorf("%w: frame %d out of range [0,%d)", ErrFormat, i, len(s.sizes))
	}
	if len(buf) < s.clip.MaxCompressedSize {
		return 0, fmt.Errorf("%w: buffer of %d bytes, slot is %d", ErrFormat, len(buf), s.clip.MaxCompressedSize)
	}

	off := FrameOffset(s.clip.FrameCount, s.clip.MaxCompressedSize, i)
	if _, err := s.file.Seek(off, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: seek frame %d: %v", ErrShortRead, i, err)
	}

	n := int(s.sizes[i])
	got, err := io.ReadFull(s.file, buf[:n])
	if err != nil {
		return got, fmt.Errorf("%w: frame %d: got %d of %d bytes", ErrShortRead, i, got, n)
	}
	return n, nil
}

// Close releases the open handle, if any.
func (s *Stream) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.sizes = nil
	s.clip = Clip{}
	return err
}
