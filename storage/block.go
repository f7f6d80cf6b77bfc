package storage

import (
	"encoding/binary"
	"fmt"
	"io"
)

// BlockDevice is the subset of a flash block device (machine.Flash under
// TinyGo) that BlockKV needs.
type BlockDevice interface {
	io.ReaderAt
	io.WriterAt
	EraseBlockSize() int64
	EraseBlocks(start, length int64) error
}

// BlockKV gives each known key one erase block on a flash device, starting at
// a base block. A slot holds a big-endian uint16 length and the value; erased
// flash (0xFFFF) reads as an absent key.
type BlockKV struct {
	dev   BlockDevice
	slots map[string]int64
}

func NewBlockKV(dev BlockDevice, baseBlock int64, keys ...string) *BlockKV {
	slots := make(map[string]int64, len(keys))
	for i, k := range keys {
		slots[k] = baseBlock + int64(i)
	}
	return &BlockKV{dev: dev, slots: slots}
}

func (b *BlockKV) slot(key string) (int64, error) {
	block, ok := b.slots[key]
	if !ok {
		return 0, fmt.Errorf("no flash slot for key %q", key)
	}
	return block, nil
}

func (b *BlockKV) Get(key string) ([]byte, error) {
	block, err := b.slot(key)
	if err != nil {
		return nil, err
	}
	size := b.dev.EraseBlockSize()
	off := block * size

	var hdr [2]byte
	if _, err := b.dev.ReadAt(hdr[:], off); err != nil {
		return nil, fmt.Errorf("flash read %s: %w", key, err)
	}
	n := int64(binary.BigEndian.Uint16(hdr[:]))
	if n == 0xFFFF || n > size-2 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	val := make([]byte, n)
	if _, err := b.dev.ReadAt(val, off+2); err != nil {
		return nil, fmt.Errorf("flash read %s: %w", key, err)
	}
	return val, nil
}

func (b *BlockKV) Put(key string, value []byte) error {
	block, err := b.slot(key)
	if err != nil {
		return err
	}
	size := b.dev.EraseBlockSize()
	if int64(len(value)) > size-2 {
		return fmt.Errorf("value for %s exceeds flash slot (%d > %d)", key, len(value), size-2)
	}

	if err := b.dev.EraseBlocks(block, 1); err != nil {
		return fmt.Errorf("flash erase %s: %w", key, err)
	}
	buf := make([]byte, 2+len(value))
	binary.BigEndian.PutUint16(buf, uint16(len(value)))
	copy(buf[2:], value)
	if _, err := b.dev.WriteAt(buf, block*size); err != nil {
		return fmt.Errorf("flash write %s: %w", key, err)
	}
	return nil
}
