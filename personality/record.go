package personality

import (
	"encoding/binary"
	"errors"
	"fmt"

	"nifri2/emotipet/storage"
)

// Magic marks an initialised record. Any other first byte means first boot.
const Magic = 0xA5

// DefaultKey is the store key of the record.
const DefaultKey = "personality"

var ErrUninitialized = errors.New("personality: record not initialized")

// Record is the persisted personality and history.
//
// Layout: magic, five trait bytes, bond byte, favorite channel byte (0xFF for
// none), then one big-endian uint16 touch count per channel.
type Record struct {
	Traits  Vector
	History History
}

func NewRecord(channels int) *Record {
	return &Record{Traits: DefaultVector(), History: NewHistory(channels)}
}

// Favorite is derived from the counts, never trusted from storage.
func (r *Record) Favorite() int { return r.History.Favorite() }

func (r *Record) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 8+2*len(r.History.Touches))
	buf = append(buf, Magic)
	buf = append(buf, r.Traits[:]...)
	buf = append(buf, r.History.Bond)

	fav := byte(0xFF)
	if f := r.History.Favorite(); f >= 0 {
		fav = byte(f)
	}
	buf = append(buf, fav)

	for _, n := range r.History.Touches {
		buf = binary.BigEndian.AppendUint16(buf, n)
	}
	return buf, nil
}

// UnmarshalBinary reads a record for the channel count already set in
// r.History. Out-of-range traits and bond are clamped.
func (r *Record) UnmarshalBinary(data []byte) error {
	channels := len(r.History.Touches)
	if len(data) == 0 || data[0] != Magic {
		return ErrUninitialized
	}
	want := 8 + 2*channels
	if len(data) < want {
		return fmt.Errorf("personality record is %d bytes, want %d", len(data), want)
	}

	for i := range r.Traits {
		r.Traits[i] = uint8(clamp(int(data[1+i]), MinTrait, MaxTrait))
	}
	r.History.Bond = uint8(clamp(int(data[6]), 0, MaxBond))
	// data[7] is the stored favorite; it is recomputed from the counts.
	for i := 0; i < channels; i++ {
		r.History.Touches[i] = binary.BigEndian.Uint16(data[8+2*i:])
	}
	return nil
}

// Load reads the record under key. A missing or uninitialised record is
// replaced by defaults which are written back; fresh reports that case.
func Load(kv storage.KV, key string, channels int) (rec *Record, fresh bool, err error) {
	rec = NewRecord(channels)

	data, err := kv.Get(key)
	switch {
	case err == nil:
		uerr := rec.UnmarshalBinary(data)
		if uerr == nil {
			return rec, false, nil
		}
		if !errors.Is(uerr, ErrUninitialized) {
			return nil, false, uerr
		}
	case !errors.Is(err, storage.ErrNotFound):
		return nil, false, fmt.Errorf("failed to read personality: %w", err)
	}

	rec = NewRecord(channels)
	if err := Save(kv, key, rec); err != nil {
		return nil, true, err
	}
	return rec, true, nil
}

func Save(kv storage.KV, key string, rec *Record) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}
	if err := kv.Put(key, data); err != nil {
		return fmt.Errorf("failed to write personality: %w", err)
	}
	return nil
}
