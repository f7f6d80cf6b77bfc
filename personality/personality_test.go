package personality

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"nifri2/emotipet/storage"
)

func TestNudgeStaysInRange(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	v := DefaultVector()
	for i := 0; i < 10000; i++ {
		tr := Trait(r.Intn(int(TraitCount)))
		v.Nudge(tr, r.Intn(7)-3)
		for j, x := range v {
			if x > MaxTrait {
				t.Fatalf("trait %s left range: %d", Trait(j), x)
			}
		}
	}

	v = DefaultVector()
	v.Nudge(Energy, -100)
	v.Nudge(Playfulness, 100)
	if v.Get(Energy) != 0 || v.Get(Playfulness) != 10 {
		t.Fatalf("nudge did not saturate: %v", v)
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory(3)
	if h.Favorite() != -1 {
		t.Fatalf("expected no favorite, got %d", h.Favorite())
	}

	h.RecordTouch(2)
	h.RecordTouch(1)
	if h.Favorite() != 1 {
		t.Fatalf("tie should go to the lowest index, got %d", h.Favorite())
	}
	h.RecordTouch(2)
	if h.Favorite() != 2 || h.Total() != 3 || h.Bond != 3 {
		t.Fatalf("unexpected history %+v favorite=%d", h, h.Favorite())
	}

	for i := 0; i < 500; i++ {
		h.RecordTouch(0)
	}
	if h.Bond != MaxBond {
		t.Fatalf("bond should saturate at %d, got %d", MaxBond, h.Bond)
	}

	h.Touches[1] = 0xFFFF
	h.RecordTouch(1)
	if h.Touches[1] != 0xFFFF {
		t.Fatal("touch counter wrapped")
	}
}

func TestMultiChannelTouchRaisesBondOnce(t *testing.T) {
	h := NewHistory(3)
	h.RecordTouch(0, 1, 2)
	if h.Bond != 1 {
		t.Fatalf("bond = %d after one event, want 1", h.Bond)
	}
	if h.Total() != 3 {
		t.Fatalf("every channel should be counted, touches %v", h.Touches)
	}
}

func TestRecordLayout(t *testing.T) {
	rec := NewRecord(2)
	rec.Traits = Vector{1, 2, 3, 4, 10}
	rec.History.Bond = 42
	rec.History.Touches = []uint16{0x0102, 0x0304}

	data, err := rec.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{Magic, 1, 2, 3, 4, 10, 42, 1, 0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(data, want) {
		t.Fatalf("got % x, want % x", data, want)
	}

	// stored favorite byte is ignored, traits are clamped
	data[7] = 0
	data[5] = 200
	back := NewRecord(2)
	if err := back.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if back.Favorite() != 1 || back.Traits[Sociability] != MaxTrait || back.History.Bond != 42 {
		t.Fatalf("unexpected record %+v", back)
	}
}

func TestUnmarshalRejects(t *testing.T) {
	rec := NewRecord(2)
	if err := rec.UnmarshalBinary([]byte{0x00, 1, 2, 3}); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("expected ErrUninitialized, got %v", err)
	}
	if err := rec.UnmarshalBinary([]byte{Magic, 1, 2}); err == nil || errors.Is(err, ErrUninitialized) {
		t.Fatalf("expected length error, got %v", err)
	}
}

func TestLoadFirstBootWritesDefaults(t *testing.T) {
	kv := storage.NewMemKV()
	rec, fresh, err := Load(kv, DefaultKey, 3)
	if err != nil || !fresh {
		t.Fatalf("expected fresh defaults, got fresh=%v err=%v", fresh, err)
	}
	if rec.Traits != DefaultVector() || rec.History.Bond != 0 {
		t.Fatalf("unexpected defaults %+v", rec)
	}
	stored, err := kv.Get(DefaultKey)
	if err != nil || stored[0] != Magic {
		t.Fatalf("defaults not written back: % x %v", stored, err)
	}
}

func TestLoadBadSentinelReinitializes(t *testing.T) {
	kv := storage.NewMemKV()
	_ = kv.Put(DefaultKey, []byte{0x00, 9, 9, 9, 9, 9, 90, 0, 0, 5, 0, 5, 0, 5})

	rec, fresh, err := Load(kv, DefaultKey, 3)
	if err != nil || !fresh {
		t.Fatalf("expected reinitialisation, fresh=%v err=%v", fresh, err)
	}
	if rec.Traits[Playfulness] != DefaultTrait {
		t.Fatalf("expected default traits, got %v", rec.Traits)
	}
}

func TestSaveThenLoad(t *testing.T) {
	kv := storage.NewMemKV()
	rec := NewRecord(3)
	rec.Traits.Nudge(Affection, 3)
	rec.History.RecordTouch(2)
	if err := Save(kv, DefaultKey, rec); err != nil {
		t.Fatal(err)
	}

	got, fresh, err := Load(kv, DefaultKey, 3)
	if err != nil || fresh {
		t.Fatalf("unexpected load result fresh=%v err=%v", fresh, err)
	}
	if got.Traits.Get(Affection) != 8 || got.Favorite() != 2 || got.History.Bond != 1 {
		t.Fatalf("unexpected record %+v", got)
	}
}
