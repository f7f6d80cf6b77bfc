package anim

import (
	"bytes"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"nifri2/emotipet/rle"
	"nifri2/emotipet/storage"
)

const testFrameSize = 4

func buildContainer(t *testing.T, fps int, frames ...[]byte) []byte {
	t.Helper()
	var compressed [][]byte
	for _, fr := range frames {
		compressed = append(compressed, rle.Encode(nil, fr))
	}
	var buf bytes.Buffer
	if err := WriteContainer(&buf, fps, compressed); err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}
	return buf.Bytes()
}

type countingFS struct {
	storage.FS
	open int
	max  int
}

type countingFile struct {
	storage.File
	fs *countingFS
}

func (c *countingFS) Open(key string) (storage.File, error) {
	f, err := c.FS.Open(key)
	if err != nil {
		return nil, err
	}
	c.open++
	if c.open > c.max {
		c.max = c.open
	}
	return &countingFile{File: f, fs: c}, nil
}

func (f *countingFile) Close() error {
	f.fs.open--
	return f.File.Close()
}

type fakeRenderer struct {
	frames       [][]byte
	placeholders []string
}

func (r *fakeRenderer) Frame(frame []byte) error {
	r.frames = append(r.frames, append([]byte(nil), frame...))
	return nil
}

func (r *fakeRenderer) Placeholder(text string) error {
	r.placeholders = append(r.placeholders, text)
	return nil
}

func TestFrameOffset(t *testing.T) {
	if got := FrameOffset(3, 50, 0); got != 18 {
		t.Fatalf("FrameOffset(3,50,0) = %d, want 18", got)
	}
	if got := FrameOffset(3, 50, 2); got != 118 {
		t.Fatalf("FrameOffset(3,50,2) = %d, want 118", got)
	}
}

func TestLoadMetadata(t *testing.T) {
	good := buildContainer(t, 10, []byte{1, 1, 1, 1}, []byte{0, 0, 2, 2})
	zeroFPS := append([]byte(nil), good...)
	zeroFPS[2], zeroFPS[3] = 0, 0

	fsys := storage.FromFS(fstest.MapFS{
		"happy.anim": {Data: good},
		"short.anim": {Data: good[:8]},
		"zero.anim":  {Data: zeroFPS},
	})

	clip, err := LoadMetadata(fsys, "happy.anim", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clip.Name != "happy" || clip.FrameCount != 2 || clip.FPS != 10 || clip.MaxCompressedSize != 4 {
		t.Fatalf("unexpected clip: %#v", clip)
	}
	if clip.FrameDelay() != 100*time.Millisecond {
		t.Fatalf("unexpected frame delay %v", clip.FrameDelay())
	}

	tests := []struct {
		key  string
		want error
	}{
		{"missing.anim", ErrNotFound},
		{"short.anim", ErrFormat},
		{"zero.anim", ErrInvalidFPS},
	}
	for _, tt := range tests {
		if _, err := LoadMetadata(fsys, tt.key, ""); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.key, tt.want, err)
		}
	}
}

func TestContainerLayout(t *testing.T) {
	data := buildContainer(t, 12, []byte{7, 7, 7, 7}, []byte{1, 2, 3, 4}, []byte{0, 0, 0, 0})
	// frames compress to 2, 8 and 2 bytes
	if len(data) != HeaderSize+2*3+3*8 {
		t.Fatalf("unexpected container length %d", len(data))
	}
	if data[4] != 8 || data[5] != 0 {
		t.Fatalf("max compressed size not little-endian 8: % x", data[4:6])
	}
	for _, b := range data[6:12] {
		if b != 0 {
			t.Fatal("reserved bytes must be zero")
		}
	}
	slot2 := FrameOffset(3, 8, 2)
	if !bytes.Equal(data[slot2:slot2+2], []byte{4, 0}) {
		t.Fatalf("frame 2 not left-aligned in its slot: % x", data[slot2:slot2+8])
	}
}

func TestStreamReadFrame(t *testing.T) {
	data := buildContainer(t, 10, []byte{1, 1, 1, 1}, []byte{1, 2, 3, 4}, []byte{9, 9, 0, 0})
	fsys := storage.FromFS(fstest.MapFS{"clip.anim": {Data: data}})
	clip, err := LoadMetadata(fsys, "clip.anim", "")
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}

	s := NewStream(fsys)
	if err := s.Open(clip); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	buf := make([]byte, clip.MaxCompressedSize)
	n, err := s.ReadFrame(2, buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(buf[:n], []byte{2, 9, 2, 0}) {
		t.Fatalf("unexpected frame bytes % x", buf[:n])
	}

	if _, err := s.ReadFrame(3, buf); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for out-of-range frame, got %v", err)
	}
	if _, err := s.ReadFrame(0, buf[:1]); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat for small buffer, got %v", err)
	}
}

func TestStreamShortSizeTable(t *testing.T) {
	data := buildContainer(t, 10, []byte{1, 1, 1, 1}, []byte{2, 2, 2, 2}, []byte{3, 3, 3, 3})
	fsys := storage.FromFS(fstest.MapFS{"clip.anim": {Data: data[:HeaderSize+3]}})
	clip := Clip{Key: "clip.anim", Name: "clip", FrameCount: 3, FPS: 10, MaxCompressedSize: 2}

	s := NewStream(fsys)
	if err := s.Open(clip); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
	if s.IsOpen() {
		t.Fatal("stream must not hold a handle after a failed open")
	}
}

func TestStreamShortRead(t *testing.T) {
	data := buildContainer(t, 10, []byte{1, 2, 3, 4}, []byte{1, 2, 3, 4})
	fsys := storage.FromFS(fstest.MapFS{"clip.anim": {Data: data[:len(data)-3]}})
	clip, _ := LoadMetadata(fsys, "clip.anim", "")

	s := NewStream(fsys)
	if err := s.Open(clip); err != nil {
		t.Fatalf("open: %v", err)
	}
	buf := make([]byte, clip.MaxCompressedSize)
	if _, err := s.ReadFrame(1, buf); !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
}

func TestStreamOpenReleasesPrevious(t *testing.T) {
	a := buildContainer(t, 10, []byte{1, 1, 1, 1})
	b := buildContainer(t, 10, []byte{2, 2, 2, 2})
	fsys := &countingFS{FS: storage.FromFS(fstest.MapFS{"a.anim": {Data: a}, "b.anim": {Data: b}})}

	clipA, _ := LoadMetadata(fsys, "a.anim", "")
	clipB, _ := LoadMetadata(fsys, "b.anim", "")
	fsys.max = 0

	s := NewStream(fsys)
	for i := 0; i < 3; i++ {
		if err := s.Open(clipA); err != nil {
			t.Fatalf("open a: %v", err)
		}
		if err := s.Open(clipB); err != nil {
			t.Fatalf("open b: %v", err)
		}
	}
	if fsys.max != 1 {
		t.Fatalf("expected at most one open handle, saw %d", fsys.max)
	}
	_ = s.Close()
	if fsys.open != 0 {
		t.Fatalf("expected no open handles after close, got %d", fsys.open)
	}
}

func TestPlayerLoopsAndWraps(t *testing.T) {
	data := buildContainer(t, 10, []byte{0, 0, 0, 0}, []byte{1, 1, 1, 1}, []byte{2, 2, 2, 2})
	fsys := storage.FromFS(fstest.MapFS{"clip.anim": {Data: data}})
	clip, _ := LoadMetadata(fsys, "clip.anim", "")
	r := &fakeRenderer{}
	p := NewPlayer(fsys, r, testFrameSize, nil)

	if err := p.Play(0, clip); err != nil {
		t.Fatalf("play: %v", err)
	}
	if len(r.frames) != 1 || p.Index() != 0 {
		t.Fatalf("expected frame 0 drawn on play, got %d frames at index %d", len(r.frames), p.Index())
	}

	if drawn, _ := p.Update(50 * time.Millisecond); drawn {
		t.Fatal("frame advanced before frame delay")
	}

	steps := []struct {
		at   time.Duration
		want int
	}{
		{100 * time.Millisecond, 1},
		{200 * time.Millisecond, 2},
		{300 * time.Millisecond, 0},
		{400 * time.Millisecond, 1},
	}
	for _, s := range steps {
		drawn, err := p.Update(s.at)
		if err != nil || !drawn {
			t.Fatalf("at %v: drawn=%v err=%v", s.at, drawn, err)
		}
		if p.Index() != s.want {
			t.Fatalf("at %v: index %d, want %d", s.at, p.Index(), s.want)
		}
		last := r.frames[len(r.frames)-1]
		if last[0] != byte(s.want) {
			t.Fatalf("at %v: rendered frame %d, want %d", s.at, last[0], s.want)
		}
	}
}

func TestPlayerRetriesShortReadOnce(t *testing.T) {
	data := buildContainer(t, 10, []byte{0, 0, 0, 0}, []byte{1, 1, 1, 1}, []byte{2, 2, 2, 2})
	fsys := storage.FromFS(fstest.MapFS{"clip.anim": {Data: data[:len(data)-1]}})
	clip, _ := LoadMetadata(fsys, "clip.anim", "")
	r := &fakeRenderer{}
	p := NewPlayer(fsys, r, testFrameSize, nil)

	if err := p.Play(0, clip); err != nil {
		t.Fatalf("play: %v", err)
	}

	steps := []struct {
		at    time.Duration
		drawn bool
		short bool
		index int
	}{
		{100 * time.Millisecond, true, false, 1},
		{200 * time.Millisecond, false, true, 1},  // last slot is truncated
		{220 * time.Millisecond, false, false, 1}, // retry waits for the frame delay
		{300 * time.Millisecond, false, true, 2},  // retry failed, frame skipped
		{400 * time.Millisecond, true, false, 0},
	}
	for _, s := range steps {
		drawn, err := p.Update(s.at)
		if drawn != s.drawn || errors.Is(err, ErrShortRead) != s.short {
			t.Fatalf("at %v: drawn=%v err=%v", s.at, drawn, err)
		}
		if p.Index() != s.index {
			t.Fatalf("at %v: index %d, want %d", s.at, p.Index(), s.index)
		}
	}
	if last := r.frames[len(r.frames)-1]; last[0] != 0 {
		t.Fatalf("expected frame 0 after wrapping, rendered %d", last[0])
	}
}

func TestPlayerShortReadIsNotRetriedEveryTick(t *testing.T) {
	data := buildContainer(t, 10, []byte{0, 0, 0, 0}, []byte{1, 1, 1, 1}, []byte{2, 2, 2, 2})
	fsys := storage.FromFS(fstest.MapFS{"clip.anim": {Data: data[:len(data)-1]}})
	clip, _ := LoadMetadata(fsys, "clip.anim", "")
	r := &fakeRenderer{}
	p := NewPlayer(fsys, r, testFrameSize, nil)
	if err := p.Play(0, clip); err != nil {
		t.Fatalf("play: %v", err)
	}

	failures := 0
	for now := 20 * time.Millisecond; now <= 10*time.Second; now += 20 * time.Millisecond {
		if _, err := p.Update(now); err != nil {
			failures++
		}
	}
	// 100 frame updates, each cycle draws two frames and fails the third twice
	if failures > 51 {
		t.Fatalf("%d read failures in 100 frame updates", failures)
	}
	if len(r.frames) < 45 {
		t.Fatalf("playback stalled after %d frames", len(r.frames))
	}
}

func TestPlayerSkipsUndecodableFrame(t *testing.T) {
	compressed := [][]byte{{4, 0}, {2, 1}, {4, 2}}
	var buf bytes.Buffer
	if err := WriteContainer(&buf, 10, compressed); err != nil {
		t.Fatal(err)
	}
	fsys := storage.FromFS(fstest.MapFS{"clip.anim": {Data: buf.Bytes()}})
	clip, _ := LoadMetadata(fsys, "clip.anim", "")
	r := &fakeRenderer{}
	p := NewPlayer(fsys, r, testFrameSize, nil)
	_ = p.Play(0, clip)

	drawn, err := p.Update(100 * time.Millisecond)
	if drawn || !errors.Is(err, rle.ErrFormat) {
		t.Fatalf("expected decode failure, drawn=%v err=%v", drawn, err)
	}
	if len(r.frames) != 1 {
		t.Fatalf("undecodable frame was rendered")
	}

	drawn, err = p.Update(200 * time.Millisecond)
	if !drawn || err != nil || p.Index() != 2 {
		t.Fatalf("expected frame 2 after skip, drawn=%v err=%v index=%d", drawn, err, p.Index())
	}
}

func TestPlayerPlaceholderOnMissingClip(t *testing.T) {
	fsys := storage.FromFS(fstest.MapFS{})
	r := &fakeRenderer{}
	p := NewPlayer(fsys, r, testFrameSize, nil)

	err := p.Play(0, Clip{Key: "gone.anim", Name: "gone", FrameCount: 1, FPS: 10, MaxCompressedSize: 2})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if p.Loaded() {
		t.Fatal("player reports loaded after failure")
	}
	if len(r.placeholders) != 1 || r.placeholders[0] != "gone" {
		t.Fatalf("expected placeholder, got %v", r.placeholders)
	}
	if drawn, err := p.Update(time.Second); drawn || err != nil {
		t.Fatalf("not-loaded player must stay idle, drawn=%v err=%v", drawn, err)
	}
}

func TestCatalogRetriesFailedClipOnRequest(t *testing.T) {
	mfs := fstest.MapFS{}
	fsys := storage.FromFS(mfs)
	c := NewCatalog(fsys)

	if _, err := c.Clip("late.anim"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := c.Failed(); len(got) != 1 || got[0] != "late.anim" {
		t.Fatalf("unexpected failed list %v", got)
	}

	mfs["late.anim"] = &fstest.MapFile{Data: buildContainer(t, 5, []byte{1, 1, 1, 1})}
	clip, err := c.Clip("late.anim")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if clip.Name != "late" || len(c.Failed()) != 0 {
		t.Fatalf("unexpected state after retry: %#v %v", clip, c.Failed())
	}
}

func TestManifest(t *testing.T) {
	entries := []ManifestEntry{
		{Key: "happy.anim", FrameCount: 12, FPS: 10, MaxCompressedSize: 310},
		{Key: "sleepy.anim", FrameCount: 40, FPS: 8, MaxCompressedSize: 122},
	}
	var buf bytes.Buffer
	if err := WriteManifest(&buf, entries); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "2\nhappy.anim,12,10,310\nsleepy.anim,40,8,122\n" {
		t.Fatalf("unexpected manifest %q", buf.String())
	}

	got, err := ReadManifest(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[1] != entries[1] {
		t.Fatalf("unexpected entries %#v", got)
	}

	bad := []string{"", "x\n", "2\nhappy.anim,1,1,1\n", "1\nhappy.anim,1,1\n", "1\nhappy.anim,a,1,1\n"}
	for _, b := range bad {
		if _, err := ReadManifest(bytes.NewBufferString(b)); !errors.Is(err, ErrFormat) {
			t.Errorf("%q: expected ErrFormat, got %v", b, err)
		}
	}
}
