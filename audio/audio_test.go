// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"sync"
	"testing"
)

type mockDecoder struct{ name string }

func (d *mockDecoder) Decode(io.Reader) (Source, error) {
	return nil, errors.New(d.name)
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	wav := &mockDecoder{name: "wav"}
	reg.Register("wav", wav)

	for _, key := range []string{"wav", "WAV", ".wav", ".Wav"} {
		d, ok := reg.Get(key)
		if !ok || d != wav {
			t.Errorf("Get(%q) = %v, %v; want registered decoder", key, d, ok)
		}
	}

	if _, ok := reg.Get("mp3"); ok {
		t.Error("Get(mp3) ok = true on empty key")
	}
}

func TestRegistry_ForPath(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	aiff := &mockDecoder{name: "aiff"}
	reg.RegisterAll([]string{"aif", "aiff"}, aiff)

	tests := []struct {
		path string
		ok   bool
	}{
		{"/tmp/take.aif", true},
		{"take.AIFF", true},
		{"take.wav", false},
		{"noext", false},
	}
	for _, tt := range tests {
		d, ok := reg.ForPath(tt.path)
		if ok != tt.ok {
			t.Errorf("ForPath(%q) ok = %v, want %v", tt.path, ok, tt.ok)
		}
		if ok && d != aiff {
			t.Errorf("ForPath(%q) returned wrong decoder", tt.path)
		}
	}

	if got := reg.Formats(); !slices.Equal(got, []string{"aif", "aiff"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := string(rune('a' + i))
			reg.Register(key, &mockDecoder{name: key})
			if _, ok := reg.Get(key); !ok {
				t.Errorf("Get(%q) missing after Register", key)
			}
		}()
	}
	wg.Wait()

	if n := len(reg.Formats()); n != 16 {
		t.Errorf("len(Formats()) = %d, want 16", n)
	}
}
