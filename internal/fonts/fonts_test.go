package fonts

import (
	"bytes"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

func TestFallbackFamilies(t *testing.T) {
	var r Registry
	cases := []struct {
		family string
		style  Style
		want   []byte
	}{
		{"Nanum Gothic", Regular, goregular.TTF},
		{"Nanum Gothic", Bold, gobold.TTF},
		{"Nanum Gothic Coding", Regular, gomono.TTF},
		{"Go Mono", Italic, gomonoitalic.TTF},
		{"", Regular, goregular.TTF},
	}
	for _, c := range cases {
		if got := r.TTF(c.family, c.style); !bytes.Equal(got, c.want) {
			t.Errorf("TTF(%q, %v) returned the wrong face", c.family, c.style)
		}
	}
}

func TestRegisteredFamilyFallsBackToRegular(t *testing.T) {
	var r Registry
	regular := []byte{1, 2, 3}
	r.Register("Custom Sans", Family{Regular: regular})
	if !r.Has("custom sans") {
		t.Fatal("Has() should ignore case")
	}
	if got := r.TTF("Custom Sans", BoldItalic); !bytes.Equal(got, regular) {
		t.Errorf("TTF() = %v, want regular face", got)
	}
}

func TestStyleOf(t *testing.T) {
	if StyleOf(true, true) != BoldItalic || StyleOf(false, true) != Italic || StyleOf(true, false) != Bold || StyleOf(false, false) != Regular {
		t.Error("StyleOf mapping wrong")
	}
}
