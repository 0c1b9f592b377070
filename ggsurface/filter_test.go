package ggsurface

import (
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"

	"github.com/phanxgames/stagecraft"
)

func pixel(pm *gg.Pixmap, x, y int) [4]uint8 {
	i := (y*pm.Width() + x) * 4
	d := pm.Data()
	return [4]uint8{d[i], d[i+1], d[i+2], d[i+3]}
}

func setPixel(pm *gg.Pixmap, x, y int, c [4]uint8) {
	i := (y*pm.Width() + x) * 4
	copy(pm.Data()[i:i+4], c[:])
}

func fullRect(pm *gg.Pixmap) scene.Rect {
	return scene.Rect{MaxX: float32(pm.Width()), MaxY: float32(pm.Height())}
}

// --- ColorMatrixFilter ---

func TestColorMatrixIdentity(t *testing.T) {
	pm := gg.NewPixmap(2, 1)
	setPixel(pm, 0, 0, [4]uint8{100, 50, 0, 200})
	NewColorMatrixFilter(stagecraft.IdentityMatrix()).Apply(pm, pm, fullRect(pm))
	if got := pixel(pm, 0, 0); got != [4]uint8{100, 50, 0, 200} {
		t.Errorf("pixel = %v, want unchanged", got)
	}
	if got := pixel(pm, 1, 0); got != [4]uint8{} {
		t.Errorf("transparent pixel = %v", got)
	}
}

func TestColorMatrixKeepsPremultiplied(t *testing.T) {
	m := stagecraft.IdentityMatrix()
	m[18] = 0.5
	src := gg.NewPixmap(1, 1)
	dst := gg.NewPixmap(1, 1)
	setPixel(src, 0, 0, [4]uint8{255, 0, 0, 255})
	NewColorMatrixFilter(m).Apply(src, dst, fullRect(src))
	if got := pixel(dst, 0, 0); got != [4]uint8{128, 0, 0, 128} {
		t.Errorf("pixel = %v, want [128 0 0 128]", got)
	}
}

func TestColorMatrixBrightnessOffset(t *testing.T) {
	pm := gg.NewPixmap(1, 1)
	setPixel(pm, 0, 0, [4]uint8{0, 0, 0, 255})
	NewColorMatrixFilter(stagecraft.BrightnessMatrix(51)).Apply(pm, pm, fullRect(pm))
	if got := pixel(pm, 0, 0); got != [4]uint8{51, 51, 51, 255} {
		t.Errorf("pixel = %v, want [51 51 51 255]", got)
	}
}

// --- BlurFilter ---

func TestBoxBlurSpreadsPixel(t *testing.T) {
	src := gg.NewPixmap(5, 5)
	setPixel(src, 2, 2, [4]uint8{255, 255, 255, 255})
	dst := gg.NewPixmap(5, 5)
	NewBlurFilter(1).Apply(src, dst, fullRect(src))

	for _, p := range [][2]int{{1, 1}, {2, 2}, {3, 1}, {3, 3}} {
		if got := pixel(dst, p[0], p[1]); got[3] != 28 {
			t.Errorf("alpha at %v = %d, want 28", p, got[3])
		}
	}
	if got := pixel(dst, 0, 0); got[3] != 0 {
		t.Errorf("alpha at corner = %d, want 0", got[3])
	}
}

func TestBlurZeroRadiusCopies(t *testing.T) {
	src := gg.NewPixmap(2, 2)
	setPixel(src, 1, 1, [4]uint8{10, 20, 30, 40})
	dst := gg.NewPixmap(2, 2)
	NewBlurFilter(-2).Apply(src, dst, fullRect(src))
	if got := pixel(dst, 1, 1); got != [4]uint8{10, 20, 30, 40} {
		t.Errorf("pixel = %v, want copy", got)
	}
}

func TestBlurExpandBounds(t *testing.T) {
	r := NewBlurFilter(3).ExpandBounds(scene.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10})
	if r.MinX != -3 || r.MaxY != 13 {
		t.Errorf("ExpandBounds = %+v", r)
	}
}

// --- Chains ---

func TestBuildChain(t *testing.T) {
	chain := buildChain([]stagecraft.FilterSpec{
		{Kind: stagecraft.FilterHue, Value: 90},
		{Kind: stagecraft.FilterBlur, Value: 2.2},
	})
	if chain == nil || chain.Len() != 2 {
		t.Fatalf("chain = %v", chain)
	}
	if got := chainPadding(chain); got != 3 {
		t.Errorf("padding = %v, want 3", got)
	}
	if buildChain(nil) != nil || chainPadding(nil) != 0 {
		t.Error("empty specs should build no chain")
	}
}

func TestClipBounds(t *testing.T) {
	a, b := gg.NewPixmap(4, 4), gg.NewPixmap(3, 5)
	x0, y0, x1, y1, ok := clipBounds(a, b, scene.Rect{MinX: -2, MinY: 1, MaxX: 10, MaxY: 10})
	if !ok || x0 != 0 || y0 != 1 || x1 != 3 || y1 != 4 {
		t.Errorf("clipBounds = %d %d %d %d %v", x0, y0, x1, y1, ok)
	}
	if _, _, _, _, ok := clipBounds(nil, b, fullRect(b)); ok {
		t.Error("nil pixmap should not clip")
	}
}
