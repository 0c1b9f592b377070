package ggsurface

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"

	"github.com/phanxgames/stagecraft"
)

// ColorMatrixFilter applies a stagecraft color matrix to premultiplied
// pixels. It works in place when src == dst.
type ColorMatrixFilter struct {
	Matrix stagecraft.ColorMatrix
}

var _ scene.Filter = (*ColorMatrixFilter)(nil)

// NewColorMatrixFilter creates a filter applying m.
func NewColorMatrixFilter(m stagecraft.ColorMatrix) *ColorMatrixFilter {
	return &ColorMatrixFilter{Matrix: m}
}

// Apply implements scene.Filter.
func (f *ColorMatrixFilter) Apply(src, dst *gg.Pixmap, bounds scene.Rect) {
	x0, y0, x1, y1, ok := clipBounds(src, dst, bounds)
	if !ok {
		return
	}
	sd, dd := src.Data(), dst.Data()
	sw, dw := src.Width(), dst.Width()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			si := (y*sw + x) * 4
			di := (y*dw + x) * 4
			a := float64(sd[si+3]) / 255
			var r, g, b float64
			if a > 0 {
				r = float64(sd[si]) / 255 / a
				g = float64(sd[si+1]) / 255 / a
				b = float64(sd[si+2]) / 255 / a
			}
			r, g, b, a = f.Matrix.Transform(r, g, b, a)
			dd[di] = toByte(r * a)
			dd[di+1] = toByte(g * a)
			dd[di+2] = toByte(b * a)
			dd[di+3] = toByte(a)
		}
	}
}

// ExpandBounds implements scene.Filter. Color transforms keep the bounds.
func (f *ColorMatrixFilter) ExpandBounds(input scene.Rect) scene.Rect { return input }

// BlurFilter is a separable box blur. Each quality pass runs one
// horizontal and one vertical box pass; pixels outside the bounds count
// as transparent.
type BlurFilter struct {
	Radius  int
	Quality int
}

var _ scene.Filter = (*BlurFilter)(nil)

// NewBlurFilter creates a single-pass box blur. Negative radii clamp to 0.
func NewBlurFilter(radius int) *BlurFilter {
	return &BlurFilter{Radius: max(radius, 0), Quality: 1}
}

// Apply implements scene.Filter.
func (f *BlurFilter) Apply(src, dst *gg.Pixmap, bounds scene.Rect) {
	x0, y0, x1, y1, ok := clipBounds(src, dst, bounds)
	if !ok {
		return
	}
	w, h := x1-x0, y1-y0
	buf := make([]float32, w*h*4)
	sd, sw := src.Data(), src.Width()
	for y := 0; y < h; y++ {
		row := ((y+y0)*sw + x0) * 4
		for i := 0; i < w*4; i++ {
			buf[y*w*4+i] = float32(sd[row+i])
		}
	}

	if f.Radius > 0 {
		tmp := make([]float32, len(buf))
		for q := 0; q < max(f.Quality, 1); q++ {
			boxPass(buf, tmp, h, w, w, 1, f.Radius)
			boxPass(tmp, buf, w, h, 1, w, f.Radius)
		}
	}

	dd, dw := dst.Data(), dst.Width()
	for y := 0; y < h; y++ {
		row := ((y+y0)*dw + x0) * 4
		for i := 0; i < w*4; i++ {
			dd[row+i] = toByte(float64(buf[y*w*4+i]) / 255)
		}
	}
}

// ExpandBounds implements scene.Filter.
func (f *BlurFilter) ExpandBounds(input scene.Rect) scene.Rect {
	n := float32(f.Radius * max(f.Quality, 1))
	return scene.Rect{
		MinX: input.MinX - n, MinY: input.MinY - n,
		MaxX: input.MaxX + n, MaxY: input.MaxY + n,
	}
}

// boxPass averages each pixel with its r neighbors on either side along
// one axis. lines is the number of rows (or columns), length the pixels
// per line, lineStride and step the pixel distances between lines and
// between neighbors.
func boxPass(in, out []float32, lines, length, lineStride, step, r int) {
	n := float32(2*r + 1)
	for line := 0; line < lines; line++ {
		base := line * lineStride
		var acc [4]float32
		for i := 0; i <= r && i < length; i++ {
			p := (base + i*step) * 4
			acc[0] += in[p]
			acc[1] += in[p+1]
			acc[2] += in[p+2]
			acc[3] += in[p+3]
		}
		for i := 0; i < length; i++ {
			o := (base + i*step) * 4
			out[o] = acc[0] / n
			out[o+1] = acc[1] / n
			out[o+2] = acc[2] / n
			out[o+3] = acc[3] / n
			if add := i + r + 1; add < length {
				p := (base + add*step) * 4
				acc[0] += in[p]
				acc[1] += in[p+1]
				acc[2] += in[p+2]
				acc[3] += in[p+3]
			}
			if sub := i - r; sub >= 0 {
				p := (base + sub*step) * 4
				acc[0] -= in[p]
				acc[1] -= in[p+1]
				acc[2] -= in[p+2]
				acc[3] -= in[p+3]
			}
		}
	}
}

// buildChain turns filter specs into a gg filter chain, or nil when there
// is nothing to apply.
func buildChain(specs []stagecraft.FilterSpec) *scene.FilterChain {
	if len(specs) == 0 {
		return nil
	}
	chain := scene.NewFilterChain()
	for _, spec := range specs {
		if m, ok := spec.ColorMatrix(); ok {
			chain.Add(NewColorMatrixFilter(m))
			continue
		}
		if spec.Kind == stagecraft.FilterBlur {
			chain.Add(NewBlurFilter(int(math.Ceil(spec.Value))))
		}
	}
	if chain.IsEmpty() {
		return nil
	}
	return chain
}

// chainPadding is how far chain spreads pixels beyond their source.
func chainPadding(chain *scene.FilterChain) float64 {
	if chain == nil {
		return 0
	}
	return float64(chain.ExpandBounds(scene.Rect{}).MaxX)
}

// clipBounds intersects bounds with both pixmaps.
func clipBounds(src, dst *gg.Pixmap, bounds scene.Rect) (x0, y0, x1, y1 int, ok bool) {
	if src == nil || dst == nil {
		return 0, 0, 0, 0, false
	}
	x0 = max(int(bounds.MinX), 0)
	y0 = max(int(bounds.MinY), 0)
	x1 = min(int(math.Ceil(float64(bounds.MaxX))), src.Width(), dst.Width())
	y1 = min(int(math.Ceil(float64(bounds.MaxY))), src.Height(), dst.Height())
	return x0, y0, x1, y1, x0 < x1 && y0 < y1
}

func toByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
