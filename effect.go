package stagecraft

import "math"

// EffectKey names one component of the effect vector. Keys are applied in
// declaration order.
type EffectKey uint8

const (
	EffectBlur EffectKey = iota
	EffectHue
	EffectHSV
	EffectBrightness
	EffectContrast
	EffectSaturation
	EffectAlpha

	effectKeyCount
)

func (k EffectKey) String() string {
	switch k {
	case EffectBlur:
		return "blur"
	case EffectHue:
		return "hue"
	case EffectHSV:
		return "hsv"
	case EffectBrightness:
		return "brightness"
	case EffectContrast:
		return "contrast"
	case EffectSaturation:
		return "saturation"
	case EffectAlpha:
		return "alpha"
	default:
		return "unknown"
	}
}

// Effect is the visual-effect vector of an entity.
type Effect struct {
	Blur       float64
	Hue        float64
	HSV        float64
	Brightness float64
	Contrast   float64
	Saturation float64
	Alpha      float64
}

// DefaultEffect returns the neutral vector: everything 0 and alpha 1.
func DefaultEffect() Effect {
	return Effect{Alpha: 1}
}

// Get returns the value of key k.
func (ef Effect) Get(k EffectKey) float64 {
	switch k {
	case EffectBlur:
		return ef.Blur
	case EffectHue:
		return ef.Hue
	case EffectHSV:
		return ef.HSV
	case EffectBrightness:
		return ef.Brightness
	case EffectContrast:
		return ef.Contrast
	case EffectSaturation:
		return ef.Saturation
	case EffectAlpha:
		return ef.Alpha
	default:
		return 0
	}
}

func (ef *Effect) set(k EffectKey, v float64) {
	switch k {
	case EffectBlur:
		ef.Blur = v
	case EffectHue:
		ef.Hue = v
	case EffectHSV:
		ef.HSV = v
	case EffectBrightness:
		ef.Brightness = clamp(v, -100, 100)
	case EffectContrast:
		ef.Contrast = v
	case EffectSaturation:
		ef.Saturation = v
	case EffectAlpha:
		ef.Alpha = clamp(v, 0, 1)
	}
}

// diff returns the keys whose value differs between ef and other.
func (ef Effect) diff(other Effect) []EffectKey {
	var keys []EffectKey
	for k := EffectKey(0); k < effectKeyCount; k++ {
		if ef.Get(k) != other.Get(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Effect returns the current effect vector.
func (e *Entity) Effect() Effect { return e.effect }

// SetEffect stores one effect value. The change reaches the surface on the
// next ApplyFilter.
func (e *Entity) SetEffect(k EffectKey, v float64) {
	if !e.alive("SetEffect") || !finite(v) {
		return
	}
	e.effect.set(k, v)
}

// AddEffect adds delta to one effect value.
func (e *Entity) AddEffect(k EffectKey, delta float64) {
	e.SetEffect(k, e.effect.Get(k)+delta)
}

// ApplyFilter pushes the effect vector to the surface. It does nothing when
// the vector matches what was last applied and force is unset. Once past that
// check, extra keys are applied even at their default value.
func (e *Entity) ApplyFilter(force bool, extra ...EffectKey) {
	if !e.alive("ApplyFilter") {
		return
	}
	changed := e.effect.diff(e.applied)
	if !force && len(changed) == 0 {
		return
	}

	var want [effectKeyCount]bool
	def := DefaultEffect()
	for k := EffectKey(0); k < effectKeyCount; k++ {
		want[k] = e.effect.Get(k) != def.Get(k)
	}
	for _, k := range changed {
		if k == EffectAlpha {
			want[k] = true
		}
	}
	for _, k := range extra {
		if k < effectKeyCount {
			want[k] = true
		}
	}

	var filters []FilterSpec
	for k := EffectKey(0); k < effectKeyCount; k++ {
		if !want[k] {
			continue
		}
		switch k {
		case EffectAlpha:
			e.effect.Alpha = clamp(e.effect.Alpha, 0, 1)
			e.surface.SetAlpha(e.object, e.effect.Alpha)
		case EffectBrightness:
			filters = append(filters, FilterSpec{Kind: FilterBrightness, Value: clamp(e.effect.Brightness, -100, 100)})
		case EffectHue:
			filters = append(filters, FilterSpec{Kind: FilterHue, Value: mod360(e.effect.Hue)})
		case EffectHSV:
			filters = append(filters, FilterSpec{Kind: FilterColorMatrix, Value: e.effect.HSV, Matrix: HSVMatrix(e.effect.HSV)})
		case EffectContrast:
			filters = append(filters, FilterSpec{Kind: FilterContrast, Value: e.effect.Contrast})
		case EffectSaturation:
			filters = append(filters, FilterSpec{Kind: FilterSaturation, Value: e.effect.Saturation})
		case EffectBlur:
			filters = append(filters, FilterSpec{Kind: FilterBlur, Value: math.Max(0, e.effect.Blur)})
		}
	}
	e.surface.ApplyFilters(e.object, filters)
	e.applied = e.effect
	e.cache()
	e.markDirty()
}

// ResetFilter removes every filter and restores the default effect vector.
func (e *Entity) ResetFilter() {
	if !e.alive("ResetFilter") {
		return
	}
	e.effect = DefaultEffect()
	e.applied = e.effect
	e.surface.ApplyFilters(e.object, nil)
	e.surface.SetAlpha(e.object, e.effect.Alpha)
	e.surface.SetFilterCache(e.object, false)
	e.markDirty()
}

// cache re-rasterizes the entity on surfaces that read pixels back from an
// explicit bitmap cache.
func (e *Entity) cache() {
	e.surface.CacheBitmap(e.object)
}

// --- Color matrices ---

// ColorMatrix is a 5x5 row-major color transform. Columns are R, G, B, A and
// a constant offset in [0, 1] units; the last row is fixed.
type ColorMatrix [25]float64

// IdentityMatrix leaves colors unchanged.
func IdentityMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
		0, 0, 0, 0, 1,
	}
}

// Rows4x5 returns the first four rows, the layout Kage shaders consume.
func (m ColorMatrix) Rows4x5() [20]float64 {
	var out [20]float64
	copy(out[:], m[:20])
	return out
}

// Transform applies m to a non-premultiplied color in [0, 1] and clamps.
func (m ColorMatrix) Transform(r, g, b, a float64) (float64, float64, float64, float64) {
	nr := m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4]
	ng := m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9]
	nb := m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14]
	na := m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19]
	return clamp(nr, 0, 1), clamp(ng, 0, 1), clamp(nb, 0, 1), clamp(na, 0, 1)
}

// BrightnessMatrix offsets RGB by b on a 0..255 scale, b in [-100, 100].
func BrightnessMatrix(b float64) ColorMatrix {
	o := clamp(b, -100, 100) / 255
	return ColorMatrix{
		1, 0, 0, 0, o,
		0, 1, 0, 0, o,
		0, 0, 1, 0, o,
		0, 0, 0, 1, 0,
		0, 0, 0, 0, 1,
	}
}

// HueMatrix rotates hue by degrees around the luminance axis.
func HueMatrix(degrees float64) ColorMatrix {
	const lumR, lumG, lumB = 0.3086, 0.6094, 0.0820
	rad := mod360(degrees) * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return ColorMatrix{
		lumR + c*(1-lumR) + s*(-lumR), lumG + c*(-lumG) + s*(-lumG), lumB + c*(-lumB) + s*(1-lumB), 0, 0,
		lumR + c*(-lumR) + s*0.143, lumG + c*(1-lumG) + s*0.140, lumB + c*(-lumB) + s*(-0.283), 0, 0,
		lumR + c*(-lumR) + s*(-(1 - lumR)), lumG + c*(-lumG) + s*lumG, lumB + c*(1-lumB) + s*lumB, 0, 0,
		0, 0, 0, 1, 0,
		0, 0, 0, 0, 1,
	}
}

// ContrastMatrix scales around mid-gray. v is a percentage: 0 is unchanged,
// -100 is flat gray.
func ContrastMatrix(v float64) ColorMatrix {
	c := math.Max(0, 1+v/100)
	t := (1 - c) / 2
	return ColorMatrix{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
		0, 0, 0, 0, 1,
	}
}

// SaturationMatrix blends toward luminance gray. v is a percentage: 0 is
// unchanged, -100 is grayscale.
func SaturationMatrix(v float64) ColorMatrix {
	s := math.Max(0, 1+v/100)
	sr := (1 - s) * 0.299
	sg := (1 - s) * 0.587
	sb := (1 - s) * 0.114
	return ColorMatrix{
		sr + s, sg, sb, 0, 0,
		sr, sg + s, sb, 0, 0,
		sr, sg, sb + s, 0, 0,
		0, 0, 0, 1, 0,
		0, 0, 0, 0, 1,
	}
}

// hsvBranch selects the channel rotation for an hsv effect value. The value
// is read as a fraction v = |hsv/100| folded into [0, 1]. Branch 1 covers
// (0, 0.33], branch 2 (0.33, 0.66], branch 3 (0.66, 0.99]; anything else is
// branch 0 and leaves colors unchanged.
func hsvBranch(hsv float64) int {
	v := math.Abs(hsv / 100)
	if v > 1 {
		v -= math.Floor(v)
	}
	switch {
	case v == 0:
		return 0
	case v <= 0.33:
		return 1
	case v <= 0.66:
		return 2
	case v <= 0.99:
		return 3
	default:
		return 0
	}
}

// HSVMatrix returns the piecewise channel rotation for an hsv effect value.
// The angle is 3·(hsv·3.6)° and the branch picks which channel pair rotates.
func HSVMatrix(hsv float64) ColorMatrix {
	rad := hsv * 3.6 * 3 * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	switch hsvBranch(hsv) {
	case 1:
		return ColorMatrix{
			1, 0, 0, 0, 0,
			0, c, s, 0, 0,
			0, -s, c, 0, 0,
			0, 0, 0, 1, 0,
			0, 0, 0, 0, 1,
		}
	case 2:
		return ColorMatrix{
			c, 0, s, 0, 0,
			1, 0, 0, 0, 0,
			s, 0, c, 0, 0,
			0, 0, 0, 1, 0,
			0, 0, 0, 0, 1,
		}
	case 3:
		return ColorMatrix{
			c, s, 0, 0, 0,
			-s, c, 0, 0, 0,
			0, 0, 1, 0, 0,
			0, 0, 0, 1, 0,
			0, 0, 0, 0, 1,
		}
	default:
		return IdentityMatrix()
	}
}
