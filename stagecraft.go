package stagecraft

import (
	"image/color"
	"math"
	"strings"

	"github.com/gogpu/gg"
)

// Kind distinguishes the two entity variants.
type Kind uint8

const (
	KindSprite  Kind = iota // picture-backed entity
	KindTextBox             // text entity with an optional background box
)

// String returns the object type name used by the authoring tool.
func (k Kind) String() string {
	switch k {
	case KindSprite:
		return "sprite"
	case KindTextBox:
		return "textBox"
	default:
		return "unknown"
	}
}

// RotateMethod is the parent object's rotation convention.
type RotateMethod uint8

const (
	RotateFree     RotateMethod = iota // rotation and direction are independent
	RotateVertical                     // direction flips the entity horizontally
	RotateNone                         // rotation is pinned to zero
)

func (m RotateMethod) String() string {
	switch m {
	case RotateFree:
		return "free"
	case RotateVertical:
		return "vertical"
	case RotateNone:
		return "none"
	default:
		return "unknown"
	}
}

// TextAlign selects the horizontal alignment of a text box.
type TextAlign uint8

const (
	TextAlignCenter TextAlign = iota
	TextAlignLeft
	TextAlignRight
)

// Anchor returns the horizontal anchor fraction a GPU text primitive uses for
// this alignment.
func (a TextAlign) Anchor() float64 {
	switch a {
	case TextAlignLeft:
		return 0
	case TextAlignRight:
		return 1
	default:
		return 0.5
	}
}

func (a TextAlign) String() string {
	switch a {
	case TextAlignLeft:
		return "left"
	case TextAlignRight:
		return "right"
	default:
		return "center"
	}
}

// EngineState is the run state of the surrounding script engine.
type EngineState uint8

const (
	EngineStopped EngineState = iota
	EngineRunning
	EnginePaused
)

// CollisionState tags the last collision side reported for an entity.
type CollisionState uint8

const (
	CollisionNone CollisionState = iota
	CollisionUp
	CollisionStand
	CollisionLeft
	CollisionRight
	CollisionDown
)

// Vec2 is a 2D vector in stage units.
type Vec2 struct {
	X, Y float64
}

// Dimension is the pixel size of a picture plus the scale an entity takes
// when the picture is first applied. A zero scale means "use the entity's
// current scale".
type Dimension struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	ScaleX float64 `json:"scaleX,omitempty" yaml:"scale_x,omitempty"`
	ScaleY float64 `json:"scaleY,omitempty" yaml:"scale_y,omitempty"`
}

// Picture describes an image a sprite entity can show.
type Picture struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	FileURL   string    `json:"fileurl,omitempty" yaml:"file_url,omitempty"`
	Dimension Dimension `json:"dimension" yaml:"dimension"`
}

// Voice holds the text-to-speech settings attached to an entity.
type Voice struct {
	Speed   float64
	Pitch   float64
	Speaker string
	Volume  float64
}

// DefaultVoice returns the voice a new entity starts with.
func DefaultVoice() Voice {
	return Voice{Speaker: "kyuri", Volume: 1}
}

// ToFixed rounds v to the given number of decimal digits. A negative digit
// count returns v unchanged.
func ToFixed(v float64, digits int) float64 {
	if digits < 0 {
		return v
	}
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

// cutDecimal is the rounding applied to serialized numeric fields.
func cutDecimal(v float64) float64 {
	return ToFixed(v, 4)
}

func fixed(v float64, digits []int) float64 {
	if len(digits) == 0 {
		return v
	}
	return ToFixed(v, digits[0])
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// mod360 normalizes degrees to [0, 360).
func mod360(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// ParseColor parses "#rgb", "#rrggbb" and "#rrggbbaa" color tokens. Anything
// else, including "transparent", reports false.
func ParseColor(s string) (color.NRGBA, bool) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.NRGBA{}, false
	}
	switch len(hex) {
	case 3, 6, 8:
	default:
		return color.NRGBA{}, false
	}
	if strings.Trim(hex, "0123456789abcdefABCDEF") != "" {
		return color.NRGBA{}, false
	}
	c, _ := gg.Hex(hex).Color().(color.NRGBA)
	return c, true
}
