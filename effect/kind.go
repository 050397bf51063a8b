package effect

import "fmt"

// Kind identifies an effect family.
type Kind int

const (
	KindPulse Kind = iota + 1
	KindFade
	KindTranslate
)

func (k Kind) String() string {
	switch k {
	case KindPulse:
		return "pulse"
	case KindFade:
		return "fade"
	case KindTranslate:
		return "translate"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Property is an animatable property of a target.
type Property int

const (
	PropertyScale Property = iota + 1
	PropertyOpacity
	PropertyTranslationX
	PropertyTranslationY
)

func (p Property) String() string {
	switch p {
	case PropertyScale:
		return "scale"
	case PropertyOpacity:
		return "opacity"
	case PropertyTranslationX:
		return "translation_x"
	case PropertyTranslationY:
		return "translation_y"
	default:
		return fmt.Sprintf("Property(%d)", int(p))
	}
}

// DefaultValue is the resting value of p on a freshly created target.
func (p Property) DefaultValue() float64 {
	switch p {
	case PropertyScale, PropertyOpacity:
		return 1
	default:
		return 0
	}
}

// PropertyValue pairs a property with a value.
type PropertyValue struct {
	Property Property
	Value    float64
}
