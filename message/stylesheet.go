package message

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Alignment positions a Container's children along the cross axis.
type Alignment int

const (
	AlignStart Alignment = iota
	AlignCenter
	AlignEnd
	AlignStretch
)

func (a Alignment) String() string {
	switch a {
	case AlignStart:
		return "Start"
	case AlignCenter:
		return "Center"
	case AlignEnd:
		return "End"
	case AlignStretch:
		return "Stretch"
	default:
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
}

func (a Alignment) MarshalCBOR() ([]byte, error) {
	switch a {
	case AlignStart, AlignCenter, AlignEnd, AlignStretch:
		return marshalUnitVariant(a.String())
	default:
		return nil, fmt.Errorf("message: unknown Alignment %d", int(a))
	}
}

func (a *Alignment) UnmarshalCBOR(data []byte) error {
	name, _, isUnit, err := decodeVariant(data)
	if err != nil {
		return fmt.Errorf("message: decode Alignment: %w", err)
	}
	if !isUnit {
		return fmt.Errorf("message: Alignment must be a bare variant name")
	}
	switch name {
	case "Start":
		*a = AlignStart
	case "Center":
		*a = AlignCenter
	case "End":
		*a = AlignEnd
	case "Stretch":
		*a = AlignStretch
	default:
		return fmt.Errorf("message: unknown Alignment %q", name)
	}
	return nil
}

type styleRuleKind int

const (
	styleColor styleRuleKind = iota
	styleBackgroundColor
	styleFontSize
	styleFontWeight
	styleBorder
	styleShadow
	styleDirection
	styleAlignChildren
	styleWidth
	styleHeight
	styleGap
)

// BorderSpec describes a uniform border.
type BorderSpec struct {
	WidthPx float64 `cbor:"width_px"`
	Color   string  `cbor:"color"`
}

// ShadowSpec describes a drop shadow.
type ShadowSpec struct {
	OffsetXPx float64 `cbor:"offset_x_px"`
	OffsetYPx float64 `cbor:"offset_y_px"`
	BlurPx    float64 `cbor:"blur_px"`
	Color     string  `cbor:"color"`
}

// StyleRule is one property set by a stylesheet class. Rules are
// applied in class-list order, then rule-list order within a class, so
// a later rule of the same kind always overrides an earlier one.
type StyleRule struct {
	kind           styleRuleKind
	color          string
	fontSize       float64
	fontWeight     string
	border         BorderSpec
	shadow         ShadowSpec
	direction      Direction
	alignChildren  Alignment
	dimensionPx    float64
	gapPx          float64
}

func Color(hex string) StyleRule           { return StyleRule{kind: styleColor, color: hex} }
func BackgroundColor(hex string) StyleRule { return StyleRule{kind: styleBackgroundColor, color: hex} }
func FontSize(px float64) StyleRule        { return StyleRule{kind: styleFontSize, fontSize: px} }
func FontWeight(weight string) StyleRule   { return StyleRule{kind: styleFontWeight, fontWeight: weight} }
func Border(spec BorderSpec) StyleRule     { return StyleRule{kind: styleBorder, border: spec} }
func Shadow(spec ShadowSpec) StyleRule     { return StyleRule{kind: styleShadow, shadow: spec} }
func LayoutDirection(d Direction) StyleRule {
	return StyleRule{kind: styleDirection, direction: d}
}
func AlignChildren(a Alignment) StyleRule {
	return StyleRule{kind: styleAlignChildren, alignChildren: a}
}
func Width(px float64) StyleRule  { return StyleRule{kind: styleWidth, dimensionPx: px} }
func Height(px float64) StyleRule { return StyleRule{kind: styleHeight, dimensionPx: px} }
func Gap(px float64) StyleRule    { return StyleRule{kind: styleGap, gapPx: px} }

// Discriminant identifies which property a rule sets, independent of
// its value, for use when resolving a computed style.
func (r StyleRule) Discriminant() int { return int(r.kind) }

func (r StyleRule) MarshalCBOR() ([]byte, error) {
	switch r.kind {
	case styleColor:
		return marshalValueVariant("Color", r.color)
	case styleBackgroundColor:
		return marshalValueVariant("BackgroundColor", r.color)
	case styleFontSize:
		return marshalValueVariant("FontSize", r.fontSize)
	case styleFontWeight:
		return marshalValueVariant("FontWeight", r.fontWeight)
	case styleBorder:
		return marshalValueVariant("Border", r.border)
	case styleShadow:
		return marshalValueVariant("Shadow", r.shadow)
	case styleDirection:
		return marshalValueVariant("Direction", r.direction)
	case styleAlignChildren:
		return marshalValueVariant("AlignChildren", r.alignChildren)
	case styleWidth:
		return marshalValueVariant("Width", r.dimensionPx)
	case styleHeight:
		return marshalValueVariant("Height", r.dimensionPx)
	case styleGap:
		return marshalValueVariant("Gap", r.gapPx)
	default:
		return nil, fmt.Errorf("message: unknown StyleRule kind %d", r.kind)
	}
}

func (r *StyleRule) UnmarshalCBOR(data []byte) error {
	name, payload, isUnit, err := decodeVariant(data)
	if err != nil {
		return fmt.Errorf("message: decode StyleRule: %w", err)
	}
	if isUnit {
		return fmt.Errorf("message: unknown StyleRule unit variant %q", name)
	}

	switch name {
	case "Color":
		var v string
		if err := cbor.Unmarshal(payload, &v); err != nil {
			return err
		}
		*r = Color(v)
	case "BackgroundColor":
		var v string
		if err := cbor.Unmarshal(payload, &v); err != nil {
			return err
		}
		*r = BackgroundColor(v)
	case "FontSize":
		var v float64
		if err := cbor.Unmarshal(payload, &v); err != nil {
			return err
		}
		*r = FontSize(v)
	case "FontWeight":
		var v string
		if err := cbor.Unmarshal(payload, &v); err != nil {
			return err
		}
		*r = FontWeight(v)
	case "Border":
		var v BorderSpec
		if err := cbor.Unmarshal(payload, &v); err != nil {
			return err
		}
		*r = Border(v)
	case "Shadow":
		var v ShadowSpec
		if err := cbor.Unmarshal(payload, &v); err != nil {
			return err
		}
		*r = Shadow(v)
	case "Direction":
		var v Direction
		if err := cbor.Unmarshal(payload, &v); err != nil {
			return err
		}
		*r = LayoutDirection(v)
	case "AlignChildren":
		var v Alignment
		if err := cbor.Unmarshal(payload, &v); err != nil {
			return err
		}
		*r = AlignChildren(v)
	case "Width":
		var v float64
		if err := cbor.Unmarshal(payload, &v); err != nil {
			return err
		}
		*r = Width(v)
	case "Height":
		var v float64
		if err := cbor.Unmarshal(payload, &v); err != nil {
			return err
		}
		*r = Height(v)
	case "Gap":
		var v float64
		if err := cbor.Unmarshal(payload, &v); err != nil {
			return err
		}
		*r = Gap(v)
	default:
		return fmt.Errorf("message: unknown StyleRule variant %q", name)
	}
	return nil
}

// StyleClass is a named, ordered list of rules.
type StyleClass struct {
	Name  string      `cbor:"name"`
	Rules []StyleRule `cbor:"rules"`
}

// Stylesheet is an ordered list of named classes. Node.Classes
// references class names in application order: for two rules of the
// same discriminant, the one reached last in (class order, rule order)
// wins.
type Stylesheet struct {
	Classes []StyleClass `cbor:"classes"`
}

// Resolve computes the effective, deduplicated rule set for a node
// carrying the given class names, applying later classes and later
// same-kind rules over earlier ones.
func (s Stylesheet) Resolve(classNames []string) []StyleRule {
	byName := make(map[string]StyleClass, len(s.Classes))
	for _, c := range s.Classes {
		byName[c.Name] = c
	}

	resolved := make(map[int]StyleRule)
	var order []int
	for _, name := range classNames {
		class, ok := byName[name]
		if !ok {
			continue
		}
		for _, rule := range class.Rules {
			d := rule.Discriminant()
			if _, seen := resolved[d]; !seen {
				order = append(order, d)
			}
			resolved[d] = rule
		}
	}

	out := make([]StyleRule, 0, len(order))
	for _, d := range order {
		out = append(out, resolved[d])
	}
	return out
}
