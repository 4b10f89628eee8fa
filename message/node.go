package message

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Direction is the layout axis of a Container's children.
type Direction int

const (
	Row Direction = iota
	Column
)

func (d Direction) String() string {
	switch d {
	case Row:
		return "Row"
	case Column:
		return "Column"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

func (d Direction) MarshalCBOR() ([]byte, error) {
	switch d {
	case Row, Column:
		return marshalUnitVariant(d.String())
	default:
		return nil, fmt.Errorf("message: unknown Direction %d", int(d))
	}
}

func (d *Direction) UnmarshalCBOR(data []byte) error {
	name, _, isUnit, err := decodeVariant(data)
	if err != nil {
		return fmt.Errorf("message: decode Direction: %w", err)
	}
	if !isUnit {
		return fmt.Errorf("message: Direction must be a bare variant name")
	}
	switch name {
	case "Row":
		*d = Row
	case "Column":
		*d = Column
	default:
		return fmt.Errorf("message: unknown Direction %q", name)
	}
	return nil
}

type nodeKind int

const (
	nodeEmpty nodeKind = iota
	nodeContainer
	nodeText
	nodeButton
	nodeCheckbox
	nodeInput
)

// Node is one element of a rendered Document's tree: a container, a
// leaf of text, or an interactive control.
type Node struct {
	kind      nodeKind
	container containerPayload
	text      textPayload
	button    buttonPayload
	checkbox  checkboxPayload
	input     inputPayload
}

type containerPayload struct {
	Direction Direction `cbor:"direction"`
	Children  []Node    `cbor:"children"`
	Classes   []string  `cbor:"classes"`
}

type textPayload struct {
	Text    string   `cbor:"text"`
	Classes []string `cbor:"classes"`
}

type buttonPayload struct {
	Label   string   `cbor:"label"`
	OnClick Action   `cbor:"on_click"`
	Classes []string `cbor:"classes"`
}

type checkboxPayload struct {
	ID       string   `cbor:"id"`
	Label    string   `cbor:"label"`
	Checked  bool     `cbor:"checked"`
	OnChange Action   `cbor:"on_change"`
	Classes  []string `cbor:"classes"`
}

type inputPayload struct {
	ID            string   `cbor:"id"`
	Label         string   `cbor:"label"`
	Password      bool     `cbor:"password"`
	Placeholder   string   `cbor:"placeholder"`
	LabelClasses  []string `cbor:"label_classes"`
	InputClasses  []string `cbor:"input_classes"`
}

// EmptyNode returns a Node rendering nothing.
func EmptyNode() Node { return Node{kind: nodeEmpty} }

// NewContainer builds a Container node laying out children along direction.
func NewContainer(direction Direction, children []Node, classes ...string) Node {
	return Node{kind: nodeContainer, container: containerPayload{
		Direction: direction, Children: children, Classes: classes,
	}}
}

// NewText builds a Text leaf node.
func NewText(text string, classes ...string) Node {
	return Node{kind: nodeText, text: textPayload{Text: text, Classes: classes}}
}

// NewButton builds a Button node that dispatches onClick when activated.
func NewButton(label string, onClick Action, classes ...string) Node {
	return Node{kind: nodeButton, button: buttonPayload{
		Label: label, OnClick: onClick, Classes: classes,
	}}
}

// NewCheckbox builds a Checkbox node that dispatches onChange when toggled.
func NewCheckbox(id, label string, checked bool, onChange Action, classes ...string) Node {
	return Node{kind: nodeCheckbox, checkbox: checkboxPayload{
		ID: id, Label: label, Checked: checked, OnChange: onChange, Classes: classes,
	}}
}

// NewInput builds a text Input node.
func NewInput(id, label string, password bool, placeholder string, labelClasses, inputClasses []string) Node {
	return Node{kind: nodeInput, input: inputPayload{
		ID: id, Label: label, Password: password, Placeholder: placeholder,
		LabelClasses: labelClasses, InputClasses: inputClasses,
	}}
}

func (n Node) MarshalCBOR() ([]byte, error) {
	switch n.kind {
	case nodeEmpty:
		return marshalUnitVariant("Empty")
	case nodeContainer:
		return marshalValueVariant("Container", n.container)
	case nodeText:
		return marshalValueVariant("Text", n.text)
	case nodeButton:
		return marshalValueVariant("Button", n.button)
	case nodeCheckbox:
		return marshalValueVariant("Checkbox", n.checkbox)
	case nodeInput:
		return marshalValueVariant("Input", n.input)
	default:
		return nil, fmt.Errorf("message: unknown Node kind %d", n.kind)
	}
}

func (n *Node) UnmarshalCBOR(data []byte) error {
	name, payload, isUnit, err := decodeVariant(data)
	if err != nil {
		return fmt.Errorf("message: decode Node: %w", err)
	}
	if isUnit {
		if name != "Empty" {
			return fmt.Errorf("message: unknown Node unit variant %q", name)
		}
		*n = EmptyNode()
		return nil
	}

	switch name {
	case "Container":
		var p containerPayload
		if err := cbor.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("message: decode Node::Container: %w", err)
		}
		*n = Node{kind: nodeContainer, container: p}
	case "Text":
		var p textPayload
		if err := cbor.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("message: decode Node::Text: %w", err)
		}
		*n = Node{kind: nodeText, text: p}
	case "Button":
		var p buttonPayload
		if err := cbor.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("message: decode Node::Button: %w", err)
		}
		*n = Node{kind: nodeButton, button: p}
	case "Checkbox":
		var p checkboxPayload
		if err := cbor.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("message: decode Node::Checkbox: %w", err)
		}
		*n = Node{kind: nodeCheckbox, checkbox: p}
	case "Input":
		var p inputPayload
		if err := cbor.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("message: decode Node::Input: %w", err)
		}
		*n = Node{kind: nodeInput, input: p}
	default:
		return fmt.Errorf("message: unknown Node variant %q", name)
	}
	return nil
}

// Kind accessors let application and rendering code inspect a Node
// without exposing its internal representation.

func (n Node) IsEmpty() bool { return n.kind == nodeEmpty }

func (n Node) AsContainer() (direction Direction, children []Node, classes []string, ok bool) {
	if n.kind != nodeContainer {
		return 0, nil, nil, false
	}
	return n.container.Direction, n.container.Children, n.container.Classes, true
}

func (n Node) AsText() (text string, classes []string, ok bool) {
	if n.kind != nodeText {
		return "", nil, false
	}
	return n.text.Text, n.text.Classes, true
}

func (n Node) AsButton() (label string, onClick Action, classes []string, ok bool) {
	if n.kind != nodeButton {
		return "", Action{}, nil, false
	}
	return n.button.Label, n.button.OnClick, n.button.Classes, true
}

func (n Node) AsCheckbox() (id, label string, checked bool, onChange Action, classes []string, ok bool) {
	if n.kind != nodeCheckbox {
		return "", "", false, Action{}, nil, false
	}
	return n.checkbox.ID, n.checkbox.Label, n.checkbox.Checked, n.checkbox.OnChange, n.checkbox.Classes, true
}

func (n Node) AsInput() (id, label string, password bool, placeholder string, labelClasses, inputClasses []string, ok bool) {
	if n.kind != nodeInput {
		return "", "", false, "", nil, nil, false
	}
	return n.input.ID, n.input.Label, n.input.Password, n.input.Placeholder, n.input.LabelClasses, n.input.InputClasses, true
}
