package message

// Document is a complete rendered view: a node tree plus the
// stylesheet its classes reference.
type Document struct {
	Node       Node       `cbor:"node"`
	Stylesheet Stylesheet `cbor:"stylesheet"`
}
