package server

import "github.com/pinhole-run/pinhole/message"

// Render is the terminal result of a Route's Render method: exactly
// one of a Document or a redirect path.
type Render struct {
	isRedirect bool
	document   message.Document
	redirectTo string
}

// RenderDocument builds a Render that terminates a Load with a
// rendered document.
func RenderDocument(doc message.Document) Render {
	return Render{document: doc}
}

// RenderRedirect builds a Render that terminates a Load by instructing
// the client to navigate to path instead.
func RenderRedirect(path string) Render {
	return Render{isRedirect: true, redirectTo: path}
}

// Route is implemented once per screen by applications built on top of
// the core engine. Path returns the pattern the route is registered
// under; Action dispatches a named UI event; Render produces the
// document (or redirect) for a Load at this route.
type Route interface {
	Path() string
	Action(action message.Action, params map[string]string, ctx *Context) error
	Render(params map[string]string, storage message.StateMap) (Render, error)
}
