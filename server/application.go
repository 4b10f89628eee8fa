package server

import "github.com/pinhole-run/pinhole/message"

// Application is the immutable, shared route table every connection's
// dispatch loop reads from. It is built once at startup and never
// mutated afterward, so it is safe to share across accept-loop
// goroutines without further synchronisation.
type Application struct {
	routes       []registeredRoute
	capabilities message.CapabilitySet
}

type registeredRoute struct {
	pattern RoutePattern
	route   Route
}

// NewApplication builds an empty Application that will negotiate
// supported (plus message.CoreV1, always included) against whatever a
// connecting client offers in its ClientHello.
func NewApplication(supported message.CapabilitySet) *Application {
	supported.Add(message.CoreV1)
	return &Application{capabilities: supported}
}

// AddRoute registers route under its own Path() pattern. Routes are
// matched in registration order; the first matching pattern wins, so
// more specific patterns should be registered before more general
// ones that would otherwise shadow them.
func (a *Application) AddRoute(route Route) {
	a.routes = append(a.routes, registeredRoute{pattern: CompilePattern(route.Path()), route: route})
}

// SupportedCapabilities returns the capabilities this application will
// offer during ClientHello negotiation.
func (a *Application) SupportedCapabilities() message.CapabilitySet {
	return a.capabilities
}

// match returns the first registered route whose pattern matches path,
// along with the bound path parameters.
func (a *Application) match(path string) (Route, map[string]string, bool) {
	for _, r := range a.routes {
		if params, ok := r.pattern.Matches(path); ok {
			return r.route, params, true
		}
	}
	return nil, nil, false
}
