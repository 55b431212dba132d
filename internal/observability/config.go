package observability

// Config captures opt-in observability toggles that wire into the server.
// Profiling stays off unless an operator asks for it; the endpoints expose
// internals that have no place on a public listener.
type Config struct {
	EnablePprof bool
}
