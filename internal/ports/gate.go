package ports

// Gate decides whether outbound requests may be sent now.
// When it returns false, requests are queued and re-tested on every
// scheduler tick.
type Gate interface {
	// IsOpen reports whether requests may be sent.
	// It must be cheap and free of side effects: it is called once per send
	// and once per pending request per tick.
	IsOpen() bool
}

// GateFunc adapts an ordinary function to the Gate interface.
type GateFunc func() bool

// IsOpen calls f.
func (f GateFunc) IsOpen() bool {
	return f()
}
