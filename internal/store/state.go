// Package store holds the client-side state containers. Each store owns one
// domain's data plus the lifecycle of its asynchronous operations, so one
// listing's failure never blocks another's render. Stores are constructed
// per application instance and injected; there is no package-level state.
package store

// OpState tracks one asynchronous operation. A new invocation clears the
// previous error and flips Loading immediately; settlement records either
// success or the failure message. Data kept alongside an OpState retains its
// last-good value across rejections.
type OpState struct {
	Loading bool
	Err     string
}

func (s *OpState) start() {
	s.Loading = true
	s.Err = ""
}

func (s *OpState) succeed() {
	s.Loading = false
	s.Err = ""
}

func (s *OpState) fail(err error) {
	s.Loading = false
	s.Err = err.Error()
}

// Settled reports whether the operation has finished and succeeded at least
// once since its last failure.
func (s OpState) Settled() bool {
	return !s.Loading && s.Err == ""
}
