package model

import "fmt"

// Entity carries the read-only-after-creation lifecycle shared by all
// resource descriptions. A description becomes frozen once it reflects a
// resource successfully created on the remote side, after which every
// mutating setter fails with ErrReadOnly instead of applying silently.
type Entity struct {
	frozen bool
}

// Freeze marks the entity read-only. There is no way back: edit a copy
// instead.
func (e *Entity) Freeze() {
	e.frozen = true
}

func (e *Entity) Frozen() bool {
	return e.frozen
}

// CheckMutable is called at the top of every mutating setter.
func (e *Entity) CheckMutable() (err error) {
	if e.frozen {
		err = fmt.Errorf("%w: mutation rejected", ErrReadOnly)
	}
	return
}
