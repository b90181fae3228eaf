package modularity

import "fmt"

// ModuleInitializeError reports a module that could not be created or
// initialized.
type ModuleInitializeError struct {
	Module string
	Type   string
	Err    error
}

func (e *ModuleInitializeError) Error() string {
	return fmt.Sprintf("modularity: failed to initialize module %s (%s): %v", e.Module, e.Type, e.Err)
}

func (e *ModuleInitializeError) Unwrap() error { return e.Err }
