package recognition

import "fmt"

// ConfigurationError is fatal at session start: a missing model, label map
// or collaborator means recognition cannot begin at all.
type ConfigurationError struct {
	Op  string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("configuration error (%s)", e.Op)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DeviceError is fatal to a running session but not to the process: the
// frame source could not be opened or failed mid-session. The operator must
// start a new session.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("device error (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("device error (%s)", e.Op)
}

func (e *DeviceError) Unwrap() error { return e.Err }
