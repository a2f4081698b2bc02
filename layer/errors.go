package layer

import "fmt"

import "github.com/pkg/errors"

var (
	// ErrAllocation reports that the arena could not hold a channel.
	ErrAllocation = errors.New("layer: allocation failure")
	// ErrInvalidArgument reports a missing instance or buffer, or inconsistent sizes.
	ErrInvalidArgument = errors.New("layer: invalid argument")
	// ErrMissingChannels reports processing of a layer with no inputs or outputs.
	ErrMissingChannels = errors.New("layer: missing channels")
	// ErrHardware reports an accelerator failure.
	ErrHardware = errors.New("layer: hardware failure")
	// ErrUnimplemented names the reserved layer type. Processing it is not an error.
	ErrUnimplemented = errors.New("layer: unimplemented")
)

// HardwareError wraps the failure the accelerator reported for one channel.
// It matches ErrHardware.
type HardwareError struct {
	Layer   int
	Channel int
	Err     error
}

func (e *HardwareError) Error() string {
	return fmt.Sprintf("layer %d: channel %d: %v: %v", e.Layer, e.Channel, ErrHardware, e.Err)
}

func (e *HardwareError) Unwrap() error { return e.Err }

func (e *HardwareError) Is(target error) bool { return target == ErrHardware }
