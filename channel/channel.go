// Package channel implements the feature map descriptors flowing between layers
package channel

import "errors"

// ErrGeometry is returned for negative heights or widths.
var ErrGeometry = errors.New("channel: invalid geometry")

// ErrCapacity is returned when a geometry does not fit the channel storage.
var ErrCapacity = errors.New("channel: storage too small")

// Role tells whether a channel is read or written by its current owner.
type Role uint8

const (
	Input Role = iota
	Output
)

func (r Role) String() string {
	if r == Input {
		return "input"
	}
	return "output"
}

// State is the processing state of a single channel.
type State uint8

const (
	NotStarted State = iota
	Busy
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Busy:
		return "busy"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// Activation is the activation kind applied to a channel or a whole layer.
type Activation uint8

const (
	ActivationNone Activation = iota
	ActivationReLU
	ActivationSoftmax
)

func (a Activation) String() string {
	switch a {
	case ActivationNone:
		return "none"
	case ActivationReLU:
		return "relu"
	case ActivationSoftmax:
		return "softmax"
	}
	return "unknown"
}

// PoolParams are the max pooling parameters of an output channel.
// Padding is recorded but windows are clipped, never padded.
type PoolParams struct {
	Size, Stride, Padding int
}

// Conv1x1Params hold the weights of a 1x1 output channel: one weight per input
// channel, viewed from the caller's buffer, plus a bias.
type Conv1x1Params struct {
	Weights []uint32
	Bias    float32
	Count   int
}

// Kernel is one net engine kernel entry, in the raw word layout of the nine
// kernel registers and the bias register.
type Kernel struct {
	Weights [9]uint32
	Bias    uint32
}

// Binding applies a kernel to the input channel at position Input.
type Binding struct {
	Kernel
	Input int
}

// Channel is one feature map. Data holds Total words, each an IEEE-754 single.
type Channel struct {
	Index      int
	Role       Role
	State      State
	Height     int
	Width      int
	Total      int
	Activation Activation
	Data       []uint32

	Pool    PoolParams
	Conv1x1 *Conv1x1Params
	Kernels []Binding
	Alpha   float32
}

// New creates a channel of the given geometry over data. Data may be nil and
// attached later; when present it must hold at least height*width words.
func New(role Role, height, width int, data []uint32) (*Channel, error) {
	if height < 0 || width < 0 {
		return nil, ErrGeometry
	}
	c := &Channel{
		Role:   role,
		State:  NotStarted,
		Height: height,
		Width:  width,
		Total:  height * width,
	}
	if data != nil {
		if cap(data) < c.Total {
			return nil, ErrCapacity
		}
		c.Data = data[:c.Total]
	}
	return c, nil
}

// Update changes the geometry in place. The storage is resliced, never
// reallocated, so a size beyond the capacity fixed at allocation fails.
func (c *Channel) Update(height, width int) error {
	if err := c.Fits(height, width); err != nil {
		return err
	}
	total := height * width
	if c.Data != nil {
		c.Data = c.Data[:total]
	}
	c.Height, c.Width, c.Total = height, width, total
	return nil
}

// Fits reports whether Update(height, width) would succeed, without changing c.
func (c *Channel) Fits(height, width int) error {
	if height < 0 || width < 0 {
		return ErrGeometry
	}
	if c.Data != nil && height*width > cap(c.Data) {
		return ErrCapacity
	}
	return nil
}

// LoadKernel attaches one kernel entry applied to input channel in.
func (c *Channel) LoadKernel(k Kernel, in *Channel) {
	c.Kernels = append(c.Kernels, Binding{Kernel: k, Input: in.Index})
}
