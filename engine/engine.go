// Package engine holds what the net engine implementations share: the fault
// they report for malformed transactions and the checks that detect them.
package engine

import "github.com/pkg/errors"

import "github.com/neurlang/netengine/channel"
import "github.com/neurlang/netengine/memory"

// ErrFault is returned for a transaction an engine cannot carry out.
var ErrFault = errors.New("engine: fault")

// Check verifies that every kernel of out is bound to an input channel large
// enough for a valid 3x3 pass producing out.
func Check(out *channel.Channel, in *channel.List) error {
	if out == nil || len(out.Data) < out.Height*out.Width {
		return errors.Wrap(ErrFault, "output channel storage")
	}
	for _, b := range out.Kernels {
		src := in.At(b.Input)
		if src == nil {
			return errors.Wrapf(ErrFault, "channel %d: kernel bound to missing input %d", out.Index, b.Input)
		}
		if src.Height < out.Height+2 || src.Width < out.Width+2 || len(src.Data) < src.Height*src.Width {
			return errors.Wrapf(ErrFault, "channel %d: input %d is %dx%d for a %dx%d output",
				out.Index, b.Input, src.Height, src.Width, out.Height, out.Width)
		}
	}
	return nil
}

// Bias returns the sum of the kernel biases of out.
func Bias(out *channel.Channel) (sum float32) {
	for _, b := range out.Kernels {
		sum += memory.Float(b.Bias)
	}
	return
}
