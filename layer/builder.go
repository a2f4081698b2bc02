package layer

import "github.com/pkg/errors"

import "github.com/neurlang/netengine/channel"
import "github.com/neurlang/netengine/memory"

// AddInputChannel wraps an externally owned buffer as the next input channel.
// No arena space is used.
func (l *Layer) AddInputChannel(height, width int, data []uint32) error {
	if l == nil || data == nil {
		return ErrInvalidArgument
	}
	c, err := channel.New(channel.Input, height, width, data)
	if err != nil {
		return errors.Wrapf(ErrInvalidArgument, "layer %d: input channel %d: %v", l.index, l.inputs.Len(), err)
	}
	c.Activation = l.activation
	l.inputs.Append(c)
	return nil
}

// AddMaxPoolOutputs appends channels output channels of height*width words each.
// Channels built before a failure stay appended.
func (l *Layer) AddMaxPoolOutputs(poolSize, stride, padding, channels, height, width int) error {
	if l == nil || poolSize <= 0 || stride <= 0 || channels < 0 {
		return ErrInvalidArgument
	}
	for n := 0; n < channels; n++ {
		c, err := l.newOutput(height, width)
		if err != nil {
			return err
		}
		c.Activation = l.activation
		c.Pool = channel.PoolParams{Size: poolSize, Stride: stride, Padding: padding}
		l.outputs.Append(c)
	}
	return nil
}

// AddConv1x1Outputs appends channels output channels. weights holds
// len(weights)/channels weights per output channel, one per input channel, and
// is viewed rather than copied. bias holds one word per output channel.
// The layer activation is applied after all channels are computed, so the
// channels themselves carry none.
func (l *Layer) AddConv1x1Outputs(weights, bias []uint32, channels, height, width int) error {
	if l == nil || weights == nil || bias == nil || channels <= 0 {
		return ErrInvalidArgument
	}
	if len(weights)%channels != 0 {
		return errors.Wrapf(ErrInvalidArgument, "layer %d: %d weights over %d channels", l.index, len(weights), channels)
	}
	if len(bias) < channels {
		return errors.Wrapf(ErrInvalidArgument, "layer %d: %d biases for %d channels", l.index, len(bias), channels)
	}
	per := len(weights) / channels
	for n := 0; n < channels; n++ {
		c, err := l.newOutput(height, width)
		if err != nil {
			return err
		}
		c.Activation = channel.ActivationNone
		c.Conv1x1 = &channel.Conv1x1Params{
			Weights: weights[n*per : (n+1)*per : (n+1)*per],
			Bias:    memory.Float(bias[n]),
			Count:   per,
		}
		l.outputs.Append(c)
	}
	return nil
}

// AddConv3x3Outputs appends channels output channels and loads one kernel per
// (output, input) pair: output n takes kernels[n*inputs+i] for input i, in input
// order. Input channels must be present before the call. When the layer
// activation is ReLU, alpha holds the coefficient of every output channel.
func (l *Layer) AddConv3x3Outputs(kernels []channel.Kernel, alpha []float32, channels, height, width int) error {
	if l == nil || kernels == nil || channels < 0 {
		return ErrInvalidArgument
	}
	inputs := l.inputs.Len()
	if l.typ == TypeConv3x3 && len(kernels) < channels*inputs {
		return errors.Wrapf(ErrInvalidArgument, "layer %d: %d kernels for %d outputs over %d inputs", l.index, len(kernels), channels, inputs)
	}
	if l.activation == channel.ActivationReLU && len(alpha) < channels {
		return errors.Wrapf(ErrInvalidArgument, "layer %d: %d alpha values for %d channels", l.index, len(alpha), channels)
	}
	for n := 0; n < channels; n++ {
		c, err := l.newOutput(height, width)
		if err != nil {
			return err
		}
		c.Activation = l.activation
		if l.activation == channel.ActivationReLU {
			c.Alpha = alpha[n]
		}
		if l.typ == TypeConv3x3 {
			for i := 0; i < inputs; i++ {
				c.LoadKernel(kernels[n*inputs+i], l.inputs.At(i))
			}
		}
		l.outputs.Append(c)
	}
	return nil
}

func (l *Layer) newOutput(height, width int) (*channel.Channel, error) {
	if height < 0 || width < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "layer %d: output %dx%d", l.index, height, width)
	}
	buf, err := l.arena.Allocate(height * width)
	if err != nil {
		return nil, errors.Wrapf(ErrAllocation, "layer %d: output channel %d needs %d words, %d available",
			l.index, l.outputs.Len(), height*width, l.arena.Available())
	}
	c, err := channel.New(channel.Output, height, width, buf)
	if err != nil {
		return nil, errors.Wrapf(ErrAllocation, "layer %d: output channel %d: %v", l.index, l.outputs.Len(), err)
	}
	return c, nil
}
