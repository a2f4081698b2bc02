package layer

import "context"

import "github.com/pkg/errors"

import "github.com/neurlang/netengine/channel"
import "github.com/neurlang/netengine/kernel"
import "github.com/neurlang/netengine/memory"

// Process runs the layer. The accelerator is only used by TypeConv3x3 layers
// and may be nil otherwise. The layer is Busy during the call and Completed
// afterwards, whether or not the call failed.
func (l *Layer) Process(ctx context.Context, acc Accelerator) (err error) {
	if l == nil {
		return ErrInvalidArgument
	}
	var h, w int
	if first := l.outputs.First(); first != nil {
		h, w = first.Height, first.Width
	}
	l.l.Printf("layer %d: process %v %dx%d arena used %d available %d",
		l.index, l.typ, h, w, l.arena.Used(), l.arena.Available())

	l.state = Busy
	switch l.typ {
	case TypeMaxPooling:
		err = l.maxPooling()
	case TypeConv1x1:
		err = l.conv1x1()
	case TypeConv3x3:
		err = l.conv3x3(ctx, acc)
	case TypeConv2x2:
		l.l.Printf("layer %d: %v: %v", l.index, l.typ, ErrUnimplemented)
	default:
		err = errors.Wrapf(ErrInvalidArgument, "layer %d: type %d", l.index, l.typ)
	}
	l.state = Completed
	return err
}

func (l *Layer) missing() error {
	if l.inputs.Len() == 0 || l.outputs.Len() == 0 {
		return errors.Wrapf(ErrMissingChannels, "layer %d: %d inputs, %d outputs", l.index, l.inputs.Len(), l.outputs.Len())
	}
	return nil
}

// maxPooling pools input i into output i for every pair of channels.
func (l *Layer) maxPooling() error {
	if err := l.missing(); err != nil {
		return err
	}
	for i := 0; i < l.inputs.Len() && i < l.outputs.Len(); i++ {
		in, out := l.inputs.At(i), l.outputs.At(i)
		if len(in.Data) < in.Height*in.Width || len(out.Data) < out.Height*out.Width {
			return errors.Wrapf(ErrInvalidArgument, "layer %d: channel %d storage smaller than its map", l.index, i)
		}
		kernel.MaxPool(out.Data, in.Data, in.Height, in.Width, out.Height, out.Width, out.Pool.Size, out.Pool.Stride)
	}
	return nil
}

// conv1x1 computes every output as the per pixel weighted sum of all inputs
// plus bias, then applies the layer softmax across the first two outputs.
func (l *Layer) conv1x1() error {
	if err := l.missing(); err != nil {
		return err
	}
	var err error
	l.outputs.Each(func(out *channel.Channel) bool {
		p := out.Conv1x1
		if p == nil {
			err = errors.Wrapf(ErrInvalidArgument, "layer %d: output channel %d has no weights", l.index, out.Index)
			return false
		}
		kernel.Fill(out.Data, 0)
		l.inputs.Each(func(in *channel.Channel) bool {
			if in.Index >= len(p.Weights) {
				err = errors.Wrapf(ErrInvalidArgument, "layer %d: output channel %d has %d weights, input %d has none",
					l.index, out.Index, len(p.Weights), in.Index)
				return false
			}
			if len(in.Data) < len(out.Data) {
				err = errors.Wrapf(ErrInvalidArgument, "layer %d: input channel %d holds %d words, output needs %d",
					l.index, in.Index, len(in.Data), len(out.Data))
				return false
			}
			kernel.MulAdd(out.Data, in.Data, memory.Float(p.Weights[in.Index]))
			return true
		})
		if err != nil {
			return false
		}
		kernel.AddScalar(out.Data, p.Bias)
		return true
	})
	if err != nil {
		return err
	}
	if l.activation == channel.ActivationSoftmax {
		return l.softmax()
	}
	return nil
}

// softmax normalizes the first two output channels against each other.
func (l *Layer) softmax() error {
	if l.outputs.Len() < 2 {
		return errors.Wrapf(ErrInvalidArgument, "layer %d: softmax needs two output channels, have %d", l.index, l.outputs.Len())
	}
	a, b := l.outputs.At(0), l.outputs.At(1)
	if len(a.Data) < a.Total || len(b.Data) < a.Total {
		return errors.Wrapf(ErrInvalidArgument, "layer %d: softmax channels differ in size", l.index)
	}
	kernel.Softmax2(a.Data, b.Data, a.Height, a.Width)
	return nil
}

// conv3x3 hands every output channel to the accelerator in turn, one
// transaction at a time.
func (l *Layer) conv3x3(ctx context.Context, acc Accelerator) error {
	if acc == nil {
		return errors.Wrapf(ErrInvalidArgument, "layer %d: no accelerator", l.index)
	}
	if err := l.missing(); err != nil {
		return err
	}
	for i := 0; i < l.outputs.Len(); i++ {
		out := l.outputs.At(i)
		if l.pre != nil {
			l.pre(l, out)
		}
		out.State = channel.Busy
		if l.instrument != nil {
			l.instrument.Start(l, out)
		}
		err := acc.Convolve(ctx, out, l.inputs)
		if l.instrument != nil {
			l.instrument.End(l, out)
		}
		if err != nil {
			return &HardwareError{Layer: l.index, Channel: out.Index, Err: err}
		}
		out.State = channel.Completed
		if l.post != nil {
			l.post(l, out)
		}
	}
	return nil
}
