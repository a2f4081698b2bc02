package layer

import "github.com/pkg/errors"

import "github.com/neurlang/netengine/channel"

// Geometry returns the input and output sizes of a layer of type t fed with a
// height*width map. Maps are taken to be square: the output width always
// equals the output height.
func Geometry(t Type, height, width int) (inH, inW, outH, outW int) {
	inH, inW = height, width
	switch t {
	case TypeConv1x1, TypeConv2x2:
		outH = height
		outW = width
	case TypeConv3x3:
		outH = height - 2
		outW = outH
	case TypeMaxPooling:
		outH = ((height - 2) + 2) / 2
		outW = outH
	}
	return
}

// UpdateDimensions sizes every channel of l from its predecessor prev. The
// first layer of a network is its own predecessor and takes height and width;
// so does a layer whose predecessor has no outputs yet.
func UpdateDimensions(l, prev *Layer, height, width int) error {
	if l == nil || prev == nil {
		return ErrInvalidArgument
	}
	if prev.index != l.index {
		if first := prev.outputs.First(); first != nil {
			height, width = first.Height, first.Width
		}
	}
	inH, inW, outH, outW := Geometry(l.typ, height, width)

	if l.inputs.Len() == 0 || l.outputs.Len() == 0 {
		l.l.Printf("layer %d: no channels to size", l.index)
		return nil
	}

	var err error
	check := func(list *channel.List, kind string, h, w int) {
		list.Each(func(c *channel.Channel) bool {
			if ferr := c.Fits(h, w); ferr != nil {
				err = errors.Wrapf(ferr, "layer %d: %s channel %d to %dx%d", l.index, kind, c.Index, h, w)
			}
			return err == nil
		})
	}
	check(l.inputs, "input", inH, inW)
	if err == nil {
		check(l.outputs, "output", outH, outW)
	}
	if err != nil {
		return err
	}
	// every channel fits, so no Update below can fail
	l.inputs.Each(func(c *channel.Channel) bool {
		c.Update(inH, inW)
		return true
	})
	l.outputs.Each(func(c *channel.Channel) bool {
		c.Update(outH, outW)
		return true
	})
	return nil
}
