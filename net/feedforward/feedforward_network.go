// Package feedforward implements a feedforward network type: an ordered chain
// of layers, each feeding the next one.
package feedforward

import "context"
import "io"
import "log"

import "github.com/google/uuid"
import "github.com/pkg/errors"

import "github.com/neurlang/netengine/channel"
import "github.com/neurlang/netengine/layer"
import "github.com/neurlang/netengine/memory"

// FeedforwardNetwork is the feedforward network
type FeedforwardNetwork struct {
	id            uuid.UUID
	height, width int
	layers        []*layer.Layer
	l             *log.Logger
}

// New creates an empty network. The first layer is sized to height*width.
func New(height, width int) *FeedforwardNetwork {
	return &FeedforwardNetwork{
		id:     uuid.New(),
		height: height,
		width:  width,
		l:      log.New(io.Discard, "", 0),
	}
}

// ID returns the identity of the network, used to tell runs apart in logs.
func (f *FeedforwardNetwork) ID() uuid.UUID {
	return f.id
}

// SetLogger sets the logger of the network and of every layer in it, with the
// network identity prepended to the prefix. Nil discards.
func (f *FeedforwardNetwork) SetLogger(logger *log.Logger) {
	if logger == nil {
		f.l = log.New(io.Discard, "", 0)
	} else {
		f.l = log.New(logger.Writer(), logger.Prefix()+f.id.String()[:8]+" ", logger.Flags())
	}
	for _, l := range f.layers {
		l.SetLogger(f.l)
	}
}

// SetInstrument registers i on every layer.
func (f *FeedforwardNetwork) SetInstrument(i layer.Instrument) {
	for _, l := range f.layers {
		l.SetInstrument(i)
	}
}

// NewLayer adds a layer to the end of network, backed by a heap block of
// words words.
func (f *FeedforwardNetwork) NewLayer(typ layer.Type, act channel.Activation, words int) *layer.Layer {
	return f.NewLayerBlock(typ, act, memory.NewBlock(words))
}

// NewLayerBlock adds a layer to the end of network, backed by block.
func (f *FeedforwardNetwork) NewLayerBlock(typ layer.Type, act channel.Activation, block []uint32) *layer.Layer {
	l := layer.New(typ, act, block)
	l.SetIndex(len(f.layers))
	l.SetLogger(f.l)
	f.layers = append(f.layers, l)
	return l
}

// Len returns the number of layers.
func (f *FeedforwardNetwork) Len() int {
	return len(f.layers)
}

// GetLayer returns the n-th layer, or nil.
func (f *FeedforwardNetwork) GetLayer(n int) *layer.Layer {
	if n < 0 || n >= len(f.layers) {
		return nil
	}
	return f.layers[n]
}

// Link makes every layer consume the outputs of the layer before it.
func (f *FeedforwardNetwork) Link() error {
	for i := 1; i < len(f.layers); i++ {
		if err := layer.Link(f.layers[i-1], f.layers[i]); err != nil {
			return errors.Wrapf(err, "network %s: link layer %d to %d", f.id, i-1, i)
		}
	}
	return nil
}

// Update sizes every layer in order from its predecessor. The first layer is
// its own predecessor and takes the size given to New.
func (f *FeedforwardNetwork) Update() error {
	for i, l := range f.layers {
		prev := l
		if i > 0 {
			prev = f.layers[i-1]
		}
		if err := layer.UpdateDimensions(l, prev, f.height, f.width); err != nil {
			return errors.Wrapf(err, "network %s: size layer %d", f.id, i)
		}
	}
	return nil
}

// Run processes the layers in order and stops at the first failure.
func (f *FeedforwardNetwork) Run(ctx context.Context, acc layer.Accelerator) error {
	for i, l := range f.layers {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "network %s: stopped before layer %d", f.id, i)
		}
		if err := l.Process(ctx, acc); err != nil {
			return errors.Wrapf(err, "network %s: layer %d (%v)", f.id, i, l.Type())
		}
	}
	f.l.Printf("network: %d layers done", len(f.layers))
	return nil
}
