// Package layer implements the execution unit of the network: a layer owning
// typed input and output channels, built over a word arena and dispatched to
// software kernels or to the net engine accelerator.
package layer

import "context"
import "io"
import "log"

import "github.com/neurlang/netengine/channel"
import "github.com/neurlang/netengine/memory"

// Type is the computation kind of a layer.
type Type uint8

const (
	TypeMaxPooling Type = iota
	TypeConv1x1
	TypeConv3x3
	// TypeConv2x2 is reserved. Processing it does nothing.
	TypeConv2x2
)

func (t Type) String() string {
	switch t {
	case TypeMaxPooling:
		return "maxpooling"
	case TypeConv1x1:
		return "conv1x1"
	case TypeConv3x3:
		return "conv3x3"
	case TypeConv2x2:
		return "conv2x2"
	}
	return "unknown"
}

// State is observational only; nothing prevents processing a layer twice.
type State uint8

const (
	NotStarted State = iota
	Busy
	Completed
)

func (s State) String() string {
	return channel.State(s).String()
}

// Hook is called around the accelerator work of every output channel.
type Hook func(l *Layer, out *channel.Channel)

// Accelerator performs the 3x3 convolution of one output channel over the
// input list, blocking until the hardware is done or reports a failure.
type Accelerator interface {
	Convolve(ctx context.Context, out *channel.Channel, in *channel.List) error
}

// Layer is one stage of the network.
type Layer struct {
	index      int
	typ        Type
	activation channel.Activation
	state      State

	graph   *channel.Graph
	inputs  *channel.List
	outputs *channel.List
	arena   *memory.Arena

	pre, post  Hook
	instrument Instrument

	l *log.Logger
}

// New creates a layer whose output channels are carved out of block.
func New(typ Type, activation channel.Activation, block []uint32) *Layer {
	g := channel.NewGraph()
	return &Layer{
		typ:        typ,
		activation: activation,
		state:      NotStarted,
		graph:      g,
		inputs:     channel.NewList(g),
		outputs:    channel.NewList(g),
		arena:      memory.NewArena(block),
		l:          log.New(io.Discard, "", 0),
	}
}

// SetLogger sets the logger receiving the dispatch trace. Nil discards.
func (l *Layer) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	l.l = logger
}

// SetHooks registers the pre and post process hooks. Either may be nil.
func (l *Layer) SetHooks(pre, post Hook) {
	l.pre, l.post = pre, post
}

// SetInstrument registers the timing instrument bracketing accelerator calls.
func (l *Layer) SetInstrument(i Instrument) {
	l.instrument = i
}

// SetIndex sets the position of the layer in its network.
func (l *Layer) SetIndex(index int) {
	l.index = index
}

func (l *Layer) Index() int                     { return l.index }
func (l *Layer) Type() Type                     { return l.typ }
func (l *Layer) Activation() channel.Activation { return l.activation }
func (l *Layer) State() State                   { return l.state }
func (l *Layer) Arena() *memory.Arena           { return l.arena }

// Inputs returns the input list. After Link it is the producer's output list.
func (l *Layer) Inputs() *channel.List { return l.inputs }

// Outputs returns the output list owned by this layer.
func (l *Layer) Outputs() *channel.List { return l.outputs }
