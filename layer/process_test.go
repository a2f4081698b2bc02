package layer

import "context"
import "errors"
import "math"
import "testing"

import "github.com/neurlang/netengine/channel"
import "github.com/neurlang/netengine/memory"

func TestProcessMaxPooling(t *testing.T) {
	l := New(TypeMaxPooling, channel.ActivationNone, memory.NewBlock(4))
	l.AddInputChannel(4, 4, memory.Words([]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}))
	l.AddMaxPoolOutputs(2, 2, 0, 1, 2, 2)
	if err := l.Process(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	want := []float32{6, 8, 14, 16}
	for i, v := range memory.Floats(l.Outputs().At(0).Data) {
		if v != want[i] {
			t.Errorf("position %d: got %v, want %v", i, v, want[i])
		}
	}
	if l.State() != Completed {
		t.Errorf("state %v, want completed", l.State())
	}
}

func TestProcessMaxPoolingPairs(t *testing.T) {
	l := New(TypeMaxPooling, channel.ActivationNone, memory.NewBlock(2))
	l.AddInputChannel(2, 2, memory.Words([]float32{1, 2, 3, 4}))
	l.AddInputChannel(2, 2, memory.Words([]float32{-4, -3, -2, -1}))
	l.AddMaxPoolOutputs(2, 2, 0, 2, 1, 1)
	if err := l.Process(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if a, b := memory.Float(l.Outputs().At(0).Data[0]), memory.Float(l.Outputs().At(1).Data[0]); a != 4 || b != -1 {
		t.Errorf("got %v %v, want 4 -1", a, b)
	}
}

func TestProcessConv1x1(t *testing.T) {
	l := New(TypeConv1x1, channel.ActivationNone, memory.NewBlock(1))
	l.AddInputChannel(1, 1, memory.Words([]float32{2}))
	l.AddInputChannel(1, 1, memory.Words([]float32{3}))
	if err := l.AddConv1x1Outputs(memory.Words([]float32{0.5, 1}), memory.Words([]float32{1}), 1, 1, 1); err != nil {
		t.Fatal(err)
	}
	// stale content is cleared before accumulation
	l.Outputs().At(0).Data[0] = memory.Word(42)
	if err := l.Process(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if got := memory.Float(l.Outputs().At(0).Data[0]); got != 5 {
		t.Errorf("got %v, want 5", got)
	}
}

func TestProcessConv1x1Softmax(t *testing.T) {
	l := New(TypeConv1x1, channel.ActivationSoftmax, memory.NewBlock(8))
	l.AddInputChannel(2, 2, memory.Words([]float32{1, 1, 1000, 0}))
	// output 0 copies the input, output 1 is constant 1
	if err := l.AddConv1x1Outputs(memory.Words([]float32{1, 0}), memory.Words([]float32{0, 1}), 2, 2, 2); err != nil {
		t.Fatal(err)
	}
	if err := l.Process(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	a := memory.Floats(l.Outputs().At(0).Data)
	b := memory.Floats(l.Outputs().At(1).Data)
	if a[0] != 0.5 || b[0] != 0.5 {
		t.Errorf("(1, 1): got (%v, %v)", a[0], b[0])
	}
	for i := range a {
		if math.IsNaN(float64(a[i])) || math.IsNaN(float64(b[i])) {
			t.Fatalf("position %d: NaN", i)
		}
	}
	if a[2] < 0.999999 || b[2] > 1e-6 {
		t.Errorf("(1000, 1): got (%v, %v)", a[2], b[2])
	}
}

func TestProcessSoftmaxNeedsTwoChannels(t *testing.T) {
	l := New(TypeConv1x1, channel.ActivationSoftmax, memory.NewBlock(1))
	l.AddInputChannel(1, 1, memory.Words([]float32{1}))
	l.AddConv1x1Outputs(memory.Words([]float32{1}), memory.Words([]float32{0}), 1, 1, 1)
	if err := l.Process(context.Background(), nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}

func TestProcessConv1x1MissingWeight(t *testing.T) {
	l := New(TypeConv1x1, channel.ActivationNone, memory.NewBlock(1))
	l.AddInputChannel(1, 1, memory.Words([]float32{1}))
	l.AddInputChannel(1, 1, memory.Words([]float32{1}))
	l.AddConv1x1Outputs(memory.Words([]float32{1}), memory.Words([]float32{0}), 1, 1, 1)
	if err := l.Process(context.Background(), nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}

func TestProcessMissingChannels(t *testing.T) {
	for _, typ := range []Type{TypeMaxPooling, TypeConv1x1, TypeConv3x3} {
		l := New(typ, channel.ActivationNone, memory.NewBlock(4))
		err := l.Process(context.Background(), &recorder{})
		if !errors.Is(err, ErrMissingChannels) {
			t.Errorf("%v: got %v, want ErrMissingChannels", typ, err)
		}
		if l.State() != Completed {
			t.Errorf("%v: state %v", typ, l.State())
		}
	}
}

func TestProcessConv2x2IsNoop(t *testing.T) {
	l := New(TypeConv2x2, channel.ActivationNone, memory.NewBlock(4))
	if err := l.Process(context.Background(), nil); err != nil {
		t.Errorf("got %v, want nil", err)
	}
	if l.State() != Completed {
		t.Errorf("state %v", l.State())
	}
}

type recorder struct {
	calls  []int
	states []channel.State
	fail   int
	events *[]string
}

func (r *recorder) Convolve(ctx context.Context, out *channel.Channel, in *channel.List) error {
	r.calls = append(r.calls, out.Index)
	r.states = append(r.states, out.State)
	if r.events != nil {
		*r.events = append(*r.events, "convolve")
	}
	if r.fail > 0 && len(r.calls) == r.fail {
		return errors.New("dma timeout")
	}
	for i := range out.Data {
		out.Data[i] = memory.Word(float32(in.Len()))
	}
	return nil
}

type events struct {
	log *[]string
}

func (e events) Start(l *Layer, out *channel.Channel) { *e.log = append(*e.log, "start") }
func (e events) End(l *Layer, out *channel.Channel)   { *e.log = append(*e.log, "end") }

func conv3x3Layer(outputs int) *Layer {
	l := New(TypeConv3x3, channel.ActivationNone, memory.NewBlock(outputs*4))
	l.AddInputChannel(4, 4, make([]uint32, 16))
	l.AddConv3x3Outputs(make([]channel.Kernel, outputs), nil, outputs, 2, 2)
	return l
}

func TestProcessConv3x3(t *testing.T) {
	l := conv3x3Layer(3)
	var log []string
	rec := &recorder{events: &log}
	l.SetHooks(func(l *Layer, out *channel.Channel) {
		log = append(log, "pre")
		if out.State != channel.NotStarted {
			t.Errorf("channel %d: pre hook sees state %v", out.Index, out.State)
		}
	}, func(l *Layer, out *channel.Channel) {
		log = append(log, "post")
		if out.State != channel.Completed {
			t.Errorf("channel %d: post hook sees state %v", out.Index, out.State)
		}
	})
	l.SetInstrument(events{&log})
	if err := l.Process(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	if len(rec.calls) != 3 || rec.calls[0] != 0 || rec.calls[2] != 2 {
		t.Errorf("accelerator calls %v", rec.calls)
	}
	for i, s := range rec.states {
		if s != channel.Busy {
			t.Errorf("call %d: channel state %v during offload", i, s)
		}
	}
	want := []string{"pre", "start", "convolve", "end", "post"}
	if len(log) != 3*len(want) {
		t.Fatalf("events %v", log)
	}
	for i, e := range log {
		if e != want[i%len(want)] {
			t.Errorf("event %d: %s, want %s", i, e, want[i%len(want)])
		}
	}
	if memory.Float(l.Outputs().At(1).Data[0]) != 1 {
		t.Errorf("accelerator output not stored")
	}
}

func TestProcessConv3x3HardwareFailure(t *testing.T) {
	l := conv3x3Layer(3)
	rec := &recorder{fail: 2}
	var posts int
	l.SetHooks(nil, func(l *Layer, out *channel.Channel) { posts++ })
	err := l.Process(context.Background(), rec)
	if !errors.Is(err, ErrHardware) {
		t.Fatalf("got %v, want ErrHardware", err)
	}
	var hw *HardwareError
	if !errors.As(err, &hw) || hw.Channel != 1 || hw.Err.Error() != "dma timeout" {
		t.Errorf("unexpected error %#v", err)
	}
	if len(rec.calls) != 2 || posts != 1 {
		t.Errorf("%d calls %d post hooks after failure on the second channel", len(rec.calls), posts)
	}
	if s := l.Outputs().At(1).State; s != channel.Busy {
		t.Errorf("failed channel state %v", s)
	}
	if s := l.Outputs().At(2).State; s != channel.NotStarted {
		t.Errorf("channel after the failure has state %v", s)
	}
	if l.State() != Completed {
		t.Errorf("layer state %v", l.State())
	}
}

func TestProcessConv3x3NeedsAccelerator(t *testing.T) {
	l := conv3x3Layer(1)
	if err := l.Process(context.Background(), nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}

func TestProcessCanRepeat(t *testing.T) {
	l := conv3x3Layer(1)
	rec := &recorder{}
	for i := 0; i < 2; i++ {
		if err := l.Process(context.Background(), rec); err != nil {
			t.Fatal(err)
		}
	}
	if len(rec.calls) != 2 {
		t.Errorf("%d calls over two runs", len(rec.calls))
	}
}

func TestStopwatch(t *testing.T) {
	l := conv3x3Layer(2)
	l.SetIndex(4)
	sw := NewStopwatch()
	l.SetInstrument(sw)
	if err := l.Process(context.Background(), &recorder{}); err != nil {
		t.Fatal(err)
	}
	if sw.Calls(4) != 2 || sw.Calls(0) != 0 {
		t.Errorf("calls %d", sw.Calls(4))
	}
	if sw.Elapsed(4) < 0 {
		t.Errorf("negative elapsed time")
	}
}
