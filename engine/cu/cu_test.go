//go:build cuda

package cu

import "context"
import "testing"

import "github.com/neurlang/netengine/channel"
import "github.com/neurlang/netengine/engine/soft"
import "github.com/neurlang/netengine/memory"

func job(t *testing.T) (*channel.Channel, *channel.List) {
	g := channel.NewGraph()
	in := channel.NewList(g)
	for i := 0; i < 2; i++ {
		data := make([]uint32, 25)
		for j := range data {
			data[j] = memory.Word(float32(j*(i+1)) - 7)
		}
		ch, err := channel.New(channel.Input, 5, 5, data)
		if err != nil {
			t.Fatal(err)
		}
		in.Append(ch)
	}
	out, err := channel.New(channel.Output, 3, 3, make([]uint32, 9))
	if err != nil {
		t.Fatal(err)
	}
	out.Activation = channel.ActivationReLU
	out.Alpha = 0.25
	for i := 0; i < 2; i++ {
		var k channel.Kernel
		for j := range k.Weights {
			k.Weights[j] = memory.Word(float32(j-4) * 0.5)
		}
		k.Bias = memory.Word(float32(i) - 1.5)
		out.LoadKernel(k, in.At(i))
	}
	return out, in
}

func TestConvolveMatchesSoftware(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Skip("no cuda device:", err)
	}
	defer e.Close()

	want, in := job(t)
	if err := soft.New(soft.Config{Threads: 1}).Convolve(context.Background(), want, in); err != nil {
		t.Fatal(err)
	}
	got, in := job(t)
	if err := e.Convolve(context.Background(), got, in); err != nil {
		t.Fatal(err)
	}
	for i := range want.Data {
		if got.Data[i] != want.Data[i] {
			t.Errorf("element %d: %v != %v", i, memory.Float(got.Data[i]), memory.Float(want.Data[i]))
		}
	}
}

func TestClosed(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Skip("no cuda device:", err)
	}
	e.Close()
	out, in := job(t)
	if err := e.Convolve(context.Background(), out, in); err == nil {
		t.Errorf("closed engine accepted a job")
	}
}

func TestEmptyOutput(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Skip("no cuda device:", err)
	}
	defer e.Close()

	g := channel.NewGraph()
	in := channel.NewList(g)
	src, err := channel.New(channel.Input, 2, 2, make([]uint32, 4))
	if err != nil {
		t.Fatal(err)
	}
	in.Append(src)
	out, err := channel.New(channel.Output, 0, 0, make([]uint32, 0))
	if err != nil {
		t.Fatal(err)
	}
	out.LoadKernel(channel.Kernel{}, in.At(0))
	if err := e.Convolve(context.Background(), out, in); err != nil {
		t.Errorf("0x0 output: %v", err)
	}
}
