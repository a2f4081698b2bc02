// Package soft emulates the net engine accelerator on the CPU. It performs the
// same work as the hardware: a valid 3x3 correlation of every bound input
// channel, the kernel biases and the optional parametric ReLU.
package soft

import "context"
import "io"
import "log"
import "runtime"
import "sync"

import "github.com/pkg/errors"

import "github.com/neurlang/netengine/channel"
import "github.com/neurlang/netengine/engine"
import "github.com/neurlang/netengine/kernel"
import "github.com/neurlang/netengine/memory"
import "github.com/neurlang/netengine/parallel"

// Config configures the software engine.
type Config struct {
	Threads int         // number of goroutines sharing the output rows (default: number of CPUs)
	Logger  *log.Logger // transaction trace (default: discarded)
}

// Engine is a software net engine. It runs one transaction at a time.
type Engine struct {
	mu      sync.Mutex
	threads int
	l       *log.Logger
	count   uint64
}

// New creates a software engine.
func New(cfg Config) *Engine {
	e := &Engine{threads: cfg.Threads, l: cfg.Logger}
	if e.threads <= 0 {
		e.threads = runtime.NumCPU()
	}
	if e.l == nil {
		e.l = log.New(io.Discard, "", 0)
	}
	e.l.Printf("soft engine: %d threads, %s kernels", e.threads, kernel.Variant())
	return e
}

// Transactions reports how many convolutions completed.
func (e *Engine) Transactions() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

// Convolve computes out from the input channels its kernels are bound to.
// Every input must be (out.Height+2)x(out.Width+2) or larger.
func (e *Engine) Convolve(ctx context.Context, out *channel.Channel, in *channel.List) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "soft: transaction not started")
	}
	if err := engine.Check(out, in); err != nil {
		return err
	}

	dst := out.Data[:out.Height*out.Width]
	kernel.Fill(dst, 0)
	for _, b := range out.Kernels {
		src := in.At(b.Input)
		var k [9]float32
		for i, w := range b.Weights {
			k[i] = memory.Float(w)
		}
		parallel.ForEach(out.Height, e.threads, func() bool { return ctx.Err() != nil }, func(y int) {
			kernel.Conv3x3(dst[y*out.Width:(y+1)*out.Width], src.Data[y*src.Width:], src.Width, 1, out.Width, &k)
		})
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "soft: channel %d aborted", out.Index)
	}
	kernel.AddScalar(dst, engine.Bias(out))
	if out.Activation == channel.ActivationReLU {
		kernel.PReLU(dst, out.Alpha)
	}
	e.count++
	e.l.Printf("soft engine: channel %d %dx%d from %d kernels", out.Index, out.Height, out.Width, len(out.Kernels))
	return nil
}
