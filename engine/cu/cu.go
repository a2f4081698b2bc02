//go:build cuda

// Package cu runs the net engine 3x3 convolution on a CUDA device.
package cu

import "context"
import "io"
import "log"
import "sync"
import "unsafe"

import "github.com/pkg/errors"
import "gorgonia.org/cu"

import "github.com/neurlang/netengine/channel"
import "github.com/neurlang/netengine/engine"
import "github.com/neurlang/netengine/kernel"

const block = 16

// Config configures the CUDA engine.
type Config struct {
	Device int         // CUDA device ordinal
	Logger *log.Logger // transaction trace (default: discarded)
}

// Engine is a net engine backed by a CUDA device. It runs one transaction at
// a time.
type Engine struct {
	mu     sync.Mutex
	ctx    *cu.CUContext
	fn     *cu.Function
	stream *cu.Stream
	l      *log.Logger
}

// New creates a context on the configured device and loads the kernel.
func New(cfg Config) (e *Engine, err error) {
	e = &Engine{l: cfg.Logger}
	if e.l == nil {
		e.l = log.New(io.Discard, "", 0)
	}
	device, err := cu.GetDevice(cfg.Device)
	if err != nil {
		return nil, errors.Wrapf(err, "cu: device %d", cfg.Device)
	}
	ctx, err := device.MakeContext(cu.SchedAuto)
	if err != nil {
		return nil, errors.Wrap(err, "cu: make context")
	}
	if err = ctx.Lock(); err != nil {
		ctx.Destroy()
		return nil, errors.Wrap(err, "cu: lock context")
	}
	defer func() {
		ctx.Unlock()
		if err != nil {
			ctx.Destroy()
			e = nil
		}
	}()

	mod, err := cu.LoadData(ptxConv3x3)
	if err != nil {
		return nil, errors.Wrap(err, "cu: load module")
	}
	fn, err := mod.Function("conv3x3")
	if err != nil {
		return nil, errors.Wrap(err, "cu: kernel function")
	}
	stream, err := cu.MakeStream(cu.DefaultStream)
	if err != nil {
		return nil, errors.Wrap(err, "cu: make stream")
	}
	e.ctx, e.fn, e.stream = &ctx, &fn, &stream

	name, _ := device.Name()
	mem, _ := device.TotalMem()
	e.l.Printf("cuda engine: %s, %d bytes, driver %v", name, mem, cu.Version())
	return e, nil
}

// Close releases the device context.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fn, e.stream = nil, nil
	if e.ctx == nil {
		return nil
	}
	e.ctx.Destroy()
	e.ctx = nil
	return nil
}

// Convolve computes out on the device from the input channels its kernels are
// bound to. Bias and activation are applied on the host.
func (e *Engine) Convolve(ctx context.Context, out *channel.Channel, in *channel.List) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctx == nil {
		return errors.Wrap(engine.ErrFault, "cu: engine closed")
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "cu: transaction not started")
	}
	if err := engine.Check(out, in); err != nil {
		return err
	}
	if out.Height*out.Width == 0 {
		return nil
	}
	if err := e.ctx.Lock(); err != nil {
		return errors.Wrap(err, "cu: lock context")
	}
	defer e.ctx.Unlock()

	n := out.Height * out.Width
	dst := out.Data[:n]
	var largest int
	for _, b := range out.Kernels {
		if src := in.At(b.Input); src.Total > largest {
			largest = src.Total
		}
	}

	dDst, err := cu.MemAlloc(int64(n) * 4)
	if err != nil {
		return errors.Wrap(err, "cu: allocate output")
	}
	defer cu.MemFree(dDst)
	if err := cu.MemsetD32(dDst, 0, int64(n)); err != nil {
		return errors.Wrap(err, "cu: clear output")
	}
	if largest > 0 {
		dSrc, err := cu.MemAlloc(int64(largest) * 4)
		if err != nil {
			return errors.Wrap(err, "cu: allocate input")
		}
		defer cu.MemFree(dSrc)
		dK, err := cu.MemAlloc(9 * 4)
		if err != nil {
			return errors.Wrap(err, "cu: allocate kernel")
		}
		defer cu.MemFree(dK)

		inW, outH, outW := uint32(0), uint32(out.Height), uint32(out.Width)
		args := []unsafe.Pointer{
			unsafe.Pointer(&dDst),
			unsafe.Pointer(&dSrc),
			unsafe.Pointer(&dK),
			unsafe.Pointer(&inW),
			unsafe.Pointer(&outH),
			unsafe.Pointer(&outW),
		}
		gx, gy := (out.Width+block-1)/block, (out.Height+block-1)/block
		for _, b := range out.Kernels {
			if err := ctx.Err(); err != nil {
				return errors.Wrapf(err, "cu: channel %d aborted", out.Index)
			}
			src := in.At(b.Input)
			if src.Total == 0 {
				continue
			}
			weights := b.Weights
			if err := cu.MemcpyHtoD(dSrc, unsafe.Pointer(&src.Data[0]), int64(src.Total)*4); err != nil {
				return errors.Wrapf(err, "cu: copy input %d", b.Input)
			}
			if err := cu.MemcpyHtoD(dK, unsafe.Pointer(&weights[0]), 9*4); err != nil {
				return errors.Wrap(err, "cu: copy kernel")
			}
			inW = uint32(src.Width)
			if err := e.fn.LaunchAndSync(gx, gy, 1, block, block, 1, 0, *e.stream, args); err != nil {
				return errors.Wrapf(err, "cu: launch for input %d", b.Input)
			}
		}
	}
	if err := cu.MemcpyDtoH(unsafe.Pointer(&dst[0]), dDst, int64(n)*4); err != nil {
		return errors.Wrap(err, "cu: copy output")
	}
	kernel.AddScalar(dst, engine.Bias(out))
	if out.Activation == channel.ActivationReLU {
		kernel.PReLU(dst, out.Alpha)
	}
	e.l.Printf("cuda engine: channel %d %dx%d from %d kernels", out.Index, out.Height, out.Width, len(out.Kernels))
	return nil
}
