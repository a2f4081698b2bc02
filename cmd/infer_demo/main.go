package main

import "context"
import "errors"
import "flag"
import "fmt"
import "log"
import "math/rand"
import "os"
import "os/signal"
import "runtime"
import "sort"

import "github.com/neurlang/netengine/channel"
import "github.com/neurlang/netengine/datasets/mnist"
import "github.com/neurlang/netengine/kernel"
import "github.com/neurlang/netengine/layer"
import "github.com/neurlang/netengine/memory"
import "github.com/neurlang/netengine/net/feedforward"

var errUsage = errors.New("usage")

type options struct {
	size, filters, threads int
	seed                   int64
	backend, logfile, dump string
	images                 string
	image                  int
	timing, mmap, pgo      bool
}

func names() (o []string) {
	for name := range backends {
		o = append(o, name)
	}
	sort.Strings(o)
	return
}

func main() {
	var o options
	flag.IntVar(&o.size, "size", 28, "input height and width")
	flag.IntVar(&o.filters, "filters", 4, "3x3 convolution output channels")
	flag.Int64Var(&o.seed, "seed", 1, "weight and input generator seed")
	flag.StringVar(&o.backend, "backend", "soft", fmt.Sprint("accelerator backend ", names()))
	flag.IntVar(&o.threads, "threads", runtime.NumCPU(), "software engine threads")
	flag.StringVar(&o.logfile, "log", "", "log file (default stderr)")
	flag.BoolVar(&o.timing, "timing", false, "print accelerator time per layer")
	flag.BoolVar(&o.mmap, "mmap", false, "back layers with mapped memory blocks")
	flag.StringVar(&o.dump, "dump", "", "write the layer blocks to this .lzw file after the run")
	flag.BoolVar(&o.pgo, "pgo", false, "collect a cpu profile into default.pgo")
	flag.StringVar(&o.images, "images", "", "MNIST idx3 image file to take the input from (default random)")
	flag.IntVar(&o.image, "image", 0, "index of the image in -images")
	flag.Parse()

	if err := run(o); err != nil {
		println(err.Error())
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(o options) error {
	if o.pgo {
		defer profile()()
	}
	var digit []uint32
	if o.images != "" {
		set, err := mnist.Open(o.images)
		if err != nil {
			return err
		}
		if digit, err = set.Words(o.image); err != nil {
			return err
		}
		if set.Height != set.Width {
			return fmt.Errorf("%w: images must be square, have %dx%d", errUsage, set.Height, set.Width)
		}
		o.size = set.Height
	}
	if o.size < 4 || o.filters < 1 {
		return fmt.Errorf("%w: size must be at least 4 and filters at least 1", errUsage)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if o.logfile != "" {
		f, err := os.Create(o.logfile)
		if err != nil {
			return err
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	open, ok := backends[o.backend]
	if !ok {
		return fmt.Errorf("%w: unknown backend %s - have %v", errUsage, o.backend, names())
	}
	acc, release, err := open(o.threads, logger)
	if err != nil {
		return err
	}
	defer release()

	var mappings []*memory.Mapping
	defer func() {
		for _, m := range mappings {
			m.Close()
		}
	}()
	block := func(words int) ([]uint32, error) {
		if !o.mmap {
			return memory.NewBlock(words), nil
		}
		m, err := memory.MapBlock("", 0, words)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
		return m.Words(), nil
	}

	rng := rand.New(rand.NewSource(o.seed))
	normal := func(scale float64) float32 {
		return float32(rng.NormFloat64() * scale)
	}

	n := o.size
	convH := n - 2
	poolH := convH / 2

	net := feedforward.New(n, n)
	net.SetLogger(logger)

	if digit == nil {
		input := make([]float32, n*n)
		for i := range input {
			input[i] = rng.Float32()
		}
		digit = memory.Words(input)
	}
	words, err := block(o.filters * convH * convH)
	if err != nil {
		return err
	}
	conv := net.NewLayerBlock(layer.TypeConv3x3, channel.ActivationReLU, words)
	if err := conv.AddInputChannel(n, n, digit); err != nil {
		return err
	}
	kernels := make([]channel.Kernel, o.filters)
	alpha := make([]float32, o.filters)
	for i := range kernels {
		for j := range kernels[i].Weights {
			kernels[i].Weights[j] = memory.Word(normal(1.0 / 3))
		}
		kernels[i].Bias = memory.Word(normal(0.1))
		alpha[i] = 0.01
	}
	if err := conv.AddConv3x3Outputs(kernels, alpha, o.filters, convH, convH); err != nil {
		return err
	}

	if words, err = block(o.filters * poolH * poolH); err != nil {
		return err
	}
	pool := net.NewLayerBlock(layer.TypeMaxPooling, channel.ActivationNone, words)
	if err := pool.AddMaxPoolOutputs(2, 2, 0, o.filters, poolH, poolH); err != nil {
		return err
	}

	if words, err = block(2 * poolH * poolH); err != nil {
		return err
	}
	head := net.NewLayerBlock(layer.TypeConv1x1, channel.ActivationSoftmax, words)
	weights := make([]float32, 2*o.filters)
	for i := range weights {
		weights[i] = normal(0.5)
	}
	bias := []float32{normal(0.1), normal(0.1)}
	if err := head.AddConv1x1Outputs(memory.Words(weights), memory.Words(bias), 2, poolH, poolH); err != nil {
		return err
	}

	if err := net.Link(); err != nil {
		return err
	}
	if err := net.Update(); err != nil {
		return err
	}

	sw := layer.NewStopwatch()
	if o.timing {
		net.SetInstrument(sw)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Printf("network %s: %dx%d input, %d filters, kernels %s", net.ID(), n, n, o.filters, kernel.Variant())
	if err := net.Run(ctx, acc); err != nil {
		return err
	}

	if o.timing {
		for i := 0; i < net.Len(); i++ {
			fmt.Printf("layer %d %v: %d channels in %v\n", i, net.GetLayer(i).Type(), sw.Calls(i), sw.Elapsed(i))
		}
	}
	out := net.GetLayer(net.Len() - 1).Outputs()
	a, b := memory.Floats(out.At(0).Data), memory.Floats(out.At(1).Data)
	for i := 0; i < len(a) && i < 8; i++ {
		fmt.Printf("[%d] %.6f %.6f\n", i, a[i], b[i])
	}

	if o.dump != "" {
		return net.WriteCompressedBlocksToFile(o.dump)
	}
	return nil
}
