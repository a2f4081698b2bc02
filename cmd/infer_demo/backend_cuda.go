//go:build cuda

package main

import "log"

import "github.com/neurlang/netengine/engine/cu"
import "github.com/neurlang/netengine/layer"

func init() {
	backends["cuda"] = func(threads int, l *log.Logger) (layer.Accelerator, func(), error) {
		e, err := cu.New(cu.Config{Logger: l})
		if err != nil {
			return nil, nil, err
		}
		return e, func() { e.Close() }, nil
	}
}
