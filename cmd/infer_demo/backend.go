package main

import "log"

import "github.com/neurlang/netengine/engine/soft"
import "github.com/neurlang/netengine/layer"

// backend opens an accelerator and returns it with its release function.
type backend func(threads int, l *log.Logger) (layer.Accelerator, func(), error)

var backends = map[string]backend{
	"soft": func(threads int, l *log.Logger) (layer.Accelerator, func(), error) {
		return soft.New(soft.Config{Threads: threads, Logger: l}), func() {}, nil
	},
}
