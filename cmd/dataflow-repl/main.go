// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"os"
	"strings"

	"github.com/radik878/cairo-flow/internal/hostconfig"
	"github.com/radik878/cairo-flow/repl"
)

func main() {
	unsafePanic := flag.Bool("unsafe-panic", false, "run the early-terminate rewrite on each function entered")
	panicFunc := flag.String("panic-func", "", "callee the rewrite installs (default: "+hostconfig.DefaultUnsafePanicFunc+")")
	sideEffects := flag.String("side-effect-funcs", "", "comma-separated callees treated as having a side effect even without an output")
	flag.Parse()

	cfg := hostconfig.Config{EnableUnsafePanic: *unsafePanic, UnsafePanicFunc: *panicFunc}
	if *sideEffects != "" {
		cfg.SideEffectFuncs = strings.Split(*sideEffects, ",")
	}

	repl.New(os.Stdin, os.Stdout, cfg).Run()
}
