// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/radik878/cairo-flow/internal/analysis"
	"github.com/radik878/cairo-flow/internal/diagnostics"
	"github.com/radik878/cairo-flow/internal/hostconfig"
	"github.com/radik878/cairo-flow/internal/ir"
	"github.com/radik878/cairo-flow/internal/irtext"
)

func main() {
	unsafePanic := flag.Bool("unsafe-panic", false, "run the early-terminate rewrite (insert an unconditional trap where no return is reachable)")
	panicFunc := flag.String("panic-func", "", "callee the rewrite installs (default: "+hostconfig.DefaultUnsafePanicFunc+")")
	sideEffects := flag.String("side-effect-funcs", "", "comma-separated callees treated as having a side effect even without an output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dataflow [flags] <file.flow>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	cfg := hostconfig.Config{
		EnableUnsafePanic: *unsafePanic,
		UnsafePanicFunc:   *panicFunc,
	}
	if *sideEffects != "" {
		cfg.SideEffectFuncs = strings.Split(*sideEffects, ",")
	}

	if err := run(path, string(source), cfg); err != nil {
		os.Exit(1)
	}
}

func run(path, source string, cfg hostconfig.Config) error {
	reporter := diagnostics.NewReporter(path, source)

	fns, err := irtext.ParseProgram(path, source)
	if err != nil {
		color.Red("%s", err)
		return err
	}

	for _, fn := range fns {
		if err := processFunction(fn, cfg, reporter); err != nil {
			return err
		}
	}

	color.Green("✅ processed %s (%d function(s))", path, len(fns))
	return nil
}

func processFunction(fn *ir.LoweredFunction, cfg hostconfig.Config, reporter *diagnostics.Reporter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*ir.StructuralError)
			if !ok {
				panic(r)
			}
			fmt.Print(reporter.Format(diagnostics.FromStructuralError(se)))
			err = se
		}
	}()

	if cfg.EnableUnsafePanic {
		fixes := analysis.RewriteUnsafePanic(fn, cfg.PanicFunc(), cfg.SideEffectFuncs...)
		for _, d := range diagnostics.RewriteSummary(fixes) {
			fmt.Print(reporter.Format(d))
		}
	}

	fmt.Println(ir.Print(fn))

	equality := analysis.NewForwardDriver(fn, analysis.EqualityAnalysis{}).Run()
	for i, info := range equality {
		if info == nil {
			continue
		}
		state := info.(*analysis.EqualityState)
		fmt.Printf("block%d exit: %s\n", i, state.Dump())
	}

	return nil
}
