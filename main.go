// This is the main-driver for our compiler.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/afnanksalal/frag/compiler"
	"github.com/afnanksalal/frag/config"
	"github.com/afnanksalal/frag/diag"
	"github.com/afnanksalal/frag/instructions"
	"github.com/afnanksalal/frag/lexer"
	"github.com/afnanksalal/frag/parser"
)

func main() {

	//
	// Look for flags.
	//
	debug := flag.Bool("debug", false, "Dump the parsed AST before running.")
	trace := flag.Bool("trace", false, "Dump the lowered instruction trace before running.")
	configPath := flag.String("config", ".fragrc.yaml", "Path to an optional YAML config file.")
	flag.Parse()

	//
	// Ensure we have a single source file as our argument.
	//
	if len(flag.Args()) != 1 {
		fmt.Println("Usage: frag <file>")
		os.Exit(1)
	}
	path := flag.Args()[0]

	printer := diag.New()

	if _, statErr := os.Stat(*configPath); os.IsNotExist(statErr) {
		printer.Info("no config file at %s, using defaults", *configPath)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		printer.Error("reading config %s: %s", *configPath, err)
		os.Exit(1)
	}
	if *debug {
		cfg.Debug = true
	}
	if *trace {
		cfg.Trace = true
	}

	//
	// Read the source file.
	//
	src, err := os.ReadFile(path)
	if err != nil {
		printer.Error("reading %s: %s", path, err)
		os.Exit(1)
	}

	if err := run(string(src), cfg, printer); err != nil {
		printer.Error("%s", err)
		os.Exit(1)
	}
}

// run lexes, parses, compiles and executes src, printing the final
// result line on success.
func run(src string, cfg config.Config, printer *diag.Printer) error {
	l := lexer.New(src)
	p := parser.New(l)

	prog, err := p.ParseProgram()
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			return fmt.Errorf("parse error: %s", perr.Error())
		}
		return err
	}

	if cfg.Debug {
		printer.Trace(spew.Sdump(prog))
	}

	jit, err := compiler.New()
	if err != nil {
		return err
	}
	defer jit.Close()
	jit.SetStackSlotBytes(cfg.StackSlotBytes)

	var tr *instructions.Trace
	if cfg.Trace {
		tr = &instructions.Trace{}
		jit.SetTrace(tr)
	}

	result, err := jit.CompileAndRun(prog)
	if err != nil {
		return err
	}

	if tr != nil {
		for _, ins := range tr.Instructions() {
			printer.Trace(ins.String())
		}
	}

	fmt.Printf("Execution result: %d\n", result)
	return nil
}
