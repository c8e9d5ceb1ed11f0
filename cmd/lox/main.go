package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"loxscript/lox"
)

const (
	exitOK           = 0
	exitUsage        = 64
	exitCompileError = 65
	exitRuntimeError = 70
)

var errColor = color.New(color.FgRed)

func main() {
	os.Exit(runCLI(os.Args))
}

func runCLI(args []string) int {
	if len(args) >= 2 {
		switch args[1] {
		case "repl":
			if err := runREPL(); err != nil {
				errColor.Fprintln(color.Error, err)
				return 1
			}
			return exitOK
		case "help", "-h", "--help":
			printUsage()
			return exitOK
		}
	}
	if len(args) < 3 {
		printUsage()
		return exitUsage
	}

	source, ok := readSource(args[2])
	if !ok {
		return exitUsage
	}

	switch args[1] {
	case "tokenize":
		return tokenizeCommand(source)
	case "parse":
		return parseCommand(source)
	case "evaluate":
		return evaluateCommand(source)
	case "run":
		return runCommand(source)
	default:
		errColor.Fprintf(color.Error, "unknown command: %s\n", args[1])
		printUsage()
		return exitUsage
	}
}

func readSource(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		errColor.Fprintf(color.Error, "read %s: %v\n", path, err)
		return "", false
	}
	return string(data), true
}

// tokenizeCommand dumps one token per line and reports every lexical
// error before declaring the run failed.
func tokenizeCommand(source string) int {
	tokens, errs := lox.Tokenize(source)
	for _, tok := range tokens {
		fmt.Println(tok)
	}
	reportErrors(errs)
	if len(errs) > 0 {
		return exitCompileError
	}
	return exitOK
}

func parseCommand(source string) int {
	expr, errs := lox.ParseExpression(source)
	if len(errs) > 0 {
		reportErrors(errs)
		return exitCompileError
	}
	fmt.Println(lox.FormatExpression(expr))
	return exitOK
}

func evaluateCommand(source string) int {
	expr, errs := lox.ParseExpression(source)
	if len(errs) > 0 {
		reportErrors(errs)
		return exitCompileError
	}
	interp := lox.NewInterpreter(lox.Config{})
	val, err := interp.Evaluate(expr)
	if err != nil {
		errColor.Fprintln(color.Error, err)
		return exitRuntimeError
	}
	fmt.Println(val.String())
	return exitOK
}

func runCommand(source string) int {
	program, errs := lox.Compile(source)
	if len(errs) > 0 {
		reportErrors(errs)
		return exitCompileError
	}
	interp := lox.NewInterpreter(lox.Config{})
	if err := interp.Run(program); err != nil {
		errColor.Fprintln(color.Error, err)
		return exitRuntimeError
	}
	return exitOK
}

func reportErrors(errs []error) {
	for _, err := range errs {
		errColor.Fprintln(color.Error, err)
	}
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [file]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  tokenize <file>  dump the token stream")
	fmt.Fprintln(os.Stderr, "  parse <file>     dump the expression tree in prefix notation")
	fmt.Fprintln(os.Stderr, "  evaluate <file>  evaluate a single expression and print its value")
	fmt.Fprintln(os.Stderr, "  run <file>       execute a program")
	fmt.Fprintln(os.Stderr, "  repl             start an interactive session")
}
