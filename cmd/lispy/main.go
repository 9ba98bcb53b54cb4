package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/rphilander/lispy"
	"github.com/rphilander/lispy/journal"
)

const (
	banner      = "Lisp-like REPL. Type '(quit)' or Ctrl+C to exit."
	promptMain  = "lisp> "
	promptCont  = "...   "
	historyFile = ".lispy_history"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("lispy", flag.ContinueOnError)
	journalPath := fs.String("journal", "", "SQLite journal: replay it on start and record each successful input")
	noHistory := fs.Bool("no-history", false, "do not read or write ~/"+historyFile)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: lispy [-journal path] [-no-history] [file]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	interp := lispy.NewInterpreter(os.Stdout)

	if fs.NArg() == 1 {
		fname := fs.Arg(0)
		if err := loadFile(interp, fname); err != nil {
			fmt.Println("Error while loading file:", err)
			return 1
		}
		fmt.Printf("Loaded %s. Entering REPL with preloaded environment.\n", fname)
	}

	var rec appender
	if *journalPath != "" {
		j, err := journal.Open(*journalPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "journal: %v\n", err)
			return 1
		}
		defer j.Close()
		n, err := j.Replay(interp.Global)
		if err != nil {
			fmt.Fprintf(os.Stderr, "journal: %v\n", err)
			return 1
		}
		if n > 0 {
			fmt.Printf("Replayed %d entries from %s.\n", n, j.Path())
		}
		rec = j
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if !*noHistory {
		home, _ := os.UserHomeDir()
		histPath := filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	fmt.Println(banner)
	repl(ln, interp, rec, os.Stdout)
	return 0
}

// loadFile runs a whole file against interp's global environment.
func loadFile(interp *lispy.Interpreter, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	src := string(data)
	if _, err := interp.Run(src); err != nil {
		return lispy.WrapErrorWithSource(err, src)
	}
	return nil
}

// prompter is the part of *liner.State the loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type appender interface {
	Append(src string) error
}

// repl reads, evaluates and echoes until (quit), EOF or Ctrl+C.
// Successful inputs are appended to rec when it is non-nil.
func repl(p prompter, interp *lispy.Interpreter, rec appender, out io.Writer) {
	for {
		src, err := readInput(p)
		if errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(out, "\nExiting REPL.")
			return
		}
		if err != nil {
			return
		}

		line := strings.TrimSpace(src)
		if line == "" {
			continue
		}
		if line == "(quit)" {
			return
		}
		p.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		result, err := interp.Run(src)
		if err != nil {
			fmt.Fprintln(out, "Error:", err)
			continue
		}
		if rec != nil {
			if err := rec.Append(src); err != nil {
				fmt.Fprintln(out, "Error: journal:", err)
			}
		}
		if result.Kind != lispy.ValNil {
			fmt.Fprintln(out, "=>", result.String())
		}
	}
}

// readInput keeps prompting while the text so far is an incomplete form,
// so a list or string may span several lines.
func readInput(p prompter) (string, error) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if err != nil {
			if err == io.EOF && b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		_, perr := lispy.ParseString(b.String())
		if perr == nil || !lispy.IsIncomplete(perr) {
			return b.String(), nil
		}
	}
}
