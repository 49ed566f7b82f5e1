package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Banner is printed at the start of an interactive crawl
const Banner = `
  ┌──────────────────────────────────────┐
  │  ohoucrawl · ohou.se content crawler │
  └──────────────────────────────────────┘
`

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stderr
	quiet  bool
	colour = isTerminal(os.Stderr)
)

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes when the
// output is a terminal
func colorize(colorString string) func(string) string {
	return func(text string) string {
		mu.RLock()
		enabled := colour
		mu.RUnlock()
		if !enabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetOutput redirects CLI messages. Colour is enabled only for terminals.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	colour = isTerminal(w)
}

// SetQuietMode suppresses everything except errors
func SetQuietMode(q bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = q
}

// IsQuietMode reports whether quiet mode is active
func IsQuietMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return quiet
}

func printLine(force bool, s string) {
	mu.RLock()
	w, q := out, quiet
	mu.RUnlock()
	if q && !force {
		return
	}
	fmt.Fprintln(w, s)
}

// PrintBanner prints the banner
func PrintBanner() {
	printLine(false, Cyan(Banner))
}

// PrintError prints an error message in red. Errors are shown in quiet mode too.
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		printLine(true, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		printLine(true, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	printLine(false, Green(msg))
}

// PrintInfo prints a label/value pair
func PrintInfo(label string, value string) {
	printLine(false, fmt.Sprintf("%s: %s", Cyan(label), Yellow(value)))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		printLine(false, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		printLine(false, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	printLine(false, Magenta(msg))
}
