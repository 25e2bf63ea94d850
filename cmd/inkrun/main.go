package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	ink "github.com/TheBigSasha/SwiftInk"
)

const (
	appName     = "inkrun"
	historyFile = ".inkrun_history"
	promptMain  = "?> "
)

var banner = fmt.Sprintf("SwiftInk %s interactive player\nCtrl+C cancels input, Ctrl+D exits. Type /quit to exit, /help for commands.", ink.EngineVersion)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }
func dim(s string) string   { return "\x1b[90m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "play":
		os.Exit(cmdPlay(os.Args[2:]))
	case "version":
		fmt.Println(ink.EngineVersion)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`SwiftInk %s

Usage:
  %s play <file.ink.json>   Load a compiled story and play it interactively.
  %s version                Print the engine version.

`, ink.EngineVersion, appName, appName)
}

func cmdPlay(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s play <file.ink.json>\n", appName)
		return 2
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, args[0], err)
		return 1
	}

	doc, loadErr := ink.LoadDocument(data)
	if loadErr != nil {
		fmt.Fprintln(os.Stderr, red(loadErr.Error()))
		return 1
	}

	engine := ink.NewStoryEngine(doc)

	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		if err := engine.ContinueMaximally(); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}

		printOutput(engine)

		choices := engine.CurrentChoices()
		if len(choices) == 0 {
			if !engine.CanContinue() {
				fmt.Println(dim("— end of story —"))
				return 0
			}
			continue
		}

		for i, c := range choices {
			fmt.Printf("%s %s\n", blue(fmt.Sprintf("%d.", i+1)), c.Text)
		}

		line, ok := readLine(ln, promptMain)
		if !ok {
			fmt.Println()
			return 0
		}
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "/") {
			switch line {
			case "/quit":
				return 0
			case "/stack":
				ink.DumpCallStack(os.Stdout, engine.CallStack())
			case "/help":
				fmt.Println("/quit   exit\n/help   this message")
			default:
				fmt.Println("unknown command, try /help")
			}
			continue
		}

		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(choices) {
			fmt.Println(red("enter a choice number"))
			continue
		}
		ln.AppendHistory(line)
		if err := engine.ChooseChoiceIndex(n - 1); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
		}
	}
}

func printOutput(engine *ink.StoryEngine) {
	text := engine.CurrentText()
	if strings.TrimSpace(text) != "" {
		fmt.Print(green(text))
	}
	for _, tag := range engine.CurrentTags() {
		fmt.Println(dim("# " + tag))
	}
	for _, w := range engine.CurrentWarnings() {
		fmt.Fprintln(os.Stderr, dim(w.Error()))
	}
	for _, e := range engine.CurrentErrors() {
		fmt.Fprintln(os.Stderr, red(e.Error()))
	}
}

func readLine(ln *liner.State, prompt string) (string, bool) {
	line, err := ln.Prompt(prompt)
	if errors.Is(err, io.EOF) {
		return "", false
	}
	if err != nil {
		return "", false
	}
	return line, true
}
