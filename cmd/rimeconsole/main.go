/*
Package main implements the rimekit console.

The console is a thin shell around the lookup core: it loads a phrase table,
reads lines of Latin-letter input from stdin and prints the ranked candidates
the translator produces. With -k every prefix of the line is queried in turn,
which is how a live composition drives the engine and what exercises the
incremental search path.

# Data Files

The table file is a binary image tagged "Rime::Table/4.0"; older images are
refused. Its path comes from config.toml or the -table flag.

# Config

Runtime configuration is managed via a config.toml file with [translator] and
[dict] sections. A default configuration is created automatically if one does
not exist.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/cantoboard/rimekit/internal/cli"
	"github.com/cantoboard/rimekit/pkg/config"
	"github.com/cantoboard/rimekit/pkg/dictionary"
	"github.com/cantoboard/rimekit/pkg/translator"
)

const (
	Version = "0.2.0"
	AppName = "rimeconsole"
	gh      = "https://github.com/cantoboard/rimekit"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires config, dictionary and translator together and hands the loop to
// the cli package; it implements no lookup logic itself.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "config.toml", "Path to config.toml file")
	tablePath := flag.String("table", "", "Path to the phrase table image (overrides config)")
	debugMode := flag.Bool("v", false, "Toggle verbose mode")
	keystroke := flag.Bool("k", false, "Feed every prefix of the line, simulating keystrokes")
	limit := flag.Int("limit", 9, "Number of candidates to print per query")

	flag.Parse()

	if *showVersion {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: false,
		})
		styles := log.DefaultStyles()
		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
		logger.SetStyles(styles)
		logger.Print("[rimekit] incremental phrase lookup for syllabic input")
		logger.Print("", "version", Version)
		logger.Print("Find out more at", "gh", gh)
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg, err := config.InitConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	path := cfg.Dict.TablePath
	if *tablePath != "" {
		path = *tablePath
	}

	dict := dictionary.New("main")
	if err := dict.Load(path); err != nil {
		log.Fatalf("Failed to load table %q: %v", path, err)
	}
	log.Debugf("dictionary ready: %d syllables", dict.Prism().Size())

	tr := translator.New(dict, cfg.Translator)
	handler := cli.NewInputHandler(tr, *limit, *keystroke)
	if err := handler.Start(); err != nil {
		log.Fatalf("console error: %v", err)
	}
}
