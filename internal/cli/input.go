// Package cli implements the interactive console loop feeding typed lines to
// the translator and rendering ranked candidates.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cantoboard/rimekit/internal/logger"
	"github.com/cantoboard/rimekit/pkg/translator"
)

var cliLog = logger.New("cli")

var (
	inputStyle   = lipgloss.NewStyle().Bold(true)
	commentStyle = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#908caa"})
	qualityStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#907aa9", Dark: "#c4a7e7"})
)

// InputHandler reads lines from stdin and prints candidate menus.
type InputHandler struct {
	tr        *translator.Translator
	limit     int
	keystroke bool
}

// NewInputHandler returns a handler querying tr. When keystroke is set, every
// prefix of the line is queried in turn, exercising the incremental path the
// way a live composition would.
func NewInputHandler(tr *translator.Translator, limit int, keystroke bool) *InputHandler {
	return &InputHandler{tr: tr, limit: limit, keystroke: keystroke}
}

// Start runs the read loop until EOF.
func (h *InputHandler) Start() error {
	fmt.Println("type syllables and press enter; ctrl-d to exit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if h.keystroke {
			for i := 1; i <= len(line); i++ {
				h.show(line[:i])
			}
		} else {
			h.show(line)
		}
		h.tr.Reset()
	}
	return scanner.Err()
}

func (h *InputHandler) show(input string) {
	fmt.Printf("input  : [%s]\n", inputStyle.Render(input))
	tn := h.tr.Query(input, translator.Segment{Start: 0, End: len(input)})
	count := 0
	for !tn.Exhausted() && count < h.limit {
		cand := tn.Peek()
		if cand == nil {
			break
		}
		count++
		line := fmt.Sprintf("cand. %d: [%s]", count%10, cand.Text)
		if cand.Preedit != "" {
			line += "  " + cand.Preedit
		}
		if cand.Comment != "" {
			line += "  " + commentStyle.Render(cand.Comment)
		}
		line += "  " + qualityStyle.Render(fmt.Sprintf("quality=%.4f", cand.Quality))
		fmt.Println(line)
		if !tn.Next() {
			break
		}
	}
	if count == 0 {
		cliLog.Debugf("no candidates for %q", input)
		fmt.Println("cand.  : (none)")
	}
}
