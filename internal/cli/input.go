// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/prefixd/internal/utils"
	"github.com/bastiangx/prefixd/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var wordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

// InputHandler reads prefixes line by line and prints their completions.
// Lines starting with ':' are commands: :cache, :clear, :stats.
type InputHandler struct {
	suggester suggest.Suggester
	rules     utils.PrefixRules
	limit     int
	sorted    bool
	in        io.Reader
	out       io.Writer
	requests  int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(s suggest.Suggester, rules utils.PrefixRules, limit int, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		suggester: s,
		rules:     rules,
		limit:     limit,
		sorted:    true,
		in:        in,
		out:       out,
	}
}

// Start begins the interface loop. It returns nil once the input is
// exhausted.
func (h *InputHandler) Start() error {
	fmt.Fprintln(h.out, "prefixd CLI")
	fmt.Fprintln(h.out, "type a prefix and press Enter to see the suggestions (Ctrl+D to exit):")

	scanner := bufio.NewScanner(h.in)
	for {
		fmt.Fprint(h.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(h.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			h.handleCommand(line)
			continue
		}
		h.handleInput(line)
	}
}

func (h *InputHandler) handleCommand(cmd string) {
	switch cmd {
	case ":cache":
		if !h.suggester.HasCache() {
			fmt.Fprintln(h.out, "cache disabled")
			return
		}
		snapshot := h.suggester.CacheSnapshot()
		fmt.Fprintf(h.out, "%d cached prefixes\n", len(snapshot))
		for prefix, results := range snapshot {
			fmt.Fprintf(h.out, "  %-20q %d results\n", prefix, len(results))
		}
	case ":clear":
		h.suggester.ClearCache()
		fmt.Fprintln(h.out, "cache cleared")
	case ":stats":
		stats := h.suggester.Stats()
		opts := h.suggester.Options()
		fmt.Fprintf(h.out, "terms: %d  nodes: %d  cached: %d  requests: %d\n",
			stats["terms"], stats["nodes"], stats["cacheSize"], h.requests)
		fmt.Fprintf(h.out, "ignore_case: %t  prebuilt: %t  cache: %t\n",
			opts.IgnoreCase, opts.PrebuiltTerms, opts.Cache != nil)
	default:
		fmt.Fprintf(h.out, "unknown command %s\n", cmd)
	}
}

// handleInput validates a prefix, queries the suggester and prints the
// numbered results.
func (h *InputHandler) handleInput(prefix string) {
	h.requests++
	if err := h.rules.Check(prefix); err != nil {
		if errors.Is(err, utils.ErrPrefixFiltered) {
			fmt.Fprintf(h.out, "No results found for prefix: '%s'\n", prefix)
			return
		}
		log.Errorf("%v: %s", err, prefix)
		return
	}

	start := time.Now()
	words, err := h.suggester.FindSuggestions(prefix, h.limit, h.sorted)
	elapsed := time.Since(start)
	if err != nil {
		log.Errorf("Lookup failed for '%s': %v", prefix, err)
		return
	}
	log.Debugf("Took [ %v ] for prefix '%s'", elapsed, prefix)

	if len(words) == 0 {
		fmt.Fprintf(h.out, "No suggestions found for prefix: '%s'\n", prefix)
		return
	}
	fmt.Fprintf(h.out, "Found %d suggestions for prefix '%s':\n", len(words), prefix)
	for i, w := range words {
		fmt.Fprintf(h.out, "%2d. %s\n", i+1, wordStyle.Render(w))
	}
}
