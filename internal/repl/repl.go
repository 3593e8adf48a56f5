// Package repl is the interactive calculator prompt.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/msto63/euklid/internal/euklid/render"
	"github.com/msto63/euklid/internal/euklid/service"
	"github.com/msto63/euklid/internal/euklid/store"
)

const prompt = "euklid> "

// Options configures a session
type Options struct {
	Calculator service.Calculator
	Presenter  service.Presenter
	Locale     string
	Steps      bool
	Format     render.Format
	Out        io.Writer
	Version    string
	Timeout    time.Duration

	// History is nil when calculations are not recorded locally
	History     service.HistoryReader
	// HistoryFile keeps typed lines between runs; empty disables it
	HistoryFile string
}

// DefaultHistoryFile returns the line history path in the user's home
func DefaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".euklid_history")
	}
	return filepath.Join(home, ".euklid_history")
}

// commands maps every meta command to its one-line help
var commands = map[string]string{
	":help":      "Show this help",
	":parse":     ":parse 2 3/4       show a value in all its forms",
	":lcd":       ":lcd 1/4, 1/6      least common denominator",
	":compare":   ":compare 1/2 1/3   order values over their common denominator",
	":decimal":   ":decimal 0.375     decimal to fraction",
	":todecimal": ":todecimal 1/3    fraction to decimal, rounded if needed",
	":steps":     "Toggle the step-by-step trace",
	":lang":      ":lang de           switch the message language",
	":output":    ":output json       text, json or yaml",
	":history":   ":history 10        recent calculations",
}

// Session evaluates REPL lines and writes the answers
type Session struct {
	calc    service.Calculator
	history service.HistoryReader
	printer *render.Printer
	timeout time.Duration
}

// NewSession creates a session writing to opts.Out
func NewSession(opts Options) *Session {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	format := opts.Format
	if format == "" {
		format = render.FormatText
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Session{
		calc:    opts.Calculator,
		history: opts.History,
		printer: &render.Printer{
			Out:       out,
			Presenter: opts.Presenter,
			Locale:    opts.Locale,
			Format:    format,
			Steps:     opts.Steps,
		},
		timeout: timeout,
	}
}

// Execute runs one input line and reports whether the user asked to quit
func (s *Session) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case line == "exit" || line == "quit":
		return true
	case strings.HasPrefix(line, ":"):
		s.command(ctx, line)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// A lone decimal is converted rather than calculated
	if !strings.ContainsAny(line, " \t") && strings.Contains(line, ".") {
		s.show(s.calc.FromDecimal(ctx, line))
		return false
	}
	s.show(s.calc.Calculate(ctx, line))
	return false
}

func (s *Session) command(ctx context.Context, line string) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	switch name {
	case ":help", ":h", ":?":
		s.help()
	case ":parse":
		s.show(s.calc.Parse(ctx, arg))
	case ":lcd":
		s.show(s.calc.LCD(ctx, service.SplitList(arg)))
	case ":compare":
		s.show(s.calc.Compare(ctx, service.SplitList(arg)))
	case ":decimal":
		s.show(s.calc.FromDecimal(ctx, arg))
	case ":todecimal":
		s.show(s.calc.ToDecimal(ctx, arg, true))
	case ":steps":
		s.printer.Steps = !s.printer.Steps
		s.say("steps %s", onOff(s.printer.Steps))
	case ":lang":
		if arg == "" {
			s.say("language %s", s.printer.Locale)
			return
		}
		s.printer.Locale = arg
		s.say("language %s", arg)
	case ":output":
		format, err := render.ParseFormat(arg)
		if err != nil {
			s.say("unknown output format %q", arg)
			return
		}
		s.printer.Format = format
		s.say("output %s", format)
	case ":history":
		s.recent(ctx, arg)
	default:
		s.say("unknown command %s, try :help", name)
	}
}

func (s *Session) recent(ctx context.Context, arg string) {
	if s.history == nil {
		s.say("history is not recorded")
		return
	}
	limit := 10
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			s.say("history needs a positive count")
			return
		}
		limit = n
	}
	records, err := s.history.History(ctx, store.Filter{Limit: limit})
	s.show(records, err)
}

// show writes a result or a localized error
func (s *Session) show(v interface{}, err error) {
	if err != nil {
		s.printer.Error(err)
		return
	}
	s.printer.Print(v)
}

func (s *Session) say(format string, args ...interface{}) {
	fmt.Fprintf(s.printer.Out, format+"\n", args...)
}

func (s *Session) help() {
	out := s.printer.Out
	fmt.Fprintln(out, "Type an expression such as 1/2 + 3/4 × 2 and press Enter.")
	fmt.Fprintln(out, "Operators need spaces around them: 3/4 is a fraction, 3 / 4 divides.")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-11s %s\n", name, commands[name])
	}
	fmt.Fprintln(out, "  exit, quit  Leave the prompt")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// complete offers meta commands for the typed prefix
func complete(line string) []string {
	if !strings.HasPrefix(line, ":") || strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for name := range commands {
		if strings.HasPrefix(name, line) {
			out = append(out, name+" ")
		}
	}
	sort.Strings(out)
	return out
}

// Start runs the prompt with line editing and history until the user quits
func Start(ctx context.Context, opts Options) error {
	session := NewSession(opts)
	out := session.printer.Out

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	if opts.HistoryFile != "" {
		if f, err := os.Open(opts.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(opts.HistoryFile); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	fmt.Fprintf(out, "euklid %s, exact fraction arithmetic\n", opts.Version)
	fmt.Fprintln(out, "Type ':help' for commands, 'exit' or Ctrl+D to quit")

	for {
		if ctx.Err() != nil {
			return nil
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if session.Execute(ctx, input) {
			return nil
		}
	}
}
