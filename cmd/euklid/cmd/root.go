package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/msto63/euklid/foundation/core/i18n"
	"github.com/msto63/euklid/internal/euklid/render"
	"github.com/msto63/euklid/internal/euklid/server"
	"github.com/msto63/euklid/internal/euklid/service"
	"github.com/msto63/euklid/internal/euklid/store"
	"github.com/msto63/euklid/pkg/core/config"
	"github.com/msto63/euklid/pkg/core/logging"
	"github.com/msto63/euklid/pkg/rational"
)

var (
	cfgFile    string
	verbose    bool
	outputFlag string
	langFlag   string
	stepsFlag  bool
	remoteFlag string
)

// Output streams of the calculation commands
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// errReported marks a failure that was already shown to the user
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "euklid",
	Short: "euklid - exact fraction arithmetic",
	Long: `euklid calculates with fractions exactly. Values are integers (7),
fractions (3/4) or mixed numbers (2 3/4); results are always fully reduced.

Front ends:
  calc, evaluate   - evaluate an expression left to right
  lcd, compare     - common denominators and ordering
  decimal          - decimal to fraction and back
  repl, tui        - interactive use
  serve            - HTTP, WebSocket and gRPC API`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := render.ParseFormat(outputFlag); err != nil {
			return err
		}
		return nil
	},
}

// Execute runs the command line
func Execute() error {
	return execute(os.Args[1:])
}

func execute(args []string) error {
	rootCmd.SetArgs(protectNegatives(args))
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		printError(err)
	}
	return err
}

// negativeOperand matches values such as -3, -3/4, -0.5 and -.5
var negativeOperand = regexp.MustCompile(`^-(\d|\.\d)`)

// protectNegatives moves every argument from the first negative operand on
// behind a "--" separator, so -3/4 is an operand and not a shorthand flag.
// Flags in that tail stay in front of the separator together with their
// values.
func protectNegatives(args []string) []string {
	first := -1
	for i, arg := range args {
		if arg == "--" {
			return args
		}
		if negativeOperand.MatchString(arg) {
			first = i
			break
		}
	}
	if first < 0 {
		return args
	}

	cmd, _, err := rootCmd.Find(args[:first])
	if err != nil {
		cmd = rootCmd
	}
	head := append([]string(nil), args[:first]...)
	var tail []string
	for i := first; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			tail = append(tail, args[i+1:]...)
			i = len(args)
		case len(arg) > 1 && arg[0] == '-' && !negativeOperand.MatchString(arg):
			head = append(head, arg)
			if takesValue(cmd, arg) && i+1 < len(args) {
				i++
				head = append(head, args[i])
			}
		default:
			tail = append(tail, arg)
		}
	}
	return append(append(head, "--"), tail...)
}

// takesValue reports whether flag arg of cmd consumes the next argument
func takesValue(cmd *cobra.Command, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	lookup := func(fs *pflag.FlagSet) *pflag.Flag {
		if strings.HasPrefix(arg, "--") {
			return fs.Lookup(arg[2:])
		}
		if len(arg) == 2 {
			return fs.ShorthandLookup(arg[1:])
		}
		return nil
	}
	f := lookup(cmd.Flags())
	if f == nil {
		f = lookup(cmd.InheritedFlags())
	}
	return f != nil && f.NoOptDefVal == ""
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $EUKLID_CONFIG or ./configs/euklid.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "text", "output format: text, json or yaml")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "", "message language, e.g. en or de (default: config locale)")
	rootCmd.PersistentFlags().BoolVar(&stepsFlag, "steps", false, "show the step-by-step trace")
	rootCmd.PersistentFlags().StringVar(&remoteFlag, "remote", "", "use the gRPC API at host:port instead of calculating locally")
}

func printError(err error) {
	fmt.Fprintf(stderr, "Error: %v\n", err)
}

// loadConfig reads --config, or the environment and default locations.
// Quiet keeps the log to fatal messages unless --verbose is set, so one-shot
// and interactive commands only show their answers.
func loadConfig(quiet bool) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	switch {
	case verbose:
		level = "debug"
	case quiet:
		level = "fatal"
	}
	logging.Configure(level, cfg.Logging.Format, stderr)
	return cfg, nil
}

// locale picks --lang over the configured locale
func locale(cfg *config.Config) string {
	if langFlag != "" {
		return langFlag
	}
	return cfg.General.Locale
}

func engineOptions(cfg *config.Config) rational.Options {
	return rational.Options{
		MaxDecimalPlaces: cfg.Engine.MaxDecimalPlaces,
		Precision:        cfg.Engine.Precision,
	}
}

// openService builds the local service. History is opened only when
// withHistory is set and enabled in cfg.
func openService(cfg *config.Config, withHistory bool) (*service.Service, error) {
	messages, err := i18n.New(i18n.Options{
		DefaultLocale: cfg.General.Locale,
		LocalesDir:    cfg.General.LocalesDir,
	})
	if err != nil {
		return nil, err
	}

	svcCfg := service.Config{
		Engine:   engineOptions(cfg),
		Messages: messages,
	}
	if withHistory && cfg.History.Enabled {
		history, err := store.NewSQLiteHistoryStore(store.SQLiteConfig{Path: cfg.History.Path})
		if err != nil {
			return nil, err
		}
		svcCfg.History = history
	}
	return service.NewService(svcCfg)
}

// session bundles what a one-shot or interactive command calculates with
type session struct {
	cfg     *config.Config
	local   *service.Service
	calc    service.Calculator
	remote  *server.Client
	printer *render.Printer
}

// openSession prepares a calculator: the remote API with --remote, the
// local service otherwise. Messages are always localized locally.
func openSession() (*session, error) {
	cfg, err := loadConfig(true)
	if err != nil {
		return nil, err
	}
	local, err := openService(cfg, remoteFlag == "")
	if err != nil {
		return nil, err
	}
	format, err := render.ParseFormat(outputFlag)
	if err != nil {
		local.Close()
		return nil, err
	}

	s := &session{
		cfg:   cfg,
		local: local,
		calc:  local,
		printer: &render.Printer{
			Out:       stdout,
			Presenter: local,
			Locale:    locale(cfg),
			Format:    format,
			Steps:     stepsFlag,
		},
	}
	if remoteFlag != "" {
		client, err := server.NewClient(remoteFlag)
		if err != nil {
			local.Close()
			return nil, err
		}
		s.remote = client
		s.calc = client
	}
	return s, nil
}

// history returns the local history, or nil when there is none
func (s *session) history() service.HistoryReader {
	if s.remote != nil || !s.local.HistoryEnabled() {
		return nil
	}
	return s.local
}

func (s *session) close() {
	if s.remote != nil {
		s.remote.Close()
	}
	s.local.Close()
}

// show prints a result, or the localized error and errReported
func (s *session) show(v interface{}, err error) error {
	if err != nil {
		s.printer.Out = stderr
		if perr := s.printer.Error(err); perr != nil {
			return perr
		}
		return errReported
	}
	return s.printer.Print(v)
}

// withSession runs fn against an open session
func withSession(fn func(s *session) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}

// commandTimeout bounds one-shot calculations
const commandTimeout = 30 * time.Second
