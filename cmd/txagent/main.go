package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const (
	exitOK       = 0
	exitUsage    = 1
	exitInternal = 2
)

var (
	cfgFile  string
	verbose  bool
	noColor  bool
	jsonLogs bool

	apiBaseURL    string
	apiKey        string
	model         string
	temperature   float32
	maxIterations int
	parallelTools bool
	storeDriver   string
	storeDSN      string
)

// internalError marks failures that are not the caller's fault.
type internalError struct{ err error }

func (e *internalError) Error() string { return e.err.Error() }
func (e *internalError) Unwrap() error { return e.err }

func internal(err error) error {
	if err == nil {
		return nil
	}
	return &internalError{err: err}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			code = exitInternal
		}
	}()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var ie *internalError
		if errors.As(err, &ie) {
			return exitInternal
		}
		return exitUsage
	}
	return exitOK
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "txagent",
		Short:         "Conversational assistant over client transactions",
		Long:          "txagent answers questions about a client's transactions using a chat model that can only read data through its tools.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ./txagent.yaml, ~/.config/txagent/txagent.yaml, ...)")
	pf.BoolVar(&verbose, "verbose", false, "Enable verbose output (debug mode)")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON lines")
	pf.StringVar(&storeDriver, "driver", "", "Store driver: sqlite, postgres or mysql")
	pf.StringVar(&storeDSN, "dsn", "", "Store data source name")

	rootCmd.AddCommand(newChatCmd(), newQueryCmd(), newMCPServeCmd(), newInitDBCmd())
	return rootCmd
}
