package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/shopcore/pkg/observability"
)

var (
	verbose    bool
	jsonOutput bool
	logger     *slog.Logger
)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shop",
	Short: "Shop - users and orders over a multi-store core",
	Long: `Shop manages users and orders.

Every change is written to the SQL store first, then projected to the
read model and cache, and finally announced as domain events that the
worker turns into emails, payments and read-model resyncs.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		ctx = observability.WithCorrelationID(ctx, info.correlationID.String())
		ctx = observability.WithOperation(ctx, cmd.CommandPath())
		cmd.SetContext(context.WithValue(ctx, commandContextKey{}, info))
		logger.InfoContext(cmd.Context(), "command start")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.InfoContext(cmd.Context(), "command end",
			observability.DurationKey, time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// ExecuteContext runs the root command and prints any error to stderr.
// The caller turns a non-nil error into exit status 1.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}

// JSONOutput reports whether results should be printed as JSON.
func JSONOutput() bool {
	return jsonOutput
}

// SetJSONOutput toggles JSON output.
func SetJSONOutput(enabled bool) {
	jsonOutput = enabled
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ParseID parses a UUID argument, naming the kind of id in the error.
func ParseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", kind, raw, err)
	}
	return id, nil
}
