package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"abtest/adapters/excel"
	"abtest/app"
	"abtest/internal"
	"abtest/internal/config"
	"abtest/internal/container"
	"abtest/internal/report"
	"abtest/internal/server"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "abtest",
		Short:         "Statistical comparison of A/B/N experiment variants",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newShareCmd(),
		newServeCmd(),
	)
	return rootCmd
}

func newAnalyzeCmd() *cobra.Command {
	var seed uint64
	var format string
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze experiment results from a text, xlsx or csv file (stdin when omitted)",
		Long: `Analyze experiment results.

Text input lists a metric name followed by one "<variant> <trials> <successes>" line per variant:

  NSR Flights
  Control 1000 100
  Variant-A 1000 120

Spreadsheets need the columns metric, variant, trials and successes.

Example: abtest analyze results.txt --seed 42 --format markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			result, err := analyzeInput(cmd, c, args, seed)
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				if err := excel.NewResultWriter().WriteFile(xlsxPath, result.Metrics); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", xlsxPath)
			}
			return writeResult(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Monte Carlo seed; 0 picks a random one (reported in the output)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, markdown or html")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the results to this xlsx file")

	return cmd
}

func newShareCmd() *cobra.Command {
	shareCmd := &cobra.Command{
		Use:   "share",
		Short: "Encode and decode share tokens",
	}

	encodeCmd := &cobra.Command{
		Use:   "encode [file]",
		Short: "Print the share token for an input file (stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			set, err := c.AnalysisService.ParseText(text)
			if err != nil {
				return err
			}
			token, err := c.ShareService.Encode(set)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	var seed uint64
	var format string
	decodeCmd := &cobra.Command{
		Use:   "decode <token>",
		Short: "Analyze the metrics carried by a share token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			set, err := c.ShareService.Decode(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			result, err := c.AnalysisService.AnalyzeSet(cmd.Context(), set, seed)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), result, format)
		},
	}
	decodeCmd.Flags().Uint64Var(&seed, "seed", 0, "Monte Carlo seed; 0 picks a random one")
	decodeCmd.Flags().StringVar(&format, "format", "json", "Output format: json, markdown or html")

	shareCmd.AddCommand(encodeCmd, decodeCmd)
	return shareCmd
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			if port != "" {
				c.Config.Server.Port = port
			}
			if err := c.Connect(cmd.Context()); err != nil {
				return err
			}
			return server.New(c.Config.Server, c.HTTPApp(), c.Logger).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
	return cmd
}

func newContainer() (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level, _ := internal.ParseLogLevel(cfg.LogLevel)
	// Keep stdout clean for results; the CLI only logs warnings and worse
	if level > internal.LogLevelWarn {
		level = internal.LogLevelWarn
	}
	return container.New(cfg, internal.NewLogger(level))
}

func analyzeInput(cmd *cobra.Command, c *container.Container, args []string, seed uint64) (*app.AnalysisResult, error) {
	if len(args) == 1 && excel.IsSpreadsheet(args[0]) {
		source := excel.NewDataReader(args[0], c.Logger)
		return c.AnalysisService.AnalyzeSource(cmd.Context(), source, seed)
	}

	text, err := readText(cmd, args)
	if err != nil {
		return nil, err
	}
	return c.AnalysisService.AnalyzeText(cmd.Context(), text, seed)
}

func readText(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(raw), nil
}

func writeResult(w io.Writer, result *app.AnalysisResult, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "markdown", "md":
		_, err := io.WriteString(w, report.Markdown("A/B test results", result.Metrics))
		return err
	case "html":
		_, err := w.Write(report.HTML("A/B test results", result.Metrics))
		return err
	default:
		return fmt.Errorf("unknown format %q (want json, markdown or html)", format)
	}
}
