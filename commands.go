package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"stocktracker/config"
	"stocktracker/dashboard"
	"stocktracker/stock"
)

func serveCmd(configPath *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if port != "" {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := newApp(ctx, cfg)
			defer a.Close()

			return serve(ctx, cfg.Server.Port, dashboard.NewHandler(a.tracker, os.Stdout))
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides config and PORT)")

	return cmd
}

func serve(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Server is running on port %s\n", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func quoteCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "quote <companies>",
		Short: "Print quotes for comma-separated company names",
		Example: `  stocktracker quote "Apple, Microsoft"
  stocktracker quote Infosys "Tata Motors" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := newApp(ctx, cfg)
			defer a.Close()

			result := a.tracker.Run(ctx, strings.Join(args, ","))
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printResult(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func printResult(out io.Writer, result stock.Result) error {
	r := lipgloss.NewRenderer(out)
	cell := r.NewStyle().Padding(0, 1)
	header := cell.Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("24"))
	negative := cell.Foreground(lipgloss.Color("160"))
	warning := r.NewStyle().Foreground(lipgloss.Color("214"))
	failure := r.NewStyle().Foreground(lipgloss.Color("196"))

	if len(result.Quotes) > 0 {
		rows := make([][]string, 0, len(result.Quotes))
		for _, q := range result.Quotes {
			rows = append(rows, []string{q.Symbol, q.Price.StringFixed(2), q.Change.StringFixed(2), q.Volume})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(r.NewStyle().Foreground(lipgloss.Color("241"))).
			Headers("SYMBOL", "PRICE", "CHANGE", "VOLUME").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return header
				case col == 2 && row >= 0 && row < len(result.Quotes) && result.Quotes[row].Change.IsNegative():
					return negative
				default:
					return cell
				}
			})
		if _, err := fmt.Fprintln(out, t.Render()); err != nil {
			return err
		}
	}

	warnings, errs := dashboard.SplitFailures(result.Failures)
	for _, f := range warnings {
		fmt.Fprintln(out, warning.Render(fmt.Sprintf("%s: %s", strings.ToUpper(string(f.Kind)), f.Message)))
	}
	for _, f := range errs {
		fmt.Fprintln(out, failure.Render(fmt.Sprintf("%s: %s", strings.ToUpper(string(f.Kind)), f.Message)))
	}
	return nil
}
