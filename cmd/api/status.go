package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"attachbridge/internal/server"
)

var errNotRunning = errors.New("attach bridge is not running")

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether a bridge is already running on the configured address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runStatus(cmd.Context(), cmd.OutOrStdout(), cfg.Server.Addr())
		},
	}
}

func runStatus(ctx context.Context, out io.Writer, addr string) error {
	if !server.Probe(ctx, addr) {
		fmt.Fprintf(out, "not running on %s\n", addr)
		return errNotRunning
	}

	client := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   2 * time.Second,
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/status", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("query %s: %w", addr, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("read status: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(out, "port %s is taken by something else (HTTP %d)\n", addr, resp.StatusCode)
		return errNotRunning
	}

	fmt.Fprintf(out, "running on %s: %s\n", addr, strings.TrimSpace(string(body)))
	return nil
}
