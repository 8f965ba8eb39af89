package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/rpggio/topics/internal/mcp"
	"github.com/rpggio/topics/internal/transport"
)

func (c *cli) serveCmd() *cobra.Command {
	var (
		projectRoot   string
		transportMode string
		host          string
		port          int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the topic operations as MCP tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("transport") {
				c.cfg.Server.Transport = transportMode
			}
			if cmd.Flags().Changed("host") {
				c.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				c.cfg.Server.Port = port
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx, projectRoot)
		},
	}
	cmd.Flags().StringVar(&projectRoot, "root", ".", "project root holding the topic store")
	cmd.Flags().StringVar(&transportMode, "transport", "", "stdio or http (default from config)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP listen host (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP listen port (default from config)")
	return cmd
}

func (c *cli) serve(ctx context.Context, projectRoot string) error {
	a := c.open(projectRoot)
	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Topics:   a.Topics,
			Reports:  a.Reports,
			Activity: a.Activity,
		},
		CleanupMinutes: c.cfg.Store.CleanupMinutes,
		Version:        Version,
		Logger:         c.logger,
	})

	if c.cfg.Server.Transport == "stdio" {
		c.logger.Info("starting stdio transport", "root", a.Layout.Root())
		if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio server: %w", err)
		}
		return nil
	}

	opts := transport.HTTPOptions{Logger: c.logger}
	if token := c.cfg.Server.AuthToken; token != "" {
		opts.Verifier = transport.NewStaticToken(token, "operator")
	}
	addr := fmt.Sprintf("%s:%d", c.cfg.Server.Host, c.cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewHandler(server, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("server listening", "addr", addr, "root", a.Layout.Root(), "auth", opts.Verifier != nil)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
