// Command aclgated runs the ABAC document-database gateway: the HTTP
// surface (httpapi) when invoked as "aclgated serve", or the
// operator/audit MCP tool server (mcptools) when invoked as "aclgated mcp".
// Without a subcommand it prints usage and exits with status 1.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aclgate/aclgate/attachment"
	"github.com/aclgate/aclgate/config"
	"github.com/aclgate/aclgate/gwerrors"
	"github.com/aclgate/aclgate/httpapi"
	"github.com/aclgate/aclgate/mcptools"
	"github.com/aclgate/aclgate/schema"
	"github.com/aclgate/aclgate/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := runMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "-v", "--version":
		fmt.Println("aclgated (dev build)")
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `aclgated — ABAC document-database gateway

Usage:
  aclgated serve -config <path> [-addr :8080]
  aclgated mcp    -config <path>
  aclgated version
  aclgated help`)
}

// loadRegistry reads cfg's schema source and loads it as a schema.Registry,
// validating every registered resource per the scalar-cat/list-diss
// invariant.
func loadRegistry(cfg *config.Config, log gwerrors.Logger) (*schema.Registry, error) {
	data, err := cfg.SchemaSource()
	if err != nil {
		return nil, err
	}
	reg, err := schema.LoadYAML(data)
	if err != nil {
		return nil, err
	}
	reg = reg.WithLogger(log)
	for _, resource := range reg.Resources() {
		if err := reg.Validate(resource); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "aclgate.yaml", "path to the gateway config file")
	addr := fs.String("addr", ":8080", "HTTP listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := gwerrors.NewSlogAdapter(slog.Default())

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	reg, err := loadRegistry(cfg, log)
	if err != nil {
		return err
	}
	resources := reg.Resources()
	for _, resource := range resources {
		if err := reg.Validate(resource); err != nil {
			return err
		}
	}

	// The document database and blob-store themselves are out of scope
	// (spec §1): production deployments supply real store.Executor /
	// store.BlobStore / store.PermissionLookup implementations here. The
	// in-memory reference implementations stand in for local runs and
	// demos.
	exec := store.NewMemoryExecutor()
	blobs := store.NewMemoryBlobStore()
	perms := store.NewMemoryPermissionLookup(nil)

	procs := attachment.NewProcessor(blobs, cfg.AttachmentEnabled(), 0, log)
	srv := httpapi.NewServer(reg, exec, perms, procs, log)

	router := httpapi.NewRouter(srv, resources)

	httpServer := &http.Server{Addr: *addr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("serve: listening", "addr", *addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("serve: shutting down")
		return httpServer.Shutdown(context.Background())
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

func runMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	configPath := fs.String("config", "aclgate.yaml", "path to the gateway config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := gwerrors.NewSlogAdapter(slog.Default())

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.MCPToolsEnabled() {
		return fmt.Errorf("aclgated: mcp-tools is disabled in config")
	}

	reg, err := loadRegistry(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcptools.Run(ctx, reg, log)
}
