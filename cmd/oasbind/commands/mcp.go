package commands

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"github.com/erraggy/oasbind/internal/mcpserver"
)

// SetupMCPFlags creates the FlagSet for the mcp command. It takes no flags;
// the server is configured through OASBIND_MCP_* environment variables.
func SetupMCPFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: oasbind mcp\n\n")
		Writef(output, "Run a Model Context Protocol server over stdio exposing the\n")
		Writef(output, "list_parameters and resolve_parameter tools.\n\n")
		Writef(output, "Environment:\n")
		Writef(output, "  OASBIND_MCP_CACHE_ENABLED       cache compiled documents (default true)\n")
		Writef(output, "  OASBIND_MCP_CACHE_MAX_SIZE      documents kept in the cache (default 10)\n")
		Writef(output, "  OASBIND_MCP_CACHE_FILE_TTL      lifetime of file entries (default 15m)\n")
		Writef(output, "  OASBIND_MCP_CACHE_CONTENT_TTL   lifetime of inline entries (default 15m)\n")
		Writef(output, "  OASBIND_MCP_LIST_LIMIT          default list_parameters page size (default 100)\n")
		Writef(output, "  OASBIND_MAX_BODY_SIZE           largest accepted request body (default 10485760)\n")
		Writef(output, "\nLogs are written to stderr; stdout carries the protocol.\n")
	}
	return fs
}

// HandleMCP executes the mcp command
func HandleMCP(args []string, env Env) error {
	fs := SetupMCPFlags()
	fs.SetOutput(env.Stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return errors.New("mcp command takes no arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx, env.Logger)
}
