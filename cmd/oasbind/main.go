package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/erraggy/oasbind"
	"github.com/erraggy/oasbind/cmd/oasbind/commands"
	"github.com/erraggy/oasbind/internal/logging"
)

// knownCommands lists the commands suggestCommand can propose.
var knownCommands = []string{"params", "resolve", "serve", "mcp", "version", "help"}

func main() {
	os.Exit(run(os.Args[1:], commands.DefaultEnv()))
}

// run dispatches args to a command and returns the process exit code.
func run(args []string, env commands.Env) int {
	args, level, format, err := globalFlags(args)
	if err != nil {
		_, _ = fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(args) < 1 {
		printUsage(env.Stderr)
		return 1
	}

	logger, err := logging.New(env.Stderr, level, format)
	if err != nil {
		_, _ = fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		return 1
	}
	env.Logger = logging.NewZerologAdapter(logger)

	command, rest := args[0], args[1:]
	var handler func([]string, commands.Env) error
	switch command {
	case "version", "-v", "--version":
		handler = commands.HandleVersion
	case "help", "-h", "--help":
		printUsage(env.Stdout)
		return 0
	case "params":
		handler = commands.HandleParams
	case "resolve":
		handler = commands.HandleResolve
	case "serve":
		handler = commands.HandleServe
	case "mcp":
		handler = commands.HandleMCP
	default:
		_, _ = fmt.Fprintf(env.Stderr, "Unknown command: %s\n", command)
		if s := suggestCommand(command); s != "" {
			_, _ = fmt.Fprintf(env.Stderr, "Did you mean '%s'?\n", s)
		}
		_, _ = fmt.Fprintln(env.Stderr)
		printUsage(env.Stderr)
		return 1
	}

	if err := handler(rest, env); err != nil {
		// The resolution problem has already been written.
		if !errors.Is(err, commands.ErrResolutionFailed) {
			_, _ = fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// globalFlags strips --log-level and --log-format from the front of args.
// OASBIND_LOG_LEVEL and OASBIND_LOG_FORMAT supply the defaults.
func globalFlags(args []string) (rest []string, level, format string, err error) {
	level = os.Getenv("OASBIND_LOG_LEVEL")
	format = os.Getenv("OASBIND_LOG_FORMAT")

	for len(args) > 0 && strings.HasPrefix(args[0], "--log-") {
		name, value, hasValue := strings.Cut(args[0], "=")
		if !hasValue {
			if len(args) < 2 {
				return nil, "", "", fmt.Errorf("flag %s requires a value", name)
			}
			value = args[1]
			args = args[1:]
		}
		switch name {
		case "--log-level":
			level = value
		case "--log-format":
			format = value
		default:
			return nil, "", "", fmt.Errorf("unknown flag %s", name)
		}
		args = args[1:]
	}
	return args, level, format, nil
}

// suggestCommand returns the known command closest to input, or "" when
// none is within an edit distance of 2.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, cmd := range knownCommands {
		if d := levenshtein(input, cmd); d < bestDist {
			best, bestDist = cmd, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintf(w, `oasbind v%s - OpenAPI request parameter resolution

Usage:
  oasbind [--log-level level] [--log-format text|json] <command> [options]

Commands:
  params      List the parameters each operation declares
  resolve     Resolve raw request values against an operation
  serve       Serve an echo API that resolves every request
  mcp         Run the MCP server over stdio
  version     Show version information
  help        Show this help message

Examples:
  oasbind params openapi.yaml
  oasbind resolve --operation findPets --param query.limit=20 --param header.X-Request-Id=1 openapi.yaml
  oasbind resolve --method PATCH --path /pets/fido --body '{"Name":"Fido"}' openapi.yaml
  OASBIND_ADDR=:9090 oasbind serve openapi.yaml

Environment:
  OASBIND_LOG_LEVEL, OASBIND_LOG_FORMAT set the logging defaults.

Run 'oasbind <command> --help' for more information on a command.
`, oasbind.Version())
}
