package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citewise/internal/adapters/driving/mcp"
)

var mcpListen string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the corpora to MCP clients",
	Long: `Run citewise as a Model Context Protocol server.

Tools: search_passages, and ask_question when an LLM is configured.
Resource: citewise://corpora lists the configured corpora.

Without --listen the server speaks JSON-RPC on stdin/stdout, which is what
desktop assistants launch. With --listen it serves streamable HTTP at /
plus a /healthz probe.

Assistant configuration:
  {
    "mcpServers": {
      "citewise": {"command": "/path/to/citewise", "args": ["mcp"]}
    }
  }`,
	Example: `  citewise mcp
  citewise mcp --listen 8080
  citewise mcp --listen 0.0.0.0:8080`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

// mcpServeCmd keeps "citewise mcp serve" working.
var mcpServeCmd = &cobra.Command{
	Use:    "serve",
	Short:  "Alias for 'citewise mcp'",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runMCP,
}

func init() {
	mcpCmd.PersistentFlags().StringVarP(&mcpListen, "listen", "l", "",
		"serve HTTP on [host:]port instead of stdio (a bare port binds to localhost)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func newMCPServer() (*mcp.Server, error) {
	return mcp.NewServer(&mcp.Ports{
		Query:  queryService,
		Answer: answerService,
		Corpus: corpusService,
	}, mcp.WithVersion(version))
}

func runMCP(cmd *cobra.Command, _ []string) error {
	addr, err := listenAddr(mcpListen)
	if err != nil {
		return err
	}
	server, err := newMCPServer()
	if err != nil {
		return err
	}
	startConfigWatch(cmd.Context())

	if addr == "" {
		return server.Run(cmd.Context())
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}

// listenAddr turns the --listen value into a dial address. "" means stdio.
func listenAddr(v string) (string, error) {
	if v == "" {
		return "", nil
	}
	if port, err := strconv.Atoi(v); err == nil {
		v = net.JoinHostPort("localhost", strconv.Itoa(port))
	}
	_, port, err := net.SplitHostPort(v)
	if err != nil {
		return "", fmt.Errorf("invalid --listen %q: %w", v, err)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return "", fmt.Errorf("invalid --listen %q: port must be 1-65535", v)
	}
	return v, nil
}
