package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/megafile/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/megafile/internal/core/services"
)

// portSearchSpan is how many ports above the configured one --find-port tries.
const portSearchSpan = 20

var (
	serveAddr     string
	serveFindPort bool
	serveNoMCP    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the REST API for operations, documents, search and answers.

The MCP streamable HTTP endpoint is mounted at /mcp unless --no-mcp is set.
The address defaults to server.addr from the settings (":8080").`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from settings)")
	serveCmd.Flags().BoolVar(&serveFindPort, "find-port", false, "move to the next free port when the address is taken")
	serveCmd.Flags().BoolVar(&serveNoMCP, "no-mcp", false, "do not mount the MCP endpoint")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := resolveServeAddr()
	if err != nil {
		return err
	}

	var opts []httpapi.Option
	if !serveNoMCP {
		mcpServer, err := newMCPServer()
		if err != nil {
			return err
		}
		opts = append(opts, httpapi.WithMCPHandler(mcpServer.Handler()))
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Search:    searchService,
		Assistant: assistantService,
		Operation: operationService,
		Evidence:  evidenceService,
	}, opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "megafile API listening on %s\n", displayAddr(addr))
	return server.Run(cmd.Context(), addr)
}

func resolveServeAddr() (string, error) {
	addr := serveAddr
	if addr == "" && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			addr = settings.Server.Addr
		}
	}
	if addr == "" {
		addr = ":8080"
	}
	if !serveFindPort {
		return addr, nil
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", addr, err)
	}
	start, err := strconv.Atoi(portStr)
	if err != nil {
		return "", fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	port, err := services.FindAvailablePort(host, start, start+portSearchSpan)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
