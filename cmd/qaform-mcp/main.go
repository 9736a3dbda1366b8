// Package main provides the qaform-mcp binary — MCP server for AI agents.
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	qmcp "github.com/ormasoftchile/qaform/pkg/ecosystem/mcp"
	"github.com/ormasoftchile/qaform/pkg/engine"
	"github.com/ormasoftchile/qaform/pkg/forms"
)

var version = "dev"

func main() {
	eng := engine.New(engine.Options{DefaultSpec: forms.Default})
	s := qmcp.NewServer(version, eng)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
