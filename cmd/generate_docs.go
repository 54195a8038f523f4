package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/workspace-console/internal/config"
	"github.com/teemow/workspace-console/internal/router"
	"github.com/teemow/workspace-console/internal/server"
	"github.com/teemow/workspace-console/internal/tools/admin_tools"
)

// Tool categories in the order they appear in the reference.
const (
	categoryMail      = "Mail Tools"
	categoryDirectory = "Directory Tools"
	categoryAdmin     = "Admin Tools"
	categoryOther     = "Other"
)

var categoryOrder = []string{categoryAdmin, categoryMail, categoryDirectory, categoryOther}

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Write the MCP tool reference as markdown",
		Long: `Registers every MCP tool against the default configuration and writes a
markdown reference of their names, descriptions and arguments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tools, err := registeredTools(cmd)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			writeToolReference(&buf, tools)

			if outputFile == "" {
				_, err := buf.WriteTo(cmd.OutOrStdout())
				return err
			}
			if err := os.WriteFile(outputFile, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outputFile, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Tool reference written to %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

// registeredTools builds a throwaway server context. Registration needs no credentials.
func registeredTools(cmd *cobra.Command) ([]mcp.Tool, error) {
	sc, err := server.NewServerContext(cmd.Context(), server.Options{
		Config: config.Default(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := newMCPServer(sc)
	if err := registerAllTools(mcpSrv, sc); err != nil {
		return nil, err
	}

	tools := make([]mcp.Tool, 0, len(mcpSrv.ListTools()))
	for _, st := range mcpSrv.ListTools() {
		tools = append(tools, st.Tool)
	}
	slices.SortFunc(tools, func(a, b mcp.Tool) int { return strings.Compare(a.Name, b.Name) })
	return tools, nil
}

func toolCategory(name string) string {
	switch name {
	case router.ToolAnalyzeEmails, router.ToolYesterdayMails:
		return categoryMail
	case router.ToolListUsers:
		return categoryDirectory
	case router.ToolVerify, admin_tools.ToolRouteRequest:
		return categoryAdmin
	default:
		return categoryOther
	}
}

// writeToolReference renders tools, which must be sorted by name.
func writeToolReference(w io.Writer, tools []mcp.Tool) {
	byCategory := map[string][]mcp.Tool{}
	for _, t := range tools {
		c := toolCategory(t.Name)
		byCategory[c] = append(byCategory[c], t)
	}

	fmt.Fprint(w, "# MCP Tools Reference\n\n")
	fmt.Fprint(w, "Tools served by `workspace-console serve`. Generated by `workspace-console generate-docs`.\n\n")

	for _, c := range categoryOrder {
		if len(byCategory[c]) > 0 {
			fmt.Fprintf(w, "- [%s](#%s)\n", c, strings.ToLower(strings.ReplaceAll(c, " ", "-")))
		}
	}

	fmt.Fprint(w, "\n## Authorization\n\n")
	fmt.Fprint(w, "Mail and directory tools act as the `adminEmail` argument through domain-wide delegation.\n")
	fmt.Fprint(w, "`verifySuperAdminStatus` checks the signed-in user's own Google access token, either forwarded with the session or passed as `accessToken`.\n")
	fmt.Fprint(w, "`routeRequest` only offers mail and directory tools once the session has been verified as a super administrator.\n")

	for _, c := range categoryOrder {
		if len(byCategory[c]) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n## %s\n", c)
		for _, t := range byCategory[c] {
			writeTool(w, t)
		}
	}
}

func writeTool(w io.Writer, t mcp.Tool) {
	fmt.Fprintf(w, "\n### %s\n\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(w, "%s\n\n", t.Description)
	}

	props := t.InputSchema.Properties
	if len(props) == 0 {
		fmt.Fprint(w, "No arguments.\n")
		return
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)

	fmt.Fprint(w, "| Argument | Type | Required | Description |\n|---|---|---|---|\n")
	for _, name := range names {
		prop, _ := props[name].(map[string]any)
		typ, _ := prop["type"].(string)
		if typ == "" {
			typ = "any"
		}
		desc, _ := prop["description"].(string)
		required := "no"
		if slices.Contains(t.InputSchema.Required, name) {
			required = "yes"
		}
		fmt.Fprintf(w, "| `%s` | %s | %s | %s |\n", name, typ, required, desc)
	}
}
