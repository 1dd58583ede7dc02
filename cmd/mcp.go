package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"codesage/internal/embedder"
	"codesage/internal/rag"
	"codesage/internal/search"
	"codesage/internal/store"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing indexing and search tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(wd)
	if err != nil {
		return err
	}

	svc, st, err := newService(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	embedClient := embedder.NewOllamaClient(cfg.OllamaURL, cfg.EmbedModel)

	s := mcpserver.NewMCPServer("codesage", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(indexCodebaseTool(), makeIndexHandler(svc))
	s.AddTool(askCodebaseTool(), makeAskHandler(svc))
	s.AddTool(searchChunksTool(), makeSearchChunksHandler(st, embedClient))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func indexCodebaseTool() mcp.Tool {
	return mcp.NewTool("index_codebase",
		mcp.WithDescription("Index (or incrementally reindex) the current codebase. Unchanged files are skipped by content hash."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			ReadOnlyHint:    mcp.ToBoolPtr(false),
			DestructiveHint: mcp.ToBoolPtr(false),
			IdempotentHint:  mcp.ToBoolPtr(true),
			OpenWorldHint:   mcp.ToBoolPtr(false),
		}),
	)
}

func askCodebaseTool() mcp.Tool {
	return mcp.NewTool("ask_codebase",
		mcp.WithDescription("Answer a natural-language question about the indexed codebase using retrieved code context."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural language question about the codebase"),
		),
		mcp.WithString("feedback",
			mcp.Description("Optional feedback on a previous answer to fold into the prompt"),
		),
	)
}

func searchChunksTool() mcp.Tool {
	return mcp.NewTool("search_chunks",
		mcp.WithDescription("Semantically search the indexed codebase and return the most relevant raw chunks."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language or keyword query"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of chunks to return (default 10)"),
		),
	)
}

// --- Handler factories ---

func makeIndexHandler(svc *rag.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := svc.BuildIndex(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("indexing failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Indexing complete: %d files selected, %d changed, %d chunks embedded.",
			stats.FilesSelected, stats.FilesChanged, stats.ChunksQueued)), nil
	}
}

func makeAskHandler(svc *rag.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := req.GetString("question", "")
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}
		feedback := req.GetString("feedback", "")

		answer, err := svc.QueryWithFeedback(ctx, question, feedback)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}
		return mcp.NewToolResultText(answer), nil
	}
}

func makeSearchChunksHandler(st store.Store, embed embedder.TextEmbedder) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		k := req.GetInt("k", 10)
		if k <= 0 {
			k = 10
		}

		vector, err := embed.Embed(ctx, query)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("embed query failed: %v", err)), nil
		}
		corpus, err := st.GetAllEmbeddings(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load corpus failed: %v", err)), nil
		}

		chunks := search.FindRelevantChunks(vector, corpus, k)
		if len(chunks) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No results found for query: %q", query)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "## Search results for %q (%d chunks)\n\n", query, len(chunks))
		for i, c := range chunks {
			fmt.Fprintf(&sb, "### Result %d\n\n```\n%s\n```\n\n", i+1, c)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}
