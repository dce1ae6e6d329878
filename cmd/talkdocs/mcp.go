package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"talkdocs/internal/domain"
	"talkdocs/internal/service"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing document question answering tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(logToStderr)
		if err != nil {
			return err
		}
		defer a.close()
		return mcpserver.ServeStdio(newMCPServer(a.svc))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// ragTools is the part of the RAG service the MCP tools call.
type ragTools interface {
	IngestFile(ctx context.Context, path string) (domain.IngestionResult, error)
	Ask(ctx context.Context, question string, topK int) (domain.Answer, error)
	Search(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
	Clear() error
	Status() domain.IndexStatus
}

func newMCPServer(svc ragTools) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("talkdocs", "1.0.0", mcpserver.WithToolCapabilities(false))
	s.AddTool(askDocumentsTool(), makeAskHandler(svc))
	s.AddTool(searchDocumentsTool(), makeSearchHandler(svc))
	s.AddTool(ingestFileTool(), makeIngestHandler(svc))
	s.AddTool(clearIndexTool(), makeClearHandler(svc))
	s.AddTool(indexStatusTool(), makeStatusHandler(svc))
	return s
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func askDocumentsTool() mcp.Tool {
	return mcp.NewTool("ask_documents",
		mcp.WithDescription("Answer a question using only the indexed documents. Returns the answer followed by numbered sources with similarity scores."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural language question about the indexed documents"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Number of chunks to retrieve (default from config)"),
		),
	)
}

func searchDocumentsTool() mcp.Tool {
	return mcp.NewTool("search_documents",
		mcp.WithDescription("Semantic search over the indexed documents. Returns matching chunks with source file and similarity score."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Query text"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Number of chunks to retrieve (default from config)"),
		),
	)
}

func ingestFileTool() mcp.Tool {
	return mcp.NewTool("ingest_file",
		mcp.WithDescription("Index a PDF, TXT or DOCX file from the local filesystem."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			ReadOnlyHint:    mcp.ToBoolPtr(false),
			DestructiveHint: mcp.ToBoolPtr(false),
			IdempotentHint:  mcp.ToBoolPtr(false),
			OpenWorldHint:   mcp.ToBoolPtr(false),
		}),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the file to index"),
		),
	)
}

func clearIndexTool() mcp.Tool {
	return mcp.NewTool("clear_index",
		mcp.WithDescription("Delete every indexed chunk from memory and disk."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			ReadOnlyHint:    mcp.ToBoolPtr(false),
			DestructiveHint: mcp.ToBoolPtr(true),
			IdempotentHint:  mcp.ToBoolPtr(true),
			OpenWorldHint:   mcp.ToBoolPtr(false),
		}),
	)
}

func indexStatusTool() mcp.Tool {
	return mcp.NewTool("index_status",
		mcp.WithDescription("Report the number of indexed chunks and where the index is stored."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeAskHandler(svc ragTools) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := strings.TrimSpace(req.GetString("question", ""))
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}
		ans, err := svc.Ask(ctx, question, req.GetInt("top_k", 0))
		if err != nil {
			return mcp.NewToolResultError(service.UserMessage(err, "answer the question")), nil
		}
		return mcp.NewToolResultText(formatAnswer(ans)), nil
	}
}

func makeSearchHandler(svc ragTools) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := strings.TrimSpace(req.GetString("query", ""))
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		results, err := svc.Search(ctx, query, req.GetInt("top_k", 0))
		if err != nil {
			return mcp.NewToolResultError(service.UserMessage(err, "search")), nil
		}
		return mcp.NewToolResultText(formatSearchResults(query, results)), nil
	}
}

func makeIngestHandler(svc ragTools) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		res, err := svc.IngestFile(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(service.UserMessage(err, "ingest document")), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Indexed '%s' into %d chunks.", res.FileName, res.ChunksIndexed)), nil
	}
}

func makeClearHandler(svc ragTools) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := svc.Clear(); err != nil {
			return mcp.NewToolResultError(service.UserMessage(err, "clear the index")), nil
		}
		return mcp.NewToolResultText("Index cleared."), nil
	}
}

func makeStatusHandler(svc ragTools) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st := svc.Status()
		return mcp.NewToolResultText(fmt.Sprintf("Index: %s\nIndexed chunks: %d\nDimension: %d\nVectors: %s\nMetadata: %s",
			st.Name, st.Chunks, st.Dimension, st.VectorPath, st.MetadataPath)), nil
	}
}

// --- Formatting ---

func formatAnswer(ans domain.Answer) string {
	var sb strings.Builder
	sb.WriteString(ans.Text)
	if len(ans.Citations) > 0 {
		sb.WriteString("\n\nSources:\n")
		for _, c := range ans.Citations {
			fmt.Fprintf(&sb, "[%d] %s (similarity=%.4f)\n", c.Rank, c.Source, c.Score)
		}
	}
	return sb.String()
}

func formatSearchResults(query string, results []domain.RetrievedChunk) string {
	if len(results) == 0 {
		return fmt.Sprintf("No chunks matched %q above the relevance threshold.", query)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Results for %q (%d)\n\n", query, len(results))
	for i, r := range results {
		fmt.Fprintf(&sb, "### %d. %s (score=%.3f)\n\n%s\n\n", i+1, r.SourceFile, r.Score, r.Text)
	}
	return sb.String()
}
