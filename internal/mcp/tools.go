package mcp

import "github.com/mark3labs/mcp-go/mcp"

var searchDocumentsTool = mcp.NewTool("search_documents",
	mcp.WithDescription("Answer a question from the indexed documents. Simple mode retrieves and answers; agentic mode classifies intent, plans sub-queries and returns evidence with a confidence score."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language question"),
	),
	mcp.WithString("mode",
		mcp.Description("Search mode (default simple)"),
		mcp.Enum("simple", "agentic"),
	),
)

var retrieveChunksTool = mcp.NewTool("retrieve_chunks",
	mcp.WithDescription("Return the raw chunks most similar to a query, without generating an answer."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of chunks to return (default 5)"),
	),
)

var ingestDocumentTool = mcp.NewTool("ingest_document",
	mcp.WithDescription("Chunk, embed and index a plain-text document so later searches can use it."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Document text"),
	),
	mcp.WithString("source",
		mcp.Required(),
		mcp.Description("Name the document is cited under, e.g. refund_policy.txt"),
	),
)

var listSourcesTool = mcp.NewTool("list_sources",
	mcp.WithDescription("List the indexed document sources and the total chunk count."),
)
