package mcp

import "github.com/mark3labs/mcp-go/mcp"

var fetchToolDef = mcp.NewTool("links_fetch",
	mcp.WithDescription("Fetch one URL, extract every hyperlink in it and persist the result as the current session. "+
		"The scheme is optional (https:// is assumed). Returns the sorted, deduplicated absolute links."),
	mcp.WithString("url",
		mcp.Required(),
		mcp.Description("URL to fetch, e.g. example.com or https://example.com/docs"),
	),
)

var stateToolDef = mcp.NewTool("links_state",
	mcp.WithDescription("Return the persisted session: last input, last extracted links and the indicator status. "+
		"Corrupt persisted links are discarded and reported as idle."),
	mcp.WithBoolean("include_content",
		mcp.Description("Include the raw text of the last fetched document"),
	),
)

var clearToolDef = mcp.NewTool("links_clear",
	mcp.WithDescription("Wipe the whole persisted session (input, content, links and status)."),
)

var extractToolDef = mcp.NewTool("links_extract",
	mcp.WithDescription("Extract links from the given text without fetching or persisting anything."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Document text to scan"),
	),
	mcp.WithString("base_url",
		mcp.Description("Absolute URL used to resolve relative href values"),
	),
)
