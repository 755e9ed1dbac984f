package main

// Server identity constants
const (
	// MCP server name
	ServerName = "fastidious-mcp"
	// Server version following semantic versioning
	ServerVersion = "1.0.0"
)

// Remote service constants
const (
	// Base URL of the Fastidious API when none is configured
	DefaultBaseURL = "http://localhost:3000"
	// All Fastidious tokens start with this prefix
	TokenPrefix = "fst_"
	// Prefix of the items namespace on the remote API
	apiItemsPath = "/api/items"
)

// Item type tags used by the remote API
const (
	ItemTypeText       = "text"
	ItemTypeCollection = "collection"
)

// Collection view modes
const (
	ViewModeGrid = "grid"
	ViewModeList = "list"
)

// Collection sort directions
const (
	SortAscending  = "asc"
	SortDescending = "desc"
)

// Defaults applied when a collection is created without an explicit
// presentation setup.
const (
	DefaultViewMode      = ViewModeGrid
	DefaultSortField     = "createdAt"
	DefaultSortDirection = SortDescending
)

// defaultDisplayFields are the columns shown in list views when a collection
// does not declare its own.
var defaultDisplayFields = []string{"title", "type", "createdAt"}

// Hosted transport constants
const (
	// Port the hosted server binds when PORT is not set
	DefaultPort = "3001"
	// Header carrying the streaming transport session identifier
	sessionIDHeader = "Mcp-Session-Id"
	// Side-channel endpoint advertised to legacy event-stream clients
	messageEndpoint = "/message"
)

// UI/CLI messages
const (
	PromptStr     = "fastidious> "
	WelcomeMsg    = "=== Fastidious MCP Test Mode ==="
	HelpMsg       = "Commands: create <title> -- <content> | get <id> | list [parent] | search <query> | delete <id> | move <id> [parent] | mkcol <title> | cols [parent] | col <id> | exit"
	UnknownCmdMsg = "Unknown command. Try: create, get, list, search, delete, move, mkcol, cols, col, exit"
)
