package main

// In this file: note tool definitions, handlers, and the name-indexed
// dispatcher. Collection tools live in collection_tools.go.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
)

// errMethodNotFound classifies a dispatch against a name that is not in the
// tool catalog.
var errMethodNotFound = errors.New("method not found")

// toolset binds the tool catalog to one session's API client. Handlers hold
// no other state, so a toolset is safe to share across the requests of its
// session.
type toolset struct {
	client *Client
	logger *slog.Logger
}

func newToolset(client *Client, lg *slog.Logger) *toolset {
	if lg == nil {
		lg = slog.Default()
	}
	return &toolset{client: client, logger: lg}
}

// newEngine builds a protocol engine over the toolset. One engine serves
// exactly one session; the client's token is fixed for the engine's
// lifetime.
func newEngine(client *Client, lg *slog.Logger) *mcpsrv.MCPServer {
	ts := newToolset(client, lg)
	srv := mcpsrv.NewMCPServer(
		ServerName,
		ServerVersion,
		mcpsrv.WithToolCapabilities(true),
		mcpsrv.WithRecovery(),
		mcpsrv.WithInstructions(instructions()),
	)
	srv.AddTools(ts.tools()...)
	return srv
}

// instructions describe the backing service to the connecting agent.
func instructions() string {
	return `You are connected to a Fastidious MCP server.

Fastidious stores Markdown notes organised into nested collections. Notes
can carry custom fields whose schema is declared on the enclosing
collection. Available tools cover creating, reading, updating, deleting,
searching and moving notes, and managing collections.

Item identifiers are opaque strings assigned by the service. A note or
collection without a parent lives at the root.`
}

// tools returns the full tool catalog.
func (t *toolset) tools() []mcpsrv.ServerTool {
	return []mcpsrv.ServerTool{
		t.toolCreateNote(),
		t.toolGetNote(),
		t.toolUpdateNote(),
		t.toolDeleteNote(),
		t.toolListNotes(),
		t.toolSearchNotes(),
		t.toolCreateCollection(),
		t.toolUpdateCollection(),
		t.toolGetCollection(),
		t.toolListCollections(),
		t.toolMoveNote(),
	}
}

// dispatch routes a named invocation to its handler. It backs the
// interactive CLI and mirrors the engine's own tools/call routing: an
// unknown name fails with errMethodNotFound regardless of arguments.
func (t *toolset) dispatch(ctx context.Context, name string, args map[string]any) (*mcplib.CallToolResult, error) {
	for _, st := range t.tools() {
		if st.Tool.Name == name {
			req := mcplib.CallToolRequest{}
			req.Params.Name = name
			req.Params.Arguments = args
			return st.Handler(ctx, req)
		}
	}
	return nil, fmt.Errorf("%w: %q", errMethodNotFound, name)
}

// resultText wraps text in a successful CallToolResult.
func resultText(text string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(text)
}

// resultErr wraps an error in a CallToolResult with IsError=true.
func resultErr(err error) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(err.Error())},
		IsError: true,
	}
}

// resultJSON serialises v to JSON and returns it as a CallToolResult.
func resultJSON(v any) (*mcplib.CallToolResult, error) {
	return mcplib.NewToolResultJSON(v)
}

// bindArgs decodes the request arguments into the tool's typed argument
// struct and validates it against the declared constraints.
func bindArgs(req mcplib.CallToolRequest, v any) error {
	if err := req.BindArguments(v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		var vErr validator.ValidationErrors
		if errors.As(err, &vErr) {
			return fmt.Errorf("invalid arguments: %s", describe(vErr))
		}
		return err
	}
	return nil
}

// withoutCollections filters collection items out of a listing.
func withoutCollections(items []Note) []Note {
	notes := make([]Note, 0, len(items))
	for _, it := range items {
		if it.Type == ItemTypeCollection {
			continue
		}
		notes = append(notes, it)
	}
	return notes
}

// onlyCollections keeps just the collection items of a listing.
func onlyCollections(items []Note) []Note {
	cols := make([]Note, 0, len(items))
	for _, it := range items {
		if it.Type == ItemTypeCollection {
			cols = append(cols, it)
		}
	}
	return cols
}

// ─── create_note ──────────────────────────────────────────────────────────────

type createNoteArgs struct {
	Title        string            `json:"title" validate:"required"`
	Content      string            `json:"content" validate:"required"`
	ParentID     string            `json:"parentId"`
	CustomFields map[string]string `json:"customFields"`
}

func (t *toolset) toolCreateNote() mcpsrv.ServerTool {
	tool := mcplib.NewTool("create_note",
		mcplib.WithDescription("Create a new note with a title and Markdown content, optionally inside a collection and with custom field values."),
		mcplib.WithString("title",
			mcplib.Description("Title of the note"),
			mcplib.Required(),
		),
		mcplib.WithString("content",
			mcplib.Description("Markdown content of the note"),
			mcplib.Required(),
		),
		mcplib.WithString("parentId",
			mcplib.Description("ID of the collection to create the note in. Omit for the root."),
		),
		mcplib.WithObject("customFields",
			mcplib.Description("Custom field values as a mapping of field name to string value. Fields must be declared on the parent collection."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleCreateNote}
}

func (t *toolset) handleCreateNote(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args createNoteArgs
	if err := bindArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("create_note: %w", err)), nil
	}

	note, err := t.client.CreateItem(ctx, CreateItemRequest{
		Type:         ItemTypeText,
		Title:        args.Title,
		Content:      args.Content,
		ParentID:     args.ParentID,
		CustomFields: args.CustomFields,
	})
	if err != nil {
		return resultErr(fmt.Errorf("create_note: %w", err)), nil
	}

	result, err := resultJSON(note)
	if err != nil {
		return resultErr(fmt.Errorf("create_note: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── get_note ─────────────────────────────────────────────────────────────────

type noteIDArgs struct {
	ID string `json:"id" validate:"required"`
}

func (t *toolset) toolGetNote() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_note",
		mcplib.WithDescription("Get a note by its ID, including its full content."),
		mcplib.WithString("id",
			mcplib.Description("ID of the note to retrieve"),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleGetNote}
}

func (t *toolset) handleGetNote(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args noteIDArgs
	if err := bindArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("get_note: %w", err)), nil
	}

	note, err := t.client.GetItem(ctx, args.ID)
	if err != nil {
		return resultErr(fmt.Errorf("get_note: %w", err)), nil
	}

	result, err := resultJSON(note)
	if err != nil {
		return resultErr(fmt.Errorf("get_note: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── update_note ──────────────────────────────────────────────────────────────

type updateNoteArgs struct {
	ID           string             `json:"id" validate:"required"`
	Title        *string            `json:"title"`
	Content      *string            `json:"content"`
	CustomFields *map[string]string `json:"customFields"`
}

func (t *toolset) toolUpdateNote() mcpsrv.ServerTool {
	tool := mcplib.NewTool("update_note",
		mcplib.WithDescription("Update a note. Only the supplied fields are changed; omitted fields keep their current values."),
		mcplib.WithString("id",
			mcplib.Description("ID of the note to update"),
			mcplib.Required(),
		),
		mcplib.WithString("title",
			mcplib.Description("New title"),
		),
		mcplib.WithString("content",
			mcplib.Description("New Markdown content"),
		),
		mcplib.WithObject("customFields",
			mcplib.Description("Custom field values to set, as a mapping of field name to string value"),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleUpdateNote}
}

func (t *toolset) handleUpdateNote(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args updateNoteArgs
	if err := bindArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("update_note: %w", err)), nil
	}

	note, err := t.client.UpdateItem(ctx, args.ID, UpdateItemRequest{
		Title:        args.Title,
		Content:      args.Content,
		CustomFields: args.CustomFields,
	})
	if err != nil {
		return resultErr(fmt.Errorf("update_note: %w", err)), nil
	}

	result, err := resultJSON(note)
	if err != nil {
		return resultErr(fmt.Errorf("update_note: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── delete_note ──────────────────────────────────────────────────────────────

// deleteAck acknowledges a deletion.
type deleteAck struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

func (t *toolset) toolDeleteNote() mcpsrv.ServerTool {
	tool := mcplib.NewTool("delete_note",
		mcplib.WithDescription("Delete a note by its ID."),
		mcplib.WithString("id",
			mcplib.Description("ID of the note to delete"),
			mcplib.Required(),
		),
		mcplib.WithDestructiveHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleDeleteNote}
}

func (t *toolset) handleDeleteNote(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args noteIDArgs
	if err := bindArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("delete_note: %w", err)), nil
	}

	if err := t.client.DeleteItem(ctx, args.ID); err != nil {
		return resultErr(fmt.Errorf("delete_note: %w", err)), nil
	}

	result, err := resultJSON(deleteAck{Success: true, ID: args.ID})
	if err != nil {
		return resultErr(fmt.Errorf("delete_note: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── list_notes ───────────────────────────────────────────────────────────────

type listNotesArgs struct {
	ParentID string `json:"parentId"`
}

func (t *toolset) toolListNotes() mcpsrv.ServerTool {
	tool := mcplib.NewTool("list_notes",
		mcplib.WithDescription("List notes, optionally limited to one collection. Collections themselves are not included; use list_collections for those."),
		mcplib.WithString("parentId",
			mcplib.Description("ID of the collection to list notes from. Omit for the root."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleListNotes}
}

func (t *toolset) handleListNotes(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args listNotesArgs
	if err := bindArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("list_notes: %w", err)), nil
	}

	items, err := t.client.ListItems(ctx, ListItemsQuery{ParentID: args.ParentID})
	if err != nil {
		return resultErr(fmt.Errorf("list_notes: %w", err)), nil
	}

	result, err := resultJSON(withoutCollections(items))
	if err != nil {
		return resultErr(fmt.Errorf("list_notes: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── search_notes ─────────────────────────────────────────────────────────────

type searchNotesArgs struct {
	Query    string `json:"query" validate:"required"`
	ParentID string `json:"parentId"`
}

func (t *toolset) toolSearchNotes() mcpsrv.ServerTool {
	tool := mcplib.NewTool("search_notes",
		mcplib.WithDescription("Search notes by text, optionally within one collection. Matches against titles and content; collections are excluded from the results."),
		mcplib.WithString("query",
			mcplib.Description("Text to search for"),
			mcplib.Required(),
		),
		mcplib.WithString("parentId",
			mcplib.Description("ID of the collection to search in. Omit to search everywhere."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleSearchNotes}
}

func (t *toolset) handleSearchNotes(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args searchNotesArgs
	if err := bindArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("search_notes: %w", err)), nil
	}

	items, err := t.client.ListItems(ctx, ListItemsQuery{ParentID: args.ParentID, Query: args.Query})
	if err != nil {
		return resultErr(fmt.Errorf("search_notes: %w", err)), nil
	}

	result, err := resultJSON(withoutCollections(items))
	if err != nil {
		return resultErr(fmt.Errorf("search_notes: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── move_note ────────────────────────────────────────────────────────────────

type moveNoteArgs struct {
	ID             string  `json:"id" validate:"required"`
	TargetParentID *string `json:"targetParentId"`
}

func (t *toolset) toolMoveNote() mcpsrv.ServerTool {
	tool := mcplib.NewTool("move_note",
		mcplib.WithDescription("Move a note or collection into another collection, or to the root. Only the parent changes; content, fields and type are untouched."),
		mcplib.WithString("id",
			mcplib.Description("ID of the item to move"),
			mcplib.Required(),
		),
		mcplib.WithString("targetParentId",
			mcplib.Description("ID of the destination collection. Omit or pass null to move the item to the root."),
		),
		mcplib.WithIdempotentHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleMoveNote}
}

func (t *toolset) handleMoveNote(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args moveNoteArgs
	if err := bindArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("move_note: %w", err)), nil
	}

	note, err := t.client.MoveItem(ctx, args.ID, args.TargetParentID)
	if err != nil {
		return resultErr(fmt.Errorf("move_note: %w", err)), nil
	}

	result, err := resultJSON(note)
	if err != nil {
		return resultErr(fmt.Errorf("move_note: serialise: %w", err)), nil
	}
	return result, nil
}
