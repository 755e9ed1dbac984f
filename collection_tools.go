package main

// In this file: collection tool definitions and handlers.

import (
	"context"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
)

// fieldDefinitionItems is the declarative schema of one custom field
// definition, advertised on the collection tools.
var fieldDefinitionItems = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{
			"type":        "string",
			"description": "Field name",
		},
		"type": map[string]any{
			"type":        "string",
			"enum":        []string{"text", "number", "checkbox", "select"},
			"description": "Field type",
		},
		"options": map[string]any{
			"type":        "array",
			"description": "Allowed values for select fields",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":    map[string]any{"type": "string"},
					"value": map[string]any{"type": "string"},
					"color": map[string]any{"type": "string"},
				},
				"required": []string{"id", "value"},
			},
		},
		"required": map[string]any{
			"type":        "boolean",
			"description": "Whether the field must be set on every item",
		},
		"description": map[string]any{
			"type":        "string",
			"description": "Human-readable field description",
		},
	},
	"required": []string{"name", "type"},
}

// ─── create_collection ────────────────────────────────────────────────────────

type createCollectionArgs struct {
	Title            string            `json:"title" validate:"required"`
	ParentID         string            `json:"parentId"`
	FieldDefinitions []FieldDefinition `json:"fieldDefinitions" validate:"dive"`
	DisplayFields    []string          `json:"displayFields"`
	ViewMode         string            `json:"viewMode" validate:"omitempty,oneof=grid list"`
	SortField        string            `json:"sortField"`
	SortDirection    string            `json:"sortDirection" validate:"omitempty,oneof=asc desc"`
}

func (t *toolset) toolCreateCollection() mcpsrv.ServerTool {
	tool := mcplib.NewTool("create_collection",
		mcplib.WithDescription("Create a collection that can hold notes and other collections. Supports a custom field schema and list view presentation settings."),
		mcplib.WithString("title",
			mcplib.Description("Title of the collection"),
			mcplib.Required(),
		),
		mcplib.WithString("parentId",
			mcplib.Description("ID of the collection to nest this one in. Omit for the root."),
		),
		mcplib.WithArray("fieldDefinitions",
			mcplib.Description("Custom fields allowed on items in this collection"),
			mcplib.Items(fieldDefinitionItems),
		),
		mcplib.WithArray("displayFields",
			mcplib.Description("Field names shown as columns in list views. Defaults to title, type and createdAt."),
			mcplib.Items(map[string]any{"type": "string"}),
		),
		mcplib.WithString("viewMode",
			mcplib.Description("How items are presented. Defaults to grid."),
			mcplib.Enum(ViewModeGrid, ViewModeList),
		),
		mcplib.WithString("sortField",
			mcplib.Description("Field items are sorted by. Defaults to createdAt."),
		),
		mcplib.WithString("sortDirection",
			mcplib.Description("Sort direction. Defaults to desc."),
			mcplib.Enum(SortAscending, SortDescending),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleCreateCollection}
}

func (t *toolset) handleCreateCollection(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args createCollectionArgs
	if err := bindArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("create_collection: %w", err)), nil
	}

	if len(args.DisplayFields) == 0 {
		args.DisplayFields = defaultDisplayFields
	}
	if args.ViewMode == "" {
		args.ViewMode = DefaultViewMode
	}
	if args.SortField == "" {
		args.SortField = DefaultSortField
	}
	if args.SortDirection == "" {
		args.SortDirection = DefaultSortDirection
	}

	col, err := t.client.CreateItem(ctx, CreateItemRequest{
		Type:             ItemTypeCollection,
		Title:            args.Title,
		ParentID:         args.ParentID,
		FieldDefinitions: args.FieldDefinitions,
		DisplayFields:    args.DisplayFields,
		ViewMode:         args.ViewMode,
		SortField:        args.SortField,
		SortDirection:    args.SortDirection,
	})
	if err != nil {
		return resultErr(fmt.Errorf("create_collection: %w", err)), nil
	}

	result, err := resultJSON(col)
	if err != nil {
		return resultErr(fmt.Errorf("create_collection: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── update_collection ────────────────────────────────────────────────────────

type updateCollectionArgs struct {
	ID               string             `json:"id" validate:"required"`
	Title            *string            `json:"title"`
	FieldDefinitions *[]FieldDefinition `json:"fieldDefinitions" validate:"omitempty,dive"`
	DisplayFields    *[]string          `json:"displayFields"`
	ViewMode         *string            `json:"viewMode" validate:"omitempty,oneof=grid list"`
	SortField        *string            `json:"sortField"`
	SortDirection    *string            `json:"sortDirection" validate:"omitempty,oneof=asc desc"`
}

func (t *toolset) toolUpdateCollection() mcpsrv.ServerTool {
	tool := mcplib.NewTool("update_collection",
		mcplib.WithDescription("Update a collection. Only the supplied fields are changed; omitted fields keep their current values."),
		mcplib.WithString("id",
			mcplib.Description("ID of the collection to update"),
			mcplib.Required(),
		),
		mcplib.WithString("title",
			mcplib.Description("New title"),
		),
		mcplib.WithArray("fieldDefinitions",
			mcplib.Description("Replacement custom field schema"),
			mcplib.Items(fieldDefinitionItems),
		),
		mcplib.WithArray("displayFields",
			mcplib.Description("Field names shown as columns in list views"),
			mcplib.Items(map[string]any{"type": "string"}),
		),
		mcplib.WithString("viewMode",
			mcplib.Description("How items are presented"),
			mcplib.Enum(ViewModeGrid, ViewModeList),
		),
		mcplib.WithString("sortField",
			mcplib.Description("Field items are sorted by"),
		),
		mcplib.WithString("sortDirection",
			mcplib.Description("Sort direction"),
			mcplib.Enum(SortAscending, SortDescending),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleUpdateCollection}
}

func (t *toolset) handleUpdateCollection(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args updateCollectionArgs
	if err := bindArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("update_collection: %w", err)), nil
	}

	col, err := t.client.UpdateItem(ctx, args.ID, UpdateItemRequest{
		Title:            args.Title,
		FieldDefinitions: args.FieldDefinitions,
		DisplayFields:    args.DisplayFields,
		ViewMode:         args.ViewMode,
		SortField:        args.SortField,
		SortDirection:    args.SortDirection,
	})
	if err != nil {
		return resultErr(fmt.Errorf("update_collection: %w", err)), nil
	}

	result, err := resultJSON(col)
	if err != nil {
		return resultErr(fmt.Errorf("update_collection: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── get_collection ───────────────────────────────────────────────────────────

type getCollectionArgs struct {
	ID              string `json:"id" validate:"required"`
	IncludeChildren bool   `json:"includeChildren"`
}

// collectionView is the get_collection result shape. Children is present
// only when requested.
type collectionView struct {
	Collection *Note  `json:"collection"`
	Children   []Note `json:"children,omitempty"`
}

func (t *toolset) toolGetCollection() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_collection",
		mcplib.WithDescription("Get a collection by its ID, optionally together with the items it contains."),
		mcplib.WithString("id",
			mcplib.Description("ID of the collection to retrieve"),
			mcplib.Required(),
		),
		mcplib.WithBoolean("includeChildren",
			mcplib.Description("Also return the items inside the collection"),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleGetCollection}
}

func (t *toolset) handleGetCollection(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args getCollectionArgs
	if err := bindArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("get_collection: %w", err)), nil
	}

	col, err := t.client.GetItem(ctx, args.ID)
	if err != nil {
		return resultErr(fmt.Errorf("get_collection: %w", err)), nil
	}

	view := collectionView{Collection: col}
	if args.IncludeChildren {
		children, err := t.client.ListItems(ctx, ListItemsQuery{ParentID: args.ID})
		if err != nil {
			return resultErr(fmt.Errorf("get_collection: %w", err)), nil
		}
		view.Children = children
	}

	result, err := resultJSON(view)
	if err != nil {
		return resultErr(fmt.Errorf("get_collection: serialise: %w", err)), nil
	}
	return result, nil
}

// ─── list_collections ─────────────────────────────────────────────────────────

type listCollectionsArgs struct {
	ParentID string `json:"parentId"`
}

func (t *toolset) toolListCollections() mcpsrv.ServerTool {
	tool := mcplib.NewTool("list_collections",
		mcplib.WithDescription("List collections, optionally limited to those nested in one collection. Plain notes are not included."),
		mcplib.WithString("parentId",
			mcplib.Description("ID of the enclosing collection. Omit for the root."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: t.handleListCollections}
}

func (t *toolset) handleListCollections(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	var args listCollectionsArgs
	if err := bindArgs(req, &args); err != nil {
		return resultErr(fmt.Errorf("list_collections: %w", err)), nil
	}

	items, err := t.client.ListItems(ctx, ListItemsQuery{ParentID: args.ParentID})
	if err != nil {
		return resultErr(fmt.Errorf("list_collections: %w", err)), nil
	}

	result, err := resultJSON(onlyCollections(items))
	if err != nil {
		return resultErr(fmt.Errorf("list_collections: serialise: %w", err)), nil
	}
	return result, nil
}
