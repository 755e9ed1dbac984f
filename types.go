package main

import (
	"time"
)

// Note is a single Fastidious item. Plain notes carry a type of "text";
// collections carry "collection" plus the presentation fields below. The
// remote service owns every Note; this process only shapes requests and
// responses around them.
type Note struct {
	ID               string            `json:"id"`                         // Unique item identifier
	Type             string            `json:"type"`                       // "text" or "collection"
	Title            string            `json:"title,omitempty"`            // Optional title
	Content          string            `json:"content,omitempty"`          // Markdown body
	CustomFields     map[string]string `json:"customFields,omitempty"`     // Custom field name -> value
	FieldDefinitions []FieldDefinition `json:"fieldDefinitions,omitempty"` // Schema of allowed custom fields
	ParentID         *string           `json:"parentId,omitempty"`         // Enclosing collection, nil at root
	ChildCount       int               `json:"childCount,omitempty"`       // Collections only
	DisplayFields    []string          `json:"displayFields,omitempty"`    // Collections only: list view columns
	ViewMode         string            `json:"viewMode,omitempty"`         // Collections only: "grid" or "list"
	SortField        string            `json:"sortField,omitempty"`        // Collections only
	SortDirection    string            `json:"sortDirection,omitempty"`    // Collections only: "asc" or "desc"
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// FieldDefinition describes one custom field usable on items within a
// collection.
type FieldDefinition struct {
	Name        string         `json:"name" validate:"required"`
	Type        string         `json:"type" validate:"required,oneof=text number checkbox select"`
	Options     []SelectOption `json:"options,omitempty" validate:"dive"` // "select" type only
	Required    bool           `json:"required,omitempty"`
	Description string         `json:"description,omitempty"`
}

// SelectOption is one allowed value of a "select" custom field.
type SelectOption struct {
	ID    string `json:"id" validate:"required"`
	Value string `json:"value" validate:"required"`
	Color string `json:"color,omitempty"` // Optional display colour
}

// CreateItemRequest is the POST body for creating an item.
type CreateItemRequest struct {
	Type             string            `json:"type"`
	Title            string            `json:"title,omitempty"`
	Content          string            `json:"content,omitempty"`
	CustomFields     map[string]string `json:"customFields,omitempty"`
	FieldDefinitions []FieldDefinition `json:"fieldDefinitions,omitempty"`
	ParentID         string            `json:"parentId,omitempty"`
	DisplayFields    []string          `json:"displayFields,omitempty"`
	ViewMode         string            `json:"viewMode,omitempty"`
	SortField        string            `json:"sortField,omitempty"`
	SortDirection    string            `json:"sortDirection,omitempty"`
}

// UpdateItemRequest is the PUT body for a partial update. Every field is a
// pointer so that only supplied fields reach the remote service; the
// collection-valued ones are pointers too, keeping a supplied empty value
// (clear the field) distinct from an absent one (leave it alone).
type UpdateItemRequest struct {
	Title            *string            `json:"title,omitempty"`
	Content          *string            `json:"content,omitempty"`
	CustomFields     *map[string]string `json:"customFields,omitempty"`
	FieldDefinitions *[]FieldDefinition `json:"fieldDefinitions,omitempty"`
	DisplayFields    *[]string          `json:"displayFields,omitempty"`
	ViewMode         *string            `json:"viewMode,omitempty"`
	SortField        *string            `json:"sortField,omitempty"`
	SortDirection    *string            `json:"sortDirection,omitempty"`
}

// MoveItemRequest is the POST body of a move action. TargetParentID has no
// omitempty on purpose: a root move must serialise as an explicit null,
// never as an absent key.
type MoveItemRequest struct {
	TargetParentID *string `json:"targetParentId"`
}

// ListItemsQuery narrows a GET /api/items call.
type ListItemsQuery struct {
	ParentID string // Only items under this collection
	Query    string // Free-text search
}
