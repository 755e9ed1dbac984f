package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

// runInteractiveCLI starts an interactive command-line interface for
// exercising the tool dispatcher without an MCP client attached.
func (t *toolset) runInteractiveCLI(ctx context.Context) {
	fmt.Println(WelcomeMsg)
	fmt.Println(HelpMsg)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n" + PromptStr)
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := strings.ToLower(parts[0])
		switch cmd {
		case "exit":
			return

		case "create":
			title, content, ok := splitTitleContent(parts[1:])
			if !ok {
				fmt.Println("Usage: create <title> -- <content>")
				continue
			}
			t.cliCall(ctx, "create_note", map[string]any{"title": title, "content": content})

		case "get":
			if len(parts) < 2 {
				fmt.Println("Usage: get <id>")
				continue
			}
			t.cliCall(ctx, "get_note", map[string]any{"id": parts[1]})

		case "list":
			args := map[string]any{}
			if len(parts) > 1 {
				args["parentId"] = parts[1]
			}
			t.cliCall(ctx, "list_notes", args)

		case "search":
			if len(parts) < 2 {
				fmt.Println("Usage: search <query>")
				continue
			}
			t.cliCall(ctx, "search_notes", map[string]any{"query": strings.Join(parts[1:], " ")})

		case "delete":
			if len(parts) < 2 {
				fmt.Println("Usage: delete <id>")
				continue
			}
			t.cliCall(ctx, "delete_note", map[string]any{"id": parts[1]})

		case "move":
			if len(parts) < 2 {
				fmt.Println("Usage: move <id> [parentId]")
				continue
			}
			args := map[string]any{"id": parts[1]}
			if len(parts) > 2 {
				args["targetParentId"] = parts[2]
			}
			t.cliCall(ctx, "move_note", args)

		case "mkcol":
			if len(parts) < 2 {
				fmt.Println("Usage: mkcol <title>")
				continue
			}
			t.cliCall(ctx, "create_collection", map[string]any{"title": strings.Join(parts[1:], " ")})

		case "cols":
			args := map[string]any{}
			if len(parts) > 1 {
				args["parentId"] = parts[1]
			}
			t.cliCall(ctx, "list_collections", args)

		case "col":
			if len(parts) < 2 {
				fmt.Println("Usage: col <id>")
				continue
			}
			t.cliCall(ctx, "get_collection", map[string]any{"id": parts[1], "includeChildren": true})

		default:
			fmt.Println(UnknownCmdMsg)
		}
	}
}

// cliCall dispatches one tool invocation and prints its first text content.
func (t *toolset) cliCall(ctx context.Context, name string, args map[string]any) {
	res, err := t.dispatch(ctx, name, args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(res.Content) == 0 {
		fmt.Println("(empty result)")
		return
	}
	txt, ok := res.Content[0].(mcplib.TextContent)
	if !ok {
		fmt.Println("(non-text result)")
		return
	}
	if res.IsError {
		fmt.Printf("Error: %s\n", txt.Text)
		return
	}
	fmt.Println(txt.Text)
}

// splitTitleContent parses "create <title words> -- <content words>".
func splitTitleContent(parts []string) (title, content string, ok bool) {
	for i, p := range parts {
		if p == "--" {
			title = strings.Join(parts[:i], " ")
			content = strings.Join(parts[i+1:], " ")
			return title, content, title != "" && content != ""
		}
	}
	return "", "", false
}
