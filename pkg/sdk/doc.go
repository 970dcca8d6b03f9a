// Package compodex provides an embedded Go client for the compodex
// component retrieval engine: a directory-backed semantic index over UI
// component libraries.
//
//	client, _ := compodex.New(compodex.WithDataDir("./data"))
//	defer client.Close()
//
//	report, _ := client.Scan(ctx, compodex.ScanRequest{Folder: "./src/components"})
//	results, _ := client.Search(ctx, "a modal dialog with a close button", 5, nil)
//
// The client runs the full pipeline in-process. By default a deterministic
// local embedder is used; wire a real provider with WithOpenAI.
package compodex
