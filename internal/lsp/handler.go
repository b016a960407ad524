// Package lsp implements the HLSL language server handlers: documents are
// compiled in validate-only mode on open and change, and the resulting
// reports are published as diagnostics.
package lsp

import (
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"xshade"
)

// Handler implements the LSP server handlers for HLSL documents.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

// NewHandler creates a handler with an empty document store.
func NewHandler() *Handler {
	return &Handler{
		content: make(map[string]string),
	}
}

// Initialize advertises the server's capabilities.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("LSP Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

// Initialized completes the LSP handshake.
func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("xshade LSP initialized")
	return nil
}

// Shutdown handles the LSP shutdown request.
func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("xshade LSP shutdown")
	return nil
}

// SetTrace acknowledges trace configuration.
func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// TextDocumentDidOpen validates a freshly opened document.
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Printf("Opened file: %s\n", params.TextDocument.URI)

	h.storeContent(params.TextDocument.URI, params.TextDocument.Text)
	h.publishDiagnostics(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

// TextDocumentDidChange revalidates on every full-document change.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	for _, change := range params.ContentChanges {
		switch event := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			h.storeContent(params.TextDocument.URI, event.Text)
			h.publishDiagnostics(ctx, params.TextDocument.URI, event.Text)
		case protocol.TextDocumentContentChangeEvent:
			h.storeContent(params.TextDocument.URI, event.Text)
			h.publishDiagnostics(ctx, params.TextDocument.URI, event.Text)
		}
	}
	return nil
}

// TextDocumentDidClose drops the stored document.
func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Printf("Closed file: %s\n", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.content, path)
	return nil
}

func (h *Handler) storeContent(rawURI, text string) {
	path, err := uriToPath(rawURI)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.content[path] = text
}

// publishDiagnostics compiles the document in validate-only mode and sends
// every report as a diagnostic.
func (h *Handler) publishDiagnostics(ctx *glsp.Context, rawURI protocol.DocumentUri, text string) {
	collectLog := &xshade.CollectLog{}

	xshade.CompileShader(
		xshade.ShaderInput{
			SourceCode:    strings.NewReader(text),
			Filename:      string(rawURI),
			EntryPoint:    "main",
			Target:        xshade.VertexShader,
			ShaderVersion: xshade.HLSL5,
		},
		xshade.ShaderOutput{
			ShaderVersion: xshade.GLSL,
			Options:       xshade.Options{ValidateOnly: true},
		},
		collectLog,
	)

	diagnostics := ConvertReports(collectLog.Reports)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         rawURI,
		Diagnostics: diagnostics,
	})
}

// uriToPath converts a document URI to a platform-local file path.
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
