package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"xshade/internal/lsp"
)

const lsName = "xshade"

var (
	version = "0.0.1"
	handler protocol.Handler
)

func main() {
	commonlog.Configure(1, nil)

	hlslHandler := lsp.NewHandler()

	handler = protocol.Handler{
		Initialize:            hlslHandler.Initialize,
		Initialized:           hlslHandler.Initialized,
		Shutdown:              hlslHandler.Shutdown,
		SetTrace:              hlslHandler.SetTrace,
		TextDocumentDidOpen:   hlslHandler.TextDocumentDidOpen,
		TextDocumentDidClose:  hlslHandler.TextDocumentDidClose,
		TextDocumentDidChange: hlslHandler.TextDocumentDidChange,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting xshade LSP server", version)

	if err := s.RunStdio(); err != nil {
		log.Println("Error running xshade LSP server:", err)
		os.Exit(1)
	}
}
