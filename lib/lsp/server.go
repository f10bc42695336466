// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/skylens-build/skylens/lib/resolve"
)

// ErrExitWithoutShutdown is returned by Run when the client sends
// exit without a preceding shutdown. The protocol asks the server
// process to report failure in that case.
var ErrExitWithoutShutdown = errors.New("client exited without shutdown")

// Options configures a Server.
type Options struct {
	// Resolver answers label resolution, completion, and builtin
	// catalog queries. Required.
	Resolver *resolve.Resolver

	// Logger receives server lifecycle and request records. It must
	// not write to the connection's output stream; stderr is safe.
	// Nil discards them.
	Logger *slog.Logger

	// Version is reported in the initialize response.
	Version string

	// OnWorkspace, when set, is called once with the workspace root
	// path the client announced in initialize. The serve command uses
	// it to start the workspace watcher.
	OnWorkspace func(root string)
}

// Server speaks the Language Server Protocol over a single
// connection. Create one per connection with NewServer and drive it
// with Run.
type Server struct {
	resolver    *resolve.Resolver
	logger      *slog.Logger
	version     string
	onWorkspace func(root string)

	documents   *documentStore
	initialized bool
	shutdown    bool
}

// NewServer creates a Server.
func NewServer(options Options) (*Server, error) {
	if options.Resolver == nil {
		return nil, fmt.Errorf("lsp server: Resolver is required")
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		resolver:    options.Resolver,
		logger:      options.Logger,
		version:     options.Version,
		onWorkspace: options.OnWorkspace,
		documents:   newDocumentStore(),
	}, nil
}

// Serve runs the server on stdin and stdout until the client
// disconnects or sends exit.
func (s *Server) Serve(ctx context.Context) error {
	return s.Run(ctx, os.Stdin, os.Stdout)
}

// Run processes requests from input and writes responses to output.
// It returns nil when the client sends exit after shutdown or closes
// the input, ErrExitWithoutShutdown when exit arrives early, and an
// error when the connection fails.
func (s *Server) Run(ctx context.Context, input io.Reader, output io.Writer) error {
	reader := bufio.NewReader(input)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			s.logger.Info("client disconnected")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		var req request
		if err := json.Unmarshal(payload, &req); err != nil {
			if writeErr := writeError(output, json.RawMessage("null"), codeParseError, "parse error: "+err.Error()); writeErr != nil {
				return writeErr
			}
			continue
		}
		if req.JSONRPC != "2.0" {
			if !req.isNotification() {
				if writeErr := writeError(output, req.ID, codeInvalidRequest, "unsupported JSON-RPC version"); writeErr != nil {
					return writeErr
				}
			}
			continue
		}

		exit, err := s.dispatch(ctx, output, &req)
		if err != nil {
			return err
		}
		if exit {
			if !s.shutdown {
				return ErrExitWithoutShutdown
			}
			s.logger.Info("client exited")
			return nil
		}
	}
}

// dispatch routes one request. The boolean result reports an exit
// notification.
func (s *Server) dispatch(ctx context.Context, output io.Writer, req *request) (bool, error) {
	switch req.Method {
	case "initialize":
		return false, s.handleInitialize(output, req)
	case "initialized":
		return false, nil
	case "shutdown":
		s.shutdown = true
		return false, writeResult(output, req.ID, nil)
	case "exit":
		return true, nil
	}

	if s.shutdown {
		if req.isNotification() {
			return false, nil
		}
		return false, writeError(output, req.ID, codeInvalidRequest, "server is shut down")
	}
	if !s.initialized {
		if req.isNotification() {
			return false, nil
		}
		return false, writeError(output, req.ID, codeServerNotInitialized, "server not initialized (call initialize first)")
	}

	switch req.Method {
	case "textDocument/didOpen":
		return false, s.handleDidOpen(ctx, output, req)
	case "textDocument/didChange":
		return false, s.handleDidChange(ctx, output, req)
	case "textDocument/didClose":
		return false, s.handleDidClose(output, req)
	case "textDocument/completion":
		return false, s.handleCompletion(ctx, output, req)
	case "textDocument/definition":
		return false, s.handleDefinition(ctx, output, req)
	case "textDocument/hover":
		return false, s.handleHover(ctx, output, req)
	}

	if req.isNotification() {
		s.logger.Debug("ignoring notification", "method", req.Method)
		return false, nil
	}
	return false, writeError(output, req.ID, codeMethodNotFound, "unknown method: "+req.Method)
}

func (s *Server) handleInitialize(output io.Writer, req *request) error {
	if s.initialized {
		return writeError(output, req.ID, codeInvalidRequest, "server already initialized")
	}
	var params initializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return writeError(output, req.ID, codeInvalidParams, "invalid initialize params: "+err.Error())
		}
	}

	rootURI := params.RootURI
	if rootURI == "" && len(params.WorkspaceFolders) > 0 {
		rootURI = params.WorkspaceFolders[0].URI
	}
	if rootURI != "" {
		if root, err := uriToPath(rootURI); err != nil {
			s.logger.Warn("unusable workspace root", "uri", rootURI, "error", err)
		} else {
			s.logger.Info("client initialized", "root", root, "client", clientName(params.ClientInfo))
			if s.onWorkspace != nil {
				s.onWorkspace(root)
			}
		}
	} else {
		s.logger.Info("client initialized without a workspace root", "client", clientName(params.ClientInfo))
	}

	s.initialized = true
	return writeResult(output, req.ID, initializeResult{
		Capabilities: serverCapabilities{
			PositionEncoding: "utf-16",
			TextDocumentSync: syncFull,
			CompletionProvider: &completionOptions{
				TriggerCharacters: []string{"/", ":", "@", "\""},
			},
			DefinitionProvider: true,
			HoverProvider:      true,
		},
		ServerInfo: serverInfo{Name: "skylens", Version: s.version},
	})
}

func clientName(info *clientInfo) string {
	if info == nil {
		return "unknown"
	}
	return info.Name
}

func (s *Server) handleDidOpen(ctx context.Context, output io.Writer, req *request) error {
	var params didOpenParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.logger.Warn("invalid didOpen params", "error", err)
		return nil
	}
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		s.logger.Warn("ignoring document", "error", err)
		return nil
	}
	doc := document{
		uri:     params.TextDocument.URI,
		path:    path,
		version: params.TextDocument.Version,
		text:    params.TextDocument.Text,
	}
	s.documents.put(doc)
	return s.publishDiagnostics(ctx, output, doc)
}

func (s *Server) handleDidChange(ctx context.Context, output io.Writer, req *request) error {
	var params didChangeParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.logger.Warn("invalid didChange params", "error", err)
		return nil
	}
	doc, ok := s.documents.get(params.TextDocument.URI)
	if !ok {
		s.logger.Warn("change for unopened document", "uri", params.TextDocument.URI)
		return nil
	}
	for _, change := range params.ContentChanges {
		if change.Range == nil {
			doc.text = change.Text
			continue
		}
		start := byteOffset(doc.text, change.Range.Start)
		end := byteOffset(doc.text, change.Range.End)
		if end < start {
			start, end = end, start
		}
		doc.text = doc.text[:start] + change.Text + doc.text[end:]
	}
	doc.version = params.TextDocument.Version
	s.documents.put(doc)
	return s.publishDiagnostics(ctx, output, doc)
}

func (s *Server) handleDidClose(output io.Writer, req *request) error {
	var params didCloseParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.logger.Warn("invalid didClose params", "error", err)
		return nil
	}
	if _, ok := s.documents.close(params.TextDocument.URI); !ok {
		return nil
	}
	// Clear any published diagnostics for the closed document.
	return writeNotification(output, "textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []diagnostic{},
	})
}

// fileText returns a file's content, preferring an open editor buffer
// over the file on disk.
func (s *Server) fileText(path string) (string, bool) {
	if doc, ok := s.documents.byPath(path); ok {
		return doc.text, true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// --- response plumbing ---

func writeResult(output io.Writer, id json.RawMessage, result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return writePayload(output, response{JSONRPC: "2.0", ID: id, Result: data})
}

func writeError(output io.Writer, id json.RawMessage, code int, message string) error {
	return writePayload(output, response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

func writeNotification(output io.Writer, method string, params any) error {
	return writePayload(output, notification{JSONRPC: "2.0", Method: method, Params: params})
}

func writePayload(output io.Writer, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return writeMessage(output, data)
}
