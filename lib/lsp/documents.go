// Copyright 2026 The Skylens Authors
// SPDX-License-Identifier: Apache-2.0

package lsp

import (
	"sync"
)

// document is one open editor buffer. Values are snapshots; the store
// replaces the entry wholesale on every change.
type document struct {
	uri     string
	path    string
	version int
	text    string
}

// documentStore is the overlay of open documents, keyed by URI. The
// editor's buffer contents shadow the file on disk for every feature
// that reads an open file.
type documentStore struct {
	mu   sync.RWMutex
	open map[string]document
}

func newDocumentStore() *documentStore {
	return &documentStore{open: make(map[string]document)}
}

func (s *documentStore) put(doc document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open[doc.uri] = doc
}

func (s *documentStore) get(uri string) (document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.open[uri]
	return doc, ok
}

func (s *documentStore) close(uri string) (document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.open[uri]
	if ok {
		delete(s.open, uri)
	}
	return doc, ok
}

// byPath finds the open document for a filesystem path. Open sets are
// small, so a scan beats maintaining a second index.
func (s *documentStore) byPath(path string) (document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.open {
		if doc.path == path {
			return doc, true
		}
	}
	return document{}, false
}
