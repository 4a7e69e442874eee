/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package memstore is a minimal in-memory pdfstore.Store used only by this
// module's own tests: it lets package tests exercise Form XObject
// recursion, rotation, and commit round-tripping without a real PDF file
// on disk. Not meant for consumers.
package memstore

import (
	"fmt"
	"sync"

	"github.com/pdfredact/pdfredact/pdfstore"
)

// Form is one named, nested content stream a Page or another Form can Do.
type Form struct {
	ID        string
	Content   []byte
	Resources map[string]pdfstore.XObject
}

// Page is one page's content stream plus the resource names it draws.
type Page struct {
	Content   []byte
	Resources map[string]pdfstore.XObject
}

// Store is a pdfstore.Store backed by plain Go maps, guarded by a
// sync.RWMutex: a shared Store must synchronize itself if RedactPage calls
// for different pages run concurrently -- this store doesn't need the
// guard for its own tests (each test owns a private Store), but the field
// exists so a test can construct one and share it across goroutines
// without a data race.
type Store struct {
	mu    sync.RWMutex
	Pages map[int]Page
	Forms map[string]Form

	Committed      map[int][]byte
	CommittedForms map[int]map[string][]byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		Pages:          map[int]Page{},
		Forms:          map[string]Form{},
		Committed:      map[int][]byte{},
		CommittedForms: map[int]map[string][]byte{},
	}
}

// GetPageContent implements pdfstore.Store.
func (s *Store) GetPageContent(pageNumber int) ([]byte, map[string]pdfstore.XObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page, ok := s.Pages[pageNumber]
	if !ok {
		return nil, nil, fmt.Errorf("memstore: no such page %d", pageNumber)
	}
	return page.Content, page.Resources, nil
}

// ResolveXObject implements pdfstore.Store.
func (s *Store) ResolveXObject(obj pdfstore.XObject) ([]byte, map[string]pdfstore.XObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	form, ok := s.Forms[obj.ID]
	if !ok {
		return nil, nil, fmt.Errorf("memstore: no such form %q", obj.ID)
	}
	return form.Content, form.Resources, nil
}

// CommitPage implements pdfstore.Store.
func (s *Store) CommitPage(pageNumber int, content []byte, formContent map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Committed[pageNumber] = content
	s.CommittedForms[pageNumber] = formContent
	return nil
}
