/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package pdfstore declares the PDF object-store collaborator the page
// orchestrator consults to read and write content streams and resolve
// Form XObjects. A host application owns the real PDF object graph (xref
// table, streams, filters) and supplies its own implementation; this
// package only defines the interface.
package pdfstore

// XObject identifies a Form or Image XObject referenced by a Do operator.
// The orchestrator keys its Form XObject cycle detection and its per-page
// form cache on ID, so an implementation must return the same ID for the
// same indirect object on every call, and distinct IDs for distinct
// objects.
type XObject struct {
	// ID is an implementation-defined stable identifier for the
	// underlying indirect object (for example "12 0 R" for a classic PDF
	// reference, or a content hash for a synthetic store).
	ID string
	// IsForm is true for Form XObjects (which contain their own content
	// stream and are recursed into) and false for Image XObjects (treated
	// as opaque, keep-or-drop-whole content).
	IsForm bool
}

// Store is the PDF object-store collaborator consumed by the page
// orchestrator.
type Store interface {
	// GetPageContent returns the concatenated content stream bytes and
	// the resource-name-to-XObject mapping visible to page `pageNumber`.
	GetPageContent(pageNumber int) (content []byte, resources map[string]XObject, err error)

	// ResolveXObject returns the content stream bytes and nested resource
	// map for a Form XObject, or an error for an Image XObject (callers
	// never call ResolveXObject on an entry with IsForm == false).
	ResolveXObject(obj XObject) (content []byte, resources map[string]XObject, err error)

	// CommitPage writes back the rewritten content stream for
	// `pageNumber`, and rewritten content for zero or more Form XObjects
	// reached from it (keyed by XObject.ID). Called at most once per
	// RedactPage invocation, and never for a page RedactPage returned an
	// error for.
	CommitPage(pageNumber int, content []byte, formContent map[string][]byte) error
}
