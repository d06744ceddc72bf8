package multiblog

import "context"

// ContentSource is the external document database holding tenants' posts.
type ContentSource interface {
	// ListDocuments returns every raw document of a content database.
	ListDocuments(ctx context.Context, sourceID string) ([]RawDocument, error)
	// GetDocumentBody returns the body blocks of one document.
	GetDocumentBody(ctx context.Context, documentID string) ([]Block, error)
}
