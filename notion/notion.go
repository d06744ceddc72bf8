// Package notion implements a multiblog content source over the Notion API.
//
// Each tenant's content database is queried page by page; every page's
// properties are flattened into a multiblog.RawDocument keyed by the
// lower-camel-cased property name ("Cover Image" becomes "coverImage"). The
// database's title property is always stored under "title".
package notion

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jomei/notionapi"

	"github.com/eringen/multiblog"
)

const (
	defaultPageSize = 100
	maxBlockDepth   = 3
)

type databaseQuerier interface {
	Query(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

type blockLister interface {
	GetChildren(ctx context.Context, id notionapi.BlockID, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error)
}

// Client reads posts and page bodies from Notion.
type Client struct {
	databases databaseQuerier
	blocks    blockLister
	pageSize  int
}

// Option configures a Client.
type Option func(*Client)

// WithPageSize sets how many results are requested per API call (max 100).
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= defaultPageSize {
			c.pageSize = n
		}
	}
}

// NewClient creates a Client authenticated with an integration token.
func NewClient(token string, opts ...Option) *Client {
	api := notionapi.NewClient(notionapi.Token(token))
	c := &Client{
		databases: api.Database,
		blocks:    api.Block,
		pageSize:  defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListDocuments returns every non-archived page of the database sourceID.
func (c *Client) ListDocuments(ctx context.Context, sourceID string) ([]multiblog.RawDocument, error) {
	var docs []multiblog.RawDocument
	req := &notionapi.DatabaseQueryRequest{PageSize: c.pageSize}
	for {
		resp, err := c.databases.Query(ctx, notionapi.DatabaseID(sourceID), req)
		if err != nil {
			return nil, fmt.Errorf("notion: query database %s: %w", sourceID, err)
		}
		for _, page := range resp.Results {
			if page.Archived {
				continue
			}
			docs = append(docs, pageDocument(page))
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return docs, nil
		}
		req = &notionapi.DatabaseQueryRequest{PageSize: c.pageSize, StartCursor: notionapi.Cursor(resp.NextCursor)}
	}
}

// GetDocumentBody returns the blocks of page documentID, including nested
// children up to a fixed depth.
func (c *Client) GetDocumentBody(ctx context.Context, documentID string) ([]multiblog.Block, error) {
	return c.children(ctx, documentID, 0)
}

func (c *Client) children(ctx context.Context, id string, depth int) ([]multiblog.Block, error) {
	var out []multiblog.Block
	pagination := &notionapi.Pagination{PageSize: c.pageSize}
	for {
		resp, err := c.blocks.GetChildren(ctx, notionapi.BlockID(id), pagination)
		if err != nil {
			return nil, fmt.Errorf("notion: get children of %s: %w", id, err)
		}
		for _, nb := range resp.Results {
			b, ok := convertBlock(nb)
			if !ok {
				continue
			}
			if nb.GetHasChildren() && depth+1 < maxBlockDepth {
				kids, err := c.children(ctx, b.ID, depth+1)
				if err != nil {
					return nil, err
				}
				b.Children = kids
			}
			out = append(out, b)
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return out, nil
		}
		pagination = &notionapi.Pagination{PageSize: c.pageSize, StartCursor: notionapi.Cursor(resp.NextCursor)}
	}
}

func pageDocument(page notionapi.Page) multiblog.RawDocument {
	doc := multiblog.RawDocument{"id": string(page.ID)}
	for name, prop := range page.Properties {
		key := propertyKey(name)
		switch p := prop.(type) {
		case *notionapi.TitleProperty:
			doc["title"] = plainText(p.Title)
		case *notionapi.RichTextProperty:
			doc[key] = plainText(p.RichText)
		case *notionapi.SelectProperty:
			doc[key] = p.Select.Name
		case *notionapi.MultiSelectProperty:
			names := make([]string, 0, len(p.MultiSelect))
			for _, o := range p.MultiSelect {
				names = append(names, o.Name)
			}
			doc[key] = names
		case *notionapi.DateProperty:
			if p.Date != nil && p.Date.Start != nil {
				doc[key] = time.Time(*p.Date.Start)
			}
		case *notionapi.FilesProperty:
			files := make([]map[string]any, 0, len(p.Files))
			for _, f := range p.Files {
				if u := fileURL(f.File, f.External); u != "" {
					files = append(files, map[string]any{"name": f.Name, "url": u})
				}
			}
			doc[key] = files
		case *notionapi.CheckboxProperty:
			doc[key] = p.Checkbox
		case *notionapi.URLProperty:
			doc[key] = p.URL
		case *notionapi.NumberProperty:
			doc[key] = p.Number
		}
	}
	if _, ok := doc["coverImage"]; !ok && page.Cover != nil {
		if u := fileURL(page.Cover.File, page.Cover.External); u != "" {
			doc["coverImage"] = []map[string]any{{"url": u}}
		}
	}
	return doc
}

func fileURL(hosted, external *notionapi.FileObject) string {
	if hosted != nil && hosted.URL != "" {
		return hosted.URL
	}
	if external != nil {
		return external.URL
	}
	return ""
}

// propertyKey lower-camel-cases a property name: "Cover Image" -> "coverImage".
func propertyKey(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for i, w := range words {
		rs := []rune(w)
		if i == 0 {
			rs[0] = unicode.ToLower(rs[0])
		} else {
			rs[0] = unicode.ToUpper(rs[0])
		}
		b.WriteString(string(rs))
	}
	return b.String()
}

func plainText(rts []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range rts {
		b.WriteString(rt.PlainText)
	}
	return b.String()
}
