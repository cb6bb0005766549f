package docstore

import (
	"context"
	"errors"

	"github.com/dgallion1/docedit/internal/doctree"
)

var (
	// ErrNotFound means no paragraph exists at the requested location.
	ErrNotFound = errors.New("paragraph not found")
	// ErrStale means the paragraph at the location no longer holds the
	// text the caller indexed.
	ErrStale = errors.New("paragraph changed since it was indexed")
	// ErrReadOnly is returned by stores that cannot write their format.
	ErrReadOnly = errors.New("document format is read-only")
)

// Store is the persisted document behind a session.
type Store interface {
	// Load reads the whole document.
	Load(ctx context.Context) (doctree.Body, error)
	// ReplaceParagraph replaces the text of the paragraph at loc, provided
	// its current trimmed text equals expected.
	ReplaceParagraph(ctx context.Context, loc doctree.Location, expected, text string) error
	// AppendParagraphs adds blocks at the end of the document.
	AppendParagraphs(ctx context.Context, blocks []Block) error
}

// ImageAppender is implemented by stores that can embed pictures.
type ImageAppender interface {
	AppendImage(ctx context.Context, img []byte, widthInches float64) error
}

// BlockKind is the formatting applied to an appended paragraph.
type BlockKind string

const (
	KindNormal   BlockKind = "normal"
	KindTitle    BlockKind = "title"
	KindHeading1 BlockKind = "heading1"
	KindHeading2 BlockKind = "heading2"
	KindHeading3 BlockKind = "heading3"
	KindBold     BlockKind = "bold"
	KindItalic   BlockKind = "italic"
	KindBullet   BlockKind = "bullet"
)

// Block is one paragraph to append.
type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
}
