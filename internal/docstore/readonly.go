package docstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/parser"
)

// ReadOnlyStore serves formats that can be indexed but not written back.
type ReadOnlyStore struct {
	blob   Blob
	parser parser.Parser
}

func NewReadOnlyStore(blob Blob, p parser.Parser) *ReadOnlyStore {
	return &ReadOnlyStore{blob: blob, parser: p}
}

func (s *ReadOnlyStore) Load(ctx context.Context) (doctree.Body, error) {
	data, err := s.blob.Read(ctx)
	if err != nil {
		return nil, err
	}
	body, err := s.parser.Parse(bytes.NewReader(data), s.blob.Name())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.blob.Name(), err)
	}
	return body, nil
}

func (s *ReadOnlyStore) ReplaceParagraph(context.Context, doctree.Location, string, string) error {
	return ErrReadOnly
}

func (s *ReadOnlyStore) AppendParagraphs(context.Context, []Block) error {
	return ErrReadOnly
}
