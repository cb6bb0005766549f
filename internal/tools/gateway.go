// Package tools exposes document operations to the agent as named tools.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/dgallion1/docedit/internal/docstore"
	"github.com/dgallion1/docedit/internal/doctree"
	"github.com/dgallion1/docedit/internal/llm"
	"github.com/dgallion1/docedit/internal/metrics"
	"github.com/dgallion1/docedit/internal/session"
)

// ExportFile is the name index_document writes under the export directory.
const ExportFile = "document_index.json"

const (
	outlinePreview = 10
	textPreview    = 100
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Sessions returns the session for a document path.
type Sessions interface {
	Get(path string) (*session.Session, error)
}

// Blobs resolves paths of auxiliary files such as images.
type Blobs interface {
	Blob(path string) (docstore.Blob, error)
}

// Workspace is the per-conversation tool context: the document the tools act
// on. index_document with a path switches it.
type Workspace struct {
	Path string
}

// Gateway executes tool calls against document sessions.
type Gateway struct {
	sessions  Sessions
	blobs     Blobs
	exportDir string
	log       *slog.Logger
}

func NewGateway(sessions Sessions, blobs Blobs, exportDir string, log *slog.Logger) *Gateway {
	return &Gateway{sessions: sessions, blobs: blobs, exportDir: exportDir, log: log}
}

type handler func(g *Gateway, ctx context.Context, ws *Workspace, args json.RawMessage) (any, bool)

var handlers = map[string]handler{
	IndexDocument:      (*Gateway).indexDocument,
	ApplyEdit:          (*Gateway).applyEdit,
	GetParagraph:       (*Gateway).getParagraph,
	SearchDocument:     (*Gateway).searchDocument,
	GetDocumentOutline: (*Gateway).getOutline,
	UpdateTOC:          (*Gateway).updateTOC,
	InsertContent:      (*Gateway).insertContent,
	InsertImage:        (*Gateway).insertImage,
}

// Known reports whether name is a registered tool.
func Known(name string) bool {
	_, ok := handlers[name]
	return ok
}

// Run executes the named tool with raw JSON arguments and returns its
// result value. Failures are results, never errors.
func (g *Gateway) Run(ctx context.Context, ws *Workspace, name string, args json.RawMessage) any {
	h, ok := handlers[name]
	if !ok {
		metrics.ToolCalls.WithLabelValues("unknown", metrics.OutcomeFailed).Inc()
		return Failure{Message: fmt.Sprintf("Unknown tool: %s", name)}
	}
	if len(strings.TrimSpace(string(args))) == 0 {
		args = json.RawMessage("{}")
	}

	result, ok := h(g, ctx, ws, args)
	outcome := metrics.OutcomeOK
	if !ok {
		outcome = metrics.OutcomeFailed
	}
	metrics.ToolCalls.WithLabelValues(name, outcome).Inc()
	g.log.Info("tool executed", "tool", name, "document", ws.Path, "ok", ok)
	return result
}

// Execute runs call and wraps the JSON result as a tool message correlated
// to the call id.
func (g *Gateway) Execute(ctx context.Context, ws *Workspace, call llm.ToolCall) llm.Message {
	result := g.Run(ctx, ws, call.Function.Name, json.RawMessage(call.Function.Arguments))
	return llm.ToolMessage(call.ID, call.Function.Name, encode(result))
}

// CurrentText returns the indexed text of the paragraph an apply_edit call
// targets, for previewing the change.
func (g *Gateway) CurrentText(ctx context.Context, ws *Workspace, call llm.ToolCall) (string, bool) {
	if call.Function.Name != ApplyEdit {
		return "", false
	}
	var args editArgs
	if json.Unmarshal([]byte(call.Function.Arguments), &args) != nil {
		return "", false
	}
	anchor, err := doctree.ParseAnchor(args.Anchor)
	if err != nil {
		return "", false
	}
	sess, err := g.sessions.Get(ws.Path)
	if err != nil {
		return "", false
	}
	ix, err := sess.Index(ctx)
	if err != nil {
		return "", false
	}
	p, ok := ix.FindByAnchor(anchor)
	return p.Text, ok
}

func encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"message":%q}`, "encode result: "+err.Error())
	}
	return string(data)
}

// decodeArgs unmarshals and validates tool arguments.
func decodeArgs(name string, raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", name, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", name, err)
	}
	return nil
}

func (g *Gateway) index(ctx context.Context, ws *Workspace) (*session.Session, *doctree.Index, error) {
	sess, err := g.sessions.Get(ws.Path)
	if err != nil {
		return nil, nil, err
	}
	ix, err := sess.Index(ctx)
	if err != nil {
		return nil, nil, err
	}
	return sess, ix, nil
}

type indexArgs struct {
	Path   string `json:"path"`
	Export bool   `json:"export"`
}

func (g *Gateway) indexDocument(ctx context.Context, ws *Workspace, raw json.RawMessage) (any, bool) {
	var args indexArgs
	if err := decodeArgs(IndexDocument, raw, &args); err != nil {
		return Failure{Message: err.Error()}, false
	}
	path := ws.Path
	if args.Path != "" {
		path = args.Path
	}
	sess, err := g.sessions.Get(path)
	if err != nil {
		return Failure{Message: fmt.Sprintf("Failed to index document: %v", err)}, false
	}
	ix, err := sess.Reindex(ctx)
	if err != nil {
		return Failure{Message: fmt.Sprintf("Failed to index document: %v", err)}, false
	}
	ws.Path = path

	outline := ix.Outline()
	res := IndexResult{
		Success:         true,
		TotalParagraphs: ix.Len(),
		TotalHeadings:   len(outline),
		Outline:         outline[:min(len(outline), outlinePreview)],
		Message:         fmt.Sprintf("Successfully indexed document with %d paragraphs and %d headings", ix.Len(), len(outline)),
	}
	if args.Export {
		out, err := g.export(ix)
		if err != nil {
			g.log.Warn("index export failed", "error", err)
			res.Message += fmt.Sprintf(" (export failed: %v)", err)
		} else {
			res.ExportedTo = out
		}
	}
	return res, true
}

func (g *Gateway) export(ix *doctree.Index) (string, error) {
	out := filepath.Join(g.exportDir, ExportFile)
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	defer f.Close()
	if err := ix.Export(f); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return out, nil
}

type editArgs struct {
	Anchor  json.RawMessage `json:"anchor" validate:"required"`
	NewText string          `json:"new_text"`
}

func (g *Gateway) applyEdit(ctx context.Context, ws *Workspace, raw json.RawMessage) (any, bool) {
	var args editArgs
	if err := decodeArgs(ApplyEdit, raw, &args); err != nil {
		return Failure{Message: err.Error()}, false
	}
	notFound := Failure{Message: "Failed to apply edit. Verify the anchor is correct.", Anchor: args.Anchor}
	// A blank paragraph drops out of the index and takes its anchor with it.
	if strings.TrimSpace(args.NewText) == "" {
		return Failure{Message: "Failed to apply edit: new_text must not be empty.", Anchor: args.Anchor}, false
	}

	anchor, err := doctree.ParseAnchor(args.Anchor)
	if err != nil {
		return notFound, false
	}
	sess, err := g.sessions.Get(ws.Path)
	if err != nil {
		return Failure{Message: fmt.Sprintf("Failed to apply edit: %v", err), Anchor: args.Anchor}, false
	}
	ok, err := sess.UpdateParagraph(ctx, anchor, args.NewText)
	switch {
	case err != nil && !ok:
		return Failure{Message: fmt.Sprintf("Failed to apply edit: %v", err), Anchor: args.Anchor}, false
	case err != nil:
		// Written, but the follow-up reindex failed.
		g.log.Warn("reindex after edit failed", "error", err)
	case !ok:
		return notFound, false
	}
	return EditResult{
		Success: true,
		Message: "Edit applied successfully",
		Anchor:  args.Anchor,
		NewText: Truncate(args.NewText, textPreview),
	}, true
}

type anchorArgs struct {
	Anchor json.RawMessage `json:"anchor" validate:"required"`
}

// getParagraph answers null for anything that does not resolve.
func (g *Gateway) getParagraph(ctx context.Context, ws *Workspace, raw json.RawMessage) (any, bool) {
	var args anchorArgs
	if err := decodeArgs(GetParagraph, raw, &args); err != nil {
		return nil, false
	}
	anchor, err := doctree.ParseAnchor(args.Anchor)
	if err != nil {
		return nil, false
	}
	_, ix, err := g.index(ctx, ws)
	if err != nil {
		return nil, false
	}
	p, ok := ix.FindByAnchor(anchor)
	if !ok {
		return nil, true
	}
	return p, true
}

type searchArgs struct {
	Query         string `json:"query" validate:"required"`
	CaseSensitive bool   `json:"case_sensitive"`
}

func (g *Gateway) searchDocument(ctx context.Context, ws *Workspace, raw json.RawMessage) (any, bool) {
	var args searchArgs
	if err := decodeArgs(SearchDocument, raw, &args); err != nil {
		return Failure{Message: err.Error()}, false
	}
	_, ix, err := g.index(ctx, ws)
	if err != nil {
		return Failure{Message: fmt.Sprintf("Failed to search document: %v", err)}, false
	}
	matches := ix.FindByText(args.Query, args.CaseSensitive)
	return SearchResult{Matches: matches, Count: len(matches), Query: args.Query}, true
}

func (g *Gateway) getOutline(ctx context.Context, ws *Workspace, _ json.RawMessage) (any, bool) {
	_, ix, err := g.index(ctx, ws)
	if err != nil {
		return Failure{Message: fmt.Sprintf("Failed to read outline: %v", err)}, false
	}
	headings := ix.Outline()
	return OutlineResult{Headings: headings, Count: len(headings)}, true
}

func (g *Gateway) updateTOC(ctx context.Context, ws *Workspace, _ json.RawMessage) (any, bool) {
	_, ix, err := g.index(ctx, ws)
	if err != nil {
		return Failure{Message: fmt.Sprintf("Failed to build table of contents: %v", err)}, false
	}
	toc := BuildTOC(ix.Outline())
	return TOCResult{
		Success:      true,
		TOC:          toc,
		TotalEntries: len(toc.Entries),
		Message:      fmt.Sprintf("Table of Contents generated with %d entries", len(toc.Entries)),
	}, true
}

// BuildTOC derives a table of contents from outline headings.
func BuildTOC(outline []doctree.Paragraph) TOC {
	toc := TOC{Title: "Table of Contents", Entries: make([]TOCEntry, 0, len(outline))}
	for _, h := range outline {
		toc.Entries = append(toc.Entries, TOCEntry{
			Level:  h.Level,
			Text:   h.Text,
			Anchor: h.Anchor,
			Indent: strings.Repeat("  ", max(h.Level-1, 0)),
		})
	}
	return toc
}

type insertArgs struct {
	Content      string `json:"content" validate:"required"`
	SectionTitle string `json:"section_title"`
}

func (g *Gateway) insertContent(ctx context.Context, ws *Workspace, raw json.RawMessage) (any, bool) {
	var args insertArgs
	if err := decodeArgs(InsertContent, raw, &args); err != nil {
		return Failure{Message: err.Error()}, false
	}
	sess, err := g.sessions.Get(ws.Path)
	if err != nil {
		return Failure{Message: fmt.Sprintf("Failed to insert content: %v", err)}, false
	}
	n, err := sess.InsertContent(ctx, args.Content, args.SectionTitle)
	if err != nil && n == 0 {
		return Failure{Message: fmt.Sprintf("Failed to insert content: %v", err)}, false
	}
	if err != nil {
		g.log.Warn("reindex after insert failed", "error", err)
	}

	msg := "Successfully inserted content"
	if title := strings.TrimSpace(args.SectionTitle); title != "" {
		msg += " with section title: " + title
	}
	return InsertResult{
		Success:         true,
		Message:         msg,
		ContentLength:   utf8.RuneCountInString(args.Content),
		ParagraphsAdded: n,
	}, true
}

type imageArgs struct {
	ImagePath   string  `json:"image_path" validate:"required"`
	WidthInches float64 `json:"width_inches" validate:"gte=0,lte=20"`
}

func (g *Gateway) insertImage(ctx context.Context, ws *Workspace, raw json.RawMessage) (any, bool) {
	var args imageArgs
	if err := decodeArgs(InsertImage, raw, &args); err != nil {
		return Failure{Message: err.Error()}, false
	}
	if args.WidthInches == 0 {
		args.WidthInches = docstore.DefaultImageWidth
	}
	fail := func(err error) (any, bool) {
		return Failure{Message: fmt.Sprintf("Failed to insert image: %v", err)}, false
	}

	blob, err := g.blobs.Blob(args.ImagePath)
	if err != nil {
		return fail(err)
	}
	img, err := blob.Read(ctx)
	if err != nil {
		return fail(err)
	}
	sess, err := g.sessions.Get(ws.Path)
	if err != nil {
		return fail(err)
	}
	if err := sess.InsertImage(ctx, img, args.WidthInches); err != nil {
		if errors.Is(err, session.ErrImagesUnsupported) {
			return fail(docstore.ErrReadOnly)
		}
		return fail(err)
	}
	return ImageResult{
		Success:     true,
		Message:     "Image inserted successfully",
		ImagePath:   args.ImagePath,
		WidthInches: args.WidthInches,
	}, true
}

// Truncate shortens s to n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
