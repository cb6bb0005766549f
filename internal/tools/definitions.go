package tools

import "github.com/dgallion1/docedit/internal/llm"

const (
	IndexDocument      = "index_document"
	ApplyEdit          = "apply_edit"
	GetParagraph       = "get_paragraph"
	SearchDocument     = "search_document"
	GetDocumentOutline = "get_document_outline"
	UpdateTOC          = "update_toc"
	InsertContent      = "insert_content"
	InsertImage        = "insert_image"
)

const anchorSchema = `{"type":"array","description":"Paragraph position [\"body\", table, row, column, paragraph], e.g. [\"body\", 0, 0, 0, 5]","items":{},"minItems":5,"maxItems":5}`

// Definitions returns the tool schemas advertised to the model.
func Definitions() []llm.Tool {
	return []llm.Tool{
		llm.FunctionTool(IndexDocument,
			"Index or re-index a document to map every paragraph to its anchor, breadcrumb, style and heading level. Pass path to switch documents.",
			`{"type":"object","properties":{"path":{"type":"string","description":"Document path; defaults to the current document"},"export":{"type":"boolean","description":"Also write the index to document_index.json"}}}`),
		llm.FunctionTool(ApplyEdit,
			"Replace the full text of the paragraph at anchor.",
			`{"type":"object","properties":{"anchor":`+anchorSchema+`,"new_text":{"type":"string","description":"Replacement paragraph text, not blank"}},"required":["anchor","new_text"]}`),
		llm.FunctionTool(GetParagraph,
			"Return the paragraph at anchor, or null if it does not exist.",
			`{"type":"object","properties":{"anchor":`+anchorSchema+`},"required":["anchor"]}`),
		llm.FunctionTool(SearchDocument,
			"Find paragraphs containing query.",
			`{"type":"object","properties":{"query":{"type":"string"},"case_sensitive":{"type":"boolean","default":false}},"required":["query"]}`),
		llm.FunctionTool(GetDocumentOutline,
			"List the document's headings in order.",
			`{"type":"object","properties":{}}`),
		llm.FunctionTool(UpdateTOC,
			"Build a table of contents from the current headings without changing the document.",
			`{"type":"object","properties":{}}`),
		llm.FunctionTool(InsertContent,
			"Append Markdown content at the end of the document, optionally under a bold section title.",
			`{"type":"object","properties":{"content":{"type":"string","description":"Markdown using #, ##, ###, **bold**, *italic* and - bullets"},"section_title":{"type":"string"}},"required":["content"]}`),
		llm.FunctionTool(InsertImage,
			"Append an image at the end of the document.",
			`{"type":"object","properties":{"image_path":{"type":"string"},"width_inches":{"type":"number","default":4}},"required":["image_path"]}`),
	}
}
