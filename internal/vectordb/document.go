package vectordb

// DocumentKind categorizes the kind of record stored in the vector DB.
type DocumentKind string

const (
	KindDigimon DocumentKind = "digimon"
)

// Document represents a piece of content to be stored and searched.
type Document struct {
	ID       string
	Content  string
	Metadata DocumentMetadata
}

// DocumentMetadata holds structured information about a document.
type DocumentMetadata struct {
	Kind      DocumentKind
	RecordID  int
	Slug      string
	Stage     string
	Attribute string
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}

// SearchFilter allows narrowing search results by metadata fields.
type SearchFilter struct {
	Kind      *DocumentKind
	Stage     *string
	Attribute *string
}
