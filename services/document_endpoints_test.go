package services

import (
	"testing"
)

func TestIndexDocumentWithoutVectorStore(t *testing.T) {
	// Without Gemini no vector store is wired, but uploads still succeed and
	// spawn indexing in a goroutine; it must return instead of panicking.
	e := &DocumentEndpoints{}

	e.indexDocument("doc-1", "some extracted text")
}
