package ingest

import (
	"ai-course-concepts/config"
	coreingest "ai-course-concepts/internal/core/ingest"
	"ai-course-concepts/internal/database"
	"ai-course-concepts/internal/database/model"
	"ai-course-concepts/pkg/logger"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// RunIngestion orchestrates the ingestion pipeline for a material document:
// fetch, extract, chunk, embed, upsert to Milvus, persist chunk rows.
func RunIngestion(docID int64, force bool) {
	db, err := database.GetDB()
	if err != nil {
		logger.Error(err, "ingest: db unavailable")
		return
	}

	doc, err := GetDocumentByID(db, docID)
	if err != nil {
		logger.Error(err, "ingest: get document failed")
		return
	}
	if doc.FilePath == nil {
		logger.Error(errors.New("no file path"), "ingest: document %d has no file", docID)
		return
	}
	logger.WithFields(map[string]interface{}{
		"doc_id":    docID,
		"course_id": doc.CourseID,
		"file_path": *doc.FilePath,
	}).Info("ingest: start")

	// Idempotency
	exists, err := HasChunks(db, docID)
	if err != nil {
		logger.Error(err, "ingest: check chunks failed")
		return
	}
	if exists && !force {
		logger.Info("ingest: chunks already exist; skip (no force)")
		return
	}
	if exists && force {
		if err := DeleteChunksByDocID(db, docID); err != nil {
			logger.Error(err, "ingest: cleanup chunks failed")
			return
		}
	}

	_ = UpdateDocumentStatus(db, docID, "processing")

	tmpPath, cleanup, err := coreingest.FetchToLocalTemp(*doc.FilePath)
	if err != nil {
		logger.Error(err, "ingest: fetch file failed")
		_ = UpdateDocumentStatus(db, docID, "failed")
		return
	}
	defer cleanup()

	pages, err := coreingest.ExtractPDFTextPages(tmpPath)
	if err != nil {
		logger.Error(err, "ingest: extract text failed")
		_ = UpdateDocumentStatus(db, docID, "failed")
		return
	}
	logger.WithFields(map[string]interface{}{
		"doc_id": docID,
		"pages":  len(pages),
	}).Info("ingest: extracted pages")

	targetTokens := config.Cfg.Ingest.ChunkTokens
	if targetTokens <= 0 {
		targetTokens = 600
	}
	overlap := config.Cfg.Ingest.ChunkOverlap
	if overlap < 0 {
		overlap = 80
	}
	chunks := BuildChunks(pages, targetTokens, overlap)
	logger.WithFields(map[string]interface{}{
		"doc_id":       docID,
		"chunks":       len(chunks),
		"chunk_tokens": targetTokens,
		"overlap":      overlap,
	}).Info("ingest: chunks built")

	inputs := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		inputs = append(inputs, ch.Content)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	vectors, err := coreingest.EmbedOpenAI(ctx, inputs)
	if err != nil {
		logger.Error(err, "ingest: embedding failed")
		_ = UpdateDocumentStatus(db, docID, "failed")
		return
	}
	if len(vectors) != len(chunks) {
		logger.Error(errors.New("mismatch"), "ingest: embedding count mismatch")
		_ = UpdateDocumentStatus(db, docID, "failed")
		return
	}

	milvusIDs, collection, err := coreingest.UpsertMilvusVectors(ctx, vectors, docID, doc.CourseID, sourcePath(doc), chunks)
	if err != nil {
		logger.Error(err, "ingest: milvus upsert failed")
		_ = UpdateDocumentStatus(db, docID, "failed")
		return
	}

	if err := InsertChunks(db, docID, chunks, milvusIDs, collection); err != nil {
		logger.Error(err, "ingest: db insert chunks failed")
		_ = UpdateDocumentStatus(db, docID, "failed")
		return
	}

	_ = UpdateDocumentStatus(db, docID, "ready")
}

// sourcePath builds the provenance path stored with every vector. Book-bound
// materials live under books/<book_id>/, which is what RAG source filters
// match against.
func sourcePath(doc *model.Document) string {
	name := ""
	if doc.OriginalFilename != nil {
		name = *doc.OriginalFilename
	}
	if name == "" && doc.FilePath != nil {
		name = filepath.Base(*doc.FilePath)
	}
	if doc.BookID != nil && *doc.BookID != "" {
		return fmt.Sprintf("books/%s/%s", *doc.BookID, name)
	}
	return fmt.Sprintf("courses/%s/%s", doc.CourseID, name)
}
