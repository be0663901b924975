package ingest

import (
	"ai-course-concepts/config"
	"context"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	milvusVectorDim   = 1536
	maxContentVarchar = 8192
	maxSourceVarchar  = 512
)

// UpsertMilvusVectors ensures the collection exists and inserts embeddings
// with their course/source scoping payload. Returns IDs and collection name.
func UpsertMilvusVectors(ctx context.Context, vectors [][]float32, docID int64, courseID, source string, chunks []Chunk) ([]int64, string, error) {
	cli, err := milvusclient.NewClient(ctx, milvusclient.Config{Address: config.Cfg.Milvus.Address})
	if err != nil {
		return nil, "", err
	}
	defer cli.Close()

	collection := config.Cfg.Milvus.Collection
	if collection == "" {
		collection = "material_chunks"
	}
	exists, err := cli.HasCollection(ctx, collection)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		if err := createChunksCollection(ctx, cli, collection); err != nil {
			return nil, "", err
		}
	}

	// Column payload: course_id and source let retrieval scope searches to a
	// course and to one book's materials via a path-prefix filter.
	docIDs := make([]int64, len(chunks))
	chunkIdxs := make([]int32, len(chunks))
	pageIdxs := make([]int32, len(chunks))
	courseIDs := make([]string, len(chunks))
	sources := make([]string, len(chunks))
	contents := make([]string, len(chunks))
	for i, ch := range chunks {
		docIDs[i] = docID
		chunkIdxs[i] = ch.ChunkIndex
		pageIdxs[i] = ch.PageIndex
		courseIDs[i] = courseID
		sources[i] = source
		contents[i] = truncateVarchar(ch.Content, maxContentVarchar)
	}

	// Deterministic primary keys from docID and chunkIndex to avoid AutoID API differences
	ids := make([]int64, len(chunks))
	for i := range chunks {
		ids[i] = (docID << 20) + int64(chunks[i].ChunkIndex)
	}
	colID := milvusentity.NewColumnInt64("id", ids)
	colDoc := milvusentity.NewColumnInt64("doc_id", docIDs)
	colChunk := milvusentity.NewColumnInt32("chunk_index", chunkIdxs)
	colPage := milvusentity.NewColumnInt32("page_index", pageIdxs)
	colCourse := milvusentity.NewColumnVarChar("course_id", courseIDs)
	colSource := milvusentity.NewColumnVarChar("source", sources)
	colContent := milvusentity.NewColumnVarChar("content", contents)
	colVec := milvusentity.NewColumnFloatVector("embedding", milvusVectorDim, vectors)

	if _, err := cli.Insert(ctx, collection, "", colID, colDoc, colChunk, colPage, colCourse, colSource, colContent, colVec); err != nil {
		return nil, "", err
	}
	return ids, collection, nil
}

func createChunksCollection(ctx context.Context, cli milvusclient.Client, collection string) error {
	schema := milvusentity.NewSchema().WithName(collection).WithDescription("course material chunks")
	// Primary key (no AutoID) – we will provide IDs
	schema.WithField(milvusentity.NewField().WithName("id").WithDataType(milvusentity.FieldTypeInt64).WithIsPrimaryKey(true))
	schema.WithField(milvusentity.NewField().WithName("doc_id").WithDataType(milvusentity.FieldTypeInt64))
	schema.WithField(milvusentity.NewField().WithName("chunk_index").WithDataType(milvusentity.FieldTypeInt32))
	schema.WithField(milvusentity.NewField().WithName("page_index").WithDataType(milvusentity.FieldTypeInt32))
	schema.WithField(milvusentity.NewField().WithName("course_id").WithDataType(milvusentity.FieldTypeVarChar).WithMaxLength(64))
	schema.WithField(milvusentity.NewField().WithName("source").WithDataType(milvusentity.FieldTypeVarChar).WithMaxLength(maxSourceVarchar))
	schema.WithField(milvusentity.NewField().WithName("content").WithDataType(milvusentity.FieldTypeVarChar).WithMaxLength(maxContentVarchar))
	schema.WithField(milvusentity.NewField().WithName("embedding").WithDataType(milvusentity.FieldTypeFloatVector).WithDim(milvusVectorDim))

	if err := cli.CreateCollection(ctx, schema, 2); err != nil {
		return err
	}

	return nil
}

func truncateVarchar(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
