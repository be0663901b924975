package model

import "time"

// Course is a course that owns books, materials and a concept map.
type Course struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CourseID  string     `gorm:"column:course_id;uniqueIndex;size:64" json:"course_id"`
	Title     *string    `gorm:"column:title" json:"title"`
	CreatedAt *time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Course) TableName() string { return "courses" }

// Book is a single book inside a course.
type Book struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CourseID  string     `gorm:"column:course_id;index;size:64" json:"course_id"`
	BookID    string     `gorm:"column:book_id;uniqueIndex;size:64" json:"book_id"`
	Title     *string    `gorm:"column:title" json:"title"`
	CreatedAt *time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Book) TableName() string { return "books" }

// Document is an uploaded source material file (usually a PDF).
type Document struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CourseID         string     `gorm:"column:course_id;index;size:64" json:"course_id"`
	BookID           *string    `gorm:"column:book_id;index;size:64" json:"book_id"`
	OriginalFilename *string    `gorm:"column:original_filename" json:"original_filename"`
	FilePath         *string    `gorm:"column:file_path" json:"file_path"`
	Sha256           *string    `gorm:"column:sha256;size:64" json:"sha256"`
	Status           string     `gorm:"column:status;size:32;default:uploaded" json:"status"`
	UploadedAt       *time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

func (Document) TableName() string { return "documents" }

// Chunk is one embedded slice of a document, mirrored into Milvus.
type Chunk struct {
	ID               int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DocumentID       int64   `gorm:"column:document_id;index" json:"document_id"`
	ChunkIndex       int32   `gorm:"column:chunk_index" json:"chunk_index"`
	PageIndex        *int32  `gorm:"column:page_index" json:"page_index"`
	Content          string  `gorm:"column:content;type:longtext" json:"content"`
	ContentPreview   *string `gorm:"column:content_preview;size:1024" json:"content_preview"`
	TokenCount       *int32  `gorm:"column:token_count" json:"token_count"`
	MilvusCollection string  `gorm:"column:milvus_collection;size:128" json:"milvus_collection"`
	MilvusID         int64   `gorm:"column:milvus_id;index" json:"milvus_id"`
	ContentHash      string  `gorm:"column:content_hash;size:64" json:"content_hash"`
}

func (Chunk) TableName() string { return "chunks" }

// ConceptMapRow persists one concept-map document as JSON, keyed by course
// (book_id empty) or by a course+book pair.
type ConceptMapRow struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CourseID    string     `gorm:"column:course_id;index:idx_scope,unique;size:64" json:"course_id"`
	BookID      string     `gorm:"column:book_id;index:idx_scope,unique;size:64" json:"book_id"`
	Document    string     `gorm:"column:document;type:longtext" json:"document"`
	GeneratedAt *time.Time `gorm:"column:generated_at" json:"generated_at"`
	UpdatedAt   *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (ConceptMapRow) TableName() string { return "concept_maps" }
