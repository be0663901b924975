package conceptstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-course-concepts/internal/core/concepts"
	"ai-course-concepts/internal/database/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no concept-map document exists for the
// requested course or course+book scope.
var ErrNotFound = errors.New("concept map not found")

// Store is the persistence contract consumed by the hybrid orchestrator.
// Last-writer-wins semantics; the hybrid path only reads.
type Store interface {
	Load(ctx context.Context, courseID string) (*concepts.ConceptMapDocument, error)
	LoadBook(ctx context.Context, courseID, bookID string) (*concepts.ConceptMapDocument, error)
	Save(ctx context.Context, courseID string, doc *concepts.ConceptMapDocument) error
}

// MySQLStore keeps one JSON document per course (book_id empty) or per
// course+book pair in the concept_maps table.
type MySQLStore struct {
	db *gorm.DB
}

func NewMySQLStore(db *gorm.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) Load(ctx context.Context, courseID string) (*concepts.ConceptMapDocument, error) {
	return s.load(ctx, courseID, "")
}

// LoadBook resolves the book scope: a dedicated course+book row wins,
// otherwise the course document is checked for a nested book entry.
func (s *MySQLStore) LoadBook(ctx context.Context, courseID, bookID string) (*concepts.ConceptMapDocument, error) {
	doc, err := s.load(ctx, courseID, bookID)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	courseDoc, err := s.load(ctx, courseID, "")
	if err != nil {
		return nil, err
	}
	if nested := courseDoc.BookDocument(bookID); nested != nil {
		return nested, nil
	}
	return nil, ErrNotFound
}

func (s *MySQLStore) Save(ctx context.Context, courseID string, doc *concepts.ConceptMapDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	now := time.Now()
	generated := doc.GeneratedAt
	row := model.ConceptMapRow{
		CourseID:    courseID,
		BookID:      doc.BookID,
		Document:    string(payload),
		GeneratedAt: &generated,
		UpdatedAt:   &now,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "book_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "generated_at", "updated_at"}),
	}).Create(&row).Error
}

func (s *MySQLStore) load(ctx context.Context, courseID, bookID string) (*concepts.ConceptMapDocument, error) {
	var row model.ConceptMapRow
	err := s.db.WithContext(ctx).
		Where("course_id = ? AND book_id = ?", courseID, bookID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var doc concepts.ConceptMapDocument
	if err := json.Unmarshal([]byte(row.Document), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
