package upload

import (
	"ai-course-concepts/internal/database/model"
	"errors"
	"time"

	"gorm.io/gorm"
)

// EnsureCourse creates the course row if it does not exist yet.
func EnsureCourse(db *gorm.DB, courseID string) error {
	if db == nil {
		return errors.New("nil db")
	}
	var course model.Course
	err := db.Where("course_id = ?", courseID).First(&course).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		return db.Create(&model.Course{CourseID: courseID, CreatedAt: &now}).Error
	}
	return err
}

// EnsureBook creates the book row (within its course) if it does not exist.
func EnsureBook(db *gorm.DB, courseID, bookID string) error {
	if db == nil {
		return errors.New("nil db")
	}
	var book model.Book
	err := db.Where("course_id = ? AND book_id = ?", courseID, bookID).First(&book).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		return db.Create(&model.Book{CourseID: courseID, BookID: bookID, CreatedAt: &now}).Error
	}
	return err
}
