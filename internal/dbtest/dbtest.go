// Package dbtest opens migrated in-memory databases for repository tests.
package dbtest

import (
	"testing"

	"anoa.com/gradenotify/internal/bootstrap"
	"anoa.com/gradenotify/internal/entity"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a private in-memory SQLite database with foreign keys
// enforced, the schema migrated and the default roles seeded. The pool is
// pinned to one connection so every query sees the same memory database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := bootstrap.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, role string) *entity.User {
	t.Helper()

	var r entity.Role
	if err := db.Where("name = ?", role).First(&r).Error; err != nil {
		t.Fatalf("find role %s: %v", role, err)
	}

	u := &entity.User{RoleID: &r.ID}
	u.Username = role + "-" + uuid.NewString()[:8]
	u.Email = u.Username + "@example.com"
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func CreateAssessment(t testing.TB, db *gorm.DB, status string) *entity.Assessment {
	t.Helper()

	a := &entity.Assessment{Title: "Quiz", Status: status}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create assessment: %v", err)
	}
	return a
}

func CreateSubmission(t testing.TB, db *gorm.DB, assessment *entity.Assessment, student *entity.User) *entity.Submission {
	t.Helper()

	s := &entity.Submission{AssessmentID: assessment.ID, StudentID: student.ID}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("create submission: %v", err)
	}
	return s
}
