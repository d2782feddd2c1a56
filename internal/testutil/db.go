// Package testutil provides fixtures shared by repository and service tests.
package testutil

import (
	"fmt"
	"testing"

	"anoa.com/learnhub/internal/bootstrap"
	"anoa.com/learnhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := bootstrap.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedRoles creates every role and returns them by name.
func SeedRoles(t *testing.T, db *gorm.DB) map[string]entity.Role {
	t.Helper()
	if err := bootstrap.SeedRoles(db); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	var roles []entity.Role
	if err := db.Find(&roles).Error; err != nil {
		t.Fatalf("load roles: %v", err)
	}
	out := make(map[string]entity.Role, len(roles))
	for _, r := range roles {
		out[r.Name] = r
	}
	return out
}

// CreateUser inserts an active user with the given role and a profile.
func CreateUser(t *testing.T, db *gorm.DB, role entity.Role, username string) *entity.User {
	t.Helper()
	u := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		RoleID:       &role.ID,
		IsActive:     true,
	}
	if err := db.Omit("Role").Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := db.Create(&entity.Profile{UserID: u.ID, FullName: username}).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	u.Role = role
	return u
}

// CreateCourse inserts a course owned by instructorID.
func CreateCourse(t *testing.T, db *gorm.DB, instructorID uuid.UUID, slug, status string, price int64) *entity.Course {
	t.Helper()
	c := &entity.Course{
		InstructorID: instructorID,
		Title:        slug,
		Slug:         slug,
		Level:        entity.LevelBeginner,
		Price:        price,
		Currency:     "USD",
		Status:       status,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return c
}

// CreateLesson inserts a lesson with a raw JSON payload.
func CreateLesson(t *testing.T, db *gorm.DB, courseID uuid.UUID, position int, lessonType, content string) *entity.Lesson {
	t.Helper()
	l := &entity.Lesson{
		CourseID: courseID,
		Title:    fmt.Sprintf("Lesson %d", position),
		Type:     lessonType,
		Position: position,
		Content:  []byte(content),
	}
	if err := db.Create(l).Error; err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	return l
}
