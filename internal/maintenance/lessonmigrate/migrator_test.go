package lessonmigrate_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/maintenance/lessonmigrate"
	"anoa.com/learnhub/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type legacyFixture struct {
	db        *gorm.DB
	article   *entity.Lesson
	canonical *entity.Lesson
	broken    *entity.Lesson
	document  *entity.Lesson
}

func newLegacyFixture(t *testing.T) *legacyFixture {
	t.Helper()
	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	instructor := testutil.CreateUser(t, db, roles[entity.RoleInstructor], "lecturer")
	course := testutil.CreateCourse(t, db, instructor.ID, "legacy-course", entity.CourseStatusPublished, 0)

	return &legacyFixture{
		db:        db,
		article:   testutil.CreateLesson(t, db, course.ID, 1, "article", `"<p>Intro</p>"`),
		canonical: testutil.CreateLesson(t, db, course.ID, 2, "text", `{"body":"ok"}`),
		broken:    testutil.CreateLesson(t, db, course.ID, 3, "quiz", `"broken"`),
		document:  testutil.CreateLesson(t, db, course.ID, 4, "document", `{"content":"https://cdn.example.com/a.pdf"}`),
	}
}

func (f *legacyFixture) load(t *testing.T, id uuid.UUID) entity.Lesson {
	t.Helper()
	var l entity.Lesson
	require.NoError(t, f.db.First(&l, "id = ?", id).Error)
	return l
}

func TestRunDryRunLeavesRowsUntouched(t *testing.T) {
	f := newLegacyFixture(t)
	dir := t.TempDir()

	report, err := lessonmigrate.NewMigrator(f.db).Run(context.Background(), lessonmigrate.Options{
		DryRun:    true,
		BackupDir: dir,
	})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 4, report.Scanned)
	assert.Equal(t, 2, report.Migrated)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, f.broken.ID.String(), report.Errors[0].LessonID)
	assert.Empty(t, report.BackupFile)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Equal(t, "article", f.load(t, f.article.ID).Type)
}

func TestRunMigratesThenRollsBack(t *testing.T) {
	f := newLegacyFixture(t)
	dir := filepath.Join(t.TempDir(), "backups")
	m := lessonmigrate.NewMigrator(f.db)

	report, err := m.Run(context.Background(), lessonmigrate.Options{BackupDir: dir, BatchSize: 2})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Scanned)
	assert.Equal(t, 2, report.Migrated)
	assert.Equal(t, 1, report.Skipped)
	assert.Len(t, report.Errors, 1)
	require.NotEmpty(t, report.BackupFile)

	raw, err := os.ReadFile(report.BackupFile)
	require.NoError(t, err)
	var backup lessonmigrate.Backup
	require.NoError(t, json.Unmarshal(raw, &backup))
	assert.Len(t, backup.Lessons, 2)

	article := f.load(t, f.article.ID)
	assert.Equal(t, entity.LessonTypeText, article.Type)
	assert.JSONEq(t, `{"body":"<p>Intro</p>"}`, string(article.Content))

	document := f.load(t, f.document.ID)
	assert.Equal(t, entity.LessonTypeFile, document.Type)
	assert.JSONEq(t, `{"file_url":"https://cdn.example.com/a.pdf","file_name":"a.pdf"}`, string(document.Content))

	// untouched rows
	assert.Equal(t, "quiz", f.load(t, f.broken.ID).Type)
	assert.JSONEq(t, `{"body":"ok"}`, string(f.load(t, f.canonical.ID).Content))

	// a second run has nothing left to convert
	again, err := m.Run(context.Background(), lessonmigrate.Options{BackupDir: dir})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Migrated)
	assert.Equal(t, 3, again.Skipped)

	restored, err := m.Rollback(context.Background(), report.BackupFile)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Scanned)
	assert.Equal(t, 2, restored.Migrated)
	assert.Empty(t, restored.Errors)

	article = f.load(t, f.article.ID)
	assert.Equal(t, "article", article.Type)
	assert.JSONEq(t, `"<p>Intro</p>"`, string(article.Content))
	assert.Equal(t, "document", f.load(t, f.document.ID).Type)
}

func TestRollbackReportsMissingRows(t *testing.T) {
	f := newLegacyFixture(t)

	backup := lessonmigrate.Backup{
		CreatedAt: time.Now(),
		Lessons: []lessonmigrate.Snapshot{
			{ID: uuid.New(), Type: "article", Content: `"gone"`},
			{ID: f.canonical.ID, Type: "article", Content: `"restored"`},
		},
	}
	data, err := json.Marshal(backup)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	report, err := lessonmigrate.NewMigrator(f.db).Rollback(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Migrated)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "lesson not found", report.Errors[0].Error)
	assert.Equal(t, "article", f.load(t, f.canonical.ID).Type)
}

func TestRollbackRejectsUnreadableBackup(t *testing.T) {
	f := newLegacyFixture(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := lessonmigrate.NewMigrator(f.db).Rollback(context.Background(), path)
	assert.Error(t, err)

	_, err = lessonmigrate.NewMigrator(f.db).Rollback(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
