// Package lessonmigrate rewrites legacy lesson rows into the typed payload schema.
package lessonmigrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"anoa.com/learnhub/internal/entity"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultBatchSize = 200

type Options struct {
	DryRun    bool
	BackupDir string
	BatchSize int
}

type RowError struct {
	LessonID string `json:"lesson_id"`
	Error    string `json:"error"`
}

type Report struct {
	Scanned    int        `json:"scanned"`
	Migrated   int        `json:"migrated"`
	Skipped    int        `json:"skipped"`
	DryRun     bool       `json:"dry_run"`
	BackupFile string     `json:"backup_file,omitempty"`
	Errors     []RowError `json:"errors"`
}

func (r *Report) fail(id uuid.UUID, err error) {
	r.Errors = append(r.Errors, RowError{LessonID: id.String(), Error: err.Error()})
}

// Snapshot holds a lesson row as it was before migration.
// Content is kept as a string since legacy rows may not be valid JSON.
type Snapshot struct {
	ID      uuid.UUID `json:"id"`
	Type    string    `json:"type"`
	Content string    `json:"content"`
}

type Backup struct {
	CreatedAt time.Time  `json:"created_at"`
	Lessons   []Snapshot `json:"lessons"`
}

type plan struct {
	original Snapshot
	result   *Result
}

type Migrator struct {
	db     *gorm.DB
	policy *bluemonday.Policy
	now    func() time.Time
}

func NewMigrator(db *gorm.DB) *Migrator {
	return &Migrator{
		db:     db,
		policy: bluemonday.UGCPolicy(),
		now:    time.Now,
	}
}

// Run scans every lesson, backs up the rows it is about to change and rewrites them.
// Row failures are collected in the report; only scan and backup failures abort the run.
func (m *Migrator) Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	report := &Report{DryRun: opts.DryRun, Errors: []RowError{}}

	var plans []plan
	var batch []entity.Lesson
	err := m.db.WithContext(ctx).
		Select("id", "type", "content").
		FindInBatches(&batch, opts.BatchSize, func(tx *gorm.DB, _ int) error {
			for _, l := range batch {
				report.Scanned++
				res, err := Transform(l.Type, l.Content, m.policy)
				if err != nil {
					report.fail(l.ID, err)
					continue
				}
				if !res.Changed {
					report.Skipped++
					continue
				}
				plans = append(plans, plan{
					original: Snapshot{ID: l.ID, Type: l.Type, Content: string(l.Content)},
					result:   res,
				})
			}
			return nil
		}).Error
	if err != nil {
		return nil, fmt.Errorf("scan lessons: %w", err)
	}

	if opts.DryRun {
		report.Migrated = len(plans)
		return report, nil
	}
	if len(plans) == 0 {
		return report, nil
	}

	backupFile, err := m.writeBackup(opts.BackupDir, plans)
	if err != nil {
		return nil, err
	}
	report.BackupFile = backupFile
	log.Printf("💾 Backed up %d lessons to %s", len(plans), backupFile)

	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		err := m.update(ctx, p.original.ID, p.result.Type, p.result.Content)
		if err != nil {
			report.fail(p.original.ID, err)
			continue
		}
		report.Migrated++
	}
	return report, nil
}

// Rollback restores every row listed in a backup file.
func (m *Migrator) Rollback(ctx context.Context, backupFile string) (*Report, error) {
	raw, err := os.ReadFile(backupFile)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	var backup Backup
	if err := json.Unmarshal(raw, &backup); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}

	report := &Report{BackupFile: backupFile, Errors: []RowError{}}
	for _, s := range backup.Lessons {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++
		if err := m.update(ctx, s.ID, s.Type, datatypes.JSON(s.Content)); err != nil {
			report.fail(s.ID, err)
			continue
		}
		report.Migrated++
	}
	return report, nil
}

func (m *Migrator) update(ctx context.Context, id uuid.UUID, lessonType string, content datatypes.JSON) error {
	res := m.db.WithContext(ctx).
		Model(&entity.Lesson{}).
		Where("id = ?", id).
		Updates(map[string]any{"type": lessonType, "content": content})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("lesson not found")
	}
	return nil
}

func (m *Migrator) writeBackup(dir string, plans []plan) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	now := m.now()
	backup := Backup{CreatedAt: now, Lessons: make([]Snapshot, 0, len(plans))}
	for _, p := range plans {
		backup.Lessons = append(backup.Lessons, p.original)
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("lessons-backup-%s.json", now.Format("20060102-150405")))
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return name, nil
}
