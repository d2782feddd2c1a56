package jobs

import (
	"context"
	"log"

	attachment "anoa.com/learnhub/internal/modules/attachment/service"
	courseService "anoa.com/learnhub/internal/modules/course/service"
	paymentService "anoa.com/learnhub/internal/modules/payment/service"
)

const (
	AttachmentCleanupJob = "attachment-cleanup"
	ViewSyncJob          = "course-view-sync"
	PaymentExpiryJob     = "payment-expiry"
)

type attachmentCleanup struct {
	attachments attachment.AttachmentService
	schedule    string
}

// NewAttachmentCleanup removes uploads that were never linked to a lesson.
func NewAttachmentCleanup(attachments attachment.AttachmentService, schedule string) Job {
	return &attachmentCleanup{attachments: attachments, schedule: schedule}
}

func (j *attachmentCleanup) Name() string     { return AttachmentCleanupJob }
func (j *attachmentCleanup) Schedule() string { return j.schedule }

func (j *attachmentCleanup) Run(ctx context.Context) error {
	report, err := j.attachments.CleanupOrphans(ctx)
	if err != nil {
		return err
	}
	log.Printf("🧹 [%s] found=%d deleted=%d failed=%d", j.Name(), report.Found, report.Deleted, report.Failed)
	return nil
}

type viewSync struct {
	views    courseService.ViewCounter
	schedule string
}

// NewViewSync flushes buffered course views into the database.
func NewViewSync(views courseService.ViewCounter, schedule string) Job {
	return &viewSync{views: views, schedule: schedule}
}

func (j *viewSync) Name() string     { return ViewSyncJob }
func (j *viewSync) Schedule() string { return j.schedule }

func (j *viewSync) Run(ctx context.Context) error {
	n, err := j.views.SyncViews(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("👀 [%s] synced views for %d courses", j.Name(), n)
	}
	return nil
}

type paymentExpiry struct {
	payments paymentService.PaymentService
	schedule string
}

// NewPaymentExpiry cancels pending payment intents past their TTL.
func NewPaymentExpiry(payments paymentService.PaymentService, schedule string) Job {
	return &paymentExpiry{payments: payments, schedule: schedule}
}

func (j *paymentExpiry) Name() string     { return PaymentExpiryJob }
func (j *paymentExpiry) Schedule() string { return j.schedule }

func (j *paymentExpiry) Run(ctx context.Context) error {
	n, err := j.payments.ExpireStale(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("💸 [%s] cancelled %d stale payment intents", j.Name(), n)
	}
	return nil
}
