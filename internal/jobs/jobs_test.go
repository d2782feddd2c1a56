package jobs

import (
	"context"
	"errors"
	"testing"

	"anoa.com/learnhub/internal/modules/attachment/dto"
	attachment "anoa.com/learnhub/internal/modules/attachment/service"
	courseService "anoa.com/learnhub/internal/modules/course/service"
	paymentService "anoa.com/learnhub/internal/modules/payment/service"
	"github.com/stretchr/testify/assert"
)

type fakeAttachments struct {
	attachment.AttachmentService
	calls int
	err   error
}

func (f *fakeAttachments) CleanupOrphans(ctx context.Context) (*dto.CleanupReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CleanupReport{Found: 2, Deleted: 2}, nil
}

type fakeViews struct {
	courseService.ViewCounter
	calls int
}

func (f *fakeViews) SyncViews(ctx context.Context) (int, error) {
	f.calls++
	return 3, nil
}

type fakePayments struct {
	paymentService.PaymentService
	calls int
}

func (f *fakePayments) ExpireStale(ctx context.Context) (int64, error) {
	f.calls++
	return 1, nil
}

func TestMaintenanceJobs(t *testing.T) {
	ctx := context.Background()
	attachments := &fakeAttachments{}
	views := &fakeViews{}
	payments := &fakePayments{}

	s := NewScheduler()
	assert.NoError(t, s.Register(NewAttachmentCleanup(attachments, "@every 12h")))
	assert.NoError(t, s.Register(NewViewSync(views, "@every 1m")))
	assert.NoError(t, s.Register(NewPaymentExpiry(payments, "@every 1h")))
	assert.Equal(t, []string{AttachmentCleanupJob, ViewSyncJob, PaymentExpiryJob}, s.Registered())

	assert.NoError(t, s.RunByName(ctx, AttachmentCleanupJob))
	assert.NoError(t, s.RunByName(ctx, ViewSyncJob))
	assert.NoError(t, s.RunByName(ctx, PaymentExpiryJob))
	assert.Equal(t, 1, attachments.calls)
	assert.Equal(t, 1, views.calls)
	assert.Equal(t, 1, payments.calls)

	attachments.err = errors.New("storage down")
	assert.EqualError(t, s.RunByName(ctx, AttachmentCleanupJob), "storage down")
}
