package service

import (
	"context"
	"log"

	userRepo "anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/pkg/mailer"
	"github.com/google/uuid"
)

// UserMailer resolves a user's address and display name before sending.
// A nil mailer turns every call into a no-op.
type UserMailer struct {
	users  userRepo.UserRepository
	mailer mailer.Mailer
}

func NewUserMailer(users userRepo.UserRepository, m mailer.Mailer) *UserMailer {
	return &UserMailer{users: users, mailer: m}
}

// Send builds the message from the recipient's full name. Errors are logged, never returned.
func (m *UserMailer) Send(ctx context.Context, userID uuid.UUID, build func(fullName string) (subject, html string)) {
	if m == nil || m.mailer == nil {
		return
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		log.Printf("[mail] recipient %s not found: %v", userID, err)
		return
	}

	name := user.Username
	if user.Profile != nil && user.Profile.FullName != "" {
		name = user.Profile.FullName
	}

	subject, html := build(name)
	if err := m.mailer.Send(ctx, name, user.Email, subject, html); err != nil {
		log.Printf("[mail] failed to send %q to %s: %v", subject, user.Email, err)
	}
}
