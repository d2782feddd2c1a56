package bootstrap

import (
	"log"

	"anoa.com/learnhub/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Profile{},
		&entity.Course{},
		&entity.CourseAssessor{},
		&entity.Lesson{},
		&entity.Enrollment{},
		&entity.LessonCompletion{},
		&entity.QuizAttempt{},
		&entity.Certificate{},
		&entity.PaymentIntent{},
		&entity.Notification{},
		&entity.DiscussionThread{},
		&entity.DiscussionReply{},
		&entity.Attachment{},
		&entity.ActivityLog{},
	)
}

var roleDescriptions = map[string]string{
	entity.RoleAdmin:      "Platform administrator",
	entity.RoleInstructor: "Creates and teaches courses",
	entity.RoleAssessor:   "Reviews certificate requests for assigned courses",
	entity.RoleStudent:    "Enrolls in courses",
}

func SeedRoles(db *gorm.DB) error {
	for _, name := range entity.Roles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			role := entity.Role{Name: name, Description: roleDescriptions[name]}
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB, email, password string) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
		IsActive:     true,
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Role").Create(&adminUser).Error; err != nil {
			return err
		}

		bio := "System Administrator"
		adminProfile := entity.Profile{
			UserID:   adminUser.ID,
			FullName: "Administrator",
			Bio:      &bio,
		}
		if err := tx.Create(&adminProfile).Error; err != nil {
			return err
		}

		log.Println("✅ Admin user seeded successfully")
		log.Printf("   Email: %s", email)
		return nil
	})
}
