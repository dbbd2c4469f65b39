package bootstrap

import (
	"anoa.com/gradenotify/internal/entity"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.Group{},
		&entity.User{},
		&entity.Assessment{},
		&entity.Question{},
		&entity.Submission{},
		&entity.Answer{},
		&entity.Notification{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Platform administrator and internal trigger caller"},
		{Name: entity.RoleStaff, Description: "Grader in charge of a group"},
		{Name: entity.RoleStudent, Description: "Assessment taker"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
