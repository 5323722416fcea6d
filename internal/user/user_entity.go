package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeNumber string    `gorm:"type:varchar(20);uniqueIndex:uq_users_employee_number"`
	FullName       string    `gorm:"type:varchar(150);not null"`
	Email          string    `gorm:"type:varchar(150);not null;uniqueIndex:uq_users_email"`
	PasswordHash   string    `gorm:"type:varchar(100)"`
	Gender         string    `gorm:"type:varchar(10)"`

	ManagerID *uuid.UUID `gorm:"type:uuid;index:idx_users_manager"`
	Manager   *User      `gorm:"foreignKey:ManagerID"`

	IsActive bool      `gorm:"not null;default:true;index:idx_users_active"`
	HireDate time.Time `gorm:"type:date"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_users_deleted_at"`
}
