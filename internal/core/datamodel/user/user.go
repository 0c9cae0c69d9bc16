package user

import "time"

type User struct {
	ID                   int64      `gorm:"primaryKey"`
	Name                 string     `gorm:"column:name;not null"`
	Email                string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash         string     `gorm:"column:password_hash;not null"`
	Role                 string     `gorm:"column:role;not null"`
	EmployeeID           string     `gorm:"column:employee_id;uniqueIndex;not null"`
	Department           *string    `gorm:"column:department"`
	NotificationsEnabled bool       `gorm:"column:notifications_enabled;not null"`
	LastEmailSent        *time.Time `gorm:"column:last_email_sent"`
	WeeklySummarySent    *time.Time `gorm:"column:weekly_summary_sent"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

// EmployeeIDSequence holds the last issued suffix per employee ID prefix (EMP, MAN).
type EmployeeIDSequence struct {
	Prefix    string    `gorm:"column:prefix;primaryKey"`
	LastValue int       `gorm:"column:last_value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (EmployeeIDSequence) TableName() string {
	return "employee_id_sequences"
}
