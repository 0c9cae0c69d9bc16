package user

import (
	"fmt"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal"
	userDatamodel "github.com/frahmantamala/attendance-tracker/internal/core/datamodel/user"
)

const (
	PrefixEmployee = "EMP"
	PrefixManager  = "MAN"
)

type User struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	Role                 string     `json:"role"`
	EmployeeID           string     `json:"employee_id"`
	Department           *string    `json:"department"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
	LastEmailSent        *time.Time `json:"-"`
	WeeklySummarySent    *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (u *User) IsManager() bool {
	return u.Role == internal.RoleManager
}

// DepartmentOr returns the department name, or fallback when none is set.
func (u *User) DepartmentOr(fallback string) string {
	if u.Department == nil || *u.Department == "" {
		return fallback
	}
	return *u.Department
}

// EmailedOn reports whether a per-day notification already went out on the day of now.
func (u *User) EmailedOn(now time.Time) bool {
	if u.LastEmailSent == nil {
		return false
	}
	y1, m1, d1 := u.LastEmailSent.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// WeeklySummaryDue reports whether the last weekly summary is older than seven days.
func (u *User) WeeklySummaryDue(now time.Time) bool {
	return u.WeeklySummarySent == nil || now.Sub(*u.WeeklySummarySent) >= 7*24*time.Hour
}

func (u *User) AuthUser() *internal.AuthUser {
	return &internal.AuthUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// PrefixForRole picks the employee ID prefix for role.
func PrefixForRole(role string) string {
	if role == internal.RoleManager {
		return PrefixManager
	}
	return PrefixEmployee
}

// FormatEmployeeID renders EMP001, MAN012 and so on. Suffixes past 999 keep growing.
func FormatEmployeeID(prefix string, n int) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.Email,
		PasswordHash:         u.PasswordHash,
		Role:                 u.Role,
		EmployeeID:           u.EmployeeID,
		Department:           u.Department,
		NotificationsEnabled: u.NotificationsEnabled,
		LastEmailSent:        u.LastEmailSent,
		WeeklySummarySent:    u.WeeklySummarySent,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.Email,
		PasswordHash:         u.PasswordHash,
		Role:                 u.Role,
		EmployeeID:           u.EmployeeID,
		Department:           u.Department,
		NotificationsEnabled: u.NotificationsEnabled,
		LastEmailSent:        u.LastEmailSent,
		WeeklySummarySent:    u.WeeklySummarySent,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*userDatamodel.User) []*User {
	result := make([]*User, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
