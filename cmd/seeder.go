package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/frahmantamala/attendance-tracker/internal"
	"github.com/frahmantamala/attendance-tracker/internal/attendance"
	"github.com/frahmantamala/attendance-tracker/internal/core/calendar"
	attendanceDatamodel "github.com/frahmantamala/attendance-tracker/internal/core/datamodel/attendance"
	userDatamodel "github.com/frahmantamala/attendance-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance-tracker/internal/user"
	"github.com/frahmantamala/attendance-tracker/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	seedManagerPassword  = "manager123"
	seedEmployeePassword = "employee123"
)

var (
	clearData bool
	seedDays  int
)

type seedAccount struct {
	Name       string
	Email      string
	Role       string
	Department string
}

var seedAccounts = []seedAccount{
	{"John Manager", "manager@example.com", internal.RoleManager, "Management"},
	{"Alice Johnson", "alice@example.com", internal.RoleEmployee, "Engineering"},
	{"Bob Smith", "bob@example.com", internal.RoleEmployee, "Engineering"},
	{"Charlie Brown", "charlie@example.com", internal.RoleEmployee, "Marketing"},
	{"Diana Prince", "diana@example.com", internal.RoleEmployee, "Sales"},
	{"Eve Wilson", "eve@example.com", internal.RoleEmployee, "HR"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users and attendance history for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		lg := logger.LoggerWrapper()

		sqlDB, gormDB, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		app, err := newApplication(cfg, sqlDB, gormDB, lg)
		if err != nil {
			return err
		}
		defer app.Close()

		seeder := &demoSeeder{
			db:         gormDB,
			users:      app.Users,
			classifier: app.Attendance.Classifier(),
			today:      app.Attendance.Today(),
			rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
			logger:     lg,
		}
		return seeder.Run(cmd.Context(), clearData, seedDays)
	},
}

type demoSeeder struct {
	db         *gorm.DB
	users      *user.Service
	classifier *attendance.Classifier
	today      calendar.Date
	rnd        *rand.Rand
	logger     *slog.Logger
}

// Run registers the demo accounts and fills days of history ending yesterday for every
// employee. Accounts that already exist are reused, and days already recorded are skipped.
func (s *demoSeeder) Run(ctx context.Context, clear bool, days int) error {
	if clear {
		if err := s.clear(ctx); err != nil {
			return err
		}
	}

	var employees []*user.User
	for _, acct := range seedAccounts {
		u, err := s.ensureUser(ctx, acct)
		if err != nil {
			return err
		}
		if u.Role == internal.RoleEmployee {
			employees = append(employees, u)
		}
	}

	created := 0
	for i := days; i >= 1; i-- {
		day := s.today.AddDays(-i)
		for _, u := range employees {
			ok, err := s.seedDay(ctx, u.ID, day)
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
	}

	s.logger.Info("seed complete",
		"users", len(seedAccounts),
		"attendance_records", created,
		"manager_login", seedAccounts[0].Email+" / "+seedManagerPassword,
		"employee_password", seedEmployeePassword)
	return nil
}

func (s *demoSeeder) clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&attendanceDatamodel.Attendance{},
			&userDatamodel.User{},
			&userDatamodel.EmployeeIDSequence{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		s.logger.Info("cleared existing data")
		return nil
	})
}

func (s *demoSeeder) ensureUser(ctx context.Context, acct seedAccount) (*user.User, error) {
	password := seedEmployeePassword
	if acct.Role == internal.RoleManager {
		password = seedManagerPassword
	}
	dept := acct.Department

	u, err := s.users.Register(ctx, user.RegisterDTO{
		Name:       acct.Name,
		Email:      acct.Email,
		Password:   password,
		Role:       acct.Role,
		Department: &dept,
	})
	if errors.Is(err, internal.ErrEmailTaken) {
		return s.users.Authenticate(ctx, acct.Email, password)
	}
	if err != nil {
		return nil, fmt.Errorf("seed user %s: %w", acct.Email, err)
	}
	s.logger.Info("seeded user", "email", u.Email, "employee_id", u.EmployeeID)
	return u, nil
}

// seedDay writes one finished shift. About one day in twelve is an absence and another
// one in twelve is a short half-day, so every status shows up in reports.
func (s *demoSeeder) seedDay(ctx context.Context, userID int64, day calendar.Date) (bool, error) {
	loc := s.classifier.Location()
	row := &attendanceDatamodel.Attendance{UserID: userID, Date: day}

	switch roll := s.rnd.Intn(12); {
	case roll == 0:
		row.Status = string(attendance.StatusAbsent)
	default:
		start := day.In(loc).Add(8*time.Hour + time.Duration(s.rnd.Intn(150))*time.Minute)
		worked := 7*time.Hour + time.Duration(s.rnd.Intn(120))*time.Minute
		if roll == 1 {
			worked = 3*time.Hour + time.Duration(s.rnd.Intn(50))*time.Minute
		}
		end := start.Add(worked)
		hours := attendance.RoundHours(attendance.ElapsedHours(start, end))

		row.CheckInTime = &start
		row.CheckOutTime = &end
		row.TotalHours = &hours
		row.Status = string(s.classifier.Classify(&start, &end))
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, fmt.Errorf("seed attendance for user %d on %s: %w", userID, day, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
	seedCmd.Flags().IntVar(&seedDays, "days", 30, "Days of attendance history to generate")
}
