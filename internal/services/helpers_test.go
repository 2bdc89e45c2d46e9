package services

import (
	"io"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/synergy-dev/synergy/internal/apperr"
	"github.com/synergy-dev/synergy/internal/models"
)

type fixture struct {
	db            *gorm.DB
	memberships   *MembershipService
	notifications *NotificationService
	projects      *ProjectService
	tasks         *TaskService
	users         *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// A pooled second connection would get its own empty in-memory database.
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Membership{},
		&models.Task{},
		&models.Notification{},
	))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	memberships := NewMembershipService(conn)
	notifications := NewNotificationService(conn, logger)

	return &fixture{
		db:            conn,
		memberships:   memberships,
		notifications: notifications,
		projects:      NewProjectService(conn, memberships, notifications),
		tasks:         NewTaskService(conn, memberships, notifications),
		users:         NewUserService(conn),
	}
}

func (f *fixture) createUser(t *testing.T, name, email string) models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Role:         models.UserRoleUser,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func (f *fixture) createProject(t *testing.T, name string, ownerID uint) ProjectDetail {
	t.Helper()

	detail, err := f.projects.Create(name, "", ownerID)
	require.NoError(t, err)
	return *detail
}

func (f *fixture) addMember(t *testing.T, projectID uint, user models.User, role models.Role, actorID uint) {
	t.Helper()

	_, err := f.projects.AddMember(projectID, user.Email, role, actorID)
	require.NoError(t, err)
}

func (f *fixture) notificationsFor(t *testing.T, userID uint, notificationType models.NotificationType) []models.Notification {
	t.Helper()

	var notifications []models.Notification
	err := f.db.
		Where("user_id = ? AND type = ?", userID, notificationType).
		Order("id").
		Find(&notifications).Error
	require.NoError(t, err)
	return notifications
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()

	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, status, appErr.Status)
}
