package services

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synergy-dev/synergy/internal/models"
)

func TestCreateProjectInsertsOwnerMembership(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")

	detail, err := f.projects.Create("Apollo", "moon landing", owner.ID)
	require.NoError(t, err)

	assert.Equal(t, "Apollo", detail.Project.Name)
	assert.Equal(t, owner.ID, detail.Project.OwnerID)
	assert.Equal(t, int64(1), detail.MemberCount)
	assert.Equal(t, int64(0), detail.TaskCount)

	var ownerMemberships int64
	err = f.db.Model(&models.Membership{}).
		Where("project_id = ? AND role = ?", detail.Project.ID, models.RoleOwner).
		Count(&ownerMemberships).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), ownerMemberships)
}

func TestCreateProjectRejectsBlankName(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")

	_, err := f.projects.Create("   ", "", owner.ID)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.projects.Create("x", "", owner.ID)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestListProjectsScopedToMemberships(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "Alice", "alice@example.com")
	bob := f.createUser(t, "Bob", "bob@example.com")

	mine := f.createProject(t, "Apollo", alice.ID)
	f.createProject(t, "Gemini", bob.ID)
	shared := f.createProject(t, "Mercury", bob.ID)
	f.addMember(t, shared.Project.ID, alice, models.RoleMember, bob.ID)

	details, meta, err := f.projects.List(alice.ID, 1, 10)
	require.NoError(t, err)

	require.Len(t, details, 2)
	assert.Equal(t, int64(2), meta.Total)
	// Newest first.
	assert.Equal(t, shared.Project.ID, details[0].Project.ID)
	assert.Equal(t, mine.Project.ID, details[1].Project.ID)
}

func TestListProjectsComputesCounts(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")
	member := f.createUser(t, "Bob", "bob@example.com")

	project := f.createProject(t, "Apollo", owner.ID)
	f.addMember(t, project.Project.ID, member, models.RoleMember, owner.ID)

	for i, status := range []models.TaskStatus{models.TaskStatusDone, models.TaskStatusDone, models.TaskStatusTodo} {
		task := models.Task{
			ProjectID: project.Project.ID,
			Title:     fmt.Sprintf("task %d", i),
			Status:    status,
		}
		require.NoError(t, f.db.Create(&task).Error)
	}

	details, _, err := f.projects.List(owner.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, details, 1)

	assert.Equal(t, int64(3), details[0].TaskCount)
	assert.Equal(t, int64(2), details[0].CompletedTasks)
	assert.Equal(t, int64(2), details[0].MemberCount)
}

func TestListProjectsPagination(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")

	for i := 0; i < 7; i++ {
		f.createProject(t, fmt.Sprintf("Project %02d", i), owner.ID)
	}

	details, meta, err := f.projects.List(owner.ID, 2, 3)
	require.NoError(t, err)

	assert.Len(t, details, 3)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 3, meta.Limit)
	assert.Equal(t, int64(7), meta.Total)
	assert.Equal(t, int64(3), meta.TotalPages)
}

func TestGetProjectHiddenFromNonMembers(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")
	outsider := f.createUser(t, "Carol", "carol@example.com")

	project := f.createProject(t, "Apollo", owner.ID)

	detail, err := f.projects.Get(project.Project.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apollo", detail.Project.Name)
	assert.Equal(t, owner.ID, detail.Project.Owner.ID)

	// Non-members get the same NotFound as a missing project.
	_, err = f.projects.Get(project.Project.ID, outsider.ID)
	requireStatus(t, err, http.StatusNotFound)

	_, err = f.projects.Get(9999, owner.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestUpdateProjectRequiresOwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")
	admin := f.createUser(t, "Bob", "bob@example.com")
	member := f.createUser(t, "Carol", "carol@example.com")

	project := f.createProject(t, "Apollo", owner.ID)
	f.addMember(t, project.Project.ID, admin, models.RoleAdmin, owner.ID)
	f.addMember(t, project.Project.ID, member, models.RoleMember, owner.ID)

	newName := "Apollo 11"
	_, err := f.projects.Update(project.Project.ID, ProjectPatch{Name: &newName}, member.ID)
	requireStatus(t, err, http.StatusForbidden)

	detail, err := f.projects.Update(project.Project.ID, ProjectPatch{Name: &newName}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apollo 11", detail.Project.Name)

	description := "lunar module"
	detail, err = f.projects.Update(project.Project.ID, ProjectPatch{Description: &description}, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apollo 11", detail.Project.Name)
	assert.Equal(t, "lunar module", detail.Project.Description)
}

func TestDeleteProjectOwnerOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")
	admin := f.createUser(t, "Bob", "bob@example.com")

	project := f.createProject(t, "Apollo", owner.ID)
	f.addMember(t, project.Project.ID, admin, models.RoleAdmin, owner.ID)

	err := f.projects.Delete(project.Project.ID, admin.ID)
	requireStatus(t, err, http.StatusForbidden)

	require.NoError(t, f.projects.Delete(project.Project.ID, owner.ID))
}

func TestDeleteProjectCascades(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")
	member := f.createUser(t, "Bob", "bob@example.com")

	project := f.createProject(t, "Apollo", owner.ID)
	f.addMember(t, project.Project.ID, member, models.RoleMember, owner.ID)

	_, err := f.tasks.Create(CreateTaskInput{
		Title:     "prep launch",
		ProjectID: project.Project.ID,
	}, member.ID)
	require.NoError(t, err)

	require.NoError(t, f.projects.Delete(project.Project.ID, owner.ID))

	details, meta, err := f.projects.List(member.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.Equal(t, int64(0), meta.Total)

	tasks, taskMeta, err := f.tasks.List(member.ID, TaskFilters{}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, int64(0), taskMeta.Total)

	var remaining int64
	require.NoError(t, f.db.Model(&models.Membership{}).Where("project_id = ?", project.Project.ID).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)
}

func TestAddMemberCreatesMembershipAndNotifies(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")
	invitee := f.createUser(t, "Bob", "bob@example.com")

	project := f.createProject(t, "Apollo", owner.ID)

	membership, err := f.projects.AddMember(project.Project.ID, "bob@example.com", "", owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, membership.Role)
	assert.Equal(t, invitee.ID, membership.UserID)

	invitations := f.notificationsFor(t, invitee.ID, models.NotificationProjectInvitation)
	require.Len(t, invitations, 1)
	assert.Contains(t, invitations[0].Message, "Apollo")
	assert.False(t, invitations[0].Read)
}

func TestAddMemberFailures(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")
	member := f.createUser(t, "Bob", "bob@example.com")

	project := f.createProject(t, "Apollo", owner.ID)
	f.addMember(t, project.Project.ID, member, models.RoleMember, owner.ID)

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.projects.AddMember(project.Project.ID, "ghost@example.com", models.RoleMember, owner.ID)
		requireStatus(t, err, http.StatusNotFound)
	})

	t.Run("duplicate membership", func(t *testing.T) {
		_, err := f.projects.AddMember(project.Project.ID, member.Email, models.RoleMember, owner.ID)
		requireStatus(t, err, http.StatusConflict)

		var count int64
		require.NoError(t, f.db.Model(&models.Membership{}).
			Where("project_id = ? AND user_id = ?", project.Project.ID, member.ID).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("plain member cannot invite", func(t *testing.T) {
		_, err := f.projects.AddMember(project.Project.ID, "ghost@example.com", models.RoleMember, member.ID)
		requireStatus(t, err, http.StatusForbidden)
	})

	t.Run("owner role cannot be granted", func(t *testing.T) {
		stranger := f.createUser(t, "Dave", "dave@example.com")
		_, err := f.projects.AddMember(project.Project.ID, stranger.Email, models.RoleOwner, owner.ID)
		requireStatus(t, err, http.StatusBadRequest)
	})
}

func TestRemoveMemberProtectsOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")
	admin := f.createUser(t, "Bob", "bob@example.com")

	project := f.createProject(t, "Apollo", owner.ID)
	f.addMember(t, project.Project.ID, admin, models.RoleAdmin, owner.ID)

	err := f.projects.RemoveMember(project.Project.ID, owner.ID, admin.ID)
	requireStatus(t, err, http.StatusBadRequest)

	role, ok, lookupErr := f.memberships.GetRole(project.Project.ID, owner.ID)
	require.NoError(t, lookupErr)
	assert.True(t, ok)
	assert.Equal(t, models.RoleOwner, role)
}

func TestRemoveMemberClearsTaskAssignments(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")
	member := f.createUser(t, "Bob", "bob@example.com")

	project := f.createProject(t, "Apollo", owner.ID)
	f.addMember(t, project.Project.ID, member, models.RoleMember, owner.ID)

	task, err := f.tasks.Create(CreateTaskInput{
		Title:      "prep launch",
		ProjectID:  project.Project.ID,
		AssignedTo: &member.ID,
	}, owner.ID)
	require.NoError(t, err)

	require.NoError(t, f.projects.RemoveMember(project.Project.ID, member.ID, owner.ID))

	isMember, err := f.memberships.IsMember(project.Project.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, isMember)

	var reloaded models.Task
	require.NoError(t, f.db.First(&reloaded, task.ID).Error)
	assert.Nil(t, reloaded.AssignedTo)
}

func TestRemoveMemberRequiresElevatedRole(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")
	memberA := f.createUser(t, "Bob", "bob@example.com")
	memberB := f.createUser(t, "Carol", "carol@example.com")

	project := f.createProject(t, "Apollo", owner.ID)
	f.addMember(t, project.Project.ID, memberA, models.RoleMember, owner.ID)
	f.addMember(t, project.Project.ID, memberB, models.RoleMember, owner.ID)

	err := f.projects.RemoveMember(project.Project.ID, memberB.ID, memberA.ID)
	requireStatus(t, err, http.StatusForbidden)
}
