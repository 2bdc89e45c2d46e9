package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synergy-dev/synergy/internal/models"
)

func TestGetRole(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")
	member := f.createUser(t, "Bob", "bob@example.com")
	outsider := f.createUser(t, "Carol", "carol@example.com")

	project := f.createProject(t, "Apollo", owner.ID)
	f.addMember(t, project.Project.ID, member, models.RoleMember, owner.ID)

	role, ok, err := f.memberships.GetRole(project.Project.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.RoleOwner, role)

	role, ok, err = f.memberships.GetRole(project.Project.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.RoleMember, role)

	_, ok, err = f.memberships.GetRole(project.Project.ID, outsider.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsMember(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")
	outsider := f.createUser(t, "Carol", "carol@example.com")

	project := f.createProject(t, "Apollo", owner.ID)

	isMember, err := f.memberships.IsMember(project.Project.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	isMember, err = f.memberships.IsMember(project.Project.ID, outsider.ID)
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestHasRole(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "Alice", "alice@example.com")
	admin := f.createUser(t, "Bob", "bob@example.com")
	member := f.createUser(t, "Carol", "carol@example.com")

	project := f.createProject(t, "Apollo", owner.ID)
	f.addMember(t, project.Project.ID, admin, models.RoleAdmin, owner.ID)
	f.addMember(t, project.Project.ID, member, models.RoleMember, owner.ID)

	for _, tc := range []struct {
		name    string
		userID  uint
		allowed []models.Role
		want    bool
	}{
		{"owner passes owner/admin check", owner.ID, []models.Role{models.RoleOwner, models.RoleAdmin}, true},
		{"admin passes owner/admin check", admin.ID, []models.Role{models.RoleOwner, models.RoleAdmin}, true},
		{"member fails owner/admin check", member.ID, []models.Role{models.RoleOwner, models.RoleAdmin}, false},
		{"admin fails owner-only check", admin.ID, []models.Role{models.RoleOwner}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.memberships.HasRole(project.Project.ID, tc.userID, tc.allowed...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
