package client_test

import (
	"context"
	"testing"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersClient(t *testing.T) {
	t.Parallel()

	server, store := newStore(t)
	ctx := context.Background()

	user := createUser(t, store, "alice")

	_, err := store.Users().Create(ctx, &zen.User{Name: "alice"})
	require.ErrorIs(t, err, zen.ErrEntityExists)
	assert.NotErrorIs(t, err, zen.ErrStackExists)

	found, err := store.Users().List(ctx, &zen.NameFilter{Name: "alice"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, user.ID, found[0].ID)

	token, err := store.Users().IssueInviteToken(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	pending, ok := server.InviteToken(user.ID.String())
	require.True(t, ok)
	assert.Equal(t, token, pending)

	require.NoError(t, store.Users().InvalidateInviteToken(ctx, user.ID))

	_, ok = server.InviteToken(user.ID.String())
	assert.False(t, ok)

	_, err = store.Users().IssueInviteToken(ctx, uuid.New())
	require.ErrorIs(t, err, zen.ErrNotFound)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestTeamsClient(t *testing.T) {
	t.Parallel()

	_, store := newStore(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")

	team, err := store.Teams().Create(ctx, &zen.Team{Name: "platform"})
	require.NoError(t, err)

	require.NoError(t, store.Teams().AddUser(ctx, team.ID, alice.ID))
	require.NoError(t, store.Teams().AddUser(ctx, team.ID, bob.ID))
	require.NoError(t, store.Teams().AddUser(ctx, team.ID, bob.ID), "adding a member twice is idempotent")

	members, err := store.Teams().ListUsers(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	teams, err := store.Teams().ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, team.ID, teams[0].ID)

	viaUsers, err := store.Users().ListTeams(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, teams, viaUsers)

	require.NoError(t, store.Teams().RemoveUser(ctx, team.ID, alice.ID))

	err = store.Teams().RemoveUser(ctx, team.ID, alice.ID)
	require.ErrorIs(t, err, zen.ErrNotFound)

	members, err = store.Teams().ListUsers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, bob.ID, members[0].ID)

	err = store.Teams().AddUser(ctx, team.ID, uuid.New())
	require.ErrorIs(t, err, zen.ErrNotFound)

	teams, err = store.Teams().ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, teams)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestRolesClient(t *testing.T) {
	t.Parallel()

	_, store := newStore(t)
	ctx := context.Background()

	project := createProject(t, store, "default")
	user := createUser(t, store, "alice")

	team, err := store.Teams().Create(ctx, &zen.Team{Name: "platform"})
	require.NoError(t, err)

	role, err := store.Roles().Create(ctx, &zen.Role{Name: "admin", Permissions: []string{"read", "write"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"read", "write"}, role.Permissions)

	global, err := store.Roles().Assign(ctx, zen.RoleGrant{Role: role.ID, Subject: user.ID, Kind: zen.SubjectUser})
	require.NoError(t, err)
	assert.Equal(t, zen.SubjectUser, global.SubjectKind())
	assert.Equal(t, user.ID, global.SubjectID())
	assert.Nil(t, global.Project)

	scoped, err := store.Roles().Assign(ctx, zen.RoleGrant{Role: role.ID, Subject: team.ID, Kind: zen.SubjectTeam, Project: &project.ID})
	require.NoError(t, err)
	assert.Equal(t, zen.SubjectTeam, scoped.SubjectKind())
	require.NotNil(t, scoped.Project)
	assert.Equal(t, project.ID, *scoped.Project)

	_, err = store.Roles().Assign(ctx, zen.RoleGrant{Role: role.ID, Subject: user.ID, Kind: zen.SubjectUser})
	require.ErrorIs(t, err, zen.ErrEntityExists)

	_, err = store.Roles().Assign(ctx, zen.RoleGrant{Role: role.ID, Subject: user.ID})
	require.ErrorIs(t, err, zen.ErrInvalidSubject)

	all, err := store.Roles().ListAssignments(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inProject, err := store.Roles().ListAssignments(ctx, &zen.RoleAssignmentFilter{Project: &project.ID})
	require.NoError(t, err)
	require.Len(t, inProject, 1)
	assert.Equal(t, scoped.ID, inProject[0].ID)

	forUser, err := store.Roles().ListAssignments(ctx, &zen.RoleAssignmentFilter{User: &user.ID})
	require.NoError(t, err)
	require.Len(t, forUser, 1)
	assert.Equal(t, global.ID, forUser[0].ID)

	err = store.Roles().Revoke(ctx, zen.RoleGrant{Role: role.ID, Subject: team.ID, Kind: zen.SubjectTeam})
	require.ErrorIs(t, err, zen.ErrNotFound, "a global revoke does not match a project grant")

	require.NoError(t, store.Roles().Revoke(ctx, zen.RoleGrant{Role: role.ID, Subject: team.ID, Kind: zen.SubjectTeam, Project: &project.ID}))
	require.NoError(t, store.Roles().Revoke(ctx, zen.RoleGrant{Role: role.ID, Subject: user.ID, Kind: zen.SubjectUser}))

	all, err = store.Roles().ListAssignments(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProjectsAndRepositories(t *testing.T) {
	t.Parallel()

	_, store := newStore(t)
	ctx := context.Background()

	project := createProject(t, store, "default")
	other := createProject(t, store, "other")

	_, err := store.Projects().Create(ctx, &zen.Project{Name: "default"})
	require.ErrorIs(t, err, zen.ErrEntityExists)

	project.Description = "main project"

	updated, err := store.Projects().Update(ctx, project.ID, project)
	require.NoError(t, err)
	assert.Equal(t, "main project", updated.Description)

	repository, err := store.Repositories().Create(ctx, &zen.Repository{
		Scope:      zen.Scope{Project: project.ID},
		Name:       "models",
		Connection: map[string]string{"url": "https://git.example.com/models.git"},
	})
	require.NoError(t, err)
	assert.Equal(t, project.ID, repository.Project)

	repositories, err := store.Repositories().List(ctx, project.ID, nil)
	require.NoError(t, err)
	require.Len(t, repositories, 1)
	assert.Equal(t, "https://git.example.com/models.git", repositories[0].Connection["url"])

	repositories, err = store.Repositories().List(ctx, other.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, repositories)

	_, err = store.Repositories().List(ctx, uuid.New(), nil)
	require.ErrorIs(t, err, zen.ErrNotFound)

	require.NoError(t, store.Repositories().Delete(ctx, repository.ID))
	require.NoError(t, store.Projects().Delete(ctx, other.ID))

	projects, err := store.Projects().List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, project.ID, projects[0].ID)
}
