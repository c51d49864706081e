package main

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lifeflow-api/internal/models"
)

type fakeUsers struct {
	email string
	role  models.UserRole
	err   error
}

func (f *fakeUsers) UpdateRole(_ context.Context, email string, role models.UserRole) (*models.User, error) {
	f.email, f.role = email, role
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "u1", Email: email, Role: role}, nil
}

type fakeAudit struct {
	entries []*models.AuditLog
}

func (f *fakeAudit) Create(_ context.Context, log *models.AuditLog) error {
	f.entries = append(f.entries, log)
	return nil
}

func TestChangeRoleGrantsAdmin(t *testing.T) {
	users, audit := &fakeUsers{}, &fakeAudit{}

	user, err := changeRole(context.Background(), users, audit, "  ops@lifeflow.example ", false)

	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "ops@lifeflow.example", users.email)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionRoleChange, audit.entries[0].Action)
	assert.JSONEq(t, `{"role":"ADMIN"}`, string(audit.entries[0].NewValues))
}

func TestChangeRoleRevoke(t *testing.T) {
	users := &fakeUsers{}

	_, err := changeRole(context.Background(), users, &fakeAudit{}, "ops@lifeflow.example", true)

	require.NoError(t, err)
	assert.Equal(t, models.RoleDonor, users.role)
}

func TestChangeRoleUnknownUser(t *testing.T) {
	audit := &fakeAudit{}

	_, err := changeRole(context.Background(), &fakeUsers{err: sql.ErrNoRows}, audit, "ghost@lifeflow.example", false)

	assert.True(t, errors.Is(err, errUnknownUser))
	assert.Empty(t, audit.entries)
}
