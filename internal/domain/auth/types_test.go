package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"ADMIN", RoleAdmin},
		{"ROLE_MANAGER", RoleManager},
		{" manager ", RoleManager},
		{"USER", RoleUser},
		{"", RoleUser},
		{"superuser", RoleUser},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRole(tt.in))
		})
	}
}

func TestRedirectTargetFor(t *testing.T) {
	assert.Equal(t, "/admin", RedirectTargetFor(RoleAdmin))
	assert.Equal(t, "/manager", RedirectTargetFor(RoleManager))
	assert.Equal(t, "/products", RedirectTargetFor(RoleUser))
	assert.Equal(t, "/products", RedirectTargetFor(Role("")))
}

func TestHasRole_NilSession(t *testing.T) {
	assert.False(t, HasRole(nil, RoleUser))
	assert.False(t, HasAnyRole(nil, RoleUser, RoleAdmin))
}

func TestHasAnyRole(t *testing.T) {
	s := &Session{Role: RoleManager}
	assert.True(t, HasRole(s, RoleManager))
	assert.False(t, HasRole(s, RoleAdmin))
	assert.True(t, HasAnyRole(s, RoleAdmin, RoleManager))
	assert.False(t, HasAnyRole(s, RoleAdmin))
	assert.False(t, HasAnyRole(s))
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	assert.False(t, Session{}.Expired(now), "zero expiry never expires")
	assert.True(t, Session{ExpiresAt: now.Add(-time.Second)}.Expired(now))
	assert.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
}

func TestRole_Wire(t *testing.T) {
	assert.Equal(t, "MANAGER", RoleManager.Wire())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("guest").Valid())
}
