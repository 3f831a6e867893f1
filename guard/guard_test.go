package guard_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-campus-session/guard"
	"github.com/jrsteele09/go-campus-session/navigation"
	"github.com/jrsteele09/go-campus-session/roles"
	"github.com/jrsteele09/go-campus-session/sessions"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		current       roles.Role
		required      roles.Role
		outcome       guard.Outcome
		path          string
	}{
		{"anonymous admin screen", false, "", roles.Admin, guard.Redirect, navigation.RouteAdminLogin},
		{"anonymous ignores stale role", false, roles.Teacher, roles.Student, guard.Redirect, navigation.RouteStudentLogin},
		{"teacher on admin screen", true, roles.Teacher, roles.Admin, guard.AccessDenied, navigation.RouteTeacherDashboard},
		{"student on teacher screen", true, roles.Student, roles.Teacher, guard.AccessDenied, navigation.RouteStudentDashboard},
		{"admin on admin screen", true, roles.Admin, roles.Admin, guard.Render, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := guard.Evaluate(tt.authenticated, tt.current, tt.required)
			require.Equal(t, tt.outcome, d.Outcome)
			require.Equal(t, tt.path, d.Path)
			require.Equal(t, tt.required, d.RequiredRole)
		})
	}
}

func TestAccessDeniedRecovery(t *testing.T) {
	d := guard.Evaluate(true, roles.Teacher, roles.Admin)
	require.Contains(t, d.Message(), "admin")
	require.Contains(t, d.Message(), "teacher")

	h := navigation.NewHistory(navigation.RouteAdminDashboard)
	require.True(t, d.Recover(h))
	require.Equal(t, navigation.RouteTeacherDashboard, h.Current())

	_, reload := h.TakeReload()
	require.False(t, reload)

	require.False(t, guard.Evaluate(true, roles.Admin, roles.Admin).Recover(h))
	require.False(t, guard.Evaluate(false, "", roles.Admin).Recover(h))
}

func TestCheck(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }

	t.Run("no session", func(t *testing.T) {
		store := sessions.NewStore(sessions.WithNowTime(clock))
		d := guard.Check(store, roles.Teacher)
		require.Equal(t, guard.Redirect, d.Outcome)
		require.Equal(t, navigation.RouteTeacherLogin, d.Path)
	})

	t.Run("matching role", func(t *testing.T) {
		store := sessions.NewStore(sessions.WithNowTime(clock))
		require.NoError(t, store.Open(sessions.New("a.b.c", "", roles.Teacher, now, time.Hour, nil)))
		require.Equal(t, guard.Render, guard.Check(store, roles.Teacher).Outcome)
	})

	t.Run("wrong role keeps the session", func(t *testing.T) {
		store := sessions.NewStore(sessions.WithNowTime(clock))
		require.NoError(t, store.Open(sessions.New("a.b.c", "", roles.Teacher, now, time.Hour, nil)))

		d := guard.Check(store, roles.Admin)
		require.Equal(t, guard.AccessDenied, d.Outcome)
		require.Equal(t, roles.Teacher, d.CurrentRole)
		require.NotNil(t, store.Current())
	})

	t.Run("expired session redirects", func(t *testing.T) {
		store := sessions.NewStore(sessions.WithNowTime(clock))
		require.NoError(t, store.Open(sessions.New("a.b.c", "", roles.Admin, now.Add(-2*time.Hour), time.Hour, nil)))

		d := guard.Check(store, roles.Admin)
		require.Equal(t, guard.Redirect, d.Outcome)
		require.Nil(t, store.Current())
	})
}
