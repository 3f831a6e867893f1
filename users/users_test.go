package users_test

import (
	"testing"

	"github.com/jrsteele09/go-campus-session/users"
	"github.com/stretchr/testify/require"
)

func TestProfileClone(t *testing.T) {
	var nilProfile *users.Profile
	require.Nil(t, nilProfile.Clone())

	p := &users.Profile{ID: "u1", Name: "Ada", Status: users.StatusActive}
	c := p.Clone()
	require.Equal(t, p, c)

	c.Name = "Grace"
	require.Equal(t, "Ada", p.Name)
}

func TestProfileIsActive(t *testing.T) {
	tests := map[string]struct {
		profile *users.Profile
		want    bool
	}{
		"nil profile":    {nil, false},
		"unset status":   {&users.Profile{}, true},
		"active":         {&users.Profile{Status: users.StatusActive}, true},
		"inactive":       {&users.Profile{Status: users.StatusInactive}, false},
		"pending review": {&users.Profile{Status: users.StatusPending}, false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.profile.IsActive())
		})
	}
}
