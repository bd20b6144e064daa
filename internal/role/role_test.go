package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAcceptsLegacyNames(t *testing.T) {
	cases := map[string]Role{
		"USER":           User,
		"passenger":      User,
		" admin ":        RPFAdmin,
		"rpf_admin":      RPFAdmin,
		"station-master": StationMaster,
		"STATION_STAFF":  StationStaff,
		"Super_Admin":    SuperAdmin,
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	_, err := Parse("conductor")
	require.ErrorIs(t, err, ErrUnknown)

	_, err = Parse("")
	require.ErrorIs(t, err, ErrUnknown)
}

func TestStationRequirement(t *testing.T) {
	for _, r := range All {
		assert.True(t, r.Valid())
	}
	assert.True(t, StationMaster.RequiresStation())
	assert.True(t, StationStaff.RequiresStation())
	assert.False(t, User.RequiresStation())
	assert.False(t, RPFAdmin.RequiresStation())
	assert.False(t, SuperAdmin.RequiresStation())
	assert.True(t, SuperAdmin.IsAdmin())
	assert.False(t, Role("ADMIN").Valid())
}
