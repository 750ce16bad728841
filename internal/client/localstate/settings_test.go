package localstate

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupSettings(t *testing.T) *Settings {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE app_state (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)

	return NewSettings(NewSQLiteRepository(db))
}

func TestSettings_DeviceID_GeneratedOnceAndStable(t *testing.T) {
	s := setupSettings(t)
	ctx := context.Background()

	first, err := s.DeviceID(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err, "device id should be a uuid")

	second, err := s.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSettings_TierFlags(t *testing.T) {
	s := setupSettings(t)
	ctx := context.Background()

	guest, err := s.GuestTier(ctx)
	require.NoError(t, err)
	assert.False(t, guest)

	require.NoError(t, s.SetGuestTier(ctx, true))
	guest, err = s.GuestTier(ctx)
	require.NoError(t, err)
	assert.True(t, guest)

	require.NoError(t, s.SetQuickStartTier(ctx, true))
	require.NoError(t, s.ClearTiers(ctx))

	guest, err = s.GuestTier(ctx)
	require.NoError(t, err)
	quick, err2 := s.QuickStartTier(ctx)
	require.NoError(t, err2)
	assert.False(t, guest)
	assert.False(t, quick)
}

func TestSettings_ClearTiersKeepsDeviceIDAndProfile(t *testing.T) {
	s := setupSettings(t)
	ctx := context.Background()

	id, err := s.DeviceID(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SaveProfile(ctx, Profile{BirthDate: "1990-04-12"}))
	require.NoError(t, s.SetGuestTier(ctx, true))

	require.NoError(t, s.ClearTiers(ctx))

	idAfter, err := s.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, idAfter)

	p, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1990-04-12", p.BirthDate)
}

func TestSettings_ProfileRoundTrip(t *testing.T) {
	s := setupSettings(t)
	ctx := context.Background()

	p, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, Profile{}, p)

	saved := Profile{BirthDate: "1990-04-12", BirthTime: "06:45", BirthPlace: "Chennai", SetupComplete: true}
	require.NoError(t, s.SaveProfile(ctx, saved))

	p, err = s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, p)
}

func TestProfile_Completeness(t *testing.T) {
	tests := []struct {
		name        string
		profile     Profile
		wantMinimal bool
		wantFull    bool
	}{
		{"empty", Profile{}, false, false},
		{"birth date alone is minimal", Profile{BirthDate: "1990-04-12"}, true, false},
		{"setup complete counts as minimal", Profile{SetupComplete: true}, true, false},
		{"all fields", Profile{BirthDate: "1990-04-12", BirthTime: "06:45", BirthPlace: "Chennai"}, true, true},
		{"time without date", Profile{BirthTime: "06:45"}, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantMinimal, tc.profile.HasMinimalData())
			assert.Equal(t, tc.wantFull, tc.profile.IsComplete())
		})
	}
}
