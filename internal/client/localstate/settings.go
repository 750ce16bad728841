package localstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// State keys. The device id is deliberately excluded from ClearTiers so it
// survives sign-out.
const (
	keyDeviceID     = "device_id"
	keyHasSignedIn  = "has_signed_in_before"
	keyTierGuest    = "tier_guest"
	keyTierQuick    = "tier_quickstart"
	keyBirthProfile = "birth_profile"
)

// Profile is the locally cached birth profile. Birth date alone unlocks the
// core features; place and time are needed for full completeness.
type Profile struct {
	BirthDate     string `json:"birth_date"`
	BirthTime     string `json:"birth_time,omitempty"`
	BirthPlace    string `json:"birth_place,omitempty"`
	SetupComplete bool   `json:"setup_complete"`
}

// HasMinimalData reports whether the profile unlocks the usable state.
func (p Profile) HasMinimalData() bool {
	return p.BirthDate != "" || p.SetupComplete
}

// IsComplete reports whether every onboarding field is filled in.
func (p Profile) IsComplete() bool {
	return p.BirthDate != "" && p.BirthTime != "" && p.BirthPlace != ""
}

// Settings is the typed view over the raw repository.
type Settings struct {
	repo Repository
}

func NewSettings(repo Repository) *Settings {
	return &Settings{repo: repo}
}

// DeviceID returns the anonymous device identifier, generating and persisting
// one on first use. The id never changes afterwards.
func (s *Settings) DeviceID(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, keyDeviceID)
	if err != nil {
		return "", err
	}
	if len(v) > 0 {
		return string(v), nil
	}

	id := uuid.NewString()
	if err := s.repo.Set(ctx, keyDeviceID, []byte(id)); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}

func (s *Settings) HasSignedInBefore(ctx context.Context) (bool, error) {
	return s.getBool(ctx, keyHasSignedIn)
}

func (s *Settings) SetHasSignedInBefore(ctx context.Context, v bool) error {
	return s.setBool(ctx, keyHasSignedIn, v)
}

func (s *Settings) GuestTier(ctx context.Context) (bool, error) {
	return s.getBool(ctx, keyTierGuest)
}

func (s *Settings) SetGuestTier(ctx context.Context, v bool) error {
	return s.setBool(ctx, keyTierGuest, v)
}

func (s *Settings) QuickStartTier(ctx context.Context) (bool, error) {
	return s.getBool(ctx, keyTierQuick)
}

func (s *Settings) SetQuickStartTier(ctx context.Context, v bool) error {
	return s.setBool(ctx, keyTierQuick, v)
}

// Profile returns the cached birth profile; a zero Profile when none is saved.
func (s *Settings) Profile(ctx context.Context) (Profile, error) {
	v, err := s.repo.Get(ctx, keyBirthProfile)
	if err != nil {
		return Profile{}, err
	}
	if len(v) == 0 {
		return Profile{}, nil
	}
	var p Profile
	if err := json.Unmarshal(v, &p); err != nil {
		return Profile{}, fmt.Errorf("decode cached profile: %w", err)
	}
	return p, nil
}

func (s *Settings) SaveProfile(ctx context.Context, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return s.repo.Set(ctx, keyBirthProfile, data)
}

// ClearTiers drops the guest/quick-start flags on sign-out. The device id,
// the has-signed-in marker, and the cached profile survive.
func (s *Settings) ClearTiers(ctx context.Context) error {
	if err := s.repo.Delete(ctx, keyTierGuest); err != nil {
		return err
	}
	return s.repo.Delete(ctx, keyTierQuick)
}

func (s *Settings) getBool(ctx context.Context, key string) (bool, error) {
	v, err := s.repo.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return string(v) == "1", nil
}

func (s *Settings) setBool(ctx context.Context, key string, v bool) error {
	if !v {
		return s.repo.Delete(ctx, key)
	}
	return s.repo.Set(ctx, key, []byte("1"))
}
