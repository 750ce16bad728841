// Package auth owns the single source of truth for "is the user usable right
// now": the current mode, tier, and session, and every transition between
// them. All writes are serialized through Machine; everything else reads
// immutable snapshots.
package auth

import "github.com/sidereal-app/sidereal/internal/client/api"

// Mode is the sign-in state driving the first screen. Exactly one holds at a
// time.
type Mode string

const (
	// ModeLoading is the initial state before Initialize has run.
	ModeLoading Mode = "loading"
	// ModeSignedOut means no credential and no tier flag.
	ModeSignedOut Mode = "signed_out"
	// ModeNeedsProfileSetup means a credential or tier flag exists but the
	// minimal profile is incomplete.
	ModeNeedsProfileSetup Mode = "needs_profile_setup"
	// ModeSignedIn is the usable state.
	ModeSignedIn Mode = "signed_in"
)

// Tier is the identity mode a session runs under. It is derived state,
// recomputed on every transition and cleared atomically on sign-out.
type Tier string

const (
	TierNone          Tier = ""
	TierGuest         Tier = "guest"
	TierQuickStart    Tier = "quickstart"
	TierAuthenticated Tier = "authenticated"
)

// Session pairs the bearer credential with the server's view of the user.
// A non-empty Token implies the mode is SignedIn or mid re-evaluation after
// an expiry signal.
type Session struct {
	Token string
	User  *api.AuthenticatedUser
}

// Snapshot is the immutable view handed to subscribers. Token presence is
// exposed as a bool so observers never see the credential itself.
type Snapshot struct {
	Mode     Mode
	Tier     Tier
	User     *api.AuthenticatedUser
	HasToken bool
}
