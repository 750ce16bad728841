package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sidereal-app/sidereal/internal/client/api"
	"github.com/sidereal-app/sidereal/internal/client/connectivity"
	"github.com/sidereal-app/sidereal/internal/client/localstate"
	"github.com/sidereal-app/sidereal/internal/client/securestore"
	"github.com/sidereal-app/sidereal/internal/logging"
)

// ErrSuperseded is returned to an async operation whose completion arrived
// after a sign-out. The machine has already moved on; the result is dropped.
var ErrSuperseded = errors.New("operation superseded by sign-out")

// logoutTimeout bounds the fire-and-forget server notification on sign-out.
const logoutTimeout = 5 * time.Second

// Backend is the slice of the API client the machine drives. *api.Client
// satisfies it.
type Backend interface {
	SignInWithApple(ctx context.Context, req api.AppleSignInRequest) (*api.AuthResponse, error)
	RefreshSession(ctx context.Context) (*api.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	SyncProfile(ctx context.Context, req api.ProfileSyncRequest) error
}

// SessionChecker is the background credential check. *Validator satisfies it.
type SessionChecker interface {
	Validate(ctx context.Context) Result
}

// ConnectivityMonitor is the slice of the connectivity monitor the machine
// triggers. It never reads the status back; connectivity is a separate axis.
type ConnectivityMonitor interface {
	Probe(ctx context.Context) connectivity.Status
	Retry(ctx context.Context)
}

// Deps carries everything the machine is wired with at construction. The
// composition root builds TokenHolder and ExpiryRelay first, hands them to
// the HTTP client, then hands the same instances here.
type Deps struct {
	Backend  Backend
	Checker  SessionChecker
	Monitor  ConnectivityMonitor
	Tokens   *TokenHolder
	Store    securestore.Store
	Settings *localstate.Settings
	Expiry   *ExpiryRelay
	Logger   logging.Logger
}

// Machine owns AuthMode, Tier, and Session. Every mutation goes through its
// lock; async completions carry the generation they started under and are
// dropped when a sign-out has bumped it since.
type Machine struct {
	deps   Deps
	logger logging.Logger

	mu         sync.Mutex
	mode       Mode
	tier       Tier
	session    Session
	gen        uint64
	refreshing bool
	listeners  []func(Snapshot)
}

func NewMachine(deps Deps) *Machine {
	m := &Machine{
		deps:   deps,
		logger: deps.Logger.With("component", "auth"),
		mode:   ModeLoading,
	}
	deps.Expiry.Subscribe(func() {
		// The relay fires from a request goroutine; the failed request has
		// already returned its error and must not wait on the refresh.
		go func() {
			if err := m.HandleTokenExpiry(context.Background()); err != nil {
				m.logger.Warn(context.Background(), "token refresh failed", "error", err)
			}
		}()
	})
	return m
}

// Snapshot returns the current immutable view.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers a listener invoked after every state change, outside
// the machine's lock.
func (m *Machine) Subscribe(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Initialize picks the first-paint state from local storage alone, then
// kicks off the connectivity probe and, when a credential exists, the
// background session check. It never waits on the network.
func (m *Machine) Initialize(ctx context.Context) Snapshot {
	token, err := m.deps.Store.Get()
	if err != nil {
		m.logger.Warn(ctx, "credential slot unreadable, starting signed out", "error", err)
		token = ""
	}
	profile, err := m.deps.Settings.Profile(ctx)
	if err != nil {
		m.logger.Warn(ctx, "cached profile unreadable", "error", err)
	}
	guest, _ := m.deps.Settings.GuestTier(ctx)
	quick, _ := m.deps.Settings.QuickStartTier(ctx)

	m.mu.Lock()
	switch {
	case token != "":
		m.deps.Tokens.Set(token)
		m.session = Session{Token: token}
		m.tier = TierAuthenticated
		m.mode = modeFromProfile(profile)
	case guest:
		// A tier flag without a credential still counts as signed in once
		// minimal data exists; reinstalls that wipe the credential slot but
		// keep local settings land here intentionally.
		m.tier = TierGuest
		m.mode = modeFromProfile(profile)
	case quick:
		m.tier = TierQuickStart
		m.mode = modeFromProfile(profile)
	default:
		m.tier = TierNone
		m.mode = ModeSignedOut
	}
	gen := m.gen
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	go m.deps.Monitor.Probe(context.WithoutCancel(ctx))
	if token != "" {
		go m.validateInBackground(context.WithoutCancel(ctx), gen)
	}
	return snap
}

// SignInWithApple exchanges a third-party identity assertion for a session.
// On failure no state changes; on success the credential is persisted and the
// mode recomputed from the cached profile.
func (m *Machine) SignInWithApple(ctx context.Context, req api.AppleSignInRequest) (Snapshot, error) {
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	resp, err := m.deps.Backend.SignInWithApple(ctx, req)
	if err != nil {
		return m.Snapshot(), err
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		// The user signed out while the exchange was in flight; discard the
		// fresh credential server-side as well.
		go m.notifyLogout(resp.JWTToken)
		return m.Snapshot(), ErrSuperseded
	}
	m.storeToken(ctx, resp.JWTToken)
	user := resp.User
	m.session = Session{Token: resp.JWTToken, User: &user}
	m.tier = TierAuthenticated

	profile, err := m.deps.Settings.Profile(ctx)
	if err != nil {
		m.logger.Warn(ctx, "cached profile unreadable", "error", err)
	}
	m.mode = modeFromProfile(profile)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if err := m.deps.Settings.SetHasSignedInBefore(ctx, true); err != nil {
		m.logger.Warn(ctx, "persist sign-in marker", "error", err)
	}
	m.notify(snap)
	return snap, nil
}

// ContinueAsGuest enters guest mode. No credential is involved; the mode
// depends only on whether minimal profile data already exists.
func (m *Machine) ContinueAsGuest(ctx context.Context) (Snapshot, error) {
	return m.enterTier(ctx, TierGuest)
}

// StartQuickStart enters quick-start mode.
func (m *Machine) StartQuickStart(ctx context.Context) (Snapshot, error) {
	return m.enterTier(ctx, TierQuickStart)
}

func (m *Machine) enterTier(ctx context.Context, tier Tier) (Snapshot, error) {
	if err := m.deps.Settings.SetGuestTier(ctx, tier == TierGuest); err != nil {
		return m.Snapshot(), err
	}
	if err := m.deps.Settings.SetQuickStartTier(ctx, tier == TierQuickStart); err != nil {
		return m.Snapshot(), err
	}
	profile, err := m.deps.Settings.Profile(ctx)
	if err != nil {
		m.logger.Warn(ctx, "cached profile unreadable", "error", err)
	}

	m.mu.Lock()
	m.tier = tier
	m.session = Session{}
	m.mode = modeFromProfile(profile)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	go m.deps.Monitor.Probe(context.WithoutCancel(ctx))
	return snap, nil
}

// CompleteProfileSetup marks the profile complete and transitions to
// SignedIn. The remote sync is best effort: local completion is authoritative
// and a sync failure is logged, never surfaced.
func (m *Machine) CompleteProfileSetup(ctx context.Context, profile localstate.Profile) (Snapshot, error) {
	profile.SetupComplete = true
	if err := m.deps.Settings.SaveProfile(ctx, profile); err != nil {
		return m.Snapshot(), err
	}

	m.mu.Lock()
	m.mode = ModeSignedIn
	hasToken := m.session.Token != ""
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	if hasToken {
		go func() {
			req := api.ProfileSyncRequest{
				BirthDate:  profile.BirthDate,
				BirthTime:  profile.BirthTime,
				BirthPlace: profile.BirthPlace,
			}
			if err := m.deps.Backend.SyncProfile(context.WithoutCancel(ctx), req); err != nil {
				m.logger.Warn(ctx, "profile sync failed, keeping local completion", "error", err)
			}
		}()
	}
	return snap, nil
}

// SignOut unconditionally returns the machine to SignedOut: credential wiped
// from store and memory, tier flags cleared, session dropped. It is
// idempotent, wins over any in-flight async operation, and the server
// notification is fire and forget.
func (m *Machine) SignOut(ctx context.Context) Snapshot {
	m.mu.Lock()
	m.gen++
	prevToken := m.session.Token
	m.deps.Tokens.Clear()
	m.session = Session{}
	m.tier = TierNone
	m.mode = ModeSignedOut
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if err := m.deps.Store.Delete(); err != nil {
		m.logger.Warn(ctx, "clear credential slot", "error", err)
	}
	if err := m.deps.Settings.ClearTiers(ctx); err != nil {
		m.logger.Warn(ctx, "clear tier flags", "error", err)
	}
	if prevToken != "" {
		go m.notifyLogout(prevToken)
	}

	m.notify(snap)
	return snap
}

// HandleTokenExpiry attempts exactly one refresh. Concurrent triggers
// coalesce onto the attempt already in flight; on failure the machine signs
// out.
func (m *Machine) HandleTokenExpiry(ctx context.Context) error {
	m.mu.Lock()
	if m.refreshing || m.session.Token == "" {
		m.mu.Unlock()
		return nil
	}
	m.refreshing = true
	gen := m.gen
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.refreshing = false
		m.mu.Unlock()
	}()

	resp, err := m.deps.Backend.RefreshSession(ctx)
	if err != nil {
		m.mu.Lock()
		superseded := m.gen != gen
		m.mu.Unlock()
		if superseded {
			return ErrSuperseded
		}
		m.logger.Info(ctx, "refresh rejected, signing out")
		m.SignOut(ctx)
		return err
	}

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		go m.notifyLogout(resp.JWTToken)
		return ErrSuperseded
	}
	m.storeToken(ctx, resp.JWTToken)
	user := resp.User
	m.session = Session{Token: resp.JWTToken, User: &user}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info(ctx, "session refreshed")
	m.notify(snap)
	return nil
}

// RetryConnection schedules a debounced re-probe. AuthMode is unaffected.
func (m *Machine) RetryConnection(ctx context.Context) {
	m.deps.Monitor.Retry(ctx)
}

// Capabilities resolves the feature set for the current tier.
func (m *Machine) Capabilities(connected bool) FeatureSet {
	m.mu.Lock()
	tier := m.tier
	m.mu.Unlock()
	return Capabilities(tier, connected)
}

// storeToken persists the credential and updates the read-through slot. A
// persistence failure is reported but not fatal: the token stays usable in
// memory for this process lifetime.
func (m *Machine) storeToken(ctx context.Context, token string) {
	if err := m.deps.Store.Put(token); err != nil {
		m.logger.Warn(ctx, "credential not persisted, kept in memory only", "error", err)
	}
	m.deps.Tokens.Set(token)
}

func (m *Machine) validateInBackground(ctx context.Context, gen uint64) {
	result := m.deps.Checker.Validate(ctx)
	if result != ResultInvalid {
		return
	}
	m.mu.Lock()
	superseded := m.gen != gen
	m.mu.Unlock()
	if superseded {
		return
	}
	m.SignOut(ctx)
}

func (m *Machine) notifyLogout(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
	defer cancel()
	if err := m.deps.Backend.Logout(ctx, token); err != nil {
		m.logger.Debug(ctx, "logout notification failed", "error", err)
	}
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{
		Mode:     m.mode,
		Tier:     m.tier,
		User:     m.session.User,
		HasToken: m.session.Token != "",
	}
}

func (m *Machine) notify(snap Snapshot) {
	m.mu.Lock()
	listeners := make([]func(Snapshot), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func modeFromProfile(p localstate.Profile) Mode {
	if p.HasMinimalData() {
		return ModeSignedIn
	}
	return ModeNeedsProfileSetup
}
