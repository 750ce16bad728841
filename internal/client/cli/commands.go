package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sidereal-app/sidereal/internal/client/api"
	"github.com/sidereal-app/sidereal/internal/client/auth"
	"github.com/sidereal-app/sidereal/internal/client/localstate"
	"github.com/sidereal-app/sidereal/internal/common"
)

// Status prints the current snapshot and connectivity.
func (a *App) Status(ctx context.Context) error {
	printSnapshot(a.machine.Snapshot())
	st := a.monitor.Status()
	fmt.Printf("connected=%v", st.Connected)
	if st.LastError != "" {
		fmt.Printf(" lastError=%s", st.LastError)
	}
	fmt.Println()
	return nil
}

// SignIn exchanges an Apple identity assertion for a session. The assertion
// is read without echo.
func (a *App) SignIn(ctx context.Context) error {
	assertion, err := GetSecret("Identity assertion", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(assertion)

	userID, err := GetSimpleText(a.reader, "Apple user identifier", os.Stdout)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email (optional)", os.Stdout)
	if err != nil {
		return err
	}

	snap, err := a.machine.SignInWithApple(ctx, api.AppleSignInRequest{
		IDToken:        string(assertion),
		UserIdentifier: userID,
		Email:          email,
	})
	if err != nil {
		printAuthError(err)
		return err
	}
	printSnapshot(snap)
	return nil
}

func (a *App) Guest(ctx context.Context) error {
	snap, err := a.machine.ContinueAsGuest(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}
	printSnapshot(snap)
	return nil
}

func (a *App) QuickStart(ctx context.Context) error {
	snap, err := a.machine.StartQuickStart(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}
	printSnapshot(snap)
	return nil
}

// Profile collects the birth profile and completes setup.
func (a *App) Profile(ctx context.Context) error {
	date, err := GetSimpleText(a.reader, "Birth date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	timeOfDay, err := GetSimpleText(a.reader, "Birth time (HH:MM, optional)", os.Stdout)
	if err != nil {
		return err
	}
	place, err := GetSimpleText(a.reader, "Birth place (optional)", os.Stdout)
	if err != nil {
		return err
	}

	snap, err := a.machine.CompleteProfileSetup(ctx, localstate.Profile{
		BirthDate:  date,
		BirthTime:  timeOfDay,
		BirthPlace: place,
	})
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}
	printSnapshot(snap)
	return nil
}

// Capabilities prints the feature set for the current tier and connectivity.
func (a *App) Capabilities(ctx context.Context) error {
	caps := a.machine.Capabilities(a.monitor.Status().Connected)
	quota := fmt.Sprintf("%d", caps.DailyQuota)
	if caps.DailyQuota == auth.UnlimitedQuota {
		quota = "unlimited"
	}
	fmt.Printf("generate=%v persist=%v sync=%v unlimited=%v quota=%s\n",
		caps.CanGenerate, caps.CanPersist, caps.CanSyncAcrossDevices, caps.HasUnlimitedAccess, quota)
	return nil
}

// Retry schedules a debounced connectivity re-probe.
func (a *App) Retry(ctx context.Context) error {
	a.machine.RetryConnection(ctx)
	fmt.Println("Retrying connection...")
	return nil
}

func (a *App) SignOut(ctx context.Context) error {
	printSnapshot(a.machine.SignOut(ctx))
	return nil
}

// printAuthError renders the classified error without leaking technical
// detail into the prompt flow.
func printAuthError(err error) {
	var ae *api.AuthenticationError
	switch {
	case errors.Is(err, api.ErrTokenExpired), errors.As(err, &ae):
		fmt.Println("Session expired, please sign in again.")
	case errors.Is(err, api.ErrOffline):
		fmt.Println("You appear to be offline. Some features are unavailable.")
	case errors.Is(err, api.ErrTimeout):
		fmt.Println("The server took too long to respond. Try again.")
	case errors.Is(err, auth.ErrSuperseded):
		fmt.Println("Cancelled.")
	default:
		fmt.Println("Error:", err)
	}
}
