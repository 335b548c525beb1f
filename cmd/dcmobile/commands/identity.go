package commands

import (
	"context"

	"dcinside-mobile/internal/dcmobile"
	"dcinside-mobile/internal/serviceutil"

	"github.com/spf13/cobra"
)

type identityFlags struct {
	nickname *string
	password *string
}

// addIdentityFlags registers the guest flags. Without --nickname the command
// acts as the member stored under --profile.
func addIdentityFlags(cmd *cobra.Command) identityFlags {
	return identityFlags{
		nickname: cmd.Flags().String("nickname", "", "Act as a guest with this nickname."),
		password: cmd.Flags().String("password", "", "The guest password."),
	}
}

func (f identityFlags) resolve(ctx context.Context) dcmobile.Identity {
	if *f.nickname != "" || *f.password != "" {
		return dcmobile.Guest{Nickname: *f.nickname, Password: *f.password}
	}
	return dcmobile.Member{Session: storedSession(ctx)}
}

func storedSession(ctx context.Context) *dcmobile.Session {
	store := storeFn(ctx)
	defer store.Close()
	session, err := store.Restore(ctx, client, *profile)
	if err != nil {
		serviceutil.Fatal("failed to restore session", err)
	}
	return session
}

// execute runs req and stores the session cookies back when acting as a member.
func execute(ctx context.Context, req dcmobile.MutationRequest, id dcmobile.Identity) {
	res, err := client.Execute(ctx, req)
	if err != nil {
		if _, ok := dcmobile.IsCaptchaRequired(err); ok {
			serviceutil.Fatal("captcha required, pass --captcha or run interactively", err)
		}
		serviceutil.Fatal("request failed", err)
	}
	printResult(req.Operation(), res)

	if member, ok := id.(dcmobile.Member); ok && member.Session != nil {
		store := storeFn(ctx)
		defer store.Close()
		err := store.Save(ctx, *profile, member.Session.Cookies())
		if err != nil {
			serviceutil.Fatal("failed to save session", err)
		}
	}
}
