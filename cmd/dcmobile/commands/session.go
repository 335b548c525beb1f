package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"dcinside-mobile/internal/dcmobile"
	"dcinside-mobile/internal/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	loginCode     *string
	loginPassword *string
	loginKeep     *bool
)

func init() {
	loginCode = loginCmd.Flags().String("code", "", "The account id, defaults to $DCINSIDE_CODE.")
	loginPassword = loginCmd.Flags().String("password", "", "The account password, defaults to $DCINSIDE_PASSWORD.")
	loginKeep = loginCmd.Flags().Bool("keep", true, "Ask the site to keep the login alive.")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(sessionsCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session cookies under the profile.",
	Run: func(cmd *cobra.Command, args []string) {
		code := *loginCode
		if code == "" {
			code = os.Getenv("DCINSIDE_CODE")
		}
		password := *loginPassword
		if password == "" {
			password = os.Getenv("DCINSIDE_PASSWORD")
		}
		if code == "" || password == "" {
			serviceutil.Fatal("missing credentials", errors.New("pass --code and --password or set DCINSIDE_CODE and DCINSIDE_PASSWORD"))
		}

		res, err := client.Login(cmd.Context(), dcmobile.LoginRequest{
			Code:         code,
			Password:     password,
			KeepLoggedIn: *loginKeep,
		})
		if err != nil {
			serviceutil.Fatal("login failed", err)
		}
		printResult(dcmobile.OpLogin, res.MutationResult)
		if !res.Success {
			os.Exit(1)
		}

		store := storeFn(cmd.Context())
		defer store.Close()
		err = store.Save(cmd.Context(), *profile, res.Cookies)
		if err != nil {
			serviceutil.Fatal("failed to save session", err)
		}
		printCookies(res.Cookies)
		fmt.Printf("saved %d cookies to profile %q\n", len(res.Cookies), *profile)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the cookies stored under the profile.",
	Run: func(cmd *cobra.Command, args []string) {
		store := storeFn(cmd.Context())
		defer store.Close()
		err := store.Delete(cmd.Context(), *profile)
		if err != nil {
			serviceutil.Fatal("failed to delete session", err)
		}
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List the stored profiles.",
	Run: func(cmd *cobra.Command, args []string) {
		store := storeFn(cmd.Context())
		defer store.Close()
		profiles, err := store.Profiles(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list sessions", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Profile", "Cookies", "Logged in", "Updated"})
		for _, p := range profiles {
			session, err := store.Restore(cmd.Context(), client, p.Name)
			loggedIn := err == nil && session.HasCookie(dcmobile.LoginCookies...)
			t.AppendRow(table.Row{p.Name, p.Cookies, loggedIn, p.UpdatedAt.Format(time.DateTime)})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
