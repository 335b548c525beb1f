package commands

import (
	"bufio"
	"context"
	"fmt"
	"mime"
	"os"
	"strconv"
	"strings"

	"dcinside-mobile/internal/dcmobile"

	"github.com/jedib0t/go-pretty/v6/table"
)

func printResult(op dcmobile.Operation, res dcmobile.MutationResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(string(op))
	t.AppendRows([]table.Row{
		{"success", res.Success},
		{"message", res.Message},
		{"created id", res.CreatedID},
		{"status", res.HTTPStatus},
		{"signal", res.Signal},
		{"redirect", res.RedirectURL},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func printCookies(cookies []dcmobile.StoredCookie) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Origin", "Name", "Value"})
	for _, c := range cookies {
		t.AppendRow(table.Row{c.Origin, c.Name, elide(c.Value, 24)})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func elide(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// promptCaptcha saves the captcha image to a temporary file and reads the
// answer from stdin.
func promptCaptcha(ctx context.Context, ch dcmobile.CaptchaChallenge) (string, error) {
	if ch.ImageURL == "" || ch.Session == nil {
		return "", fmt.Errorf("captcha image unavailable")
	}
	body, contentType, err := ch.Session.Download(ctx, ch.ImageURL, client.Endpoints().Post(ch.GalleryID, ch.PostID))
	if err != nil {
		return "", err
	}

	ext := ".png"
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		ext = exts[0]
	}
	f, err := os.CreateTemp("", "dcmobile-captcha-*"+ext)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(body); err != nil {
		return "", err
	}

	fmt.Fprintf(os.Stderr, "captcha saved to %s\nenter the code: ", f.Name())
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func parseID(name, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", name, value)
	}
	return id, nil
}
