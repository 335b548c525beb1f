package dcmobile

import (
	"fmt"
	"sync"
)

// Tokens are the one-time values scraped from a single page. They authorize
// exactly one submission made on behalf of that page.
//
// Every operation scrapes its own page and no exported operation accepts
// Tokens, so a caller cannot replay them across operations. Spend still checks the page
// because one operation may load several pages before it submits.
type Tokens struct {
	CSRFToken  string
	AccessKey  string
	FormToken  string
	ReturnURL  string
	CaptchaKey string

	page  string
	mu    sync.Mutex
	spent bool
}

func newTokens(page string) *Tokens {
	return &Tokens{page: page}
}

// Page is the URL of the page the tokens were scraped from.
func (t *Tokens) Page() string {
	return t.page
}

// Spend consumes the tokens for a submission on behalf of pageURL.
func (t *Tokens) Spend(pageURL string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.page != pageURL {
		return fmt.Errorf("%w: tokens belong to %s, not %s", ErrStaleTokens, t.page, pageURL)
	}
	if t.spent {
		return fmt.Errorf("%w: tokens of %s were already used", ErrStaleTokens, t.page)
	}
	t.spent = true
	return nil
}

func (t *Tokens) Spent() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.spent
}
