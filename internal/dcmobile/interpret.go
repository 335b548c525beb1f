package dcmobile

import (
	"bytes"
	"net/http"
	"regexp"
	"strings"

	"dcinside-mobile/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Response is a raw answer to a mutating request.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	// URL is the request target, used to resolve relative redirects.
	URL string
}

// Signal names the interpreter rule that decided a result.
type Signal string

const (
	SignalResult   Signal = "result"
	SignalRedirect Signal = "redirect"
	SignalAlert    Signal = "alert"
	SignalStatus   Signal = "status"
)

// Phrases are the messages that confirm or refute an operation. A nil
// pattern matches nothing.
type Phrases struct {
	Positive *regexp.Regexp
	Negative *regexp.Regexp
}

var defaultNegative = regexp.MustCompile(`실패|오류|잘못된|권한이 없|일치하지 않|존재하지 않|차단`)

var (
	writePhrases  = Phrases{Positive: regexp.MustCompile(`등록되었습니다`), Negative: defaultNegative}
	deletePhrases = Phrases{Positive: regexp.MustCompile(`삭제되었습니다|완료`), Negative: defaultNegative}
	plainPhrases  = Phrases{Negative: defaultNegative}
)

var (
	locationRegex = regexp.MustCompile(`location\.(?:href|replace)\s*(?:\(\s*|=\s*)['"]([^'";]+)['"]`)
	// RE2 has no backreferences, so each quote style gets its own branch.
	alertRegex      = regexp.MustCompile(`alert\(\s*'((?:[^'\\]|\\.)*)'\s*\)|alert\(\s*"((?:[^"\\]|\\.)*)"\s*\)`)
	trailingIDRegex = regexp.MustCompile(`/(\d+)(?:[?#]|$)`)
	numericRegex    = regexp.MustCompile(`^\d+$`)
)

var jsUnescaper = strings.NewReplacer(`\'`, `'`, `\"`, `"`, `\n`, "\n", `\t`, "\t", `\\`, `\`)

var alertSelectors = []string{".alert-box .txt", ".login-alert", ".login-error", "#error_msg"}

var createdIDFields = []string{"comment_no", "comment_id", "data", "no"}

// Interpret decides the outcome of a mutation with the default phrases.
func Interpret(res Response) MutationResult {
	return InterpretWith(res, plainPhrases)
}

// InterpretWith decides the outcome of a mutation. The first rule that finds
// a signal wins: a JSON result field, then a redirect, then an alert message,
// and last the status code alone.
func InterpretWith(res Response, phrases Phrases) MutationResult {
	out := MutationResult{
		HTTPStatus: res.Status,
		RawPayload: string(res.Body),
	}
	statusOK := res.Status >= 200 && res.Status < 400

	if obj, ok := decodeObject(res.Body); ok {
		if raw, has := obj["result"]; has {
			out.Signal = SignalResult
			out.Success = truthy(raw)
			out.Message = firstString(obj, "cause", "message")
			out.CreatedID = createdID(obj)
			return out
		}
	}

	message := alertMessage(res.Body)

	if redirect := redirectTarget(res); redirect != "" {
		out.Signal = SignalRedirect
		out.RedirectURL = redirect
		if m := trailingIDRegex.FindStringSubmatch(redirect); m != nil {
			out.CreatedID = m[1]
		}
		out.Message = message
		out.Success = statusOK && phrases.accepts(message)
		return out
	}

	if message != "" {
		out.Signal = SignalAlert
		out.Message = message
		out.Success = statusOK && phrases.accepts(message)
		return out
	}

	out.Signal = SignalStatus
	out.Success = statusOK
	if statusOK && !looksLikeHTML(res.Body) && phrases.Negative != nil {
		out.Success = !phrases.Negative.Match(res.Body)
	}
	return out
}

// accepts reports whether an extracted message is consistent with success.
// An empty message never refutes anything.
func (p Phrases) accepts(message string) bool {
	if message == "" {
		return true
	}
	if p.Negative != nil && p.Negative.MatchString(message) {
		return false
	}
	if p.Positive != nil && !p.Positive.MatchString(message) {
		return false
	}
	return true
}

func redirectTarget(res Response) string {
	location := res.Header.Get("Location")
	if location == "" {
		if m := locationRegex.FindSubmatch(res.Body); m != nil {
			location = string(m[1])
		}
	}
	if location == "" {
		return ""
	}
	if res.URL != "" {
		if resolved, err := resolveLocation(res.URL, location); err == nil {
			return resolved
		}
	}
	return location
}

func alertMessage(body []byte) string {
	if m := alertRegex.FindSubmatch(body); m != nil {
		msg := string(m[1])
		if msg == "" {
			msg = string(m[2])
		}
		if msg = strings.TrimSpace(jsUnescaper.Replace(msg)); msg != "" {
			return msg
		}
	}
	if !looksLikeHTML(body) {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return htmlutil.FirstText(doc, alertSelectors...)
}

func createdID(obj map[string]any) string {
	for _, key := range createdIDFields {
		value := strings.TrimSpace(stringOf(obj[key]))
		if numericRegex.MatchString(value) {
			return value
		}
	}
	return ""
}

func looksLikeHTML(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '<'
}
