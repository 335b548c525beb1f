package dcmobile

import (
	"bytes"
	"fmt"
	"strings"

	"dcinside-mobile/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Choice is one option of a select element.
type Choice struct {
	Value string
	Label string
}

// Extraction is everything a mutation needs from a scraped page.
type Extraction struct {
	PageURL   string
	CSRFToken string
	Fields    FieldMap
	// Honeypots are the names of fields a human never fills.
	Honeypots       []string
	CaptchaKey      string
	CaptchaImageURL string
	Subject         string
	// Choices holds the options of every select element, keyed by name.
	Choices map[string][]Choice

	doc *goquery.Document
}

// ByID returns the value of the element with the given id anywhere on the page.
func (e *Extraction) ByID(id string) string {
	if e.doc == nil {
		return ""
	}
	return strings.TrimSpace(e.doc.Find("#"+id).First().AttrOr("value", ""))
}

// Tokens returns a fresh single-use token set bound to the extracted page.
func (e *Extraction) Tokens() *Tokens {
	t := newTokens(e.PageURL)
	t.CSRFToken = e.CSRFToken
	t.CaptchaKey = e.CaptchaKey
	return t
}

// Extract reads the csrf token and the fields inside scope, a selector for the
// form to read. An empty scope reads every field of the document.
func Extract(body []byte, pageURL, scope string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	csrf := strings.TrimSpace(doc.Find(`meta[name="csrf-token"]`).AttrOr("content", ""))
	if csrf == "" {
		return nil, ErrMissingCSRFToken
	}

	root := doc.Selection
	if scope != "" {
		root = doc.Find(scope).First()
		if root.Length() == 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingForm, scope)
		}
	}

	ex := &Extraction{
		PageURL:   pageURL,
		CSRFToken: csrf,
		Fields:    newFieldMap(),
		Choices:   map[string][]Choice{},
		doc:       doc,
	}

	root.Find("input, textarea, select").Each(func(_ int, el *goquery.Selection) {
		key := fieldKey(el)
		if key == "" {
			return
		}

		value, ok := fieldValue(el)
		if !ok {
			return
		}
		ex.Fields.add(key, value)

		if strings.HasPrefix(key, "honey_") || el.HasClass("hide-robot") {
			ex.Honeypots = append(ex.Honeypots, key)
		}
		if goquery.NodeName(el) == "select" {
			ex.Choices[key] = selectChoices(el)
		}
	})

	ex.CaptchaKey = ex.Fields.Get("rand_codeC")
	if ex.CaptchaKey != "" {
		if src, ok := doc.Find(`img[src*="captcha"]`).First().Attr("src"); ok && src != "" {
			if resolved, err := resolveLocation(pageURL, src); err == nil {
				ex.CaptchaImageURL = resolved
			}
		}
	}
	ex.Subject = htmlutil.FirstText(doc, ".gallview-tit-box .tit", "title")

	return ex, nil
}

// fieldKey is the name of the element, or its id for the name-less hidden
// inputs the post view page keeps its state in.
func fieldKey(el *goquery.Selection) string {
	if name := strings.TrimSpace(el.AttrOr("name", "")); name != "" {
		return name
	}
	return strings.TrimSpace(el.AttrOr("id", ""))
}

func fieldValue(el *goquery.Selection) (string, bool) {
	switch goquery.NodeName(el) {
	case "textarea":
		return el.Text(), true
	case "select":
		selected := el.Find("option[selected]").First()
		if selected.Length() == 0 {
			selected = el.Find("option").First()
		}
		if selected.Length() == 0 {
			return el.AttrOr("value", ""), true
		}
		return optionValue(selected), true
	}

	switch strings.ToLower(el.AttrOr("type", "")) {
	case "submit", "button", "image", "file", "reset":
		return "", false
	case "checkbox", "radio":
		if _, checked := el.Attr("checked"); !checked {
			return "", false
		}
		return el.AttrOr("value", "on"), true
	}
	return el.AttrOr("value", ""), true
}

func optionValue(opt *goquery.Selection) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return htmlutil.CleanText(opt.Text())
}

func selectChoices(el *goquery.Selection) []Choice {
	var out []Choice
	el.Find("option").Each(func(_ int, opt *goquery.Selection) {
		out = append(out, Choice{
			Value: optionValue(opt),
			Label: htmlutil.CleanText(opt.Text()),
		})
	})
	return out
}

// captchaImageFor returns the scraped captcha image, or the fixed location
// derived from the gallery and captcha key.
func captchaImageFor(ex *Extraction, endpoints Endpoints, galleryID string) string {
	if ex.CaptchaImageURL != "" {
		return ex.CaptchaImageURL
	}
	return endpoints.CaptchaImage(galleryID, ex.CaptchaKey)
}
