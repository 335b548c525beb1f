package dcmobile

const (
	secChUa         = `"Chromium";v="140", "Not=A?Brand";v="24", "Google Chrome";v="140"`
	acceptLanguage  = "ko,en-US;q=0.9,en;q=0.8"
	formContentType = "application/x-www-form-urlencoded; charset=UTF-8"
)

type headerSet map[string]string

// with returns a copy of h with the given key/value pairs set.
func (h headerSet) with(kv ...string) headerSet {
	out := make(headerSet, len(h)+len(kv)/2)
	for k, v := range h {
		out[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = kv[i+1]
	}
	return out
}

func (h headerSet) merge(other map[string]string) headerSet {
	out := h.with()
	for k, v := range other {
		out[k] = v
	}
	return out
}

var clientHints = headerSet{
	"sec-ch-ua":          secChUa,
	"sec-ch-ua-mobile":   "?1",
	"sec-ch-ua-platform": `"Android"`,
}

var htmlHeaders = headerSet{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
	"Accept-Language":           acceptLanguage,
	"Upgrade-Insecure-Requests": "1",
}

var navigateHeaders = htmlHeaders.with(
	"sec-fetch-dest", "document",
	"sec-fetch-mode", "navigate",
	"sec-fetch-site", "same-site",
	"sec-fetch-user", "?1",
)

var ajaxHeaders = headerSet{
	"Accept":           "*/*",
	"Accept-Language":  acceptLanguage,
	"Content-Type":     formContentType,
	"sec-fetch-dest":   "empty",
	"sec-fetch-mode":   "cors",
	"sec-fetch-site":   "same-origin",
	"X-Requested-With": "XMLHttpRequest",
}

// ajaxFor builds the AJAX header set for a request authorized by tokens.
func ajaxFor(tokens *Tokens, origin string) headerSet {
	h := ajaxHeaders.with(
		"x-csrf-token", tokens.CSRFToken,
		"Referer", tokens.Page(),
	)
	if origin != "" {
		h["Origin"] = origin
	}
	return h
}
