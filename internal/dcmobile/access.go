package dcmobile

import (
	"context"
	"fmt"
	"strings"
)

// VerifyTag names the action an access key is requested for.
type VerifyTag string

const (
	VerifyLogin         VerifyTag = "dc_login"
	VerifyWrite         VerifyTag = "dc_check2"
	VerifyComment       VerifyTag = "com_submit"
	VerifyCommentDelete VerifyTag = "com_submitDel"
	VerifyPostDelete    VerifyTag = "board_Del"
)

var accessKeyFields = []string{"Block_key", "block_key", "con_key", "Con_key"}

// AccessReply is the decoded answer of an access endpoint.
type AccessReply struct {
	// Result is nil when the reply carried no result field.
	Result  *bool
	Message string
	Key     string
	Fields  map[string]any
	Body    string
}

func parseAccessReply(body []byte) AccessReply {
	reply := AccessReply{Body: string(body)}
	obj, ok := decodeObject(body)
	if !ok {
		return reply
	}
	reply.Fields = obj
	reply.Key = firstString(obj, accessKeyFields...)
	reply.Message = firstString(obj, "message", "cause", "msg")
	if raw, ok := obj["result"]; ok {
		result := truthy(raw)
		reply.Result = &result
	}
	return reply
}

// access posts fields to an access endpoint on behalf of the page tokens were
// scraped from. The call is a read: it does not change server state and may
// be retried by the transport.
func (s *Session) access(ctx context.Context, target, origin string, tokens *Tokens, fields *Form) (AccessReply, error) {
	res, err := s.request(ctx, false).
		SetHeaders(ajaxFor(tokens, origin)).
		SetBody(fields.Encode()).
		Post(target)
	if err != nil {
		return AccessReply{}, err
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 400 {
		return AccessReply{}, &httpStatusError{status: res.StatusCode(), url: target}
	}
	return parseAccessReply(res.Body()), nil
}

// acquireKey requests an access key for tag. A reply without a key is fatal:
// the key call is never repeated, only the whole operation can be.
func (s *Session) acquireKey(ctx context.Context, tokens *Tokens, tag VerifyTag, extra map[string]string) (string, error) {
	fields := NewForm().Set("token_verify", string(tag)).Merge(extra)
	reply, err := s.access(ctx, s.endpoints.Access(), "", tokens, fields)
	if err != nil {
		return "", err
	}
	if reply.Key == "" {
		s.tel.ReportWarning("access-key", string(tag), summarize(reply.Body))
		return "", fmt.Errorf("%w (token_verify=%s)", ErrMissingAccessKey, tag)
	}
	tokens.AccessKey = reply.Key
	return reply.Key, nil
}

func summarize(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > 200 {
		return strings.ToValidUTF8(body[:200], "") + "..."
	}
	return body
}
