package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
)

// StaticVerifier accepts a fixed set of tokens, each bound to one uid. Tokens
// it does not know are handed to Next when set. Meant for local development
// against the emulators.
type StaticVerifier struct {
	tokens map[string]string
	Next   Verifier
}

// ParseStaticTokens reads a comma separated list of token=uid pairs.
func ParseStaticTokens(list string) (map[string]string, error) {
	out := make(map[string]string)
	for pair := range strings.SplitSeq(list, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, uid, ok := strings.Cut(pair, "=")
		token, uid = strings.TrimSpace(token), strings.TrimSpace(uid)
		if !ok || token == "" || uid == "" {
			return nil, fmt.Errorf("malformed dev token entry %q, want token=uid", pair)
		}
		out[token] = uid
	}
	return out, nil
}

// NewStaticVerifier creates a verifier for tokens; next may be nil.
func NewStaticVerifier(tokens map[string]string, next Verifier) *StaticVerifier {
	return &StaticVerifier{tokens: tokens, Next: next}
}

func (v *StaticVerifier) Verify(ctx context.Context, token string) (*User, error) {
	for known, uid := range v.tokens {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			return &User{UID: uid}, nil
		}
	}
	if v.Next != nil {
		return v.Next.Verify(ctx, token)
	}
	return nil, ErrInvalidToken
}

var _ Verifier = (*StaticVerifier)(nil)
