package auth

import (
	"context"
	"fmt"
	"strings"
)

const anonymousClient = "default"

// Identity names the client a token was issued to.
type Identity struct {
	Client string
}

type TokenValidator interface {
	Validate(ctx context.Context, token string) (Identity, bool)
}

type StaticTokenValidator struct {
	tokens map[string]Identity
}

// NewStaticTokenValidator parses "token[:client],...". Entries without a
// client are attributed to "default".
func NewStaticTokenValidator(spec string) (*StaticTokenValidator, error) {
	validator := &StaticTokenValidator{tokens: map[string]Identity{}}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return validator, nil
	}

	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		token, client, found := strings.Cut(entry, ":")
		token = strings.TrimSpace(token)
		client = strings.TrimSpace(client)
		if token == "" {
			return nil, fmt.Errorf("invalid static token entry %q: empty token", entry)
		}
		if found && client == "" {
			return nil, fmt.Errorf("invalid static token entry %q: empty client", entry)
		}
		if client == "" {
			client = anonymousClient
		}
		if _, exists := validator.tokens[token]; exists {
			return nil, fmt.Errorf("invalid static token entry %q: duplicate token", entry)
		}
		validator.tokens[token] = Identity{Client: client}
	}
	return validator, nil
}

func (v *StaticTokenValidator) Validate(_ context.Context, token string) (Identity, bool) {
	identity, ok := v.tokens[token]
	return identity, ok
}

// Len reports how many tokens are configured.
func (v *StaticTokenValidator) Len() int {
	return len(v.tokens)
}
