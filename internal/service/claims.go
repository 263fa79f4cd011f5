package service

import (
	"encoding/json"
	"fmt"
	"strings"

	domainauth "github.com/familiez/familiez-auth/internal/domain/auth"
	apperrors "github.com/familiez/familiez-auth/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	jmespath "github.com/jmespath-community/go-jmespath"
)

// ClaimsDecoder reads display claims from an access token without verifying it.
// The result is never used for authorization.
type ClaimsDecoder struct {
	parser   *jwt.Parser
	username string
}

// NewClaimsDecoder compiles usernameExpr, a JMESPath expression evaluated against
// the claim set to pick the display username.
func NewClaimsDecoder(usernameExpr string) (*ClaimsDecoder, error) {
	if _, err := jmespath.Compile(usernameExpr); err != nil {
		return nil, fmt.Errorf("compile username expression %q: %w", usernameExpr, err)
	}
	return &ClaimsDecoder{
		parser:   jwt.NewParser(),
		username: usernameExpr,
	}, nil
}

// Decode returns the claims carried by token, or a ClaimsDecodeFailed error when the
// token is not three dot-separated segments or its payload is not a JSON object.
func (d *ClaimsDecoder) Decode(token string) (*domainauth.Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, apperrors.Newf(apperrors.ErrCodeClaimsDecodeFailed,
			"token has %d segments, want 3", len(parts))
	}

	payload, err := d.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeClaimsDecodeFailed, "decode token payload")
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeClaimsDecodeFailed, "parse token payload")
	}
	mc := jwt.MapClaims(raw)

	sub, _ := mc.GetSubject()
	return &domainauth.Claims{
		Subject:    sub,
		Username:   d.usernameFrom(raw),
		GivenName:  stringClaim(raw, "given_name"),
		FamilyName: stringClaim(raw, "family_name"),
		Email:      stringClaim(raw, "email"),
	}, nil
}

// usernameFrom evaluates the username expression and keeps the local part of
// an email-shaped result.
func (d *ClaimsDecoder) usernameFrom(raw map[string]any) string {
	v, err := jmespath.Search(d.username, raw)
	if err != nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	if at := strings.IndexByte(s, '@'); at >= 0 {
		s = s[:at]
	}
	return s
}

func stringClaim(raw map[string]any, name string) string {
	s, _ := raw[name].(string)
	return s
}
