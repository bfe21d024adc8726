package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/google/uuid"

	"github.com/somos/attraction/backend/internal/domain/entities"
	"github.com/somos/attraction/backend/internal/infrastructure/observability"
	"github.com/somos/attraction/backend/pkg/config"
)

type callerKey struct{}

// TokenValidator checks a bearer token and returns its subject
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// Authenticator resolves the caller of every request from an optional bearer
// token and the anonymous session cookie. Tokens are issued by the identity
// service and only validated here.
type Authenticator struct {
	validator TokenValidator
	session   config.SessionConfig
}

// NewAuthenticator builds the token validator from config. A shared HS256
// secret takes precedence over a JWKS endpoint. With neither configured no
// bearer token is ever accepted.
func NewAuthenticator(auth config.AuthConfig, session config.SessionConfig) (*Authenticator, error) {
	a := &Authenticator{session: session}
	if auth.IssuerURL == "" || (auth.HS256Secret == "" && auth.JWKSURL == "") {
		return a, nil
	}

	issuerURL, err := url.Parse(auth.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}

	skew := time.Duration(auth.ClockSkewSec) * time.Second

	var v *validator.Validator
	if auth.HS256Secret != "" {
		secret := []byte(auth.HS256Secret)
		v, err = validator.New(
			func(context.Context) (interface{}, error) { return secret, nil },
			validator.HS256,
			issuerURL.String(),
			[]string{auth.Audience},
			validator.WithAllowedClockSkew(skew),
		)
	} else {
		jwksURL, parseErr := url.Parse(auth.JWKSURL)
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse the jwks url: %w", parseErr)
		}
		provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute, jwks.WithCustomJWKSURI(jwksURL))
		v, err = validator.New(
			provider.KeyFunc,
			validator.RS256,
			issuerURL.String(),
			[]string{auth.Audience},
			validator.WithAllowedClockSkew(skew),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	a.validator = v
	return a, nil
}

// NewAuthenticatorWithValidator creates an authenticator around an existing validator
func NewAuthenticatorWithValidator(v TokenValidator, session config.SessionConfig) *Authenticator {
	return &Authenticator{validator: v, session: session}
}

// Middleware attaches the caller to the request context. A bearer token that
// fails validation is rejected outright.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var caller entities.Caller

		if token, ok := bearerToken(r); ok {
			userID, err := a.subject(r.Context(), token)
			if err != nil {
				observability.ComponentLogger(r.Context(), "auth").Debug().Err(err).Msg("rejected bearer token")
				writeAuthError(w, "Invalid auth token")
				return
			}
			caller.UserID = userID
		}

		if cookie, err := r.Cookie(a.session.CookieName); err == nil {
			if _, err := uuid.Parse(cookie.Value); err == nil {
				caller.SessionKey = cookie.Value
			}
		}

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// ResolveSession returns the caller, with a fresh anonymous session key
// when the request did not carry one. issued reports a fresh key, whose
// cookie IssueSession writes once the request has succeeded.
func (a *Authenticator) ResolveSession(r *http.Request) (caller entities.Caller, issued bool) {
	caller = CallerFromContext(r.Context())
	if caller.SessionKey != "" {
		return caller, false
	}
	caller.SessionKey = uuid.NewString()
	return caller, true
}

// IssueSession sets the anonymous session cookie for caller.
func (a *Authenticator) IssueSession(w http.ResponseWriter, caller entities.Caller) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.session.CookieName,
		Value:    caller.SessionKey,
		Path:     "/",
		MaxAge:   a.session.MaxAgeSecond,
		HttpOnly: true,
		Secure:   a.session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Authenticator) subject(ctx context.Context, token string) (string, error) {
	if a.validator == nil {
		return "", errors.New("bearer authentication is not configured")
	}

	claimsI, err := a.validator.ValidateToken(ctx, token)
	if err != nil {
		return "", err
	}
	claims, ok := claimsI.(*validator.ValidatedClaims)
	if !ok || claims.RegisteredClaims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.RegisteredClaims.Subject, nil
}

// RequireUser rejects requests without an authenticated caller
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !CallerFromContext(r.Context()).Authenticated() {
			writeAuthError(w, "Authentication credentials were not provided.")
			return
		}
		next(w, r)
	}
}

// WithCaller returns a new context carrying the caller
func WithCaller(ctx context.Context, caller entities.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext returns the caller attached by Middleware
func CallerFromContext(ctx context.Context) entities.Caller {
	caller, _ := ctx.Value(callerKey{}).(entities.Caller)
	return caller
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
