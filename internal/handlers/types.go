package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/serroba/shortlinks/internal/session"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// SessionInput carries the caller's token, as a cookie or a bearer header.
type SessionInput struct {
	SessionCookie string `cookie:"session"      doc:"Session token cookie"`
	Authorization string `header:"Authorization" doc:"Bearer session token"`
}

// Candidates returns the tokens sent by the client, cookie first.
func (in *SessionInput) Candidates() []session.Token {
	var tokens []session.Token

	if in.SessionCookie != "" {
		tokens = append(tokens, session.Token(in.SessionCookie))
	}

	scheme, token, ok := strings.Cut(in.Authorization, " ")
	token = strings.TrimSpace(token)

	if ok && strings.EqualFold(scheme, "Bearer") && token != "" && token != in.SessionCookie {
		tokens = append(tokens, session.Token(token))
	}

	return tokens
}

// CredentialsRequest is the request body for register and login.
type CredentialsRequest struct {
	Body struct {
		Email    string `doc:"Account email"    example:"alice@example.com" json:"email"`
		Password string `doc:"Account password" example:"correct horse"     json:"password"`
	}
}

// UserBody describes an account. The password hash is never exposed.
type UserBody struct {
	ID        string    `doc:"User id"             json:"id"`
	Email     string    `doc:"Email as registered" json:"email"`
	CreatedAt time.Time `doc:"Registration time"   json:"createdAt"`
}

// SignUpResponse is returned after registration, with the new session set.
type SignUpResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      UserBody
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		Token     string    `doc:"Session token, also set as a cookie" json:"token"`
		ExpiresAt time.Time `doc:"Session expiry, absent if none"      json:"expiresAt,omitzero" required:"false"`
	}
}

// SessionRequest is any request that only needs the caller.
type SessionRequest struct {
	SessionInput
}

// LogoutResponse clears the session cookie.
type LogoutResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
}

// MeResponse describes the logged-in user.
type MeResponse struct {
	Body UserBody
}

// LinkBody describes a short link.
type LinkBody struct {
	Code      string    `doc:"The short code"     example:"aZ09bC"                             json:"code"`
	ShortURL  string    `doc:"The full short URL" example:"http://localhost:8888/u/aZ09bC"     json:"shortUrl"`
	LongURL   string    `doc:"The destination"    example:"https://example.com/very/long/path" json:"longUrl"`
	CreatedAt time.Time `doc:"Creation time"                                                   json:"createdAt"`
}

// CreateLinkRequest is the request for shortening a URL.
type CreateLinkRequest struct {
	SessionInput
	Body struct {
		URL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"url"`
	}
}

// CreateLinkResponse is returned for a newly created link.
type CreateLinkResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     LinkBody
}

// ListLinksResponse lists the caller's links in creation order.
type ListLinksResponse struct {
	Body struct {
		Owner string     `doc:"Email of the caller" json:"owner"`
		Links []LinkBody `doc:"The caller's links"  json:"links"`
	}
}

// LinkRequest addresses one link owned by the caller.
type LinkRequest struct {
	SessionInput
	Code string `doc:"The short code" example:"aZ09bC" path:"code"`
}

// LinkResponse returns one link.
type LinkResponse struct {
	Body LinkBody
}

// UpdateLinkRequest changes the destination of a link.
type UpdateLinkRequest struct {
	SessionInput
	Code string `doc:"The short code" example:"aZ09bC" path:"code"`
	Body struct {
		URL string `doc:"The new destination" example:"https://example.com/new" json:"url"`
	}
}

// RedirectRequest is the request for following a short link.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"aZ09bC" path:"code"`
}

// RedirectResponse points the client at the destination.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}
