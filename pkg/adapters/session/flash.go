package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "session"
	flashTTL   = 5 * time.Minute
)

// Flash is a one-shot notice shown on the next rendered page
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type flashClaims struct {
	Flashes []Flash `json:"flashes"`
	jwt.RegisteredClaims
}

// Store keeps pending flashes in a signed cookie on the visitor's browser
type Store struct {
	secret []byte
	secure bool
	now    func() time.Time
}

func NewStore(secret string, secure bool) *Store {
	return &Store{
		secret: []byte(secret),
		secure: secure,
		now:    time.Now,
	}
}

// Push appends flashes to whatever the visitor has pending
func (s *Store) Push(w http.ResponseWriter, r *http.Request, flashes ...Flash) error {
	pending := append(s.read(r), flashes...)

	expiresAt := s.now().Add(flashTTL)
	claims := &flashClaims{
		Flashes: pending,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  expiresAt,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop returns pending flashes and clears the cookie
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) []Flash {
	if _, err := r.Cookie(CookieName); err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s.read(r)
}

// read ignores missing, tampered and expired cookies
func (s *Store) read(r *http.Request) []Flash {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	claims := &flashClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil
	}
	return claims.Flashes
}
