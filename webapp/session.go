package webapp

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	jwt "github.com/dgrijalva/jwt-go"
)

const sessionDataClaim = "data"

// ErrInvalidSession is returned by DecodeSession for a token that is malformed or was not signed
// with the application secret.
var ErrInvalidSession = errors.New("invalid session token")

// SessionCodec converts session and flash data to and from cookies.
//
// The session cookie holds an HS256-signed JWT whose "data" claim is the string map, so the
// client can read but not alter it. The flash cookie is plain form encoding, since it only lives
// for one request.
type SessionCodec struct {
	secret            []byte
	sessionCookieName string
	flashCookieName   string
}

func NewSessionCodec(config Config) *SessionCodec {
	return &SessionCodec{
		secret:            []byte(config.Secret),
		sessionCookieName: orDefault(config.SessionCookieName, DefaultSessionCookieName),
		flashCookieName:   orDefault(config.FlashCookieName, DefaultFlashCookieName),
	}
}

func (s *SessionCodec) SessionCookieName() string { return s.sessionCookieName }

func (s *SessionCodec) FlashCookieName() string { return s.flashCookieName }

func (s *SessionCodec) EncodeSession(values map[string]string) (string, error) {
	data := make(map[string]interface{}, len(values))
	for k, v := range values {
		data[k] = v
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{sessionDataClaim: data})
	return token.SignedString(s.secret)
}

func (s *SessionCodec) DecodeSession(encoded string) (map[string]string, error) {
	token, err := jwt.Parse(encoded, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSession, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}
	ret := make(map[string]string)
	if data, ok := claims[sessionDataClaim].(map[string]interface{}); ok {
		for k, v := range data {
			if str, ok := v.(string); ok {
				ret[k] = str
			}
		}
	}
	return ret, nil
}

func (s *SessionCodec) EncodeFlash(values map[string]string) string {
	v := make(url.Values, len(values))
	for k, value := range values {
		v.Set(k, value)
	}
	return v.Encode()
}

func (s *SessionCodec) DecodeFlash(encoded string) (map[string]string, error) {
	v, err := url.ParseQuery(encoded)
	if err != nil {
		return nil, err
	}
	ret := make(map[string]string, len(v))
	for k := range v {
		ret[k] = v.Get(k)
	}
	return ret, nil
}

// SessionCookie returns the cookie that carries the session. An empty session produces a cookie
// that deletes any existing one.
func (s *SessionCodec) SessionCookie(values map[string]string) (*http.Cookie, error) {
	if len(values) == 0 {
		return expiredCookie(s.sessionCookieName), nil
	}
	encoded, err := s.EncodeSession(values)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{Name: s.sessionCookieName, Value: encoded, Path: "/", HttpOnly: true}, nil
}

// FlashCookie returns the cookie that carries flash data to the next request. An empty flash
// produces a cookie that deletes any existing one.
func (s *SessionCodec) FlashCookie(values map[string]string) *http.Cookie {
	if len(values) == 0 {
		return expiredCookie(s.flashCookieName)
	}
	return &http.Cookie{Name: s.flashCookieName, Value: s.EncodeFlash(values), Path: "/", HttpOnly: true}
}

// ReadRequest extracts session and flash data from a request's cookies. A session cookie that
// fails verification is ignored, which is reported through the error so it can be logged.
func (s *SessionCodec) ReadRequest(req *http.Request) (session, flash map[string]string, err error) {
	session, flash = map[string]string{}, map[string]string{}
	if c, e := req.Cookie(s.sessionCookieName); e == nil && c.Value != "" {
		if decoded, e := s.DecodeSession(c.Value); e == nil {
			session = decoded
		} else {
			err = e
		}
	}
	if c, e := req.Cookie(s.flashCookieName); e == nil && c.Value != "" {
		if decoded, e := s.DecodeFlash(c.Value); e == nil {
			flash = decoded
		} else if err == nil {
			err = e
		}
	}
	return session, flash, err
}

func expiredCookie(name string) *http.Cookie {
	return &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1}
}

func orDefault(s, defaultValue string) string {
	if s == "" {
		return defaultValue
	}
	return s
}
