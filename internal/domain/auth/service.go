package auth

import (
	"crypto/subtle"
	"strings"
	"time"
)

type account struct {
	username     string
	passwordHash string
	role         string
}

// Session is an issued bearer token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Role      string
}

// Service authenticates the configured operator and the optional read-only viewer.
// With an empty secret it runs in development mode and every caller is treated as the operator.
type Service struct {
	secret   string
	ttl      time.Duration
	accounts []account
	now      func() time.Time
}

func NewService(secret string, ttl time.Duration, username, passwordHash string) *Service {
	s := &Service{secret: secret, ttl: ttl, now: time.Now}
	s.addAccount(username, passwordHash, RoleOperator)
	return s
}

// WithViewer registers a read-only account. An empty hash leaves it disabled.
func (s *Service) WithViewer(username, passwordHash string) *Service {
	s.addAccount(username, passwordHash, RoleViewer)
	return s
}

func (s *Service) addAccount(username, passwordHash, role string) {
	if strings.TrimSpace(passwordHash) == "" {
		return
	}
	s.accounts = append(s.accounts, account{
		username:     strings.TrimSpace(username),
		passwordHash: passwordHash,
		role:         role,
	})
}

func (s *Service) DevMode() bool {
	return strings.TrimSpace(s.secret) == ""
}

// Login checks the credentials against every configured account and issues a bearer token
// carrying the matched account's role.
func (s *Service) Login(username, password string) (Session, error) {
	if s.DevMode() {
		return Session{}, ErrInvalidCredentials
	}
	username = strings.TrimSpace(username)
	var matched *account
	for i := range s.accounts {
		acc := &s.accounts[i]
		nameOK := subtle.ConstantTimeCompare([]byte(username), []byte(acc.username)) == 1
		// always run bcrypt so a wrong username costs the same as a wrong password
		passErr := CheckPassword(acc.passwordHash, password)
		if nameOK && passErr == nil && matched == nil {
			matched = acc
		}
	}
	if matched == nil {
		return Session{}, ErrInvalidCredentials
	}
	now := s.now()
	token, err := GenerateToken(s.secret, matched.username, matched.role, s.ttl, now)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: now.Add(s.ttl), Role: matched.role}, nil
}

func (s *Service) Authenticate(token string) (UserContext, error) {
	if s.DevMode() {
		return UserContext{Username: "dev", Role: RoleOperator}, nil
	}
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return UserContext{}, ErrInvalidToken
	}
	switch claims.Role {
	case RoleOperator, RoleViewer:
	default:
		return UserContext{}, ErrInvalidToken
	}
	return UserContext{Username: claims.Subject, Role: claims.Role}, nil
}
