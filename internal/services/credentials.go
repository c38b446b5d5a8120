package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"productapi/internal/domain"
	"productapi/internal/repos"
)

// CredentialChecker resolves a username/password pair to a user.
// Implementations return domain.ErrInvalidCredentials on mismatch.
type CredentialChecker interface {
	Check(ctx context.Context, username, password string) (domain.User, error)
}

type Account struct {
	ID       string
	Username string
	Password string
}

// DefaultAccounts is the built-in allow-list.
func DefaultAccounts() []Account {
	return []Account{
		{ID: "1", Username: "admin", Password: "password"},
		{ID: "2", Username: "user", Password: "password"},
	}
}

type hashedAccount struct {
	user domain.User
	hash []byte
}

// StaticCredentials is a fixed allow-list. Passwords are only kept as bcrypt hashes.
type StaticCredentials struct {
	accounts map[string]hashedAccount
	dummy    []byte
}

var _ CredentialChecker = (*StaticCredentials)(nil)

func NewStaticCredentials(cost int, accounts ...Account) (*StaticCredentials, error) {
	s := &StaticCredentials{accounts: make(map[string]hashedAccount, len(accounts))}
	for _, a := range accounts {
		h, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", a.Username, err)
		}
		s.accounts[a.Username] = hashedAccount{
			user: domain.User{ID: a.ID, Username: a.Username},
			hash: h,
		}
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-account"), cost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	s.dummy = dummy
	return s, nil
}

func (s *StaticCredentials) Check(_ context.Context, username, password string) (domain.User, error) {
	acc, ok := s.accounts[username]
	if !ok {
		// keep timing close to the known-user path
		_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(password))
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return acc.user, nil
}

// StoredCredentials checks passwords against the users table.
type StoredCredentials struct {
	Users *repos.UserRepo
	dummy []byte
}

var _ CredentialChecker = (*StoredCredentials)(nil)

func NewStoredCredentials(users *repos.UserRepo, cost int) (*StoredCredentials, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-account"), cost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	return &StoredCredentials{Users: users, dummy: dummy}, nil
}

func (s *StoredCredentials) Check(ctx context.Context, username, password string) (domain.User, error) {
	u, ok, err := s.Users.ByUsername(ctx, username)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(password))
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return domain.User{ID: u.ID, Username: u.Username}, nil
}

// SeedAccounts stores hashed accounts that are not present yet.
func SeedAccounts(ctx context.Context, users *repos.UserRepo, cost int, accounts ...Account) error {
	rows := make([]repos.UserRow, 0, len(accounts))
	for _, a := range accounts {
		h, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", a.Username, err)
		}
		rows = append(rows, repos.UserRow{ID: a.ID, Username: a.Username, PasswordHash: string(h)})
	}
	return users.EnsureUsers(ctx, rows)
}
