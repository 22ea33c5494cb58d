// Package auth validates login credentials against stored accounts.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/runeward/server/internal/persist"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrBanned             = errors.New("auth: account banned")
	ErrAlreadyOnline      = errors.New("auth: account already online")
)

// Identity is an authenticated account.
type Identity struct {
	AccountID   int64
	Name        string
	AccessLevel int16
}

// Provider turns a login token into an account identity.
type Provider interface {
	Authenticate(ctx context.Context, token, clientID string) (*Identity, error)
	Logout(ctx context.Context, accountID int64) error
}

// AccountProvider authenticates "name:password" tokens against the
// accounts table, optionally creating unknown accounts on first login.
type AccountProvider struct {
	accounts   *persist.AccountRepo
	autoCreate bool
	log        *zap.Logger
}

func NewAccountProvider(accounts *persist.AccountRepo, autoCreate bool, log *zap.Logger) *AccountProvider {
	return &AccountProvider{accounts: accounts, autoCreate: autoCreate, log: log}
}

func (p *AccountProvider) Authenticate(ctx context.Context, token, clientID string) (*Identity, error) {
	name, password, ok := strings.Cut(token, ":")
	if !ok || name == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	row, err := p.accounts.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if row == nil {
		if !p.autoCreate {
			return nil, ErrInvalidCredentials
		}
		row, err = p.accounts.Create(ctx, name, password)
		if err != nil {
			return nil, err
		}
		p.log.Info("account auto-created", zap.String("account", name))
	} else if !p.accounts.ValidatePassword(row.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if row.Banned && (row.BannedUntil == nil || row.BannedUntil.After(time.Now())) {
		return nil, ErrBanned
	}
	if row.Online {
		return nil, ErrAlreadyOnline
	}
	if err := p.accounts.SetOnline(ctx, row.ID, true); err != nil {
		return nil, err
	}
	return &Identity{AccountID: row.ID, Name: row.Name, AccessLevel: row.AccessLevel}, nil
}

// Logout clears the online marker.
func (p *AccountProvider) Logout(ctx context.Context, accountID int64) error {
	return p.accounts.SetOnline(ctx, accountID, false)
}
