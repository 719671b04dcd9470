package terminal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/georgemunganga/hobex-pos/internal/modules/hobex"
	"github.com/georgemunganga/hobex-pos/pkg/logger"
	"github.com/google/uuid"
)

// Gateway is the part of the Hobex client the token manager needs.
type Gateway interface {
	Login(ctx context.Context, baseURL, user, password string) (string, error)
	SampleTransaction(ctx context.Context, ep hobex.Endpoint, tid string) (*hobex.Response, error)
}

// Service manages terminal configurations and their gateway tokens.
type Service interface {
	Create(ctx context.Context, req SaveTerminalRequest) (*Terminal, error)
	Update(ctx context.Context, id string, req SaveTerminalRequest) (*Terminal, error)
	GetTerminal(ctx context.Context, id string) (*Terminal, error)
	List(ctx context.Context) ([]*Terminal, error)
	RefreshToken(ctx context.Context, id string) (*Terminal, error)
	RefreshAll(ctx context.Context) SweepReport
	RunTokenRefresher(ctx context.Context, interval time.Duration)
	SampleTransaction(ctx context.Context, id string) (*hobex.Result, error)
}

// DefaultRefreshInterval is how often stored gateway tokens are renewed.
const DefaultRefreshInterval = 12 * time.Hour

type service struct {
	repo      Repository
	gateway   Gateway
	addresses Addresses
	log       *logger.Logger
}

func NewService(repo Repository, gateway Gateway, addresses Addresses, log *logger.Logger) Service {
	return &service{repo: repo, gateway: gateway, addresses: addresses, log: log}
}

func (s *service) Create(ctx context.Context, req SaveTerminalRequest) (*Terminal, error) {
	t := &Terminal{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(req.Name),
		Kind:     Kind(strings.ToLower(req.Kind)),
		TID:      strings.TrimSpace(req.TID),
		Mode:     modeOrDefault(req.Mode),
		User:     strings.TrimSpace(req.User),
		Password: req.Password,
	}
	if t.Kind == "" {
		t.Kind = KindNone
	}
	if err := Validate(t); err != nil {
		return nil, err
	}
	t.APIAddress = s.addresses[t.Mode]

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create terminal: %w", err)
	}
	return t, nil
}

func (s *service) Update(ctx context.Context, id string, req SaveTerminalRequest) (*Terminal, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *t

	t.Name = strings.TrimSpace(req.Name)
	if req.Kind != "" {
		t.Kind = Kind(strings.ToLower(req.Kind))
	}
	t.TID = strings.TrimSpace(req.TID)
	if req.Mode != "" {
		t.Mode = Mode(strings.ToLower(req.Mode))
	}
	t.User = strings.TrimSpace(req.User)
	// an empty password keeps the stored one
	if req.Password != "" {
		t.Password = req.Password
	}
	if err := Validate(t); err != nil {
		return nil, err
	}
	t.APIAddress = s.addresses[t.Mode]

	// A token is only valid for the account and environment it was issued for.
	if t.Mode != before.Mode || t.User != before.User || t.Password != before.Password {
		t.Token = ""
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) GetTerminal(ctx context.Context, id string) (*Terminal, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Terminal, error) {
	return s.repo.List(ctx)
}

// RefreshToken logs in with the stored credentials and keeps the new token.
// Authentication failures are returned as *hobex.AuthenticationError.
func (s *service) RefreshToken(ctx context.Context, id string) (*Terminal, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsHobex() {
		return nil, ErrNotHobex
	}
	if err := s.refresh(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) refresh(ctx context.Context, t *Terminal) error {
	token, err := s.gateway.Login(ctx, t.APIAddress, t.User, t.Password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateToken(ctx, t.ID.String(), token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	t.Token = token
	return nil
}

// RefreshAll refreshes every Hobex terminal that has credentials. One
// terminal failing never stops the others.
func (s *service) RefreshAll(ctx context.Context) SweepReport {
	var report SweepReport
	terminals, err := s.repo.ListHobexWithCredentials(ctx)
	if err != nil {
		s.log.WithError(err).Error("token sweep: list terminals failed")
		return report
	}
	for _, t := range terminals {
		if ctx.Err() != nil {
			break
		}
		log := s.log.WithTerminal(t.ID.String())
		if err := s.refresh(ctx, t); err != nil {
			report.Failed++
			log.WithError(err).Warn("token refresh failed")
			continue
		}
		report.Refreshed++
		log.Debug("token refreshed")
	}
	s.log.Info("token sweep finished", "refreshed", report.Refreshed, "failed", report.Failed)
	return report
}

// RunTokenRefresher sweeps once immediately and then on every tick until
// ctx is done. A non-positive interval falls back to DefaultRefreshInterval.
func (s *service) RunTokenRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	s.RefreshAll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("token refresher stopped")
			return
		case <-ticker.C:
			s.RefreshAll(ctx)
		}
	}
}

// SampleTransaction runs a 1.00 EUR test payment on the terminal.
func (s *service) SampleTransaction(ctx context.Context, id string) (*hobex.Result, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsHobex() {
		return nil, ErrNotHobex
	}
	resp, err := s.gateway.SampleTransaction(ctx, t.Endpoint(), t.TID)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("there was an error: gateway answered %d", resp.StatusCode)
	}
	var result hobex.Result
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("there was an error: %w", err)
	}
	return &result, nil
}

func modeOrDefault(m string) Mode {
	if m == "" {
		return ModeProduction
	}
	return Mode(strings.ToLower(m))
}
