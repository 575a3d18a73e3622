package workspace

import (
	"context"
	"fmt"

	calendar "google.golang.org/api/calendar/v3"
	drive "google.golang.org/api/drive/v3"
	gmail "google.golang.org/api/gmail/v1"
	meet "google.golang.org/api/meet/v2"
	"google.golang.org/api/option"

	"github.com/botworkspace/googlelink/internal/auth"
)

// Factory builds Workspace API clients authorized as individual users.
type Factory struct {
	service *auth.Service
}

// NewFactory creates a client factory backed by the linking service.
func NewFactory(service *auth.Service) *Factory {
	return &Factory{service: service}
}

// Calendar returns a Calendar client authorized as the user identified
// by phone. Fails with auth.ErrMissingAuthorization when the user has
// not linked their account.
func (f *Factory) Calendar(ctx context.Context, phone string) (*calendar.Service, error) {
	ts, err := f.service.TokenSource(ctx, phone)
	if err != nil {
		return nil, err
	}

	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return svc, nil
}

// Drive returns a Drive client authorized as the user identified by phone.
func (f *Factory) Drive(ctx context.Context, phone string) (*drive.Service, error) {
	ts, err := f.service.TokenSource(ctx, phone)
	if err != nil {
		return nil, err
	}

	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return svc, nil
}

// Gmail returns a Gmail client authorized as the user identified by phone.
func (f *Factory) Gmail(ctx context.Context, phone string) (*gmail.Service, error) {
	ts, err := f.service.TokenSource(ctx, phone)
	if err != nil {
		return nil, err
	}

	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return svc, nil
}

// Meet returns a Meet client authorized as the user identified by phone.
func (f *Factory) Meet(ctx context.Context, phone string) (*meet.Service, error) {
	ts, err := f.service.TokenSource(ctx, phone)
	if err != nil {
		return nil, err
	}

	svc, err := meet.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Meet service: %w", err)
	}
	return svc, nil
}
