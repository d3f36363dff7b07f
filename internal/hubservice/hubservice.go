package hubservice

import (
	"github.com/espview/hub/internal/auth"
	"github.com/espview/hub/internal/cache"
	"github.com/espview/hub/internal/errors"
	"github.com/espview/hub/internal/imagery"
	"github.com/espview/hub/internal/realtime"
	"github.com/espview/hub/internal/repository"
	"github.com/espview/hub/internal/retention"
	"github.com/espview/hub/internal/state"
)

// HubService is the composition root: every shared resource the handlers
// need lives here and is passed down by reference. The device state store
// and the realtime hub are the only shared mutable state in the core.
type HubService struct {
	Data       repository.DeviceDataRepository
	PushSubs   repository.PushSubscriptionRepository
	Users      repository.UserRepository
	State      *state.Store
	Hub        *realtime.Hub
	Dispatcher *realtime.Dispatcher
	Auth       *auth.Service
	Compressor *imagery.Compressor
	Images     *cache.ImageCache
	Retention  *retention.Janitor
}

// New creates a new HubService instance
func New(
	data repository.DeviceDataRepository,
	pushSubs repository.PushSubscriptionRepository,
	users repository.UserRepository,
	st *state.Store,
	hub *realtime.Hub,
	dispatcher *realtime.Dispatcher,
	authSvc *auth.Service,
	compressor *imagery.Compressor,
	images *cache.ImageCache,
	janitor *retention.Janitor,
) *HubService {
	return &HubService{
		Data:       data,
		PushSubs:   pushSubs,
		Users:      users,
		State:      st,
		Hub:        hub,
		Dispatcher: dispatcher,
		Auth:       authSvc,
		Compressor: compressor,
		Images:     images,
		Retention:  janitor,
	}
}

// Validate checks if all required dependencies are initialized. The image
// cache is optional; everything else is not.
func (s *HubService) Validate() error {
	if s.Data == nil {
		return ErrMissingDependency("data")
	}
	if s.PushSubs == nil {
		return ErrMissingDependency("pushSubs")
	}
	if s.Users == nil {
		return ErrMissingDependency("users")
	}
	if s.State == nil {
		return ErrMissingDependency("state")
	}
	if s.Hub == nil {
		return ErrMissingDependency("hub")
	}
	if s.Dispatcher == nil {
		return ErrMissingDependency("dispatcher")
	}
	if s.Auth == nil {
		return ErrMissingDependency("auth")
	}
	if s.Compressor == nil {
		return ErrMissingDependency("compressor")
	}
	return nil
}

func ErrMissingDependency(name string) error {
	return errors.NewInternalError("missing dependency: "+name, nil)
}
