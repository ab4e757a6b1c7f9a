package services

import (
	"github.com/groupmail/groupmail-services/internal/appconfig"
	identity "github.com/groupmail/groupmail-services/internal/services"
)

// Service contains all shared dependencies for handlers.
type Service struct {
	Config   *appconfig.Config
	Identity *identity.Service
}
