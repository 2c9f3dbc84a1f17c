package app

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/mindcare_backend/config"
	"github.com/Alijeyrad/mindcare_backend/internal/service/account"
	"github.com/Alijeyrad/mindcare_backend/internal/service/auth"
	"github.com/Alijeyrad/mindcare_backend/internal/service/conversation"
	"github.com/Alijeyrad/mindcare_backend/internal/service/crisis"
	"github.com/Alijeyrad/mindcare_backend/internal/service/identity"
	"github.com/Alijeyrad/mindcare_backend/internal/service/invite"
	"github.com/Alijeyrad/mindcare_backend/internal/service/notification"
	"github.com/Alijeyrad/mindcare_backend/pkg/events"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
	pasetotoken "github.com/Alijeyrad/mindcare_backend/pkg/paseto"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvidePasetoManager,
		ProvideIdentityGateway,
		ProvideAccountService,
		ProvideInviteService,
		ProvideCrisisService,
		ProvideConversationService,
		ProvideNotificationService,
		ProvideAuthService,
	),
)

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}

func ProvideIdentityGateway(store kv.Store, rdb *redis.Client, tokens *pasetotoken.Manager, cfg *config.Config) identity.Gateway {
	return identity.New(store, rdb, tokens, cfg)
}

func ProvideAccountService(store kv.Store, cfg *config.Config) (account.Service, error) {
	return account.New(store, cfg)
}

func ProvideInviteService(store kv.Store, accounts account.Service, cfg *config.Config) invite.Service {
	return invite.New(store, accounts, cfg)
}

func ProvideCrisisService(store kv.Store, accounts account.Service, pub events.Publisher, cfg *config.Config) crisis.Service {
	return crisis.New(store, accounts, pub, cfg)
}

func ProvideConversationService(store kv.Store, accounts account.Service, pub events.Publisher, cfg *config.Config) conversation.Service {
	return conversation.New(store, accounts, pub, cfg)
}

func ProvideNotificationService(store kv.Store) notification.Service {
	return notification.New(store)
}

func ProvideAuthService(
	gw identity.Gateway,
	accounts account.Service,
	invites invite.Service,
	cfg *config.Config,
) auth.Service {
	return auth.New(gw, accounts, invites, cfg)
}
