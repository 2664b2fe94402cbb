//go:build wireinject
// +build wireinject

package wire

import (
	"claridx/internal/conversation"
	"claridx/internal/locale"
	"claridx/internal/user"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
)

func InitializeApplication() (*Application, func(), error) {
	wire.Build(
		infraSet,
		ProvideDatabase,
		ProvideMongo,
		ProvideRedis,
		ProvideHub,
		ProvideBlobStore,
		ProvideTokenManager,
		ProvideRevocationStore,
		user.NewUserRepository,
		ProvideUserService,
		user.NewHandler,
		conversation.NewRepository,
		conversation.NewAuthorizer,
		ProvideSynchronizer,
		ProvideConversationHandler,
		ProvideCopilotHandler,
		locale.Load,
		locale.NewHandler,
		ProvideHealthChecker,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}

func InitializeMediaServer() (*MediaApplication, func(), error) {
	wire.Build(
		infraSet,
		ProvideMongo,
		ProvideBlobStore,
		ProvideMediaServer,
		wire.Struct(new(MediaApplication), "*"),
	)
	return nil, nil, nil
}
