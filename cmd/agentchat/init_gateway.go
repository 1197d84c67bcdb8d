package main

import (
	"context"
	"log/slog"
	"net/http"

	"agentchat/internal/adapter/gateway"
	"agentchat/internal/infra/config"
	"agentchat/internal/infra/middleware"
)

// initGateway builds the gateway with every RPC method and REST route
// registered, behind security headers and per-IP rate limiting.
func initGateway(ctx context.Context, cfg *config.Config, rt *runtime) (*gateway.Server, error) {
	gwCfg := cfg.Gateway

	tokens := make([]gateway.Token, len(gwCfg.Auth.Tokens))
	for i, t := range gwCfg.Auth.Tokens {
		tokens[i] = gateway.Token{Token: t.Token, Name: t.Name}
	}
	if gwCfg.Auth.Type == "" {
		rt.log.Warn("gateway auth disabled; every client is accepted", "addr", gwCfg.Addr)
	}

	rateLimit := middleware.RateLimit(ctx, gwCfg.RateLimit)
	srv := gateway.NewServer(rt.bus, gateway.NewAuthenticator(gwCfg.Auth.Type, tokens), gwCfg.Addr, rt.log,
		gateway.WithAllowedOrigins(gwCfg.AllowedOrigins...),
		gateway.WithMiddleware(func(next http.Handler) http.Handler {
			return middleware.Chain(next, middleware.SecurityHeaders, rateLimit)
		}),
	)

	deps := gateway.HandlerDeps{Engine: rt.engine, Store: rt.store, Logger: rt.log}
	if err := gateway.RegisterDefaultHandlers(srv, deps); err != nil {
		return nil, err
	}
	gateway.RegisterRESTHandlers(srv, deps)
	return srv, nil
}

func stopGateway(gw *gateway.Server, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if gw.BoundAddr() == "" {
		return
	}
	if err := gw.Stop(ctx); err != nil {
		log.Error("gateway shutdown error", "error", err)
	}
}
