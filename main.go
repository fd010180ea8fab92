package main

import (
	"context"
	"fmt"
	"time"

	"NimbusChat/global/config"
	"NimbusChat/logger"
	"NimbusChat/service/auth"
	"NimbusChat/service/chat"
	"NimbusChat/service/history"
	"NimbusChat/service/registry"
	"NimbusChat/service/storage"
	redisstore "NimbusChat/service/storage/redis"
	"NimbusChat/tools/ids"
	"NimbusChat/tools/security"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		logger.Log.Fatal("load config", zap.Error(err))
	}
	cfg := config.Global
	ids.SetNodeID(cfg.NodeID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal("connect postgres", zap.Error(err))
	}
	store := history.NewPGStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Log.Fatal("ensure schema", zap.Error(err))
	}

	if err := redisstore.Init(redisstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}); err != nil {
		logger.Log.Fatal("connect redis", zap.Error(err))
	}
	revoked := storage.NewRevokedStore(redisstore.Client())

	reg, err := registry.New(registry.Parse(cfg.ChatBackends), cfg.DefaultBackend)
	if err != nil {
		logger.Log.Fatal("build backend registry", zap.Error(err))
	}
	for _, b := range reg.All() {
		logger.Infof("backend available: %s:%s=%s", b.ID, b.Transport, b.Addr())
	}

	opts := security.Options{
		Secret:   []byte(cfg.JWTSecret),
		Alg:      "HS256",
		TTL:      cfg.TokenTTL(),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	}
	validator := auth.NewValidator(opts, revoked)

	r := gin.Default()
	auth.NewHandler(store, validator, revoked, opts, reg).Register(r)
	r.GET("/ws", chat.NewServer(reg, validator, store).HandleWS)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Infof("gateway listening on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Log.Fatal("http server", zap.Error(err))
	}
}
