package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/biey-root/serverless-rest-api/internal/auth"
	"github.com/biey-root/serverless-rest-api/internal/cache"
	"github.com/biey-root/serverless-rest-api/internal/config"
	"github.com/biey-root/serverless-rest-api/internal/store"
)

type App struct {
	cfg    config.Config
	redis  *redis.Client
	router *gin.Engine
}

func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg}

	client, err := newDynamoClient(cfg.DDB)
	if err != nil {
		return nil, err
	}
	todoStore := store.NewDynamoStore(client, cfg.DDB.TableName)

	var listCache *cache.ListCache
	if cfg.Redis.Addr != "" {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.redis = rdb
		listCache = cache.NewListCache(rdb, cfg.Redis.DefaultTTL.Duration())
	}

	verifier := auth.NewVerifier(auth.VerifierConfig{
		Issuer:        cfg.Cognito.Issuer(cfg.DDB.Region),
		Audience:      cfg.Cognito.Audience,
		TokenUse:      cfg.Cognito.TokenUse,
		RequiredGroup: cfg.Cognito.RequiredGroup,
		KeyTTL:        cfg.Cognito.JWKSTTL.Duration(),
	}, auth.NewHTTPKeySource(cfg.Cognito.JWKSURL(cfg.DDB.Region)))

	a.router = newRouter(cfg, todoStore, listCache, verifier)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.redis != nil {
		_ = a.redis.Close()
	}
	return nil
}

func newDynamoClient(cfg config.DDBConfig) (*dynamodb.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}
