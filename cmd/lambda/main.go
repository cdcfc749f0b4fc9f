// Lambda entrypoint: runs the same engine as cmd/api behind API Gateway
// HTTP API v2 payloads. The engine is built once per execution environment
// and reused across invocations.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"github.com/biey-root/serverless-rest-api/internal/app"
	"github.com/biey-root/serverless-rest-api/internal/config"

	_ "github.com/biey-root/serverless-rest-api/docs"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("app init: %v", err)
	}

	adapter := ginadapter.NewV2(application.Router())
	lambda.Start(func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
