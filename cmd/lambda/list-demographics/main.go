package main

import (
	"context"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"demographics-api/internal/config"
	"demographics-api/internal/handlers"
	"demographics-api/pkg/lambda"
)

func init() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := lambda.GetConnectionManager().Initialize(context.Background(), cfg); err != nil {
		panic("Failed to initialize container: " + err.Error())
	}
}

func main() {
	awslambda.Start(handlers.NewLambdaHandler(lambda.GetConnectionManager(), handlers.ListRoutes()))
}
