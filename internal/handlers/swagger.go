package handlers

// @title Demographics API
// @version 1.0
// @description Development gateway for the demographics Lambda handlers. Responses always carry the handler payload with status 200.

// @host localhost:8081
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Required only when JWT_SECRET is set.

// @tag.name demographics
// @tag.description Demographics records by zip code
