//go:generate swag init -g docs.go -o ../../docs --parseDependency --parseInternal --dir .,../../internal/adapter/http/handler

package main

// @title userapp API
// @version 1.0
// @description User management HTTP API.
// @BasePath /
