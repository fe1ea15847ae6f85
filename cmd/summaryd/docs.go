package main

// General API documentation for swaggo. Regenerate with `swag init -g cmd/summaryd/docs.go -o docs`.
//
// @title           summaryd API
// @version         1.0
// @description     HTTP API for abstractive document summarization.
//
// @contact.name   summaryd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
