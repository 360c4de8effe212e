package main

// General API documentation for swaggo. Run `swag init -g cmd/hubd/docs.go -o docs` to regenerate.
//
// @title           hubd API
// @version         1.0
// @description     HTTP API for runtime service and platform discovery in a component host.
//
// @contact.name   hubd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
