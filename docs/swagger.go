// Package docs EduAdmin organization directory API documentation
package docs

// Swagger documentation info
// @title EduAdmin Organization Directory API
// @version 1.0
// @description Organization hierarchy of the education admin backend: tree listing, guarded moves and deletes, change stream

// @contact.name API Support
// @contact.email support@eduadmin.local

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8003
// @BasePath /api
// @schemes http https

// Organization Service Endpoints
// @tag.name organizations
// @tag.description Organization hierarchy management
// @tag.name websocket
// @tag.description Directory change stream
