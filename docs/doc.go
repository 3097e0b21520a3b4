// Package docs provides generated OpenAPI documentation.
//
// pagesmith API
//
//	@title			pagesmith API
//	@version		1.0
//	@description	Visual PDF page editor: load, merge, reorder, select, delete and extract pages.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/pagesmith
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http
package docs

//go:generate swag init -g ../cmd/pagesmith/serve.go -o ./swagger --parseDependency --parseInternal
