package endpoints

import (
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagesmith/internal/api"
	"github.com/jackzampolin/pagesmith/version"
)

// SwaggerEndpoint handles GET /swagger.json.
//
// It serves the swag output from docs/swagger when that has been generated
// (go generate ./docs). Otherwise it serves a route listing built from the
// registered endpoints, so clients always get a usable document.
type SwaggerEndpoint struct {
	// SpecPath overrides the generated spec location (default: GetSwaggerSpecPath).
	SpecPath string
	// Endpoints are listed when no generated spec exists.
	Endpoints []api.Endpoint
}

func (e *SwaggerEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/swagger.json", e.handler
}

func (e *SwaggerEndpoint) RequiresInit() bool { return false }

func (e *SwaggerEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	specPath := e.SpecPath
	if specPath == "" {
		specPath = GetSwaggerSpecPath()
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	if data, err := os.ReadFile(specPath); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, routeSpec(e.Endpoints))
}

var pathParam = regexp.MustCompile(`\{([a-z_]+)\}`)

// routeSpec describes endpoints as a Swagger 2.0 document with one
// operation per route. Summaries come from the CLI help text.
func routeSpec(eps []api.Endpoint) map[string]any {
	paths := map[string]map[string]any{}
	for _, ep := range eps {
		method, path, _ := ep.Route()
		if strings.Contains(path, "...") {
			continue
		}

		op := map[string]any{
			"responses": map[string]any{
				"default": map[string]any{"description": "JSON body, or {\"error\": \"...\"} on failure"},
			},
		}
		if g, ok := ep.(api.Grouped); ok && g.Group() != "" {
			op["tags"] = []string{g.Group()}
		}
		if cmd := ep.Command(func() string { return "" }); cmd != nil {
			op["summary"] = cmd.Short
		}
		var params []map[string]any
		for _, m := range pathParam.FindAllStringSubmatch(path, -1) {
			params = append(params, map[string]any{
				"name": m[1], "in": "path", "required": true, "type": "string",
			})
		}
		if params != nil {
			op["parameters"] = params
		}

		if paths[path] == nil {
			paths[path] = map[string]any{}
		}
		paths[path][strings.ToLower(method)] = op
	}

	return map[string]any{
		"swagger":  "2.0",
		"basePath": "/",
		"info": map[string]any{
			"title":   "pagesmith API",
			"version": version.GitRelease,
		},
		"paths": paths,
	}
}

func (e *SwaggerEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outputFile string
	cmd := &cobra.Command{
		Use:   "swagger",
		Short: "Fetch the OpenAPI spec from the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var spec map[string]any
			if err := client.Get(cmd.Context(), "/swagger.json", &spec); err != nil {
				return err
			}
			if outputFile != "" {
				return api.OutputToFile(spec, outputFile)
			}
			return api.Output(spec)
		},
	}
	cmd.Flags().StringVarP(&outputFile, "file", "f", "", "Write the spec to this file")
	return cmd
}

// SwaggerUIEndpoint serves Swagger UI pointed at /swagger.json.
type SwaggerUIEndpoint struct{}

func (e *SwaggerUIEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/swagger", e.handler
}

func (e *SwaggerUIEndpoint) RequiresInit() bool { return false }

const swaggerUI = `<!DOCTYPE html>
<html>
<head>
  <title>pagesmith API</title>
  <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/swagger.json',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`

func (e *SwaggerUIEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(swaggerUI))
}

func (e *SwaggerUIEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:    "swagger-ui",
		Hidden: true,
		Short:  "Print the Swagger UI address",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println("Open in browser:", getServerURL()+"/swagger")
			return nil
		},
	}
}

// GetSwaggerSpecPath returns the path to swagger.json, preferring the copy
// next to the executable over the working directory.
func GetSwaggerSpecPath() string {
	if exe, err := os.Executable(); err == nil {
		specPath := filepath.Join(filepath.Dir(exe), "docs", "swagger", "swagger.json")
		if _, err := os.Stat(specPath); err == nil {
			return specPath
		}
	}
	return filepath.Join("docs", "swagger", "swagger.json")
}
