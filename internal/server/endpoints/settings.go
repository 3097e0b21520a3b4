package endpoints

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagesmith/internal/api"
	"github.com/jackzampolin/pagesmith/internal/config"
	"github.com/jackzampolin/pagesmith/internal/svcctx"
)

// SettingsResponse lists every configuration key with its effective value.
type SettingsResponse struct {
	Settings   []config.Entry `json:"settings"`
	ConfigFile string         `json:"config_file,omitempty"`
}

// ListSettingsEndpoint handles GET /api/settings.
type ListSettingsEndpoint struct{}

var _ api.Endpoint = (*ListSettingsEndpoint)(nil)

func (e *ListSettingsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/settings", e.handler
}

func (e *ListSettingsEndpoint) RequiresInit() bool { return false }

func (e *ListSettingsEndpoint) Group() string { return "settings" }

// handler godoc
//
//	@Summary		List settings
//	@Description	Effective configuration, after the config file and PAGESMITH_ environment overrides
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	SettingsResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/settings [get]
func (e *ListSettingsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	cfg := svcctx.ConfigFrom(r.Context())
	if cfg == nil {
		writeError(w, http.StatusServiceUnavailable, "config manager not available")
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse{
		Settings:   cfg.Effective(),
		ConfigFile: cfg.ConfigFile(),
	})
}

func (e *ListSettingsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the server's effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp SettingsResponse
			if err := client.Get(ctx, "/api/settings", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetSettingEndpoint handles GET /api/settings/{key}.
type GetSettingEndpoint struct{}

var _ api.Endpoint = (*GetSettingEndpoint)(nil)

func (e *GetSettingEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/settings/{key}", e.handler
}

func (e *GetSettingEndpoint) RequiresInit() bool { return false }

func (e *GetSettingEndpoint) Group() string { return "settings" }

// handler godoc
//
//	@Summary		Get a setting
//	@Description	Effective value of one dotted key, e.g. thumbnails.scale
//	@Tags			settings
//	@Produce		json
//	@Param			key	path		string	true	"Setting key"
//	@Success		200	{object}	config.Entry
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/settings/{key} [get]
func (e *GetSettingEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	cfg := svcctx.ConfigFrom(r.Context())
	if cfg == nil {
		writeError(w, http.StatusServiceUnavailable, "config manager not available")
		return
	}

	key := r.PathValue("key")
	value, err := cfg.Lookup(key)
	switch {
	case errors.Is(err, config.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	entry := config.Entry{Key: key, Value: value}
	if def, err := config.GetDefault(key); err == nil {
		entry.Description = def.Description
	}
	writeJSON(w, http.StatusOK, entry)
}

func (e *GetSettingEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get one of the server's settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var entry config.Entry
			if err := client.Get(ctx, "/api/settings/"+args[0], &entry); err != nil {
				return err
			}
			return api.Output(entry)
		},
	}
}
