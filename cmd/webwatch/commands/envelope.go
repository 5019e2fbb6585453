package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/webwatch/internal/command"
	"github.com/aleister1102/webwatch/internal/config"
	"github.com/aleister1102/webwatch/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// envelopeFlags are shared by sign and publish.
type envelopeFlags struct {
	commandType string
	id          string
	site        string
	siteFile    string
	ts          int64
}

func (f *envelopeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.commandType, "type", "t", "", "Command type: UPSERT_SITE, DELETE_SITE, PAUSE_SITE, RESUME_SITE or CHECK_NOW.")
	cmd.Flags().StringVar(&f.id, "id", "", "Site id for commands that address a single site.")
	cmd.Flags().StringVar(&f.site, "site", "", "Site JSON for UPSERT_SITE.")
	cmd.Flags().StringVar(&f.siteFile, "site-file", "", "File holding the site for UPSERT_SITE: JSON, or YAML when named .yaml/.yml.")
	cmd.Flags().Int64Var(&f.ts, "ts", 0, "Timestamp in milliseconds. Defaults to now.")
	_ = cmd.MarkFlagRequired("type")
	cmd.MarkFlagsMutuallyExclusive("site", "site-file")
}

func (f *envelopeFlags) payload(t command.CommandType) (any, error) {
	if t != command.TypeUpsertSite {
		return command.IDPayload{ID: f.id}, nil
	}

	raw := []byte(f.site)
	if f.siteFile != "" {
		data, err := os.ReadFile(f.siteFile)
		if err != nil {
			return nil, err
		}
		if isYAMLFile(f.siteFile) {
			return siteFromYAML(data)
		}
		raw = data
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("UPSERT_SITE needs --site or --site-file")
	}

	var site command.SitePayload
	if err := json.Unmarshal(raw, &site); err != nil {
		return nil, fmt.Errorf("invalid site JSON: %w", err)
	}
	return site, nil
}

func (f *envelopeFlags) build(cfg *config.GlobalConfig) (*command.Envelope, error) {
	t, ok := command.ParseCommandType(f.commandType)
	if !ok {
		return nil, fmt.Errorf("unknown command type %q", strings.TrimSpace(f.commandType))
	}
	payload, err := f.payload(t)
	if err != nil {
		return nil, err
	}
	signer, err := command.NewSigner(cfg.DeviceConfig.DeviceSecret)
	if err != nil {
		return nil, err
	}
	return signer.Sign(t, payload, f.ts)
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// siteFromYAML reads a site written the way initial_sites entries are.
func siteFromYAML(data []byte) (command.SitePayload, error) {
	var site models.SiteConfig
	if err := yaml.Unmarshal(data, &site); err != nil {
		return command.SitePayload{}, fmt.Errorf("invalid site YAML: %w", err)
	}
	return command.SitePayloadFromConfig(site), nil
}
