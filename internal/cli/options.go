package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/layout"
)

// Options contains the configuration shared by the render, watch and
// serve commands.
type Options struct {
	Dir            string
	Manifest       string
	Template       string
	Regions        []string // region=template pairs
	Data           string   // raw JSON
	Restore        string   // snapshot id to apply after rendering
	SnapshotDir    string
	RedisURL       string
	RedisTemplates string   // hash key holding template sources
	SnapshotKey    string   // base64 AES-256 key for snapshot encryption
	Redact         []string // data key patterns masked in snapshots
	Strict         bool
	Debug          bool
	LogFormat      string
	Markdown       bool
}

// props applies the flag overrides on top of base.
func (o Options) props(base layout.Props) (layout.Props, error) {
	override := layout.Props{Template: o.Template}
	if len(o.Regions) > 0 {
		override.Regions = make(map[string]string, len(o.Regions))
		for _, pair := range o.Regions {
			region, tmpl, ok := strings.Cut(pair, "=")
			if !ok || region == "" {
				return layout.Props{}, fmt.Errorf("invalid --region %q: expected region=template", pair)
			}
			override.Regions[region] = tmpl
		}
	}
	if o.Data != "" {
		if err := json.Unmarshal([]byte(o.Data), &override.Data); err != nil {
			return layout.Props{}, fmt.Errorf("error parsing --data JSON: %w", err)
		}
	}
	return base.Merge(override), nil
}
