package cli

import "github.com/aretw0/arbor/pkg/layout"

func layoutProps(tmpl string, regions map[string]string) layout.Props {
	return layout.Props{Template: tmpl, Regions: regions}
}
