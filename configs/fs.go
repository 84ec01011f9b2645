// Package configs holds files shipped inside the binary and copied into the runtime directory on init.
package configs

import "embed"

//go:embed prompts/*.yaml
var FS embed.FS
