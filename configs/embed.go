// Package configs provides embedded configuration templates for searchproxy.
//
// Templates are embedded at build time via //go:embed so they ship with
// every distribution of the binary. They back `searchproxy config init`
// (project template) and `searchproxy config init --user` (user template).
package configs

import _ "embed"

// UserConfigTemplate is the template for user/machine-level configuration,
// written to ~/.config/searchproxy/config.yaml.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the template for project-level configuration,
// written to .searchproxy.yaml in the project root.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
