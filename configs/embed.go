// Package configs provides embedded configuration templates.
//
// Templates are embedded at build time so they ship with every
// distribution of the binary. `corpusgap init` writes them out for the
// user to edit.
package configs

import _ "embed"

// ProjectConfigTemplate is the template for the project-level
// .corpusgap.yaml, written by `corpusgap init`.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

// QuestionsTemplate is an example question set, written by
// `corpusgap init` as a starting point for evaluation.
//
//go:embed questions.example.yaml
var QuestionsTemplate string
