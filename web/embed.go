package web

import "embed"

// TemplatesFS embeds HTML templates for server-side rendering.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the front page and its css/js.
//
//go:embed static/*
var StaticFS embed.FS
