package folio

import "embed"

// EmbeddedAssets contains the static assets shipped with the site:
// site.css and live.js, served under /public/.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
