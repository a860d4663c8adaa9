// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0

package engine

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rivaas-dev/engine/router"
)

var (
	bannerCategoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	bannerLabelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(14)
	bannerDisabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	methodColors = map[string]string{
		"GET":    "10",
		"POST":   "12",
		"PUT":    "11",
		"PATCH":  "13",
		"DELETE": "9",
	}
)

// printBanner writes a styled service banner to stdout: service identity,
// listen address, environment, and, in development, the full route table.
// In production the Environment/Color profile strips ANSI rather than
// suppressing the banner entirely.
func (e *Engine) printBanner(addr, protocol string) {
	w := os.Stdout
	value := func(color, s string) string {
		if e.cfg.Environment == EnvironmentProduction {
			return s
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(s)
	}

	displayAddr := addr
	if strings.HasPrefix(addr, ":") {
		displayAddr = "0.0.0.0" + addr
	}
	scheme := "http://"
	if protocol == "https" {
		scheme = "https://"
	}
	displayAddr = scheme + displayAddr

	var out strings.Builder
	fmt.Fprintf(&out, "%s\n", bannerCategoryStyle.Render(e.cfg.ServiceName))
	fmt.Fprintf(&out, "%s  %s\n", bannerLabelStyle.Render("Version:"), value("14", e.cfg.ServiceVersion))
	fmt.Fprintf(&out, "%s  %s\n", bannerLabelStyle.Render("Environment:"), value("11", e.cfg.Environment))
	fmt.Fprintf(&out, "%s  %s\n", bannerLabelStyle.Render("Address:"), value("10", displayAddr))

	fmt.Fprintln(w)
	fmt.Fprint(w, out.String())

	if e.cfg.Environment == EnvironmentDevelopment && e.Built() {
		entries := e.router.BuildRouteManifest()
		if len(entries) > 0 {
			fmt.Fprintln(w)
			renderRoutesTable(w, entries)
		}
	}
	fmt.Fprintln(w)
}

// renderRoutesTable prints a route manifest as a colored, method-coded
// table, for the development-mode banner and any standalone "routes"
// debug endpoint that wants the same rendering.
func renderRoutesTable(w io.Writer, entries []router.RouteManifestEntry) {
	methodStyle := func(method string) lipgloss.Style {
		color, ok := methodColors[method]
		if !ok {
			color = "15"
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("METHOD", "PATTERN", "NAME")

	for _, entry := range entries {
		name := entry.Name
		if name == "" {
			name = bannerDisabledStyle.Render("-")
		}
		t.Row(methodStyle(entry.Method).Render(entry.Method), entry.Pattern, name)
	}

	fmt.Fprintln(w, t.Render())
}
