/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package preview serves a computed breakdown over HTTP: an HTML table
// for a quick look in the browser and a JSON API for anything else.
// The server holds a finished table; it never parses or recomputes.
package preview

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MylesManT/Producer-s-toolkit/internal/breakdown"
	applog "github.com/MylesManT/Producer-s-toolkit/internal/log"
)

// Server wraps a gin engine around one production's breakdown table.
type Server struct {
	name   string
	table  breakdown.Table
	engine *gin.Engine
}

// New builds the preview server for a production name and its table.
func New(name string, table breakdown.Table) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{name: name, table: table}
	e := gin.New()
	e.Use(gin.Recovery())
	e.SetHTMLTemplate(pageTemplate)

	e.GET("/", s.handleIndex)
	e.GET("/api/schedule", s.handleSchedule)
	e.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine = e
	return s
}

// Handler exposes the routes for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails or the process exits.
func (s *Server) Run(addr string) error {
	applog.WithComponent("preview").Info("preview listening", "addr", addr, "production", s.name)
	return s.engine.Run(addr)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "page", gin.H{
		"Name":  s.name,
		"Rows":  s.table.Rows,
		"Total": s.table.Result.TotalSceneSeconds,
	})
}

func (s *Server) handleSchedule(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"production":          s.name,
		"rows":                s.table.Rows,
		"total_scene_seconds": s.table.Result.TotalSceneSeconds,
		"total_day_seconds":   s.table.Result.TotalDaySeconds,
		"wrap":                s.table.Result.Wrap.String(),
	})
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}} — shoot day</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
tr.summary td { font-weight: bold; background: #f5f5f5; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
<table>
<tr><th>#</th><th>Scene</th><th>Pages</th><th>Setups</th><th>Screen</th><th>Shoot</th><th>Start</th><th>End</th></tr>
{{range .Rows}}{{if eq .Kind 0}}<tr><td>{{.SceneNumber}}</td><td>{{.Slugline}}</td><td>{{.Pages}}</td><td>{{.Setups}}</td><td>{{.ScreenTime}}</td><td>{{.ShootTime}}</td><td>{{.Start}}</td><td>{{.End}}</td></tr>
{{else}}<tr class="summary"><td></td><td colspan="7">{{.Label}}</td></tr>
{{end}}{{end}}</table>
</body>
</html>
`))
