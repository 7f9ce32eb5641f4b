/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package fountain extracts scenes from screenplay text.
//
// The parser understands the single convention that matters for a
// schedule breakdown: a scene begins at a slugline starting with "INT."
// or "EXT." (case-insensitive), and runs until the next slugline. It is
// deliberately not a full Fountain implementation; transitions, dialogue
// markup and title pages are carried along as plain body lines.
package fountain

import (
	"bufio"
	"regexp"
	"strings"
)

// Scene is one screenplay scene: its slugline and the body lines between
// this slugline and the next. Body lines are trimmed; blank lines are
// retained as empty strings. Scenes are immutable after parsing.
type Scene struct {
	Heading   string
	BodyLines []string
	LineNo    int // 1-based line of the slugline in the source
}

var reHeading = regexp.MustCompile(`(?i)^(INT\.|EXT\.)`)

// IsHeading reports whether the trimmed line is a scene slugline.
func IsHeading(line string) bool {
	return reHeading.MatchString(strings.TrimSpace(line))
}

// Interior reports whether the scene plays interior, i.e. the slugline
// starts with "INT." (case-insensitive). Everything else counts as
// exterior for setup-count defaults.
func (s Scene) Interior() bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(s.Heading)), "INT.")
}

// Parse splits screenplay text into an ordered list of scenes.
// Lines before the first slugline are discarded; text without any
// slugline yields an empty result. Parse is a pure function of its
// input and never fails.
func Parse(input string) []Scene {
	var scenes []Scene
	var current *Scene

	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		trimmed := strings.TrimSpace(scanner.Text())
		if reHeading.MatchString(trimmed) {
			if current != nil {
				scenes = append(scenes, *current)
			}
			current = &Scene{Heading: trimmed, LineNo: lineNo}
			continue
		}
		if current != nil {
			current.BodyLines = append(current.BodyLines, trimmed)
		}
	}
	if current != nil {
		scenes = append(scenes, *current)
	}
	return scenes
}
