/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package breakdown

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteText renders the table as an aligned terminal listing. Summary
// rows span the line; scene rows show the full column set.
func (t Table) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCENE\tPAGES\tSETUPS\tSCREEN\tSHOOT\tSTART\tEND")
	for _, r := range t.Rows {
		if r.Kind == RowSummary {
			fmt.Fprintf(tw, "\t%s\t\t\t\t\t\t\n", r.Label)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			r.SceneNumber, r.Slugline, r.Pages, r.Setups, r.ScreenTime, r.ShootTime, r.Start, r.End)
	}
	return tw.Flush()
}
