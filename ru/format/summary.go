/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package format

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/Lawliet0813/ATP-Re/ru/protocol"
)

// Summary prints the compact post-decode session summary: frames decoded,
// records emitted, telegrams reassembled, resyncs, and errors by kind.
func Summary(w io.Writer, stats protocol.Stats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"counter", "value"})
	table.Append([]string{"frames decoded", fmt.Sprintf("%d", stats.Frames)})
	table.Append([]string{"records emitted", fmt.Sprintf("%d", stats.Records)})
	table.Append([]string{"telegrams reassembled", fmt.Sprintf("%d", stats.TelegramsReassembled)})
	table.Append([]string{"partial telegrams evicted", fmt.Sprintf("%d", stats.EvictedIncomplete)})
	table.Append([]string{"duplicate fragments", fmt.Sprintf("%d", stats.DuplicateFragments)})
	table.Append([]string{"resyncs", fmt.Sprintf("%d", stats.Resyncs)})
	table.Append([]string{"bytes skipped", fmt.Sprintf("%d", stats.BytesSkipped)})

	kinds := make([]string, 0, len(stats.Errors))
	for kind := range stats.Errors {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		table.Append([]string{"errors: " + kind, color.RedString("%d", stats.Errors[kind])})
	}
	table.Render()
}
