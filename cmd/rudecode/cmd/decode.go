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

package cmd

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Lawliet0813/ATP-Re/ru/format"
	"github.com/Lawliet0813/ATP-Re/ru/protocol"
)

// flags
var (
	decodeCountFlag  int
	decodeFormatFlag string
	decodeOutputFlag string
	decodeResyncFlag int
)

var gzipMagic = []byte{0x1f, 0x8b}

func init() {
	RootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().IntVarP(&decodeCountFlag, "count", "n", 0, "stop after this many records, 0 means all")
	decodeCmd.Flags().StringVarP(&decodeFormatFlag, "format", "f", "text", "output format, 'text' or 'json'")
	decodeCmd.Flags().StringVarP(&decodeOutputFlag, "output", "o", "", "write records to this file instead of stdout")
	decodeCmd.Flags().IntVar(&decodeResyncFlag, "resync-budget", protocol.DefaultResyncBudget, "abort after this many resync events")
}

var decodeCmd = &cobra.Command{
	Use:   "decode <input-file>",
	Short: "Decode an RU or MMI recording into structured records",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		ConfigureVerbosity()
		if decodeFormatFlag != "text" && decodeFormatFlag != "json" {
			return exitErrorf(ExitUsage, "unsupported output format %q", decodeFormatFlag)
		}
		return runDecode(args[0])
	},
}

// readInput loads a recording, transparently decompressing gzip archives.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}
	log.Debugf("%s is gzip compressed, decompressing", path)
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}

func runDecode(path string) error {
	data, err := readInput(path)
	if err != nil {
		return exitErrorf(ExitInput, "reading %s: %v", path, err)
	}
	log.Debugf("decoding %d bytes from %s", len(data), path)

	out := os.Stdout
	if decodeOutputFlag != "" {
		f, err := os.Create(decodeOutputFlag)
		if err != nil {
			return exitErrorf(ExitInternal, "creating %s: %v", decodeOutputFlag, err)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)

	d := protocol.NewDecoder(data, protocol.WithResyncBudget(decodeResyncFlag))
	var streamErr error
	written := 0
	for res := d.Next(); res != nil; res = d.Next() {
		if res.Err != nil {
			log.Debugf("offset %d: %v", res.Offset, res.Err)
			var rbe *protocol.ResyncBudgetExceededError
			if errors.As(res.Err, &rbe) {
				streamErr = res.Err
			}
		}
		if res.Record == nil {
			continue
		}
		if rootVerboseFlag {
			log.Debug(spew.Sdump(res.Record))
		}
		if err := writeRecord(w, res.Record); err != nil {
			return exitErrorf(ExitInternal, "writing output: %v", err)
		}
		written++
		if decodeCountFlag > 0 && written >= decodeCountFlag {
			break
		}
	}
	if err := w.Flush(); err != nil {
		return exitErrorf(ExitInternal, "writing output: %v", err)
	}

	format.Summary(os.Stderr, d.Stats())
	if streamErr != nil {
		return exitErrorf(ExitResync, "decoding aborted: %v", streamErr)
	}
	return nil
}

func writeRecord(w io.Writer, rec protocol.Record) error {
	if decodeFormatFlag == "json" {
		b, err := format.JSON(rec)
		if err != nil {
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
		_, err = fmt.Fprintln(w)
		return err
	}
	_, err := io.WriteString(w, format.Text(rec))
	return err
}
