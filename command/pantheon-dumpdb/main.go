// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// pantheon-dumpdb - inspect the segments of a node's database
//
// prints key/value pages from one segment, optionally deleting the
// printed keys; the database is opened read-only unless --delete is
// given
package main

import (
	"fmt"
	"strconv"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/arnaudgouriou/pantheon/configuration"
	"github.com/arnaudgouriou/pantheon/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'f'},
		{Long: "list", HasArg: getoptions.NO_ARGUMENT, Short: 'l'},
		{Long: "delete", HasArg: getoptions.NO_ARGUMENT, Short: 'd'},
		{Long: "count", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if err != nil {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		exitwithstatus.Message("%s: version: %s", program, version)
	}

	list := len(options["list"]) > 0

	if len(options["help"]) > 0 || 1 != len(options["file"]) || (!list && 0 == len(arguments)) {
		exitwithstatus.Message("usage: %s [--help] [--version] [--count=N] [--delete] --file=FILE (--list | segment [key-prefix])", program)
	}

	deleteKeys := len(options["delete"]) > 0

	count := 10
	if len(options["count"]) > 0 {
		count, err = strconv.Atoi(options["count"][0])
		if err != nil {
			exitwithstatus.Message("%s: convert count error: %s", program, err)
		}
		if count < 1 {
			exitwithstatus.Message("%s: invalid count: %d", program, count)
		}
	}

	cfg, err := configuration.GetConfiguration(options["file"][0])
	if err != nil {
		exitwithstatus.Message("%s: configuration error: %s", program, err)
	}

	if err := logger.Initialise(cfg.Logging); err != nil {
		exitwithstatus.Message("%s: logger setup error: %s", program, err)
	}
	defer logger.Finalise()

	store, err := storage.Open(cfg.StoreOptions(!deleteKeys), cfg.StoreSegments(), nil)
	if err != nil {
		exitwithstatus.Message("%s: storage open error: %s", program, err)
	}
	defer store.Close()

	if list {
		fmt.Printf("segments:\n")
		for _, name := range store.Segments() {
			fmt.Printf("  %s\n", name)
		}
		return
	}

	handle, err := store.Handle(arguments[0])
	if err != nil {
		exitwithstatus.Message("%s: segment %q error: %s", program, arguments[0], err)
	}

	cursor := handle.NewFetchCursor()
	if len(arguments) > 1 {
		cursor.Seek([]byte(arguments[1]))
	}

	elements, err := cursor.Fetch(count)
	if err != nil {
		exitwithstatus.Message("%s: fetch error: %s", program, err)
	}

	for i, element := range elements {
		fmt.Printf("%d: key: %x\n", i, element.Key)
		fmt.Printf("%d: val: %x\n", i, element.Value)
	}

	if deleteKeys && len(elements) > 0 {
		trx, err := store.Begin()
		if err != nil {
			exitwithstatus.Message("%s: transaction error: %s", program, err)
		}
		for _, element := range elements {
			if err := trx.Remove(handle, element.Key); err != nil {
				_ = trx.Rollback()
				exitwithstatus.Message("%s: remove error: %s", program, err)
			}
		}
		if err := trx.Commit(); err != nil {
			exitwithstatus.Message("%s: commit error: %s", program, err)
		}
		fmt.Printf("deleted: %d keys\n", len(elements))
	}
}
