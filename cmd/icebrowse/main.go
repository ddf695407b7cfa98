// icebrowse is an interactive console for dialing Ice object proxies
// and exercising ice_ping/ice_ids against them.
package main

import (
	"flag"
	"fmt"
	"os"

	"icelink/admin"
	"icelink/logging"
)

var (
	logDebug = flag.String("log-debug", "", "comma-separated debug subsystems to log (codec,transport,proxy,locator,slice,dispatch,all)")
	logFile  = flag.String("log", "", "path to debug log file (default icebrowse-debug.log when -log-debug is set)")
)

func main() {
	flag.Parse()

	if *logDebug != "" {
		path := *logFile
		if path == "" {
			path = "icebrowse-debug.log"
		}
		dl, err := logging.NewDebugLogger(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "icebrowse: %v\n", err)
			os.Exit(1)
		}
		dl.SetFilter(*logDebug)
		logging.SetGlobalDebugLogger(dl)
		defer dl.Close()
	}

	reg := admin.NewRegistry()
	b := newBrowser(reg)
	if err := b.run(); err != nil {
		fmt.Fprintf(os.Stderr, "icebrowse: %v\n", err)
		os.Exit(1)
	}
}
