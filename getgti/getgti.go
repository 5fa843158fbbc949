package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"

	"github.com/hb9tf/xtiming/gti"
	"github.com/hb9tf/xtiming/lightcurve"
)

// Flags
var (
	lcFile = flag.String("lc", "", "light curve FITS file to extract the good time intervals from")
	gap    = flag.Float64("gap", gti.GapThreshold, "largest step between two timestamps within one interval")
	format = flag.String("format", "text", "output format (one of: text, csv, json)")
)

func writeIntervals(w io.Writer, format string, intervals gti.List) error {
	switch strings.ToLower(format) {
	case "text":
		for _, i := range intervals {
			if _, err := fmt.Fprintf(w, "%.18e %.18e\n", i.Start, i.Stop); err != nil {
				return err
			}
		}
		return nil
	case "csv":
		cw := csv.NewWriter(w)
		cw.Write([]string{"Start", "Stop"})
		for _, i := range intervals {
			cw.Write([]string{fmt.Sprintf("%f", i.Start), fmt.Sprintf("%f", i.Stop)})
		}
		cw.Flush()
		return cw.Error()
	case "json":
		return json.NewEncoder(w).Encode(intervals.Pairs())
	}
	return fmt.Errorf("%q is not a supported output format, pick one of: text, csv, json", format)
}

func main() {
	// Set defaults for glog flags. Can be overridden via cmdline.
	flag.Set("logtostderr", "false")
	flag.Set("stderrthreshold", "WARNING")
	flag.Set("v", "1")
	// Parse flags globally.
	flag.Parse()
	defer glog.Flush()

	if *lcFile == "" {
		glog.Exit("-lc needs to be set to a light curve file")
	}

	lc, err := lightcurve.Read(*lcFile)
	if err != nil {
		glog.Exitf("unable to read light curve: %s", err)
	}
	intervals := lc.BestGTI(*gap)
	glog.Infof("%d good time intervals, %.1f exposure", len(intervals), intervals.Exposure())

	if err := writeIntervals(os.Stdout, *format, intervals); err != nil {
		glog.Exit(err)
	}
}
