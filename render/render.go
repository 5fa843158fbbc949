package main

/*
This application renders flux tables written by psd2xsp as log-log plots.

Rows are read either from a <stem>.txt table or from a run archived into
sqlite.
*/

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"

	"github.com/hb9tf/xtiming/plot"
	"github.com/hb9tf/xtiming/xspec"

	// Blind import support for sqlite3 used by sqlite.go.
	_ "github.com/mattn/go-sqlite3"
)

// Flags
var (
	table      = flag.String("table", "", "Flux table (<stem>.txt) to render.")
	sqliteFile = flag.String("sqliteFile", "", "File path of the sqlite DB file to read an archived run from instead of -table.")
	identifier = flag.String("id", "", "Identifier (SQL LIKE pattern) of the archived run to render.")
	lowFreq    = flag.Float64("lowFreq", 0, "Select bins starting with this frequency in Hz.")
	highFreq   = flag.Float64("highFreq", math.Inf(1), "Select bins up to this frequency in Hz.")
	imgPath    = flag.String("imgPath", "/tmp/out.png", "Path where the rendered image should be written to.")
	imgWidth   = flag.Int("imgWidth", 640, "Width of output image in pixels.")
	imgHeight  = flag.Int("imgHeight", 480, "Height of output image in pixels.")
	addGrid    = flag.Bool("grid", false, "Add frequency and flux labels to the image.")
)

func encode(w io.Writer, path string, img image.Image) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpeg.DefaultQuality})
	}
	return fmt.Errorf("unsupported image format %q, use .png or .jpg", filepath.Ext(path))
}

func loadRows(ctx context.Context) ([]xspec.Row, error) {
	if *sqliteFile == "" {
		return xspec.ReadTableFile(*table)
	}
	db, err := sql.Open("sqlite3", *sqliteFile)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite DB %q: %s", *sqliteFile, err)
	}
	defer db.Close()
	return plot.LoadRows(ctx, db, *identifier, *lowFreq, *highFreq)
}

func main() {
	ctx := context.Background()
	// Set defaults for glog flags. Can be overridden via cmdline.
	flag.Set("logtostderr", "false")
	flag.Set("stderrthreshold", "WARNING")
	flag.Set("v", "1")
	// Parse flags globally.
	flag.Parse()
	defer glog.Flush()

	if (*table == "") == (*sqliteFile == "") {
		glog.Exit("exactly one of -table or -sqliteFile needs to be set")
	}
	if *sqliteFile != "" && *identifier == "" {
		glog.Exit("-id needs to be set when reading from sqlite")
	}

	rows, err := loadRows(ctx)
	if err != nil {
		glog.Exitf("unable to load flux table: %s", err)
	}
	fmt.Printf("Rendering %d bins (%d x %d)\n", len(rows), *imgWidth, *imgHeight)
	img, err := plot.Render(rows, &plot.Options{
		Width:   *imgWidth,
		Height:  *imgHeight,
		AddGrid: *addGrid,
	})
	if err != nil {
		glog.Exit(err)
	}

	fmt.Printf("Writing image to %q\n", *imgPath)
	f, err := os.Create(*imgPath)
	if err != nil {
		glog.Fatal(err)
	}
	if err := encode(f, *imgPath, img); err != nil {
		f.Close()
		glog.Fatal(err)
	}
	if err := f.Close(); err != nil {
		glog.Fatal(err)
	}
}
