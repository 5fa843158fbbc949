package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/hb9tf/xtiming/config"
	"github.com/hb9tf/xtiming/export"
	"github.com/hb9tf/xtiming/filter"
	"github.com/hb9tf/xtiming/psd"
	"github.com/hb9tf/xtiming/xspec"

	// Blind import support for sqlite3 used by sqlite.go.
	_ "github.com/mattn/go-sqlite3"
)

// Flags
var (
	psdFile    = flag.String("psd", "", "averaged power spectrum to convert (FITS, JSON or text)")
	outname    = flag.String("out", "", "output file name without extension, e.g. maxij1535")
	configFile = flag.String("config", "", "optional YAML configuration file")
	freq       = flag.Float64("freq", 0, "frequency above which the spectrum is considered pure white noise")
	noise      = flag.Float64("noise", 0, "white noise level, ignored when -freq is set")
	direct     = flag.Bool("direct", false, "run flx2xsp to produce the .pha and .rsp files")
	converter  = flag.String("converter", xspec.ConverterAlias, "name or path of the flx2xsp binary")
	timeout    = flag.Duration("timeout", xspec.DefaultTimeout, "maximum run time of flx2xsp (negative disables)")

	// Archive
	identifier = flag.String("id", "", "unique identifier of this run in the archive (defaults to a random UUID)")
	archive    = flag.String("archive", "", "Archive mechanism to use (one of: csv, sqlite, mysql, server)")
	lowFreq    = flag.Float64("lowFreq", 0, "lower frequency boundary of archived bins")
	highFreq   = flag.Float64("highFreq", math.Inf(1), "upper frequency boundary of archived bins")

	// SQLite
	sqliteFile = flag.String("sqliteFile", "/tmp/xtiming", "File path of the sqlite DB file to use.")

	// MySQL
	mysqlServer       = flag.String("mysqlServer", "127.0.0.1:3306", "MySQL TCP server endpoint to connect to (IP/DNS and port).")
	mysqlUser         = flag.String("mysqlUser", "", "MySQL DB user.")
	mysqlPasswordFile = flag.String("mysqlPasswordFile", "", "Path to the file containing the password for the MySQL user.")
	mysqlDBName       = flag.String("mysqlDBName", "xtiming", "Name of the DB to use.")

	// xtiming server
	xtimingServer        = flag.String("server", "https://localhost:8443", "URL scheme, address and port of the xtiming server.")
	xtimingServerSamples = flag.Int("serverSamples", 0, "Defines how many records should be sent to the server at once.")
)

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cfg *config.Config, set map[string]bool) {
	if set["freq"] {
		cfg.Noise.Freq = freq
	}
	if set["noise"] {
		cfg.Noise.Level = noise
	}
	if set["converter"] {
		cfg.Converter.Binary = *converter
	}
	if set["timeout"] {
		cfg.Converter.Timeout = *timeout
	}
	if set["id"] {
		cfg.Archive.Identifier = *identifier
	}
	if set["archive"] {
		cfg.Archive.Output = *archive
	}
	if set["sqliteFile"] {
		cfg.Archive.SQLiteFile = *sqliteFile
	}
	if set["mysqlServer"] {
		cfg.Archive.MySQLServer = *mysqlServer
	}
	if set["mysqlUser"] {
		cfg.Archive.MySQLUser = *mysqlUser
	}
	if set["mysqlPasswordFile"] {
		cfg.Archive.MySQLPasswordFile = *mysqlPasswordFile
	}
	if set["mysqlDBName"] {
		cfg.Archive.MySQLDBName = *mysqlDBName
	}
	if set["server"] {
		cfg.Archive.Server = *xtimingServer
	}
	if set["serverSamples"] {
		cfg.Archive.ServerSamples = *xtimingServerSamples
	}
}

func newExporter(cfg *config.ArchiveConfig) (export.Exporter, error) {
	switch strings.ToLower(cfg.Output) {
	case "csv":
		return &export.CSV{}, nil
	case "sqlite":
		db, err := sql.Open("sqlite3", cfg.SQLiteFile)
		if err != nil {
			return nil, fmt.Errorf("unable to open sqlite DB %q: %s", cfg.SQLiteFile, err)
		}
		return &export.SQLite{DB: db}, nil
	case "mysql":
		mcfg, err := export.MySQLConfig(cfg.MySQLServer, cfg.MySQLUser, cfg.MySQLPasswordFile, cfg.MySQLDBName)
		if err != nil {
			return nil, err
		}
		db, err := export.OpenMySQL(mcfg)
		if err != nil {
			return nil, err
		}
		return &export.MySQL{DB: db}, nil
	case "server":
		return &export.Server{
			Server:            cfg.Server,
			SendRecordsAmount: cfg.ServerSamples,
		}, nil
	}
	return nil, fmt.Errorf("%q is not a supported archive method, pick one of: csv, sqlite, mysql, server", cfg.Output)
}

func main() {
	// Set defaults for glog flags. Can be overridden via cmdline.
	flag.Set("logtostderr", "false")
	flag.Set("stderrthreshold", "WARNING")
	flag.Set("v", "1")
	// Parse flags globally.
	flag.Parse()
	defer glog.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *psdFile == "" || *outname == "" {
		glog.Exit("-psd and -out need to be set")
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			glog.Exit(err)
		}
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyFlags(cfg, set)
	if err := cfg.Validate(); err != nil {
		glog.Exit(err)
	}

	spec, err := psd.Load(*psdFile)
	if err != nil {
		glog.Exit(err)
	}

	res, err := xspec.Export(ctx, spec, *outname, &xspec.Options{
		Freq:      cfg.Noise.Freq,
		Noise:     cfg.Noise.Level,
		Convert:   *direct,
		Converter: cfg.NewConverter(),
	})
	if err != nil {
		glog.Fatal(err)
	}
	fmt.Printf("white noise: %v\n", res.WhiteNoise)
	for _, f := range []string{res.TextFile, res.PHAFile, res.RSPFile} {
		if f != "" {
			fmt.Printf("wrote %s\n", f)
		}
	}

	if cfg.Archive.Output == "" {
		return
	}

	// Archive setup
	if cfg.Archive.Identifier == "" {
		cfg.Archive.Identifier = uuid.NewString()
	}
	exporter, err := newExporter(&cfg.Archive)
	if err != nil {
		glog.Exit(err)
	}

	// Run
	records := make(chan export.Record)
	go filter.Filter(export.Stream(export.Records(cfg.Archive.Identifier, *outname, res, time.Now())), records, []filter.Filterer{
		&filter.FilterFreq{FreqLow: *lowFreq, FreqHigh: *highFreq},
	})
	if err := exporter.Write(ctx, records); err != nil {
		glog.Fatal(err)
	}
	glog.Infof("archived run %s via %s", cfg.Archive.Identifier, cfg.Archive.Output)
}
