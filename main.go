// Package main provides the entry point for fspdf, a tool to fill and sign
// PDF documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"fspdf/internal/app"
	"fspdf/internal/config"
	"fspdf/internal/log"
	"fspdf/internal/rasterize"
	"fspdf/internal/stamp"
	"fspdf/internal/tool"
	"fspdf/internal/version"
	"fspdf/ui/mainwindow"
	"fspdf/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const appID = "org.fspdf.fspdf"

type options struct {
	signature   string
	configPath  string
	showVersion bool
	pdfPath     string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("fspdf", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: fspdf [-s SIGNATURE_FILE] [-c CONFIG_FILE] [-v] PDF_FILE\n")
		fs.PrintDefaults()
	}
	for _, name := range []string{"s", "signature"} {
		fs.StringVar(&opts.signature, name, "", "signature image (overrides the config file)")
	}
	for _, name := range []string{"c", "config"} {
		fs.StringVar(&opts.configPath, name, "", "configuration file (default: search fspdf.yaml)")
	}
	for _, name := range []string{"v", "version"} {
		fs.BoolVar(&opts.showVersion, name, false, "print the version and exit")
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.showVersion {
		return opts, nil
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, fmt.Errorf("expected exactly one PDF file, got %d arguments", fs.NArg())
	}
	opts.pdfPath = fs.Arg(0)
	return opts, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}

func run(args []string) int {
	opts, err := parseFlags(args)
	if err == flag.ErrHelp {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if opts.showVersion {
		fmt.Println(version.String())
		return 0
	}

	log.InitFromEnv()
	log.Info.Printf("starting %s", version.String())

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		log.Error.Printf("config: %v", err)
		return 1
	}

	signature := opts.signature
	if signature == "" {
		signature = cfg.Signature
	}
	if signature == "" {
		fmt.Fprintln(os.Stderr, "no signature image: pass -s or set \"signature\" in fspdf.yaml")
		return 1
	}

	api.DisableConfigDir()
	runner := tool.Exec{}
	rasterizer, err := rasterize.New(cfg.Rasterizer, runner)
	if err != nil {
		log.Error.Println(err)
		return 1
	}
	stamper, err := stamp.New(cfg.Stamper, runner)
	if err != nil {
		log.Error.Println(err)
		return 1
	}

	session, err := app.Open(context.Background(), app.Options{
		PDFPath:       opts.pdfPath,
		SignaturePath: signature,
		Config:        cfg,
		Rasterizer:    rasterizer,
		Stamper:       stamper,
	})
	if err != nil {
		log.Error.Printf("open %s: %v", opts.pdfPath, err)
		return 1
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warning.Printf("remove %s: %v", session.WorkDir(), err)
		}
	}()

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.Theme{})

	win := mainwindow.New(fyneApp, session, prefs.Load())
	win.ShowAndRun()
	return 0
}

func main() {
	os.Exit(run(os.Args[1:]))
}
