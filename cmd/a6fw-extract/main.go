// Command a6fw-extract runs the full SysEx-to-firmware-image pipeline
// against a capture file and writes the reassembled image to disk.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/a6tools/a6fw/capture"
	"github.com/a6tools/a6fw/checkpoint"
	"github.com/a6tools/a6fw/config"
	"github.com/a6tools/a6fw/report"
	"github.com/a6tools/a6fw/sysex"
)

func main() {
	var configFileName = pflag.StringP("config-file", "c", "", "Path to an a6fw YAML config file. Optional; spec defaults apply when omitted.")
	var outputFileName = pflag.StringP("output-file", "o", "", "Output file for the reassembled image. Defaults to <input>-<timestamp>.image.bin.")
	var checkpointPath = pflag.StringP("checkpoint", "k", "", "Path to a checkpoint database; overrides the config file's checkpoint_path.")
	var quiet = pflag.BoolP("quiet", "q", false, "Suppress progress output.")
	var verbose = pflag.BoolP("verbose", "v", false, "Log every detector/block event, not just anomalies.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: a6fw-extract [flags] <capture-file>")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	if len(pflag.Args()) != 1 {
		fmt.Fprintln(os.Stderr, "error: exactly one capture file is required")
		pflag.Usage()
		os.Exit(2)
	}

	var logger = log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	var inputPath = pflag.Arg(0)

	var cfg = config.Default()
	if *configFileName != "" {
		var loaded, err = config.Load(*configFileName)
		if err != nil {
			logger.Fatal("failed to load config", "path", *configFileName, "err", err)
		}
		cfg = loaded
	}
	if *checkpointPath != "" {
		cfg.CheckpointPath = *checkpointPath
	}

	var info, err = os.Stat(inputPath)
	if err != nil {
		logger.Fatal("failed to stat capture file", "path", inputPath, "err", err)
	}

	var f *os.File
	f, err = os.Open(inputPath)
	if err != nil {
		logger.Fatal("failed to open capture file", "path", inputPath, "err", err)
	}
	defer f.Close()

	var reader io.Reader = f

	var store *checkpoint.Store
	var identity string
	if cfg.CheckpointPath != "" {
		store, err = checkpoint.Open(cfg.CheckpointPath)
		if err != nil {
			logger.Warn("checkpoint unavailable, scanning from the start", "err", err)
		} else {
			defer store.Close()
			identity = checkpoint.Identity(inputPath, info.Size(), info.ModTime())
			if saved, found, loadErr := store.Load(identity); loadErr == nil && found {
				logger.Info("resuming from checkpoint", "offset", saved.Offset)
				if _, seekErr := f.Seek(saved.Offset, io.SeekStart); seekErr != nil {
					logger.Warn("failed to seek to checkpoint offset, scanning from the start", "err", seekErr)
				}
			}
		}
	}

	var progress *mpb.Progress
	var bar *mpb.Bar
	if !*quiet {
		progress = mpb.New(mpb.WithWidth(64))
		bar = progress.New(info.Size(),
			mpb.BarStyle().Rbound("|"),
			mpb.PrependDecorators(decor.Name(inputPath)),
			mpb.AppendDecorators(decor.Percentage()),
		)
		reader = bar.ProxyReader(f)
	}

	var opts = capture.Options{
		ManufacturerID:  cfg.ManufacturerID,
		Opcodes:         cfg.RecognizedOpcodes,
		DetectorCap:     cfg.DetectorCapacity,
		DecoderCapacity: 2 * 1024 * 1024,
	}

	var result capture.Result
	result, err = capture.Run(reader, opts)

	if progress != nil {
		progress.Wait()
	}

	if err != nil {
		logger.Fatal("scan failed", "err", err)
	}

	for _, entry := range result.Events {
		switch {
		case entry.Sysex != nil:
			logEvent(logger, isRoutine(entry.Sysex), entry.Offset, report.Sysex(entry.Sysex))
		case entry.Block != nil:
			logEvent(logger, false, entry.Offset, report.Block(entry.Block))
		}
	}

	if store != nil && identity != "" {
		if saveErr := store.Save(identity, checkpoint.State{Offset: int64(result.Consumed)}); saveErr != nil {
			logger.Warn("failed to save checkpoint", "err", saveErr)
		}
	}

	var outPath = *outputFileName
	if outPath == "" {
		outPath = defaultOutputName(inputPath)
	}

	if err = os.WriteFile(outPath, result.Image, 0o644); err != nil {
		logger.Fatal("failed to write image", "path", outPath, "err", err)
	}

	logger.Info("wrote image", "path", outPath, "bytes", len(result.Image))
}

// logEvent logs routine events (clean messages, skipped noise) at debug
// level, shown only with --verbose, and every anomaly at warn level.
func logEvent(logger *log.Logger, routine bool, offset int, msg string) {
	if routine {
		logger.Debug(msg, "offset", offset)
		return
	}
	logger.Warn(msg, "offset", offset)
}

func isRoutine(e sysex.Event) bool {
	switch e.(type) {
	case sysex.Message, sysex.SkipNotSysEx:
		return true
	default:
		return false
	}
}

func defaultOutputName(inputPath string) string {
	var w, err = strftime.New("%Y%m%d-%H%M%S")
	if err != nil {
		return inputPath + ".image.bin"
	}
	return inputPath + "-" + w.FormatString(time.Now()) + ".image.bin"
}
