// slice2go compiles .ice source files into generated Go packages,
// tracking per-file state in a YAML manifest so unchanged sources are
// skipped on subsequent runs.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"icelink/logging"
	"icelink/slice"
	"icelink/slicegen"
)

var (
	outDir       = flag.String("out", ".", "output directory for generated Go files")
	packageName  = flag.String("package", "iceslice", "Go package name for generated files")
	manifestPath = flag.String("manifest", "", "manifest file path (default: <out>/slice2go.manifest.yaml)")
	force        = flag.Bool("force", false, "regenerate every input file regardless of the manifest")
	logPath      = flag.String("log", "", "append a generation log to this file")
)

func main() {
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: slice2go [flags] file.ice [file.ice ...]")
		os.Exit(2)
	}

	if *manifestPath == "" {
		*manifestPath = filepath.Join(*outDir, "slice2go.manifest.yaml")
	}

	if err := run(inputs); err != nil {
		fmt.Fprintf(os.Stderr, "slice2go: %v\n", err)
		os.Exit(1)
	}
}

func run(inputs []string) error {
	var runLog *logging.FileLogger
	if *logPath != "" {
		var err error
		runLog, err = logging.NewFileLogger(*logPath)
		if err != nil {
			return err
		}
		defer runLog.Close()
	}

	manifest, err := slicegen.LoadManifest(*manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, input := range inputs {
		src, err := os.ReadFile(input)
		if err != nil {
			return fmt.Errorf("read %s: %w", input, err)
		}
		sum := sha256.Sum256(src)
		checksum := hex.EncodeToString(sum[:])

		if !*force && !manifest.NeedsRegeneration(input, checksum) {
			fmt.Printf("skip  %s (unchanged)\n", input)
			runLog.Log("skipped %s (unchanged)", input)
			continue
		}

		file, err := slice.Parse(string(src))
		if err != nil {
			return fmt.Errorf("parse %s: %w", input, err)
		}

		generated, err := slicegen.Generate(file, *packageName)
		if err != nil {
			return fmt.Errorf("generate %s: %w", input, err)
		}

		outputs := make([]string, 0, len(generated))
		for name, content := range generated {
			outPath := filepath.Join(*outDir, name)
			if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			outputs = append(outputs, outPath)
			fmt.Printf("wrote %s\n", outPath)
			runLog.Log("generated %s from %s", outPath, input)
		}

		manifest.Record(input, checksum, outputs, time.Now())
	}

	if err := manifest.Save(*manifestPath); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}
