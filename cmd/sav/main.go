// Command sav converts VCF/VCF.GZ variant-call data into the compact
// SAV container format.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v2"

	sav "github.com/pinotree/savvy"
	"github.com/pinotree/savvy/internal/logging"
	"github.com/pinotree/savvy/internal/vcfingest"
)

func main() {
	app := &cli.App{
		Name:            "sav",
		Usage:           "convert text VCF (plain or bgzipped) into the SAV container format; BCF input is not supported",
		HideHelpCommand: true,
		Version:         sav.Version,
		Commands: []*cli.Command{
			importCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logging.Default.Error(err.Error())
		os.Exit(1)
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "convert an input VCF into a SAV file",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "level",
				Aliases: []string{"#"},
				Usage:   "zstd compression level (1-19)",
				Value:   3,
			},
			&cli.IntFlag{
				Name:  "block-size",
				Usage: "records per compressed block, 0 disables block compression",
				Value: 2048,
			},
			&cli.StringFlag{
				Name:  "data-format",
				Usage: "FORMAT field to read per-haplotype status from: GT or HDS",
				Value: "GT",
			},
			&cli.StringSliceFlag{
				Name:  "regions",
				Usage: "restrict import to one or more chr[:start-end] regions",
			},
			&cli.StringSliceFlag{
				Name:  "sample-ids",
				Usage: "restrict import to the given sample IDs",
			},
			&cli.StringFlag{
				Name:  "sample-ids-file",
				Usage: "file containing one sample ID per line",
			},
			&cli.StringFlag{
				Name:  "manifest",
				Usage: "YAML manifest of regions/samples; flags override manifest entries",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output path, defaults to stdout",
				Value:   "-",
			},
		},
		Action: runImport,
	}
}

func runImport(c *cli.Context) error {
	runID := uuid.New().String()
	log := logging.Default.With("run_id", runID)

	inputPath := c.Args().First()
	if inputPath == "" {
		return cli.Exit("sav import: missing input VCF path", 1)
	}

	level := c.Int("level")
	blockSize := c.Int("block-size")
	dataFormat := vcfingest.ParseDataFormat(c.String("data-format"))
	output := c.String("output")

	flagRegionStrs := c.StringSlice("regions")
	flagSampleIDs := c.StringSlice("sample-ids")

	if manifestPath := c.String("manifest"); manifestPath != "" {
		m, err := sav.LoadManifest(manifestPath)
		if err != nil {
			return cli.Exit(fmt.Sprintf("sav import: %v", err), 1)
		}
		flagRegionStrs, flagSampleIDs = sav.MergeManifest(m, flagRegionStrs, flagSampleIDs)
	}

	if sampleIDsFile := c.String("sample-ids-file"); sampleIDsFile != "" {
		ids, err := readSampleIDsFile(sampleIDsFile)
		if err != nil {
			return cli.Exit(fmt.Sprintf("sav import: %v", err), 1)
		}
		flagSampleIDs = append(flagSampleIDs, ids...)
	}

	regions, err := parseRegions(flagRegionStrs)
	if err != nil {
		return cli.Exit(fmt.Sprintf("sav import: %v", err), 1)
	}

	ingest, err := vcfingest.Open(inputPath, dataFormat, regions)
	if err != nil {
		return cli.Exit(fmt.Sprintf("sav import: %v", err), 1)
	}
	defer ingest.Close()

	samples := ingest.Samples()
	if len(flagSampleIDs) > 0 {
		requested := make(map[string]struct{}, len(flagSampleIDs))
		for _, id := range flagSampleIDs {
			requested[id] = struct{}{}
		}
		samples = ingest.SubsetSamples(requested)
	}

	log.Info("starting import", "input", inputPath, "output", output, "samples", len(samples))

	ctx := c.Context
	sink, err := sav.OpenStorage(ctx, output, sav.OpenWrite)
	if err != nil {
		return cli.Exit(fmt.Sprintf("sav import: %v", err), 1)
	}
	defer sink.Close()

	n, err := runImportStream(ingest, sink, samples, blockSize, level)
	if err != nil {
		return cli.Exit(fmt.Sprintf("sav import: %v", err), 1)
	}

	log.Info("import complete", "records", n)
	return nil
}

func runImportStream(ingest *vcfingest.Reader, sink io.Writer, samples []string, blockSize, level int) (int, error) {
	var site vcfingest.SiteInfo
	var dense []sav.AlleleStatus

	var chromosome string
	var writer *sav.Writer
	count := 0

	for ingest.Read(&site, &dense) {
		if writer == nil {
			chromosome = site.Chromosome
			header := sav.Header{
				Samples:    sav.NewSampleSet(samples),
				Chromosome: chromosome,
				Ploidy:     uint64(ingest.Ploidy()),
			}
			copy(header.MagicVersion[:], []byte("sav\x00\x01\x00\x00\x00"))

			w, err := sav.NewWriter(sink, header, sav.WithBlockCompression(blockSize, level))
			if err != nil {
				return 0, err
			}
			writer = w
		}

		if site.Chromosome != chromosome {
			continue
		}

		m := vcfingest.MarkerFromSite(site, dense)
		if err := writer.Write(m); err != nil {
			return count, err
		}
		count++
	}

	if !ingest.Good() {
		return count, fmt.Errorf("sav import: input stream ended in error")
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			return count, err
		}
	}

	return count, nil
}

func parseRegions(specs []string) ([]sav.Region, error) {
	var regions []sav.Region
	for _, s := range specs {
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			r, err := sav.ParseRegion(part)
			if err != nil {
				return nil, err
			}
			regions = append(regions, r)
		}
	}
	return regions, nil
}

func readSampleIDsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			ids = append(ids, line)
		}
	}
	return ids, scanner.Err()
}
