package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/anoixa/comic-tracker/internal/ingest"
	"github.com/anoixa/comic-tracker/utils"
)

// ingestCmd 从本地文件登记 release
var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Record strips from local files",
	Long: `Store strip images and record them as releases.

Either pass files together with --comic and --date, or a manifest listing
releases (TOML or YAML, see "comics import" for the format).

Example:
  comic-tracker ingest --comic xkcd --date 2026-10-14 ./3001.png
  comic-tracker ingest --manifest ./backfill.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		slug, _ := cmd.Flags().GetString("comic")
		date, _ := cmd.Flags().GetString("date")
		title, _ := cmd.Flags().GetString("title")
		text, _ := cmd.Flags().GetString("text")
		manifest, _ := cmd.Flags().GetString("manifest")

		var reqs []ingest.Request
		var err error
		if manifest != "" {
			reqs, err = requestsFromManifest(manifest)
		} else {
			reqs, err = requestsFromFiles(args, slug, date, title, text)
		}
		if err != nil {
			log.Fatalf("Ingest failed: %v", err)
		}

		failed, err := runIngest(reqs)
		if err != nil {
			log.Fatalf("Ingest failed: %v", err)
		}
		if failed > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringP("comic", "c", "", "Comic slug")
	ingestCmd.Flags().String("date", "", "Publication date, yyyy-mm-dd (default: today)")
	ingestCmd.Flags().String("title", "", "Strip title")
	ingestCmd.Flags().String("text", "", "Strip text")
	ingestCmd.Flags().StringP("manifest", "m", "", "TOML or YAML manifest listing releases")
}

func requestsFromFiles(files []string, slug, date, title, text string) ([]ingest.Request, error) {
	if len(files) == 0 {
		return nil, errors.New("no files given")
	}
	if slug == "" {
		return nil, errors.New("--comic is required")
	}

	pubDate := utils.CivilDate(time.Now())
	if date != "" {
		var err error
		if pubDate, err = utils.ParseDate(date); err != nil {
			return nil, err
		}
	}

	reqs := make([]ingest.Request, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, ingest.Request{
			ComicSlug: slug,
			PubDate:   pubDate,
			Data:      data,
			Title:     title,
			Text:      text,
		})
	}
	return reqs, nil
}

func requestsFromManifest(path string) ([]ingest.Request, error) {
	seed, err := loadSeedFile(path)
	if err != nil {
		return nil, err
	}
	if len(seed.Releases) == 0 {
		return nil, fmt.Errorf("%s lists no releases", path)
	}

	reqs := make([]ingest.Request, 0, len(seed.Releases))
	for i, r := range seed.Releases {
		if r.Comic == "" || r.File == "" || r.Date.IsZero() {
			return nil, fmt.Errorf("release #%d: comic, date and file are required", i+1)
		}
		data, err := os.ReadFile(seed.path(r.File))
		if err != nil {
			return nil, fmt.Errorf("release #%d: %w", i+1, err)
		}
		reqs = append(reqs, ingest.Request{
			ComicSlug: r.Comic,
			PubDate:   r.Date,
			Data:      data,
			Title:     r.Title,
			Text:      r.Text,
		})
	}
	return reqs, nil
}

// runIngest 批量入库并打印结果，返回失败项数量
func runIngest(reqs []ingest.Request) (int, error) {
	container, err := openContainer(true)
	if err != nil {
		return 0, err
	}
	defer func() { _ = container.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	results, err := container.Ingest.IngestBatch(ctx, reqs)
	if err != nil {
		return 0, err
	}

	headers := []string{"#", "Comic", "Date", "Release", "Strip", "Size", "Result"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft}
	rows := make([][]string, 0, len(results))
	var failed int
	for _, br := range results {
		req := reqs[br.Index]
		row := []string{
			strconv.Itoa(br.Index + 1),
			req.ComicSlug,
			req.PubDate.Format(utils.DateLayout),
		}
		if br.Err != nil {
			failed++
			row = append(row, "", "", humanize.Bytes(uint64(len(req.Data))), br.Error)
		} else {
			result := "new strip"
			if !br.Result.StripCreated {
				result = "existing strip"
			}
			row = append(row,
				strconv.FormatUint(uint64(br.Result.Release.ID), 10),
				strconv.FormatUint(uint64(br.Result.Strip.ID), 10),
				humanize.Bytes(uint64(br.Result.Strip.FileSize)),
				result,
			)
		}
		rows = append(rows, row)
	}

	fmt.Println(renderTable(headers, rows, aligns))
	fmt.Printf("%d recorded, %d failed\n", len(results)-failed, failed)
	return failed, nil
}
