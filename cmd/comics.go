package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/anoixa/comic-tracker/database/models"
	"github.com/anoixa/comic-tracker/internal/comics"
	"github.com/anoixa/comic-tracker/internal/errdefs"
	"github.com/anoixa/comic-tracker/pkg/slug"
	"github.com/anoixa/comic-tracker/utils"
)

// comicsCmd 漫画登记管理
var comicsCmd = &cobra.Command{
	Use:   "comics",
	Short: "Comic registry commands",
}

var comicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered comics",
	Run: func(cmd *cobra.Command, args []string) {
		activeOnly, _ := cmd.Flags().GetBool("active")
		if err := runComicsList(activeOnly); err != nil {
			log.Fatalf("List failed: %v", err)
		}
	},
}

var comicsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Register comics from a TOML or YAML seed file",
	Long: `Register comics listed under "comics" in a TOML or YAML file.

Example:
  comic-tracker comics import ./comics.toml
  comic-tracker comics import ./comics.yaml --update`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		update, _ := cmd.Flags().GetBool("update")
		if err := runComicsImport(args[0], update); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
	},
}

var comicsDeactivateCmd = &cobra.Command{
	Use:   "deactivate <slug>...",
	Short: "Deactivate comics, keeping their history",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runComicsSetActive(args, false); err != nil {
			log.Fatalf("Deactivate failed: %v", err)
		}
	},
}

var comicsActivateCmd = &cobra.Command{
	Use:   "activate <slug>...",
	Short: "Reactivate comics",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runComicsSetActive(args, true); err != nil {
			log.Fatalf("Activate failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(comicsCmd)
	comicsCmd.AddCommand(comicsListCmd, comicsImportCmd, comicsDeactivateCmd, comicsActivateCmd)

	comicsListCmd.Flags().Bool("active", false, "Only list active comics")
	comicsImportCmd.Flags().Bool("update", false, "Update comics whose slug is already registered")
}

func runComicsList(activeOnly bool) error {
	container, err := openContainer(false)
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	list, err := container.Comics.List(context.Background(), comics.ListOptions{ActiveOnly: activeOnly})
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No comics registered.")
		return nil
	}

	headers := []string{"Slug", "Name", "Lang", "Active", "Sets", "Since", "URL"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{
			c.Slug,
			c.Name,
			c.Language,
			strconv.FormatBool(c.Active),
			strconv.Itoa(c.NumberOfSets),
			formatDate(c),
			c.URL,
		})
	}
	fmt.Println(renderTable(headers, rows, aligns))
	return nil
}

func formatDate(c *models.Comic) string {
	if c.StartDate == nil {
		return ""
	}
	return time.Time(*c.StartDate).Format(utils.DateLayout)
}

func runComicsImport(path string, update bool) error {
	seed, err := loadSeedFile(path)
	if err != nil {
		return err
	}
	if len(seed.Comics) == 0 {
		return fmt.Errorf("%s lists no comics", path)
	}

	container, err := openContainer(true)
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	ctx := context.Background()
	var created, updated, skipped int
	for _, in := range seed.Comics {
		comic, err := container.Comics.Create(ctx, in)
		switch {
		case err == nil:
			created++
			log.Printf("Registered %s", comic.Slug)
		case errors.Is(err, errdefs.ErrConflict) && update:
			ref := in.Slug
			if ref == "" {
				ref = slug.From(in.Name)
			}
			if _, err := container.Comics.Update(ctx, ref, in); err != nil {
				return fmt.Errorf("update %s: %w", ref, err)
			}
			updated++
			log.Printf("Updated %s", utils.SanitizeLogSlug(ref))
		case errors.Is(err, errdefs.ErrConflict):
			skipped++
			log.Printf("Skipping %s: already registered", utils.SanitizeLogSlug(in.Name))
		default:
			return fmt.Errorf("register %q: %w", in.Name, err)
		}
	}

	if created+updated > 0 {
		invalidateStatus(ctx, container)
	}
	fmt.Printf("\nImport finished: %d created, %d updated, %d skipped\n", created, updated, skipped)
	return nil
}

func runComicsSetActive(slugs []string, active bool) error {
	container, err := openContainer(true)
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	ctx := context.Background()
	for _, s := range slugs {
		if active {
			_, err = container.Comics.Activate(ctx, s)
		} else {
			_, err = container.Comics.Deactivate(ctx, s)
		}
		if err != nil {
			return err
		}
		log.Printf("%s: active=%t", s, active)
	}

	invalidateStatus(ctx, container)
	return nil
}
