package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"certificate-generator/internal/compose"
	"certificate-generator/internal/domain"
	"certificate-generator/internal/infrastructure/migration"
	"certificate-generator/internal/model"
	"certificate-generator/internal/usecase"
	infra "certificate-generator/pkg/infrastructure"
)

var (
	inputPath string
	outDir    string
	outFile   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render certificate JSON to a PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readCertificate(cmd.InOrStdin())
		if err != nil {
			return err
		}

		host := infra.NewChromedpHost(infra.HostOptions{
			ChromePath: cfg.Render.ChromePath,
			TempDir:    cfg.Render.TempDir,
		}, logger.Named("chrome"))
		defer host.Close()

		gen := usecase.NewGenerator(newComposer(), host, infra.NewGofpdfSerializer(), cfg.Generator(), logger.Named("generator"))
		doc, err := gen.Generate(cmd.Context(), data)
		if err != nil {
			return fmt.Errorf("could not generate certificate: %w", err)
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
		path := filepath.Join(outDir, doc.FileName)
		if err := os.WriteFile(path, doc.PDF, 0o644); err != nil {
			return err
		}
		if doc.Blank {
			logger.Warn("certificate looks blank", zap.String("file", path))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", path, doc.CertificateCode)
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the composed certificate HTML without rendering it",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readCertificate(cmd.InOrStdin())
		if err != nil {
			return err
		}
		doc, err := newComposer().Compose(data)
		if err != nil {
			return err
		}
		if outFile == "" {
			_, err = io.WriteString(cmd.OutOrStdout(), doc.HTML)
			return err
		}
		return os.WriteFile(outFile, []byte(doc.HTML), 0o644)
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List certificate templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
		for _, t := range compose.DefaultRegistry().List() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.Style, t.Name, t.Description)
		}
		return w.Flush()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Add certificate columns to the jobs database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.DSN == "" {
			return errors.New("JOBS_DATABASE_URL is not set")
		}
		pool, err := infra.NewJobsPool(cmd.Context(), cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		return migration.RunMigrations(cmd.Context(), pool, logger.Named("migration"))
	},
}

func init() {
	for _, c := range []*cobra.Command{renderCmd, previewCmd} {
		c.Flags().StringVarP(&inputPath, "input", "i", "-", "certificate JSON file, - for stdin")
	}
	renderCmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write the PDF into")
	previewCmd.Flags().StringVarP(&outFile, "out", "o", "", "file to write the HTML to, stdout when empty")
}

func newComposer() *compose.Composer {
	return compose.NewComposer(compose.DefaultRegistry(), cfg.Certificate.Brand, nil)
}

func readCertificate(stdin io.Reader) (domain.CertificateData, error) {
	var (
		raw []byte
		err error
	)
	if inputPath == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(inputPath)
	}
	if err != nil {
		return domain.CertificateData{}, fmt.Errorf("read input: %w", err)
	}
	if !json.Valid(raw) {
		return domain.CertificateData{}, fmt.Errorf("%s: %w: not JSON", inputPath, domain.ErrInvalidCertificate)
	}
	return model.ParseCertificate(raw)
}
