package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/internal/pkg/csvimport"
	"github.com/ManuelReschke/bizdir/internal/pkg/flash"
	"github.com/ManuelReschke/bizdir/internal/pkg/statistics"
)

const (
	importFileField = "csv_file"
	maxImportBytes  = 20 << 20
)

// HandleImport renders the import and export page.
func (ac *AdminController) HandleImport(c *fiber.Ctx) error {
	return render(c, "admin/import", fiber.Map{
		"Title":           "Import & export",
		"BusinessColumns": csvimport.BusinessHeader(),
		"CategoryColumns": csvimport.CategoryHeader(),
		"Required":        csvimport.RequiredBusinessColumns,
	})
}

// uploadedCSV reads the uploaded file into memory.
func uploadedCSV(c *fiber.Ctx) (io.Reader, error) {
	fh, err := c.FormFile(importFileField)
	if err != nil {
		return nil, errors.New("please choose a CSV file")
	}
	if fh.Size > maxImportBytes {
		return nil, fmt.Errorf("the file is larger than %d MB", maxImportBytes>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

func (ac *AdminController) renderImportResult(c *fiber.Ctx, kind string, res *csvimport.Result) error {
	return render(c, "admin/import_result", fiber.Map{
		"Title":  kind + " import",
		"Kind":   kind,
		"Result": res,
	})
}

// HandleImportBusinesses imports an uploaded business CSV.
func (ac *AdminController) HandleImportBusinesses(c *fiber.Ctx) error {
	r, err := uploadedCSV(c)
	if err != nil {
		return flash.Error(c, "/admin/import", err.Error())
	}
	// image downloads may outlive the request deadline
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()
	res, err := ac.svc.Importer.ImportBusinesses(ctx, r)
	if err != nil {
		return flash.Error(c, "/admin/import", importMessage(err))
	}
	statistics.Invalidate()
	return ac.renderImportResult(c, "Business", res)
}

// HandleImportCategories imports an uploaded category CSV.
func (ac *AdminController) HandleImportCategories(c *fiber.Ctx) error {
	r, err := uploadedCSV(c)
	if err != nil {
		return flash.Error(c, "/admin/import", err.Error())
	}
	res, err := ac.svc.Importer.ImportCategories(c.UserContext(), r)
	if err != nil {
		return flash.Error(c, "/admin/import", importMessage(err))
	}
	return ac.renderImportResult(c, "Category", res)
}

// HandleExport streams all listings as CSV.
func (ac *AdminController) HandleExport(c *fiber.Ctx) error {
	var buf bytes.Buffer
	n, err := csvimport.ExportBusinesses(ac.svc.Repos, &buf)
	if err != nil {
		return ac.handleError(c, "Export failed", err)
	}
	log.Infof("[Admin] exported %d businesses", n)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="businesses-%s.csv"`, time.Now().Format("2006-01-02")))
	return c.Send(buf.Bytes())
}

// HandleMapping shows the stored category mappings and the upload form.
func (ac *AdminController) HandleMapping(c *fiber.Ctx) error {
	return ac.renderMapping(c, nil)
}

// HandleMappingAnalyze extracts the category strings of an uploaded file
// and suggests a match for each.
func (ac *AdminController) HandleMappingAnalyze(c *fiber.Ctx) error {
	r, err := uploadedCSV(c)
	if err != nil {
		return flash.Error(c, "/admin/import/mapping", err.Error())
	}
	candidates, err := ac.svc.Mappings.Extract(r)
	if err != nil {
		return flash.Error(c, "/admin/import/mapping", importMessage(err))
	}
	return ac.renderMapping(c, candidates)
}

func (ac *AdminController) renderMapping(c *fiber.Ctx, candidates []csvimport.Candidate) error {
	cats, err := ac.svc.Terms.Terms(models.TAXONOMY_CATEGORY)
	if err != nil {
		return ac.handleError(c, "Failed to load categories", err)
	}
	stored, err := ac.svc.Mappings.All()
	if err != nil {
		return ac.handleError(c, "Failed to load mappings", err)
	}
	names := make(map[uint]string, len(cats))
	for _, t := range cats {
		names[t.ID] = t.Name
	}
	return render(c, "admin/mapping", fiber.Map{
		"Title":      "Category mapping",
		"Candidates": candidates,
		"Categories": cats,
		"Stored":     stored,
		"Names":      names,
		"Threshold":  ac.svc.Config.SimilarityThreshold,
	})
}

// HandleMappingSave stores the confirmed mappings. The form posts parallel
// raw and term_id lists; term_id 0 leaves a string unmapped.
func (ac *AdminController) HandleMappingSave(c *fiber.Ctx) error {
	args := c.Request().PostArgs()
	raws := args.PeekMulti("raw")
	termIDs := args.PeekMulti("term_id")
	if len(raws) != len(termIDs) {
		return flash.Error(c, "/admin/import/mapping", "The mapping form is incomplete")
	}

	saved := 0
	for i := range raws {
		id := parseID(string(termIDs[i]))
		if id == 0 {
			continue
		}
		if err := ac.svc.Mappings.Save(string(raws[i]), id); err != nil {
			return ac.handleError(c, fmt.Sprintf("Failed to save mapping for %q", raws[i]), err)
		}
		saved++
	}
	return flash.Success(c, "/admin/import/mapping", fmt.Sprintf("%d mapping(s) saved", saved))
}

func importMessage(err error) string {
	if errors.Is(err, csvimport.ErrEmptyFile) || errors.Is(err, csvimport.ErrMissingColumns) {
		return "Import failed: " + err.Error()
	}
	log.Errorf("[Admin] import: %v", err)
	return "Import failed. Please check the file and try again."
}
