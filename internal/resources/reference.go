// Package resources owns the static reference document offered for download
// on the notice board.
package resources

import (
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

const referenceTitle = "Basics of Grains & Cooking"

var referenceLines = []string{
	"Grains are staple foods and provide essential carbohydrates, fiber, and nutrients.",
	"",
	"Types of Grains:",
	"- Rice: Common in Asian diets, rich in carbohydrates.",
	"- Wheat: Used in bread, chapati, pasta, bakery products.",
	"- Maize (Corn): Consumed boiled, roasted, or ground into flour.",
	"- Millets: High in fiber and minerals (Ragi, Jowar, Bajra).",
	"",
	"Cooking Basics:",
	"- Wash grains before cooking to remove dust and excess starch.",
	"- Soak grains to reduce cooking time and improve digestibility.",
	"- Proper storage prevents pest infestation.",
	"",
	"Nutritional Value:",
	"- Rich source of energy.",
	"- Provide dietary fiber for digestion.",
	"- Contain vitamins (B-complex) and minerals.",
	"",
	"Food Science Insight:",
	"- Fermentation improves nutrient absorption.",
	"- Mixing grains with legumes enhances protein quality.",
}

// EnsureReferenceDoc writes the reference PDF at path unless a file is
// already there. It reports whether it wrote one.
func EnsureReferenceDoc(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, errors.Wrap(err, "stat reference doc")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, errors.Wrap(err, "create resources dir")
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(50, 42, referenceTitle)
	pdf.SetFont("Helvetica", "", 12)
	y := 72.0
	for _, line := range referenceLines {
		pdf.Text(50, y, line)
		y += 20
	}

	tmp := path + ".tmp"
	if err := pdf.OutputFileAndClose(tmp); err != nil {
		return false, errors.Wrap(err, "write reference doc")
	}
	if err := os.Rename(tmp, path); err != nil {
		return false, errors.Wrap(err, "write reference doc")
	}
	return true, nil
}
