package btcdca

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultPDFEngine is the pandoc PDF engine used when none is configured.
const DefaultPDFEngine = "xelatex"

// InsertImageAfterH1 returns the markdown text with an image reference
// inserted right after the first top-level heading (or at the top if there
// is none).
func InsertImageAfterH1(mdText, imageName string) string {
	lines := strings.Split(mdText, "\n")
	insert := 0
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") {
			insert = i + 1
			break
		}
	}
	out := make([]string, 0, len(lines)+2)
	out = append(out, lines[:insert]...)
	out = append(out, fmt.Sprintf("![Charts](%s)", imageName), "")
	out = append(out, lines[insert:]...)
	return strings.Join(out, "\n")
}

// RunPandoc converts the markdown file to a PDF by shelling out to pandoc.
// The caller treats any returned error as a warning: a missing converter
// must not kill the run.
func RunPandoc(mdPath, pdfPath, engine string) error {
	pandoc, err := exec.LookPath("pandoc")
	if err != nil {
		return fmt.Errorf("pandoc not found: %w", err)
	}
	if engine == "" {
		engine = DefaultPDFEngine
	}
	if _, err := exec.LookPath(engine); err != nil {
		return fmt.Errorf("PDF engine not found: %s: %w", engine, err)
	}

	// pandoc resolves relative image references against the working
	// directory, so run it from the report directory.
	cmd := exec.Command(pandoc, filepath.Base(mdPath), "-o", filepath.Base(pdfPath), "--pdf-engine", engine)
	cmd.Dir = filepath.Dir(mdPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("pandoc failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
