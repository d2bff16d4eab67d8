package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Sumatoshi-tech/fleetlens/pkg/report/plotpage"
)

const htmlFilePerm = 0o644

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return nil
}

func writeHTML(path string, page *plotpage.Page) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, htmlFilePerm)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return page.Render(f)
}
