package extracthtml

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"extract/internal/encoding"
)

// DirPage is one decoded page read from a directory.
type DirPage struct {
	Name string
	HTML string
}

// ReadDirPages reads every regular file in dir, in stable name order, and
// decodes each through the UTF-8 decoder.
//
// The walk is best-effort by design: unreadable or undecodable files are
// skipped so one stray artifact in a scrape dump does not block the rest of
// the batch. Selector problems still fail fast later, in extraction.
func ReadDirPages(dir string) ([]DirPage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	pages := make([]DirPage, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		text, err := encoding.Decode(b)
		if err != nil {
			continue
		}
		pages = append(pages, DirPage{Name: e.Name(), HTML: text})
	}
	return pages, nil
}

// StreamFromDir extracts records from every page in dir in parallel and
// streams a single JSON array to w, one object per record, each carrying a
// "source_file" key naming the file it came from.
//
// Only record mode is supported here; table-mode mapping files must go
// through the single-input path.
func StreamFromDir(ctx context.Context, w io.Writer, dir string, mf *MappingFile, enc *json.Encoder) error {
	if mf.TableSelector != "" {
		return fmt.Errorf("dir mode requires a container_selector mapping")
	}

	ex, err := NewExtractor(mf.ContainerSelector, mf.Fields)
	if err != nil {
		return err
	}

	pages, err := ReadDirPages(dir)
	if err != nil {
		return err
	}

	htmls := make([]string, len(pages))
	for i, p := range pages {
		htmls[i] = p.HTML
	}

	perPage, err := ex.ExtractBulk(ctx, htmls)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, "["); err != nil {
		return fmt.Errorf("write [: %w", err)
	}

	first := true
	for i, recs := range perPage {
		for _, rec := range recs {
			obj := make(map[string]any, len(rec)+1)
			for k, v := range rec {
				obj[k] = v
			}
			obj["source_file"] = pages[i].Name

			if !first {
				if _, err := io.WriteString(w, ","); err != nil {
					return fmt.Errorf("write comma: %w", err)
				}
			}
			first = false
			if err := enc.Encode(obj); err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
		}
	}

	if _, err := io.WriteString(w, "]"); err != nil {
		return fmt.Errorf("write ]: %w", err)
	}
	return nil
}
