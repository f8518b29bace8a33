// Package dataset indexes a downloaded cloud image dataset on disk.
//
// Images are grouped by their relative path. Anything under a path containing
// "train" takes its category from the parent directory, which is expected to
// be a catalog abbreviation such as "Cu" or "Sc".
package dataset

import (
	"cmp"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/couchcryptid/cloud-classification-api/internal/domain"
)

// Split and category values used when the path carries no information.
const (
	SplitTrain   = "train"
	SplitTest    = "test"
	Unknown      = "unknown"
	UnknownCloud = "Unknown"
)

// ImageExtensions are the file extensions picked up by Scan.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff"}

// Entry is one image in the dataset.
type Entry struct {
	Filename  string `json:"filename"`
	Path      string `json:"filepath"` // relative to the root, slash separated
	FullPath  string `json:"full_path"`
	Category  string `json:"category"`
	Split     string `json:"split"`
	CloudType string `json:"cloud_type"`
}

// Scan walks root and returns an entry per image file, ordered by path.
func Scan(root string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isImage(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		entries = append(entries, NewEntry(filepath.ToSlash(rel), p))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan dataset %s: %w", root, err)
	}
	slices.SortFunc(entries, func(a, b Entry) int { return cmp.Compare(a.Path, b.Path) })
	return entries, nil
}

// NewEntry classifies an image from its slash-separated relative path.
func NewEntry(rel, fullPath string) Entry {
	split, category := classify(rel)
	cloud := UnknownCloud
	if ct, ok := domain.LookupAbbreviation(category); ok {
		cloud = ct.Name
	}
	return Entry{
		Filename:  path.Base(rel),
		Path:      rel,
		FullPath:  fullPath,
		Category:  category,
		Split:     split,
		CloudType: cloud,
	}
}

func classify(rel string) (split, category string) {
	lower := strings.ToLower(rel)
	switch {
	case strings.Contains(lower, SplitTrain):
		parts := strings.Split(rel, "/")
		if len(parts) >= 3 {
			return SplitTrain, parts[len(parts)-2]
		}
		return SplitTrain, Unknown
	case strings.Contains(lower, SplitTest):
		return SplitTest, Unknown
	default:
		return Unknown, Unknown
	}
}

func isImage(name string) bool {
	return slices.Contains(ImageExtensions, strings.ToLower(filepath.Ext(name)))
}

// Count is one row of a distribution.
type Count struct {
	CloudType string `json:"cloud_type"`
	Count     int    `json:"count"`
}

// Summary aggregates an index.
type Summary struct {
	Total             int     `json:"total"`
	Train             int     `json:"train"`
	Test              int     `json:"test"`
	TrainDistribution []Count `json:"train_distribution"` // most frequent first
}

// Summarize counts entries per split and cloud types within the train split.
func Summarize(entries []Entry) Summary {
	s := Summary{Total: len(entries)}
	dist := map[string]int{}
	for _, e := range entries {
		switch e.Split {
		case SplitTrain:
			s.Train++
			dist[e.CloudType]++
		case SplitTest:
			s.Test++
		}
	}
	for name, n := range dist {
		s.TrainDistribution = append(s.TrainDistribution, Count{CloudType: name, Count: n})
	}
	slices.SortFunc(s.TrainDistribution, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.CloudType, b.CloudType)
	})
	return s
}

var csvHeader = []string{"filename", "filepath", "full_path", "category", "split", "cloud_type"}

// WriteCSV writes entries with a header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Filename, e.Path, e.FullPath, e.Category, e.Split, e.CloudType}); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.Path, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes entries as an indented JSON array. An empty index is "[]".
func WriteJSON(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
