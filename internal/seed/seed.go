// Package seed loads complete movie records from a YAML file.
//
// A seed file looks like:
//
//	movies:
//	  - title: Phone Booth
//	    year: 2002
//	    description: ...
//	    rating: 7.3
//	    review: My favourite character was the caller.
//	    img_url: https://image.tmdb.org/t/p/w500/tjrX2oWRCM3Tvarz38zlZM7Uc10.jpg
//
// Ranking is ignored on load; the next listing recomputes it.
package seed

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/roach88/topten/internal/movie"
)

// File is the decoded form of a seed file.
type File struct {
	Movies []movie.Record `yaml:"movies"`
}

// Load reads and parses a seed file.
// Unknown keys are rejected so a misspelt field is not silently dropped.
func Load(path string) ([]movie.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes seed YAML and fills defaults.
func Parse(data []byte) ([]movie.Record, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&f); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}

	for i := range f.Movies {
		f.Movies[i].Ranking = 0
		if f.Movies[i].Review == "" {
			f.Movies[i].Review = movie.DefaultReview
		}
	}
	return f.Movies, nil
}

func validate(f *File) error {
	if len(f.Movies) == 0 {
		return fmt.Errorf("movies list is required and must be non-empty")
	}

	seen := make(map[string]int, len(f.Movies))
	for i, m := range f.Movies {
		switch {
		case m.Title == "":
			return fmt.Errorf("movies[%d]: title is required", i)
		case m.Description == "":
			return fmt.Errorf("movies[%d]: description is required", i)
		case m.ImageURL == "":
			return fmt.Errorf("movies[%d]: img_url is required", i)
		}

		if err := checkLen(i, "title", m.Title, movie.MaxTitleLen); err != nil {
			return err
		}
		if err := checkLen(i, "description", m.Description, movie.MaxDescriptionLen); err != nil {
			return err
		}
		if err := checkLen(i, "review", m.Review, movie.MaxReviewLen); err != nil {
			return err
		}
		if err := checkLen(i, "img_url", m.ImageURL, movie.MaxImageURLLen); err != nil {
			return err
		}

		if j, ok := seen[m.Title]; ok {
			return fmt.Errorf("movies[%d]: title %q duplicates movies[%d]", i, m.Title, j)
		}
		seen[m.Title] = i
	}
	return nil
}

func checkLen(i int, field, value string, max int) error {
	if n := utf8.RuneCountInString(value); n > max {
		return fmt.Errorf("movies[%d]: %s is %d characters, limit %d", i, field, n, max)
	}
	return nil
}
