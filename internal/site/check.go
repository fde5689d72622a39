package site

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// BrokenLink is a relative href that does not resolve to a file.
type BrokenLink struct {
	Page string
	Href string
}

func (b BrokenLink) String() string {
	return fmt.Sprintf("%s: %s", b.Page, b.Href)
}

// CheckLinks parses every HTML page under dir and reports relative links
// that point at missing files. Absolute URLs and fragment-only links are
// ignored.
func CheckLinks(dir string) ([]BrokenLink, error) {
	var pages []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".html") {
			pages = append(pages, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(pages)

	var broken []BrokenLink
	for _, p := range pages {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", p, err)
		}
		doc, err := goquery.NewDocumentFromReader(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}

		rel, _ := filepath.Rel(dir, p)
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			u, err := url.Parse(href)
			if err != nil {
				broken = append(broken, BrokenLink{Page: rel, Href: href})
				return
			}
			if u.IsAbs() || u.Host != "" || u.Path == "" || strings.HasPrefix(u.Path, "/") {
				return
			}
			target := filepath.Join(filepath.Dir(p), filepath.FromSlash(u.Path))
			if _, err := os.Stat(target); err != nil {
				broken = append(broken, BrokenLink{Page: rel, Href: href})
			}
		})
	}
	return broken, nil
}
