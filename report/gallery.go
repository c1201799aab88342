package report

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/amonks/popgenres/dataset"
)

// GalleryFile is the page Render writes next to the charts.
const GalleryFile = "index.html"

var gallery = template.Must(template.New("gallery").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em auto; max-width: 1200px; }
figure { margin: 0 0 3em; }
img { max-width: 100%; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{- range .Images}}
<figure id="{{.Name}}">
<a href="{{.File}}"><img src="{{.File}}" alt="{{.Title}}"></a>
<figcaption>{{.Title}}</figcaption>
</figure>
{{- else}}
<p class="empty">No charts yet.</p>
{{- end}}
</body>
</html>
`))

type galleryImage struct {
	Name  string
	File  string
	Title string
}

// writeGallery writes index.html, linking every chart present in the
// images dir, including ones drawn by an earlier Render.
func (r *Renderer) writeGallery(in Input) (string, error) {
	page := struct {
		Title  string
		Images []galleryImage
	}{
		Title: in.titled("Spotify Popularity"),
	}
	for _, c := range charts {
		file := c.file(in)
		if _, err := os.Stat(filepath.Join(r.dir, file)); errors.Is(err, os.ErrNotExist) {
			continue
		} else if err != nil {
			return "", fmt.Errorf("error checking chart '%s': %w", file, err)
		}
		page.Images = append(page.Images, galleryImage{
			Name:  c.name,
			File:  file,
			Title: c.title(in),
		})
	}

	path := filepath.Join(r.dir, GalleryFile)
	if err := dataset.WriteFile(path, func(w io.Writer) error {
		return gallery.Execute(w, page)
	}); err != nil {
		return "", fmt.Errorf("error writing gallery: %w", err)
	}
	return path, nil
}
