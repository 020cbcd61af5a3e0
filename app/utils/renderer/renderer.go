// Package renderer builds the shared response renderer. The API only speaks
// JSON, so no template directory is configured.
package renderer

import (
	"github.com/unrolled/render"
)

func New(debug bool) *render.Render {
	return render.New(render.Options{
		IndentJSON:    debug,
		UnEscapeHTML:  true,
		IsDevelopment: debug,
		Charset:       "UTF-8",
	})
}
