package ws

import (
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/controller"
)

// markdown renders narration. Raw HTML in the source is escaped.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
)

// cardHTML renders a card as an HTML fragment for browser clients.
func cardHTML(ctx context.Context, m controller.Message, notice string) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(m.Body), &body); err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := cardComponent(m, body.String(), notice).Render(ctx, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

func cardComponent(m controller.Message, bodyHTML string, notice string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		disabled := ""
		if m.Disabled {
			disabled = " disabled"
		}
		parts := []string{
			`<article class="card card-` + templ.EscapeString(string(m.Kind)) + `">`,
			`<h2>` + templ.EscapeString(m.Title) + `</h2>`,
			`<div class="narration">` + bodyHTML + `</div>`,
		}
		if m.Footer != "" {
			parts = append(parts, `<footer>`+templ.EscapeString(m.Footer)+`</footer>`)
		}
		parts = append(parts, `<div class="choices">`)
		for i, choice := range m.Choices {
			parts = append(parts, `<button data-index="`+strconv.Itoa(i)+`"`+disabled+`>`+templ.EscapeString(choice)+`</button>`)
		}
		parts = append(parts, `</div>`)
		if notice != "" {
			parts = append(parts, `<p class="notice">`+templ.EscapeString(notice)+`</p>`)
		}
		parts = append(parts, `</article>`)
		for _, part := range parts {
			if _, err := io.WriteString(w, part); err != nil {
				return err
			}
		}
		return nil
	})
}
