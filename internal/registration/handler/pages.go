package handler

import (
	"html/template"
	"net/http"

	"guestgate/internal/registration/models"
)

// page is the data for the single-layout visitor pages.
type page struct {
	Title    string
	Heading  string
	Message  string
	ShowForm bool
}

var (
	entryPage = page{
		Title:    "Lista de convidados",
		Heading:  "Bem-vindo",
		Message:  "Informe seu email ou telefone para verificar seu convite.",
		ShowForm: true,
	}
	hostPage = page{
		Title:   "Lista de convidados",
		Heading: "Você está na lista",
		Message: "Acesso de anfitrião confirmado. Você pode convidar pessoas pelo seu número.",
	}
	guestPage = page{
		Title:   "Lista de convidados",
		Heading: "Você está na lista",
		Message: "Convite confirmado. Até logo!",
	}
	restrictedPage = page{
		Title:   "Lista de convidados",
		Heading: "Ainda não encontramos seu convite",
		Message: "Seu cadastro foi registrado. Se alguém te convidar, você entra na lista.",
	}
	optOutPage = page{
		Title:   "Lista de convidados",
		Heading: "Cadastro removido",
		Message: "Seus dados foram removidos da lista.",
	}
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 28rem; margin: 4rem auto; padding: 0 1rem; }
label { display: block; margin-top: 1rem; }
input { width: 100%; padding: .5rem; margin-top: .25rem; }
button { margin-top: 1.5rem; padding: .5rem 1.5rem; }
</style>
</head>
<body>
<h1>{{.Heading}}</h1>
<p>{{.Message}}</p>
{{if .ShowForm}}
<form method="post" action="/verify">
<label>Email<input type="email" name="email" autocomplete="email"></label>
<label>Telefone<input type="tel" name="phone" autocomplete="tel" placeholder="(21) 99999-9999"></label>
<button type="submit">Verificar</button>
</form>
{{end}}
</body>
</html>
`))

// HandleEntry renders the entry form.
func (h *Handler) HandleEntry(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, entryPage)
}

// HandleTierPage returns the handler for a tier's landing page.
func (h *Handler) HandleTierPage(tier models.Tier) http.HandlerFunc {
	var p page
	switch tier {
	case models.TierHost:
		p = hostPage
	case models.TierGuest:
		p = guestPage
	default:
		p = restrictedPage
	}
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderPage(w, p)
	}
}

func (h *Handler) renderPage(w http.ResponseWriter, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, p); err != nil {
		h.logger.Error("page render failed", "error", err)
	}
}
